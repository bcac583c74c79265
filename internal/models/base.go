package models

import (
	"github.com/google/uuid"
)

// newID returns a fresh primary key when id is still empty
func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
