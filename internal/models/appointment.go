package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment represents a scheduled group meeting
type Appointment struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     string     `gorm:"type:uuid;not null;index" json:"group_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"size:1000" json:"description"`
	Location    *string    `gorm:"size:200" json:"location"`
	StartTime   time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	CreatedBy   string     `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook is called before creating a new appointment
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	a.ID = newID(a.ID)
	return nil
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// AppointmentRequest represents the data needed to create or update an appointment.
// PlaceID, when set, is resolved to a formatted address and replaces Location.
type AppointmentRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=1000"`
	Location    string     `json:"location" binding:"max=200"`
	PlaceID     string     `json:"place_id"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     *time.Time `json:"end_time"`
}
