package services

import "errors"

// Sentinel errors returned by the services. Messages are user facing.
var (
	ErrNotFound      = errors.New("nicht gefunden")
	ErrForbidden     = errors.New("keine Berechtigung")
	ErrNotMember     = errors.New("du bist kein Mitglied dieser Gruppe")
	ErrGroupFull     = errors.New("Gruppe voll")
	ErrAlreadyMember = errors.New("du bist bereits Mitglied dieser Gruppe")
	ErrPollEnded     = errors.New("die Umfrage ist bereits beendet")
	ErrInvalidInput  = errors.New("ungültige Eingabe")
)
