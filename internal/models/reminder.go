package models

import (
	"time"

	"gorm.io/gorm"
)

// ReminderType identifies which pass of the reminder scan produced a ledger row
type ReminderType string

const (
	ReminderAppointment ReminderType = "appointment"
	ReminderTask        ReminderType = "task"
	ReminderPoll        ReminderType = "poll"
)

// EmailReminderSent tracks which reminders have been sent to avoid duplicates.
// The unique index makes the ledger key claimable with a single insert.
type EmailReminderSent struct {
	ID           string       `gorm:"type:uuid;primaryKey" json:"id"`
	ReminderType ReminderType `gorm:"size:20;not null;uniqueIndex:idx_email_reminders_key" json:"reminder_type"`
	ReferenceID  string       `gorm:"type:uuid;not null;uniqueIndex:idx_email_reminders_key" json:"reference_id"`
	UserID       string       `gorm:"type:uuid;not null;uniqueIndex:idx_email_reminders_key" json:"user_id"`
	SentAt       time.Time    `gorm:"not null" json:"sent_at"`
}

// BeforeCreate hook is called before creating a ledger row
func (r *EmailReminderSent) BeforeCreate(tx *gorm.DB) error {
	r.ID = newID(r.ID)
	if r.SentAt.IsZero() {
		r.SentAt = time.Now().UTC()
	}
	return nil
}

// TableName specifies the table name for the EmailReminderSent model
func (EmailReminderSent) TableName() string {
	return "email_reminders_sent"
}
