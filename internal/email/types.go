package email

import (
	"errors"
	"fmt"
)

// Type is the notification kind that selects a template
type Type string

const (
	TypeWelcome             Type = "welcome"
	TypeGroupInvite         Type = "group-invite"
	TypeTaskNotification    Type = "task-notification"
	TypeTaskDueReminder     Type = "task-due-reminder"
	TypeAppointmentReminder Type = "appointment-reminder"
	TypePollReminder        Type = "poll-reminder"
	TypePollCreated         Type = "poll-created"
	TypeAppointmentCreated  Type = "appointment-created"
	TypeTaskAssigned        Type = "task-assigned"
	TypeTaskCreated         Type = "task-created"
)

// Types lists every notification type the renderer knows
var Types = []Type{
	TypeWelcome,
	TypeGroupInvite,
	TypeTaskNotification,
	TypeTaskDueReminder,
	TypeAppointmentReminder,
	TypePollReminder,
	TypePollCreated,
	TypeAppointmentCreated,
	TypeTaskAssigned,
	TypeTaskCreated,
}

// Valid reports whether t is a known notification type
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Data is the flat payload shared by all notification types.
// Only To is required; every other field falls back to a placeholder.
type Data struct {
	To            string `json:"to"`
	RecipientName string `json:"recipientName,omitempty"`

	GroupName   string `json:"groupName,omitempty"`
	InviterName string `json:"inviterName,omitempty"`
	InviteCode  string `json:"inviteCode,omitempty"`

	TaskTitle       string `json:"taskTitle,omitempty"`
	TaskDescription string `json:"taskDescription,omitempty"`
	DueDate         string `json:"dueDate,omitempty"`
	AssignerName    string `json:"assignerName,omitempty"`
	Priority        string `json:"priority,omitempty"`

	AppointmentTitle       string `json:"appointmentTitle,omitempty"`
	AppointmentDate        string `json:"appointmentDate,omitempty"`
	AppointmentTime        string `json:"appointmentTime,omitempty"`
	AppointmentLocation    string `json:"appointmentLocation,omitempty"`
	AppointmentDescription string `json:"appointmentDescription,omitempty"`

	PollTitle       string `json:"pollTitle,omitempty"`
	PollDescription string `json:"pollDescription,omitempty"`
	EndsAt          string `json:"endsAt,omitempty"`

	CreatorName string `json:"creatorName,omitempty"`
}

// Message is a rendered email ready for a Dispatcher
type Message struct {
	Type    Type
	To      string
	Subject string
	HTML    string
}

var (
	// ErrUnknownType is returned for a notification type without a template
	ErrUnknownType = errors.New("unknown notification type")
	// ErrMissingRecipient is returned when Data.To is empty
	ErrMissingRecipient = errors.New("missing recipient address")
)

// DispatchError reports a provider-level failure
type DispatchError struct {
	Provider   string
	StatusCode int // zero for transport errors
	Message    string
}

func (e *DispatchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
