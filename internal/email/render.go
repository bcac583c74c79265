package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = mustParseTemplates()

func mustParseTemplates() map[Type]*template.Template {
	base := template.Must(template.ParseFS(templateFS, "templates/layout.html"))
	out := make(map[Type]*template.Template, len(Types))
	for _, t := range Types {
		clone := template.Must(base.Clone())
		out[t] = template.Must(clone.ParseFS(templateFS, "templates/"+string(t)+".html"))
	}
	return out
}

var priorityLabels = map[string]string{
	"low":    "Niedrig",
	"medium": "Mittel",
	"high":   "Hoch",
}

var priorityColors = map[string]template.CSS{
	"low":    "#10B981",
	"medium": "#F59E0B",
	"high":   "#EF4444",
}

// view is what the templates see after placeholders are applied
type view struct {
	Recipient     string
	Group         string
	Actor         string
	InviteCode    string
	Title         string
	Description   string
	DueDate       string
	PriorityLabel string
	PriorityColor template.CSS
	Date          string
	Time          string
	Location      string
	EndsAt        string
	Year          int
}

// Renderer turns a notification type and payload into a Message
type Renderer struct {
	now func() time.Time
}

// NewRenderer returns a Renderer whose footer year comes from now
func NewRenderer(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{now: now}
}

var defaultRenderer = NewRenderer(nil)

// Render renders with the wall clock
func Render(t Type, d Data) (Message, error) {
	return defaultRenderer.Render(t, d)
}

// Render builds the subject and HTML body for t.
// It fails only for an unknown type or an empty recipient address.
func (r *Renderer) Render(t Type, d Data) (Message, error) {
	tmpl, ok := templates[t]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if strings.TrimSpace(d.To) == "" {
		return Message{}, ErrMissingRecipient
	}

	v, subject := buildView(t, d)
	v.Year = r.now().Year()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", t, err)
	}

	return Message{
		Type:    t,
		To:      d.To,
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}

func buildView(t Type, d Data) (view, string) {
	v := view{Recipient: fallback(d.RecipientName, "Studierende/r")}

	switch t {
	case TypeWelcome:
		return v, "Willkommen bei GroupSync! 🎉"

	case TypeGroupInvite:
		v.Group = fallback(d.GroupName, "Gruppe")
		v.Actor = fallback(d.InviterName, "Jemand")
		v.InviteCode = fallback(d.InviteCode, "XXXXXX")
		return v, fmt.Sprintf("%s hat dich zu \"%s\" eingeladen", v.Actor, v.Group)

	case TypeTaskNotification, TypeTaskDueReminder, TypeTaskAssigned, TypeTaskCreated:
		v.Title = fallback(d.TaskTitle, "Aufgabe")
		v.Description = d.TaskDescription
		v.DueDate = d.DueDate
		v.Group = fallback(d.GroupName, "Gruppe")
		v.Actor = fallback(d.AssignerName, "Jemand")
		switch t {
		case TypeTaskNotification:
			return v, "Neue Aufgabe: " + v.Title
		case TypeTaskDueReminder:
			return v, "⏰ Aufgabe fällig: " + v.Title
		case TypeTaskAssigned:
			return v, "📋 Aufgabe zugewiesen: " + v.Title
		}
		v.Actor = fallback(d.CreatorName, "Jemand")
		priority := d.Priority
		if _, ok := priorityLabels[priority]; !ok {
			priority = "medium"
		}
		v.PriorityLabel = priorityLabels[priority]
		v.PriorityColor = priorityColors[priority]
		return v, "📋 Neue Aufgabe: " + v.Title

	case TypeAppointmentReminder, TypeAppointmentCreated:
		v.Title = fallback(d.AppointmentTitle, "Termin")
		v.Date = d.AppointmentDate
		v.Time = d.AppointmentTime
		v.Location = d.AppointmentLocation
		if t == TypeAppointmentReminder {
			return v, "Erinnerung: " + v.Title
		}
		v.Description = d.AppointmentDescription
		v.Actor = fallback(d.CreatorName, "Jemand")
		v.Group = fallback(d.GroupName, "Gruppe")
		return v, "📅 Neuer Termin: " + v.Title

	case TypePollReminder, TypePollCreated:
		v.Title = fallback(d.PollTitle, "Umfrage")
		v.EndsAt = d.EndsAt
		if t == TypePollReminder {
			return v, "🗳️ Umfrage endet bald: " + v.Title
		}
		v.Description = d.PollDescription
		v.Actor = fallback(d.CreatorName, "Jemand")
		v.Group = fallback(d.GroupName, "Gruppe")
		return v, "🗳️ Neue Umfrage: " + v.Title
	}

	return v, ""
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
