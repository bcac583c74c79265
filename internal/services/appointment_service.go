package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groupsync/internal/email"
	"groupsync/internal/models"

	"gorm.io/gorm"
)

// AppointmentService manages group appointments
type AppointmentService struct {
	db     *gorm.DB
	notify Notifications
	places PlaceResolver
	loc    *time.Location
}

// NewAppointmentService builds the service; places may be nil when no maps key is configured
func NewAppointmentService(db *gorm.DB, notify Notifications, places PlaceResolver, loc *time.Location) *AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentService{db: db, notify: notify, places: places, loc: loc}
}

// List returns the group's appointments ordered by start time
func (s *AppointmentService) List(ctx context.Context, actor Actor, groupID string) ([]models.Appointment, error) {
	if _, _, err := requireMember(ctx, s.db, groupID, actor.UserID); err != nil {
		return nil, err
	}
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Order("start_time").Find(&appointments).Error
	return appointments, err
}

// Create stores an appointment and notifies the other members
func (s *AppointmentService) Create(ctx context.Context, actor Actor, groupID string, req models.AppointmentRequest) (models.Appointment, error) {
	group, _, err := requireMember(ctx, s.db, groupID, actor.UserID)
	if err != nil {
		return models.Appointment{}, err
	}
	if err := s.prepare(ctx, &req); err != nil {
		return models.Appointment{}, err
	}

	a := models.Appointment{
		GroupID:     groupID,
		Title:       strings.TrimSpace(req.Title),
		Description: optional(req.Description),
		Location:    optional(req.Location),
		StartTime:   req.StartTime.UTC(),
		EndTime:     utcPtr(req.EndTime),
		CreatedBy:   actor.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return models.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}

	s.notify.Enqueue(NotifyRequest{
		GroupID:       groupID,
		ExcludeUserID: actor.UserID,
		EmailType:     email.TypeAppointmentCreated,
		EmailData: email.Data{
			GroupName:              group.Name,
			AppointmentTitle:       a.Title,
			AppointmentDescription: deref(a.Description),
			AppointmentDate:        email.FormatDate(a.StartTime, s.loc),
			AppointmentTime:        email.FormatTime(a.StartTime, s.loc),
			AppointmentLocation:    deref(a.Location),
			CreatorName:            actorName(ctx, s.db, actor.UserID),
		},
	})
	return a, nil
}

// Update replaces an appointment's details; only its creator may do this
func (s *AppointmentService) Update(ctx context.Context, actor Actor, appointmentID string, req models.AppointmentRequest) (models.Appointment, error) {
	a, err := s.load(ctx, actor, appointmentID)
	if err != nil {
		return a, err
	}
	if a.CreatedBy != actor.UserID {
		return a, ErrForbidden
	}
	if err := s.prepare(ctx, &req); err != nil {
		return a, err
	}

	a.Title = strings.TrimSpace(req.Title)
	a.Description = optional(req.Description)
	a.Location = optional(req.Location)
	a.StartTime = req.StartTime.UTC()
	a.EndTime = utcPtr(req.EndTime)
	if err := s.db.WithContext(ctx).Save(&a).Error; err != nil {
		return a, fmt.Errorf("update appointment: %w", err)
	}
	return a, nil
}

// Delete removes an appointment; only its creator may do this
func (s *AppointmentService) Delete(ctx context.Context, actor Actor, appointmentID string) error {
	a, err := s.load(ctx, actor, appointmentID)
	if err != nil {
		return err
	}
	if a.CreatedBy != actor.UserID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(&a).Error
}

// prepare validates req and resolves a place id into the location
func (s *AppointmentService) prepare(ctx context.Context, req *models.AppointmentRequest) error {
	if !validLength(req.Title, 1, 200) || len([]rune(req.Description)) > 1000 {
		return ErrInvalidInput
	}
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrInvalidInput)
	}

	if req.PlaceID == "" {
		if len([]rune(req.Location)) > 200 {
			return fmt.Errorf("%w: location is too long", ErrInvalidInput)
		}
		return nil
	}

	if s.places == nil {
		return fmt.Errorf("%w: place lookup is not available", ErrInvalidInput)
	}
	address, err := s.places.ResolvePlace(ctx, req.PlaceID)
	if err != nil {
		return fmt.Errorf("%w: unknown place", ErrInvalidInput)
	}
	if runes := []rune(address); len(runes) > 200 {
		address = string(runes[:200])
	}
	req.Location = address
	return nil
}

func (s *AppointmentService) load(ctx context.Context, actor Actor, appointmentID string) (models.Appointment, error) {
	var a models.Appointment
	err := s.db.WithContext(ctx).First(&a, "id = ?", appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, ErrNotFound
	}
	if err != nil {
		return a, fmt.Errorf("load appointment: %w", err)
	}
	_, _, err = requireMember(ctx, s.db, a.GroupID, actor.UserID)
	return a, err
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
