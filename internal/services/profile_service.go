package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"groupsync/internal/email"
	"groupsync/internal/logger"
	"groupsync/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProfileService manages the actor's own profile
type ProfileService struct {
	db     *gorm.DB
	notify Notifications
}

func NewProfileService(db *gorm.DB, notify Notifications) *ProfileService {
	return &ProfileService{db: db, notify: notify}
}

// Get returns the actor's profile
func (s *ProfileService) Get(ctx context.Context, actor Actor) (models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).First(&p, "id = ?", actor.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, ErrNotFound
	}
	return p, err
}

// Upsert creates or updates the actor's profile. The first creation with an
// email address queues a welcome email.
func (s *ProfileService) Upsert(ctx context.Context, actor Actor, req models.UpsertProfileRequest) (models.Profile, error) {
	availability, err := cleanAvailability(req.Availability)
	if err != nil {
		return models.Profile{}, err
	}

	var (
		p       models.Profile
		created bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&p, "id = ?", actor.UserID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			p = models.Profile{ID: actor.UserID, PreferredGroupSize: 4}
		case err != nil:
			return err
		}

		if req.Email != "" {
			p.Email = optional(req.Email)
		}
		p.DisplayName = optional(req.DisplayName)
		p.University = optional(req.University)
		p.Faculty = optional(req.Faculty)
		p.StudyProgram = optional(req.StudyProgram)
		p.Semester = req.Semester
		p.Bio = optional(req.Bio)
		p.Skills = datatypes.JSONSlice[string](cleanSkills(req.Skills))
		p.Availability = datatypes.NewJSONType(availability)
		if req.PreferredGroupSize != 0 {
			p.PreferredGroupSize = req.PreferredGroupSize
		}
		p.ProfileCompleted = p.DisplayName != nil && p.University != nil && p.StudyProgram != nil

		if created {
			return tx.Create(&p).Error
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	if created && emailOf(p) != "" {
		logger.Named("profiles").Infof("Profile %s created, sending welcome email", p.ID)
		s.notify.EnqueueEmail(email.TypeWelcome, email.Data{To: emailOf(p), RecipientName: displayName(p)})
	}
	return p, nil
}

// SetAvatar stores the avatar URL on the actor's profile
func (s *ProfileService) SetAvatar(ctx context.Context, actor Actor, url string) (models.Profile, error) {
	p, err := s.Get(ctx, actor)
	if err != nil {
		return p, err
	}
	p.AvatarURL = &url
	if err := s.db.WithContext(ctx).Model(&p).Update("avatar_url", url).Error; err != nil {
		return p, fmt.Errorf("update avatar: %w", err)
	}
	return p, nil
}

// cleanAvailability keeps known weekdays and slots and rejects anything else
func cleanAvailability(in models.Availability) (models.Availability, error) {
	out := models.Availability{}
	for day, slots := range in {
		if !contains(models.Weekdays, day) {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, day)
		}
		var kept []string
		for _, slot := range slots {
			if !contains(models.TimeSlots, slot) {
				return nil, fmt.Errorf("%w: unknown time slot %q", ErrInvalidInput, slot)
			}
			if !contains(kept, slot) {
				kept = append(kept, slot)
			}
		}
		if len(kept) > 0 {
			out[day] = kept
		}
	}
	return out, nil
}

func cleanSkills(in []string) []string {
	out := []string{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
