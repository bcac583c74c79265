package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"groupsync/internal/models"

	"gorm.io/gorm"
)

// Actor is the authenticated user on whose behalf an operation runs
type Actor struct {
	UserID string
}

// requireMember loads the group and checks that userID belongs to it
func requireMember(ctx context.Context, db *gorm.DB, groupID, userID string) (models.Group, models.GroupMember, error) {
	var group models.Group
	if err := db.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group, models.GroupMember{}, ErrNotFound
		}
		return group, models.GroupMember{}, fmt.Errorf("load group: %w", err)
	}

	var member models.GroupMember
	err := db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return group, member, ErrNotMember
	}
	if err != nil {
		return group, member, fmt.Errorf("load membership: %w", err)
	}
	return group, member, nil
}

// memberIDs returns the user ids of every member of groupID
func memberIDs(ctx context.Context, db *gorm.DB, groupID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("joined_at").
		Pluck("user_id", &ids).Error
	return ids, err
}

// profilesByID loads the profiles for ids keyed by id
func profilesByID(ctx context.Context, db *gorm.DB, ids []string) (map[string]models.Profile, error) {
	out := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var profiles []models.Profile
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

// displayName prefers the profile's display name, then the local part of its email
func displayName(p models.Profile) string {
	if p.DisplayName != nil && strings.TrimSpace(*p.DisplayName) != "" {
		return *p.DisplayName
	}
	if p.Email != nil {
		if at := strings.IndexByte(*p.Email, '@'); at > 0 {
			return (*p.Email)[:at]
		}
	}
	return ""
}

// actorName resolves a user's display name, empty when unknown
func actorName(ctx context.Context, db *gorm.DB, userID string) string {
	var p models.Profile
	if err := db.WithContext(ctx).First(&p, "id = ?", userID).Error; err != nil {
		return ""
	}
	return displayName(p)
}

func emailOf(p models.Profile) string {
	if p.Email == nil {
		return ""
	}
	return strings.TrimSpace(*p.Email)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func validLength(s string, min, max int) bool {
	n := len([]rune(strings.TrimSpace(s)))
	return n >= min && n <= max
}
