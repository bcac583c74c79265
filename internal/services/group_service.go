package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"groupsync/internal/email"
	"groupsync/internal/logger"
	"groupsync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const inviteCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GroupService manages groups and memberships
type GroupService struct {
	db     *gorm.DB
	notify Notifications
}

func NewGroupService(db *gorm.DB, notify Notifications) *GroupService {
	return &GroupService{db: db, notify: notify}
}

// GroupWithMembers is a group as seen by one of its members
type GroupWithMembers struct {
	models.Group
	Members     []models.MemberProfile `json:"members"`
	MemberCount int                    `json:"member_count"`
}

// inviteCodeLimit is the largest multiple of the alphabet size that fits in a byte;
// bytes at or above it are redrawn so every character is equally likely
const inviteCodeLimit = 256 - 256%len(inviteCodeAlphabet)

// GenerateInviteCode returns a random lowercase code of n characters
func GenerateInviteCode(n int) (string, error) {
	return inviteCodeFrom(rand.Reader, n)
}

func inviteCodeFrom(r io.Reader, n int) (string, error) {
	code := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(code) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= inviteCodeLimit {
				continue
			}
			code = append(code, inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)])
			if len(code) == n {
				break
			}
		}
	}
	return string(code), nil
}

// Create stores a new group and makes the actor its owner
func (s *GroupService) Create(ctx context.Context, actor Actor, req models.CreateGroupRequest) (models.Group, error) {
	if !validLength(req.Name, 1, 100) || len([]rune(req.Description)) > 500 {
		return models.Group{}, ErrInvalidInput
	}
	if req.MaxMembers == 0 {
		req.MaxMembers = models.DefaultMaxMembers
	}
	if req.MaxMembers < 2 || req.MaxMembers > 10 {
		return models.Group{}, fmt.Errorf("%w: max_members must be between 2 and 10", ErrInvalidInput)
	}

	var group models.Group
	for attempt := 0; attempt < 5; attempt++ {
		code, err := GenerateInviteCode(8)
		if err != nil {
			return models.Group{}, fmt.Errorf("generate invite code: %w", err)
		}
		group = models.Group{
			Name:        strings.TrimSpace(req.Name),
			Description: optional(req.Description),
			Subject:     optional(req.Subject),
			InviteCode:  code,
			MaxMembers:  req.MaxMembers,
			Deadline:    req.Deadline,
			CreatedBy:   actor.UserID,
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			owner := models.GroupMember{GroupID: group.ID, UserID: actor.UserID, Role: models.RoleOwner}
			return tx.Create(&owner).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return models.Group{}, fmt.Errorf("create group: %w", err)
		}
		logger.Named("groups").Infof("Group %s created by %s", group.ID, actor.UserID)
		return group, nil
	}
	return models.Group{}, errors.New("could not allocate a unique invite code")
}

// GetByInviteCode returns the public summary of a group. The code is matched case-insensitively.
func (s *GroupService) GetByInviteCode(ctx context.Context, code string) (models.GroupSummary, error) {
	var summary models.GroupSummary
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return summary, ErrNotFound
	}

	var group models.Group
	err := s.db.WithContext(ctx).Where("LOWER(invite_code) = ?", code).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return summary, ErrNotFound
	}
	if err != nil {
		return summary, fmt.Errorf("load group: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count).Error; err != nil {
		return summary, fmt.Errorf("count members: %w", err)
	}

	return models.GroupSummary{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Subject:     group.Subject,
		MaxMembers:  group.MaxMembers,
		Deadline:    group.Deadline,
		MemberCount: count,
	}, nil
}

// JoinByCode adds the actor to the group behind code. The capacity check and
// the insert share one transaction holding a lock on the group row.
func (s *GroupService) JoinByCode(ctx context.Context, actor Actor, code string) (models.Group, error) {
	code = strings.ToLower(strings.TrimSpace(code))

	var group models.Group
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("LOWER(invite_code) = ?", code).
			First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ?", group.ID, actor.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		var count int64
		if err := tx.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(group.MaxMembers) {
			return ErrGroupFull
		}

		member := models.GroupMember{GroupID: group.ID, UserID: actor.UserID, Role: models.RoleMember}
		if err := tx.Create(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	logger.Named("groups").Infof("User %s joined group %s", actor.UserID, group.ID)
	return group, nil
}

// Leave removes the actor from a group. Owners must delete the group instead.
func (s *GroupService) Leave(ctx context.Context, actor Actor, groupID string) error {
	_, member, err := requireMember(ctx, s.db, groupID, actor.UserID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleOwner {
		return fmt.Errorf("%w: the owner cannot leave the group", ErrForbidden)
	}
	return s.db.WithContext(ctx).Delete(&member).Error
}

// Delete removes a group and everything in it. Only the owner may do this.
func (s *GroupService) Delete(ctx context.Context, actor Actor, groupID string) error {
	group, member, err := requireMember(ctx, s.db, groupID, actor.UserID)
	if errors.Is(err, ErrNotMember) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if member.Role != models.RoleOwner && group.CreatedBy != actor.UserID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pollIDs := tx.Model(&models.Poll{}).Select("id").Where("group_id = ?", groupID)
		if err := tx.Where("poll_id IN (?)", pollIDs).Delete(&models.PollVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id IN (?)", pollIDs).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.Poll{}, &models.Task{}, &models.Appointment{}, &models.GroupLink{}, &models.GroupMember{}} {
			if err := tx.Where("group_id = ?", groupID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&group).Error
	})
}

// ListForUser returns every group the actor belongs to, newest first
func (s *GroupService) ListForUser(ctx context.Context, actor Actor) ([]GroupWithMembers, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", actor.UserID)).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	out := make([]GroupWithMembers, 0, len(groups))
	for _, g := range groups {
		members, err := s.memberProfiles(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, GroupWithMembers{Group: g, Members: members, MemberCount: len(members)})
	}
	return out, nil
}

// Get returns one group with its members; only members may see it
func (s *GroupService) Get(ctx context.Context, actor Actor, groupID string) (GroupWithMembers, error) {
	group, _, err := requireMember(ctx, s.db, groupID, actor.UserID)
	if err != nil {
		return GroupWithMembers{}, err
	}
	members, err := s.memberProfiles(ctx, groupID)
	if err != nil {
		return GroupWithMembers{}, err
	}
	return GroupWithMembers{Group: group, Members: members, MemberCount: len(members)}, nil
}

// MemberProfiles returns the public profiles of a group's members. Email addresses are never included.
func (s *GroupService) MemberProfiles(ctx context.Context, actor Actor, groupID string) ([]models.MemberProfile, error) {
	if _, _, err := requireMember(ctx, s.db, groupID, actor.UserID); err != nil {
		return nil, err
	}
	return s.memberProfiles(ctx, groupID)
}

func (s *GroupService) memberProfiles(ctx context.Context, groupID string) ([]models.MemberProfile, error) {
	var members []models.GroupMember
	if err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Order("joined_at").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	profiles, err := profilesByID(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	out := make([]models.MemberProfile, 0, len(members))
	for _, m := range members {
		p, ok := profiles[m.UserID]
		if !ok {
			p = models.Profile{ID: m.UserID}
		}
		out = append(out, p.Public(m.Role))
	}
	return out, nil
}

// Invite emails the group's invite code to an address
func (s *GroupService) Invite(ctx context.Context, actor Actor, groupID string, req models.InviteRequest) error {
	group, _, err := requireMember(ctx, s.db, groupID, actor.UserID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	s.notify.EnqueueEmail(email.TypeGroupInvite, email.Data{
		To:            strings.TrimSpace(req.Email),
		RecipientName: req.Name,
		GroupName:     group.Name,
		InviterName:   actorName(ctx, s.db, actor.UserID),
		InviteCode:    strings.ToUpper(group.InviteCode),
	})
	return nil
}

// AvailableMember is one member free in a given slot
type AvailableMember struct {
	UserID      string  `json:"user_id"`
	DisplayName *string `json:"display_name"`
}

// AvailabilityGrid lists, per weekday and time slot, the members who are free
type AvailabilityGrid struct {
	TotalMembers int                                     `json:"total_members"`
	Slots        map[string]map[string][]AvailableMember `json:"slots"`
}

// Availability aggregates the members' weekly availability
func (s *GroupService) Availability(ctx context.Context, actor Actor, groupID string) (AvailabilityGrid, error) {
	members, err := s.MemberProfiles(ctx, actor, groupID)
	if err != nil {
		return AvailabilityGrid{}, err
	}
	return aggregateAvailability(members), nil
}

func aggregateAvailability(members []models.MemberProfile) AvailabilityGrid {
	grid := AvailabilityGrid{
		TotalMembers: len(members),
		Slots:        make(map[string]map[string][]AvailableMember, len(models.Weekdays)),
	}
	for _, day := range models.Weekdays {
		grid.Slots[day] = make(map[string][]AvailableMember, len(models.TimeSlots))
		for _, slot := range models.TimeSlots {
			grid.Slots[day][slot] = []AvailableMember{}
		}
	}

	for _, m := range members {
		for day, slots := range m.Availability {
			daySlots, ok := grid.Slots[day]
			if !ok {
				continue
			}
			for _, slot := range slots {
				if _, ok := daySlots[slot]; ok {
					daySlots[slot] = append(daySlots[slot], AvailableMember{UserID: m.ID, DisplayName: m.DisplayName})
				}
			}
		}
	}
	return grid
}
