package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"groupsync/internal/models"

	"gorm.io/gorm"
)

// unknownCreator is shown for links whose author has no profile name
const unknownCreator = "Unbekannt"

// LinkService manages the links a group shares
type LinkService struct {
	db *gorm.DB
}

func NewLinkService(db *gorm.DB) *LinkService {
	return &LinkService{db: db}
}

// List returns the group's links, newest first, with creator names resolved
func (s *LinkService) List(ctx context.Context, actor Actor, groupID string) ([]models.GroupLinkView, error) {
	if _, _, err := requireMember(ctx, s.db, groupID, actor.UserID); err != nil {
		return nil, err
	}
	var links []models.GroupLink
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return s.withCreators(ctx, links)
}

// Create adds a link to the group
func (s *LinkService) Create(ctx context.Context, actor Actor, groupID string, req models.LinkRequest) (models.GroupLinkView, error) {
	if _, _, err := requireMember(ctx, s.db, groupID, actor.UserID); err != nil {
		return models.GroupLinkView{}, err
	}
	link := models.GroupLink{GroupID: groupID, CreatedBy: actor.UserID}
	if err := applyLink(&link, req); err != nil {
		return models.GroupLinkView{}, err
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return models.GroupLinkView{}, fmt.Errorf("create link: %w", err)
	}
	return s.view(ctx, link)
}

// Update replaces a link's url and title; the creator or the group owner may do this
func (s *LinkService) Update(ctx context.Context, actor Actor, linkID string, req models.LinkRequest) (models.GroupLinkView, error) {
	link, err := s.loadForChange(ctx, actor, linkID)
	if err != nil {
		return models.GroupLinkView{}, err
	}
	if err := applyLink(&link, req); err != nil {
		return models.GroupLinkView{}, err
	}
	if err := s.db.WithContext(ctx).Model(&link).
		Updates(map[string]interface{}{"url": link.URL, "title": link.Title}).Error; err != nil {
		return models.GroupLinkView{}, fmt.Errorf("update link: %w", err)
	}
	return s.view(ctx, link)
}

// Delete removes a link; the creator or the group owner may do this
func (s *LinkService) Delete(ctx context.Context, actor Actor, linkID string) error {
	link, err := s.loadForChange(ctx, actor, linkID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&link).Error
}

func (s *LinkService) loadForChange(ctx context.Context, actor Actor, linkID string) (models.GroupLink, error) {
	var link models.GroupLink
	err := s.db.WithContext(ctx).First(&link, "id = ?", linkID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return link, ErrNotFound
	}
	if err != nil {
		return link, fmt.Errorf("load link: %w", err)
	}
	_, member, err := requireMember(ctx, s.db, link.GroupID, actor.UserID)
	if err != nil {
		return link, err
	}
	if link.CreatedBy != actor.UserID && member.Role != models.RoleOwner {
		return link, ErrForbidden
	}
	return link, nil
}

func (s *LinkService) view(ctx context.Context, link models.GroupLink) (models.GroupLinkView, error) {
	views, err := s.withCreators(ctx, []models.GroupLink{link})
	if err != nil {
		return models.GroupLinkView{}, err
	}
	return views[0], nil
}

func (s *LinkService) withCreators(ctx context.Context, links []models.GroupLink) ([]models.GroupLinkView, error) {
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.CreatedBy)
	}
	profiles, err := profilesByID(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("load link creators: %w", err)
	}

	views := make([]models.GroupLinkView, len(links))
	for i, l := range links {
		name := ""
		if p, ok := profiles[l.CreatedBy]; ok && p.DisplayName != nil {
			name = strings.TrimSpace(*p.DisplayName)
		}
		if name == "" {
			name = unknownCreator
		}
		views[i] = models.GroupLinkView{GroupLink: l, CreatorName: name}
	}
	return views, nil
}

// applyLink validates req and copies it onto link. Only absolute http(s) urls are accepted.
func applyLink(link *models.GroupLink, req models.LinkRequest) error {
	raw := strings.TrimSpace(req.URL)
	if raw == "" || len(raw) > 2000 || len([]rune(req.Title)) > 200 {
		return ErrInvalidInput
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url must start with http:// or https://", ErrInvalidInput)
	}
	link.URL = raw
	link.Title = optional(req.Title)
	return nil
}
