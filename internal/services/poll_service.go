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

// PollService manages group polls and votes
type PollService struct {
	db     *gorm.DB
	notify Notifications
	loc    *time.Location
	now    func() time.Time
}

func NewPollService(db *gorm.DB, notify Notifications, loc *time.Location) *PollService {
	if loc == nil {
		loc = time.UTC
	}
	return &PollService{db: db, notify: notify, loc: loc, now: time.Now}
}

// List returns the group's polls with tallies for the actor, newest first
func (s *PollService) List(ctx context.Context, actor Actor, groupID string) ([]models.PollResults, error) {
	if _, _, err := requireMember(ctx, s.db, groupID, actor.UserID); err != nil {
		return nil, err
	}
	var polls []models.Poll
	if err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Order("created_at DESC").Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}

	out := make([]models.PollResults, 0, len(polls))
	for _, p := range polls {
		r, err := s.results(ctx, s.db, p, actor.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Get returns one poll with tallies for the actor
func (s *PollService) Get(ctx context.Context, actor Actor, pollID string) (models.PollResults, error) {
	poll, err := s.load(ctx, actor, pollID)
	if err != nil {
		return models.PollResults{}, err
	}
	return s.results(ctx, s.db, poll, actor.UserID)
}

// Create stores a poll with its options and notifies the other members
func (s *PollService) Create(ctx context.Context, actor Actor, groupID string, req models.CreatePollRequest) (models.PollResults, error) {
	group, _, err := requireMember(ctx, s.db, groupID, actor.UserID)
	if err != nil {
		return models.PollResults{}, err
	}
	if !validLength(req.Title, 1, 200) || len([]rune(req.Description)) > 1000 {
		return models.PollResults{}, ErrInvalidInput
	}

	var options []string
	for _, o := range req.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	if len(options) < 2 {
		return models.PollResults{}, fmt.Errorf("%w: a poll needs at least two options", ErrInvalidInput)
	}

	poll := models.Poll{
		GroupID:            groupID,
		Title:              strings.TrimSpace(req.Title),
		Description:        optional(req.Description),
		AllowMultipleVotes: req.AllowMultipleVotes,
		IsAnonymous:        req.IsAnonymous,
		EndsAt:             utcPtr(req.EndsAt),
		CreatedBy:          actor.UserID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&poll).Error; err != nil {
			return err
		}
		rows := make([]models.PollOption, len(options))
		for i, text := range options {
			rows[i] = models.PollOption{PollID: poll.ID, OptionText: text, Position: i}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return models.PollResults{}, fmt.Errorf("create poll: %w", err)
	}

	data := email.Data{
		GroupName:       group.Name,
		PollTitle:       poll.Title,
		PollDescription: deref(poll.Description),
		CreatorName:     actorName(ctx, s.db, actor.UserID),
	}
	if poll.EndsAt != nil {
		data.EndsAt = email.FormatDateTime(*poll.EndsAt, s.loc)
	}
	s.notify.Enqueue(NotifyRequest{GroupID: groupID, ExcludeUserID: actor.UserID, EmailType: email.TypePollCreated, EmailData: data})

	return s.results(ctx, s.db, poll, actor.UserID)
}

// Vote toggles the actor's vote on an option. Voting for a selected option
// retracts it; on a single-choice poll a new choice replaces the old one.
// The whole transition runs in one transaction.
func (s *PollService) Vote(ctx context.Context, actor Actor, pollID, optionID string) (models.PollResults, error) {
	poll, err := s.load(ctx, actor, pollID)
	if err != nil {
		return models.PollResults{}, err
	}
	if poll.Ended(s.now()) {
		return models.PollResults{}, ErrPollEnded
	}

	var out models.PollResults
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var option models.PollOption
		err := tx.Where("id = ? AND poll_id = ?", optionID, pollID).First(&option).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: option does not belong to this poll", ErrInvalidInput)
		}
		if err != nil {
			return err
		}

		var selected int64
		if err := tx.Model(&models.PollVote{}).
			Where("poll_id = ? AND option_id = ? AND user_id = ?", pollID, optionID, actor.UserID).
			Count(&selected).Error; err != nil {
			return err
		}

		if !poll.AllowMultipleVotes {
			if err := tx.Where("poll_id = ? AND user_id = ?", pollID, actor.UserID).Delete(&models.PollVote{}).Error; err != nil {
				return err
			}
		} else if selected > 0 {
			if err := tx.Where("poll_id = ? AND option_id = ? AND user_id = ?", pollID, optionID, actor.UserID).Delete(&models.PollVote{}).Error; err != nil {
				return err
			}
		}

		if selected == 0 {
			vote := models.PollVote{PollID: pollID, OptionID: optionID, UserID: actor.UserID}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		}

		out, err = s.results(ctx, tx, poll, actor.UserID)
		return err
	})
	if err != nil {
		return models.PollResults{}, err
	}
	return out, nil
}

// Delete removes a poll; only its creator may do this
func (s *PollService) Delete(ctx context.Context, actor Actor, pollID string) error {
	poll, err := s.load(ctx, actor, pollID)
	if err != nil {
		return err
	}
	if poll.CreatedBy != actor.UserID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.PollVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&poll).Error
	})
}

func (s *PollService) load(ctx context.Context, actor Actor, pollID string) (models.Poll, error) {
	var poll models.Poll
	err := s.db.WithContext(ctx).First(&poll, "id = ?", pollID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return poll, ErrNotFound
	}
	if err != nil {
		return poll, fmt.Errorf("load poll: %w", err)
	}
	_, _, err = requireMember(ctx, s.db, poll.GroupID, actor.UserID)
	return poll, err
}

// results reads options and votes through db, which may be a transaction
func (s *PollService) results(ctx context.Context, db *gorm.DB, poll models.Poll, viewerID string) (models.PollResults, error) {
	var options []models.PollOption
	if err := db.WithContext(ctx).Where("poll_id = ?", poll.ID).Order("position").Find(&options).Error; err != nil {
		return models.PollResults{}, fmt.Errorf("load options: %w", err)
	}
	var votes []models.PollVote
	if err := db.WithContext(ctx).Where("poll_id = ?", poll.ID).Find(&votes).Error; err != nil {
		return models.PollResults{}, fmt.Errorf("load votes: %w", err)
	}

	results, userVotes, total := Tally(options, votes, viewerID)
	return models.PollResults{Poll: poll, Options: results, UserVotes: userVotes, TotalVotes: total}, nil
}
