package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"groupsync/internal/email"
	"groupsync/internal/logger"
	"groupsync/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// NotifyRequest asks for one email per group member except the actor
type NotifyRequest struct {
	GroupID       string     `json:"groupId" binding:"required"`
	ExcludeUserID string     `json:"excludeUserId"`
	EmailType     email.Type `json:"emailType" binding:"required"`
	EmailData     email.Data `json:"emailData"`
}

// NotifyResult counts attempted sends. Errors holds one entry per failed dispatch.
type NotifyResult struct {
	NotifiedCount int      `json:"notifiedCount"`
	Errors        []string `json:"errors"`
	Message       string   `json:"message,omitempty"`
}

// Notifier fans a group event out to the group's members
type Notifier struct {
	db          *gorm.DB
	mailer      *email.Mailer
	concurrency int
}

func NewNotifier(db *gorm.DB, mailer *email.Mailer, concurrency int) *Notifier {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Notifier{db: db, mailer: mailer, concurrency: concurrency}
}

// Notify resolves the recipients and dispatches to each of them concurrently.
// Individual dispatch failures are collected, never returned as the error.
func (n *Notifier) Notify(ctx context.Context, req NotifyRequest) (NotifyResult, error) {
	log := logger.Named("notify")
	result := NotifyResult{Errors: []string{}}

	if !req.EmailType.Valid() {
		return result, fmt.Errorf("%w: %q", email.ErrUnknownType, req.EmailType)
	}

	var group models.Group
	if err := n.db.WithContext(ctx).Select("id", "name").First(&group, "id = ?", req.GroupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, ErrNotFound
		}
		return result, fmt.Errorf("load group: %w", err)
	}

	ids, err := memberIDs(ctx, n.db, req.GroupID)
	if err != nil {
		return result, fmt.Errorf("load members: %w", err)
	}

	recipients := ids[:0:0]
	for _, id := range ids {
		if id != req.ExcludeUserID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		log.Debugf("No members to notify for %s in group %s", req.EmailType, req.GroupID)
		result.Message = "No members to notify"
		return result, nil
	}

	profiles, err := profilesByID(ctx, n.db, recipients)
	if err != nil {
		return result, fmt.Errorf("load profiles: %w", err)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(n.concurrency)

	for _, id := range recipients {
		profile, ok := profiles[id]
		if !ok || emailOf(profile) == "" {
			continue
		}
		result.NotifiedCount++

		data := req.EmailData
		data.To = emailOf(profile)
		data.RecipientName = displayName(profile)
		if data.GroupName == "" {
			data.GroupName = group.Name
		}

		g.Go(func() error {
			if _, err := n.mailer.Send(ctx, req.EmailType, data); err != nil {
				log.Warnf("Failed to send %s to %s: %v", req.EmailType, data.To, err)
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", data.To, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Message = fmt.Sprintf("Notified %d members", result.NotifiedCount)
	log.Infof("Sent %s to %d members of group %s (%d failed)", req.EmailType, result.NotifiedCount, req.GroupID, len(result.Errors))
	return result, nil
}
