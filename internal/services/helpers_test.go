package services

import (
	"context"
	"sync"
	"testing"

	"groupsync/internal/database/dbtest"
	"groupsync/internal/email"
	"groupsync/internal/email/emailtest"
	"groupsync/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingNotify captures queued notifications instead of sending them
type recordingNotify struct {
	mu      sync.Mutex
	fanOuts []NotifyRequest
	emails  []directEmail
}

func (r *recordingNotify) Enqueue(req NotifyRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fanOuts = append(r.fanOuts, req)
	return true
}

func (r *recordingNotify) EnqueueEmail(t email.Type, d email.Data) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, directEmail{t: t, d: d})
	return true
}

type fixture struct {
	db       *gorm.DB
	notify   *recordingNotify
	recorder *emailtest.Recorder
	mailer   *email.Mailer
	groups   *GroupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	recorder := &emailtest.Recorder{}
	notify := &recordingNotify{}
	return &fixture{
		db:       db,
		notify:   notify,
		recorder: recorder,
		mailer:   email.NewMailer(nil, recorder),
		groups:   NewGroupService(db, notify),
	}
}

// addProfile stores a profile; an empty address leaves the email unset
func (f *fixture) addProfile(t *testing.T, id, name, address string) {
	t.Helper()
	p := models.Profile{ID: id, DisplayName: optional(name), Email: optional(address)}
	require.NoError(t, f.db.Create(&p).Error)
}

// newGroup creates a group owned by owner and adds the other members directly
func (f *fixture) newGroup(t *testing.T, owner string, members ...string) models.Group {
	t.Helper()
	group, err := f.groups.Create(context.Background(), Actor{UserID: owner}, models.CreateGroupRequest{Name: "Analysis I"})
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, f.db.Create(&models.GroupMember{GroupID: group.ID, UserID: m, Role: models.RoleMember}).Error)
	}
	return group
}
