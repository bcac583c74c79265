package services

import (
	"context"
	"errors"
	"testing"

	"groupsync/internal/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyExcludesActor(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "alice", "Alice", "alice@example.com")
	f.addProfile(t, "bob", "Bob", "bob@example.com")
	f.addProfile(t, "carol", "", "carol@example.com")
	group := f.newGroup(t, "alice", "bob", "carol")

	result, err := NewNotifier(f.db, f.mailer, 4).Notify(context.Background(), NotifyRequest{
		GroupID:       group.ID,
		ExcludeUserID: "alice",
		EmailType:     email.TypeTaskCreated,
		EmailData:     email.Data{TaskTitle: "Blatt 3", CreatorName: "Alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.NotifiedCount)
	assert.Empty(t, result.Errors)
	assert.ElementsMatch(t, []string{"bob@example.com", "carol@example.com"}, f.recorder.To())

	for _, msg := range f.recorder.Messages() {
		assert.Contains(t, msg.HTML, "Analysis I")
		if msg.To == "carol@example.com" {
			assert.Contains(t, msg.HTML, "carol")
		}
	}
}

func TestNotifySoleMember(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "alice", "Alice", "alice@example.com")
	group := f.newGroup(t, "alice")

	result, err := NewNotifier(f.db, f.mailer, 2).Notify(context.Background(), NotifyRequest{
		GroupID:       group.ID,
		ExcludeUserID: "alice",
		EmailType:     email.TypePollCreated,
	})
	require.NoError(t, err)
	assert.Zero(t, result.NotifiedCount)
	assert.Equal(t, "No members to notify", result.Message)
	assert.Empty(t, f.recorder.Messages())
}

func TestNotifySkipsMembersWithoutEmail(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "alice", "Alice", "alice@example.com")
	f.addProfile(t, "bob", "Bob", "")
	group := f.newGroup(t, "alice", "bob", "ghost")

	result, err := NewNotifier(f.db, f.mailer, 2).Notify(context.Background(), NotifyRequest{
		GroupID:   group.ID,
		EmailType: email.TypeAppointmentCreated,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotifiedCount)
	assert.Equal(t, []string{"alice@example.com"}, f.recorder.To())
}

func TestNotifyCollectsErrors(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "alice", "Alice", "alice@example.com")
	f.addProfile(t, "bob", "Bob", "bob@example.com")
	group := f.newGroup(t, "alice", "bob")
	f.recorder.Fail = func(msg email.Message) error {
		if msg.To == "bob@example.com" {
			return errors.New("mailbox unavailable")
		}
		return nil
	}

	result, err := NewNotifier(f.db, f.mailer, 2).Notify(context.Background(), NotifyRequest{
		GroupID:   group.ID,
		EmailType: email.TypeTaskCreated,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.NotifiedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "bob@example.com")
	assert.Equal(t, []string{"alice@example.com"}, f.recorder.To())
}

func TestNotifyRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	n := NewNotifier(f.db, f.mailer, 1)

	_, err := n.Notify(context.Background(), NotifyRequest{GroupID: "x", EmailType: "birthday"})
	assert.ErrorIs(t, err, email.ErrUnknownType)

	_, err = n.Notify(context.Background(), NotifyRequest{GroupID: "missing", EmailType: email.TypeWelcome})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotifyQueueDeliversAndDrains(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "alice", "Alice", "alice@example.com")
	f.addProfile(t, "bob", "Bob", "bob@example.com")
	group := f.newGroup(t, "alice", "bob")

	q := NewNotifyQueue(NewNotifier(f.db, f.mailer, 2), f.mailer, 2, 8)
	q.Start(context.Background())

	assert.True(t, q.Enqueue(NotifyRequest{GroupID: group.ID, ExcludeUserID: "alice", EmailType: email.TypeTaskCreated}))
	assert.True(t, q.EnqueueEmail(email.TypeWelcome, email.Data{To: "new@example.com"}))
	q.Stop()

	assert.ElementsMatch(t, []string{"bob@example.com", "new@example.com"}, f.recorder.To())
	assert.False(t, q.EnqueueEmail(email.TypeWelcome, email.Data{To: "late@example.com"}))
}

func TestNotifyQueueDropsWhenFull(t *testing.T) {
	f := newFixture(t)
	q := NewNotifyQueue(NewNotifier(f.db, f.mailer, 1), f.mailer, 1, 1)

	// Workers are not started, so the single slot stays occupied
	assert.True(t, q.EnqueueEmail(email.TypeWelcome, email.Data{To: "a@example.com"}))
	assert.False(t, q.EnqueueEmail(email.TypeWelcome, email.Data{To: "b@example.com"}))

	q.Start(context.Background())
	q.Stop()
	assert.Equal(t, []string{"a@example.com"}, f.recorder.To())
}
