package services

import (
	"context"
	"testing"
	"time"

	"groupsync/internal/email"
	"groupsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoll(t *testing.T, f *fixture, multi bool) (*PollService, models.PollResults) {
	t.Helper()
	svc := NewPollService(f.db, f.notify, time.UTC)
	poll, err := svc.Create(context.Background(), Actor{UserID: "alice"}, f.newGroup(t, "alice", "bob").ID, models.CreatePollRequest{
		Title:              "Wann lernen wir?",
		Options:            []string{"Montag", " ", "Dienstag", "Mittwoch"},
		AllowMultipleVotes: multi,
	})
	require.NoError(t, err)
	return svc, poll
}

func TestCreatePoll(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "alice", "Alice", "alice@example.com")
	_, poll := newPoll(t, f, false)

	require.Len(t, poll.Options, 3)
	assert.Equal(t, "Montag", poll.Options[0].OptionText)
	assert.Equal(t, "Dienstag", poll.Options[1].OptionText)
	assert.Equal(t, "Mittwoch", poll.Options[2].OptionText)
	assert.Zero(t, poll.TotalVotes)
	assert.Empty(t, poll.UserVotes)

	require.Len(t, f.notify.fanOuts, 1)
	req := f.notify.fanOuts[0]
	assert.Equal(t, email.TypePollCreated, req.EmailType)
	assert.Equal(t, "alice", req.ExcludeUserID)
	assert.Equal(t, "Alice", req.EmailData.CreatorName)
}

func TestCreatePollNeedsTwoOptions(t *testing.T) {
	f := newFixture(t)
	group := f.newGroup(t, "alice")
	svc := NewPollService(f.db, f.notify, time.UTC)

	_, err := svc.Create(context.Background(), Actor{UserID: "alice"}, group.ID, models.CreatePollRequest{
		Title:   "Eins",
		Options: []string{"Ja", "   "},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.notify.fanOuts)
}

func TestVoteSingleChoiceToggle(t *testing.T) {
	f := newFixture(t)
	svc, poll := newPoll(t, f, false)
	ctx := context.Background()
	bob := Actor{UserID: "bob"}
	a, b := poll.Options[0].ID, poll.Options[1].ID

	res, err := svc.Vote(ctx, bob, poll.ID, a)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, res.UserVotes)
	assert.Equal(t, 1, res.TotalVotes)
	assert.Equal(t, 100, res.Options[0].Percentage)

	// switching replaces the previous choice
	res, err = svc.Vote(ctx, bob, poll.ID, b)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, res.UserVotes)
	assert.Equal(t, 1, res.TotalVotes)
	assert.Zero(t, res.Options[0].VoteCount)
	assert.Equal(t, 1, res.Options[1].VoteCount)

	// voting the selected option retracts it
	res, err = svc.Vote(ctx, bob, poll.ID, b)
	require.NoError(t, err)
	assert.Empty(t, res.UserVotes)
	assert.Zero(t, res.TotalVotes)

	var count int64
	require.NoError(t, f.db.Model(&models.PollVote{}).Where("poll_id = ? AND user_id = ?", poll.ID, "bob").Count(&count).Error)
	assert.Zero(t, count)
}

func TestVoteMultipleChoice(t *testing.T) {
	f := newFixture(t)
	svc, poll := newPoll(t, f, true)
	ctx := context.Background()
	a, b := poll.Options[0].ID, poll.Options[1].ID

	_, err := svc.Vote(ctx, Actor{UserID: "bob"}, poll.ID, a)
	require.NoError(t, err)
	res, err := svc.Vote(ctx, Actor{UserID: "bob"}, poll.ID, b)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, res.UserVotes)

	res, err = svc.Vote(ctx, Actor{UserID: "alice"}, poll.ID, a)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalVotes)
	assert.Equal(t, 2, res.Options[0].VoteCount)
	assert.Equal(t, 67, res.Options[0].Percentage)
	assert.Equal(t, 33, res.Options[1].Percentage)

	res, err = svc.Vote(ctx, Actor{UserID: "bob"}, poll.ID, a)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, res.UserVotes)
	assert.Equal(t, 2, res.TotalVotes)
}

func TestVoteRejections(t *testing.T) {
	f := newFixture(t)
	svc, poll := newPoll(t, f, false)
	ctx := context.Background()

	_, err := svc.Vote(ctx, Actor{UserID: "mallory"}, poll.ID, poll.Options[0].ID)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = svc.Vote(ctx, Actor{UserID: "bob"}, poll.ID, "other-option")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Vote(ctx, Actor{UserID: "bob"}, "missing", poll.Options[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&models.Poll{}).Where("id = ?", poll.ID).Update("ends_at", past).Error)
	_, err = svc.Vote(ctx, Actor{UserID: "bob"}, poll.ID, poll.Options[0].ID)
	assert.ErrorIs(t, err, ErrPollEnded)
}

func TestDeletePoll(t *testing.T) {
	f := newFixture(t)
	svc, poll := newPoll(t, f, false)
	ctx := context.Background()

	_, err := svc.Vote(ctx, Actor{UserID: "bob"}, poll.ID, poll.Options[0].ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: "bob"}, poll.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, Actor{UserID: "alice"}, poll.ID))

	var options, votes int64
	f.db.Model(&models.PollOption{}).Where("poll_id = ?", poll.ID).Count(&options)
	f.db.Model(&models.PollVote{}).Where("poll_id = ?", poll.ID).Count(&votes)
	assert.Zero(t, options)
	assert.Zero(t, votes)
}

func TestTally(t *testing.T) {
	options := []models.PollOption{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	results, mine, total := Tally(options, nil, "bob")
	assert.Zero(t, total)
	assert.Empty(t, mine)
	for _, r := range results {
		assert.Zero(t, r.Percentage)
	}

	votes := []models.PollVote{
		{OptionID: "a", UserID: "bob"},
		{OptionID: "a", UserID: "alice"},
		{OptionID: "c", UserID: "bob"},
	}
	results, mine, total = Tally(options, votes, "bob")
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"a", "c"}, mine)
	assert.Equal(t, 67, results[0].Percentage)
	assert.Equal(t, 0, results[1].Percentage)
	assert.Equal(t, 33, results[2].Percentage)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(3, 0))
	assert.Equal(t, 50, Percentage(1, 2))
	assert.Equal(t, 17, Percentage(1, 6))
	assert.Equal(t, 100, Percentage(4, 4))
}
