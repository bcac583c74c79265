package services

import (
	"context"
	"testing"

	"groupsync/internal/email"
	"groupsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertProfileSendsWelcomeOnce(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.db, f.notify)
	ctx := context.Background()
	anna := Actor{UserID: "anna"}

	p, err := svc.Upsert(ctx, anna, models.UpsertProfileRequest{
		Email:        "anna@example.com",
		DisplayName:  "Anna",
		University:   "TU Berlin",
		StudyProgram: "Informatik",
		Skills:       []string{"Go", " go ", "", "SQL"},
		Availability: models.Availability{"mon": {"evening", "morning"}},
	})
	require.NoError(t, err)
	assert.True(t, p.ProfileCompleted)
	assert.Equal(t, 4, p.PreferredGroupSize)

	require.Len(t, f.notify.emails, 1)
	assert.Equal(t, email.TypeWelcome, f.notify.emails[0].t)
	assert.Equal(t, "anna@example.com", f.notify.emails[0].d.To)
	assert.Equal(t, "Anna", f.notify.emails[0].d.RecipientName)

	p, err = svc.Upsert(ctx, anna, models.UpsertProfileRequest{DisplayName: "Anna K.", PreferredGroupSize: 3})
	require.NoError(t, err)
	assert.Len(t, f.notify.emails, 1)
	assert.False(t, p.ProfileCompleted)
	assert.Equal(t, 3, p.PreferredGroupSize)
	assert.Equal(t, "anna@example.com", *p.Email)

	stored, err := svc.Get(ctx, anna)
	require.NoError(t, err)
	assert.Equal(t, "Anna K.", *stored.DisplayName)
}

func TestUpsertProfileWithoutEmail(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.db, f.notify)

	_, err := svc.Upsert(context.Background(), Actor{UserID: "ben"}, models.UpsertProfileRequest{DisplayName: "Ben"})
	require.NoError(t, err)
	assert.Empty(t, f.notify.emails)
}

func TestUpsertProfileRejectsUnknownSlots(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.db, f.notify)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, Actor{UserID: "ben"}, models.UpsertProfileRequest{Availability: models.Availability{"someday": {"morning"}}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upsert(ctx, Actor{UserID: "ben"}, models.UpsertProfileRequest{Availability: models.Availability{"mon": {"midnight"}}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Get(ctx, Actor{UserID: "ben"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetAvatar(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.db, f.notify)
	ctx := context.Background()

	_, err := svc.SetAvatar(ctx, Actor{UserID: "ben"}, "https://img.example.com/ben.png")
	assert.ErrorIs(t, err, ErrNotFound)

	f.addProfile(t, "ben", "Ben", "")
	p, err := svc.SetAvatar(ctx, Actor{UserID: "ben"}, "https://img.example.com/ben.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/ben.png", *p.AvatarURL)
}

func TestValidateAvatar(t *testing.T) {
	assert.NoError(t, ValidateAvatar("me.PNG", 1024))
	assert.ErrorIs(t, ValidateAvatar("me.exe", 1024), ErrInvalidInput)
	assert.ErrorIs(t, ValidateAvatar("me.jpg", MaxAvatarSize+1), ErrInvalidInput)
}

func TestDisplayName(t *testing.T) {
	name, mail, blank := "Anna", "anna.k@example.com", "  "
	assert.Equal(t, "Anna", displayName(models.Profile{DisplayName: &name, Email: &mail}))
	assert.Equal(t, "anna.k", displayName(models.Profile{DisplayName: &blank, Email: &mail}))
	assert.Equal(t, "", displayName(models.Profile{}))
}
