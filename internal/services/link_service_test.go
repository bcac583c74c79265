package services

import (
	"context"
	"testing"
	"time"

	"groupsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinksListNewestFirstWithCreators(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "alice", "Alice", "alice@example.com")
	group := f.newGroup(t, "alice", "bob")
	svc := NewLinkService(f.db)
	ctx := context.Background()

	old := models.GroupLink{GroupID: group.ID, CreatedBy: "bob", URL: "https://moodle.example.com/course/42", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, f.db.Create(&old).Error)

	created, err := svc.Create(ctx, Actor{UserID: "alice"}, group.ID, models.LinkRequest{URL: " https://drive.example.com/folder ", Title: "Skripte"})
	require.NoError(t, err)
	assert.Equal(t, "https://drive.example.com/folder", created.URL)
	require.NotNil(t, created.Title)
	assert.Equal(t, "Skripte", *created.Title)
	assert.Equal(t, "Alice", created.CreatorName)

	links, err := svc.List(ctx, Actor{UserID: "bob"}, group.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, created.ID, links[0].ID)
	assert.Equal(t, old.ID, links[1].ID)
	// bob has no profile
	assert.Equal(t, "Unbekannt", links[1].CreatorName)
	assert.Nil(t, links[1].Title)

	_, err = svc.List(ctx, Actor{UserID: "stranger"}, group.ID)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestCreateLinkValidation(t *testing.T) {
	f := newFixture(t)
	group := f.newGroup(t, "alice")
	svc := NewLinkService(f.db)
	ctx := context.Background()

	for _, raw := range []string{"", "   ", "moodle.example.com", "ftp://example.com/file", "javascript:alert(1)", "https://"} {
		_, err := svc.Create(ctx, Actor{UserID: "alice"}, group.ID, models.LinkRequest{URL: raw})
		assert.ErrorIs(t, err, ErrInvalidInput, raw)
	}

	_, err := svc.Create(ctx, Actor{UserID: "alice"}, group.ID, models.LinkRequest{URL: "https://example.com", Title: string(make([]rune, 201))})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, Actor{UserID: "stranger"}, group.ID, models.LinkRequest{URL: "https://example.com"})
	assert.ErrorIs(t, err, ErrNotMember)

	var count int64
	require.NoError(t, f.db.Model(&models.GroupLink{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateAndDeleteLinkPermissions(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "bob", "Bob", "bob@example.com")
	group := f.newGroup(t, "alice", "bob", "carol")
	svc := NewLinkService(f.db)
	ctx := context.Background()

	link, err := svc.Create(ctx, Actor{UserID: "bob"}, group.ID, models.LinkRequest{URL: "https://example.com/a", Title: "Alt"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, Actor{UserID: "carol"}, link.ID, models.LinkRequest{URL: "https://example.com/b"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, Actor{UserID: "bob"}, link.ID, models.LinkRequest{URL: "https://example.com/b"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b", updated.URL)
	assert.Nil(t, updated.Title)
	assert.Equal(t, "Bob", updated.CreatorName)

	var stored models.GroupLink
	require.NoError(t, f.db.First(&stored, "id = ?", link.ID).Error)
	assert.Equal(t, "https://example.com/b", stored.URL)
	assert.Nil(t, stored.Title)

	_, err = svc.Update(ctx, Actor{UserID: "missing"}, "no-such-link", models.LinkRequest{URL: "https://example.com"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: "carol"}, link.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: "stranger"}, link.ID), ErrNotMember)

	// the owner may remove any member's link
	require.NoError(t, svc.Delete(ctx, Actor{UserID: "alice"}, link.ID))
	assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: "alice"}, link.ID), ErrNotFound)
}

func TestDeleteGroupRemovesLinks(t *testing.T) {
	f := newFixture(t)
	group := f.newGroup(t, "alice")
	_, err := NewLinkService(f.db).Create(context.Background(), Actor{UserID: "alice"}, group.ID, models.LinkRequest{URL: "https://example.com"})
	require.NoError(t, err)

	require.NoError(t, f.groups.Delete(context.Background(), Actor{UserID: "alice"}, group.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.GroupLink{}).Count(&count).Error)
	assert.Zero(t, count)
}
