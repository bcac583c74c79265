package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"groupsync/internal/email"
	"groupsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlaces map[string]string

func (p stubPlaces) ResolvePlace(ctx context.Context, placeID string) (string, error) {
	if addr, ok := p[placeID]; ok {
		return addr, nil
	}
	return "", errors.New("NOT_FOUND")
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "alice", "Alice", "alice@example.com")
	group := f.newGroup(t, "alice", "bob")
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	svc := NewAppointmentService(f.db, f.notify, nil, berlin)

	start := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	a, err := svc.Create(context.Background(), Actor{UserID: "alice"}, group.ID, models.AppointmentRequest{
		Title:     "Lerngruppe",
		Location:  "Bibliothek, Raum 2",
		StartTime: start,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bibliothek, Raum 2", *a.Location)

	require.Len(t, f.notify.fanOuts, 1)
	req := f.notify.fanOuts[0]
	assert.Equal(t, email.TypeAppointmentCreated, req.EmailType)
	assert.Equal(t, "02.06.2025", req.EmailData.AppointmentDate)
	assert.Equal(t, "16:30", req.EmailData.AppointmentTime)
	assert.Equal(t, "Alice", req.EmailData.CreatorName)
}

func TestAppointmentValidation(t *testing.T) {
	f := newFixture(t)
	group := f.newGroup(t, "alice")
	svc := NewAppointmentService(f.db, f.notify, nil, time.UTC)
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	before := start.Add(-time.Minute)

	tests := []struct {
		name string
		req  models.AppointmentRequest
	}{
		{"blank title", models.AppointmentRequest{Title: " ", StartTime: start}},
		{"missing start", models.AppointmentRequest{Title: "x"}},
		{"end before start", models.AppointmentRequest{Title: "x", StartTime: start, EndTime: &before}},
		{"location too long", models.AppointmentRequest{Title: "x", StartTime: start, Location: strings.Repeat("a", 201)}},
		{"place without resolver", models.AppointmentRequest{Title: "x", StartTime: start, PlaceID: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, Actor{UserID: "alice"}, group.ID, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, f.notify.fanOuts)
}

func TestAppointmentPlaceResolution(t *testing.T) {
	f := newFixture(t)
	group := f.newGroup(t, "alice")
	long := strings.Repeat("b", 250)
	svc := NewAppointmentService(f.db, f.notify, stubPlaces{"lib": "Uni-Bibliothek, Hauptstr. 1", "long": long}, time.UTC)
	ctx := context.Background()
	start := time.Now().Add(time.Hour)

	a, err := svc.Create(ctx, Actor{UserID: "alice"}, group.ID, models.AppointmentRequest{Title: "x", StartTime: start, PlaceID: "lib", Location: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Uni-Bibliothek, Hauptstr. 1", *a.Location)

	a, err = svc.Create(ctx, Actor{UserID: "alice"}, group.ID, models.AppointmentRequest{Title: "x", StartTime: start, PlaceID: "long"})
	require.NoError(t, err)
	assert.Len(t, *a.Location, 200)

	_, err = svc.Create(ctx, Actor{UserID: "alice"}, group.ID, models.AppointmentRequest{Title: "x", StartTime: start, PlaceID: "unknown"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAppointmentUpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	group := f.newGroup(t, "alice", "bob")
	svc := NewAppointmentService(f.db, f.notify, nil, time.UTC)
	ctx := context.Background()
	start := time.Now().Add(time.Hour).UTC()

	a, err := svc.Create(ctx, Actor{UserID: "alice"}, group.ID, models.AppointmentRequest{Title: "Treffen", StartTime: start})
	require.NoError(t, err)

	update := models.AppointmentRequest{Title: "Treffen (verschoben)", StartTime: start.Add(time.Hour)}
	_, err = svc.Update(ctx, Actor{UserID: "bob"}, a.ID, update)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, Actor{UserID: "alice"}, a.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Treffen (verschoben)", updated.Title)

	assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: "bob"}, a.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: "mallory"}, a.ID), ErrNotMember)
	require.NoError(t, svc.Delete(ctx, Actor{UserID: "alice"}, a.ID))

	list, err := svc.List(ctx, Actor{UserID: "bob"}, group.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
