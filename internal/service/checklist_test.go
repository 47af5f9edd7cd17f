package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/service"
)

func TestChecklistService_Lifecycle(t *testing.T) {
	store := newMemStore(storedTrip())
	svc := service.NewChecklistService(store.mockStore, service.NewTripLocks())
	ctx := context.Background()

	passport, err := svc.Add(ctx, owner, store.trip.ID, "  Passport ")
	require.NoError(t, err)
	assert.Equal(t, "Passport", passport.Text)
	_, err = svc.Add(ctx, owner, store.trip.ID, "Adapter")
	require.NoError(t, err)

	done, err := svc.SetDone(ctx, owner, store.trip.ID, passport.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Done)

	require.NoError(t, svc.Delete(ctx, owner, store.trip.ID, passport.ID))

	list, err := svc.List(ctx, owner, store.trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Adapter", list[0].Text)
}

func TestChecklistService_Errors(t *testing.T) {
	store := newMemStore(storedTrip())
	svc := service.NewChecklistService(store.mockStore, service.NewTripLocks())
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, store.trip.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SetDone(ctx, owner, store.trip.ID, uuid.New(), true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Add(ctx, domain.Session{UserID: "eve"}, store.trip.ID, "Snacks")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
