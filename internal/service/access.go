package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/events"
	"github.com/pkordes/trip-planner/internal/metrics"
	"github.com/pkordes/trip-planner/internal/repo"
)

// loadOwned loads a trip and checks it belongs to the session's user.
// Returns domain.ErrForbidden when it belongs to someone else.
func loadOwned(ctx context.Context, store repo.TripStore, sess domain.Session, id uuid.UUID) (domain.Trip, error) {
	trip, err := store.LoadByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.OwnerID != sess.UserID {
		return domain.Trip{}, domain.ErrForbidden
	}
	return trip, nil
}

// publish sends a trip event. Delivery failures are logged and counted but
// never fail the operation that produced them.
func publish(ctx context.Context, p events.Publisher, typ string, trip domain.Trip) {
	if p == nil {
		return
	}
	err := p.Publish(ctx, events.TripEvent{
		Type:       typ,
		TripID:     trip.ID,
		OwnerID:    trip.OwnerID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		metrics.PublishErrors.Inc()
		slog.WarnContext(ctx, "trip event not published", "type", typ, "trip_id", trip.ID, "error", err)
	}
}

// lockStripes is the number of mutexes trips are spread over.
const lockStripes = 64

// TripLocks serialises read-modify-write cycles per trip so concurrent
// edits and settling estimates never overwrite each other. One instance is
// shared by every service that writes trips. Trips are hashed onto a fixed
// set of stripes, so unrelated trips occasionally share a mutex.
type TripLocks struct {
	stripes [lockStripes]sync.Mutex
}

// NewTripLocks returns an unlocked lock set.
func NewTripLocks() *TripLocks {
	return &TripLocks{}
}

// lock acquires the trip's stripe and returns its release function.
// Callers never hold two trip locks at once.
func (l *TripLocks) lock(id uuid.UUID) func() {
	m := &l.stripes[stripeOf(id)]
	m.Lock()
	return m.Unlock
}

func stripeOf(id uuid.UUID) int {
	return int(binary.BigEndian.Uint64(id[8:]) % lockStripes)
}

// mutate runs fn against the owned trip under its lock and persists the
// result. fn returning an error aborts without writing.
func mutate(ctx context.Context, store repo.TripStore, locks *TripLocks, sess domain.Session, id uuid.UUID, fn func(*domain.Trip) error) (domain.Trip, error) {
	return mutateThen(ctx, store, locks, sess, id, fn, nil)
}

// mutateThen is mutate with a hook that runs after a successful save,
// still under the trip lock. after is skipped when fn or the save fails.
func mutateThen(ctx context.Context, store repo.TripStore, locks *TripLocks, sess domain.Session, id uuid.UUID, fn func(*domain.Trip) error, after func(domain.Trip)) (domain.Trip, error) {
	unlock := locks.lock(id)
	defer unlock()

	trip, err := loadOwned(ctx, store, sess, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if err := fn(&trip); err != nil {
		return domain.Trip{}, err
	}
	saved, err := store.Upsert(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("save: %w", err)
	}
	if after != nil {
		after(saved)
	}
	return saved, nil
}
