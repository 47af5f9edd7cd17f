package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/service"
)

// syncRun runs background work inline.
func syncRun(f func()) { f() }

// queue collects background work so a test can run it in any order.
type queue struct{ jobs []func() }

func (q *queue) run(f func()) { q.jobs = append(q.jobs, f) }

// tripWithDay returns a stored trip whose first day holds items.
func tripWithDay(items ...domain.ItineraryItem) domain.Trip {
	trip := storedTrip()
	for i := range items {
		items[i].Date = trip.Days[0].Date
	}
	trip.Days[0].Items = items
	return trip
}

func place(id, at, name string) domain.ItineraryItem {
	return domain.ItineraryItem{ID: id, Time: at, Name: name, Kind: domain.KindPlace}
}

func noteOf(t *testing.T, trip domain.Trip, id string) string {
	t.Helper()
	day, i := itinerary.Find(trip.Days, id)
	require.NotNil(t, day, "item %s not found", id)
	return day.Items[i].Note
}

func TestItineraryService_InsertTransport_EstimateApplied(t *testing.T) {
	store := newMemStore(tripWithDay(place("a", "09:00", "Hotel"), place("b", "09:50", "Museum")))
	var gotFrom, gotTo, gotLocale string
	est := estimatorFunc(func(_ context.Context, from, to string, _ domain.TransportMode, locale string) (string, error) {
		gotFrom, gotTo, gotLocale = from, to, locale
		return "about 25m", nil
	})
	svc := service.NewItineraryService(store.mockStore, est, service.NewTripLocks(), service.WithRunner(syncRun))

	day, link, err := svc.InsertTransport(context.Background(), owner, store.trip.ID, "2025-06-01", 0, domain.ModePublic)

	require.NoError(t, err)
	assert.Equal(t, "09:25", link.Time)
	require.Len(t, day.Items, 3)
	assert.Equal(t, itinerary.PendingNote, day.Items[1].Note, "returned day shows the pending link")
	assert.Equal(t, "25m", noteOf(t, store.current(), link.ID))
	assert.Equal(t, "Hotel", gotFrom)
	assert.Equal(t, "Museum", gotTo)
	assert.Equal(t, "en", gotLocale)
}

func TestItineraryService_InsertTransport_EstimatorFailureFallsBack(t *testing.T) {
	store := newMemStore(tripWithDay(place("a", "09:00", "Hotel"), place("b", "09:50", "Museum")))
	calls := 0
	est := estimatorFunc(func(context.Context, string, string, domain.TransportMode, string) (string, error) {
		calls++
		return "", errors.New("quota exceeded")
	})
	svc := service.NewItineraryService(store.mockStore, est, service.NewTripLocks(), service.WithRunner(syncRun))

	_, link, err := svc.InsertTransport(context.Background(), owner, store.trip.ID, "2025-06-01", 0, domain.ModeWalking)

	require.NoError(t, err)
	assert.Equal(t, "50m", noteOf(t, store.current(), link.ID))
	assert.Equal(t, 1, calls, "estimator is not retried")
}

func TestItineraryService_InsertTransport_NoNeighbourIsNoOp(t *testing.T) {
	store := newMemStore(tripWithDay(place("a", "09:00", "Hotel")))
	q := &queue{}
	svc := service.NewItineraryService(store.mockStore, nil, service.NewTripLocks(), service.WithRunner(q.run))

	day, link, err := svc.InsertTransport(context.Background(), owner, store.trip.ID, "2025-06-01", 0, domain.ModeCar)

	require.NoError(t, err)
	assert.Zero(t, link)
	require.Len(t, day.Items, 1)
	assert.Equal(t, "Hotel", day.Items[0].Name)
	assert.Zero(t, store.upserts)
	assert.Empty(t, q.jobs)
}

func TestItineraryService_FailedSaveKeepsEstimateInFlight(t *testing.T) {
	store := newMemStore(tripWithDay(place("a", "09:00", "Hotel"), place("b", "10:00", "Museum")))
	q := &queue{}
	svc := service.NewItineraryService(store.mockStore, nil, service.NewTripLocks(), service.WithRunner(q.run))
	ctx := context.Background()

	_, link, err := svc.InsertTransport(ctx, owner, store.trip.ID, "2025-06-01", 0, domain.ModeCar)
	require.NoError(t, err)

	save := store.upsert
	store.upsert = func(context.Context, domain.Trip) (domain.Trip, error) {
		return domain.Trip{}, errors.New("connection reset")
	}
	_, err = svc.UpdateField(ctx, owner, store.trip.ID, "2025-06-01", 2, itinerary.FieldTime, "11:00")
	require.Error(t, err)
	store.upsert = save

	require.Len(t, q.jobs, 1, "a failed edit dispatches nothing")
	q.jobs[0]()

	assert.Equal(t, "1h 0m", noteOf(t, store.current(), link.ID))
}

func TestItineraryService_SupersededEstimateDiscarded(t *testing.T) {
	store := newMemStore(tripWithDay(place("a", "09:00", "Hotel"), place("b", "10:00", "Museum")))
	est := estimatorFunc(func(_ context.Context, _, _ string, mode domain.TransportMode, _ string) (string, error) {
		if mode == domain.ModeCar {
			return "10m", nil
		}
		return "40m", nil
	})
	q := &queue{}
	svc := service.NewItineraryService(store.mockStore, est, service.NewTripLocks(), service.WithRunner(q.run))
	ctx := context.Background()

	_, link, err := svc.InsertTransport(ctx, owner, store.trip.ID, "2025-06-01", 0, domain.ModeWalking)
	require.NoError(t, err)
	_, err = svc.UpdateField(ctx, owner, store.trip.ID, "2025-06-01", 1, itinerary.FieldTransportMode, string(domain.ModeCar))
	require.NoError(t, err)
	require.Len(t, q.jobs, 2)

	q.jobs[1]()
	q.jobs[0]()

	assert.Equal(t, "10m", noteOf(t, store.current(), link.ID), "the older walking estimate must not win")
}

func TestItineraryService_EstimateForDeletedLinkDropped(t *testing.T) {
	store := newMemStore(tripWithDay(place("a", "09:00", "Hotel"), place("b", "10:00", "Museum")))
	q := &queue{}
	svc := service.NewItineraryService(store.mockStore, nil, service.NewTripLocks(), service.WithRunner(q.run))
	ctx := context.Background()

	_, _, err := svc.InsertTransport(ctx, owner, store.trip.ID, "2025-06-01", 0, domain.ModeCar)
	require.NoError(t, err)
	_, err = svc.DeleteItem(ctx, owner, store.trip.ID, "2025-06-01", 1)
	require.NoError(t, err)
	writes := store.upserts

	q.jobs[0]()

	assert.Len(t, store.current().Days[0].Items, 2)
	assert.Equal(t, writes, store.upserts, "nothing is written for a vanished link")
}

func TestItineraryService_EstimateOutlivesRequest(t *testing.T) {
	store := newMemStore(tripWithDay(place("a", "09:00", "Hotel"), place("b", "10:00", "Museum")))
	est := estimatorFunc(func(ctx context.Context, _, _ string, _ domain.TransportMode, _ string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "15m", nil
	})
	q := &queue{}
	svc := service.NewItineraryService(store.mockStore, est, service.NewTripLocks(), service.WithRunner(q.run))

	ctx, cancel := context.WithCancel(context.Background())
	_, link, err := svc.InsertTransport(ctx, owner, store.trip.ID, "2025-06-01", 0, domain.ModeCar)
	require.NoError(t, err)
	cancel()

	q.jobs[0]()

	assert.Equal(t, "15m", noteOf(t, store.current(), link.ID))
}

func TestItineraryService_TimeChangeReestimatesNeighbours(t *testing.T) {
	link := domain.ItineraryItem{ID: "t", Time: "09:30", Name: "Car", Note: "30m", Kind: domain.KindTransport, TransportMode: domain.ModeCar}
	store := newMemStore(tripWithDay(place("a", "09:00", "Hotel"), link, place("b", "10:00", "Museum")))
	q := &queue{}
	svc := service.NewItineraryService(store.mockStore, nil, service.NewTripLocks(), service.WithRunner(q.run))

	day, err := svc.UpdateField(context.Background(), owner, store.trip.ID, "2025-06-01", 2, itinerary.FieldTime, "11:00")

	require.NoError(t, err)
	assert.Equal(t, itinerary.PendingNote, day.Items[1].Note)
	require.Len(t, q.jobs, 1)

	q.jobs[0]()
	svc.Wait()

	assert.Equal(t, "2h 0m", noteOf(t, store.current(), "t"))
}

func TestItineraryService_AddActivity(t *testing.T) {
	store := newMemStore(storedTrip())
	svc := service.NewItineraryService(store.mockStore, nil, service.NewTripLocks(), service.WithRunner(syncRun))
	ctx := context.Background()

	day, err := svc.AddActivity(ctx, owner, store.trip.ID, "2025-06-02", domain.KindFood)
	require.NoError(t, err)
	require.Len(t, day.Items, 1)
	assert.Equal(t, "09:00", day.Items[0].Time)
	assert.Equal(t, "New Restaurant", day.Items[0].Name)

	writes := store.upserts
	day, err = svc.AddActivity(ctx, owner, store.trip.ID, "2025-06-02", domain.KindTransport)
	require.NoError(t, err)
	assert.Len(t, day.Items, 1)
	assert.Equal(t, writes, store.upserts, "a refused kind writes nothing")

	_, err = svc.AddActivity(ctx, owner, store.trip.ID, "2030-01-01", domain.KindPlace)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItineraryService_FlightOwnedEntriesLocked(t *testing.T) {
	flight := domain.ItineraryItem{ID: "f", Time: "08:00", Name: "ICN Airport", Kind: domain.KindPlace, TransportMode: domain.ModeFlight}
	store := newMemStore(tripWithDay(flight))
	svc := service.NewItineraryService(store.mockStore, nil, service.NewTripLocks(), service.WithRunner(syncRun))
	ctx := context.Background()

	day, err := svc.UpdateField(ctx, owner, store.trip.ID, "2025-06-01", 0, itinerary.FieldName, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "ICN Airport", day.Items[0].Name)

	day, err = svc.DeleteItem(ctx, owner, store.trip.ID, "2025-06-01", 0)
	require.NoError(t, err)
	assert.Len(t, day.Items, 1)

	_, err = svc.UpdateField(ctx, owner, store.trip.ID, "2025-06-01", 5, itinerary.FieldName, "Out of range")
	require.NoError(t, err)

	assert.Equal(t, "ICN Airport", store.current().Days[0].Items[0].Name)
	assert.Zero(t, store.upserts)
}

func TestItineraryService_OtherOwnerForbidden(t *testing.T) {
	store := newMemStore(storedTrip())
	svc := service.NewItineraryService(store.mockStore, nil, service.NewTripLocks(), service.WithRunner(syncRun))

	_, err := svc.Days(context.Background(), domain.Session{UserID: "eve"}, store.trip.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Days(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
