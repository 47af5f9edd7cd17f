package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/metrics"
	"github.com/pkordes/trip-planner/internal/repo"
)

// defaultEstimateTimeout bounds one estimator call when none is configured.
const defaultEstimateTimeout = 15 * time.Second

// ItineraryService edits day plans. Every edit is persisted before it
// returns; transport links it creates or invalidates carry the pending note
// until their estimate settles in the background.
type ItineraryService struct {
	store   repo.TripStore
	est     itinerary.Estimator
	locks   *TripLocks
	seq     *itinerary.Sequencer
	timeout time.Duration
	run     func(func())
	wg      sync.WaitGroup
}

// ItineraryOption customises an ItineraryService.
type ItineraryOption func(*ItineraryService)

// WithEstimateTimeout bounds each estimator call.
func WithEstimateTimeout(d time.Duration) ItineraryOption {
	return func(s *ItineraryService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRunner replaces the goroutine launcher used for background
// estimates. Tests pass a synchronous runner.
func WithRunner(run func(func())) ItineraryOption {
	return func(s *ItineraryService) { s.run = run }
}

// NewItineraryService constructs an ItineraryService. A nil estimator means
// every estimate uses the clock-difference fallback.
func NewItineraryService(store repo.TripStore, est itinerary.Estimator, locks *TripLocks, opts ...ItineraryOption) *ItineraryService {
	s := &ItineraryService{
		store:   store,
		est:     est,
		locks:   locks,
		seq:     itinerary.NewSequencer(),
		timeout: defaultEstimateTimeout,
		run:     func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Days returns the trip's day plans.
func (s *ItineraryService) Days(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.DayPlan, error) {
	trip, err := loadOwned(ctx, s.store, sess, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Days: %w", err)
	}
	return trip.Days, nil
}

// AddActivity appends a Place or Food entry to the day. Any other kind
// leaves the day unchanged.
func (s *ItineraryService) AddActivity(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, kind domain.ItemKind) (domain.DayPlan, error) {
	day, err := s.edit(ctx, sess, tripID, date, func(day *domain.DayPlan) ([]string, bool) {
		_, ok := itinerary.AddActivity(day, kind)
		return nil, ok
	})
	if err != nil {
		return domain.DayPlan{}, fmt.Errorf("service.ItineraryService.AddActivity: %w", err)
	}
	return day, nil
}

// UpdateField sets one field of the entry at index. Transport links made
// stale by a time change, or a transport link whose mode changed, are
// re-estimated.
// Flight-owned entries, bad indexes and invalid values leave the day
// unchanged.
func (s *ItineraryService) UpdateField(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, index int, field, value string) (domain.DayPlan, error) {
	day, err := s.edit(ctx, sess, tripID, date, func(day *domain.DayPlan) ([]string, bool) {
		stale, ok := itinerary.UpdateField(day, index, field, value)
		if !ok {
			return nil, false
		}
		if field == itinerary.FieldTransportMode && day.Items[index].IsTransport() {
			stale = append(stale, day.Items[index].ID)
		}
		return stale, true
	})
	if err != nil {
		return domain.DayPlan{}, fmt.Errorf("service.ItineraryService.UpdateField: %w", err)
	}
	return day, nil
}

// DeleteItem removes the entry at index. Adjacent transport links stay.
// Flight-owned entries and bad indexes leave the day unchanged.
func (s *ItineraryService) DeleteItem(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, index int) (domain.DayPlan, error) {
	day, err := s.edit(ctx, sess, tripID, date, func(day *domain.DayPlan) ([]string, bool) {
		_, ok := itinerary.DeleteItem(day, index)
		return nil, ok
	})
	if err != nil {
		return domain.DayPlan{}, fmt.Errorf("service.ItineraryService.DeleteItem: %w", err)
	}
	return day, nil
}

// InsertTransport places a transport link between the entries at
// afterIndex and afterIndex+1 and starts estimating its duration.
// Returns the day as saved, with the new link still pending, and the link.
// When no link fits after afterIndex the day comes back unchanged and the
// link is the zero item.
func (s *ItineraryService) InsertTransport(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, afterIndex int, mode domain.TransportMode) (domain.DayPlan, domain.ItineraryItem, error) {
	var link domain.ItineraryItem
	day, err := s.edit(ctx, sess, tripID, date, func(day *domain.DayPlan) ([]string, bool) {
		item, ok := itinerary.InsertTransport(day, afterIndex, mode)
		if !ok {
			return nil, false
		}
		link = item
		return []string{item.ID}, true
	})
	if err != nil {
		return domain.DayPlan{}, domain.ItineraryItem{}, fmt.Errorf("service.ItineraryService.InsertTransport: %w", err)
	}
	return day, link, nil
}

// Wait blocks until every background estimate has settled.
func (s *ItineraryService) Wait() {
	s.wg.Wait()
}

// pendingLeg is an estimate that has been issued but not yet settled.
type pendingLeg struct {
	leg    itinerary.Leg
	seq    uint64
	locale string
}

// errRejected aborts an edit the day plan refused without writing it.
var errRejected = errors.New("edit rejected")

// edit applies fn to one day under the trip lock. IDs returned by fn are
// transport links to (re-)estimate: they are marked pending and persisted
// with the edit. Their sequence numbers are issued only once the save has
// succeeded, so a failed save never supersedes an estimate in flight.
//
// fn reporting false means the day refused the edit; the unchanged day is
// returned with no error and nothing is written.
func (s *ItineraryService) edit(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, fn func(*domain.DayPlan) ([]string, bool)) (domain.DayPlan, error) {
	var (
		result  domain.DayPlan
		legs    []itinerary.Leg
		pending []pendingLeg
	)
	_, err := mutateThen(ctx, s.store, s.locks, sess, tripID, func(t *domain.Trip) error {
		day := t.Day(date)
		if day == nil {
			return fmt.Errorf("%w: trip has no day %s", domain.ErrNotFound, date)
		}
		ids, ok := fn(day)
		result = *day
		if !ok {
			return errRejected
		}
		for _, id := range ids {
			itinerary.SetNote(day, id, itinerary.PendingNote)
			if leg, ok := itinerary.LegFor(day, id); ok {
				legs = append(legs, leg)
			}
		}
		result = *day
		return nil
	}, func(domain.Trip) {
		for _, leg := range legs {
			pending = append(pending, pendingLeg{leg: leg, seq: s.seq.Next(leg.Item.ID), locale: sess.Locale})
		}
	})
	if errors.Is(err, errRejected) {
		slog.DebugContext(ctx, "itinerary edit refused", "trip_id", tripID, "date", date)
		return result, nil
	}
	if err != nil {
		return domain.DayPlan{}, err
	}

	for _, p := range pending {
		s.dispatch(ctx, tripID, p)
	}
	return result, nil
}

// dispatch runs one estimate in the background and applies its result.
// The estimate outlives the request that issued it.
func (s *ItineraryService) dispatch(ctx context.Context, tripID uuid.UUID, p pendingLeg) {
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	s.run(func() {
		defer s.wg.Done()

		ectx, cancel := context.WithTimeout(bg, s.timeout)
		started := time.Now()
		est := itinerary.EstimateLeg(ectx, s.est, p.leg, p.locale)
		cancel()
		metrics.EstimateDuration.Observe(time.Since(started).Seconds())
		metrics.Estimates.WithLabelValues(string(est.Source)).Inc()

		if err := s.apply(bg, tripID, p.seq, est); err != nil {
			slog.WarnContext(bg, "transport estimate not saved", "trip_id", tripID, "item_id", est.ItemID, "error", err)
		}
	})
}

// apply writes a settled estimate into the link's note, provided the link
// still exists and no newer estimate was issued for it.
func (s *ItineraryService) apply(ctx context.Context, tripID uuid.UUID, seq uint64, est itinerary.Estimate) error {
	unlock := s.locks.lock(tripID)
	defer unlock()

	if !s.seq.Latest(est.ItemID, seq) {
		metrics.StaleEstimates.Inc()
		return nil
	}

	trip, err := s.store.LoadByID(ctx, tripID)
	if err != nil {
		return err
	}
	day, _ := itinerary.Find(trip.Days, est.ItemID)
	if day == nil || !itinerary.SetNote(day, est.ItemID, est.Text) {
		metrics.StaleEstimates.Inc()
		return nil
	}
	if _, err := s.store.Upsert(ctx, trip); err != nil {
		return err
	}
	slog.DebugContext(ctx, "transport estimate settled", "trip_id", tripID, "item_id", est.ItemID, "source", est.Source)
	return nil
}
