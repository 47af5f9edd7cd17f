package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// ChecklistService manages a trip's packing and to-do list.
type ChecklistService struct {
	store repo.TripStore
	locks *TripLocks
}

// NewChecklistService constructs a ChecklistService.
func NewChecklistService(store repo.TripStore, locks *TripLocks) *ChecklistService {
	return &ChecklistService{store: store, locks: locks}
}

// List returns the checklist in display order.
func (s *ChecklistService) List(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.ChecklistItem, error) {
	trip, err := loadOwned(ctx, s.store, sess, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ChecklistService.List: %w", err)
	}
	return trip.Checklist, nil
}

// Add appends an unchecked entry.
func (s *ChecklistService) Add(ctx context.Context, sess domain.Session, tripID uuid.UUID, text string) (domain.ChecklistItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChecklistItem{}, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	item := domain.ChecklistItem{ID: uuid.New(), Text: text}

	_, err := mutate(ctx, s.store, s.locks, sess, tripID, func(t *domain.Trip) error {
		t.Checklist = append(t.Checklist, item)
		return nil
	})
	if err != nil {
		return domain.ChecklistItem{}, fmt.Errorf("service.ChecklistService.Add: %w", err)
	}
	return item, nil
}

// SetDone checks or unchecks an entry.
func (s *ChecklistService) SetDone(ctx context.Context, sess domain.Session, tripID, itemID uuid.UUID, done bool) (domain.ChecklistItem, error) {
	var out domain.ChecklistItem
	_, err := mutate(ctx, s.store, s.locks, sess, tripID, func(t *domain.Trip) error {
		i := slices.IndexFunc(t.Checklist, func(c domain.ChecklistItem) bool { return c.ID == itemID })
		if i < 0 {
			return domain.ErrNotFound
		}
		t.Checklist[i].Done = done
		out = t.Checklist[i]
		return nil
	})
	if err != nil {
		return domain.ChecklistItem{}, fmt.Errorf("service.ChecklistService.SetDone: %w", err)
	}
	return out, nil
}

// Delete removes an entry.
func (s *ChecklistService) Delete(ctx context.Context, sess domain.Session, tripID, itemID uuid.UUID) error {
	_, err := mutate(ctx, s.store, s.locks, sess, tripID, func(t *domain.Trip) error {
		i := slices.IndexFunc(t.Checklist, func(c domain.ChecklistItem) bool { return c.ID == itemID })
		if i < 0 {
			return domain.ErrNotFound
		}
		t.Checklist = slices.Delete(t.Checklist, i, i+1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("service.ChecklistService.Delete: %w", err)
	}
	return nil
}
