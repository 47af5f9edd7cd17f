package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// ExportService flattens a trip's itinerary for download.
type ExportService struct {
	store repo.TripStore
}

// NewExportService constructs an ExportService.
func NewExportService(store repo.TripStore) *ExportService {
	return &ExportService{store: store}
}

// Export returns one row per itinerary entry in day and time order.
// Days without entries contribute one row with only the date set.
func (s *ExportService) Export(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.ExportRow, error) {
	trip, err := loadOwned(ctx, s.store, sess, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, day := range trip.Days {
		if len(day.Items) == 0 {
			rows = append(rows, domain.ExportRow{TripName: trip.Name, Date: day.Date})
			continue
		}
		for _, it := range day.Items {
			rows = append(rows, domain.ExportRow{
				TripName:      trip.Name,
				Date:          day.Date,
				Time:          it.Time,
				Kind:          string(it.Kind),
				TransportMode: string(it.TransportMode),
				Name:          it.Name,
				Note:          it.Note,
			})
		}
	}
	return rows, nil
}
