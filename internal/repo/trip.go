// Package repo contains all database access logic for the trip planner.
// The trip store persists whole trip aggregates; no business logic lives
// here, only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/itinerary"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so Upsert stays atomic in both cases.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TripStore defines the persistence operations for trip aggregates.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows services to be unit-tested with a mock.
type TripStore interface {
	// Load returns every trip owned by ownerID, most recent start date first.
	Load(ctx context.Context, ownerID string) ([]domain.Trip, error)

	// LoadPaged returns one page of the owner's trips and the total count.
	LoadPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// LoadByID returns a single trip with all nested collections.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	LoadByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// Upsert writes the trip row and replaces every nested collection
	// wholesale. The returned trip carries the stored timestamps.
	// Returns domain.ErrNotFound if the ID exists under a different owner.
	Upsert(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip owned by ownerID.
	// Returns domain.ErrNotFound if no such trip exists for that owner.
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// pgTripStore is the Postgres implementation of TripStore.
type pgTripStore struct {
	db db
}

// NewTripStore constructs a TripStore backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripStore(db db) TripStore {
	return &pgTripStore{db: db}
}

const tripColumns = `id, owner_id, name, destination, start_date, end_date, cover_image, home_currency, created_at, updated_at`

// Load returns all of the owner's trips ordered by start_date descending.
func (r *pgTripStore) Load(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM trips
		WHERE owner_id = @owner_id
		ORDER BY start_date DESC, created_at DESC`

	trips, err := r.queryTrips(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripStore.Load: %w", err)
	}
	return trips, nil
}

// LoadPaged returns one page of the owner's trips and the total row count.
func (r *pgTripStore) LoadPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips WHERE owner_id = @owner_id`,
		pgx.NamedArgs{"owner_id": ownerID}).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripStore.LoadPaged: count: %w", err)
	}

	q := `SELECT ` + tripColumns + `
		FROM trips
		WHERE owner_id = @owner_id
		ORDER BY start_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	trips, err := r.queryTrips(ctx, q, pgx.NamedArgs{
		"owner_id": ownerID,
		"limit":    p.Limit,
		"offset":   p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripStore.LoadPaged: %w", err)
	}
	return trips, total, nil
}

// LoadByID retrieves a trip and its nested collections by primary key.
func (r *pgTripStore) LoadByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	trip, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.LoadByID: %w", err)
	}

	trips := []domain.Trip{trip}
	if err := r.loadChildren(ctx, trips); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.LoadByID: %w", err)
	}
	return trips[0], nil
}

// Upsert writes the trip and replaces its nested collections in one transaction.
func (r *pgTripStore) Upsert(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.Upsert: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
		INSERT INTO trips (id, owner_id, name, destination, start_date, end_date, cover_image, home_currency)
		VALUES (@id, @owner_id, @name, @destination, @start_date, @end_date, @cover_image, @home_currency)
		ON CONFLICT (id) DO UPDATE
		SET name          = EXCLUDED.name,
		    destination   = EXCLUDED.destination,
		    start_date    = EXCLUDED.start_date,
		    end_date      = EXCLUDED.end_date,
		    cover_image   = EXCLUDED.cover_image,
		    home_currency = EXCLUDED.home_currency,
		    updated_at    = now()
		WHERE trips.owner_id = EXCLUDED.owner_id
		RETURNING created_at, updated_at`

	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}

	err = tx.QueryRow(ctx, q, pgx.NamedArgs{
		"id":            trip.ID,
		"owner_id":      trip.OwnerID,
		"name":          trip.Name,
		"destination":   trip.Destination,
		"start_date":    trip.StartDate,
		"end_date":      trip.EndDate,
		"cover_image":   trip.CoverImage,
		"home_currency": trip.HomeCurrency,
	}).Scan(&trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, fmt.Errorf("repo.TripStore.Upsert: %w", domain.ErrNotFound)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripStore.Upsert: %w", err)
	}

	batch, err := replaceChildren(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.Upsert: %w", err)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.Upsert: children: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripStore.Upsert: commit: %w", err)
	}
	return trip, nil
}

// Delete removes a trip; nested rows go with it via ON DELETE CASCADE.
func (r *pgTripStore) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	const q = `DELETE FROM trips WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("repo.TripStore.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripStore.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// replaceChildren queues the delete-then-reinsert of every nested collection.
func replaceChildren(trip domain.Trip) (*pgx.Batch, error) {
	b := &pgx.Batch{}
	args := pgx.NamedArgs{"trip_id": trip.ID}
	b.Queue(`DELETE FROM itinerary_items WHERE trip_id = @trip_id`, args)
	b.Queue(`DELETE FROM flight_bookings WHERE trip_id = @trip_id`, args)
	b.Queue(`DELETE FROM expenses WHERE trip_id = @trip_id`, args)
	b.Queue(`DELETE FROM checklist_items WHERE trip_id = @trip_id`, args)

	for _, day := range trip.Days {
		for pos, it := range day.Items {
			var mode *string
			if it.TransportMode != "" {
				m := string(it.TransportMode)
				mode = &m
			}
			b.Queue(`
				INSERT INTO itinerary_items (id, trip_id, day, position, start_time, name, note, kind, transport_mode)
				VALUES (@id, @trip_id, @day, @position, @time, @name, @note, @kind, @transport_mode)`,
				pgx.NamedArgs{
					"id":             it.ID,
					"trip_id":        trip.ID,
					"day":            day.Date,
					"position":       pos,
					"time":           it.Time,
					"name":           it.Name,
					"note":           it.Note,
					"kind":           string(it.Kind),
					"transport_mode": mode,
				})
		}
	}

	for _, f := range trip.Flights {
		outbound, err := json.Marshal(f.Outbound)
		if err != nil {
			return nil, fmt.Errorf("marshal outbound: %w", err)
		}
		var inbound []byte
		if f.Inbound != nil {
			if inbound, err = json.Marshal(f.Inbound); err != nil {
				return nil, fmt.Errorf("marshal inbound: %w", err)
			}
		}
		created := f.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		b.Queue(`
			INSERT INTO flight_bookings (id, trip_id, owner_id, traveler_name, outbound, inbound, synced_from_companion, created_at)
			VALUES (@id, @trip_id, @owner_id, @traveler_name, @outbound, @inbound, @synced, @created_at)`,
			pgx.NamedArgs{
				"id":            f.ID,
				"trip_id":       trip.ID,
				"owner_id":      f.OwnerID,
				"traveler_name": f.TravelerName,
				"outbound":      outbound,
				"inbound":       inbound,
				"synced":        f.SyncedFromCompanion,
				"created_at":    created,
			})
	}

	for _, e := range trip.Expenses {
		b.Queue(`
			INSERT INTO expenses (id, trip_id, title, category, amount, currency, spent_on)
			VALUES (@id, @trip_id, @title, @category, @amount::numeric, @currency, @spent_on)`,
			pgx.NamedArgs{
				"id":       e.ID,
				"trip_id":  trip.ID,
				"title":    e.Title,
				"category": e.Category,
				"amount":   e.Amount.String(),
				"currency": e.Currency,
				"spent_on": e.SpentOn,
			})
	}

	for pos, c := range trip.Checklist {
		b.Queue(`
			INSERT INTO checklist_items (id, trip_id, position, text, done)
			VALUES (@id, @trip_id, @position, @text, @done)`,
			pgx.NamedArgs{
				"id":       c.ID,
				"trip_id":  trip.ID,
				"position": pos,
				"text":     c.Text,
				"done":     c.Done,
			})
	}
	return b, nil
}

// queryTrips runs a trip-row query and loads nested collections for the result.
func (r *pgTripStore) queryTrips(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	rows.Close()

	if err := r.loadChildren(ctx, trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// loadChildren fills the nested collections of trips with one query per
// collection.
func (r *pgTripStore) loadChildren(ctx context.Context, trips []domain.Trip) error {
	if len(trips) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(trips))
	ids := make([]uuid.UUID, len(trips))
	for i, t := range trips {
		index[t.ID] = i
		ids[i] = t.ID
	}
	args := pgx.NamedArgs{"ids": ids}

	stored := make(map[uuid.UUID][]domain.DayPlan, len(trips))
	if err := r.eachRow(ctx, `
		SELECT trip_id, day, id, start_time, name, note, kind, COALESCE(transport_mode, '')
		FROM itinerary_items
		WHERE trip_id = ANY(@ids)
		ORDER BY trip_id, day, position`, args, func(row pgx.Rows) error {
		var (
			tripID pgtype.UUID
			day    pgtype.Date
			it     domain.ItineraryItem
			kind   string
			mode   string
		)
		if err := row.Scan(&tripID, &day, &it.ID, &it.Time, &it.Name, &it.Note, &kind, &mode); err != nil {
			return err
		}
		it.Kind = domain.ItemKind(kind)
		it.TransportMode = domain.TransportMode(mode)
		it.Date = day.Time.Format(domain.DateLayout)
		id := uuid.UUID(tripID.Bytes)
		stored[id] = appendToDay(stored[id], it)
		return nil
	}); err != nil {
		return fmt.Errorf("itinerary: %w", err)
	}

	if err := r.eachRow(ctx, `
		SELECT trip_id, id, owner_id, traveler_name, outbound, inbound, synced_from_companion, created_at
		FROM flight_bookings
		WHERE trip_id = ANY(@ids)
		ORDER BY created_at`, args, func(row pgx.Rows) error {
		var (
			tripID, id        pgtype.UUID
			f                 domain.FlightBooking
			outbound, inbound []byte
		)
		if err := row.Scan(&tripID, &id, &f.OwnerID, &f.TravelerName, &outbound, &inbound, &f.SyncedFromCompanion, &f.CreatedAt); err != nil {
			return err
		}
		f.ID = uuid.UUID(id.Bytes)
		if err := json.Unmarshal(outbound, &f.Outbound); err != nil {
			return fmt.Errorf("decode outbound %s: %w", f.ID, err)
		}
		if len(inbound) > 0 {
			f.Inbound = &domain.FlightSegment{}
			if err := json.Unmarshal(inbound, f.Inbound); err != nil {
				return fmt.Errorf("decode inbound %s: %w", f.ID, err)
			}
		}
		t := &trips[index[uuid.UUID(tripID.Bytes)]]
		t.Flights = append(t.Flights, f)
		return nil
	}); err != nil {
		return fmt.Errorf("flights: %w", err)
	}

	if err := r.eachRow(ctx, `
		SELECT trip_id, id, title, category, amount::text, currency, spent_on
		FROM expenses
		WHERE trip_id = ANY(@ids)
		ORDER BY spent_on, title`, args, func(row pgx.Rows) error {
		var (
			tripID, id pgtype.UUID
			e          domain.Expense
			amount     string
			spentOn    pgtype.Date
		)
		if err := row.Scan(&tripID, &id, &e.Title, &e.Category, &amount, &e.Currency, &spentOn); err != nil {
			return err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("decode amount %q: %w", amount, err)
		}
		e.ID = uuid.UUID(id.Bytes)
		e.Amount = d
		e.SpentOn = spentOn.Time
		t := &trips[index[uuid.UUID(tripID.Bytes)]]
		t.Expenses = append(t.Expenses, e)
		return nil
	}); err != nil {
		return fmt.Errorf("expenses: %w", err)
	}

	if err := r.eachRow(ctx, `
		SELECT trip_id, id, text, done
		FROM checklist_items
		WHERE trip_id = ANY(@ids)
		ORDER BY trip_id, position`, args, func(row pgx.Rows) error {
		var (
			tripID, id pgtype.UUID
			c          domain.ChecklistItem
		)
		if err := row.Scan(&tripID, &id, &c.Text, &c.Done); err != nil {
			return err
		}
		c.ID = uuid.UUID(id.Bytes)
		t := &trips[index[uuid.UUID(tripID.Bytes)]]
		t.Checklist = append(t.Checklist, c)
		return nil
	}); err != nil {
		return fmt.Errorf("checklist: %w", err)
	}

	for i := range trips {
		t := &trips[i]
		t.Days, _ = itinerary.Regenerate(stored[t.ID], t.StartDate, t.EndDate)
		if t.Flights == nil {
			t.Flights = []domain.FlightBooking{}
		}
		if t.Expenses == nil {
			t.Expenses = []domain.Expense{}
		}
		if t.Checklist == nil {
			t.Checklist = []domain.ChecklistItem{}
		}
	}
	return nil
}

// eachRow runs q and calls fn for every row.
func (r *pgTripStore) eachRow(ctx context.Context, q string, args pgx.NamedArgs, fn func(pgx.Rows) error) error {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// appendToDay adds it to the day plan matching it.Date, creating one if needed.
// Rows arrive ordered by day and position, so order is preserved.
func appendToDay(days []domain.DayPlan, it domain.ItineraryItem) []domain.DayPlan {
	if n := len(days); n > 0 && days[n-1].Date == it.Date {
		days[n-1].Items = append(days[n-1].Items, it)
		return days
	}
	return append(days, domain.DayPlan{Date: it.Date, Items: []domain.ItineraryItem{it}})
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single trips row into a domain.Trip without nested collections.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t          domain.Trip
		id         pgtype.UUID
		start, end pgtype.Date
	)

	err := s.Scan(&id, &t.OwnerID, &t.Name, &t.Destination, &start, &end, &t.CoverImage, &t.HomeCurrency, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	return t, nil
}
