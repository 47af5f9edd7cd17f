package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/genai"
	"github.com/pkordes/trip-planner/internal/handler"
	"github.com/pkordes/trip-planner/internal/middleware"
	"github.com/pkordes/trip-planner/internal/service"
)

// Test doubles for the handler's service interfaces.
// Set only the method fields your test needs.

type mockTripServicer struct {
	create func(ctx context.Context, sess domain.Session, trip domain.Trip) (domain.Trip, error)
	get    func(ctx context.Context, sess domain.Session, id uuid.UUID) (domain.Trip, error)
	list   func(ctx context.Context, sess domain.Session, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update func(ctx context.Context, sess domain.Session, trip domain.Trip) (domain.Trip, error)
	delete func(ctx context.Context, sess domain.Session, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, sess domain.Session, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, sess, t)
}
func (m *mockTripServicer) Get(ctx context.Context, sess domain.Session, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, sess, id)
}
func (m *mockTripServicer) List(ctx context.Context, sess domain.Session, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.list(ctx, sess, p)
}
func (m *mockTripServicer) Update(ctx context.Context, sess domain.Session, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, sess, t)
}
func (m *mockTripServicer) Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error {
	return m.delete(ctx, sess, id)
}

type mockItineraryServicer struct {
	days            func(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.DayPlan, error)
	addActivity     func(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, kind domain.ItemKind) (domain.DayPlan, error)
	updateField     func(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, index int, field, value string) (domain.DayPlan, error)
	deleteItem      func(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, index int) (domain.DayPlan, error)
	insertTransport func(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, afterIndex int, mode domain.TransportMode) (domain.DayPlan, domain.ItineraryItem, error)
}

func (m *mockItineraryServicer) Days(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.DayPlan, error) {
	return m.days(ctx, sess, tripID)
}
func (m *mockItineraryServicer) AddActivity(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, kind domain.ItemKind) (domain.DayPlan, error) {
	return m.addActivity(ctx, sess, tripID, date, kind)
}
func (m *mockItineraryServicer) UpdateField(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, index int, field, value string) (domain.DayPlan, error) {
	return m.updateField(ctx, sess, tripID, date, index, field, value)
}
func (m *mockItineraryServicer) DeleteItem(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, index int) (domain.DayPlan, error) {
	return m.deleteItem(ctx, sess, tripID, date, index)
}
func (m *mockItineraryServicer) InsertTransport(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, afterIndex int, mode domain.TransportMode) (domain.DayPlan, domain.ItineraryItem, error) {
	return m.insertTransport(ctx, sess, tripID, date, afterIndex, mode)
}

type mockFlightServicer struct {
	search        func(ctx context.Context, q domain.FlightQuery) (service.SearchResult, error)
	bookings      func(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.FlightBooking, error)
	saveBooking   func(ctx context.Context, sess domain.Session, tripID uuid.UUID, b domain.FlightBooking) (domain.FlightBooking, int, error)
	deleteBooking func(ctx context.Context, sess domain.Session, tripID, bookingID uuid.UUID) error
}

func (m *mockFlightServicer) Search(ctx context.Context, q domain.FlightQuery) (service.SearchResult, error) {
	return m.search(ctx, q)
}
func (m *mockFlightServicer) Bookings(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.FlightBooking, error) {
	return m.bookings(ctx, sess, tripID)
}
func (m *mockFlightServicer) SaveBooking(ctx context.Context, sess domain.Session, tripID uuid.UUID, b domain.FlightBooking) (domain.FlightBooking, int, error) {
	return m.saveBooking(ctx, sess, tripID, b)
}
func (m *mockFlightServicer) DeleteBooking(ctx context.Context, sess domain.Session, tripID, bookingID uuid.UUID) error {
	return m.deleteBooking(ctx, sess, tripID, bookingID)
}

type mockExpenseServicer struct {
	list    func(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.Expense, error)
	add     func(ctx context.Context, sess domain.Session, tripID uuid.UUID, e domain.Expense) (domain.Expense, error)
	delete  func(ctx context.Context, sess domain.Session, tripID, expenseID uuid.UUID) error
	summary func(ctx context.Context, sess domain.Session, tripID uuid.UUID) (domain.ExpenseSummary, error)
}

func (m *mockExpenseServicer) List(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.Expense, error) {
	return m.list(ctx, sess, tripID)
}
func (m *mockExpenseServicer) Add(ctx context.Context, sess domain.Session, tripID uuid.UUID, e domain.Expense) (domain.Expense, error) {
	return m.add(ctx, sess, tripID, e)
}
func (m *mockExpenseServicer) Delete(ctx context.Context, sess domain.Session, tripID, expenseID uuid.UUID) error {
	return m.delete(ctx, sess, tripID, expenseID)
}
func (m *mockExpenseServicer) Summary(ctx context.Context, sess domain.Session, tripID uuid.UUID) (domain.ExpenseSummary, error) {
	return m.summary(ctx, sess, tripID)
}

type mockChecklistServicer struct {
	list    func(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.ChecklistItem, error)
	add     func(ctx context.Context, sess domain.Session, tripID uuid.UUID, text string) (domain.ChecklistItem, error)
	setDone func(ctx context.Context, sess domain.Session, tripID, itemID uuid.UUID, done bool) (domain.ChecklistItem, error)
	delete  func(ctx context.Context, sess domain.Session, tripID, itemID uuid.UUID) error
}

func (m *mockChecklistServicer) List(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.ChecklistItem, error) {
	return m.list(ctx, sess, tripID)
}
func (m *mockChecklistServicer) Add(ctx context.Context, sess domain.Session, tripID uuid.UUID, text string) (domain.ChecklistItem, error) {
	return m.add(ctx, sess, tripID, text)
}
func (m *mockChecklistServicer) SetDone(ctx context.Context, sess domain.Session, tripID, itemID uuid.UUID, done bool) (domain.ChecklistItem, error) {
	return m.setDone(ctx, sess, tripID, itemID, done)
}
func (m *mockChecklistServicer) Delete(ctx context.Context, sess domain.Session, tripID, itemID uuid.UUID) error {
	return m.delete(ctx, sess, tripID, itemID)
}

type mockAssistantServicer struct {
	ask func(ctx context.Context, sess domain.Session, tripID uuid.UUID, messages []genai.Message) (genai.Message, error)
}

func (m *mockAssistantServicer) Ask(ctx context.Context, sess domain.Session, tripID uuid.UUID, messages []genai.Message) (genai.Message, error) {
	return m.ask(ctx, sess, tripID, messages)
}

type mockExportServicer struct {
	export func(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, sess, tripID)
}

// compile-time checks: every mock must satisfy its handler interface.
var (
	_ handler.TripServicer      = (*mockTripServicer)(nil)
	_ handler.ItineraryServicer = (*mockItineraryServicer)(nil)
	_ handler.FlightServicer    = (*mockFlightServicer)(nil)
	_ handler.ExpenseServicer   = (*mockExpenseServicer)(nil)
	_ handler.ChecklistServicer = (*mockChecklistServicer)(nil)
	_ handler.AssistantServicer = (*mockAssistantServicer)(nil)
	_ handler.ExportServicer    = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

const testUser = "user-1"

// newHTTPHandler wires a Server with the given mocks into its chi router,
// the same way main.go mounts it.
func newHTTPHandler(s handler.Services) http.Handler {
	return handler.NewServer(s).Routes()
}

// do sends a request as testUser. body, when non-nil, is JSON encoded.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, testUser)
	req.Header.Set(middleware.HeaderUserName, "Ada")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:           uuid.New(),
		OwnerID:      testUser,
		Name:         "Seoul in June",
		Destination:  "Seoul",
		StartDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		HomeCurrency: "USD",
		Days: []domain.DayPlan{
			{Date: "2025-06-01", Items: []domain.ItineraryItem{
				{ID: "a", Time: "09:00", Name: "Gyeongbokgung", Kind: domain.KindPlace, Date: "2025-06-01"},
			}},
			{Date: "2025-06-02"},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}
