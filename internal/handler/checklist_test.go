package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/handler"
)

func checklistHandler(svc *mockChecklistServicer) http.Handler {
	return newHTTPHandler(handler.Services{Checklist: svc})
}

func TestAddChecklistItem_201(t *testing.T) {
	svc := &mockChecklistServicer{
		add: func(_ context.Context, _ domain.Session, _ uuid.UUID, text string) (domain.ChecklistItem, error) {
			return domain.ChecklistItem{ID: uuid.New(), Text: text}, nil
		},
	}

	rec := do(t, checklistHandler(svc), http.MethodPost, "/trips/"+uuid.NewString()+"/checklist",
		map[string]any{"text": "Passport"})

	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[domain.ChecklistItem](t, rec)
	assert.Equal(t, "Passport", item.Text)
	assert.False(t, item.Done)
}

func TestUpdateChecklistItem_200(t *testing.T) {
	itemID := uuid.New()
	svc := &mockChecklistServicer{
		setDone: func(_ context.Context, _ domain.Session, _, id uuid.UUID, done bool) (domain.ChecklistItem, error) {
			assert.Equal(t, itemID, id)
			assert.True(t, done)
			return domain.ChecklistItem{ID: id, Text: "Passport", Done: done}, nil
		},
	}

	rec := do(t, checklistHandler(svc), http.MethodPatch,
		"/trips/"+uuid.NewString()+"/checklist/"+itemID.String(), map[string]any{"done": true})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.ChecklistItem](t, rec).Done)
}

func TestUpdateChecklistItem_422_MissingDone(t *testing.T) {
	rec := do(t, checklistHandler(&mockChecklistServicer{}), http.MethodPatch,
		"/trips/"+uuid.NewString()+"/checklist/"+uuid.NewString(), map[string]any{})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteChecklistItem_204(t *testing.T) {
	svc := &mockChecklistServicer{
		delete: func(context.Context, domain.Session, uuid.UUID, uuid.UUID) error { return nil },
	}

	rec := do(t, checklistHandler(svc), http.MethodDelete,
		"/trips/"+uuid.NewString()+"/checklist/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListChecklist_200(t *testing.T) {
	svc := &mockChecklistServicer{
		list: func(context.Context, domain.Session, uuid.UUID) ([]domain.ChecklistItem, error) {
			return []domain.ChecklistItem{{ID: uuid.New(), Text: "Adapter", Done: true}}, nil
		},
	}

	rec := do(t, checklistHandler(svc), http.MethodGet, "/trips/"+uuid.NewString()+"/checklist", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.ChecklistItem](t, rec), 1)
}
