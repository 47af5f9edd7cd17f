package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/genai"
	"github.com/pkordes/trip-planner/internal/repo"
)

// Chatter answers a conversation given a trip snapshot.
type Chatter interface {
	Chat(ctx context.Context, tripContext any, messages []genai.Message) (string, error)
}

// AssistantService answers questions about a trip.
type AssistantService struct {
	store repo.TripStore
	chat  Chatter
}

// NewAssistantService constructs an AssistantService.
func NewAssistantService(store repo.TripStore, chat Chatter) *AssistantService {
	return &AssistantService{store: store, chat: chat}
}

// assistantContext is the trip snapshot sent with every question.
type assistantContext struct {
	Name        string                 `json:"name"`
	Destination string                 `json:"destination,omitempty"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Traveler    string                 `json:"traveler"`
	Days        []domain.DayPlan       `json:"days"`
	Flights     []domain.FlightBooking `json:"flights,omitempty"`
	OpenTodos   []string               `json:"open_todos,omitempty"`
}

// Ask forwards the conversation to the assistant and returns its reply.
// The last message must come from the user.
// Returns domain.ErrUnavailable when the assistant cannot answer.
func (s *AssistantService) Ask(ctx context.Context, sess domain.Session, tripID uuid.UUID, messages []genai.Message) (genai.Message, error) {
	if len(messages) == 0 || messages[len(messages)-1].Role != "user" ||
		strings.TrimSpace(messages[len(messages)-1].Content) == "" {
		return genai.Message{}, fmt.Errorf("%w: the last message must be a non-empty user message", domain.ErrValidation)
	}

	trip, err := loadOwned(ctx, s.store, sess, tripID)
	if err != nil {
		return genai.Message{}, fmt.Errorf("service.AssistantService.Ask: %w", err)
	}

	snapshot := assistantContext{
		Name:        trip.Name,
		Destination: trip.Destination,
		StartDate:   trip.StartDate.Format(domain.DateLayout),
		EndDate:     trip.EndDate.Format(domain.DateLayout),
		Traveler:    sess.Name(),
		Days:        trip.Days,
		Flights:     trip.Flights,
	}
	for _, c := range trip.Checklist {
		if !c.Done {
			snapshot.OpenTodos = append(snapshot.OpenTodos, c.Text)
		}
	}

	reply, err := s.chat.Chat(ctx, snapshot, messages)
	if err != nil {
		return genai.Message{}, fmt.Errorf("service.AssistantService.Ask: %w: %v", domain.ErrUnavailable, err)
	}
	return genai.Message{Role: "assistant", Content: reply}, nil
}
