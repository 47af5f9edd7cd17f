// Package wizard models the flight-selection flow as an explicit finite-state
// machine. The flow moves strictly forward through search and select steps
// for the outbound and inbound legs, allows stepping back one state at a
// time, and ends with a review that hands the chosen segments to the
// booking step.
package wizard

import (
	"errors"
	"fmt"

	"github.com/pkordes/trip-planner/internal/domain"
)

// State is a step of the flow.
type State string

const (
	OutboundSearch State = "outbound-search"
	OutboundSelect State = "outbound-select"
	InboundSearch  State = "inbound-search"
	InboundSelect  State = "inbound-select"
	Review         State = "review"
	Confirmed      State = "confirmed"
)

// Event drives a transition.
type Event string

const (
	EventSearch      Event = "search"
	EventSelect      Event = "select"
	EventSkipInbound Event = "skip-inbound"
	EventBack        Event = "back"
	EventConfirm     Event = "confirm"
)

// ErrInvalidTransition is returned when an event is not allowed in the
// current state. The wizard is left unchanged.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// transitions is the complete table of allowed moves.
var transitions = map[State]map[Event]State{
	OutboundSearch: {
		EventSearch: OutboundSelect,
	},
	OutboundSelect: {
		EventSearch: OutboundSelect,
		EventSelect: InboundSearch,
		EventBack:   OutboundSearch,
	},
	InboundSearch: {
		EventSearch:      InboundSelect,
		EventSkipInbound: Review,
		EventBack:        OutboundSelect,
	},
	InboundSelect: {
		EventSearch: InboundSelect,
		EventSelect: Review,
		EventBack:   InboundSearch,
	},
	// Back from review returns to InboundSelect, or to InboundSearch when the
	// inbound leg was skipped.
	Review: {
		EventBack:    InboundSelect,
		EventConfirm: Confirmed,
	},
}

// Selection is the result of a confirmed wizard.
type Selection struct {
	Outbound domain.FlightSegment
	Inbound  *domain.FlightSegment
}

// Wizard holds the in-progress selection. Abandoning a wizard persists nothing.
type Wizard struct {
	state           State
	outboundResults []domain.FlightSegment
	inboundResults  []domain.FlightSegment
	outbound        *domain.FlightSegment
	inbound         *domain.FlightSegment
}

// New returns a wizard at the start of the flow.
func New() *Wizard {
	return &Wizard{state: OutboundSearch}
}

// State returns the current step.
func (w *Wizard) State() State {
	return w.state
}

// Candidates returns the search results for the leg currently being chosen.
func (w *Wizard) Candidates() []domain.FlightSegment {
	if w.outboundLeg() {
		return w.outboundResults
	}
	return w.inboundResults
}

// Can reports whether ev is allowed in the current state.
func (w *Wizard) Can(ev Event) bool {
	_, ok := transitions[w.state][ev]
	return ok
}

// Results records a search result list and moves to the matching select step.
// An empty result list keeps the wizard on the search step.
func (w *Wizard) Results(found []domain.FlightSegment) error {
	if !w.Can(EventSearch) {
		return w.invalid(EventSearch)
	}
	w.setCandidates(found)
	if len(found) == 0 {
		if w.outboundLeg() {
			w.state = OutboundSearch
		} else {
			w.state = InboundSearch
		}
		return nil
	}
	return w.fire(EventSearch)
}

// Select picks candidate i for the leg being chosen.
func (w *Wizard) Select(i int) error {
	if !w.Can(EventSelect) {
		return w.invalid(EventSelect)
	}
	found := w.Candidates()
	if i < 0 || i >= len(found) {
		return fmt.Errorf("%w: candidate %d out of range", ErrInvalidTransition, i)
	}
	chosen := found[i]
	if w.outboundLeg() {
		w.outbound = &chosen
	} else {
		w.inbound = &chosen
	}
	return w.fire(EventSelect)
}

// SkipInbound goes straight to review with a one-way booking.
func (w *Wizard) SkipInbound() error {
	if err := w.fire(EventSkipInbound); err != nil {
		return err
	}
	w.inbound = nil
	w.inboundResults = nil
	return nil
}

// Back moves exactly one step backwards. Stepping back out of a select step
// discards that leg's choice.
func (w *Wizard) Back() error {
	from := w.state
	if err := w.fire(EventBack); err != nil {
		return err
	}
	switch from {
	case OutboundSelect:
		w.outboundResults = nil
	case InboundSearch:
		w.outbound = nil
	case InboundSelect:
		w.inboundResults = nil
	case Review:
		if w.inbound == nil {
			w.state = InboundSearch
		}
		w.inbound = nil
	}
	return nil
}

// Pending returns the segments chosen so far. Outbound is the zero segment
// until one has been selected.
func (w *Wizard) Pending() Selection {
	var sel Selection
	if w.outbound != nil {
		sel.Outbound = *w.outbound
	}
	sel.Inbound = w.inbound
	return sel
}

// Confirm ends the flow and returns the chosen segments.
func (w *Wizard) Confirm() (Selection, error) {
	if w.outbound == nil {
		return Selection{}, w.invalid(EventConfirm)
	}
	if err := w.fire(EventConfirm); err != nil {
		return Selection{}, err
	}
	return Selection{Outbound: *w.outbound, Inbound: w.inbound}, nil
}

func (w *Wizard) outboundLeg() bool {
	return w.state == OutboundSearch || w.state == OutboundSelect
}

func (w *Wizard) setCandidates(found []domain.FlightSegment) {
	if w.outboundLeg() {
		w.outboundResults = found
	} else {
		w.inboundResults = found
	}
}

func (w *Wizard) fire(ev Event) error {
	next, ok := transitions[w.state][ev]
	if !ok {
		return w.invalid(ev)
	}
	w.state = next
	return nil
}

func (w *Wizard) invalid(ev Event) error {
	return fmt.Errorf("%w: %q in state %q", ErrInvalidTransition, ev, w.state)
}
