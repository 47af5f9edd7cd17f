package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalDateTimeLayout is the wire layout of flight timestamps. Values are
// local wall-clock times of the airport and are never converted between zones.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// LocalDateTime is a wall-clock timestamp without a zone. The wrapped
// time.Time always carries time.UTC as a placeholder location.
type LocalDateTime struct {
	time.Time
}

// ParseLocalDateTime parses s in LocalDateTimeLayout.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	t, err := time.Parse(LocalDateTimeLayout, s)
	if err != nil {
		return LocalDateTime{}, err
	}
	return LocalDateTime{Time: t}, nil
}

func (l LocalDateTime) String() string {
	return l.Format(LocalDateTimeLayout)
}

// Date returns the "2006-01-02" day key of the timestamp.
func (l LocalDateTime) Date() string {
	return l.Format(DateLayout)
}

// Clock returns the "15:04" clock value of the timestamp.
func (l LocalDateTime) Clock() string {
	return l.Format("15:04")
}

// MarshalText and MarshalJSON shadow the promoted time.Time methods so the
// value never gains a zone suffix on the wire.
func (l LocalDateTime) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LocalDateTime) UnmarshalText(b []byte) error {
	parsed, err := ParseLocalDateTime(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(l.String())), nil
}

func (l *LocalDateTime) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	return l.UnmarshalText([]byte(s))
}

// FlightSegment is a single scheduled flight as returned by the flight lookup service.
type FlightSegment struct {
	AirlineCode      string        `json:"airline_code"`
	AirlineName      string        `json:"airline_name"`
	FlightNumber     string        `json:"flight_number"`
	DepartureAirport string        `json:"departure_airport"`
	ArrivalAirport   string        `json:"arrival_airport"`
	DepartureTime    LocalDateTime `json:"departure_time"`
	ArrivalTime      LocalDateTime `json:"arrival_time"`
	Terminal         string        `json:"terminal,omitempty"`
}

// FlightBooking is a traveler's chosen outbound and optional inbound flight.
// SyncedFromCompanion marks a booking that mirrors another traveler's identical
// schedule; such bookings never add itinerary entries.
type FlightBooking struct {
	ID                  uuid.UUID      `json:"id"`
	OwnerID             string         `json:"owner_id"`
	TravelerName        string         `json:"traveler_name"`
	Outbound            FlightSegment  `json:"outbound"`
	Inbound             *FlightSegment `json:"inbound,omitempty"`
	SyncedFromCompanion bool           `json:"synced_from_companion"`
	CreatedAt           time.Time      `json:"created_at"`
}

// FlightQuery is a flight lookup request.
type FlightQuery struct {
	Origin       string
	Destination  string
	Date         string
	FlightNumber string
}
