package domain

// ItemKind classifies an itinerary entry.
type ItemKind string

const (
	KindPlace     ItemKind = "Place"
	KindFood      ItemKind = "Food"
	KindTransport ItemKind = "Transport"
)

// Valid reports whether k is one of the known kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case KindPlace, KindFood, KindTransport:
		return true
	}
	return false
}

// TransportMode is how a transport link is travelled.
// ModeFlight is reserved for items synthesized from flight bookings.
type TransportMode string

const (
	ModePublic  TransportMode = "Public"
	ModeCar     TransportMode = "Car"
	ModeBicycle TransportMode = "Bicycle"
	ModeWalking TransportMode = "Walking"
	ModeFlight  TransportMode = "Flight"
)

// Valid reports whether m is one of the known modes.
func (m TransportMode) Valid() bool {
	switch m {
	case ModePublic, ModeCar, ModeBicycle, ModeWalking, ModeFlight:
		return true
	}
	return false
}

// ItineraryItem is a single scheduled entry within a day plan.
// Time is a 24-hour "15:04" clock value; Date is the owning day's key.
type ItineraryItem struct {
	ID            string        `json:"id"`
	Time          string        `json:"time"`
	Name          string        `json:"name"`
	Note          string        `json:"note"`
	Kind          ItemKind      `json:"kind"`
	TransportMode TransportMode `json:"transport_mode,omitempty"`
	Date          string        `json:"date"`
}

// FlightOwned reports whether the item was synthesized from a flight booking.
// Flight-owned items cannot be edited or deleted by the user.
func (i ItineraryItem) FlightOwned() bool {
	return i.TransportMode == ModeFlight
}

// IsTransport reports whether the item is a transport link.
func (i ItineraryItem) IsTransport() bool {
	return i.Kind == KindTransport
}

// DayPlan is one calendar day of a trip. Items are kept sorted by Time.
type DayPlan struct {
	Date  string          `json:"date"`
	Items []ItineraryItem `json:"items"`
}
