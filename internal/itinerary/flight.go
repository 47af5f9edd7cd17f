package itinerary

import (
	"fmt"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// FlightLabel is the display name of a synthesized in-flight transit entry.
const FlightLabel = "Flight"

// SynthesizeSegment turns one flight segment into its departure, transit and
// arrival entries. The transit entry is always dated on the departure day,
// even for overnight flights.
func SynthesizeSegment(seg domain.FlightSegment, traveler string) []domain.ItineraryItem {
	dep := seg.DepartureTime.Clock()
	arr := seg.ArrivalTime.Clock()

	mid, _ := Midpoint(dep, arr)
	flightMinutes, _ := ClockDiff(dep, arr)

	return []domain.ItineraryItem{
		{
			ID:            newID(),
			Time:          dep,
			Name:          seg.DepartureAirport + " Airport",
			Note:          departureNote(seg.FlightNumber, traveler),
			Kind:          domain.KindPlace,
			TransportMode: domain.ModeFlight,
			Date:          seg.DepartureTime.Date(),
		},
		{
			ID:            newID(),
			Time:          mid,
			Name:          FlightLabel,
			Note:          FormatDuration(flightMinutes),
			Kind:          domain.KindTransport,
			TransportMode: domain.ModeFlight,
			Date:          seg.DepartureTime.Date(),
		},
		{
			ID:            newID(),
			Time:          arr,
			Name:          seg.ArrivalAirport + " Airport",
			Note:          fmt.Sprintf("Arrival (%s)", traveler),
			Kind:          domain.KindPlace,
			TransportMode: domain.ModeFlight,
			Date:          seg.ArrivalTime.Date(),
		},
	}
}

// MergeSynthesized inserts synthesized entries into their days, skipping any
// entry already represented there: same time and name, or for places the
// same name with a note naming the same flight. Entries dated outside the
// trip are skipped. Returns the number of entries inserted.
func MergeSynthesized(days []domain.DayPlan, flightNumber string, items []domain.ItineraryItem) int {
	inserted := 0
	for _, item := range items {
		day := dayFor(days, item.Date)
		if day == nil || isDuplicate(day.Items, item, flightNumber) {
			continue
		}
		day.Items = append(day.Items, item)
		SortItems(day.Items)
		inserted++
	}
	return inserted
}

// SynthesizeBooking merges the outbound and, if present, inbound segments of
// booking into days. Bookings synced from a companion are skipped entirely.
func SynthesizeBooking(days []domain.DayPlan, booking domain.FlightBooking) int {
	if booking.SyncedFromCompanion {
		return 0
	}
	n := MergeSynthesized(days, booking.Outbound.FlightNumber, SynthesizeSegment(booking.Outbound, booking.TravelerName))
	if booking.Inbound != nil {
		n += MergeSynthesized(days, booking.Inbound.FlightNumber, SynthesizeSegment(*booking.Inbound, booking.TravelerName))
	}
	return n
}

func isDuplicate(existing []domain.ItineraryItem, item domain.ItineraryItem, flightNumber string) bool {
	for _, e := range existing {
		if e.Time == item.Time && e.Name == item.Name {
			return true
		}
		if item.Kind == domain.KindPlace && e.Name == item.Name &&
			flightNumber != "" && strings.HasPrefix(e.Note, flightNotePrefix(flightNumber)) {
			return true
		}
	}
	return false
}

// departureNote labels a departure entry with its flight and traveler.
func departureNote(flightNumber, traveler string) string {
	return flightNotePrefix(flightNumber) + traveler + ")"
}

// flightNotePrefix is the start of every departure note for the flight. It
// ends at the parenthesis so "UA1" never matches a "UA12" entry.
func flightNotePrefix(flightNumber string) string {
	return "Flight: " + flightNumber + " ("
}

func dayFor(days []domain.DayPlan, date string) *domain.DayPlan {
	for i := range days {
		if days[i].Date == date {
			return &days[i]
		}
	}
	return nil
}
