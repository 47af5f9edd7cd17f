package itinerary

import (
	"sort"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
)

const (
	// DefaultStartTime is the time given to the first activity of an empty day.
	DefaultStartTime = "09:00"

	// activityGap is how far after the last entry a new activity is placed.
	activityGap = 30

	// PendingNote marks a transport link whose duration estimate has not settled.
	PendingNote = "Calculating..."
)

// Field names accepted by UpdateField.
const (
	FieldTime          = "time"
	FieldName          = "name"
	FieldNote          = "note"
	FieldKind          = "kind"
	FieldTransportMode = "transport_mode"
)

// placeholderNames are the display names given to freshly added activities.
var placeholderNames = map[domain.ItemKind]string{
	domain.KindPlace: "New Place",
	domain.KindFood:  "New Restaurant",
}

// newID is swapped in tests that need deterministic identifiers.
var newID = uuid.NewString

// SortItems orders items by time of day. Ties keep their relative order.
func SortItems(items []domain.ItineraryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return sortKey(items[i].Time) < sortKey(items[j].Time)
	})
}

// AddActivity appends a Place or Food entry 30 minutes after the day's last
// entry, or at 09:00 on an empty day, and re-sorts the day.
// Any other kind is rejected and the day is left unchanged.
func AddActivity(day *domain.DayPlan, kind domain.ItemKind) (domain.ItineraryItem, bool) {
	name, ok := placeholderNames[kind]
	if !ok {
		return domain.ItineraryItem{}, false
	}

	at := DefaultStartTime
	if n := len(day.Items); n > 0 {
		at = AddMinutes(day.Items[n-1].Time, activityGap)
	}

	item := domain.ItineraryItem{
		ID:   newID(),
		Time: at,
		Name: name,
		Kind: kind,
		Date: day.Date,
	}
	day.Items = append(day.Items, item)
	SortItems(day.Items)
	return item, true
}

// UpdateField sets one field of the item at index.
//
// Changing the time re-sorts the day; the returned IDs are the transport
// links directly before and after the item's new position, whose estimates
// are now stale. Other fields are replaced in place.
//
// Flight-owned items, out-of-range indexes and invalid values are rejected
// with ok == false and the day unchanged.
func UpdateField(day *domain.DayPlan, index int, field, value string) (stale []string, ok bool) {
	if index < 0 || index >= len(day.Items) {
		return nil, false
	}
	item := &day.Items[index]
	if item.FlightOwned() {
		return nil, false
	}

	switch field {
	case FieldTime:
		if _, valid := ParseClock(value); !valid {
			return nil, false
		}
		id := item.ID
		item.Time = FormatClock(sortKey(value))
		SortItems(day.Items)
		return staleNeighbours(day.Items, indexOf(day.Items, id)), true
	case FieldName:
		item.Name = value
	case FieldNote:
		item.Note = value
	case FieldKind:
		k := domain.ItemKind(value)
		if !k.Valid() {
			return nil, false
		}
		item.Kind = k
		if k != domain.KindTransport {
			item.TransportMode = ""
		}
	case FieldTransportMode:
		m := domain.TransportMode(value)
		if !item.IsTransport() || !m.Valid() || m == domain.ModeFlight {
			return nil, false
		}
		item.TransportMode = m
	default:
		return nil, false
	}
	return nil, true
}

// DeleteItem removes the item at index. Flight-owned items are kept.
// Transport links next to the removed item are left in place.
func DeleteItem(day *domain.DayPlan, index int) (domain.ItineraryItem, bool) {
	if index < 0 || index >= len(day.Items) {
		return domain.ItineraryItem{}, false
	}
	removed := day.Items[index]
	if removed.FlightOwned() {
		return domain.ItineraryItem{}, false
	}
	day.Items = append(day.Items[:index], day.Items[index+1:]...)
	return removed, true
}

// InsertTransport places a pending transport link between the items at
// afterIndex and afterIndex+1, timed at the midpoint of the two. Both
// neighbours must exist and neither may already be a transport link.
//
// The returned item carries PendingNote; the caller is expected to start an
// estimate for it and apply the result by ID.
func InsertTransport(day *domain.DayPlan, afterIndex int, mode domain.TransportMode) (domain.ItineraryItem, bool) {
	if afterIndex < 0 || afterIndex+1 >= len(day.Items) {
		return domain.ItineraryItem{}, false
	}
	if !mode.Valid() || mode == domain.ModeFlight {
		return domain.ItineraryItem{}, false
	}
	prev, next := day.Items[afterIndex], day.Items[afterIndex+1]
	if prev.IsTransport() || next.IsTransport() {
		return domain.ItineraryItem{}, false
	}
	at, ok := Midpoint(prev.Time, next.Time)
	if !ok {
		return domain.ItineraryItem{}, false
	}

	item := domain.ItineraryItem{
		ID:            newID(),
		Time:          at,
		Name:          string(mode),
		Note:          PendingNote,
		Kind:          domain.KindTransport,
		TransportMode: mode,
		Date:          day.Date,
	}

	pos := afterIndex + 1
	day.Items = append(day.Items, domain.ItineraryItem{})
	copy(day.Items[pos+1:], day.Items[pos:])
	day.Items[pos] = item
	return item, true
}

// SetNote replaces the note of the item with the given ID, if still present.
// Used to apply estimation results after the day may have been reordered.
func SetNote(day *domain.DayPlan, id, note string) bool {
	i := indexOf(day.Items, id)
	if i < 0 {
		return false
	}
	day.Items[i].Note = note
	return true
}

// Find returns the day and index holding the item with the given ID.
func Find(days []domain.DayPlan, id string) (*domain.DayPlan, int) {
	for d := range days {
		if i := indexOf(days[d].Items, id); i >= 0 {
			return &days[d], i
		}
	}
	return nil, -1
}

func indexOf(items []domain.ItineraryItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// staleNeighbours returns the IDs of the non-flight transport links adjacent
// to index.
func staleNeighbours(items []domain.ItineraryItem, index int) []string {
	var ids []string
	for _, n := range []int{index - 1, index + 1} {
		if n < 0 || n >= len(items) {
			continue
		}
		if items[n].IsTransport() && !items[n].FlightOwned() {
			ids = append(ids, items[n].ID)
		}
	}
	return ids
}
