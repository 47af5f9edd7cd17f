package itinerary

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pkordes/trip-planner/internal/domain"
)

// NoDataNote is the fallback text when neither neighbour has a usable time.
const NoDataNote = "no data"

// maxEstimateLen bounds an accepted estimator answer; longer replies are
// treated as prose rather than a duration phrase.
const maxEstimateLen = 40

// Estimator produces a short duration phrase for travelling between two
// named places. Implementations may fail; callers never retry.
type Estimator interface {
	Estimate(ctx context.Context, from, to string, mode domain.TransportMode, locale string) (string, error)
}

// Source records which path produced an estimate.
type Source string

const (
	SourceService  Source = "service"
	SourceFallback Source = "fallback"
)

// Estimate is the settled duration text for one transport link.
type Estimate struct {
	ItemID string
	Text   string
	Source Source
}

// Leg is the context needed to estimate one transport link: the link itself
// and its neighbours, resolved by ID at the time the estimate starts.
type Leg struct {
	Item     domain.ItineraryItem
	From, To *domain.ItineraryItem
}

// LegFor resolves the transport link with the given ID and its neighbours.
// It returns false when the item is gone or is not a transport link.
func LegFor(day *domain.DayPlan, id string) (Leg, bool) {
	i := indexOf(day.Items, id)
	if i < 0 || !day.Items[i].IsTransport() {
		return Leg{}, false
	}
	leg := Leg{Item: day.Items[i]}
	if i > 0 {
		from := day.Items[i-1]
		leg.From = &from
	}
	if i+1 < len(day.Items) {
		to := day.Items[i+1]
		leg.To = &to
	}
	return leg, true
}

// EstimateLeg asks est for a duration once and falls back to the clock
// difference between the neighbours on any failure. It never returns an
// empty string.
func EstimateLeg(ctx context.Context, est Estimator, leg Leg, locale string) Estimate {
	out := Estimate{ItemID: leg.Item.ID}

	if est != nil && leg.From != nil && leg.To != nil {
		text, err := est.Estimate(ctx, leg.From.Name, leg.To.Name, leg.Item.TransportMode, locale)
		if err == nil {
			if cleaned, ok := cleanEstimate(text, locale); ok {
				out.Text, out.Source = cleaned, SourceService
				return out
			}
		}
	}

	out.Text, out.Source = Fallback(leg), SourceFallback
	return out
}

// Fallback computes the wall-clock gap between the leg's neighbours. A
// missing neighbour is replaced by the link's own time; when neither
// neighbour has a usable time the result is NoDataNote.
func Fallback(leg Leg) string {
	from, to := clockOf(leg.From), clockOf(leg.To)
	if from == "" && to == "" {
		return NoDataNote
	}
	if from == "" {
		from = leg.Item.Time
	}
	if to == "" {
		to = leg.Item.Time
	}
	d, ok := ClockDiff(from, to)
	if !ok {
		return NoDataNote
	}
	return FormatDuration(d)
}

func clockOf(item *domain.ItineraryItem) string {
	if item == nil {
		return ""
	}
	if _, ok := ParseClock(item.Time); !ok {
		return ""
	}
	return item.Time
}

// fillerWords are the leading hedges estimators like to prepend, by language.
var fillerWords = map[string][]string{
	"en": {"approximately", "approx.", "about", "around", "roughly", "~"},
	"ko": {"약", "대략"},
	"ja": {"約", "およそ"},
	"zh": {"约", "約", "大约"},
	"es": {"aproximadamente", "unos", "unas", "cerca de"},
	"fr": {"environ", "à peu près"},
	"de": {"ca.", "etwa", "ungefähr"},
}

// cleanEstimate strips a leading filler word and rejects replies that do
// not look like a short duration phrase.
func cleanEstimate(text, locale string) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'.`)
	lang := strings.ToLower(locale)
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}

	words := fillerWords[lang]
	if lang != "en" {
		words = append(words, fillerWords["en"]...)
	}
	for _, w := range words {
		if len(text) >= len(w) && strings.EqualFold(text[:len(w)], w) {
			text = strings.TrimSpace(text[len(w):])
			break
		}
	}

	if text == "" || utf8.RuneCountInString(text) > maxEstimateLen || strings.Contains(text, "\n") {
		return "", false
	}
	if strings.IndexFunc(text, unicode.IsDigit) < 0 {
		return "", false
	}
	return text, true
}

// Sequencer issues monotonically increasing sequence numbers per item so a
// superseded estimate can be recognised when it settles late.
type Sequencer struct {
	mu   sync.Mutex
	last map[string]uint64
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{last: make(map[string]uint64)}
}

// Next issues the next sequence number for itemID.
func (s *Sequencer) Next(itemID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[itemID]++
	return s.last[itemID]
}

// Latest reports whether seq is still the newest number issued for itemID.
func (s *Sequencer) Latest(itemID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[itemID] == seq
}
