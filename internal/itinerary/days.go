package itinerary

import (
	"time"

	"github.com/pkordes/trip-planner/internal/domain"
)

// BuildDays returns one empty day plan per calendar day in [start, end].
// An end before start yields nil.
func BuildDays(start, end time.Time) []domain.DayPlan {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}
	var days []domain.DayPlan
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, domain.DayPlan{Date: d.Format(domain.DateLayout), Items: []domain.ItineraryItem{}})
	}
	return days
}

// Regenerate rebuilds the day list for a new [start, end] range.
// Days still in range keep their items (re-sorted, with Date fields
// re-stamped); days outside it are dropped and their items returned.
// Stored days whose keys do not parse are treated as absent.
func Regenerate(existing []domain.DayPlan, start, end time.Time) (days []domain.DayPlan, dropped []domain.ItineraryItem) {
	days = BuildDays(start, end)

	byDate := make(map[string]int, len(days))
	for i, d := range days {
		byDate[d.Date] = i
	}

	for _, old := range existing {
		if _, err := time.Parse(domain.DateLayout, old.Date); err != nil {
			continue
		}
		i, ok := byDate[old.Date]
		if !ok {
			dropped = append(dropped, old.Items...)
			continue
		}
		for _, item := range old.Items {
			item.Date = old.Date
			days[i].Items = append(days[i].Items, item)
		}
		SortItems(days[i].Items)
	}
	return days, dropped
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
