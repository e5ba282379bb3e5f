// Package window selects the events active for a year and filter combination.
package window

import "github.com/ritzau/conflict-atlas/pkg/model"

// Filter is the active time window and filters.
// Zero values mean "no restriction".
type Filter struct {
	Year         int                `json:"year"`         // Upper bound (inclusive), 0 = unbounded
	ViolenceType model.ViolenceType `json:"violenceType"` // 0 = any
	Region       string             `json:"region"`       // "" = any
}

// Matches reports whether an event passes the filter
func (f Filter) Matches(event *model.Event) bool {
	if f.Year != 0 && event.Year > f.Year {
		return false
	}
	if f.ViolenceType != model.ViolenceAny && event.ViolenceType != f.ViolenceType {
		return false
	}
	if f.Region != "" && event.Region != f.Region {
		return false
	}
	return true
}

// Apply returns the events that pass the filter, preserving input order.
// The input slice is never modified.
func Apply(events []model.Event, f Filter) []model.Event {
	result := make([]model.Event, 0, len(events))
	for i := range events {
		if f.Matches(&events[i]) {
			result = append(result, events[i])
		}
	}
	return result
}

// YearRange returns the smallest and largest year in events
func YearRange(events []model.Event) (int, int, bool) {
	if len(events) == 0 {
		return 0, 0, false
	}

	lo, hi := events[0].Year, events[0].Year
	for _, e := range events[1:] {
		lo = min(lo, e.Year)
		hi = max(hi, e.Year)
	}
	return lo, hi, true
}
