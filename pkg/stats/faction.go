package stats

import (
	"sort"

	"github.com/ritzau/conflict-atlas/pkg/extract"
	"github.com/ritzau/conflict-atlas/pkg/model"
)

// FactionEvents scans raw events for every event naming the faction on
// either side. The active region and violence filters are not applied.
func FactionEvents(events []model.Event, name string) []model.Event {
	result := make([]model.Event, 0)
	for i := range events {
		if involves(&events[i], name) {
			result = append(result, events[i])
		}
	}
	return result
}

// SharedEvents returns the events naming both factions
func SharedEvents(events []model.Event, a, b string) []model.Event {
	result := make([]model.Event, 0)
	for i := range events {
		if involves(&events[i], a) && involves(&events[i], b) {
			result = append(result, events[i])
		}
	}
	return result
}

// ConnectedFactions ranks the factions that appear in events together with name
func ConnectedFactions(events []model.Event, name string) []FactionCount {
	ranked := RankFactions(FactionEvents(events, name), 0)

	result := make([]FactionCount, 0, len(ranked))
	for _, fc := range ranked {
		if fc.Name != name {
			result = append(result, fc)
		}
	}
	return result
}

// YearPoint is one bar of a yearly series
type YearPoint struct {
	Year       int     `json:"year"`
	Events     int     `json:"events"`
	Casualties float64 `json:"casualties"`
}

// YearSeries buckets events by year, ascending
func YearSeries(events []model.Event) []YearPoint {
	byYear := make(map[int]*YearPoint)
	for i := range events {
		e := &events[i]
		p, ok := byYear[e.Year]
		if !ok {
			p = &YearPoint{Year: e.Year}
			byYear[e.Year] = p
		}
		p.Events++
		p.Casualties += e.Casualties()
	}

	series := make([]YearPoint, 0, len(byYear))
	for _, p := range byYear {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Year < series[j].Year
	})
	return series
}

func involves(e *model.Event, name string) bool {
	return extract.Extract(e.SideA).Has(name) || extract.Extract(e.SideB).Has(name)
}
