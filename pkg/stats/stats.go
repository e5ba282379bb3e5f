// Package stats computes the aggregates shown in the country, region and
// faction side panels.
package stats

import (
	"sort"

	"github.com/ritzau/conflict-atlas/pkg/extract"
	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/window"
)

// DefaultTopN is the length of ranked lists in panels
const DefaultTopN = 10

// CasualtyBreakdown splits deaths by affiliation
type CasualtyBreakdown struct {
	SideA     float64 `json:"sideA"`
	SideB     float64 `json:"sideB"`
	Civilians float64 `json:"civilians"`
	Unknown   float64 `json:"unknown"`
	Total     float64 `json:"total"` // Sum of best estimates
}

func (c *CasualtyBreakdown) add(e *model.Event) {
	c.SideA += nonNegative(e.DeathsA)
	c.SideB += nonNegative(e.DeathsB)
	c.Civilians += nonNegative(e.DeathsCivilians)
	c.Unknown += nonNegative(e.DeathsUnknown)
	c.Total += e.Casualties()
}

// FactionCount is a ranked faction entry
type FactionCount struct {
	Name       string  `json:"name"`
	Events     int     `json:"events"`
	Casualties float64 `json:"casualties"`
}

// CountryAggregate summarizes every event of one country
type CountryAggregate struct {
	Country     string                     `json:"country"`
	Region      string                     `json:"region"`
	Events      int                        `json:"events"`
	Casualties  CasualtyBreakdown          `json:"casualties"`
	ByViolence  map[model.ViolenceType]int `json:"byViolence"`
	TopFactions []FactionCount             `json:"topFactions"`
	FirstYear   int                        `json:"firstYear"`
	LastYear    int                        `json:"lastYear"`
}

// Country aggregates the events of the named country. It reports false when
// the country has no events.
func Country(events []model.Event, name string) (CountryAggregate, bool) {
	agg := CountryAggregate{
		Country:    name,
		ByViolence: make(map[model.ViolenceType]int),
	}

	var matching []model.Event
	for i := range events {
		e := &events[i]
		if e.Country != name {
			continue
		}
		matching = append(matching, *e)

		if agg.Events == 0 {
			agg.Region = e.Region
			agg.FirstYear, agg.LastYear = e.Year, e.Year
		}
		agg.Events++
		agg.Casualties.add(e)
		agg.ByViolence[e.ViolenceType]++
		agg.FirstYear = min(agg.FirstYear, e.Year)
		agg.LastYear = max(agg.LastYear, e.Year)
	}

	if agg.Events == 0 {
		return agg, false
	}

	agg.TopFactions = RankFactions(matching, DefaultTopN)
	return agg, true
}

// RankFactions counts faction appearances over events, most events first
func RankFactions(events []model.Event, limit int) []FactionCount {
	counts := make(map[string]*FactionCount)
	for i := range events {
		e := &events[i]
		names := extract.Extract(e.SideA)
		for name := range extract.Extract(e.SideB) {
			names[name] = struct{}{}
		}
		for name := range names {
			fc, ok := counts[name]
			if !ok {
				fc = &FactionCount{Name: name}
				counts[name] = fc
			}
			fc.Events++
			fc.Casualties += e.Casualties()
		}
	}

	ranked := make([]FactionCount, 0, len(counts))
	for _, fc := range counts {
		ranked = append(ranked, *fc)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Events != ranked[j].Events {
			return ranked[i].Events > ranked[j].Events
		}
		return ranked[i].Name < ranked[j].Name
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// CountryTotal is one row of a country ranking or map layer
type CountryTotal struct {
	Country    string  `json:"country"`
	Region     string  `json:"region"`
	Events     int     `json:"events"`
	Casualties float64 `json:"casualties"`
}

// CountryTotals sums events and casualties per country
func CountryTotals(events []model.Event) map[string]CountryTotal {
	totals := make(map[string]CountryTotal)
	for i := range events {
		e := &events[i]
		if e.Country == "" {
			continue
		}
		t := totals[e.Country]
		t.Country = e.Country
		if t.Region == "" {
			t.Region = e.Region
		}
		t.Events++
		t.Casualties += e.Casualties()
		totals[e.Country] = t
	}
	return totals
}

// TopCountries ranks countries by casualties within the filter
func TopCountries(events []model.Event, f window.Filter, limit int) []CountryTotal {
	totals := CountryTotals(window.Apply(events, f))

	ranked := make([]CountryTotal, 0, len(totals))
	for _, t := range totals {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Casualties != ranked[j].Casualties {
			return ranked[i].Casualties > ranked[j].Casualties
		}
		return ranked[i].Country < ranked[j].Country
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Regions lists the distinct regions in input order of first appearance
func Regions(events []model.Event) []string {
	seen := make(map[string]bool)
	var regions []string
	for _, e := range events {
		if e.Region == "" || seen[e.Region] {
			continue
		}
		seen[e.Region] = true
		regions = append(regions, e.Region)
	}
	return regions
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
