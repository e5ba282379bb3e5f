// Package viewstate is the dashboard's navigation state machine.
//
// A State carries exactly one Mode. Modes are a closed set of variants, so
// every switch over them can be checked for exhaustiveness, and all changes
// go through the transition functions in transitions.go, which never mutate
// their input.
package viewstate

import (
	"fmt"

	"github.com/ritzau/conflict-atlas/pkg/model"
	"github.com/ritzau/conflict-atlas/pkg/stats"
)

// ModeKind names a mode variant
type ModeKind int

const (
	KindWorld ModeKind = iota
	KindRegion
	KindCountry
	KindFaction
	KindEvent
)

func (k ModeKind) String() string {
	switch k {
	case KindWorld:
		return "world"
	case KindRegion:
		return "region"
	case KindCountry:
		return "country"
	case KindFaction:
		return "faction"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON payloads
func (k ModeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name
func (k *ModeKind) UnmarshalText(text []byte) error {
	for kind := KindWorld; kind <= KindEvent; kind++ {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", text)
}

// Mode is one of World, Region, Country, Faction or Event
type Mode interface {
	Kind() ModeKind
	mode()
}

// World is the initial mode and the universal reset target
type World struct{}

// Region restricts the dashboard to one geographic region
type Region struct {
	Name string `json:"name"`
}

// Country shows the aggregate of one country
type Country struct {
	Name      string                 `json:"name"`
	Aggregate stats.CountryAggregate `json:"aggregate"`
	Events    []model.Event          `json:"-"`
}

// Faction is the faction detail view. Events holds every raw event naming
// the faction, regardless of the active region or violence filters.
type Faction struct {
	Name   string        `json:"name"`
	Events []model.Event `json:"-"`
}

// Event shows one event. Origin is the Country or Faction mode that
// opened it and is where Back returns to.
type Event struct {
	Event  model.Event `json:"event"`
	Origin Mode        `json:"-"`
}

func (World) Kind() ModeKind   { return KindWorld }
func (Region) Kind() ModeKind  { return KindRegion }
func (Country) Kind() ModeKind { return KindCountry }
func (Faction) Kind() ModeKind { return KindFaction }
func (Event) Kind() ModeKind   { return KindEvent }

func (World) mode()   {}
func (Region) mode()  {}
func (Country) mode() {}
func (Faction) mode() {}
func (Event) mode()   {}
