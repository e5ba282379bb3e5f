package viewstate

import (
	"errors"
	"testing"

	"github.com/ritzau/conflict-atlas/pkg/model"
)

func testEvents() []model.Event {
	return []model.Event{
		{ID: "1", Year: 2001, Country: "Mali", Region: "Africa", Best: 10,
			ViolenceType: model.ViolenceStateBased, SideA: "Government of Mali", SideB: "MNLA"},
		{ID: "2", Year: 2005, Country: "Mali", Region: "Africa", Best: 5,
			ViolenceType: model.ViolenceOneSided, SideA: "MNLA", SideB: "Civilians"},
		{ID: "3", Year: 2002, Country: "Niger", Region: "Africa", Best: 30,
			ViolenceType: model.ViolenceStateBased, SideA: "Government of Niger", SideB: "MNLA, AQIM"},
		{ID: "4", Year: 2002, Country: "Syria", Region: "Middle East", Best: 100,
			ViolenceType: model.ViolenceStateBased, SideA: "Government of Syria", SideB: "FSA"},
	}
}

func mustState(t *testing.T) func(State, error) State {
	t.Helper()
	return func(s State, err error) State {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return s
	}
}

func TestTransitionTable(t *testing.T) {
	events := testEvents()
	world := Initial(0)
	region := mustState(t)(SelectRegion(world, events, "Africa"))
	country := mustState(t)(SelectCountry(world, events, "Mali"))
	faction := mustState(t)(SelectFaction(world, events, "MNLA"))
	event := mustState(t)(SelectEvent(country, "1"))

	tests := []struct {
		name    string
		apply   func(State) (State, error)
		from    State
		want    ModeKind
		wantErr error
	}{
		{"world selects region", func(s State) (State, error) { return SelectRegion(s, events, "Africa") }, world, KindRegion, nil},
		{"region switches region", func(s State) (State, error) { return SelectRegion(s, events, "Middle East") }, region, KindRegion, nil},
		{"country cannot select region", func(s State) (State, error) { return SelectRegion(s, events, "Africa") }, country, KindCountry, ErrInvalidTransition},
		{"unknown region", func(s State) (State, error) { return SelectRegion(s, events, "Atlantis") }, world, KindWorld, ErrNotFound},

		{"world selects country", func(s State) (State, error) { return SelectCountry(s, events, "Mali") }, world, KindCountry, nil},
		{"region selects country", func(s State) (State, error) { return SelectCountry(s, events, "Niger") }, region, KindCountry, nil},
		{"faction cannot select country", func(s State) (State, error) { return SelectCountry(s, events, "Mali") }, faction, KindFaction, ErrInvalidTransition},
		{"unknown country", func(s State) (State, error) { return SelectCountry(s, events, "Atlantis") }, region, KindRegion, ErrNotFound},

		{"world selects faction", func(s State) (State, error) { return SelectFaction(s, events, "MNLA") }, world, KindFaction, nil},
		{"region selects faction", func(s State) (State, error) { return SelectFaction(s, events, "AQIM") }, region, KindFaction, nil},
		{"event cannot select faction", func(s State) (State, error) { return SelectFaction(s, events, "MNLA") }, event, KindEvent, ErrInvalidTransition},
		{"unknown faction", func(s State) (State, error) { return SelectFaction(s, events, "Nobody") }, world, KindWorld, ErrNotFound},
		{"civilians are not a faction", func(s State) (State, error) { return SelectFaction(s, events, "Civilians") }, world, KindWorld, ErrNotFound},

		{"country selects event", func(s State) (State, error) { return SelectEvent(s, "2") }, country, KindEvent, nil},
		{"faction selects event", func(s State) (State, error) { return SelectEvent(s, "3") }, faction, KindEvent, nil},
		{"world cannot select event", func(s State) (State, error) { return SelectEvent(s, "1") }, world, KindWorld, ErrInvalidTransition},
		{"event outside country", func(s State) (State, error) { return SelectEvent(s, "4") }, country, KindCountry, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.apply(tt.from)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got.Kind() != tt.want {
				t.Errorf("mode = %s, want %s", got.Kind(), tt.want)
			}
		})
	}
}

func TestSelectRegionKeepsViolenceType(t *testing.T) {
	s := mustState(t)(SetViolenceType(Initial(0), model.ViolenceOneSided))
	s = mustState(t)(SelectRegion(s, testEvents(), "Africa"))

	if s.ViolenceType != model.ViolenceOneSided {
		t.Errorf("violence type = %v, want one-sided", s.ViolenceType)
	}
	if f := s.Filter(); f.Region != "Africa" || f.ViolenceType != model.ViolenceOneSided {
		t.Errorf("filter = %+v", f)
	}
}

func TestSelectCountryRecordsPrevious(t *testing.T) {
	s := mustState(t)(SelectRegion(Initial(0), testEvents(), "Africa"))
	s = mustState(t)(SelectCountry(s, testEvents(), "Mali"))

	if s.Previous.Kind != KindRegion || s.Previous.Region != "Africa" {
		t.Errorf("previous = %+v", s.Previous)
	}
	if s.SelectedCountry() != "Mali" || s.SelectedRegion() != "Africa" {
		t.Errorf("selection = %q/%q", s.SelectedCountry(), s.SelectedRegion())
	}
	m := s.Mode.(Country)
	if m.Aggregate.Events != 2 {
		t.Errorf("aggregate events = %d, want 2", m.Aggregate.Events)
	}
	if _, ok := s.SelectedEvent(); ok {
		t.Error("country mode carries no event")
	}
}

func TestSelectFactionIgnoresFilters(t *testing.T) {
	s := mustState(t)(SetViolenceType(Initial(2001), model.ViolenceOneSided))
	s = mustState(t)(SelectRegion(s, testEvents(), "Middle East"))
	s = mustState(t)(SelectFaction(s, testEvents(), "MNLA"))

	m := s.Mode.(Faction)
	if len(m.Events) != 3 {
		t.Errorf("faction events = %d, want all 3 raw events", len(m.Events))
	}
}

func TestBackNavigation(t *testing.T) {
	events := testEvents()

	t.Run("event returns to origin", func(t *testing.T) {
		s := mustState(t)(SelectRegion(Initial(0), events, "Africa"))
		s = mustState(t)(SelectFaction(s, events, "MNLA"))
		s = mustState(t)(SelectEvent(s, "3"))
		if origin, ok := s.EventOrigin(); !ok || origin != (Origin{Kind: KindFaction, Name: "MNLA"}) {
			t.Errorf("event view lost its origin: %+v", origin)
		}

		s = Back(s)
		if s.Kind() != KindFaction || s.SelectedFaction() != "MNLA" {
			t.Fatalf("back from event = %s %q", s.Kind(), s.SelectedFaction())
		}

		s = Back(s)
		if s.Kind() != KindRegion || s.SelectedRegion() != "Africa" {
			t.Fatalf("back from faction = %s %q", s.Kind(), s.SelectedRegion())
		}

		s = Back(s)
		if s.Kind() != KindWorld {
			t.Fatalf("back from region = %s", s.Kind())
		}
	})

	t.Run("country from world resets", func(t *testing.T) {
		s := mustState(t)(SelectCountry(Initial(0), events, "Syria"))
		s = SetFactionFilter(s, "FSA")
		s = Back(s)

		if s.Kind() != KindWorld {
			t.Fatalf("mode = %s, want world", s.Kind())
		}
		if s.FactionFilter != "" || s.SelectedRegion() != "" || s.SelectedCountry() != "" {
			t.Errorf("selections not cleared: %+v", s)
		}
	})

	t.Run("world is a no-op", func(t *testing.T) {
		s := Back(Initial(2002))
		if s.Kind() != KindWorld || s.Year != 2002 {
			t.Errorf("back in world changed state: %+v", s)
		}
	})
}

func TestFilterChangesKeepMode(t *testing.T) {
	s := mustState(t)(SelectCountry(Initial(0), testEvents(), "Mali"))

	s = mustState(t)(SetYear(s, 2003))
	s = mustState(t)(SetViolenceType(s, model.ViolenceStateBased))
	if s.Kind() != KindCountry {
		t.Fatalf("mode changed to %s", s.Kind())
	}

	bubbles := s.Bubbles()
	if len(bubbles) != 1 || bubbles[0].ID != "1" {
		t.Errorf("bubbles = %+v, want event 1", bubbles)
	}

	if _, err := SetYear(s, -1); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("negative year error = %v", err)
	}
	if _, err := SetViolenceType(s, 7); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown violence type error = %v", err)
	}
	if _, err := SetZoom(s, 0); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("zero zoom error = %v", err)
	}
}

func TestFactionFilterIsDistinctFromFactionMode(t *testing.T) {
	s := mustState(t)(SelectCountry(Initial(0), testEvents(), "Mali"))
	s = SetFactionFilter(s, "Government of Mali")

	if s.Kind() != KindCountry || s.SelectedFaction() != "" {
		t.Errorf("faction filter must not enter faction mode: %s %q", s.Kind(), s.SelectedFaction())
	}
	if bubbles := s.Bubbles(); len(bubbles) != 1 {
		t.Errorf("filtered bubbles = %d, want 1", len(bubbles))
	}
}

func TestSetConnectedFaction(t *testing.T) {
	events := testEvents()

	if _, err := SetConnectedFaction(Initial(0), "AQIM"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("connected faction outside faction mode: %v", err)
	}

	s := mustState(t)(SelectFaction(Initial(0), events, "MNLA"))
	s = mustState(t)(SetConnectedFaction(s, "AQIM"))
	if bubbles := s.Bubbles(); len(bubbles) != 1 || bubbles[0].ID != "3" {
		t.Errorf("bubbles = %+v", bubbles)
	}

	if _, err := SetConnectedFaction(s, "FSA"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unrelated faction error = %v", err)
	}
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	start := Initial(2002)
	_ = mustState(t)(SelectRegion(start, testEvents(), "Africa"))
	_ = mustState(t)(SetYear(start, 2010))

	if start.Kind() != KindWorld || start.Year != 2002 {
		t.Errorf("input state mutated: %+v", start)
	}
}

func TestSinglePrimaryDriver(t *testing.T) {
	events := testEvents()
	region := mustState(t)(SelectRegion(Initial(0), events, "Africa"))
	states := []State{
		Initial(0),
		region,
		mustState(t)(SelectCountry(region, events, "Mali")),
		mustState(t)(SelectFaction(region, events, "AQIM")),
	}
	country := states[2]
	faction := states[3]
	states = append(states,
		mustState(t)(SelectEvent(country, "1")),
		mustState(t)(SelectEvent(faction, "3")),
	)

	for _, s := range states {
		drivers := 0
		if _, ok := s.Mode.(Region); ok {
			drivers++
		}
		if _, ok := s.Mode.(Country); ok {
			drivers++
		}
		if _, ok := s.Mode.(Faction); ok {
			drivers++
		}
		if _, ok := s.SelectedEvent(); ok {
			drivers++
		}
		if s.Kind() != KindWorld && drivers != 1 {
			t.Errorf("%s mode has %d drivers", s.Kind(), drivers)
		}
		if s.SelectedFaction() != "" && s.Kind() != KindFaction {
			t.Errorf("%s mode exposes faction %q", s.Kind(), s.SelectedFaction())
		}
	}
}
