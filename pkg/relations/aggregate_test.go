package relations

import (
	"testing"

	"github.com/ritzau/conflict-atlas/pkg/model"
)

func scenarioEvents() []model.Event {
	return []model.Event{
		{ID: "1", Year: 2001, SideA: "Alpha", SideB: "Beta", Best: 10},
		{ID: "2", Year: 2002, SideA: "Alpha, Gamma", SideB: "Beta", Best: 20},
	}
}

func TestAggregateScenario(t *testing.T) {
	tally := Aggregate(scenarioEvents())

	if tally.Events != 2 {
		t.Errorf("Events = %d, want 2", tally.Events)
	}

	wantFactions := map[string]struct {
		participation int
		casualties    float64
	}{
		"Alpha": {2, 30},
		"Beta":  {2, 30},
		"Gamma": {1, 20},
	}
	if len(tally.Factions) != len(wantFactions) {
		t.Fatalf("got %d factions, want %d", len(tally.Factions), len(wantFactions))
	}
	for name, want := range wantFactions {
		got, ok := tally.Factions[name]
		if !ok {
			t.Errorf("faction %s missing", name)
			continue
		}
		if got.Participation != want.participation || got.Casualties != want.casualties {
			t.Errorf("%s = (%d, %g), want (%d, %g)", name, got.Participation, got.Casualties, want.participation, want.casualties)
		}
	}

	wantPairs := map[model.PairKey]struct {
		allied, opposed int
		class           model.Classification
	}{
		model.NewPairKey("Alpha", "Gamma"): {1, 0, model.Ally},
		model.NewPairKey("Alpha", "Beta"):  {0, 2, model.Enemy},
		model.NewPairKey("Gamma", "Beta"):  {0, 1, model.Enemy},
	}
	if len(tally.Pairs) != len(wantPairs) {
		t.Fatalf("got %d pairs, want %d", len(tally.Pairs), len(wantPairs))
	}
	for key, want := range wantPairs {
		got, ok := tally.Pairs[key]
		if !ok {
			t.Errorf("pair %s missing", key)
			continue
		}
		if got.Allied != want.allied || got.Opposed != want.opposed || got.Classification() != want.class {
			t.Errorf("%s = (%d, %d, %s), want (%d, %d, %s)", key,
				got.Allied, got.Opposed, got.Classification(), want.allied, want.opposed, want.class)
		}
	}
}

func TestAggregatePairCasualties(t *testing.T) {
	tally := Aggregate(scenarioEvents())
	if got := tally.Pairs[model.NewPairKey("Alpha", "Beta")].Casualties; got != 30 {
		t.Errorf("Alpha-Beta casualties = %g, want 30", got)
	}
	if got := tally.Pairs[model.NewPairKey("Alpha", "Gamma")].Casualties; got != 20 {
		t.Errorf("Alpha-Gamma casualties = %g, want 20", got)
	}
}

func TestAggregateNoDoubleCountWithinEvent(t *testing.T) {
	events := []model.Event{
		{SideA: "Alpha, Alpha", SideB: "Alpha, Beta", Best: 5},
	}
	tally := Aggregate(events)

	if got := tally.Factions["Alpha"].Participation; got != 1 {
		t.Errorf("Alpha participation = %d, want 1", got)
	}
	if got := tally.Factions["Alpha"].Casualties; got != 5 {
		t.Errorf("Alpha casualties = %g, want 5", got)
	}
	for key := range tally.Pairs {
		a, b := key.Names()
		if a == b {
			t.Errorf("self pair %s recorded", key)
		}
	}
}

func TestAggregateExcludesCivilians(t *testing.T) {
	events := []model.Event{
		{SideA: "Alpha", SideB: "Civilians", Best: 3},
	}
	tally := Aggregate(events)

	if _, ok := tally.Factions["Civilians"]; ok {
		t.Error("Civilians should not be tallied")
	}
	if len(tally.Pairs) != 0 {
		t.Errorf("expected no pairs, got %d", len(tally.Pairs))
	}
}

func TestAggregateMissingFields(t *testing.T) {
	events := []model.Event{
		{SideA: "", SideB: "", Best: 0},
		{SideA: "Alpha", SideB: "", Best: -4},
	}
	tally := Aggregate(events)

	if got := tally.Factions["Alpha"].Casualties; got != 0 {
		t.Errorf("negative casualties should count as zero, got %g", got)
	}
}

func TestAggregateRecordsFirstLocation(t *testing.T) {
	events := []model.Event{
		{SideA: "Alpha", Country: "Mali", Region: "Africa"},
		{SideA: "Alpha", Country: "Niger", Region: "Africa"},
	}
	tally := Aggregate(events)
	if got := tally.Factions["Alpha"].Country; got != "Mali" {
		t.Errorf("Country = %s, want Mali", got)
	}
}
