package window

import (
	"testing"

	"github.com/ritzau/conflict-atlas/pkg/model"
)

func sampleEvents() []model.Event {
	return []model.Event{
		{ID: "1", Year: 1999, Region: "Africa", ViolenceType: model.ViolenceStateBased},
		{ID: "2", Year: 2001, Region: "Asia", ViolenceType: model.ViolenceNonState},
		{ID: "3", Year: 2001, Region: "Africa", ViolenceType: model.ViolenceOneSided},
		{ID: "4", Year: 2004, Region: "Europe", ViolenceType: model.ViolenceStateBased},
		{ID: "5", Year: 2010, Region: "Africa", ViolenceType: model.ViolenceStateBased},
	}
}

func ids(events []model.Event) map[string]bool {
	out := make(map[string]bool, len(events))
	for _, e := range events {
		out[e.ID] = true
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	events := sampleEvents()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"unbounded", Filter{}, []string{"1", "2", "3", "4", "5"}},
		{"year", Filter{Year: 2001}, []string{"1", "2", "3"}},
		{"violence type", Filter{ViolenceType: model.ViolenceStateBased}, []string{"1", "4", "5"}},
		{"region", Filter{Region: "Africa"}, []string{"1", "3", "5"}},
		{"combined", Filter{Year: 2004, Region: "Africa", ViolenceType: model.ViolenceStateBased}, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(events, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("event %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestApplyIsMonotonicInYear(t *testing.T) {
	events := sampleEvents()

	for y1 := 1998; y1 <= 2011; y1++ {
		for y2 := y1 + 1; y2 <= 2011; y2++ {
			small := ids(Apply(events, Filter{Year: y1, Region: "Africa"}))
			large := ids(Apply(events, Filter{Year: y2, Region: "Africa"}))
			for id := range small {
				if !large[id] {
					t.Errorf("event %s present at %d but missing at %d", id, y1, y2)
				}
			}
		}
	}
}

func TestApplyIsIdempotentAndPure(t *testing.T) {
	events := sampleEvents()
	f := Filter{Year: 2004}

	once := Apply(events, f)
	twice := Apply(once, f)
	if len(once) != len(twice) {
		t.Errorf("filter is not idempotent: %d vs %d", len(once), len(twice))
	}

	if len(events) != 5 || events[4].ID != "5" {
		t.Error("input slice was modified")
	}
}

func TestYearRange(t *testing.T) {
	lo, hi, ok := YearRange(sampleEvents())
	if !ok || lo != 1999 || hi != 2010 {
		t.Errorf("YearRange = (%d, %d, %v), want (1999, 2010, true)", lo, hi, ok)
	}

	if _, _, ok := YearRange(nil); ok {
		t.Error("YearRange(nil) should report no range")
	}
}
