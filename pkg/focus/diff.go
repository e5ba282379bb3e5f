package focus

// Transition is the difference between two visible sets. Exited nodes are
// hidden by the renderer, not removed, so the layout keeps their positions.
type Transition struct {
	Entered []string `json:"entered"` // Node IDs that became visible
	Exited  []string `json:"exited"`  // Node IDs that became hidden
}

// Empty reports whether nothing changed
func (t Transition) Empty() bool {
	return len(t.Entered) == 0 && len(t.Exited) == 0
}

// Diff computes the transition from prev to next
func Diff(prev, next Set) Transition {
	diff := Transition{
		Entered: make([]string, 0),
		Exited:  make([]string, 0),
	}

	// Find entered nodes
	for _, id := range next.Sorted() {
		if !prev.Has(id) {
			diff.Entered = append(diff.Entered, id)
		}
	}

	// Find exited nodes
	for _, id := range prev.Sorted() {
		if !next.Has(id) {
			diff.Exited = append(diff.Exited, id)
		}
	}

	return diff
}
