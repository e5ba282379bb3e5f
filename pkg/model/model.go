package model

// ViolenceType is the UCDP type-of-violence code of an event
type ViolenceType int

const (
	ViolenceAny        ViolenceType = 0 // No violence-type restriction
	ViolenceStateBased ViolenceType = 1 // Government involved on at least one side
	ViolenceNonState   ViolenceType = 2 // Organized groups, no government
	ViolenceOneSided   ViolenceType = 3 // Organized actor against civilians
)

// String returns a human-readable name for the violence type
func (v ViolenceType) String() string {
	switch v {
	case ViolenceStateBased:
		return "state-based"
	case ViolenceNonState:
		return "non-state"
	case ViolenceOneSided:
		return "one-sided"
	default:
		return "any"
	}
}

// Event is a single violent event record. Events are immutable once loaded.
type Event struct {
	ID              string       `json:"id"`
	Year            int          `json:"year"`
	Month           int          `json:"month,omitempty"`
	Country         string       `json:"country"`
	Region          string       `json:"region"`
	Best            float64      `json:"best"`            // Best casualty estimate
	DeathsA         float64      `json:"deathsA"`         // Deaths on side A
	DeathsB         float64      `json:"deathsB"`         // Deaths on side B
	DeathsCivilians float64      `json:"deathsCivilians"` // Civilian deaths
	DeathsUnknown   float64      `json:"deathsUnknown"`   // Deaths of unknown affiliation
	ViolenceType    ViolenceType `json:"violenceType"`
	SideA           string       `json:"sideA"` // Free-text participant list
	SideB           string       `json:"sideB"` // Free-text participant list

	Latitude       float64 `json:"latitude,omitempty"`
	Longitude      float64 `json:"longitude,omitempty"`
	HasCoordinates bool    `json:"hasCoordinates"`
}

// Casualties returns the best estimate, never negative
func (e *Event) Casualties() float64 {
	if e.Best < 0 {
		return 0
	}
	return e.Best
}
