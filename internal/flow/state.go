package flow

// State is a step of the note creation flow.
type State int

const (
	Idle State = iota
	Searching
	NotFound
	Disambiguating
	Confirming
	Creating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case NotFound:
		return "not found"
	case Disambiguating:
		return "disambiguating"
	case Confirming:
		return "confirming"
	case Creating:
		return "creating"
	default:
		return "unknown"
	}
}

// allowed lists the legal transitions. Every state may fall back to Idle.
var allowed = map[State][]State{
	Idle:           {Searching},
	Searching:      {NotFound, Disambiguating, Confirming},
	NotFound:       {},
	Disambiguating: {NotFound, Confirming},
	Confirming:     {NotFound, Creating},
	Creating:       {},
}

func canTransition(from, to State) bool {
	if to == Idle {
		return true
	}
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}
