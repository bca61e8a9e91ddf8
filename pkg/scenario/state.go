// Package scenario sequences page-object calls into test cases. A Scenario is
// an ordered list of Steps; each Step advances the case through the
// homepage state machine:
//
//	Unloaded → Loaded → ConsentHandled → SearchEntered → ResultSelected → Navigated
//
// There is no branching or recovery: the first failing step ends the case.
package scenario

// State is the position of a test case in the homepage flow.
type State int

const (
	// Unloaded: no page has been loaded yet.
	Unloaded State = iota
	// Loaded: the root path finished loading.
	Loaded
	// ConsentHandled: the cookie-consent dialog was dealt with.
	ConsentHandled
	// SearchEntered: a term was typed into the hero search.
	SearchEntered
	// ResultSelected: a suggested destination was clicked.
	ResultSelected
	// Navigated: the browser arrived at the destination page.
	Navigated
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case Unloaded:
		return "Unloaded"
	case Loaded:
		return "Loaded"
	case ConsentHandled:
		return "ConsentHandled"
	case SearchEntered:
		return "SearchEntered"
	case ResultSelected:
		return "ResultSelected"
	case Navigated:
		return "Navigated"
	default:
		return "Unknown"
	}
}
