package peg

// Mode is an automaton's AST-construction policy, per spec.md §3/§4.10.
type Mode int

const (
	// Normal wraps a matched automaton's children in a Branch node.
	Normal Mode = iota
	// Prune lifts a single child in place of a wrapper Branch, and collapses
	// to Empty when there are no children; three or more children (or
	// exactly two) still produce a Branch.
	Prune
	// Void always produces an Empty node, discarding any matched children.
	Void
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Prune:
		return "prune"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// TransitionKind tags the variant held by a Transition.
type TransitionKind int

const (
	// TransChar matches a single character against a CharSet.
	TransChar TransitionKind = iota
	// TransWildcard matches any single character except EOF.
	TransWildcard
	// TransAutomaton recursively invokes another automaton by index.
	TransAutomaton
	// TransPreParsed consults the host pre-parsed-non-terminal callback.
	TransPreParsed
)

// Transition is the atomic matcher embedded in an Edge. Exactly the fields
// relevant to Kind are meaningful; this mirrors a tagged variant with a
// single dispatch site in Engine.matchEdge (spec.md §9 "Visitor over
// transitions").
type Transition struct {
	Kind TransitionKind

	// Set is used when Kind == TransChar.
	Set *CharSet

	// AutomatonIndex is used when Kind == TransAutomaton: the index into the
	// engine's automata vector to recursively invoke.
	AutomatonIndex int

	// Name is used when Kind == TransPreParsed: the non-terminal name passed
	// to the host callback.
	Name string
}

// Char returns a TransChar transition over the given set.
func Char(set *CharSet) Transition {
	return Transition{Kind: TransChar, Set: set}
}

// Wildcard returns a TransWildcard transition.
func Wildcard() Transition {
	return Transition{Kind: TransWildcard}
}

// CallAutomaton returns a TransAutomaton transition invoking automaton idx.
func CallAutomaton(idx int) Transition {
	return Transition{Kind: TransAutomaton, AutomatonIndex: idx}
}

// PreParsed returns a TransPreParsed transition for the named non-terminal.
func PreParsed(name string) Transition {
	return Transition{Kind: TransPreParsed, Name: name}
}

// Edge is a single matcher step from one state to another. Edges on a State
// are ordered; order defines priority (first match wins, spec.md §4.4).
type Edge struct {
	Transition Transition
	NextState  int
	// Voided suppresses the transition's produced node from the parent's
	// child list while still requiring the match to succeed.
	Voided bool
}

// State is one node in an automaton's state graph.
type State struct {
	Edges []Edge
	// IsMatch marks this state as an accepting state: reaching it with no
	// outgoing edge able to continue still counts as a successful match of
	// the empty continuation.
	IsMatch bool
}

// TypeTag identifies an automaton's non-terminal type. The host designates
// five special tag values at construction time (spec.md §6); all other
// values are ordinary non-terminal types assigned by the grammar.
type TypeTag int

// TagRoles holds the five host-designated sentinel TypeTag values that
// change how Engine interprets an automaton, independent of its structure.
type TagRoles struct {
	Empty             TypeTag
	Char              TypeTag
	PreParsedNT       TypeTag
	PositivePredicate TypeTag
	NegativePredicate TypeTag
}

// Automaton is one compiled non-terminal: an immutable type tag, an
// AST-construction Mode, and an ordered vector of States. State 0 is always
// the automaton's entry state.
type Automaton struct {
	Type   TypeTag
	Mode   Mode
	States []State
}
