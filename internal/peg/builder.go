package peg

// Builder assembles a single Automaton state-by-state, the programmatic
// stand-in for the (out-of-scope) grammar-to-automata compiler. It is meant
// for hand-built grammars in tests and small demos, or as the target of a
// host's own compiler; Builder itself knows nothing about grammar syntax.
type Builder struct {
	a Automaton
}

// NewBuilder starts a Builder for an automaton of the given type and mode.
func NewBuilder(t TypeTag, mode Mode) *Builder {
	return &Builder{a: Automaton{Type: t, Mode: mode}}
}

// AddState appends a new state and returns its index. State 0 (the first
// one added) is the automaton's entry state.
func (b *Builder) AddState(isMatch bool) int {
	b.a.States = append(b.a.States, State{IsMatch: isMatch})
	return len(b.a.States) - 1
}

// AddEdge appends an edge from state `from` to state `to` over transition t.
// Edges on a state are tried in the order they were added.
func (b *Builder) AddEdge(from int, t Transition, to int, voided bool) *Builder {
	b.a.States[from].Edges = append(b.a.States[from].Edges, Edge{
		Transition: t,
		NextState:  to,
		Voided:     voided,
	})
	return b
}

// Build returns the assembled Automaton.
func (b *Builder) Build() Automaton {
	return b.a
}

// Vector is a convenience for assembling the []Automaton vector the Engine
// expects, in grammar-definition order (so that an automaton's own index
// can be referenced by CallAutomaton before later rules are appended).
type Vector struct {
	automata []Automaton
	index    map[string]int
}

// NewVector starts an empty automata vector.
func NewVector() *Vector {
	return &Vector{index: make(map[string]int)}
}

// Add appends an automaton under the given rule name and returns its index.
func (v *Vector) Add(name string, a Automaton) int {
	idx := len(v.automata)
	v.automata = append(v.automata, a)
	v.index[name] = idx
	return idx
}

// IndexOf returns the index a rule name was registered under, or -1 if the
// name is unknown. Grammars with forward references should reserve an index
// with Add before filling in edges that call it.
func (v *Vector) IndexOf(name string) int {
	idx, ok := v.index[name]
	if !ok {
		return -1
	}
	return idx
}

// Automata returns the assembled vector, suitable for use with New.
func (v *Vector) Automata() []Automaton {
	return v.automata
}

// Names returns a TypeTag->name map built from automata whose Type equals
// their own vector index, a common convention for grammars that use the
// automaton's index as its TypeTag. Grammars with a different tag scheme
// should build their own names map instead of calling this.
func (v *Vector) Names() map[TypeTag]string {
	names := make(map[TypeTag]string, len(v.automata))
	for name, idx := range v.index {
		names[TypeTag(idx)] = name
	}
	return names
}
