package peg

import (
	"fmt"
	"io"
)

// failure is the engine-internal sentinel for "no match", distinct from a
// nil/empty child list. It is never exposed outside this package; callers
// observe failure only via ParseResult.Err.
var failure = &struct{}{}

// childList is a matchState/matchEdges/matchEdge result: either failure, or
// an ordered list of child nodes collected so far (possibly empty).
type childList struct {
	ok       bool
	children []Node
}

func failedMatch() childList { return childList{ok: false} }
func matched(children []Node) childList {
	return childList{ok: true, children: children}
}

// PreParsedFunc is the host callback consulted for TransPreParsed
// transitions. It must not mutate the input's position as a side effect
// visible after it returns. A return value n >= 0 means a match of n
// characters starting at the input's current position; any negative value
// means no match.
type PreParsedFunc func(name string, in Input) int

// Config holds the tunable knobs of spec.md §6 plus this module's own safety
// knob (SPEC_FULL.md §5).
type Config struct {
	// EOFCheck requires the whole input to be consumed for a parse to
	// succeed. Defaults to true (the zero value is false, so use
	// DefaultConfig or set this explicitly).
	EOFCheck bool

	// MaxDepth bounds matchAutomaton call-stack depth. Zero means
	// unlimited. Exceeding it produces a ParseError instead of a native
	// stack overflow.
	MaxDepth int

	// Trace, if non-nil, receives one line per matchAutomaton/matchEdge
	// attempt. Left nil, tracing costs nothing.
	Trace io.Writer
}

// DefaultConfig returns the spec's documented defaults: EOFCheck enabled, no
// depth limit, no tracing.
func DefaultConfig() Config {
	return Config{EOFCheck: true}
}

// Engine is the recursive matcher of spec.md §4: it walks an automata
// vector's states and edges, applies predicate/mode semantics, maintains the
// packrat cache and the deepest-error tracker, and constructs the AST.
//
// An Engine instance owns its own Input, its own cache, and its own error
// tracker; nothing is shared across parses (spec.md §5). Create one Engine
// per parse via New.
type Engine struct {
	automata []Automaton
	roles    TagRoles
	names    map[TypeTag]string
	cfg      Config
	callback PreParsedFunc

	in    Input
	cache *cache

	line    int
	column  int
	lastCR  bool

	errPos  int
	errLine int
	errCol  int
	errNT   string

	faStack []int
}

// New creates an Engine ready to parse in with the given compiled automata
// and type-tag roles. names maps each TypeTag to the human-readable
// non-terminal name reported in a ParseError; a tag missing from names is
// reported numerically. callback may be nil if the grammar uses no
// pre-parsed non-terminals.
func New(automata []Automaton, roles TagRoles, names map[TypeTag]string, cfg Config, in Input, callback PreParsedFunc) *Engine {
	return &Engine{
		automata: automata,
		roles:    roles,
		names:    names,
		cfg:      cfg,
		callback: callback,
		in:       in,
		cache:    newCache(),
		line:     1,
		column:   0,
	}
}

// Parse runs the engine starting at automaton startIndex and returns the
// result, per spec.md §4.1.
func (e *Engine) Parse(startIndex int) ParseResult {
	res := e.matchAutomaton(startIndex)
	if !res.ok {
		return ParseResult{Err: e.deepestError()}
	}
	if e.cfg.EOFCheck && e.in.Peek() != EOF {
		return ParseResult{Err: e.deepestError()}
	}
	return ParseResult{AST: res.children[0]}
}

func (e *Engine) deepestError() *ParseError {
	return &ParseError{
		Position:        e.errPos,
		Line:            e.errLine,
		Column:          e.errCol,
		NonTerminalName: e.errNT,
	}
}

// matchAutomaton implements spec.md §4.2.
func (e *Engine) matchAutomaton(index int) childList {
	startPos := e.in.Position()
	startExt := e.in.ExtendedData()
	startLine, startCol, startCR := e.line, e.column, e.lastCR

	if entry, ok := e.cache.get(index, startPos); ok {
		e.in.SetPosition(entry.endPos)
		e.in.SetExtendedData(entry.endExt)
		e.line, e.column, e.lastCR = entry.endLine, entry.endCol, entry.endLastCR
		if entry.failed {
			return failedMatch()
		}
		return matched([]Node{entry.node.Copy()})
	}

	if e.cfg.MaxDepth > 0 && len(e.faStack) >= e.cfg.MaxDepth {
		e.updateError(startPos)
		return failedMatch()
	}

	automaton := e.automata[index]
	e.trace("enter", index, startPos)
	e.faStack = append(e.faStack, index)
	res := e.matchState(index, 0)
	e.faStack = e.faStack[:len(e.faStack)-1]

	var outcome childList
	var cacheFailed bool
	var node Node

	switch automaton.Type {
	case e.roles.PositivePredicate:
		// A predicate never consumes input regardless of outcome, so the
		// cached post-match state is always the entry state (spec.md §3
		// invariant 4).
		e.restoreTo(startPos, startExt, startLine, startCol, startCR)
		if res.ok {
			node = EmptyNode(e.roles.Empty)
			outcome = matched([]Node{node})
		} else {
			cacheFailed = true
			outcome = failedMatch()
		}
		e.cache.put(index, startPos, cacheEntry{
			failed: cacheFailed, node: node,
			endPos: startPos, endExt: startExt, endLine: startLine, endCol: startCol, endLastCR: startCR,
		})
		return outcome

	case e.roles.NegativePredicate:
		e.restoreTo(startPos, startExt, startLine, startCol, startCR)
		if !res.ok {
			node = EmptyNode(e.roles.Empty)
			outcome = matched([]Node{node})
		} else {
			e.updateError(startPos)
			cacheFailed = true
			outcome = failedMatch()
		}
		e.cache.put(index, startPos, cacheEntry{
			failed: cacheFailed, node: node,
			endPos: startPos, endExt: startExt, endLine: startLine, endCol: startCol, endLastCR: startCR,
		})
		return outcome

	default:
		if !res.ok {
			e.updateError(startPos)
			e.cache.put(index, startPos, cacheEntry{
				failed: true,
				endPos: e.in.Position(), endExt: e.in.ExtendedData(),
				endLine: e.line, endCol: e.column, endLastCR: e.lastCR,
			})
			return failedMatch()
		}

		switch automaton.Mode {
		case Void:
			node = EmptyNode(automaton.Type)
		case Prune:
			switch len(res.children) {
			case 0:
				node = EmptyNode(automaton.Type)
			case 1:
				node = res.children[0]
			default:
				node = BranchNode(automaton.Type, res.children, Span{Start: startPos, End: e.in.Position()})
			}
		default: // Normal
			node = BranchNode(automaton.Type, res.children, Span{Start: startPos, End: e.in.Position()})
		}

		e.cache.put(index, startPos, cacheEntry{
			node: node,
			endPos: e.in.Position(), endExt: e.in.ExtendedData(),
			endLine: e.line, endCol: e.column, endLastCR: e.lastCR,
		})
		return matched([]Node{node})
	}
}

func (e *Engine) restoreTo(pos int, ext any, line, col int, lastCR bool) {
	e.in.SetPosition(pos)
	e.in.SetExtendedData(ext)
	e.line, e.column, e.lastCR = line, col, lastCR
}

// matchState implements spec.md §4.3.
func (e *Engine) matchState(automatonIndex, stateIndex int) childList {
	state := e.automata[automatonIndex].States[stateIndex]
	res := e.matchEdges(automatonIndex, state.Edges, 0)
	if res.ok {
		return res
	}
	if state.IsMatch {
		return matched(nil)
	}
	return failedMatch()
}

// matchEdges implements spec.md §4.4: ordered first-match.
func (e *Engine) matchEdges(automatonIndex int, edges []Edge, i int) childList {
	if i >= len(edges) {
		return failedMatch()
	}
	res := e.matchEdge(automatonIndex, edges[i])
	if res.ok {
		return res
	}
	return e.matchEdges(automatonIndex, edges, i+1)
}

// matchEdge implements spec.md §4.5.
func (e *Engine) matchEdge(automatonIndex int, edge Edge) childList {
	startPos := e.in.Position()
	startExt := e.in.ExtendedData()
	startLine, startCol, startCR := e.line, e.column, e.lastCR

	head, headOK := e.matchTransition(edge.Transition)
	if !headOK {
		return failedMatch()
	}

	tail := e.matchState(automatonIndex, edge.NextState)
	if !tail.ok {
		e.restoreTo(startPos, startExt, startLine, startCol, startCR)
		return failedMatch()
	}

	if edge.Voided || head.Kind == KindEmpty {
		return tail
	}

	// Prepend the head so that the final list is left-to-right input order:
	// each recursion level contributes its head to the front of the tail it
	// received (spec.md §4.5 rationale).
	children := make([]Node, 0, len(tail.children)+1)
	children = append(children, head)
	children = append(children, tail.children...)
	return matched(children)
}

// matchTransition implements spec.md §4.6, the single dispatch site for the
// Transition tagged variant.
func (e *Engine) matchTransition(t Transition) (Node, bool) {
	switch t.Kind {
	case TransChar:
		c := e.in.Peek()
		if c == EOF {
			e.updateError(e.in.Position())
			return Node{}, false
		}
		if !t.Set.Contains(c) {
			e.updateError(e.in.Position())
			return Node{}, false
		}
		e.in.Consume()
		e.updateLineCol(c)
		return CharNode(c, e.roles.Char, e.in.Position()), true

	case TransWildcard:
		c := e.in.Peek()
		if c == EOF {
			e.updateError(e.in.Position())
			return Node{}, false
		}
		e.in.Consume()
		e.updateLineCol(c)
		return CharNode(c, e.roles.Char, e.in.Position()), true

	case TransAutomaton:
		res := e.matchAutomaton(t.AutomatonIndex)
		if !res.ok {
			return Node{}, false
		}
		return res.children[0], true

	case TransPreParsed:
		startPos := e.in.Position()
		startExt := e.in.ExtendedData()
		if e.callback == nil {
			e.updateError(startPos)
			return Node{}, false
		}
		skip := e.callback(t.Name, e.in)
		if skip < 0 {
			e.updateError(startPos)
			return Node{}, false
		}
		e.in.SetPosition(startPos + skip)
		return PreParsedNode(e.roles.PreParsedNT, t.Name, Span{Start: startPos, End: startPos + skip}, startExt), true

	default:
		panic(fmt.Sprintf("peg: unknown transition kind %d", t.Kind))
	}
}

// updateLineCol implements spec.md §4.7.
func (e *Engine) updateLineCol(ch rune) {
	switch ch {
	case '\r':
		e.line++
		e.column = 0
		e.lastCR = true
	case '\n':
		if !e.lastCR {
			e.line++
			e.column = 0
		}
		e.lastCR = false
	default:
		e.column++
		e.lastCR = false
	}
}

// updateError implements spec.md §4.8.
func (e *Engine) updateError(pos int) {
	if pos <= e.errPos {
		return
	}
	e.errPos = pos
	e.errLine = e.line
	e.errCol = e.column
	e.errNT = ""
	if len(e.faStack) > 0 {
		e.errNT = e.typeName(e.automata[e.faStack[len(e.faStack)-1]].Type)
	}
}

func (e *Engine) typeName(t TypeTag) string {
	if name, ok := e.names[t]; ok {
		return name
	}
	return fmt.Sprintf("type%d", t)
}

func (e *Engine) trace(action string, automatonIndex, pos int) {
	if e.cfg.Trace == nil {
		return
	}
	fmt.Fprintf(e.cfg.Trace, "TRACE automaton=%d pos=%d %s\n", automatonIndex, pos, action)
}
