package peg

import (
	"fmt"
	"strings"
)

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	// KindEmpty is a zero-width node: mode-Void/Prune-empty automata,
	// predicate successes, and failed negative predicates all produce one.
	KindEmpty NodeKind = iota
	// KindChar is a single matched character (from a Char or Wildcard
	// transition).
	KindChar
	// KindBranch is a non-terminal with children, produced by mode Normal
	// and by mode Prune when it has two or more children.
	KindBranch
	// KindPreParsed is an opaque host-recognized span.
	KindPreParsed
)

// Span is a half-open [Start, End) range of input positions.
type Span struct {
	Start, End int
}

// Node is an AST node produced by the engine. Exactly the fields relevant to
// Kind are meaningful, mirroring spec.md §3's tagged AST variant.
type Node struct {
	Kind NodeKind
	Type TypeTag

	// Ch is used when Kind == KindChar.
	Ch rune
	// EndPos is used when Kind == KindChar: the cursor position immediately
	// after the matched character.
	EndPos int

	// Children is used when Kind == KindBranch.
	Children []Node
	// Span is used when Kind == KindBranch or Kind == KindPreParsed.
	Span Span

	// Name is used when Kind == KindPreParsed: the non-terminal name that
	// was recognized.
	Name string
	// Extended is used when Kind == KindPreParsed: the extended data
	// observed at the span's start position, per spec.md §9.
	Extended any
}

// EmptyNode returns a KindEmpty node of the given type.
func EmptyNode(t TypeTag) Node {
	return Node{Kind: KindEmpty, Type: t}
}

// CharNode returns a KindChar leaf.
func CharNode(ch rune, t TypeTag, endPos int) Node {
	return Node{Kind: KindChar, Type: t, Ch: ch, EndPos: endPos}
}

// BranchNode returns a KindBranch node wrapping children over span.
func BranchNode(t TypeTag, children []Node, span Span) Node {
	return Node{Kind: KindBranch, Type: t, Children: children, Span: span}
}

// PreParsedNode returns a KindPreParsed leaf.
func PreParsedNode(t TypeTag, name string, span Span, extended any) Node {
	return Node{Kind: KindPreParsed, Type: t, Name: name, Span: span, Extended: extended}
}

// Copy returns a deep copy of the node, so that a cache hit can hand out a
// result without the caller's later mutation corrupting the memo table (see
// the cache-granularity rationale in spec.md §9).
func (n Node) Copy() Node {
	cp := n
	if n.Children != nil {
		cp.Children = make([]Node, len(n.Children))
		for i := range n.Children {
			cp.Children[i] = n.Children[i].Copy()
		}
	}
	return cp
}

// String renders an indented tree listing of the node, used by tests and as
// the fallback Stringer; internal/pegfmt provides a richer rosed-based
// renderer for host tooling.
func (n Node) String() string {
	var sb strings.Builder
	n.write(&sb, "")
	return sb.String()
}

func (n Node) write(sb *strings.Builder, prefix string) {
	switch n.Kind {
	case KindEmpty:
		fmt.Fprintf(sb, "%sEmpty(%d)", prefix, n.Type)
	case KindChar:
		fmt.Fprintf(sb, "%sChar(%q)", prefix, n.Ch)
	case KindPreParsed:
		fmt.Fprintf(sb, "%sPreParsed(%s, %d..%d)", prefix, n.Name, n.Span.Start, n.Span.End)
	case KindBranch:
		fmt.Fprintf(sb, "%sBranch(%d, %d..%d)", prefix, n.Type, n.Span.Start, n.Span.End)
		for i := range n.Children {
			sb.WriteByte('\n')
			n.Children[i].write(sb, prefix+"  ")
		}
	}
}
