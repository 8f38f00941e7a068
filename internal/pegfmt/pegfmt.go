// Package pegfmt renders peg.Node trees and peg.ParseError values for
// terminal/host display: an indented AST listing richer than Node.String,
// and a caret-style pointer at the deepest failure position.
package pegfmt

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/corvidlang/pegrun/internal/peg"
)

// TreeOptions controls Tree's output.
type TreeOptions struct {
	// Names maps a TypeTag to the non-terminal name to print in place of its
	// numeric value. A tag missing from Names is printed numerically.
	Names map[peg.TypeTag]string
}

// Tree renders an indented listing of node, resolving type tags to names via
// opts.Names where available.
func Tree(node peg.Node, opts TreeOptions) string {
	var sb strings.Builder
	writeNode(&sb, node, "", opts)
	return sb.String()
}

func writeNode(sb *strings.Builder, n peg.Node, prefix string, opts TreeOptions) {
	switch n.Kind {
	case peg.KindEmpty:
		fmt.Fprintf(sb, "%sEmpty <%s>", prefix, typeName(n.Type, opts))
	case peg.KindChar:
		fmt.Fprintf(sb, "%sChar %q", prefix, n.Ch)
	case peg.KindPreParsed:
		fmt.Fprintf(sb, "%sPreParsed %s [%d..%d)", prefix, n.Name, n.Span.Start, n.Span.End)
	case peg.KindBranch:
		fmt.Fprintf(sb, "%s<%s> [%d..%d)", prefix, typeName(n.Type, opts), n.Span.Start, n.Span.End)
		for i := range n.Children {
			sb.WriteByte('\n')
			writeNode(sb, n.Children[i], prefix+"  ", opts)
		}
	}
}

func typeName(t peg.TypeTag, opts TreeOptions) string {
	if opts.Names != nil {
		if name, ok := opts.Names[t]; ok {
			return name
		}
	}
	return fmt.Sprintf("type%d", t)
}

// CaretError renders a parse error as a source line with a caret under the
// failure column, the teacher-style two-line form used for compile
// diagnostics throughout the pack.
func CaretError(source string, err *peg.ParseError) string {
	if err == nil {
		return ""
	}

	lines := strings.Split(source, "\n")
	lineIdx := err.Line - 1
	var srcLine string
	if lineIdx >= 0 && lineIdx < len(lines) {
		srcLine = lines[lineIdx]
	}

	caretLine := strings.Repeat(" ", err.Column) + "^"

	header := fmt.Sprintf("%s at line %d, column %d", err.Error(), err.Line, err.Column)
	return rosed.Edit(header).Wrap(100).String() + "\n" + srcLine + "\n" + caretLine
}

// Summary renders a one-line table of an automata vector's type tags and
// state counts, for `pegi --dump-grammar`-style introspection.
func Summary(automata []peg.Automaton, names map[peg.TypeTag]string) string {
	data := [][]string{{"index", "name", "mode", "states"}}
	for i, a := range automata {
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			typeName(a.Type, TreeOptions{Names: names}),
			a.Mode.String(),
			fmt.Sprintf("%d", len(a.States)),
		})
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 20, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
