package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_CopyIsDeep(t *testing.T) {
	orig := BranchNode(0, []Node{CharNode('a', 1, 1)}, Span{Start: 0, End: 1})
	cp := orig.Copy()
	cp.Children[0].Ch = 'z'

	require.Len(t, orig.Children, 1)
	assert.Equal(t, 'a', orig.Children[0].Ch, "mutating the copy must not affect the original")
	assert.Equal(t, 'z', cp.Children[0].Ch)
}

func TestNode_CopyOfNilChildren(t *testing.T) {
	orig := CharNode('a', 1, 1)
	cp := orig.Copy()
	assert.Nil(t, cp.Children)
}

func TestNode_String(t *testing.T) {
	n := BranchNode(2, []Node{CharNode('a', 1, 1), EmptyNode(0)}, Span{Start: 0, End: 1})
	s := n.String()
	assert.Contains(t, s, "Branch(2, 0..1)")
	assert.Contains(t, s, `Char('a')`)
	assert.Contains(t, s, "Empty(0)")
}
