package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_AssemblesAutomaton(t *testing.T) {
	b := NewBuilder(3, Prune)
	s0 := b.AddState(false)
	s1 := b.AddState(true)
	b.AddEdge(s0, Char(Singleton('a')), s1, false)

	a := b.Build()
	assert.Equal(t, TypeTag(3), a.Type)
	assert.Equal(t, Prune, a.Mode)
	require.Len(t, a.States, 2)
	require.Len(t, a.States[0].Edges, 1)
	assert.Equal(t, 1, a.States[0].Edges[0].NextState)
	assert.True(t, a.States[1].IsMatch)
}

func TestVector_AddAndIndexOf(t *testing.T) {
	v := NewVector()
	idx := v.Add("S", Automaton{Type: 0})
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, v.IndexOf("S"))
	assert.Equal(t, -1, v.IndexOf("unknown"))
}

func TestVector_Names(t *testing.T) {
	v := NewVector()
	v.Add("S", Automaton{Type: 0})
	v.Add("T", Automaton{Type: 1})
	names := v.Names()
	assert.Equal(t, "S", names[TypeTag(0)])
	assert.Equal(t, "T", names[TypeTag(1)])
}
