package pegfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/pegrun/internal/peg"
)

func buildSampleAutomata() []peg.Automaton {
	b := peg.NewBuilder(0, peg.Normal)
	s0 := b.AddState(false)
	s1 := b.AddState(false)
	s2 := b.AddState(true)
	b.AddEdge(s0, peg.Char(peg.NewCharSet(peg.CharRange{Lo: 'a', Hi: 'z'}).CaseFold()), s1, false)
	b.AddEdge(s1, peg.CallAutomaton(1), s2, true)

	b2 := peg.NewBuilder(1, peg.Void)
	b2.AddState(true)

	return []peg.Automaton{b.Build(), b2.Build()}
}

func TestEncodeDecodeArtifact_RoundTrip(t *testing.T) {
	automata := buildSampleAutomata()

	data, err := EncodeArtifact(automata)
	require.NoError(t, err)

	decoded, err := DecodeArtifact(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, automata[0].Type, decoded[0].Type)
	assert.Equal(t, automata[0].Mode, decoded[0].Mode)
	require.Len(t, decoded[0].States, 3)
	require.Len(t, decoded[0].States[0].Edges, 1)

	edge := decoded[0].States[0].Edges[0]
	assert.Equal(t, peg.TransChar, edge.Transition.Kind)
	assert.True(t, edge.Transition.Set.Contains('Q'), "case-fold flag must survive the round trip")
	assert.False(t, edge.Transition.Set.Contains('1'))

	voidedEdge := decoded[0].States[1].Edges[0]
	assert.True(t, voidedEdge.Voided)
	assert.Equal(t, peg.TransAutomaton, voidedEdge.Transition.Kind)
	assert.Equal(t, 1, voidedEdge.Transition.AutomatonIndex)
}

func TestDecodeArtifact_RejectsBadMagic(t *testing.T) {
	_, err := DecodeArtifact([]byte("not an artifact"))
	assert.Error(t, err)
}
