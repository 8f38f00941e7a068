package peg

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestCharSet_Singleton(t *testing.T) {
	cs := Singleton('a')
	assert.True(t, cs.Contains('a'))
	assert.False(t, cs.Contains('b'))
}

func TestCharSet_Ranges(t *testing.T) {
	cs := NewCharSet(CharRange{Lo: '0', Hi: '9'}, CharRange{Lo: 'a', Hi: 'f'})
	assert.True(t, cs.Contains('5'))
	assert.True(t, cs.Contains('c'))
	assert.False(t, cs.Contains('g'))
	assert.False(t, cs.Contains('Z'))
}

func TestCharSet_AddRuneAndAddRange(t *testing.T) {
	cs := NewCharSet()
	cs.AddRune('x').AddRange('0', '2')
	assert.True(t, cs.Contains('x'))
	assert.True(t, cs.Contains('1'))
	assert.False(t, cs.Contains('y'))
}

func TestCharSet_CaseFold(t *testing.T) {
	cs := Singleton('s').CaseFold()
	assert.True(t, cs.Contains('s'))
	assert.True(t, cs.Contains('S'))
}

func TestCharSet_AddCategory(t *testing.T) {
	cs := NewCharSet()
	cs.AddCategory(unicode.Nd)
	assert.True(t, cs.Contains('7'))
	assert.False(t, cs.Contains('x'))
}

func TestCharSet_OverlappingRangesAreMerged(t *testing.T) {
	cs := NewCharSet(CharRange{Lo: 0, Hi: 1000}, CharRange{Lo: 2000, Hi: 3000}, CharRange{Lo: 500, Hi: 600})
	assert.True(t, cs.Contains(700))
	assert.True(t, cs.Contains(2500))
	assert.False(t, cs.Contains(1500))
}

func TestCharSet_AdjacentRangesAreMerged(t *testing.T) {
	cs := NewCharSet(CharRange{Lo: 'a', Hi: 'm'}, CharRange{Lo: 'n', Hi: 'z'})
	assert.Len(t, cs.Ranges(), 1)
	assert.True(t, cs.Contains('n'))
}

func TestCharSet_NilIsEmpty(t *testing.T) {
	var cs *CharSet
	assert.False(t, cs.Contains('a'))
}

func TestCharSet_RangeTable(t *testing.T) {
	cs := NewCharSet(CharRange{Lo: 'a', Hi: 'z'})
	rt := cs.RangeTable()
	assert.True(t, unicode.Is(rt, 'm'))
	assert.False(t, unicode.Is(rt, 'M'))
}
