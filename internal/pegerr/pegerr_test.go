package pegerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_ErrorString(t *testing.T) {
	plain := New("bad input")
	assert.Equal(t, "bad input", plain.Error())

	wrapped := New("load failed", ErrGrammarFile)
	assert.Equal(t, "load failed: "+ErrGrammarFile.Error(), wrapped.Error())
}

func TestError_ErrorsIs(t *testing.T) {
	err := New("could not load grammar", ErrGrammarFile)
	assert.True(t, errors.Is(err, ErrGrammarFile))
	assert.False(t, errors.Is(err, ErrDB))
}

func TestWrapDB_AddsErrDBCause(t *testing.T) {
	underlying := errors.New("connection refused")
	err := WrapDB("could not open store", underlying)
	assert.True(t, errors.Is(err, ErrDB))
	assert.True(t, errors.Is(err, underlying))
}

func TestWrapParse_AddsNoMatchCause(t *testing.T) {
	underlying := errors.New("expected 'a' at position 3")
	err := WrapParse(underlying)
	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.True(t, errors.Is(err, underlying))
}

func TestError_UnwrapNilWhenNoCauses(t *testing.T) {
	err := New("no cause here")
	assert.Nil(t, err.Unwrap())
}
