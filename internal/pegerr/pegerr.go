// Package pegerr holds the error objects shared across pegrun's host tooling
// (cmd/pegi, cmd/pegserver, server/...). It contains the Error type, which can
// be created with one or more 'cause' errors; calling errors.Is() on it with
// any of those causes returns true. It also holds the package's sentinel
// error constants.
package pegerr

import "errors"

var (
	ErrNoMatch        = errors.New("input does not match the grammar")
	ErrTrailingInput  = errors.New("input remained after a successful parse")
	ErrHostCallback   = errors.New("pre-parsed non-terminal callback failed or was not supplied")
	ErrGrammarFile    = errors.New("malformed or unreadable grammar manifest")
	ErrNotFound       = errors.New("the requested entity could not be found")
	ErrAlreadyExists  = errors.New("resource with same identifying information already exists")
	ErrDB             = errors.New("an error occurred with the DB")
	ErrBadArgument    = errors.New("one or more of the arguments is invalid")
	ErrBadCredentials = errors.New("the supplied username/password combination is incorrect")
	ErrPermissions    = errors.New("you don't have permission to do that")
)

// Error is a typed error returned by pegrun's host packages. It holds both a
// message and zero or more causes; it is compatible with errors.Is, which
// will report true against any of its causes.
//
// If Error has at least one cause, Error() returns its message with the
// first cause's Error() appended. Error should not be used directly; call
// New or Wrap.
type Error struct {
	msg   string
	cause []error
}

// Error returns the defined message, concatenated with the first cause's
// message if both are present. If only a cause is present, its message is
// returned unmodified.
func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}
	return e.msg
}

// Unwrap returns the causes of Error, or nil if none were defined.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is reports whether target equals e itself or one of its causes.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		if e.msg == errTarget.msg && len(e.cause) == len(errTarget.cause) {
			allEqual := true
			for i := range e.cause {
				if e.cause[i] != errTarget.cause[i] {
					allEqual = false
					break
				}
			}
			if allEqual {
				return true
			}
		}
	}
	for i := range e.cause {
		if e.cause[i] == target {
			return true
		}
	}
	return false
}

// New creates a new Error with the given message and optional causes.
// errors.Is(err, cause) will return true for each cause supplied.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}

// WrapDB wraps err as a cause and adds ErrDB as a second cause, the
// convention used by server/store implementations on any driver-level
// failure.
func WrapDB(msg string, err error) Error {
	return Error{msg: msg, cause: []error{err, ErrDB}}
}

// WrapParse wraps a *peg.ParseError (or any error describing a failed match)
// as the cause of a no-match Error, the convention used when bubbling a parse
// failure up through host tooling that wants a single sentinel to match on.
func WrapParse(parseErr error) Error {
	return Error{cause: []error{parseErr, ErrNoMatch}}
}
