package jiramark

import (
	"fmt"
	"strings"
)

// GrammarSyntaxError is returned by Compile when a grammar source
// does not conform to the grammar description language.
type GrammarSyntaxError struct {
	Message  string
	Location Location
}

func (e *GrammarSyntaxError) Error() string {
	if e.Location == (Location{}) {
		return fmt.Sprintf("grammar: %s", e.Message)
	}
	return fmt.Sprintf("grammar: %s @ %s", e.Message, e.Location)
}

// ParseFailure signals that an expression did not match.  It is
// ordinary data threaded through the matching algebra: ordered choice
// and repetition catch it, try another branch, and discard it.  Only
// the top-level Parse call converts an unrecovered failure into a
// caller-visible ParseError.
//
// Cause chains nested expectations outward: the innermost failure is
// the most specific unmatched expectation, each wrapper adds the rule
// context it bubbled through.
type ParseFailure struct {
	Msg   string
	At    int
	Cause *ParseFailure
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("%s @ %d", f.Msg, f.At)
}

// Deepest returns the failure furthest into the input along the
// causal chain, which is usually the most useful diagnostic.
func (f *ParseFailure) Deepest() *ParseFailure {
	best := f
	for c := f.Cause; c != nil; c = c.Cause {
		if c.At >= best.At {
			best = c
		}
	}
	return best
}

// Chain returns the messages from the outermost context down to the
// innermost expectation.
func (f *ParseFailure) Chain() []string {
	var msgs []string
	for c := f; c != nil; c = c.Cause {
		msgs = append(msgs, c.Msg)
	}
	return msgs
}

func failf(at int, format string, args ...interface{}) *ParseFailure {
	return &ParseFailure{Msg: fmt.Sprintf(format, args...), At: at}
}

func failWrap(at int, cause *ParseFailure, format string, args ...interface{}) *ParseFailure {
	return &ParseFailure{Msg: fmt.Sprintf(format, args...), At: at, Cause: cause}
}

// asFailure asserts that an error produced by the matching algebra is
// a backtrackable failure.  Anything else escaping into the algebra
// is an engine bug.
func asFailure(err error) *ParseFailure {
	f, ok := err.(*ParseFailure)
	if !ok {
		panic(fmt.Sprintf("jiramark: non-failure error in matching algebra: %v", err))
	}
	return f
}

// ParseError is the caller-visible form of an unrecovered failure,
// annotated with the deepest unmatched position.
type ParseError struct {
	Failure  *ParseFailure
	Location Location
}

func (e *ParseError) Error() string {
	chain := e.Failure.Chain()
	return fmt.Sprintf("%s @ %s", strings.Join(chain, ": "), e.Location)
}

func (e *ParseError) Unwrap() error { return e.Failure }

// MissingHandlerError reports a dispatch key with no handler and no
// single-child pass-through.  This is a consumer-integration bug, not
// an input problem, and is never caught by the matching algebra.
type MissingHandlerError struct {
	Key string
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("no handler registered for %q", e.Key)
}
