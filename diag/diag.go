// Package diag is the diagnostics stack shared by every compiler
// component: a single Error value shape and a Reporter interface the
// embedding host implements (or, for tests and cmd/clickconf, the
// Counter reporter defined here).
package diag

import (
	"fmt"

	"github.com/ava12/clickconf/model"
)

// Error classes, kept in the teacher's "class of 100" convention so a
// glance at Code tells you which component raised it. These mirror the
// five categories of the error taxonomy: lexical, syntax, name, overload,
// and tunnel/port errors.
const (
	LexicalErrors  = 101
	SyntaxErrors   = 201
	NameErrors     = 301
	OverloadErrors = 401
	TunnelErrors   = 501
)

// Error is the only error value the compiler constructs.
type Error struct {
	Code       int
	Message    string
	SourceName string
	Line       int
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error, prefixing the message with source/line information
// when either is available.
func New(code int, msg string, lm model.Landmark) *Error {
	if lm.SourceName() != "" || lm.LineNo() != 0 {
		msg = fmt.Sprintf("%s: %s", lm.String(), msg)
	}
	return &Error{code, msg, lm.SourceName(), lm.LineNo()}
}

// Format builds an Error with no landmark, for diagnostics that have no
// natural source position (should be rare — nearly everything in this
// compiler carries a landmark).
func Format(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Reporter is the host-provided diagnostic sink. Error and Message both
// report a formatted diagnostic tied to a landmark; Error increments the
// host's severity counter, Message does not. code is one of the error
// classes above, naming which component/category raised the diagnostic.
type Reporter interface {
	Error(code int, lm model.Landmark, format string, args ...any)
	Message(lm model.Landmark, format string, args ...any)
}

// ContextReporter accumulates a group of related Message calls under one
// introductory line, used for "possibilities are:" overload listings.
type ContextReporter struct {
	r      Reporter
	lm     model.Landmark
	prefix string
	indent string
	opened bool
}

// NewContext returns a ContextReporter that will print intro the first
// time Add is called, then every subsequent Add as an indented
// continuation line.
func NewContext(r Reporter, lm model.Landmark, intro, indent string) *ContextReporter {
	return &ContextReporter{r: r, lm: lm, prefix: intro, indent: indent}
}

func (c *ContextReporter) Add(format string, args ...any) {
	if !c.opened {
		c.r.Message(c.lm, c.prefix)
		c.opened = true
	}
	c.r.Message(c.lm, c.indent+fmt.Sprintf(format, args...))
}

// Counter is the default, in-process Reporter: every diagnostic is kept
// as an *Error and the number of Error (not Message) calls is tallied.
// Grounded on errors.Error/llx.Error's (Code, Message, SourceName, Line)
// shape and on NewError/FormatError/FormatErrorPos's landmark-prefixing
// behavior.
type Counter struct {
	Errors   []*Error
	Messages []*Error
	errCount int
}

func (c *Counter) Error(code int, lm model.Landmark, format string, args ...any) {
	c.errCount++
	c.Errors = append(c.Errors, New(code, fmt.Sprintf(format, args...), lm))
}

func (c *Counter) Message(lm model.Landmark, format string, args ...any) {
	c.Messages = append(c.Messages, New(0, fmt.Sprintf(format, args...), lm))
}

func (c *Counter) ErrorCount() int { return c.errCount }

func (c *Counter) OK() bool { return c.errCount == 0 }
