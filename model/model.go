// Package model holds the plain value types shared by the lexer, class
// table, graph builder, and expansion pass. None of these carry behavior
// of their own; they are the vocabulary the rest of the compiler is
// written against.
package model

import "fmt"

// Landmark names a source position for diagnostics: a filename (already
// colon-terminated the way the lexer reports it) and a line number.
type Landmark struct {
	File string
	Line int
}

func (l Landmark) String() string {
	if l.File == "" {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("%s%d", l.File, l.Line)
}

func (l Landmark) SourceName() string { return l.File }
func (l Landmark) LineNo() int        { return l.Line }

// PortRef is (element index, port number) as used in the provisional
// graph's connection list and in tunnel endpoints. A negative Port at a
// parse site means "unspecified" and is normalized to 0 before it is
// stored in a Connection.
type PortRef struct {
	Element int
	Port    int
}

// Built-in class ids, present in every class table from construction.
const (
	TunnelType = 0
	ErrorType  = 1
)

// ElementRecord is one provisional element: its declared name, class,
// captured configuration string, and source landmark.
type ElementRecord struct {
	Name      string
	Class     int
	Config    string
	Landmark  Landmark
}

// Connection is one directed provisional hookup between two port
// references, in the order they were parsed.
type Connection struct {
	From, To PortRef
}
