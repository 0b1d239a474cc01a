// Package graph is the provisional connection graph built by the parser
// and consumed by the expansion pass. The same Graph type serves both the
// top-level router and a compound class's captured body — compounds set
// AnonymousOffset to 2 so their anonymous elements don't collide with the
// two pseudo-elements ("input"/"output") every compound body starts with.
package graph

import (
	"fmt"

	"github.com/ava12/clickconf/model"
)

// Graph holds one provisional element/connection graph: a flat vector of
// elements (parallel to their eventual router ids) plus the ordered list
// of connections parsed against them.
type Graph struct {
	Elements    []model.ElementRecord
	Connections []model.Connection

	names map[string]int

	// AnonymousOffset seeds the anonymous-name counter; top-level graphs
	// use 0, compound bodies use 2 (slots 0 and 1 are "input"/"output").
	AnonymousOffset int

	tunnels *tunnelRegistry
}

// New creates an empty Graph. anonymousOffset is subtracted from the
// element count when computing each generated anonymous name's number.
func New(anonymousOffset int) *Graph {
	return &Graph{
		names:           make(map[string]int),
		AnonymousOffset: anonymousOffset,
		tunnels:         newTunnelRegistry(),
	}
}

// AnonymousName formats the next anonymous element name for className,
// e.g. "Queue@3". N starts at current_element_count - AnonymousOffset + 1
// and increases until the resulting name is not already in use (a plain
// declared element can otherwise collide with a later anonymous one).
func (g *Graph) AnonymousName(className string) string {
	n := g.ElementCount() - g.AnonymousOffset + 1
	name := fmt.Sprintf("%s@%d", className, n)
	for {
		if _, exists := g.names[name]; !exists {
			return name
		}
		n++
		name = fmt.Sprintf("%s@%d", className, n)
	}
}

// GetElement returns the index of the named element, creating it (with
// class cls, empty config, at lm) if it is not already declared. The
// second return is true when the element already existed.
func (g *Graph) GetElement(name string, cls int, lm model.Landmark) (int, bool) {
	if idx, ok := g.names[name]; ok {
		return idx, true
	}
	idx := len(g.Elements)
	g.Elements = append(g.Elements, model.ElementRecord{
		Name:     name,
		Class:    cls,
		Landmark: lm,
	})
	g.names[name] = idx
	return idx, false
}

// Declare records or updates an element's class and configuration; used
// once the parser sees the "ClassName(config)" declaration following a
// bare name reference.
func (g *Graph) Declare(idx int, cls int, config string) {
	g.Elements[idx].Class = cls
	g.Elements[idx].Config = config
}

// Lookup returns the index of an already-declared element by name.
func (g *Graph) Lookup(name string) (int, bool) {
	idx, ok := g.names[name]
	return idx, ok
}

// Connect appends a directed hookup from 'from' port 'fromPort' to 'to'
// port 'toPort'. A negative port number means "unspecified" and is
// normalized to 0, matching the language's default-port convention.
func (g *Graph) Connect(from, fromPort, to, toPort int) {
	if fromPort < 0 {
		fromPort = 0
	}
	if toPort < 0 {
		toPort = 0
	}
	g.Connections = append(g.Connections, model.Connection{
		From: model.PortRef{Element: from, Port: fromPort},
		To:   model.PortRef{Element: to, Port: toPort},
	})
}

// ElementCount reports how many elements (including tunnel endpoints)
// have been declared so far.
func (g *Graph) ElementCount() int {
	return len(g.Elements)
}
