// Package router defines the downstream sink the expansion pass emits
// to, plus a simple in-memory implementation useful for tests and the
// command-line front end.
package router

import "github.com/ava12/clickconf/model"

// Router is the external sink the expansion pass writes the fully
// resolved graph to. It is intentionally minimal: element/connection/
// requirement emission only, no further graph queries.
type Router interface {
	AddElement(className, name, config string, lm model.Landmark) int
	AddConnection(fromID, fromPort, toID, toPort int)
	AddRequirement(word string)
}

// Element is one router-side element record, keyed by the id AddElement
// returned for it.
type Element struct {
	ClassName string
	Name      string
	Config    string
	Landmark  model.Landmark
}

// Connection is one router-side connection between two already-added
// elements.
type Connection struct {
	FromID, FromPort int
	ToID, ToPort     int
}

// Memory is a Router that simply accumulates everything it is given, in
// order. It never rejects input.
type Memory struct {
	Elements     []Element
	Connections  []Connection
	Requirements []string
}

// NewMemory returns an empty in-memory router.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) AddElement(className, name, config string, lm model.Landmark) int {
	id := len(m.Elements)
	m.Elements = append(m.Elements, Element{ClassName: className, Name: name, Config: config, Landmark: lm})
	return id
}

func (m *Memory) AddConnection(fromID, fromPort, toID, toPort int) {
	m.Connections = append(m.Connections, Connection{fromID, fromPort, toID, toPort})
}

func (m *Memory) AddRequirement(word string) {
	m.Requirements = append(m.Requirements, word)
}
