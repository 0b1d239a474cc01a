package classes

import (
	"github.com/ava12/clickconf/graph"
	"github.com/ava12/clickconf/internal/intset"
)

// Reserved element indices inside a compound body: slot 0 is the
// "input" pseudo-element, slot 1 is "output". graph.New(2) is called
// with AnonymousOffset=2 so real anonymous elements never collide with
// them.
const (
	inputPseudo  = 0
	outputPseudo = 1
)

// usedPseudoPorts scans body's connections and returns the set of ports
// referenced from "input" and the set of ports referenced into "output".
func usedPseudoPorts(body *graph.Graph) (inPorts, outPorts *intset.Set) {
	inPorts = intset.New()
	outPorts = intset.New()
	for _, c := range body.Connections {
		if c.From.Element == inputPseudo {
			inPorts.Add(c.From.Port)
		}
		if c.To.Element == outputPseudo {
			outPorts.Add(c.To.Port)
		}
	}
	return
}
