package graph

import (
	"github.com/ava12/clickconf/diag"
	"github.com/ava12/clickconf/model"
)

// tunnelState is the three-state marker used while walking tunnel chains:
// unvisited, in-progress (currently on the walk's call stack, so seeing it
// again means a cycle), or done (result cached).
type tunnelState int

const (
	unvisited tunnelState = iota
	inProgress
	done
)

// tunnelPair is one `connectiontunnel In -> Out;` declaration: the input
// pseudo-element's data enters here and reappears from the output
// pseudo-element's matching port.
type tunnelPair struct {
	Name                           string
	InputElement, OutputElement    int
	HasInput, HasOutput            bool
	InputLandmark, OutputLandmark  model.Landmark
}

type tunnelRegistry struct {
	pairs       map[string]*tunnelPair
	byElementIn  map[int]*tunnelPair
	byElementOut map[int]*tunnelPair
	cache        map[[2]int][]model.PortRef
}

func newTunnelRegistry() *tunnelRegistry {
	return &tunnelRegistry{
		pairs:        make(map[string]*tunnelPair),
		byElementIn:  make(map[int]*tunnelPair),
		byElementOut: make(map[int]*tunnelPair),
		cache:        make(map[[2]int][]model.PortRef),
	}
}

func (g *Graph) pairFor(name string) *tunnelPair {
	p, ok := g.tunnels.pairs[name]
	if !ok {
		p = &tunnelPair{Name: name}
		g.tunnels.pairs[name] = p
	}
	return p
}

// RegisterTunnelInput records elementIdx as the input side of the named
// tunnel. Declaring the same input twice is a directional-misuse error.
// An element may simultaneously be the input side of one tunnel and the
// output side of another (expand_into wires a compound's own element
// index into exactly that role).
func (g *Graph) RegisterTunnelInput(name string, elementIdx int, lm model.Landmark, r diag.Reporter) {
	p := g.pairFor(name)
	if p.HasInput {
		r.Error(diag.TunnelErrors, lm, "tunnel %q input redeclared", name)
		return
	}
	p.HasInput = true
	p.InputElement = elementIdx
	p.InputLandmark = lm
	g.tunnels.byElementIn[elementIdx] = p
}

// RegisterTunnelOutput is the output-side counterpart of RegisterTunnelInput.
func (g *Graph) RegisterTunnelOutput(name string, elementIdx int, lm model.Landmark, r diag.Reporter) {
	p := g.pairFor(name)
	if p.HasOutput {
		r.Error(diag.TunnelErrors, lm, "tunnel %q output redeclared", name)
		return
	}
	p.HasOutput = true
	p.OutputElement = elementIdx
	p.OutputLandmark = lm
	g.tunnels.byElementOut[elementIdx] = p
}

func (g *Graph) isTunnelInput(elementIdx int) bool {
	p, ok := g.tunnels.byElementIn[elementIdx]
	return ok && p.HasInput && p.InputElement == elementIdx
}

func (g *Graph) isTunnelOutput(elementIdx int) bool {
	p, ok := g.tunnels.byElementOut[elementIdx]
	return ok && p.HasOutput && p.OutputElement == elementIdx
}

// resolveDestination follows a connection's destination through any chain
// of tunnels it passes through and returns the real, non-tunnel
// destinations it ultimately reaches. A tunnel whose output feeds back
// into its own (or an ancestor's) input is reported once and dropped.
func (g *Graph) resolveDestination(pr model.PortRef, r diag.Reporter, visiting map[[2]int]tunnelState) []model.PortRef {
	if !g.isTunnelInput(pr.Element) {
		return []model.PortRef{pr}
	}

	key := [2]int{pr.Element, pr.Port}
	switch visiting[key] {
	case inProgress:
		p := g.tunnels.byElementIn[pr.Element]
		r.Error(diag.TunnelErrors, p.InputLandmark, "tunnel %q forms a cycle", p.Name)
		return nil
	case done:
		return g.tunnels.cache[key]
	}

	visiting[key] = inProgress
	p := g.tunnels.byElementIn[pr.Element]
	var results []model.PortRef
	if !p.HasOutput {
		r.Error(diag.TunnelErrors, p.InputLandmark, "tunnel %q has no matching output", p.Name)
	} else {
		for _, c := range g.Connections {
			if c.From.Element == p.OutputElement && c.From.Port == pr.Port {
				results = append(results, g.resolveDestination(c.To, r, visiting)...)
			}
		}
	}
	visiting[key] = done
	g.tunnels.cache[key] = results
	return results
}

// Expand returns the graph's connections with every tunnel hop resolved
// away: a connection terminating on a tunnel input is rewritten into one
// connection per real destination reachable from the paired output,
// possibly through further tunnels. Connections that originate at a
// tunnel output are never emitted directly — they are only ever reached
// via resolveDestination from the matching input side.
func (g *Graph) Expand(r diag.Reporter) []model.Connection {
	visiting := make(map[[2]int]tunnelState)
	var out []model.Connection

	for _, c := range g.Connections {
		if g.isTunnelOutput(c.From.Element) {
			continue
		}
		if g.isTunnelInput(c.To.Element) {
			for _, dst := range g.resolveDestination(c.To, r, visiting) {
				out = append(out, model.Connection{From: c.From, To: dst})
			}
			continue
		}
		out = append(out, c)
	}

	for name, p := range g.tunnels.pairs {
		if p.HasInput && !p.HasOutput {
			r.Error(diag.TunnelErrors, p.InputLandmark, "tunnel %q used as input but never declared as output", name)
		}
		if p.HasOutput && !p.HasInput {
			r.Error(diag.TunnelErrors, p.OutputLandmark, "tunnel %q used as output but never declared as input", name)
		}
	}

	return out
}
