// Package expand is the graph expansion pass: it resolves every compound
// element against its overload chain, substitutes formal parameters,
// clones the compound's captured body into the top-level graph under a
// prefixed name, threads tunnels through the result, and emits the
// final flat graph to a router.Router sink.
package expand

import (
	"strings"

	"github.com/ava12/clickconf/argv"
	"github.com/ava12/clickconf/classes"
	"github.com/ava12/clickconf/diag"
	"github.com/ava12/clickconf/graph"
	"github.com/ava12/clickconf/model"
	"github.com/ava12/clickconf/router"
	"github.com/ava12/clickconf/varenv"
)

type expander struct {
	ct  *classes.ClassTable
	g   *graph.Graph
	r   diag.Reporter
	env map[int]int // element index -> index into envs
	envs []*varenv.Environment
}

// CreateRouter runs the expansion pass over g (populated by a parser, see
// the parser package) and submits the result to sink, returning sink for
// convenience. requirements is the parser's captured require() word list.
func CreateRouter(g *graph.Graph, ct *classes.ClassTable, requirements []string, r diag.Reporter, sink router.Router) router.Router {
	e := &expander{
		ct:   ct,
		g:    g,
		r:    r,
		env:  make(map[int]int),
		envs: []*varenv.Environment{varenv.New()},
	}

	for i := 0; i < len(g.Elements); i++ {
		if ct.Body(g.Elements[i].Class).Kind == classes.CompoundKind {
			e.expandCompoundElement(i)
		}
	}

	routerIDs := make([]int, len(g.Elements))
	for i, el := range g.Elements {
		if el.Class == model.TunnelType {
			routerIDs[i] = -1
			continue
		}
		routerIDs[i] = sink.AddElement(ct.Name(el.Class), el.Name, el.Config, el.Landmark)
	}

	for _, c := range g.Expand(r) {
		fromID, toID := routerIDs[c.From.Element], routerIDs[c.To.Element]
		if fromID < 0 || toID < 0 {
			continue
		}
		sink.AddConnection(fromID, c.From.Port, toID, c.To.Port)
	}

	for _, word := range requirements {
		sink.AddRequirement(word)
	}

	return sink
}

// usedArity returns one past the highest input/output port referenced
// anywhere in the graph's connections against element i.
func (e *expander) usedArity(i int) (inputsUsed, outputsUsed int) {
	for _, c := range e.g.Connections {
		if c.To.Element == i && c.To.Port+1 > inputsUsed {
			inputsUsed = c.To.Port + 1
		}
		if c.From.Element == i && c.From.Port+1 > outputsUsed {
			outputsUsed = c.From.Port + 1
		}
	}
	return
}

// expandCompoundElement resolves element i's compound class against its
// overload chain and, on a match, clones the selected body into the
// top-level graph in its place.
func (e *expander) expandCompoundElement(i int) {
	el := e.g.Elements[i]
	originalClass := el.Class
	args := argv.Split(el.Config)
	inputsUsed, outputsUsed := e.usedArity(i)

	chain, terminal := e.ct.ChainWithTerminal(originalClass)

	var selected int = -1
	for _, id := range chain {
		c := e.ct.Body(id).Body
		if c.NInputs == inputsUsed && c.NOutputs == outputsUsed && len(c.Formals) == len(args) {
			selected = id
			break
		}
	}

	if selected < 0 {
		if terminal >= 0 {
			e.g.Elements[i].Class = terminal
			return
		}
		e.reportNoMatch(el, originalClass, chain, args, inputsUsed, outputsUsed)
		e.g.Elements[i].Class = model.ErrorType
		return
	}

	compound := e.ct.Body(selected).Body
	envIdx := e.selectEnvironment(i, compound, args)
	e.expandInto(i, el.Name, compound, envIdx)
}

func (e *expander) reportNoMatch(el model.ElementRecord, originalClass int, chain []int, args []string, inputsUsed, outputsUsed int) {
	name := e.ct.Name(originalClass)
	e.r.Error(diag.OverloadErrors, el.Landmark, "no overload of `%s' matches %s[%d arguments, %d inputs, %d outputs]",
		name, name, len(args), inputsUsed, outputsUsed)
	ctx := diag.NewContext(e.r, el.Landmark, "possibilities are:", "  ")
	for _, id := range chain {
		c := e.ct.Body(id).Body
		ctx.Add("(%d inputs, %d outputs, %d arguments)", c.NInputs, c.NOutputs, len(c.Formals))
	}
}

// selectEnvironment picks (or builds) the varenv.Environment the
// compound's inner configuration strings will be interpolated against.
func (e *expander) selectEnvironment(i int, compound *classes.Compound, args []string) int {
	if len(args) == 0 && compound.Depth == 0 {
		return 0
	}

	curEnv := e.envs[e.envOf(i)]
	next := curEnv.Clone()
	next.LimitDepth(compound.Depth)
	next.PushDepth()
	for idx, formal := range compound.Formals {
		val := ""
		if idx < len(args) {
			val = curEnv.Interpolate(args[idx])
		}
		next.Enter(strings.TrimPrefix(formal, "$"), val)
	}
	e.envs = append(e.envs, next)
	return len(e.envs) - 1
}

func (e *expander) envOf(i int) int {
	if idx, ok := e.env[i]; ok {
		return idx
	}
	return 0
}

// expandInto performs the actual rewrite described in expand_into:
// element i becomes a TUNNEL_TYPE pass-through, threaded by two fresh
// tunnels onto a clone of the compound's captured body, with every inner
// element renamed "name/innerName" and its configuration interpolated
// against envIdx.
func (e *expander) expandInto(i int, name string, compound *classes.Compound, envIdx int) {
	lm := e.g.Elements[i].Landmark
	e.g.Elements[i].Class = model.TunnelType

	inStubName := name + "/input"
	outStubName := name + "/output"
	inStubIdx, _ := e.g.GetElement(inStubName, model.TunnelType, lm)
	outStubIdx, _ := e.g.GetElement(outStubName, model.TunnelType, lm)

	// Two distinct tunnel pairs share element i: i is the input side of
	// one and the output side of the other. Each pair needs its own
	// registry key even though both concern "name".
	e.g.RegisterTunnelInput(name+"#in", i, lm, e.r)
	e.g.RegisterTunnelOutput(name+"#in", inStubIdx, lm, e.r)
	e.g.RegisterTunnelInput(name+"#out", outStubIdx, lm, e.r)
	e.g.RegisterTunnelOutput(name+"#out", i, lm, e.r)

	env := e.envs[envIdx]
	indexMap := make(map[int]int, compound.Body.ElementCount())
	indexMap[0] = inStubIdx  // compound's "input" pseudo element
	indexMap[1] = outStubIdx // compound's "output" pseudo element

	for innerIdx, innerEl := range compound.Body.Elements {
		if innerIdx < 2 {
			continue
		}
		newName := name + "/" + innerEl.Name
		newConfig := env.Interpolate(innerEl.Config)
		newIdx, _ := e.g.GetElement(newName, innerEl.Class, innerEl.Landmark)
		e.g.Declare(newIdx, innerEl.Class, newConfig)
		indexMap[innerIdx] = newIdx
		e.env[newIdx] = envIdx
	}

	for _, c := range compound.Body.Connections {
		from := indexMap[c.From.Element]
		to := indexMap[c.To.Element]
		e.g.Connect(from, c.From.Port, to, c.To.Port)
	}
}
