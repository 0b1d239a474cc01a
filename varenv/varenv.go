// Package varenv is the variable-binding stack used to interpolate
// compound class parameters ($name) into a compound's captured body
// configuration strings at expansion time.
package varenv

import "strings"

// binding is one name/value pair, with the environment depth it was
// bound at (used by LimitDepth to strip bindings introduced deeper than
// the caller wants visible — the "compound sees only its own formals and
// its enclosing environment down to its own definition depth" rule).
type binding struct {
	name, value string
	depth       int
}

// Environment is an ordered stack of bindings. Lookup walks from the
// most recently pushed binding backward, so an inner binding shadows an
// outer one of the same name.
type Environment struct {
	bindings []binding
	depth    int
}

// New returns an empty environment.
func New() *Environment {
	return &Environment{}
}

// Enter pushes one new name/value binding at the environment's current
// depth.
func (e *Environment) Enter(name, value string) {
	e.bindings = append(e.bindings, binding{name: name, value: value, depth: e.depth})
}

// PushDepth increases the current depth, so subsequent Enter calls are
// tagged as belonging to a new, deeper scope.
func (e *Environment) PushDepth() {
	e.depth++
}

// Clone returns an independent copy of e — mutating the copy (Enter,
// LimitDepth) never affects e itself. Required so each compound
// expansion builds its environment from an immutable snapshot of its
// caller's.
func (e *Environment) Clone() *Environment {
	c := &Environment{depth: e.depth}
	c.bindings = append(c.bindings, e.bindings...)
	return c
}

// LimitDepth truncates the environment to bindings made at depth <= max,
// discarding anything bound deeper, and resets the current depth to max.
// Used on a cloned environment before a compound's formals are entered,
// so the compound sees only bindings down to its own declared depth.
func (e *Environment) LimitDepth(max int) {
	e.depth = max
	i := len(e.bindings)
	for i > 0 && e.bindings[i-1].depth > max {
		i--
	}
	e.bindings = e.bindings[:i]
}

// Lookup returns the value bound to name and true, or ("", false) if name
// is not bound anywhere in the stack.
func (e *Environment) Lookup(name string) (string, bool) {
	for i := len(e.bindings) - 1; i >= 0; i-- {
		if e.bindings[i].name == name {
			return e.bindings[i].value, true
		}
	}
	return "", false
}

// Interpolate substitutes every $name occurrence in config with its bound
// value, leaving unbound variables as literal text (a diagnostic for an
// unbound $name is the caller's responsibility, since only the caller
// knows the landmark to attach it to).
func (e *Environment) Interpolate(config string) string {
	var out strings.Builder
	i := 0
	for i < len(config) {
		c := config[i]
		if c != '$' {
			out.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(config) && isVarByte(config[j]) {
			j++
		}
		if j == i+1 {
			out.WriteByte(c)
			i++
			continue
		}
		name := config[i+1 : j]
		if val, ok := e.Lookup(name); ok {
			out.WriteString(val)
		} else {
			out.WriteString(config[i:j])
		}
		i = j
	}
	return out.String()
}

func isVarByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}
