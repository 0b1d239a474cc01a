// Package classes is the lexically scoped, overload-aware element class
// table: built-in classes, synonyms, and compound classes, all sharing
// one name->id map per scope with a previous_in_chain link for both
// scope shadowing and overload chaining.
package classes

import (
	"github.com/ava12/clickconf/diag"
	"github.com/ava12/clickconf/graph"
	"github.com/ava12/clickconf/model"
)

// Kind tags a ClassBody's variant.
type Kind int

const (
	Builtin Kind = iota
	Synonym
	CompoundKind
)

// ClassBody is the tagged payload behind one class table entry.
type ClassBody struct {
	Kind   Kind
	Target int       // Synonym: the class id this name stands for
	Body   *Compound // CompoundKind: the compound's captured definition
}

// entry is one name binding, id-indexed. previous links to the entry this
// one shadows (an outer-scope binding of the same name) or, for compound
// overloads, the entry that is the next candidate in the overload chain.
type entry struct {
	name     string
	body     ClassBody
	previous int // -1 if none
}

// ClassTable is a lexically scoped name -> class id table: a vector of
// slots (entries) plus a name -> id map (current). The vector's length is
// the "last" watermark the spec's scope cookies snapshot: entering a scope
// just remembers len(entries); leaving it truncates back to that length
// and rebinds whatever names the truncated slots were shadowing, so the
// freed ids are reused by the very next allocation rather than left to
// grow forever.
type ClassTable struct {
	entries []entry
	current map[string]int
}

// New returns a ClassTable pre-populated with the two built-ins every
// configuration has available without declaration.
func New() *ClassTable {
	t := &ClassTable{current: make(map[string]int)}
	t.entries = append(t.entries,
		entry{name: "<tunnel>", body: ClassBody{Kind: Builtin}, previous: -1},
		entry{name: "Error", body: ClassBody{Kind: Builtin}, previous: -1},
	)
	t.current["Error"] = model.ErrorType
	return t
}

// LexicalScopingIn opens a new nested scope (a compound class body, or a
// whole parse via parser.BeginParse) and returns a cookie naming the top
// of the table at this instant — the watermark the matching
// LexicalScopingOut rolls back to.
func (t *ClassTable) LexicalScopingIn() int {
	return len(t.entries)
}

// LexicalScopingOut removes every class added since cookie (as returned
// by the paired LexicalScopingIn), restoring the name map for each
// removed name to its previous_in_chain entry, or unbinding it if there
// was none.
func (t *ClassTable) LexicalScopingOut(cookie int) {
	for id := len(t.entries) - 1; id >= cookie; id-- {
		name := t.entries[id].name
		if t.current[name] != id {
			continue
		}
		if prev := t.entries[id].previous; prev >= 0 {
			t.current[name] = prev
		} else {
			delete(t.current, name)
		}
	}
	t.entries = t.entries[:cookie]
}

// AddElementType declares name as a new class, chaining onto any
// existing binding of the same name (so an overloaded compound class can
// later be searched by arity/arg-count). Returns the new class id.
func (t *ClassTable) AddElementType(name string, body ClassBody) int {
	id := len(t.entries)
	prev := -1
	if p, ok := t.current[name]; ok {
		prev = p
	}
	t.entries = append(t.entries, entry{name: name, body: body, previous: prev})
	t.current[name] = id
	return id
}

// ForceElementType rebinds name unconditionally, without chaining (used
// by the parser to install a placeholder class for an undeclared class
// name, so later lookups of that name find something).
func (t *ClassTable) ForceElementType(name string, body ClassBody) int {
	id := len(t.entries)
	t.entries = append(t.entries, entry{name: name, body: body, previous: -1})
	t.current[name] = id
	return id
}

// ElementType resolves name in the current scope. ok is false if name has
// never been declared.
func (t *ClassTable) ElementType(name string) (id int, ok bool) {
	id, ok = t.current[name]
	return
}

// Body returns the class body stored at id.
func (t *ClassTable) Body(id int) ClassBody {
	return t.entries[id].body
}

// Name returns the declared name of class id.
func (t *ClassTable) Name(id int) string {
	return t.entries[id].name
}

// Resolve follows Synonym indirection until it reaches a non-synonym
// class, returning that class's id.
func (t *ClassTable) Resolve(id int) int {
	seen := map[int]bool{}
	for {
		if seen[id] {
			return id // synonym cycle: stop and return the id reached
		}
		seen[id] = true
		b := t.entries[id].body
		if b.Kind != Synonym {
			return id
		}
		id = b.Target
	}
}

// OverloadChain returns id and every compound class chained behind it
// under the same name (its previous_in_chain links), stopping at the
// first non-compound entry — mirroring find_relevant_class's walk.
func (t *ClassTable) OverloadChain(id int) []int {
	chain, _ := t.ChainWithTerminal(id)
	return chain
}

// ChainWithTerminal walks the same previous_in_chain links as
// OverloadChain, but also returns the first non-compound entry the chain
// bottoms out at (or -1 if the chain simply ends). Expansion uses the
// terminal to adopt a plain class that a compound's "..." extension
// chain was ultimately declared to shadow.
func (t *ClassTable) ChainWithTerminal(id int) (chain []int, terminal int) {
	for id >= 0 {
		b := t.entries[id].body
		if b.Kind != CompoundKind {
			return chain, id
		}
		chain = append(chain, id)
		id = t.entries[id].previous
	}
	return chain, -1
}

// ElementTypeNames returns every currently-visible class name, for
// diagnostics ("possibilities are:" listings) and test assertions.
func (t *ClassTable) ElementTypeNames() []string {
	names := make([]string, 0, len(t.current))
	for name := range t.current {
		names = append(names, name)
	}
	return names
}

// Compound is the captured body of one compound class: its formal
// parameter names, the provisional graph parsed inside its braces, and
// the port-arity figured out once parsing of the body is complete.
type Compound struct {
	Formals     []string
	Body        *graph.Graph
	Depth       int
	NInputs     int
	NOutputs    int
	finished    bool
}

// Finish computes NInputs/NOutputs from the "input"/"output" pseudo
// elements' connections inside Body, using intset to track which ports
// were actually referenced. Called once, when the compound's closing
// brace is parsed.
func (c *Compound) Finish(r diag.Reporter, lm model.Landmark) {
	if c.finished {
		return
	}
	c.finished = true

	inPorts, outPorts := usedPseudoPorts(c.Body)

	if max, ok := inPorts.Max(); ok {
		c.NInputs = max + 1
	}
	if max, ok := outPorts.Max(); ok {
		c.NOutputs = max + 1
	}
}
