package expand

import (
	"strings"
	"testing"

	"github.com/ava12/clickconf/classes"
	"github.com/ava12/clickconf/diag"
	"github.com/ava12/clickconf/parser"
	"github.com/ava12/clickconf/router"
)

func compile(t *testing.T, src string) (*router.Memory, *diag.Counter) {
	c := &diag.Counter{}
	ct := classes.New()
	ct.AddElementType("Foo", classes.ClassBody{Kind: classes.Builtin})
	ct.AddElementType("Bar", classes.ClassBody{Kind: classes.Builtin})
	ct.AddElementType("Baz", classes.ClassBody{Kind: classes.Builtin})

	p := parser.New([]byte(src), "t:", ct, c, nil)
	for p.ParseStatement() {
	}

	sink := router.NewMemory()
	CreateRouter(p.Graph(), p.Classes(), p.Requirements(), c, sink)
	return sink, c
}

func TestSimpleConnectionReachesRouter(t *testing.T) {
	rt, c := compile(t, "a :: Foo; b :: Bar; a -> b;")
	if !c.OK() {
		t.Fatalf("unexpected errors: %v", c.Errors)
	}
	if len(rt.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(rt.Elements))
	}
	if len(rt.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(rt.Connections))
	}
}

func TestIdentityCompoundThreadsThroughTunnels(t *testing.T) {
	src := `
elementclass Id {
	input -> output;
};
a :: Foo;
b :: Bar;
w :: Id;
a -> w -> b;
`
	rt, c := compile(t, src)
	if !c.OK() {
		t.Fatalf("unexpected errors: %v", c.Errors)
	}
	// Id should vanish entirely: one direct a->b connection remains,
	// plus no leftover tunnel elements reach the router (they're
	// filtered by CreateRouter's routerIDs[-1] skip).
	var names []string
	for _, e := range rt.Elements {
		names = append(names, e.Name)
	}
	for _, n := range names {
		if n == "w" {
			t.Errorf("Id compound's own name shouldn't reach the router, got %v", names)
		}
	}
	if len(rt.Connections) != 1 {
		t.Fatalf("expected a single resolved connection, got %d: %+v", len(rt.Connections), rt.Connections)
	}
	fromEl := rt.Elements[rt.Connections[0].FromID]
	toEl := rt.Elements[rt.Connections[0].ToID]
	if fromEl.Name != "a" || toEl.Name != "b" {
		t.Errorf("expected a->b, got %s->%s", fromEl.Name, toEl.Name)
	}
}

func TestParameterizedCompoundInterpolatesConfig(t *testing.T) {
	src := `
elementclass Wrap { $n |
	input -> Foo($n) -> output;
};
a :: Foo;
b :: Bar;
a -> w :: Wrap(42) -> b;
`
	rt, c := compile(t, src)
	if !c.OK() {
		t.Fatalf("unexpected errors: %v", c.Errors)
	}
	found := false
	for _, e := range rt.Elements {
		if e.Name == "w/Foo@1" && e.Config == "42" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an inner element named w/Foo@1 with config 42, got %+v", rt.Elements)
	}
}

func TestOverloadSelectsByArity(t *testing.T) {
	src := `
elementclass Pick {
	input -> Foo -> output;
} || {
	input -> Foo -> output;
	[1]input -> Bar -> [1]output;
};
a :: Foo;
b :: Bar;
c :: Baz;
d :: Foo;
p1 :: Pick;
p2 :: Pick;
a -> p1 -> b;
a -> [0]p2;
b -> [1]p2;
[0]p2 -> c;
[1]p2 -> d;
`
	_, c := compile(t, src)
	if !c.OK() {
		t.Fatalf("unexpected errors: %v", c.Errors)
	}
}

func TestNoMatchingOverloadReportsPossibilities(t *testing.T) {
	src := `
elementclass Pick {
	input -> output;
};
p :: Pick;
Foo -> [2]p;
`
	_, c := compile(t, src)
	if c.OK() {
		t.Error("expected a no-overload-matches error")
	}
	found := false
	for _, msg := range c.Messages {
		if strings.Contains(msg.Message, "possibilities are:") {
			found = true
		}
	}
	if !found {
		t.Error("expected a \"possibilities are:\" context message")
	}
}

func TestRequirementsPassThrough(t *testing.T) {
	rt, c := compile(t, "require(alpha beta);")
	if !c.OK() {
		t.Fatalf("unexpected errors: %v", c.Errors)
	}
	if len(rt.Requirements) != 2 || rt.Requirements[0] != "alpha" || rt.Requirements[1] != "beta" {
		t.Errorf("unexpected requirements: %v", rt.Requirements)
	}
}
