package classes

import "testing"

func TestBuiltinsPreregistered(t *testing.T) {
	ct := New()
	if _, ok := ct.ElementType("Error"); !ok {
		t.Fatal("Error class should be pre-registered")
	}
}

func TestScopingRestoresShadowedName(t *testing.T) {
	ct := New()
	outer := ct.AddElementType("Foo", ClassBody{Kind: Builtin})

	cookie := ct.LexicalScopingIn()
	inner := ct.AddElementType("Foo", ClassBody{Kind: Builtin})
	if inner == outer {
		t.Fatal("inner declaration should get a fresh id")
	}
	if id, _ := ct.ElementType("Foo"); id != inner {
		t.Fatalf("expected inner binding %d visible, got %d", inner, id)
	}

	ct.LexicalScopingOut(cookie)
	if id, ok := ct.ElementType("Foo"); !ok || id != outer {
		t.Fatalf("expected outer binding %d restored, got %d (ok=%v)", outer, id, ok)
	}
}

func TestScopingOutRestoresTableByteIdentical(t *testing.T) {
	ct := New()
	ct.AddElementType("Foo", ClassBody{Kind: Builtin})
	before := ct.ElementTypeNames()

	cookie := ct.LexicalScopingIn()
	ct.AddElementType("Bar", ClassBody{Kind: Builtin})
	ct.AddElementType("Foo", ClassBody{Kind: CompoundKind, Body: &Compound{}})
	ct.LexicalScopingOut(cookie)

	after := ct.ElementTypeNames()
	if len(before) != len(after) {
		t.Fatalf("expected %d visible names after rollback, got %d: %v", len(before), len(after), after)
	}
	if _, ok := ct.ElementType("Bar"); ok {
		t.Fatal("Bar should not survive LexicalScopingOut")
	}
	fooID, ok := ct.ElementType("Foo")
	if !ok || ct.Body(fooID).Kind != Builtin {
		t.Fatalf("expected Foo restored to its pre-scope builtin binding, got id=%d ok=%v", fooID, ok)
	}

	next := ct.AddElementType("Baz", ClassBody{Kind: Builtin})
	if next != cookie {
		t.Fatalf("expected the next allocation to reuse freed id %d, got %d", cookie, next)
	}
}

func TestOverloadChainStopsAtNonCompound(t *testing.T) {
	ct := New()
	builtin := ct.AddElementType("Base", ClassBody{Kind: Builtin})
	compound1 := ct.AddElementType("Base", ClassBody{Kind: CompoundKind, Body: &Compound{}})
	compound2 := ct.AddElementType("Base", ClassBody{Kind: CompoundKind, Body: &Compound{}})

	chain, terminal := ct.ChainWithTerminal(compound2)
	if len(chain) != 2 || chain[0] != compound2 || chain[1] != compound1 {
		t.Fatalf("unexpected chain: %v", chain)
	}
	if terminal != builtin {
		t.Fatalf("expected terminal %d, got %d", builtin, terminal)
	}
}

func TestSynonymResolve(t *testing.T) {
	ct := New()
	target := ct.AddElementType("Target", ClassBody{Kind: Builtin})
	syn := ct.AddElementType("Alias", ClassBody{Kind: Synonym, Target: target})
	if got := ct.Resolve(syn); got != target {
		t.Fatalf("Resolve(syn) = %d, want %d", got, target)
	}
}
