package varenv

import "testing"

func TestInterpolate(t *testing.T) {
	e := New()
	e.Enter("a", "42")
	got := e.Interpolate("Foo($a, $missing)")
	want := "Foo(42, $missing)"
	if got != want {
		t.Errorf("Interpolate = %q, want %q", got, want)
	}
}

func TestLimitDepthDropsDeeperBindings(t *testing.T) {
	e := New()
	e.Enter("outer", "1")
	e.PushDepth()
	e.Enter("inner", "2")

	e.LimitDepth(0)
	if _, ok := e.Lookup("inner"); ok {
		t.Error("inner binding should have been dropped")
	}
	if v, ok := e.Lookup("outer"); !ok || v != "1" {
		t.Error("outer binding should survive LimitDepth(0)")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	e := New()
	e.Enter("a", "1")
	c := e.Clone()
	c.Enter("b", "2")

	if _, ok := e.Lookup("b"); ok {
		t.Error("mutating the clone should not affect the original")
	}
	if v, ok := c.Lookup("a"); !ok || v != "1" {
		t.Error("clone should inherit existing bindings")
	}
}
