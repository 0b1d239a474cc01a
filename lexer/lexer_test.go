package lexer

import (
	"testing"

	"github.com/ava12/clickconf/diag"
)

func scanAll(t *testing.T, src string) ([]*Token, *diag.Counter) {
	c := &diag.Counter{}
	lx := New([]byte(src), "test:", c)
	var toks []*Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Is(EOF) {
			break
		}
	}
	return toks, c
}

func TestIdentAndPunctuation(t *testing.T) {
	toks, c := scanAll(t, "a -> b;")
	if !c.OK() {
		t.Fatalf("unexpected errors: %v", c.Errors)
	}
	want := []int{Ident, Arrow, Ident, ';', EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d: got type %d (%s), want %d", i, toks[i].Type, toks[i].String(), typ)
		}
	}
}

func TestReservedWords(t *testing.T) {
	toks, _ := scanAll(t, "connectiontunnel elementclass require")
	want := []int{Tunnel, Elementclass, Require, EOF}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d: got %d, want %d", i, toks[i].Type, typ)
		}
	}
}

func TestIdentifierExcludesTrailingSlashAndComment(t *testing.T) {
	toks, _ := scanAll(t, "foo/bar/ baz/=qux")
	if toks[0].Text != "foo/bar" {
		t.Errorf("got %q, want %q", toks[0].Text, "foo/bar")
	}

	toks, _ = scanAll(t, "baz//comment\n")
	if toks[0].Text != "baz" {
		t.Errorf("got %q, want %q", toks[0].Text, "baz")
	}
}

func TestVariableAndBareDollar(t *testing.T) {
	toks, _ := scanAll(t, "$foo $ $bar")
	if toks[0].Type != Variable || toks[0].Text != "$foo" {
		t.Errorf("got %#v", toks[0])
	}
	if toks[1].Type != '$' {
		t.Errorf("bare $ should be punctuation, got %#v", toks[1])
	}
	if toks[2].Type != Variable || toks[2].Text != "$bar" {
		t.Errorf("got %#v", toks[2])
	}
}

func TestLineDirective(t *testing.T) {
	src := "a;\n#line 100 \"other.click\"\nb;\n"
	c := &diag.Counter{}
	lx := New([]byte(src), "orig:", c)

	first := lx.Next()
	if first.Landmark.Line != 1 {
		t.Fatalf("expected line 1, got %d", first.Landmark.Line)
	}
	lx.Next() // ';'
	second := lx.Next() // 'b', after the directive
	if second.Landmark.Line != 100 {
		t.Errorf("expected line 100 after directive, got %d", second.Landmark.Line)
	}
	if second.Landmark.File != "other.click:" {
		t.Errorf("expected filename other.click:, got %q", second.Landmark.File)
	}
}

func TestMalformedDirectiveReportsError(t *testing.T) {
	_, c := scanAll(t, "#line banana\na;\n")
	if c.OK() {
		t.Error("expected an error for a malformed directive")
	}
}

func TestBlockCommentAdvancesLineCount(t *testing.T) {
	toks, _ := scanAll(t, "a /* one\ntwo\nthree */ b;")
	if toks[1].Landmark.Line != 3 {
		t.Errorf("expected b on line 3, got %d", toks[1].Landmark.Line)
	}
}

func TestLexConfigHonorsParensAndQuotes(t *testing.T) {
	c := &diag.Counter{}
	lx := New([]byte(`(f(x), "a)", 'b)'));`), "t:", c)

	open := lx.Next()
	if !open.IsPunct('(') {
		t.Fatalf("expected leading `(', got %s", open.String())
	}

	got := lx.LexConfig()
	want := `f(x), "a)", 'b)'`
	if got != want {
		t.Errorf("LexConfig() = %q, want %q", got, want)
	}

	closeTok := lx.Next()
	if !closeTok.IsPunct(')') {
		t.Errorf("expected terminating `)', got %s", closeTok.String())
	}
}

func TestUnlexPushesBack(t *testing.T) {
	c := &diag.Counter{}
	lx := New([]byte("a b"), "t:", c)
	first := lx.Next()
	lx.Unlex(first)
	again := lx.Next()
	if again.Text != first.Text {
		t.Errorf("Unlex/Next mismatch: %q vs %q", again.Text, first.Text)
	}
}
