// Package parser is the recursive-descent front end: it drives the lexer,
// populates the class table and provisional graph, and produces the
// requirement list, ready for the expansion pass to turn into a router.
package parser

import (
	"strconv"

	"github.com/ava12/clickconf/argv"
	"github.com/ava12/clickconf/classes"
	"github.com/ava12/clickconf/diag"
	"github.com/ava12/clickconf/graph"
	"github.com/ava12/clickconf/lexer"
	"github.com/ava12/clickconf/model"
)

// RequireFunc is the optional callback invoked once per require() word as
// it is parsed. It may itself report through the parser's Reporter.
type RequireFunc func(word string, lm model.Landmark)

// Parser ties the lexer, class table, and provisional graph together for
// one input. It is single-use: construct with New, drive with
// ParseStatement until it returns false, then read Graph/Classes/
// Requirements.
type Parser struct {
	lex      *lexer.Lexer
	classes  *classes.ClassTable
	graph    *graph.Graph
	reporter diag.Reporter

	compoundDepth int
	requirements  []string
	requireHook   RequireFunc
}

// New begins parsing content. filename is used for diagnostics. ct is the
// class table to populate (callers may pre-seed it with host-provided
// built-in classes before parsing); pass classes.New() for a fresh table.
// New does not open a class-table scope of its own; callers that want the
// scoped-acquisition contract (every class declared during this parse
// rolled back afterward) should go through BeginParse/EndParse instead.
func New(content []byte, filename string, ct *classes.ClassTable, r diag.Reporter, hook RequireFunc) *Parser {
	p := &Parser{
		classes:     ct,
		graph:       graph.New(0),
		reporter:    r,
		requireHook: hook,
	}
	p.lex = lexer.New(content, filename, r)
	return p
}

// Cookie is the scope token BeginParse returns and the matching EndParse
// consumes. It is opaque to callers; its only job is to be handed back.
type Cookie struct {
	mark  int
	extra any
}

// Extra returns the host value the matching BeginParse call was given.
func (c Cookie) Extra() any { return c.extra }

// BeginParse installs content as a new parse over ct and opens a lexical
// scope on ct, so every class the parse itself declares (elementclass
// bodies, synonyms) is undone by the matching EndParse — the scoped-
// acquisition contract of spec §5/§6: every BeginParse call returns a
// cookie, and the paired EndParse(cookie) restores the class table to
// exactly its pre-call state. extra is an opaque host value threaded
// through unused by the parser itself; retrieve it later via
// cookie.Extra().
func BeginParse(content []byte, filename string, ct *classes.ClassTable, r diag.Reporter, hook RequireFunc, extra any) (*Parser, Cookie) {
	mark := ct.LexicalScopingIn()
	p := New(content, filename, ct, r, hook)
	return p, Cookie{mark: mark, extra: extra}
}

// EndParse tears down the parser's provisional state and closes the scope
// cookie opened by the matching BeginParse, restoring the class table to
// its pre-BeginParse snapshot. Callers that need the expanded router
// output must call CreateRouter (see the expand package) before calling
// EndParse, since EndParse also discards the provisional graph.
func (p *Parser) EndParse(cookie Cookie) {
	p.classes.LexicalScopingOut(cookie.mark)
	p.graph = nil
	p.requirements = nil
}

// Graph returns the parser's accumulated provisional graph.
func (p *Parser) Graph() *graph.Graph { return p.graph }

// Classes returns the class table the parser populated.
func (p *Parser) Classes() *classes.ClassTable { return p.classes }

// Requirements returns the words captured from require() directives, in
// the order they were parsed.
func (p *Parser) Requirements() []string { return p.requirements }

// AddElementType exposes class-table registration to callers that want to
// pre-declare built-in classes before parsing begins.
func (p *Parser) AddElementType(name string, body classes.ClassBody) int {
	return p.classes.AddElementType(name, body)
}

// ElementType looks up a class name in the current scope.
func (p *Parser) ElementType(name string) (int, bool) {
	return p.classes.ElementType(name)
}

// ParseStatement parses one top-level statement. It returns false when it
// hits a closing '}' (left unconsumed for the caller, i.e. a compound
// body) or end of input; true otherwise, meaning the caller should call
// again.
func (p *Parser) ParseStatement() bool {
	return p.parseStatementInto(p.graph)
}

// parseStatementInto is ParseStatement generalized over which graph new
// elements are recorded into — the top-level graph, or a compound body
// currently being captured.
func (p *Parser) parseStatementInto(g *graph.Graph) bool {
	tok := p.lex.Next()
	switch {
	case tok.Is(lexer.EOF):
		p.lex.Unlex(tok)
		return false

	case tok.IsPunct('}'):
		p.lex.Unlex(tok)
		return false

	case tok.IsPunct(';'):
		return true

	case tok.Is(lexer.Elementclass):
		p.yElementclass()
		return true

	case tok.Is(lexer.Tunnel):
		p.yTunnel(g)
		return true

	case tok.Is(lexer.Require):
		p.yRequire()
		return true

	default:
		p.lex.Unlex(tok)
		p.yConnection(g)
		return true
	}
}

// yConnection parses: [port] element { '->' [port] element }* terminator.
// A leading identifier that turns out to introduce a declaration
// ("a, b :: Class(cfg)") is handled as a declaration instead.
func (p *Parser) yConnection(g *graph.Graph) {
	if p.tryDeclaration(g) {
		return
	}

	first, ok := p.yPortedElement(g)
	if !ok {
		return
	}
	prevEl, prevPort := first.Element, first.InPort

	for {
		tok := p.lex.Next()
		if !tok.Is(lexer.Arrow) {
			p.lex.Unlex(tok)
			break
		}

		next, ok := p.yPortedElement(g)
		if !ok {
			p.reporter.Error(diag.SyntaxErrors, tok.Landmark, "missing element after `->'")
			break
		}
		g.Connect(prevEl, prevPort, next.Element, next.InPort)
		prevEl, prevPort = next.Element, next.InPort
	}

	p.expectTerminator()
}

func (p *Parser) expectTerminator() {
	tok := p.lex.Next()
	if !tok.IsPunct(';') {
		if tok.Is(lexer.EOF) || tok.IsPunct('}') {
			p.lex.Unlex(tok)
			return
		}
		p.reporter.Error(diag.SyntaxErrors, tok.Landmark, "expected `;', found %s", tok.String())
		p.lex.Unlex(tok)
	}
}

// portedElement is one parsed `[port] element` item in a connection chain.
type portedElement struct {
	Element int
	InPort  int // the port this element was addressed by, if any ([N] before it); -1 if none
}

// tryPort consumes an optional leading '[' integer ']', returning -1 if
// absent.
func (p *Parser) tryPort() int {
	tok := p.lex.Next()
	if !tok.IsPunct('[') {
		p.lex.Unlex(tok)
		return -1
	}
	numTok := p.lex.Next()
	n, err := strconv.Atoi(numTok.Text)
	if numTok.Type != lexer.Ident || err != nil {
		p.reporter.Error(diag.SyntaxErrors, numTok.Landmark, "expected port number, found %s", numTok.String())
		n = 0
	}
	closeTok := p.lex.Next()
	if !closeTok.IsPunct(']') {
		p.reporter.Error(diag.SyntaxErrors, closeTok.Landmark, "expected `]', found %s", closeTok.String())
		p.lex.Unlex(closeTok)
	}
	return n
}

// yPortedElement parses `[port] element` where element is either a
// reference to a declared/class-named element or an inline `{ compound }`.
func (p *Parser) yPortedElement(g *graph.Graph) (portedElement, bool) {
	port := p.tryPort()

	tok := p.lex.Next()
	switch {
	case tok.Is(lexer.Ident):
		idx := p.resolveElementReference(g, tok)
		return portedElement{Element: idx, InPort: port}, true

	case tok.IsPunct('{'):
		idx := p.yInlineCompound(g, tok.Landmark)
		return portedElement{Element: idx, InPort: port}, true

	default:
		p.reporter.Error(diag.SyntaxErrors, tok.Landmark, "expected element, found %s", tok.String())
		p.lex.Unlex(tok)
		return portedElement{}, false
	}
}

// resolveElementReference handles a bare identifier appearing in
// expression position: either an existing element name, or a class name
// (producing a fresh anonymous element), or the start of a declaration,
// or an error.
func (p *Parser) resolveElementReference(g *graph.Graph, tok *lexer.Token) int {
	if idx, ok := g.Lookup(tok.Text); ok {
		return idx
	}
	if cls, ok := p.classes.ElementType(tok.Text); ok {
		name := g.AnonymousName(tok.Text)
		idx, _ := g.GetElement(name, cls, tok.Landmark)
		if config, ok := p.tryElementConfig(); ok {
			g.Declare(idx, cls, config)
		}
		return idx
	}

	next := p.lex.Next()
	if next.Is(lexer.DoubleColon) || next.IsPunct(',') {
		p.lex.Unlex(next)
		p.finishDeclarationFrom(g, tok)
		idx, _ := g.Lookup(tok.Text)
		return idx
	}
	p.lex.Unlex(next)

	p.reporter.Error(diag.NameErrors, tok.Landmark, "undeclared element `%s'", tok.Text)
	idx, _ := g.GetElement(tok.Text, model.ErrorType, tok.Landmark)
	return idx
}

// tryElementConfig consumes an optional trailing '(' config ')' after a
// bare class-reference element, matching the "element := ident ['('
// config ')']" grammar rule for anonymous instantiation.
func (p *Parser) tryElementConfig() (string, bool) {
	open := p.lex.Next()
	if !open.IsPunct('(') {
		p.lex.Unlex(open)
		return "", false
	}
	config := p.lex.LexConfig()
	closeTok := p.lex.Next()
	if !closeTok.IsPunct(')') {
		p.reporter.Error(diag.SyntaxErrors, closeTok.Landmark, "expected `)'")
		p.lex.Unlex(closeTok)
	}
	return config, true
}

// tryDeclaration peeks for "ident { ',' ident }* '::'" at the current
// position and, if found, consumes and completes the full declaration.
// Returns false (having unlexed everything) if the input doesn't open a
// declaration.
func (p *Parser) tryDeclaration(g *graph.Graph) bool {
	first := p.lex.Next()
	if !first.Is(lexer.Ident) {
		p.lex.Unlex(first)
		return false
	}
	if _, existsAsElement := g.Lookup(first.Text); existsAsElement {
		p.lex.Unlex(first)
		return false
	}

	names := []*lexer.Token{first}
	for {
		tok := p.lex.Next()
		if tok.IsPunct(',') {
			nameTok := p.lex.Next()
			if !nameTok.Is(lexer.Ident) {
				p.reporter.Error(diag.SyntaxErrors, nameTok.Landmark, "expected identifier after `,'")
				p.lex.Unlex(nameTok)
				break
			}
			names = append(names, nameTok)
			continue
		}
		if tok.Is(lexer.DoubleColon) {
			p.finishDeclaration(g, names)
			return true
		}
		// not a declaration after all: unlex everything consumed.
		p.lex.Unlex(tok)
		for i := len(names) - 1; i >= 1; i-- {
			p.lex.Unlex(names[i])
			p.lex.Unlex(&lexer.Token{Type: ','})
		}
		p.lex.Unlex(names[0])
		return false
	}
	return true
}

// finishDeclarationFrom re-enters the declaration path when
// resolveElementReference has already consumed the first identifier and
// peeked a ',' or '::' after it.
func (p *Parser) finishDeclarationFrom(g *graph.Graph, first *lexer.Token) {
	names := []*lexer.Token{first}
	for {
		tok := p.lex.Next()
		if tok.IsPunct(',') {
			nameTok := p.lex.Next()
			if nameTok.Is(lexer.Ident) {
				names = append(names, nameTok)
				continue
			}
			p.reporter.Error(diag.SyntaxErrors, nameTok.Landmark, "expected identifier after `,'")
			p.lex.Unlex(nameTok)
			continue
		}
		if tok.Is(lexer.DoubleColon) {
			break
		}
		p.lex.Unlex(tok)
		break
	}
	p.finishDeclaration(g, names)
}

// finishDeclaration reads the class (named or inline compound) and
// optional configuration following '::' and binds every name in names to
// the resulting element via GetElement/Declare.
func (p *Parser) finishDeclaration(g *graph.Graph, names []*lexer.Token) {
	tok := p.lex.Next()
	var cls int
	switch {
	case tok.Is(lexer.Ident):
		cls = p.forceElementType(tok.Text, tok.Landmark)

	case tok.IsPunct('{'):
		anon := g.AnonymousName("class")
		cls = p.yCompound(anon, tok.Landmark)

	default:
		p.reporter.Error(diag.SyntaxErrors, tok.Landmark, "expected class name or `{', found %s", tok.String())
		p.lex.Unlex(tok)
		cls = model.ErrorType
	}

	config := ""
	paren := p.lex.Next()
	if paren.IsPunct('(') {
		config = p.lex.LexConfig()
		closeTok := p.lex.Next()
		if !closeTok.IsPunct(')') {
			p.reporter.Error(diag.SyntaxErrors, closeTok.Landmark, "expected `)'")
			p.lex.Unlex(closeTok)
		}
	} else {
		p.lex.Unlex(paren)
	}

	for _, nameTok := range names {
		if _, existed := g.Lookup(nameTok.Text); existed {
			p.reporter.Error(diag.NameErrors, nameTok.Landmark, "element `%s' redeclared", nameTok.Text)
			continue
		}
		idx, _ := g.GetElement(nameTok.Text, cls, nameTok.Landmark)
		g.Declare(idx, cls, config)
	}
}

// forceElementType resolves name to a class id, reporting and installing
// an Error placeholder class if it is unknown.
func (p *Parser) forceElementType(name string, lm model.Landmark) int {
	if id, ok := p.classes.ElementType(name); ok {
		return id
	}
	p.reporter.Error(diag.NameErrors, lm, "undeclared class `%s'", name)
	return p.classes.ForceElementType(name, classes.ClassBody{Kind: classes.Builtin})
}

// yInlineCompound parses an anonymous `{ compound }` used directly in
// expression position, and returns the index of a fresh anonymous
// element instantiating it.
func (p *Parser) yInlineCompound(g *graph.Graph, lm model.Landmark) int {
	anon := g.AnonymousName("class")
	cls := p.yCompound(anon, lm)
	name := g.AnonymousName(anon)
	idx, _ := g.GetElement(name, cls, lm)
	return idx
}

// yElementclass parses: 'elementclass' ident ( '{' compound '}' | ident ).
func (p *Parser) yElementclass() {
	nameTok := p.lex.Next()
	if !nameTok.Is(lexer.Ident) {
		p.reporter.Error(diag.SyntaxErrors, nameTok.Landmark, "expected class name after `elementclass'")
		p.lex.Unlex(nameTok)
		return
	}

	tok := p.lex.Next()
	switch {
	case tok.IsPunct('{'):
		p.lex.Unlex(tok)
		p.yCompound(nameTok.Text, nameTok.Landmark)

	case tok.Is(lexer.Ident):
		target, ok := p.classes.ElementType(tok.Text)
		if !ok {
			p.reporter.Error(diag.NameErrors, tok.Landmark, "undeclared class `%s'", tok.Text)
			target = model.ErrorType
		}
		p.classes.AddElementType(nameTok.Text, classes.ClassBody{Kind: classes.Synonym, Target: target})

	default:
		p.reporter.Error(diag.SyntaxErrors, tok.Landmark, "expected `{' or class name after `elementclass %s'", nameTok.Text)
		p.lex.Unlex(tok)
	}
}

// yCompound parses: [ '...' '||' ] body { '||' body }*, registering each
// body as a chained overload of name, and returns the id of the first
// body parsed (the id callers use when name itself was synthesized for
// an inline or "a :: { ... }" compound).
func (p *Parser) yCompound(name string, lm model.Landmark) int {
	extend := false
	tok := p.lex.Next()
	if tok.Is(lexer.Ellipsis) {
		extend = true
		bar := p.lex.Next()
		if !bar.Is(lexer.DoubleBar) {
			p.reporter.Error(diag.SyntaxErrors, bar.Landmark, "expected `||' after `...'")
			p.lex.Unlex(bar)
		}
	} else {
		p.lex.Unlex(tok)
	}

	if extend {
		if _, ok := p.classes.ElementType(name); !ok {
			p.reporter.Error(diag.NameErrors, lm, "cannot extend unknown class `%s'", name)
		}
	}

	firstID := -1
	var newIDs []int
	for {
		id := p.yCompoundBody(name, lm)
		if firstID < 0 {
			firstID = id
		}
		newIDs = append(newIDs, id)

		bar := p.lex.Next()
		if !bar.Is(lexer.DoubleBar) {
			p.lex.Unlex(bar)
			break
		}
	}

	p.checkDuplicatesUntil(newIDs)
	return firstID
}

// yCompoundBody parses one `{ [ $a, $b | ] statement* }` body, captures
// it as a *classes.Compound, and registers it under name (chaining onto
// any existing overload of that name).
func (p *Parser) yCompoundBody(name string, lm model.Landmark) int {
	open := p.lex.Next()
	if !open.IsPunct('{') {
		p.reporter.Error(diag.SyntaxErrors, open.Landmark, "expected `{' to open compound body")
		p.lex.Unlex(open)
	}

	scopeCookie := p.classes.LexicalScopingIn()
	p.compoundDepth++

	body := graph.New(2)
	body.GetElement("input", model.TunnelType, lm)
	body.GetElement("output", model.TunnelType, lm)

	formals := p.tryFormals()

	for p.parseStatementInto(body) {
	}

	close := p.lex.Next()
	if !close.IsPunct('}') {
		p.reporter.Error(diag.SyntaxErrors, close.Landmark, "expected `}' to close compound body")
		p.lex.Unlex(close)
	}

	compound := &classes.Compound{
		Formals: formals,
		Body:    body,
		Depth:   p.compoundDepth,
	}
	compound.Finish(p.reporter, lm)

	p.compoundDepth--
	p.classes.LexicalScopingOut(scopeCookie)

	return p.classes.AddElementType(name, classes.ClassBody{Kind: classes.CompoundKind, Body: compound})
}

// tryFormals consumes an optional "$a, $b | " prefix at the start of a
// compound body.
func (p *Parser) tryFormals() []string {
	tok := p.lex.Next()
	if !tok.Is(lexer.Variable) {
		p.lex.Unlex(tok)
		return nil
	}
	formals := []string{tok.Text}
	for {
		next := p.lex.Next()
		if next.IsPunct(',') {
			v := p.lex.Next()
			if v.Is(lexer.Variable) {
				formals = append(formals, v.Text)
				continue
			}
			p.reporter.Error(diag.SyntaxErrors, v.Landmark, "expected `$name' after `,'")
			p.lex.Unlex(v)
			continue
		}
		if next.IsPunct('|') {
			return formals
		}
		p.reporter.Error(diag.SyntaxErrors, next.Landmark, "expected `,' or `|' in formal parameter list")
		p.lex.Unlex(next)
		return formals
	}
}

// checkDuplicatesUntil reports any pair of overloads on the chain headed
// by the last of newIDs (spanning the newly added bodies and whatever
// pre-existing overloads they chain onto) sharing the same
// (ninputs, noutputs, nformals) signature.
func (p *Parser) checkDuplicatesUntil(newIDs []int) {
	if len(newIDs) == 0 {
		return
	}
	chain := p.classes.OverloadChain(newIDs[len(newIDs)-1])
	seen := map[[3]int]bool{}
	for i := len(chain) - 1; i >= 0; i-- {
		id := chain[i]
		body := p.classes.Body(id)
		if body.Kind != classes.CompoundKind {
			continue
		}
		c := body.Body
		sig := [3]int{c.NInputs, c.NOutputs, len(c.Formals)}
		if seen[sig] {
			p.reporter.Error(diag.OverloadErrors, model.Landmark{}, "duplicate overload signature (%d inputs, %d outputs, %d args) for `%s'",
				sig[0], sig[1], sig[2], p.classes.Name(id))
		}
		seen[sig] = true
	}
}

// yTunnel parses: 'connectiontunnel' ident '->' ident { ',' ident '->' ident }*.
func (p *Parser) yTunnel(g *graph.Graph) {
	for {
		inTok := p.lex.Next()
		if !inTok.Is(lexer.Ident) {
			p.reporter.Error(diag.SyntaxErrors, inTok.Landmark, "expected tunnel name, found %s", inTok.String())
			p.lex.Unlex(inTok)
			return
		}
		arrow := p.lex.Next()
		if !arrow.Is(lexer.Arrow) {
			p.reporter.Error(diag.SyntaxErrors, arrow.Landmark, "expected `->' in tunnel declaration")
			p.lex.Unlex(arrow)
			return
		}
		outTok := p.lex.Next()
		if !outTok.Is(lexer.Ident) {
			p.reporter.Error(diag.SyntaxErrors, outTok.Landmark, "expected tunnel name, found %s", outTok.String())
			p.lex.Unlex(outTok)
			return
		}

		p.addTunnel(g, inTok, outTok)

		next := p.lex.Next()
		if !next.IsPunct(',') {
			p.lex.Unlex(next)
			break
		}
	}
	p.expectTerminator()
}

func (p *Parser) addTunnel(g *graph.Graph, inTok, outTok *lexer.Token) {
	if _, existed := g.Lookup(inTok.Text); existed {
		p.reporter.Error(diag.TunnelErrors, inTok.Landmark, "`%s' already declared", inTok.Text)
	}
	if _, existed := g.Lookup(outTok.Text); existed {
		p.reporter.Error(diag.TunnelErrors, outTok.Landmark, "`%s' already declared", outTok.Text)
	}
	inIdx, _ := g.GetElement(inTok.Text, model.TunnelType, inTok.Landmark)
	outIdx, _ := g.GetElement(outTok.Text, model.TunnelType, outTok.Landmark)
	// Both endpoints share one registry key (the input side's name) so
	// they land on the same tunnelPair instead of two unpaired halves.
	g.RegisterTunnelInput(inTok.Text, inIdx, inTok.Landmark, p.reporter)
	g.RegisterTunnelOutput(inTok.Text, outIdx, outTok.Landmark, p.reporter)
}

// yRequire parses: 'require' '(' config ')', splitting config into
// whitespace-separated words, each of which must be a single identifier.
func (p *Parser) yRequire() {
	open := p.lex.Next()
	if !open.IsPunct('(') {
		p.reporter.Error(diag.SyntaxErrors, open.Landmark, "expected `(' after `require'")
		p.lex.Unlex(open)
		return
	}
	lm := open.Landmark
	config := p.lex.LexConfig()
	closeTok := p.lex.Next()
	if !closeTok.IsPunct(')') {
		p.reporter.Error(diag.SyntaxErrors, closeTok.Landmark, "expected `)'")
		p.lex.Unlex(closeTok)
	}

	for _, word := range argv.Words(config) {
		if !isValidIdent(word) {
			p.reporter.Error(diag.SyntaxErrors, lm, "malformed require() word %q", word)
			continue
		}
		p.requirements = append(p.requirements, word)
		if p.requireHook != nil {
			p.requireHook(word, lm)
		}
	}

	p.expectTerminator()
}

func isValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_' || c == '@' || c == '/'
		if !ok {
			return false
		}
	}
	return true
}
