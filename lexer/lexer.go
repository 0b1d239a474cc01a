// Package lexer is the hand-written tokenizer for the configuration
// language: identifiers, sigil-prefixed variables, punctuation, the fixed
// multi-character lexemes and reserved words, preprocessor line
// directives, comment skipping, and balanced-paren configuration
// string capture.
package lexer

import (
	"strings"

	"github.com/ava12/clickconf/diag"
	"github.com/ava12/clickconf/internal/ring"
	"github.com/ava12/clickconf/model"
)

var reservedWords = map[string]int{
	"connectiontunnel": Tunnel,
	"elementclass":     Elementclass,
	"require":          Require,
}

// Lexer scans one in-memory text blob. It is not safe for concurrent use
// and is owned exclusively by a single parser instance, mirroring the
// single-threaded, non-reentrant model in spec.md §5.
type Lexer struct {
	data             []byte
	pos              int
	line             int
	filename         string
	originalFilename string

	pushback *ring.Ring[*Token]

	reporter diag.Reporter
}

// New creates a Lexer over content. filename is used for diagnostics; an
// empty filename renders as "line N" the way the original does.
func New(content []byte, filename string, r diag.Reporter) *Lexer {
	fn := filename
	if fn != "" {
		last := fn[len(fn)-1]
		if last != ':' && last != ' ' && last != '\t' {
			fn += ":"
		}
	}
	return &Lexer{
		data:             content,
		line:             1,
		filename:         fn,
		originalFilename: fn,
		pushback:         ring.New[*Token](),
		reporter:         r,
	}
}

// Landmark returns the landmark for the current lexing position.
func (l *Lexer) Landmark() model.Landmark {
	return model.Landmark{File: l.filename, Line: l.line}
}

// Unlex pushes a token back; the next call to Next returns it again.
// The pushback buffer is a ring, so several tokens may be unlexed in a
// row (the parser never needs more than a handful of lookahead slots).
func (l *Lexer) Unlex(t *Token) {
	l.pushback.Prepend(t)
}

func isIdentStart(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_' || c == '@'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || c == '/'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

// Next scans and returns the next token, advancing the cursor. Lexical
// problems (a bad preprocessor directive) are reported through the
// lexer's Reporter and resynced past; Next never fails.
func (l *Lexer) Next() *Token {
	if t, ok := l.pushback.First(); ok {
		return t
	}

	l.skipTrivia()
	if l.pos >= len(l.data) {
		return &Token{Type: EOF, Landmark: l.Landmark()}
	}

	lm := l.Landmark()
	start := l.pos
	c := l.data[l.pos]

	if isIdentStart(c) {
		return l.scanIdent(start, lm)
	}

	if c == '$' {
		return l.scanVariable(start, lm)
	}

	if tok, ok := l.scanFixedLexeme(lm); ok {
		return tok
	}

	l.pos++
	return &Token{Type: int(c), Text: string(c), Landmark: lm}
}

// skipTrivia consumes whitespace, line/block comments, and preprocessor
// line directives until real content or end of input is reached.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case c == '\n':
			l.pos++
			l.line++

		case c == '\r':
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '\n' {
				l.pos++
			}
			l.line++

		case isSpace(c):
			l.pos++

		case c == '/' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '/':
			l.skipLine()

		case c == '/' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '*':
			l.skipBlockComment()

		case c == '#' && l.atLineStart():
			l.scanDirective()

		default:
			return
		}
	}
}

// atLineStart reports whether the cursor sits right after a newline or
// at the very start of input — where a '#' may introduce a directive.
func (l *Lexer) atLineStart() bool {
	if l.pos == 0 {
		return true
	}
	prev := l.data[l.pos-1]
	return prev == '\n' || prev == '\r'
}

func (l *Lexer) skipLine() {
	for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
		l.pos++
	}
}

// skipBlockComment skips a /* ... */ span. Block comments do not nest;
// line counts still advance across embedded newlines.
func (l *Lexer) skipBlockComment() {
	l.pos += 2
	for l.pos < len(l.data) {
		if l.data[l.pos] == '*' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '/' {
			l.pos += 2
			return
		}
		if l.data[l.pos] == '\n' {
			l.line++
		} else if l.data[l.pos] == '\r' {
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '\n' {
				l.pos++
			}
			l.line++
		}
		l.pos++
	}
}

// scanDirective handles a '#' seen at column zero: `# [line] N ["file"]`.
// A malformed directive is reported and the rest of the line is skipped.
func (l *Lexer) scanDirective() {
	lm := l.Landmark()
	pos := l.pos + 1
	for pos < len(l.data) && isSpace(l.data[pos]) {
		pos++
	}
	if pos+4 <= len(l.data) && string(l.data[pos:pos+4]) == "line" &&
		(pos+4 == len(l.data) || isSpace(l.data[pos+4])) {
		pos += 4
		for pos < len(l.data) && isSpace(l.data[pos]) {
			pos++
		}
	}

	if pos >= len(l.data) || l.data[pos] < '0' || l.data[pos] > '9' {
		l.reporter.Error(diag.LexicalErrors, lm, "unknown preprocessor directive")
		l.pos = pos
		l.skipLine()
		return
	}

	lineNo := 0
	for pos < len(l.data) && l.data[pos] >= '0' && l.data[pos] <= '9' {
		lineNo = lineNo*10 + int(l.data[pos]-'0')
		pos++
	}
	lineNo--

	for pos < len(l.data) && isSpace(l.data[pos]) {
		pos++
	}
	if pos < len(l.data) && l.data[pos] == '"' {
		start := pos + 1
		pos++
		for pos < len(l.data) && l.data[pos] != '"' && l.data[pos] != '\n' && l.data[pos] != '\r' {
			if l.data[pos] == '\\' && pos+1 < len(l.data) && l.data[pos+1] != '\n' && l.data[pos+1] != '\r' {
				pos++
			}
			pos++
		}
		name := string(l.data[start:pos])
		if pos < len(l.data) && l.data[pos] == '"' {
			pos++
		}
		if name == "" {
			l.filename = l.originalFilename
		} else {
			if !strings.HasSuffix(name, ":") {
				name += ":"
			}
			l.filename = name
		}
	}

	l.skipLineFrom(pos)
	l.line = lineNo + 1
}

func (l *Lexer) skipLineFrom(pos int) {
	for pos < len(l.data) && l.data[pos] != '\n' && l.data[pos] != '\r' {
		pos++
	}
	if pos < len(l.data) && l.data[pos] == '\r' && pos+1 < len(l.data) && l.data[pos+1] == '\n' {
		pos++
	}
	if pos < len(l.data) {
		pos++
	}
	l.pos = pos
}

// scanIdent reads [A-Za-z0-9_@][A-Za-z0-9_/@]*, with '/' excluded as the
// final character and excluded whenever it would start a comment, then
// checks the three reserved words.
func (l *Lexer) scanIdent(start int, lm model.Landmark) *Token {
	pos := start + 1
	for pos < len(l.data) && isIdentCont(l.data[pos]) {
		if l.data[pos] == '/' && pos+1 < len(l.data) && (l.data[pos+1] == '/' || l.data[pos+1] == '*') {
			break
		}
		pos++
	}
	// trailing '/' is not part of the identifier
	for pos > start+1 && l.data[pos-1] == '/' {
		pos--
	}
	l.pos = pos
	text := string(l.data[start:pos])
	if typ, ok := reservedWords[text]; ok {
		return &Token{Type: typ, Text: text, Landmark: lm}
	}
	return &Token{Type: Ident, Text: text, Landmark: lm}
}

// scanVariable reads $[A-Za-z0-9_]+; a bare '$' is returned as the
// punctuation character '$'.
func (l *Lexer) scanVariable(start int, lm model.Landmark) *Token {
	pos := start + 1
	for pos < len(l.data) && isIdentStart(l.data[pos]) && l.data[pos] != '@' {
		pos++
	}
	if pos == start+1 {
		l.pos = pos
		return &Token{Type: '$', Text: "$", Landmark: lm}
	}
	l.pos = pos
	return &Token{Type: Variable, Text: string(l.data[start:pos]), Landmark: lm}
}

var fixedLexemes = []struct {
	text string
	typ  int
}{
	{"...", Ellipsis},
	{"->", Arrow},
	{"::", DoubleColon},
	{"||", DoubleBar},
}

func (l *Lexer) scanFixedLexeme(lm model.Landmark) (*Token, bool) {
	rest := l.data[l.pos:]
	for _, fl := range fixedLexemes {
		if len(rest) >= len(fl.text) && string(rest[:len(fl.text)]) == fl.text {
			l.pos += len(fl.text)
			return &Token{Type: fl.typ, Text: fl.text, Landmark: lm}, true
		}
	}
	return nil, false
}

// LexConfig captures a configuration string from the current position up
// to the matching close paren at depth zero, honoring comments and
// quoted spans (single-quoted spans are fully opaque; double-quoted spans
// additionally honor \" and \$ escapes). The terminating ')' is not
// consumed and not included in the result.
func (l *Lexer) LexConfig() string {
	start := l.pos
	pos := l.pos
	depth := 1
	var quote byte

	for pos < len(l.data) {
		c := l.data[pos]
		switch {
		case c == '(' && quote == 0:
			depth++
			pos++

		case c == ')' && quote == 0:
			depth--
			if depth == 0 {
				goto done
			}
			pos++

		case c == '\n':
			l.line++
			pos++

		case c == '\r':
			pos++
			if pos < len(l.data) && l.data[pos] == '\n' {
				pos++
			}
			l.line++

		case c == '/' && quote == 0 && pos+1 < len(l.data) && l.data[pos+1] == '/':
			for pos < len(l.data) && l.data[pos] != '\n' && l.data[pos] != '\r' {
				pos++
			}

		case c == '/' && quote == 0 && pos+1 < len(l.data) && l.data[pos+1] == '*':
			pos += 2
			for pos < len(l.data) && !(l.data[pos] == '*' && pos+1 < len(l.data) && l.data[pos+1] == '/') {
				if l.data[pos] == '\n' {
					l.line++
				}
				pos++
			}
			if pos < len(l.data) {
				pos += 2
			}

		case (c == '\'' || c == '"') && quote == 0:
			quote = c
			pos++

		case quote != 0 && c == quote:
			quote = 0
			pos++

		case quote == '"' && c == '\\' && pos+1 < len(l.data) && (l.data[pos+1] == '"' || l.data[pos+1] == '$'):
			pos += 2

		default:
			pos++
		}
	}

done:
	l.pos = pos
	return string(l.data[start:pos])
}
