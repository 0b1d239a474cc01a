package lexer

import "github.com/ava12/clickconf/model"

// Token kinds for everything that is not plain punctuation. Punctuation
// tokens use their own byte value as Type, so these all sit below zero —
// the same scheme the teacher package used for EofTokenType/EoiTokenType.
const (
	Ident = -10 - iota
	Variable
	Arrow        // ->
	DoubleColon  // ::
	DoubleBar    // ||
	Ellipsis     // ...
	Tunnel       // connectiontunnel
	Elementclass // elementclass
	Require      // require
	EOF
)

// Token is a tagged union over identifier, variable, punctuation, the
// fixed multi-character lexemes, the three reserved words, and EOF.
// Punctuation tokens carry their single byte as Type.
type Token struct {
	Type     int
	Text     string
	Landmark model.Landmark
}

func (t *Token) Is(typ int) bool {
	return t.Type == typ
}

// IsPunct reports whether the token is a single punctuation byte equal
// to c, e.g. tok.IsPunct('(').
func (t *Token) IsPunct(c byte) bool {
	return t.Type == int(c)
}

// TypeName renders a token kind for error messages. Ident and Variable
// map to distinct names here — the original lexer.cc maps both to
// "identifier" via an unreachable second branch; that bug is not
// reproduced (spec.md §9, Open Question).
func TypeName(typ int) string {
	switch typ {
	case Ident:
		return "identifier"
	case Variable:
		return "variable"
	case Arrow:
		return "`->'"
	case DoubleColon:
		return "`::'"
	case DoubleBar:
		return "`||'"
	case Ellipsis:
		return "`...'"
	case Tunnel:
		return "`connectiontunnel'"
	case Elementclass:
		return "`elementclass'"
	case Require:
		return "`require'"
	case EOF:
		return "end of file"
	default:
		if typ >= 0 && typ < 256 {
			return "`" + string(rune(typ)) + "'"
		}
		return "?"
	}
}

func (t *Token) String() string {
	return TypeName(t.Type)
}
