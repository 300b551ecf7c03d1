// Package token defines the lexical tokens of the Cilantro source language.
//
// A Kind is the discriminant of a Token (for operators it also encodes the
// precedence level); Token itself carries whatever payload that kind
// requires (an identifier's text, an integer literal's value, an operator's
// literal text) along with the byte span it
// occupies in the source it was lexed from.
package token

import "fmt"

// Kind discriminates the variants of Token. Two tokens of the same Kind may
// still carry different payloads (e.g. two Kind == Ident tokens with
// different Ident fields).
type Kind int

const (
	// EOF is the sentinel kind appended to every token stream.
	EOF Kind = iota

	// Literals and identifiers.
	Int
	Bool
	Str
	Ident
	TypeLit // i64, bool, str, void

	// Keywords.
	KwLet
	KwFunc
	KwReturn
	KwIf

	// Punctuation.
	ParenL
	ParenR
	CurlyL
	CurlyR
	Comma
	Colon
	Arrow
	Assign

	// Operators, grouped by precedence level (spec.md §6, low to high).
	Op1 // == !=
	Op2 // && ||
	Op3 // + -
	Op4 // * /
	Unary
)

var kindNames = map[Kind]string{
	EOF:      "end of input",
	Int:      "integer literal",
	Bool:     "boolean literal",
	Str:      "string literal",
	Ident:    "identifier",
	TypeLit:  "type name",
	KwLet:    "'let'",
	KwFunc:   "'func'",
	KwReturn: "'return'",
	KwIf:     "'if'",
	ParenL:   "'('",
	ParenR:   "')'",
	CurlyL:   "'{'",
	CurlyR:   "'}'",
	Comma:    "','",
	Colon:    "':'",
	Arrow:    "'->'",
	Assign:   "'='",
	Op1:      "comparison operator",
	Op2:      "boolean operator",
	Op3:      "additive operator",
	Op4:      "multiplicative operator",
	Unary:    "unary operator",
}

// Human returns a human-readable name for the kind, suitable for use in
// diagnostics (e.g. "expected 'let' here, but found integer literal").
func (k Kind) Human() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) String() string {
	return k.Human()
}

// Token is a single lexical unit: a kind, its byte span in the source it was
// read from, and (for kinds that carry one) a payload.
//
// Only the payload field matching Kind is meaningful; the others are zero
// values. This mirrors the tagged-union shape described in spec.md §3 more
// directly than a Go interface hierarchy would, since a Token is a leaf value
// type copied freely through the parser and tree stages.
type Token struct {
	Start int
	End   int
	Kind  Kind

	// Payloads. At most one is meaningful, selected by Kind.
	IntVal   int64
	BoolVal  bool
	StrVal   string
	Ident    string
	TypeName string // for TypeLit: "i64", "bool", "str", "void"
	Op       string // for Op1..Op4/Unary: the literal operator text
}

// Lexeme returns the literal text this token carries, for diagnostics and for
// re-deriving operator/type semantics downstream.
func (t Token) Lexeme() string {
	switch t.Kind {
	case Int:
		return fmt.Sprintf("%d", t.IntVal)
	case Bool:
		return fmt.Sprintf("%t", t.BoolVal)
	case Str:
		return t.StrVal
	case Ident:
		return t.Ident
	case TypeLit:
		return t.TypeName
	case Op1, Op2, Op3, Op4, Unary:
		return t.Op
	default:
		return t.Kind.Human()
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@[%d:%d]", t.Kind.Human(), t.Lexeme(), t.Start, t.End)
}
