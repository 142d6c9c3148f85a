// Package token defines the lexical tokens of the Pulse component language.
package token

import "fmt"

// Type identifies the kind of a lexical token.
type Type int

const (
	EOF Type = iota
	Illegal

	// Literals and names
	Ident    // view, count, aria
	Number   // 42, 3.14, 1e9
	String   // "hello {name}"
	Template // `a ${b} c` (raw inner text)
	RawCSS   // balanced body of a style block, captured verbatim

	// Punctuation
	LBrace   // {
	RBrace   // }
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	Comma    // ,
	Colon    // :
	Semi     // ;
	Dot      // .
	Ellipsis // ...
	At       // @name (directive marker; Value holds the name)
	Hash     // #
	Amp      // &

	// Operators
	Assign       // =
	PlusAssign   // +=
	MinusAssign  // -=
	StarAssign   // *=
	SlashAssign  // /=
	PctAssign    // %=
	AndAssign    // &&=
	OrAssign     // ||=
	NullAssign   // ??=
	Arrow        // =>
	Question     // ?
	OrOr         // ||
	AndAnd       // &&
	Nullish      // ??
	EqEq         // ==
	NotEq        // !=
	EqEqEq       // ===
	NotEqEq      // !==
	Lt           // <
	Gt           // >
	LtEq         // <=
	GtEq         // >=
	Plus         // +
	Minus        // -
	Star         // *
	Slash        // /
	Percent      // %
	Not          // !
	Inc          // ++
	Dec          // --
)

var typeNames = map[Type]string{
	EOF:         "EOF",
	Illegal:     "Illegal",
	Ident:       "Ident",
	Number:      "Number",
	String:      "String",
	Template:    "Template",
	RawCSS:      "RawCSS",
	LBrace:      "{",
	RBrace:      "}",
	LParen:      "(",
	RParen:      ")",
	LBracket:    "[",
	RBracket:    "]",
	Comma:       ",",
	Colon:       ":",
	Semi:        ";",
	Dot:         ".",
	Ellipsis:    "...",
	At:          "@",
	Hash:        "#",
	Amp:         "&",
	Assign:      "=",
	PlusAssign:  "+=",
	MinusAssign: "-=",
	StarAssign:  "*=",
	SlashAssign: "/=",
	PctAssign:   "%=",
	AndAssign:   "&&=",
	OrAssign:    "||=",
	NullAssign:  "??=",
	Arrow:       "=>",
	Question:    "?",
	OrOr:        "||",
	AndAnd:      "&&",
	Nullish:     "??",
	EqEq:        "==",
	NotEq:       "!=",
	EqEqEq:      "===",
	NotEqEq:     "!==",
	Lt:          "<",
	Gt:          ">",
	LtEq:        "<=",
	GtEq:        ">=",
	Plus:        "+",
	Minus:       "-",
	Star:        "*",
	Slash:       "/",
	Percent:     "%",
	Not:         "!",
	Inc:         "++",
	Dec:         "--",
}

// String returns a readable name for the token type.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Token is a single lexical token. Line and Column are 1-based and refer to
// the first character of the token in the original source, even for tokens
// produced by re-lexing embedded text (interpolations, style bodies).
type Token struct {
	Type   Type
	Value  string
	Line   int
	Column int
}

// String renders the token for diagnostics and test failures.
func (t Token) String() string {
	switch t.Type {
	case Ident, Number, String, Template, At:
		return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Value, t.Line, t.Column)
	default:
		return fmt.Sprintf("%s@%d:%d", t.Type, t.Line, t.Column)
	}
}

// Is reports whether the token is an identifier with the given name.
// Block keywords (view, state, ...) are contextual, so parsers match on the
// identifier's value rather than on dedicated keyword token types; this keeps
// names like "from" usable as ordinary identifiers.
func (t Token) Is(name string) bool {
	return t.Type == Ident && t.Value == name
}
