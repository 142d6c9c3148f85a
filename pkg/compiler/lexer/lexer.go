// Package lexer converts Pulse source text into a token stream.
//
// The lexer is a pure function of its input: it holds no state across calls
// and never touches the filesystem. Style blocks are handled with a distinct
// tokenization mode: when a top-level `style {` is seen, the balanced body is
// captured verbatim as a single RawCSS token so the style parser (and the
// preprocessor fallback) always have the original text available.
package lexer

import (
	"fmt"
	"strings"

	"github.com/pulselang/pulse/pkg/compiler/token"
)

// Error is a lexical error with a 1-based source position.
type Error struct {
	Msg    string
	Line   int
	Column int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Tokenize lexes the full source text and returns the token stream,
// terminated by an EOF token. The returned error, if any, is an *Error.
func Tokenize(src string) ([]token.Token, error) {
	return TokenizeAt(src, 1, 1)
}

// TokenizeAt lexes text that was embedded in a larger source (an
// interpolation body or a directive argument), offsetting all positions so
// diagnostics point into the original file.
func TokenizeAt(src string, line, col int) ([]token.Token, error) {
	l := &lexer{src: src, line: line, col: col}
	return l.run()
}

type lexer struct {
	src    string
	pos    int
	line   int
	col    int
	depth  int // brace nesting, used to spot top-level style blocks
	tokens []token.Token
}

func (l *lexer) run() ([]token.Token, error) {
	for {
		if err := l.skipSpace(); err != nil {
			return nil, err
		}
		if l.pos >= len(l.src) {
			l.emit(token.EOF, "")
			return l.tokens, nil
		}
		startLine, startCol := l.line, l.col
		ch := l.src[l.pos]
		switch {
		case isIdentStart(ch):
			name := l.readIdent()
			l.emitAt(token.Ident, name, startLine, startCol)
			if name == "style" && l.depth == 0 {
				if err := l.captureStyleBlock(); err != nil {
					return nil, err
				}
			}
		case ch >= '0' && ch <= '9':
			l.emitAt(token.Number, l.readNumber(), startLine, startCol)
		case ch == '"' || ch == '\'':
			val, err := l.readString(ch)
			if err != nil {
				return nil, err
			}
			l.emitAt(token.String, val, startLine, startCol)
		case ch == '`':
			val, err := l.readTemplate()
			if err != nil {
				return nil, err
			}
			l.emitAt(token.Template, val, startLine, startCol)
		case ch == '@':
			l.advance()
			name := l.readDirectiveName()
			if name == "" {
				return nil, l.errorf(startLine, startCol, "Expected a directive name after '@'")
			}
			l.emitAt(token.At, name, startLine, startCol)
		default:
			if err := l.readOperator(startLine, startCol); err != nil {
				return nil, err
			}
		}
	}
}

// operators holds multi-character operators, longest first. Scanning tries
// them in order so "===" wins over "==" wins over "=".
var operators = []struct {
	text string
	typ  token.Type
}{
	{"...", token.Ellipsis},
	{"===", token.EqEqEq},
	{"!==", token.NotEqEq},
	{"&&=", token.AndAssign},
	{"||=", token.OrAssign},
	{"??=", token.NullAssign},
	{"=>", token.Arrow},
	{"==", token.EqEq},
	{"!=", token.NotEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"??", token.Nullish},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PctAssign},
	{"++", token.Inc},
	{"--", token.Dec},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{"(", token.LParen},
	{")", token.RParen},
	{"[", token.LBracket},
	{"]", token.RBracket},
	{",", token.Comma},
	{":", token.Colon},
	{";", token.Semi},
	{".", token.Dot},
	{"#", token.Hash},
	{"&", token.Amp},
	{"=", token.Assign},
	{"?", token.Question},
	{"<", token.Lt},
	{">", token.Gt},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"!", token.Not},
}

func (l *lexer) readOperator(line, col int) error {
	rest := l.src[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			for range op.text {
				l.advance()
			}
			switch op.typ {
			case token.LBrace:
				l.depth++
			case token.RBrace:
				l.depth--
			}
			l.emitAt(op.typ, op.text, line, col)
			return nil
		}
	}
	return l.errorf(line, col, "Unexpected character %q", rune(l.src[l.pos]))
}

func (l *lexer) skipSpace() error {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		case ch == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			for {
				if l.pos+1 >= len(l.src) {
					return l.errorf(line, col, "Unterminated block comment")
				}
				if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) readIdent() string {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.advance()
	}
	return l.src[start:l.pos]
}

// readDirectiveName reads the name after '@'. Directive names allow hyphens
// so @else-if lexes as a single token.
func (l *lexer) readDirectiveName() string {
	start := l.pos
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if isIdentPart(ch) || (ch == '-' && l.pos > start) {
			l.advance()
			continue
		}
		break
	}
	return l.src[start:l.pos]
}

func (l *lexer) readNumber() string {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.advance()
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
		l.advance()
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.advance()
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		mark := l.pos
		l.advance()
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.advance()
		}
		if l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
				l.advance()
			}
		} else {
			// not an exponent after all, rewind the 'e'
			l.rewindTo(mark)
		}
	}
	return l.src[start:l.pos]
}

// readString reads a quoted string and returns the raw inner text with
// escape sequences left intact; consumers unescape as needed (the view
// parser must still see `\{` to distinguish it from an interpolation).
func (l *lexer) readString(quote byte) (string, error) {
	line, col := l.line, l.col
	l.advance() // opening quote
	start := l.pos
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == '\\' && l.pos+1 < len(l.src) {
			l.advance()
			l.advance()
			continue
		}
		if ch == '\n' {
			return "", l.errorf(line, col, "Unterminated string literal")
		}
		if ch == quote {
			val := l.src[start:l.pos]
			l.advance() // closing quote
			return val, nil
		}
		l.advance()
	}
	return "", l.errorf(line, col, "Unterminated string literal")
}

func (l *lexer) readTemplate() (string, error) {
	line, col := l.line, l.col
	l.advance() // opening backtick
	start := l.pos
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == '\\' && l.pos+1 < len(l.src) {
			l.advance()
			l.advance()
			continue
		}
		if ch == '`' {
			val := l.src[start:l.pos]
			l.advance()
			return val, nil
		}
		l.advance()
	}
	return "", l.errorf(line, col, "Unterminated template literal")
}

// captureStyleBlock switches to the CSS tokenization mode: after the `style`
// identifier it emits LBrace, one RawCSS token holding the balanced body
// verbatim, and RBrace. Brace counting is string- and comment-aware so
// content like `content: "}"` does not end the block early.
func (l *lexer) captureStyleBlock() error {
	if err := l.skipSpace(); err != nil {
		return err
	}
	if l.pos >= len(l.src) || l.src[l.pos] != '{' {
		return nil // not a block, let the parser complain
	}
	braceLine, braceCol := l.line, l.col
	l.advance()
	l.emitAt(token.LBrace, "{", braceLine, braceCol)

	bodyLine, bodyCol := l.line, l.col
	start := l.pos
	depth := 1
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch ch {
		case '"', '\'':
			quote := ch
			l.advance()
			for l.pos < len(l.src) && l.src[l.pos] != quote && l.src[l.pos] != '\n' {
				if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
					l.advance()
				}
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
			}
		case '/':
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '*' {
				l.advance()
				l.advance()
				for l.pos+1 < len(l.src) && !(l.src[l.pos] == '*' && l.src[l.pos+1] == '/') {
					l.advance()
				}
				if l.pos+1 < len(l.src) {
					l.advance()
					l.advance()
				}
			} else {
				l.advance()
			}
		case '{':
			depth++
			l.advance()
		case '}':
			depth--
			if depth == 0 {
				l.emitAt(token.RawCSS, l.src[start:l.pos], bodyLine, bodyCol)
				closeLine, closeCol := l.line, l.col
				l.advance()
				l.emitAt(token.RBrace, "}", closeLine, closeCol)
				return nil
			}
			l.advance()
		default:
			l.advance()
		}
	}
	return l.errorf(braceLine, braceCol, "Unterminated style block")
}

func (l *lexer) advance() {
	if l.pos < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// rewindTo moves the cursor back to an earlier offset. Only used for the
// single-character lookahead in number exponents, so recomputing the column
// by scanning back to the line start is cheap.
func (l *lexer) rewindTo(mark int) {
	for l.pos > mark {
		l.pos--
		if l.src[l.pos] == '\n' {
			l.line--
		}
	}
	lineStart := strings.LastIndexByte(l.src[:l.pos], '\n') + 1
	l.col = l.pos - lineStart + 1
}

func (l *lexer) emit(typ token.Type, val string) {
	l.emitAt(typ, val, l.line, l.col)
}

func (l *lexer) emitAt(typ token.Type, val string, line, col int) {
	l.tokens = append(l.tokens, token.Token{Type: typ, Value: val, Line: line, Column: col})
}

func (l *lexer) errorf(line, col int, format string, args ...interface{}) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Line: line, Column: col}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
