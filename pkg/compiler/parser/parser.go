// Package parser turns Pulse token streams into the syntax tree defined in
// pkg/compiler/ast. It is a recursive descent parser with precedence
// climbing for expressions and a cheap checkpoint/rewind scheme for the
// arrow-function lookahead.
package parser

import (
	"fmt"

	"github.com/pulselang/pulse/pkg/compiler/ast"
	"github.com/pulselang/pulse/pkg/compiler/lexer"
	"github.com/pulselang/pulse/pkg/compiler/token"
)

// Docs anchors attached to parse errors so tooling can link users to the
// relevant manual section.
const (
	DocsParse     = "https://pulselang.dev/docs/errors#parse"
	DocsDuplicate = "https://pulselang.dev/docs/errors#duplicate-block"
	DocsDirective = "https://pulselang.dev/docs/errors#directives"
)

// ParseError is a structural parse error with a 1-based source position.
type ParseError struct {
	Msg    string
	Line   int
	Column int
	Docs   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parser consumes a token slice. The zero value is not usable; construct
// with New.
type Parser struct {
	toks []token.Token
	pos  int
	errs []*ParseError
}

// New creates a parser over a token stream produced by the lexer. The
// stream must be EOF-terminated.
func New(toks []token.Token) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Type != token.EOF {
		toks = append(toks, token.Token{Type: token.EOF, Line: 1, Column: 1})
	}
	return &Parser{toks: toks}
}

// ParseProgram parses the full top-level grammar. It returns the program
// together with every diagnostic collected along the way: when a block fails
// to parse, the parser records the error, skips to the end of that block and
// keeps scanning for further top-level blocks.
func ParseProgram(toks []token.Token) (*ast.Program, []*ParseError) {
	p := New(toks)
	prog := p.parseProgram()
	return prog, p.errs
}

// cursor helpers

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) next() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(typ token.Type) bool { return p.cur().Type == typ }

func (p *Parser) accept(typ token.Type) bool {
	if p.at(typ) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(typ token.Type, what string) (token.Token, *ParseError) {
	if p.at(typ) {
		return p.next(), nil
	}
	return p.cur(), p.errorf(p.cur(), DocsParse, "Expected %s, found %s", what, describe(p.cur()))
}

// checkpoint and rewind support the tentative parse used for arrow-function
// disambiguation.
func (p *Parser) checkpoint() int { return p.pos }

func (p *Parser) rewind(mark int) { p.pos = mark }

func (p *Parser) errorf(tok token.Token, docs, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Msg:    fmt.Sprintf(format, args...),
		Line:   tok.Line,
		Column: tok.Column,
		Docs:   docs,
	}
}

func (p *Parser) record(err *ParseError) {
	if err != nil {
		p.errs = append(p.errs, err)
	}
}

func describe(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of input"
	case token.Ident:
		return fmt.Sprintf("%q", t.Value)
	case token.Number, token.String:
		return fmt.Sprintf("%q", t.Value)
	case token.At:
		return fmt.Sprintf("\"@%s\"", t.Value)
	default:
		return fmt.Sprintf("%q", t.Type.String())
	}
}

func pos(t token.Token) ast.Base { return ast.At(t.Line, t.Column) }

// skipBalanced consumes tokens until the brace depth returns to zero. Used
// for error recovery: after a failed block the parser resynchronizes at the
// block's closing brace and continues with the next top-level construct.
func (p *Parser) skipBalanced() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.cur().Type {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth <= 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}

// parseEmbedded lexes and parses an expression that was embedded in other
// text (a view interpolation or a template-literal hole), with positions
// anchored at basePos so diagnostics point into the original file.
func parseEmbedded(src string, basePos ast.Position) (ast.Expr, *ParseError) {
	toks, err := lexer.TokenizeAt(src, basePos.Line, basePos.Column)
	if err != nil {
		le := err.(*lexer.Error)
		return nil, &ParseError{Msg: le.Msg, Line: le.Line, Column: le.Column, Docs: DocsParse}
	}
	sub := New(toks)
	e, perr := sub.parseExpr()
	if perr != nil {
		return nil, perr
	}
	if !sub.at(token.EOF) {
		return nil, sub.errorf(sub.cur(), DocsParse, "Unexpected %s after expression", describe(sub.cur()))
	}
	return e, nil
}

// advancePos walks text from a base position, returning the position just
// past it. Needed to locate interpolations inside string and template
// tokens.
func advancePos(base ast.Position, text string) ast.Position {
	line, col := base.Line, base.Column
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return ast.Position{Line: line, Column: col}
}
