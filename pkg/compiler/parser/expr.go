package parser

import (
	"strconv"
	"strings"

	"github.com/pulselang/pulse/pkg/compiler/ast"
	"github.com/pulselang/pulse/pkg/compiler/token"
)

// Expression grammar, precedence low to high:
//
//	assignment   = += -= *= /= %= &&= ||= ??=
//	conditional  ?:
//	logical      || ??, then &&
//	equality     == != === !==
//	relational   < > <= >=
//	additive     + -
//	multiplicative * / %
//	unary        ! - await
//	postfix      ++ -- and member/call chains
//	primary      literals, identifiers, groups, arrays, objects, templates

func (p *Parser) parseExpr() (ast.Expr, *ParseError) {
	return p.parseAssign()
}

var assignOps = map[token.Type]string{
	token.Assign:      "=",
	token.PlusAssign:  "+=",
	token.MinusAssign: "-=",
	token.StarAssign:  "*=",
	token.SlashAssign: "/=",
	token.PctAssign:   "%=",
	token.AndAssign:   "&&=",
	token.OrAssign:    "||=",
	token.NullAssign:  "??=",
}

func (p *Parser) parseAssign() (ast.Expr, *ParseError) {
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	op, ok := assignOps[p.cur().Type]
	if !ok {
		return left, nil
	}
	switch left.(type) {
	case *ast.Identifier, *ast.MemberExpr:
	default:
		return nil, p.errorf(p.cur(), DocsParse, "Invalid assignment target")
	}
	opTok := p.next()
	value, err := p.parseAssign() // right associative
	if err != nil {
		return nil, err
	}
	return &ast.AssignmentExpr{Base: pos(opTok), Op: op, Target: left, Value: value}, nil
}

func (p *Parser) parseConditional() (ast.Expr, *ParseError) {
	test, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Question) {
		return test, nil
	}
	qTok := p.next()
	consequent, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, "':' in conditional expression"); err != nil {
		return nil, err
	}
	alternate, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &ast.ConditionalExpr{Base: pos(qTok), Test: test, Consequent: consequent, Alternate: alternate}, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, *ParseError) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OrOr) || p.at(token.Nullish) {
		opTok := p.next()
		op := "||"
		if opTok.Type == token.Nullish {
			op = "??"
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Base: pos(opTok), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, *ParseError) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(token.AndAnd) {
		opTok := p.next()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpr{Base: pos(opTok), Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

var equalityOps = map[token.Type]string{
	token.EqEq:    "==",
	token.NotEq:   "!=",
	token.EqEqEq:  "===",
	token.NotEqEq: "!==",
}

func (p *Parser) parseEquality() (ast.Expr, *ParseError) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := equalityOps[p.cur().Type]
		if !ok {
			return left, nil
		}
		opTok := p.next()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: pos(opTok), Op: op, Left: left, Right: right}
	}
}

var relationalOps = map[token.Type]string{
	token.Lt:   "<",
	token.Gt:   ">",
	token.LtEq: "<=",
	token.GtEq: ">=",
}

func (p *Parser) parseRelational() (ast.Expr, *ParseError) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := relationalOps[p.cur().Type]
		if !ok {
			return left, nil
		}
		opTok := p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: pos(opTok), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, *ParseError) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		opTok := p.next()
		op := "+"
		if opTok.Type == token.Minus {
			op = "-"
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: pos(opTok), Op: op, Left: left, Right: right}
	}
	return left, nil
}

var multiplicativeOps = map[token.Type]string{
	token.Star:    "*",
	token.Slash:   "/",
	token.Percent: "%",
}

func (p *Parser) parseMultiplicative() (ast.Expr, *ParseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.cur().Type]
		if !ok {
			return left, nil
		}
		opTok := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: pos(opTok), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expr, *ParseError) {
	switch {
	case p.at(token.Not):
		opTok := p.next()
		operand, err := p.parseUnary() // !! parses as nested negation
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: pos(opTok), Op: "!", Operand: operand}, nil
	case p.at(token.Minus):
		opTok := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: pos(opTok), Op: "-", Operand: operand}, nil
	case p.cur().Is("await"):
		opTok := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: pos(opTok), Op: "await", Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, *ParseError) {
	operand, err := p.parseCallMember()
	if err != nil {
		return nil, err
	}
	for p.at(token.Inc) || p.at(token.Dec) {
		opTok := p.next()
		op := "++"
		if opTok.Type == token.Dec {
			op = "--"
		}
		operand = &ast.UpdateExpr{Base: pos(opTok), Op: op, Operand: operand}
	}
	return operand, nil
}

func (p *Parser) parseCallMember() (ast.Expr, *ParseError) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(token.Dot):
			dotTok := p.next()
			nameTok, err := p.expect(token.Ident, "property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{Base: pos(dotTok), Object: expr, Property: nameTok.Value}
		case p.at(token.LBracket):
			brTok := p.next()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBracket, "']' after index expression"); err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{Base: pos(brTok), Object: expr, Index: index, Computed: true}
		case p.at(token.LParen):
			callTok := p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{Base: pos(callTok), Callee: expr, Args: args}
		default:
			return expr, nil
		}
	}
}

// parseArgs parses a call argument list; the opening paren is already
// consumed. Spread arguments are allowed.
func (p *Parser) parseArgs() ([]ast.Expr, *ParseError) {
	var args []ast.Expr
	for !p.at(token.RParen) {
		if p.at(token.Ellipsis) {
			spreadTok := p.next()
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			args = append(args, &ast.SpreadExpr{Base: pos(spreadTok), Arg: arg})
		} else {
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if !p.accept(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RParen, "')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, *ParseError) {
	tok := p.cur()
	switch tok.Type {
	case token.Number:
		p.next()
		val, _ := strconv.ParseFloat(tok.Value, 64)
		return &ast.Literal{Base: pos(tok), Value: val, Raw: tok.Value}, nil
	case token.String:
		p.next()
		return &ast.Literal{Base: pos(tok), Value: unescape(tok.Value), Raw: tok.Value}, nil
	case token.Template:
		p.next()
		return p.parseTemplate(tok)
	case token.Ident:
		switch tok.Value {
		case "true", "false":
			p.next()
			return &ast.Literal{Base: pos(tok), Value: tok.Value == "true", Raw: tok.Value}, nil
		case "null", "undefined":
			p.next()
			return &ast.Literal{Base: pos(tok), Value: nil, Raw: tok.Value}, nil
		}
		p.next()
		if p.at(token.Arrow) {
			// single-parameter arrow without parentheses: x => ...
			p.next()
			param := &ast.Param{Base: pos(tok), Name: tok.Value}
			return p.parseArrowBody(tok, []*ast.Param{param})
		}
		return &ast.Identifier{Base: pos(tok), Name: tok.Value}, nil
	case token.LParen:
		return p.parseParenOrArrow()
	case token.LBracket:
		return p.parseArrayLit()
	case token.LBrace:
		return p.parseObjectLit()
	}
	return nil, p.errorf(tok, DocsParse, "Expected an expression, found %s", describe(tok))
}

// parseParenOrArrow disambiguates `(a, b) => ...` from a parenthesized
// expression by tentatively parsing a parameter list and committing to the
// arrow only when `=>` follows; otherwise the cursor is rewound.
func (p *Parser) parseParenOrArrow() (ast.Expr, *ParseError) {
	openTok := p.cur()
	mark := p.checkpoint()
	if params, ok := p.tryParseParams(); ok && p.at(token.Arrow) {
		p.next()
		return p.parseArrowBody(openTok, params)
	}
	p.rewind(mark)

	p.next() // consume '('
	first, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if p.at(token.Comma) {
		exprs := []ast.Expr{first}
		for p.accept(token.Comma) {
			e, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		if _, err := p.expect(token.RParen, "')' after expression"); err != nil {
			return nil, err
		}
		return &ast.SequenceExpr{Base: pos(openTok), Exprs: exprs}, nil
	}
	if _, err := p.expect(token.RParen, "')' after expression"); err != nil {
		return nil, err
	}
	return first, nil
}

// tryParseParams attempts to read `( name [= default] , ... , ...rest )`.
// On any mismatch it reports failure and the caller rewinds.
func (p *Parser) tryParseParams() ([]*ast.Param, bool) {
	if !p.accept(token.LParen) {
		return nil, false
	}
	var params []*ast.Param
	for !p.at(token.RParen) {
		if p.at(token.Ellipsis) {
			restTok := p.next()
			nameTok := p.cur()
			if nameTok.Type != token.Ident {
				return nil, false
			}
			p.next()
			params = append(params, &ast.Param{Base: pos(restTok), Name: nameTok.Value, Rest: true})
			break // rest parameter must be last
		}
		nameTok := p.cur()
		if nameTok.Type != token.Ident {
			return nil, false
		}
		p.next()
		param := &ast.Param{Base: pos(nameTok), Name: nameTok.Value}
		if p.accept(token.Assign) {
			def, err := p.parseAssign()
			if err != nil {
				return nil, false
			}
			param.Default = def
		}
		params = append(params, param)
		if !p.accept(token.Comma) {
			break
		}
	}
	if !p.accept(token.RParen) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseArrowBody(openTok token.Token, params []*ast.Param) (ast.Expr, *ParseError) {
	if p.at(token.LBrace) {
		p.next()
		body, err := p.parseStmts()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace, "'}' after function body"); err != nil {
			return nil, err
		}
		return &ast.ArrowFunction{Base: pos(openTok), Params: params, BlockBody: body}, nil
	}
	body, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &ast.ArrowFunction{Base: pos(openTok), Params: params, Body: body}, nil
}

func (p *Parser) parseArrayLit() (ast.Expr, *ParseError) {
	openTok := p.next() // '['
	var elements []ast.Expr
	for !p.at(token.RBracket) {
		if p.at(token.Ellipsis) {
			spreadTok := p.next()
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			elements = append(elements, &ast.SpreadExpr{Base: pos(spreadTok), Arg: arg})
		} else {
			e, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			elements = append(elements, e)
		}
		if !p.accept(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RBracket, "']' after array literal"); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Base: pos(openTok), Elements: elements}, nil
}

func (p *Parser) parseObjectLit() (ast.Expr, *ParseError) {
	openTok := p.next() // '{'
	var props []*ast.ObjectProp
	for !p.at(token.RBrace) {
		if p.at(token.Ellipsis) {
			spreadTok := p.next()
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			props = append(props, &ast.ObjectProp{Base: pos(spreadTok), Value: arg, Spread: true})
		} else {
			keyTok := p.cur()
			var key string
			switch keyTok.Type {
			case token.Ident, token.Number:
				key = keyTok.Value
			case token.String:
				key = unescape(keyTok.Value)
			default:
				return nil, p.errorf(keyTok, DocsParse, "Expected a property name, found %s", describe(keyTok))
			}
			p.next()
			if p.accept(token.Colon) {
				value, err := p.parseAssign()
				if err != nil {
					return nil, err
				}
				props = append(props, &ast.ObjectProp{Base: pos(keyTok), Key: key, Value: value})
			} else {
				if keyTok.Type != token.Ident {
					return nil, p.errorf(keyTok, DocsParse, "Shorthand property must be an identifier")
				}
				props = append(props, &ast.ObjectProp{
					Base:      pos(keyTok),
					Key:       key,
					Value:     &ast.Identifier{Base: pos(keyTok), Name: key},
					Shorthand: true,
				})
			}
		}
		if !p.accept(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RBrace, "'}' after object literal"); err != nil {
		return nil, err
	}
	return &ast.ObjectLit{Base: pos(openTok), Properties: props}, nil
}

// parseTemplate splits a template token into literal and ${} parts; each
// interpolation is re-lexed and parsed with positions anchored inside the
// original literal.
func (p *Parser) parseTemplate(tok token.Token) (ast.Expr, *ParseError) {
	raw := tok.Value
	// content starts one column past the opening backtick
	cursor := ast.Position{Line: tok.Line, Column: tok.Column + 1}
	tpl := &ast.TemplateLit{Base: pos(tok)}
	rest := raw
	for {
		idx := strings.Index(rest, "${")
		if idx < 0 {
			if rest != "" {
				tpl.Parts = append(tpl.Parts, ast.TemplatePart{Text: unescape(rest)})
			}
			return tpl, nil
		}
		if idx > 0 {
			tpl.Parts = append(tpl.Parts, ast.TemplatePart{Text: unescape(rest[:idx])})
		}
		cursor = advancePos(cursor, rest[:idx+2])
		rest = rest[idx+2:]
		end := matchBrace(rest)
		if end < 0 {
			return nil, &ParseError{Msg: "Unterminated ${} interpolation in template literal", Line: cursor.Line, Column: cursor.Column, Docs: DocsParse}
		}
		expr, err := parseEmbedded(rest[:end], cursor)
		if err != nil {
			return nil, err
		}
		tpl.Parts = append(tpl.Parts, ast.TemplatePart{Expr: expr})
		cursor = advancePos(cursor, rest[:end+1])
		rest = rest[end+1:]
	}
}

// matchBrace returns the index of the '}' closing an interpolation opened
// just before s, tracking nested braces and skipping string literals.
func matchBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		case '"', '\'', '`':
			quote := s[i]
			i++
			for i < len(s) && s[i] != quote {
				if s[i] == '\\' {
					i++
				}
				i++
			}
		}
	}
	return -1
}

// unescape decodes the escape sequences the lexer left intact.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			// \" \' \` \\ \{ \} \$ and anything else: keep the char
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// parseStmts parses statements until the closing brace (not consumed).
func (p *Parser) parseStmts() ([]ast.Stmt, *ParseError) {
	var stmts []ast.Stmt
	for {
		for p.accept(token.Semi) {
		}
		if p.at(token.RBrace) || p.at(token.EOF) {
			return stmts, nil
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseStmt() (ast.Stmt, *ParseError) {
	tok := p.cur()
	if tok.Is("return") {
		p.next()
		if p.at(token.RBrace) || p.at(token.Semi) || p.at(token.EOF) {
			return &ast.ReturnStmt{Base: pos(tok)}, nil
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Base: pos(tok), Value: value}, nil
	}
	if (tok.Is("let") || tok.Is("const")) && p.peek().Type == token.Ident {
		p.next()
		nameTok := p.next()
		if _, err := p.expect(token.Assign, "'=' in declaration"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.LetStmt{Base: pos(tok), Const: tok.Value == "const", Name: nameTok.Value, Value: value}, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Base: pos(tok), Expr: expr}, nil
}
