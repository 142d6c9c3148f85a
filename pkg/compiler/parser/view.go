package parser

import (
	"strconv"
	"strings"

	"github.com/pulselang/pulse/pkg/compiler/ast"
	"github.com/pulselang/pulse/pkg/compiler/token"
)

// parseViewNodes parses view children until the enclosing '}' (not
// consumed).
func (p *Parser) parseViewNodes() ([]ast.ViewNode, *ParseError) {
	var nodes []ast.ViewNode
	for {
		for p.accept(token.Semi) {
		}
		if p.at(token.RBrace) || p.at(token.EOF) {
			return nodes, nil
		}
		node, err := p.parseViewNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
}

func (p *Parser) parseViewNode() (ast.ViewNode, *ParseError) {
	tok := p.cur()
	switch tok.Type {
	case token.At:
		return p.parseStandaloneDirective()
	case token.String:
		p.next()
		return p.parseText(tok)
	case token.Ident:
		if tok.Value == "slot" {
			return p.parseSlot()
		}
		if isComponentName(tok.Value) && p.peek().Type == token.LParen {
			return p.parseComponent()
		}
		return p.parseElement()
	}
	return nil, p.errorf(tok, DocsParse, "Unexpected %s in view; expected an element, component, slot, text or directive", describe(tok))
}

func isComponentName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// parseElement parses a CSS-selector-like head (tag + classes + id),
// attributes, attached directives, and either inline text or a children
// block.
func (p *Parser) parseElement() (*ast.Element, *ParseError) {
	tagTok := p.next()
	el := &ast.Element{Base: pos(tagTok), Tag: tagTok.Value}

	// head: div.card.primary#main
	for {
		if p.at(token.Dot) && p.peek().Type == token.Ident {
			p.next()
			el.Classes = append(el.Classes, p.next().Value)
			continue
		}
		if p.at(token.Hash) && p.peek().Type == token.Ident {
			p.next()
			el.ID = p.next().Value
			continue
		}
		break
	}

	// attributes and attached directives
	for {
		if p.at(token.At) {
			dir, err := p.parseAttachedDirective()
			if err != nil {
				return nil, err
			}
			el.Directives = append(el.Directives, dir)
			continue
		}
		// attributes require '='; a bare identifier starts a sibling element
		if p.at(token.Ident) && p.peek().Type == token.Assign {
			nameTok := p.next()
			name := p.readHyphenatedName(nameTok)
			p.next() // '='
			value, err := p.parseAttrValue()
			if err != nil {
				return nil, err
			}
			el.Attributes = append(el.Attributes, &ast.Attribute{Base: pos(nameTok), Name: name, Value: value})
			continue
		}
		// hyphenated attribute name: data-id=...
		if p.at(token.Ident) && p.peek().Type == token.Minus {
			mark := p.checkpoint()
			nameTok := p.next()
			name := p.readHyphenatedName(nameTok)
			if p.accept(token.Assign) {
				value, err := p.parseAttrValue()
				if err != nil {
					return nil, err
				}
				el.Attributes = append(el.Attributes, &ast.Attribute{Base: pos(nameTok), Name: name, Value: value})
				continue
			}
			p.rewind(mark)
		}
		break
	}

	switch {
	case p.at(token.String):
		strTok := p.next()
		text, err := p.parseText(strTok)
		if err != nil {
			return nil, err
		}
		el.TextContent = text
	case p.at(token.LBrace):
		p.next()
		children, err := p.parseViewNodes()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace, "'}' closing element children"); err != nil {
			return nil, err
		}
		el.Children = children
	}
	return el, nil
}

// readHyphenatedName extends an identifier with `-ident` runs, so names like
// data-id and aria-label read as one attribute name.
func (p *Parser) readHyphenatedName(first token.Token) string {
	name := first.Value
	for p.at(token.Minus) && p.peek().Type == token.Ident {
		p.next()
		name += "-" + p.next().Value
	}
	return name
}

// parseAttrValue parses an attribute value: a string, a number, a boolean,
// an identifier reference, or a braced expression.
func (p *Parser) parseAttrValue() (ast.Expr, *ParseError) {
	tok := p.cur()
	switch tok.Type {
	case token.String:
		p.next()
		return &ast.Literal{Base: pos(tok), Value: unescape(tok.Value), Raw: tok.Value}, nil
	case token.Number:
		p.next()
		return p.numberLiteral(tok), nil
	case token.Ident:
		if tok.Value == "true" || tok.Value == "false" {
			p.next()
			return &ast.Literal{Base: pos(tok), Value: tok.Value == "true", Raw: tok.Value}, nil
		}
		p.next()
		return &ast.Identifier{Base: pos(tok), Name: tok.Value}, nil
	case token.LBrace:
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace, "'}' closing the attribute expression"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorf(tok, DocsParse, "Expected an attribute value, found %s", describe(tok))
}

func (p *Parser) numberLiteral(tok token.Token) *ast.Literal {
	val, _ := strconv.ParseFloat(tok.Value, 64)
	return &ast.Literal{Base: pos(tok), Value: val, Raw: tok.Value}
}

// parseComponent parses `Name(prop=value, flag, label="x")`.
func (p *Parser) parseComponent() (*ast.Component, *ParseError) {
	nameTok := p.next()
	comp := &ast.Component{Base: pos(nameTok), Name: nameTok.Value}
	p.next() // '('
	for !p.at(token.RParen) && !p.at(token.EOF) {
		propTok, err := p.expect(token.Ident, "a prop name")
		if err != nil {
			return nil, err
		}
		name := p.readHyphenatedName(propTok)
		prop := &ast.Attribute{Base: pos(propTok), Name: name}
		if p.accept(token.Assign) {
			value, err := p.parseAttrValue()
			if err != nil {
				return nil, err
			}
			prop.Value = value
		}
		comp.Props = append(comp.Props, prop)
		if !p.accept(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RParen, "')' closing the prop list"); err != nil {
		return nil, err
	}
	return comp, nil
}

// parseSlot parses `slot`, `slot "name"`, and slots with a fallback block.
// An unnamed slot is the "default" slot.
func (p *Parser) parseSlot() (*ast.SlotElement, *ParseError) {
	slotTok := p.next()
	slot := &ast.SlotElement{Base: pos(slotTok), Name: "default"}
	if p.at(token.String) {
		slot.Name = unescape(p.next().Value)
	}
	if p.accept(token.LBrace) {
		fallback, err := p.parseViewNodes()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace, "'}' closing the slot fallback"); err != nil {
			return nil, err
		}
		slot.Fallback = fallback
	}
	return slot, nil
}

// parseText splits a string token into literal runs and {expression}
// interpolations. An empty interpolation `{}` is tolerated and dropped.
func (p *Parser) parseText(tok token.Token) (*ast.Text, *ParseError) {
	text := &ast.Text{Base: pos(tok)}
	raw := tok.Value
	// content starts one column past the opening quote
	cursor := ast.Position{Line: tok.Line, Column: tok.Column + 1}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			text.Parts = append(text.Parts, ast.TextPart{Text: lit.String()})
			lit.Reset()
		}
	}
	i := 0
	for i < len(raw) {
		ch := raw[i]
		if ch == '\\' && i+1 < len(raw) {
			lit.WriteString(unescape(raw[i : i+2]))
			cursor = advancePos(cursor, raw[i:i+2])
			i += 2
			continue
		}
		if ch == '{' {
			end := matchBrace(raw[i+1:])
			if end < 0 {
				return nil, &ParseError{Msg: "Unterminated interpolation in text", Line: cursor.Line, Column: cursor.Column, Docs: DocsParse}
			}
			inner := raw[i+1 : i+1+end]
			exprPos := advancePos(cursor, "{")
			if strings.TrimSpace(inner) != "" {
				flush()
				expr, err := parseEmbedded(inner, exprPos)
				if err != nil {
					return nil, err
				}
				text.Parts = append(text.Parts, ast.TextPart{Expr: expr})
			}
			cursor = advancePos(cursor, raw[i:i+end+2])
			i += end + 2
			continue
		}
		lit.WriteByte(ch)
		cursor = advancePos(cursor, raw[i:i+1])
		i++
	}
	flush()
	return text, nil
}

// ---------------------------------------------------------------------------
// Directives

// parseStandaloneDirective handles directives that stand on their own in a
// children position.
func (p *Parser) parseStandaloneDirective() (ast.ViewNode, *ParseError) {
	tok := p.cur()
	switch tok.Value {
	case "if":
		return p.parseIfDirective()
	case "for":
		return p.parseForDirective()
	case "link":
		return p.parseLinkDirective()
	case "outlet":
		return p.parseOutletDirective()
	case "client", "server":
		return p.parseRenderTargetBlock()
	case "else", "else-if":
		return nil, p.errorf(tok, DocsDirective, "@%s without a preceding @if", tok.Value)
	}
	return nil, p.errorf(tok, DocsDirective, "Directive @%s must be attached to an element", tok.Value)
}

func (p *Parser) parseIfDirective() (*ast.IfDirective, *ParseError) {
	ifTok := p.next()
	dir := &ast.IfDirective{Base: pos(ifTok)}
	cond, body, err := p.parseCondAndBody()
	if err != nil {
		return nil, err
	}
	dir.Cond = cond
	dir.Consequent = body
	for p.at(token.At) {
		switch p.cur().Value {
		case "else-if":
			// hyphenated form: @else-if (d) { ... }
			branchTok := p.next()
			cond, body, err := p.parseCondAndBody()
			if err != nil {
				return nil, err
			}
			dir.ElseIfBranches = append(dir.ElseIfBranches, &ast.ElseIfBranch{Base: pos(branchTok), Cond: cond, Body: body})
		case "else":
			p.next()
			if p.at(token.At) && p.cur().Value == "if" {
				// two-token form: @else @if (d) { ... }
				branchTok := p.next()
				cond, body, err := p.parseCondAndBody()
				if err != nil {
					return nil, err
				}
				dir.ElseIfBranches = append(dir.ElseIfBranches, &ast.ElseIfBranch{Base: pos(branchTok), Cond: cond, Body: body})
				continue
			}
			if _, err := p.expect(token.LBrace, "'{' after @else"); err != nil {
				return nil, err
			}
			alt, perr := p.parseViewNodes()
			if perr != nil {
				return nil, perr
			}
			if _, err := p.expect(token.RBrace, "'}' closing the @else body"); err != nil {
				return nil, err
			}
			dir.HasElse = true
			dir.Alternate = alt
			return dir, nil
		default:
			return dir, nil
		}
	}
	return dir, nil
}

func (p *Parser) parseCondAndBody() (ast.Expr, []ast.ViewNode, *ParseError) {
	if _, err := p.expect(token.LParen, "'(' after the directive"); err != nil {
		return nil, nil, err
	}
	cond, perr := p.parseExpr()
	if perr != nil {
		return nil, nil, perr
	}
	if _, err := p.expect(token.RParen, "')' after the condition"); err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(token.LBrace, "'{' starting the directive body"); err != nil {
		return nil, nil, err
	}
	body, perr := p.parseViewNodes()
	if perr != nil {
		return nil, nil, perr
	}
	if _, err := p.expect(token.RBrace, "'}' closing the directive body"); err != nil {
		return nil, nil, err
	}
	return cond, body, nil
}

// parseForDirective parses `@for (item in|of items) [key(expr)] { ... }`.
func (p *Parser) parseForDirective() (*ast.EachDirective, *ParseError) {
	forTok := p.next()
	dir := &ast.EachDirective{Base: pos(forTok)}
	if _, err := p.expect(token.LParen, "'(' after @for"); err != nil {
		return nil, err
	}
	itemTok, err := p.expect(token.Ident, "a loop variable name")
	if err != nil {
		return nil, err
	}
	dir.ItemName = itemTok.Value
	opTok := p.cur()
	if !opTok.Is("in") && !opTok.Is("of") {
		return nil, p.errorf(opTok, DocsDirective, "Expected 'in' or 'of' in @for, found %s", describe(opTok))
	}
	p.next()
	dir.Op = opTok.Value
	source, perr := p.parseExpr()
	if perr != nil {
		return nil, perr
	}
	dir.Source = source
	if _, err := p.expect(token.RParen, "')' closing the @for header"); err != nil {
		return nil, err
	}
	if p.cur().Is("key") && p.peek().Type == token.LParen {
		p.next()
		p.next()
		keyExpr, perr := p.parseExpr()
		if perr != nil {
			return nil, perr
		}
		dir.KeyExpr = keyExpr
		if _, err := p.expect(token.RParen, "')' closing key()"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.LBrace, "'{' starting the @for body"); err != nil {
		return nil, err
	}
	body, perr := p.parseViewNodes()
	if perr != nil {
		return nil, perr
	}
	dir.Body = body
	if _, err := p.expect(token.RBrace, "'}' closing the @for body"); err != nil {
		return nil, err
	}
	return dir, nil
}

func (p *Parser) parseLinkDirective() (*ast.LinkDirective, *ParseError) {
	linkTok := p.next()
	dir := &ast.LinkDirective{Base: pos(linkTok)}
	if _, err := p.expect(token.LParen, "'(' after @link"); err != nil {
		return nil, err
	}
	path, perr := p.parseAssign()
	if perr != nil {
		return nil, perr
	}
	dir.Path = path
	if p.accept(token.Comma) {
		options, perr := p.parseAssign()
		if perr != nil {
			return nil, perr
		}
		dir.Options = options
	}
	if _, err := p.expect(token.RParen, "')' closing @link"); err != nil {
		return nil, err
	}
	switch {
	case p.at(token.String):
		strTok := p.next()
		text, err := p.parseText(strTok)
		if err != nil {
			return nil, err
		}
		dir.Content = []ast.ViewNode{text}
	case p.at(token.LBrace):
		p.next()
		content, err := p.parseViewNodes()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace, "'}' closing the @link content"); err != nil {
			return nil, err
		}
		dir.Content = content
	}
	return dir, nil
}

func (p *Parser) parseOutletDirective() (*ast.OutletDirective, *ParseError) {
	outletTok := p.next()
	dir := &ast.OutletDirective{Base: pos(outletTok)}
	if p.accept(token.LParen) {
		selTok, err := p.expect(token.String, "a selector string in @outlet")
		if err != nil {
			return nil, err
		}
		dir.Selector = unescape(selTok.Value)
		if _, err := p.expect(token.RParen, "')' closing @outlet"); err != nil {
			return nil, err
		}
	}
	return dir, nil
}

// parseRenderTargetBlock parses standalone `@client { ... }` and
// `@server { ... }` subtrees.
func (p *Parser) parseRenderTargetBlock() (ast.ViewNode, *ParseError) {
	tok := p.next()
	if _, err := p.expect(token.LBrace, "'{' after @"+tok.Value); err != nil {
		return nil, err
	}
	children, perr := p.parseViewNodes()
	if perr != nil {
		return nil, perr
	}
	if _, err := p.expect(token.RBrace, "'}' closing @"+tok.Value); err != nil {
		return nil, err
	}
	if tok.Value == "client" {
		return &ast.ClientDirective{Base: pos(tok), Children: children}, nil
	}
	return &ast.ServerDirective{Base: pos(tok), Children: children}, nil
}

// parseAttachedDirective handles directives written inline on an element.
// Unreserved names are event bindings.
func (p *Parser) parseAttachedDirective() (ast.Directive, *ParseError) {
	tok := p.next()
	switch tok.Value {
	case "if", "else-if", "else", "for", "link", "outlet":
		return nil, p.errorf(tok, DocsDirective, "Directive @%s cannot be attached to an element", tok.Value)
	case "model":
		mods, err := p.parseModifiers()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LParen, "'(' after @model"); err != nil {
			return nil, err
		}
		target, perr := p.parseExpr()
		if perr != nil {
			return nil, perr
		}
		if _, err := p.expect(token.RParen, "')' closing @model"); err != nil {
			return nil, err
		}
		return &ast.ModelDirective{Base: pos(tok), Modifiers: mods, Target: target}, nil
	case "a11y":
		attrs, err := p.parseDirectiveAttrs("a11y")
		if err != nil {
			return nil, err
		}
		return &ast.A11yDirective{Base: pos(tok), Attrs: attrs}, nil
	case "live":
		dir := &ast.LiveDirective{Base: pos(tok)}
		if p.accept(token.LParen) {
			if p.at(token.Ident) {
				dir.Politeness = p.next().Value
			}
			if _, err := p.expect(token.RParen, "')' closing @live"); err != nil {
				return nil, err
			}
		}
		return dir, nil
	case "focusTrap":
		dir := &ast.FocusTrapDirective{Base: pos(tok)}
		if p.at(token.LParen) {
			attrs, err := p.parseDirectiveAttrs("focusTrap")
			if err != nil {
				return nil, err
			}
			dir.Options = attrs
		}
		return dir, nil
	case "srOnly":
		return &ast.SrOnlyDirective{Base: pos(tok)}, nil
	case "client":
		return &ast.ClientDirective{Base: pos(tok)}, nil
	case "server":
		return &ast.ServerDirective{Base: pos(tok)}, nil
	case "navigate":
		if _, err := p.expect(token.LParen, "'(' after @navigate"); err != nil {
			return nil, err
		}
		dir := &ast.NavigateDirective{Base: pos(tok)}
		path, perr := p.parseAssign()
		if perr != nil {
			return nil, perr
		}
		dir.Path = path
		if p.accept(token.Comma) {
			options, perr := p.parseAssign()
			if perr != nil {
				return nil, perr
			}
			dir.Options = options
		}
		if _, err := p.expect(token.RParen, "')' closing @navigate"); err != nil {
			return nil, err
		}
		return dir, nil
	case "back":
		return &ast.BackDirective{Base: pos(tok)}, nil
	case "forward":
		return &ast.ForwardDirective{Base: pos(tok)}, nil
	}
	// event binding: @click.prevent(handler)
	mods, err := p.parseModifiers()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen, "'(' after @"+tok.Value); err != nil {
		return nil, err
	}
	handler, perr := p.parseExpr()
	if perr != nil {
		return nil, perr
	}
	if _, err := p.expect(token.RParen, "')' closing the @"+tok.Value+" handler"); err != nil {
		return nil, err
	}
	return &ast.EventDirective{Base: pos(tok), Event: tok.Value, Modifiers: mods, Handler: handler}, nil
}

func (p *Parser) parseModifiers() ([]string, *ParseError) {
	var mods []string
	for p.at(token.Dot) {
		p.next()
		modTok, err := p.expect(token.Ident, "a directive modifier after '.'")
		if err != nil {
			return nil, err
		}
		mods = append(mods, modTok.Value)
	}
	return mods, nil
}

// parseDirectiveAttrs parses `(name=value, flag, aria-label="x")` argument
// lists for @a11y and @focusTrap. Values are strings, booleans, numbers or
// bare identifiers; a bare name means true.
func (p *Parser) parseDirectiveAttrs(directive string) ([]*ast.Attribute, *ParseError) {
	if _, err := p.expect(token.LParen, "'(' after @"+directive); err != nil {
		return nil, err
	}
	var attrs []*ast.Attribute
	for !p.at(token.RParen) && !p.at(token.EOF) {
		nameTok, err := p.expect(token.Ident, "an attribute name in @"+directive)
		if err != nil {
			return nil, err
		}
		name := p.readHyphenatedName(nameTok)
		attr := &ast.Attribute{Base: pos(nameTok), Name: name}
		if p.accept(token.Assign) {
			value, err := p.parseAttrValue()
			if err != nil {
				return nil, err
			}
			attr.Value = value
		}
		attrs = append(attrs, attr)
		if !p.accept(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RParen, "')' closing @"+directive); err != nil {
		return nil, err
	}
	return attrs, nil
}
