package parser

import (
	"github.com/pulselang/pulse/pkg/compiler/ast"
	"github.com/pulselang/pulse/pkg/compiler/token"
)

// blockKeywords is the set of top-level block names, used both for dispatch
// and for error-recovery resynchronization.
var blockKeywords = map[string]bool{
	"page": true, "route": true, "import": true, "props": true,
	"state": true, "view": true, "actions": true, "router": true,
	"store": true, "style": true,
}

// parseProgram drives the top-level state machine: at each position it peeks
// the next keyword-like token and dispatches to the matching sub-parser. A
// failed block records its diagnostic, the parser resynchronizes at the end
// of that block, and scanning continues with the next one.
func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{Base: pos(p.cur())}
	for !p.at(token.EOF) {
		tok := p.cur()
		if tok.Type != token.Ident {
			p.record(p.errorf(tok, DocsParse,
				"Unexpected %s at top level; expected a block declaration (page, route, import, props, state, view, actions, router, store, style)",
				describe(tok)))
			p.recoverBlock()
			continue
		}
		var err *ParseError
		switch tok.Value {
		case "page":
			err = p.parsePageBlock(prog)
		case "route":
			err = p.parseRouteBlock(prog)
		case "import":
			err = p.parseImport(prog)
		case "props":
			err = p.parsePropsBlock(prog)
		case "state":
			err = p.parseStateBlock(prog)
		case "view":
			err = p.parseViewBlock(prog)
		case "actions":
			err = p.parseActionsBlock(prog)
		case "router":
			err = p.parseRouterBlock(prog)
		case "store":
			err = p.parseStoreBlock(prog)
		case "style":
			err = p.parseStyleBlock(prog)
		default:
			err = p.errorf(tok, DocsParse, "Unknown block %q at top level", tok.Value)
			p.next()
		}
		if err != nil {
			p.record(err)
			p.recoverBlock()
		}
	}
	return prog
}

// recoverBlock skips tokens until the current block plausibly ends: either
// the brace depth returns to zero or a fresh block keyword shows up at
// depth zero.
func (p *Parser) recoverBlock() {
	depth := 0
	for !p.at(token.EOF) {
		tok := p.cur()
		switch tok.Type {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth <= 0 {
				p.next()
				return
			}
		case token.Ident:
			if depth == 0 && blockKeywords[tok.Value] {
				return
			}
		}
		p.next()
	}
}

func (p *Parser) duplicate(kind string, tok token.Token) *ParseError {
	return p.errorf(tok, DocsDuplicate, "Duplicate %s block", kind)
}

func (p *Parser) parsePageBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.Page != nil {
		return p.duplicate("page", tok)
	}
	entries, err := p.parseEntryBlock("page")
	if err != nil {
		return err
	}
	prog.Page = &ast.PageBlock{Base: pos(tok), Entries: entries}
	return nil
}

func (p *Parser) parseRouteBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.Route != nil {
		return p.duplicate("route", tok)
	}
	pathTok, err := p.expect(token.String, "a route path string after 'route'")
	if err != nil {
		return err
	}
	prog.Route = &ast.RouteBlock{Base: pos(tok), Path: unescape(pathTok.Value)}
	return nil
}

func (p *Parser) parseImport(prog *ast.Program) *ParseError {
	tok := p.next()
	nameTok, err := p.expect(token.Ident, "a component name after 'import'")
	if err != nil {
		return err
	}
	decl := &ast.ImportDecl{Base: pos(tok), Name: nameTok.Value}
	if p.cur().Is("from") {
		p.next()
		fromTok, err := p.expect(token.String, "a module path after 'from'")
		if err != nil {
			return err
		}
		decl.From = unescape(fromTok.Value)
	}
	prog.Imports = append(prog.Imports, decl)
	return nil
}

func (p *Parser) parsePropsBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.Props != nil {
		return p.duplicate("props", tok)
	}
	entries, err := p.parseEntryBlock("props")
	if err != nil {
		return err
	}
	prog.Props = &ast.PropsBlock{Base: pos(tok), Entries: entries}
	return nil
}

func (p *Parser) parseStateBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.State != nil {
		return p.duplicate("state", tok)
	}
	entries, err := p.parseEntryBlock("state")
	if err != nil {
		return err
	}
	prog.State = &ast.StateBlock{Base: pos(tok), Entries: entries}
	return nil
}

func (p *Parser) parseViewBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.View != nil {
		return p.duplicate("view", tok)
	}
	if _, err := p.expect(token.LBrace, "'{' after 'view'"); err != nil {
		return err
	}
	children, err := p.parseViewNodes()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RBrace, "'}' closing the view block"); err != nil {
		return err
	}
	prog.View = &ast.ViewBlock{Base: pos(tok), Children: children}
	return nil
}

func (p *Parser) parseActionsBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.Actions != nil {
		return p.duplicate("actions", tok)
	}
	if _, err := p.expect(token.LBrace, "'{' after 'actions'"); err != nil {
		return err
	}
	actions, err := p.parseActionList()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RBrace, "'}' closing the actions block"); err != nil {
		return err
	}
	prog.Actions = &ast.ActionsBlock{Base: pos(tok), Actions: actions}
	return nil
}

func (p *Parser) parseRouterBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.Router != nil {
		return p.duplicate("router", tok)
	}
	if _, err := p.expect(token.LBrace, "'{' after 'router'"); err != nil {
		return err
	}
	router := &ast.RouterBlock{Base: pos(tok)}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		for p.accept(token.Comma) || p.accept(token.Semi) {
		}
		if p.at(token.RBrace) {
			break
		}
		keyTok, err := p.expect(token.Ident, "a router option (routes, guards, mode, fallback)")
		if err != nil {
			return err
		}
		switch keyTok.Value {
		case "routes":
			routes, err := p.parseRoutesTable()
			if err != nil {
				return err
			}
			router.Routes = routes
		case "guards":
			if _, err := p.expect(token.LBrace, "'{' after 'guards'"); err != nil {
				return err
			}
			guards, err := p.parseActionList()
			if err != nil {
				return err
			}
			if _, err := p.expect(token.RBrace, "'}' closing the guards block"); err != nil {
				return err
			}
			router.Guards = guards
		case "mode", "fallback":
			if _, err := p.expect(token.Colon, "':' after router option"); err != nil {
				return err
			}
			value, perr := p.parseExpr()
			if perr != nil {
				return perr
			}
			entry := &ast.Entry{Base: pos(keyTok), Name: keyTok.Value, Value: value}
			if keyTok.Value == "mode" {
				router.Mode = entry
			} else {
				router.Fallback = entry
			}
		default:
			return p.errorf(keyTok, DocsParse, "Unknown router option %q", keyTok.Value)
		}
	}
	if _, err := p.expect(token.RBrace, "'}' closing the router block"); err != nil {
		return err
	}
	prog.Router = router
	return nil
}

func (p *Parser) parseRoutesTable() ([]*ast.RouteEntry, *ParseError) {
	if _, err := p.expect(token.LBrace, "'{' after 'routes'"); err != nil {
		return nil, err
	}
	var routes []*ast.RouteEntry
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		pathTok, err := p.expect(token.String, "a route path string")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "':' after route path"); err != nil {
			return nil, err
		}
		compTok, err := p.expect(token.Ident, "a component name for the route")
		if err != nil {
			return nil, err
		}
		routes = append(routes, &ast.RouteEntry{
			Base:      pos(pathTok),
			Path:      unescape(pathTok.Value),
			Component: compTok.Value,
		})
		for p.accept(token.Comma) || p.accept(token.Semi) {
		}
	}
	if _, err := p.expect(token.RBrace, "'}' closing the routes table"); err != nil {
		return nil, err
	}
	return routes, nil
}

func (p *Parser) parseStoreBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.Store != nil {
		return p.duplicate("store", tok)
	}
	if _, err := p.expect(token.LBrace, "'{' after 'store'"); err != nil {
		return err
	}
	store := &ast.StoreBlock{Base: pos(tok)}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		for p.accept(token.Comma) || p.accept(token.Semi) {
		}
		if p.at(token.RBrace) {
			break
		}
		keyTok, err := p.expect(token.Ident, "a store section (state, getters, actions, persist, storageKey, plugins)")
		if err != nil {
			return err
		}
		switch keyTok.Value {
		case "state":
			entries, err := p.parseEntryBlock("store state")
			if err != nil {
				return err
			}
			store.State = entries
		case "getters", "actions":
			if _, err := p.expect(token.LBrace, "'{' after '"+keyTok.Value+"'"); err != nil {
				return err
			}
			list, err := p.parseActionList()
			if err != nil {
				return err
			}
			if _, err := p.expect(token.RBrace, "'}' closing the "+keyTok.Value+" block"); err != nil {
				return err
			}
			if keyTok.Value == "getters" {
				store.Getters = list
			} else {
				store.Actions = list
			}
		case "persist", "storageKey", "plugins":
			if _, err := p.expect(token.Colon, "':' after store option"); err != nil {
				return err
			}
			value, perr := p.parseExpr()
			if perr != nil {
				return perr
			}
			entry := &ast.Entry{Base: pos(keyTok), Name: keyTok.Value, Value: value}
			switch keyTok.Value {
			case "persist":
				store.Persist = entry
			case "storageKey":
				store.StorageKey = entry
			case "plugins":
				store.Plugins = entry
			}
		default:
			return p.errorf(keyTok, DocsParse, "Unknown store option %q", keyTok.Value)
		}
	}
	if _, err := p.expect(token.RBrace, "'}' closing the store block"); err != nil {
		return err
	}
	prog.Store = store
	return nil
}

func (p *Parser) parseStyleBlock(prog *ast.Program) *ParseError {
	tok := p.next()
	if prog.Style != nil {
		return p.duplicate("style", tok)
	}
	if _, err := p.expect(token.LBrace, "'{' after 'style'"); err != nil {
		return err
	}
	rawTok, err := p.expect(token.RawCSS, "style block content")
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RBrace, "'}' closing the style block"); err != nil {
		return err
	}
	prog.Style = ParseStyle(rawTok.Value, rawTok.Line, rawTok.Column)
	return nil
}

// parseEntryBlock parses `{ name: expr, ... }`. Separators between entries
// (commas, semicolons, newlines) are optional.
func (p *Parser) parseEntryBlock(kind string) ([]*ast.Entry, *ParseError) {
	if _, err := p.expect(token.LBrace, "'{' after '"+kind+"'"); err != nil {
		return nil, err
	}
	var entries []*ast.Entry
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		nameTok, err := p.expect(token.Ident, "a "+kind+" entry name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "':' after '"+nameTok.Value+"'"); err != nil {
			return nil, err
		}
		value, perr := p.parseExpr()
		if perr != nil {
			return nil, perr
		}
		entries = append(entries, &ast.Entry{Base: pos(nameTok), Name: nameTok.Value, Value: value})
		for p.accept(token.Comma) || p.accept(token.Semi) {
		}
	}
	if _, err := p.expect(token.RBrace, "'}' closing the "+kind+" block"); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseActionList parses named functions until the enclosing '}' (not
// consumed): `[server] [async] name(params) { body }`.
func (p *Parser) parseActionList() ([]*ast.Action, *ParseError) {
	var actions []*ast.Action
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		for p.accept(token.Comma) || p.accept(token.Semi) {
		}
		if p.at(token.RBrace) {
			break
		}
		action, err := p.parseAction()
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func (p *Parser) parseAction() (*ast.Action, *ParseError) {
	startTok := p.cur()
	action := &ast.Action{Base: pos(startTok)}
	// modifiers precede the name only when another identifier follows
	for (p.cur().Is("server") || p.cur().Is("async")) && p.peek().Type == token.Ident {
		mod := p.next()
		if mod.Value == "server" {
			action.Server = true
		} else {
			action.Async = true
		}
	}
	nameTok, err := p.expect(token.Ident, "an action name")
	if err != nil {
		return nil, err
	}
	action.Name = nameTok.Value
	if _, err := p.expect(token.LParen, "'(' after action name"); err != nil {
		return nil, err
	}
	params, perr := p.parseParamList()
	if perr != nil {
		return nil, perr
	}
	action.Params = params
	if _, err := p.expect(token.LBrace, "'{' starting the action body"); err != nil {
		return nil, err
	}
	body, perr := p.parseStmts()
	if perr != nil {
		return nil, perr
	}
	action.Body = body
	if _, err := p.expect(token.RBrace, "'}' closing the action body"); err != nil {
		return nil, err
	}
	return action, nil
}

// parseParamList is the strict counterpart of tryParseParams, used where a
// parameter list is mandatory; the opening paren is already consumed.
// Parameter names may shadow keywords ('from', 'in', 'of') since keyword
// recognition is contextual.
func (p *Parser) parseParamList() ([]*ast.Param, *ParseError) {
	var params []*ast.Param
	for !p.at(token.RParen) {
		if p.at(token.Ellipsis) {
			restTok := p.next()
			nameTok, err := p.expect(token.Ident, "a rest parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, &ast.Param{Base: pos(restTok), Name: nameTok.Value, Rest: true})
			break
		}
		nameTok, err := p.expect(token.Ident, "a parameter name")
		if err != nil {
			return nil, err
		}
		param := &ast.Param{Base: pos(nameTok), Name: nameTok.Value}
		if p.accept(token.Assign) {
			def, perr := p.parseAssign()
			if perr != nil {
				return nil, perr
			}
			param.Default = def
		}
		params = append(params, param)
		if !p.accept(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RParen, "')' after parameters"); err != nil {
		return nil, err
	}
	return params, nil
}
