package compiler

import (
	"fmt"
	"strings"

	"github.com/pulselang/pulse/pkg/compiler/ast"
)

// Docs anchors for validation diagnostics.
const (
	docsStore    = "https://pulselang.dev/docs/errors#store"
	docsRouter   = "https://pulselang.dev/docs/errors#router"
	docsActions  = "https://pulselang.dev/docs/errors#server-actions"
	docsA11y     = "https://pulselang.dev/docs/errors#accessibility"
	docsModel    = "https://pulselang.dev/docs/errors#model"
)

// Validate cross-checks a completed Program without mutating it and returns
// the accumulated diagnostics. Duplicate top-level blocks are already
// rejected by the block parser (the Program type cannot even represent
// them); Validate covers the structural constraints that need the whole
// tree assembled.
func Validate(prog *ast.Program) []Diagnostic {
	v := &validator{}
	if prog == nil {
		return nil
	}
	v.checkStore(prog.Store)
	v.checkRouter(prog.Router)
	v.checkRoute(prog.Route)
	if prog.Actions != nil {
		for _, action := range prog.Actions.Actions {
			v.checkAction(action)
		}
	}
	if prog.View != nil {
		v.walkView(prog.View.Children)
	}
	return v.diags
}

type validator struct {
	diags []Diagnostic
}

func (v *validator) addf(node ast.Node, docs, format string, args ...interface{}) {
	p := node.Pos()
	v.diags = append(v.diags, Diagnostic{
		Message: fmt.Sprintf(format, args...),
		Line:    p.Line,
		Column:  p.Column,
		DocsURL: docs,
	})
}

func (v *validator) checkStore(store *ast.StoreBlock) {
	if store == nil {
		return
	}
	if store.Persist != nil {
		if lit, ok := store.Persist.Value.(*ast.Literal); !ok || lit.Raw != "true" && lit.Raw != "false" {
			v.addf(store.Persist, docsStore, "Invalid value for persist: expected a boolean literal")
		}
	}
	if store.StorageKey != nil {
		if lit, ok := store.StorageKey.Value.(*ast.Literal); !ok || !isStringLiteral(lit) {
			v.addf(store.StorageKey, docsStore, "Invalid value for storageKey: expected a string literal")
		}
	}
	if store.Plugins != nil {
		if _, ok := store.Plugins.Value.(*ast.ArrayLit); !ok {
			v.addf(store.Plugins, docsStore, "Invalid value for plugins: expected an array literal")
		}
	}
	for _, action := range store.Actions {
		v.checkAction(action)
	}
}

func (v *validator) checkRouter(router *ast.RouterBlock) {
	if router == nil {
		return
	}
	if router.Mode != nil {
		lit, ok := router.Mode.Value.(*ast.Literal)
		mode, str := "", false
		if ok {
			mode, str = lit.Value.(string)
		}
		if !ok || !str || (mode != "history" && mode != "hash") {
			v.addf(router.Mode, docsRouter, `Invalid router mode: expected "history" or "hash"`)
		}
	}
	for _, route := range router.Routes {
		if !strings.HasPrefix(route.Path, "/") {
			v.addf(route, docsRouter, "Route path %q must begin with '/'", route.Path)
		}
	}
}

func (v *validator) checkRoute(route *ast.RouteBlock) {
	if route == nil {
		return
	}
	if !strings.HasPrefix(route.Path, "/") {
		v.addf(route, docsRouter, "Route path %q must begin with '/'", route.Path)
	}
}

// checkAction enforces server-action eligibility: server actions cross a
// serialization boundary, so they must be async and their parameters cannot
// carry function-typed defaults.
func (v *validator) checkAction(action *ast.Action) {
	if !action.Server {
		return
	}
	if !action.Async {
		v.addf(action, docsActions, "Server action %q must be declared async", action.Name)
	}
	for _, param := range action.Params {
		if _, ok := param.Default.(*ast.ArrowFunction); ok {
			v.addf(param, docsActions, "Server action %q parameter %q must not be function-typed", action.Name, param.Name)
		}
	}
}

func (v *validator) walkView(nodes []ast.ViewNode) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.Element:
			for _, dir := range n.Directives {
				v.checkDirective(dir)
			}
			v.walkView(n.Children)
		case *ast.SlotElement:
			v.walkView(n.Fallback)
		case *ast.IfDirective:
			v.walkView(n.Consequent)
			for _, branch := range n.ElseIfBranches {
				v.walkView(branch.Body)
			}
			v.walkView(n.Alternate)
		case *ast.EachDirective:
			v.walkView(n.Body)
		case *ast.ClientDirective:
			v.walkView(n.Children)
		case *ast.ServerDirective:
			v.walkView(n.Children)
		case *ast.LinkDirective:
			v.walkView(n.Content)
		}
	}
}

func (v *validator) checkDirective(dir ast.Directive) {
	switch d := dir.(type) {
	case *ast.LiveDirective:
		if d.Politeness != "" && d.Politeness != "polite" && d.Politeness != "assertive" {
			v.addf(d, docsA11y, "Invalid @live politeness %q: expected polite or assertive", d.Politeness)
		}
	case *ast.ModelDirective:
		switch d.Target.(type) {
		case *ast.Identifier, *ast.MemberExpr:
		default:
			v.addf(d, docsModel, "@model target must be an identifier or member expression")
		}
	case *ast.A11yDirective:
		for _, attr := range d.Attrs {
			if attr.Value == nil {
				continue
			}
			switch val := attr.Value.(type) {
			case *ast.Identifier:
			case *ast.Literal:
				if _, isNum := val.Value.(float64); isNum {
					v.addf(attr, docsA11y, "@a11y attribute %q must be a string, boolean or identifier", attr.Name)
				}
			default:
				v.addf(attr, docsA11y, "@a11y attribute %q must be a string, boolean or identifier", attr.Name)
			}
		}
	}
}

func isStringLiteral(lit *ast.Literal) bool {
	_, ok := lit.Value.(string)
	return ok
}
