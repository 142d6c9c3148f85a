// Package codegen turns a parsed component tree into a JavaScript module
// targeting the runtime primitives. Generation is deterministic: the same
// tree and options always produce byte-identical output.
package codegen

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pulselang/pulse/pkg/compiler/ast"
)

// Options configures a single generation run.
type Options struct {
	// Runtime is the import specifier for the runtime module.
	Runtime string
	// Filename is the component's source path, used for the component
	// function name, the style scope token and the source map.
	Filename string
	// Source is the original file text, embedded in the source map.
	Source string
	// SourceMap enables source map generation.
	SourceMap bool
	// ScopeStyles appends the per-component scope class to style selectors
	// and generated elements.
	ScopeStyles bool
}

type generator struct {
	opts       Options
	w          *printer
	lines      []string
	indent     int
	uses       map[string]bool
	maps       mapBuilder
	pending    *ast.Position
	scopeClass string
}

// Generate emits the JavaScript module for a program. The returned source
// map is nil unless opts.SourceMap is set.
func Generate(prog *ast.Program, opts Options) (string, *SourceMap) {
	g := &generator{
		opts: opts,
		w:    newPrinter(reactiveNames(prog)),
		uses: make(map[string]bool),
	}
	if prog.Style != nil && opts.ScopeStyles {
		g.scopeClass = ScopeToken(opts.Filename, prog.Style.Raw)
	}
	g.program(prog)

	header := []string{"// Code generated by the Pulse compiler. DO NOT EDIT."}
	if imp := g.runtimeImport(); imp != "" {
		header = append(header, imp)
	}
	header = append(header, "")
	g.maps.shift(len(header))

	all := append(header, g.lines...)
	code := strings.Join(all, "\n") + "\n"
	if !opts.SourceMap {
		return code, nil
	}
	srcMap := &SourceMap{
		Version:        3,
		File:           jsFilename(opts.Filename),
		Sources:        []string{opts.Filename},
		SourcesContent: []string{opts.Source},
		Names:          []string{},
		Mappings:       g.maps.encode(len(all)),
	}
	return code, srcMap
}

// reactiveNames collects the identifiers that must be read through .value:
// component state plus store state and store getters.
func reactiveNames(prog *ast.Program) map[string]bool {
	names := make(map[string]bool)
	if prog.State != nil {
		for _, entry := range prog.State.Entries {
			names[entry.Name] = true
		}
	}
	if prog.Store != nil {
		for _, entry := range prog.Store.State {
			names[entry.Name] = true
		}
		for _, getter := range prog.Store.Getters {
			names[getter.Name] = true
		}
	}
	return names
}

func (g *generator) use(name string) string {
	g.uses[name] = true
	return name
}

func (g *generator) runtimeImport() string {
	if len(g.uses) == 0 {
		return ""
	}
	names := make([]string, 0, len(g.uses))
	for name := range g.uses {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("import { %s } from %s;", strings.Join(names, ", "), quoteJS(g.opts.Runtime))
}

// mark records that the next emitted line originates at the given node.
func (g *generator) mark(node ast.Node) {
	pos := node.Pos()
	g.pending = &pos
}

func (g *generator) emit(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if line != "" {
		line = strings.Repeat("  ", g.indent) + line
	}
	if g.pending != nil {
		g.maps.add(len(g.lines), g.indent*2, g.pending.Line-1, g.pending.Column-1)
		g.pending = nil
	}
	g.lines = append(g.lines, line)
}

func (g *generator) blank() {
	if n := len(g.lines); n > 0 && g.lines[n-1] != "" {
		g.lines = append(g.lines, "")
	}
}

// ---------------------------------------------------------------------------
// Module layout

func (g *generator) program(prog *ast.Program) {
	for _, imp := range prog.Imports {
		path := imp.From
		if path == "" {
			path = "./" + imp.Name + ".pulse"
		}
		g.mark(imp)
		g.emit("import %s from %s;", imp.Name, quoteJS(path))
	}
	if len(prog.Imports) > 0 {
		g.blank()
	}

	if prog.Route != nil {
		g.mark(prog.Route)
		g.emit("export const route = %s;", quoteJS(prog.Route.Path))
		g.blank()
	}
	if prog.Page != nil {
		g.mark(prog.Page)
		g.emit("export const page = {")
		g.indent++
		for _, entry := range prog.Page.Entries {
			g.mark(entry)
			g.emit("%s: %s,", propKey(entry.Name), g.w.expr(entry.Value))
		}
		g.indent--
		g.emit("};")
		g.blank()
	}

	if prog.Store != nil {
		g.store(prog.Store)
	}
	if prog.Router != nil {
		g.router(prog.Router)
	}

	g.component(prog)

	if prog.Style != nil {
		g.style(prog.Style)
	}
}

func (g *generator) component(prog *ast.Program) {
	name := componentName(g.opts.Filename)
	g.emit("export default function %s(props = {}) {", name)
	g.indent++

	if prog.Props != nil && len(prog.Props.Entries) > 0 {
		parts := make([]string, len(prog.Props.Entries))
		for i, entry := range prog.Props.Entries {
			parts[i] = entry.Name
			if entry.Value != nil {
				parts[i] += " = " + g.w.expr(entry.Value)
			}
		}
		g.mark(prog.Props)
		g.emit("const { %s } = props;", strings.Join(parts, ", "))
	}
	if prog.State != nil {
		for _, entry := range prog.State.Entries {
			g.mark(entry)
			g.emit("const %s = %s(%s);", entry.Name, g.use("signal"), g.initExpr(entry.Value))
		}
	}
	if prog.Actions != nil {
		for _, action := range prog.Actions.Actions {
			g.action(action)
		}
	}

	g.blank()
	g.mark(viewNodeOrProgram(prog))
	g.emit("return [")
	g.indent++
	if prog.View != nil {
		g.viewNodes(prog.View.Children)
	}
	g.indent--
	g.emit("];")
	g.indent--
	g.emit("}")
}

// initExpr prints a state initializer. Initializers run before any scope
// exists, so reactive rewriting applies as usual for references to earlier
// state.
func (g *generator) initExpr(e ast.Expr) string {
	if e == nil {
		return "undefined"
	}
	return g.w.expr(e)
}

func viewNodeOrProgram(prog *ast.Program) ast.Node {
	if prog.View != nil {
		return prog.View
	}
	return prog
}

func (g *generator) action(action *ast.Action) {
	g.mark(action)
	head := fmt.Sprintf("const %s = ", action.Name)
	if action.Async {
		head += "async "
	}
	head += "(" + g.paramList(action.Params) + ") => {"
	g.emit("%s", head)
	g.indent++
	names := paramNames(action.Params)
	g.w.push(names...)
	for _, stmt := range action.Body {
		g.mark(stmt)
		g.emit("%s", g.w.stmt(stmt))
	}
	g.w.pop()
	g.indent--
	g.emit("};")
}

func (g *generator) paramList(params []*ast.Param) string {
	parts := make([]string, len(params))
	for i, param := range params {
		s := param.Name
		if param.Rest {
			s = "..." + s
		}
		if param.Default != nil {
			s += " = " + g.w.expr(param.Default)
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

func paramNames(params []*ast.Param) []string {
	names := make([]string, len(params))
	for i, param := range params {
		names[i] = param.Name
	}
	return names
}

// ---------------------------------------------------------------------------
// Store and router

func (g *generator) store(store *ast.StoreBlock) {
	for _, entry := range store.State {
		g.mark(entry)
		g.emit("const %s = %s(%s);", entry.Name, g.use("signal"), g.initExpr(entry.Value))
	}
	for _, getter := range store.Getters {
		g.getter(getter)
	}
	for _, action := range store.Actions {
		g.action(action)
	}
	if store.Persist != nil && isTrueLiteral(store.Persist.Value) {
		key := "pulse-store"
		if store.StorageKey != nil {
			if lit, ok := store.StorageKey.Value.(*ast.Literal); ok {
				if s, ok := lit.Value.(string); ok {
					key = s
				}
			}
		}
		names := make([]string, len(store.State))
		for i, entry := range store.State {
			names[i] = entry.Name
		}
		g.mark(store.Persist)
		g.emit("%s(%s, { %s });", g.use("persistStore"), quoteJS(key), strings.Join(names, ", "))
	}
	if store.Plugins != nil {
		names := make([]string, len(store.State))
		for i, entry := range store.State {
			names[i] = entry.Name
		}
		g.mark(store.Plugins)
		g.emit("for (const __plugin of %s) {", g.w.expr(store.Plugins.Value))
		g.indent++
		g.emit("__plugin({ %s });", strings.Join(names, ", "))
		g.indent--
		g.emit("}")
	}
	g.blank()
}

func (g *generator) getter(getter *ast.Action) {
	g.mark(getter)
	if len(getter.Body) == 1 {
		if expr, ok := getter.Body[0].(*ast.ExprStmt); ok {
			g.emit("const %s = %s(() => %s);", getter.Name, g.use("computed"), g.w.child(expr.Expr, precConditional))
			return
		}
	}
	g.emit("const %s = %s(() => {", getter.Name, g.use("computed"))
	g.indent++
	for _, stmt := range getter.Body {
		g.mark(stmt)
		g.emit("%s", g.w.stmt(stmt))
	}
	g.indent--
	g.emit("});")
}

func (g *generator) router(router *ast.RouterBlock) {
	g.mark(router)
	g.emit("const router = %s({", g.use("createRouter"))
	g.indent++
	g.emit("routes: {")
	g.indent++
	for _, entry := range router.Routes {
		g.mark(entry)
		g.emit("%s: %s,", quoteJS(entry.Path), entry.Component)
	}
	g.indent--
	g.emit("},")
	if router.Mode != nil {
		g.mark(router.Mode)
		g.emit("mode: %s,", g.w.expr(router.Mode.Value))
	}
	if router.Fallback != nil {
		g.mark(router.Fallback)
		g.emit("fallback: %s,", g.w.expr(router.Fallback.Value))
	}
	if len(router.Guards) > 0 {
		g.emit("guards: {")
		g.indent++
		for _, guard := range router.Guards {
			g.guard(guard)
		}
		g.indent--
		g.emit("},")
	}
	g.indent--
	g.emit("});")
	g.blank()
}

func (g *generator) guard(guard *ast.Action) {
	g.mark(guard)
	head := fmt.Sprintf("%s: ", propKey(guard.Name))
	if guard.Async {
		head += "async "
	}
	head += "(" + g.paramList(guard.Params) + ") => {"
	g.emit("%s", head)
	g.indent++
	g.w.push(paramNames(guard.Params)...)
	for _, stmt := range guard.Body {
		g.mark(stmt)
		g.emit("%s", g.w.stmt(stmt))
	}
	g.w.pop()
	g.indent--
	g.emit("},")
}

func isTrueLiteral(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Raw == "true"
}

// ---------------------------------------------------------------------------
// Style

func (g *generator) style(style *ast.StyleBlock) {
	scope := ScopeToken(g.opts.Filename, style.Raw)
	selScope := ""
	if g.opts.ScopeStyles {
		selScope = scope
	}
	css := printCSS(style, selScope)
	g.blank()
	g.emit("/* pulse:css */")
	g.mark(style)
	g.emit("const __css = %s;", quoteJS(css))
	g.emit("%s(%s, __css);", g.use("injectStyles"), quoteJS(scope))
	g.emit("/* /pulse:css */")
}

// ---------------------------------------------------------------------------
// View

func (g *generator) viewNodes(nodes []ast.ViewNode) {
	for _, node := range nodes {
		g.viewNode(node)
	}
}

func (g *generator) viewNode(node ast.ViewNode) {
	switch n := node.(type) {
	case *ast.Element:
		g.element(n)
	case *ast.Component:
		g.componentCall(n)
	case *ast.SlotElement:
		g.slot(n)
	case *ast.Text:
		g.textParts(n)
	case *ast.IfDirective:
		g.ifDirective(n)
	case *ast.EachDirective:
		g.eachDirective(n)
	case *ast.ClientDirective:
		g.renderGate(n, g.use("clientOnly"), n.Children)
	case *ast.ServerDirective:
		g.renderGate(n, g.use("serverOnly"), n.Children)
	case *ast.LinkDirective:
		g.link(n)
	case *ast.OutletDirective:
		g.mark(n)
		if n.Selector != "" {
			g.emit("%s(%s),", g.use("outlet"), quoteJS(n.Selector))
		} else {
			g.emit("%s(),", g.use("outlet"))
		}
	default:
		panic(fmt.Sprintf("codegen: unhandled view node %T", node))
	}
}

func (g *generator) element(el *ast.Element) {
	pre, post := g.wrapParts(el)
	attrs := g.elementAttrs(el)

	children := el.Children
	if el.TextContent != nil {
		children = []ast.ViewNode{el.TextContent}
	}
	g.mark(el)
	if len(children) == 0 {
		g.emit("%s%s(%s, %s)%s,", pre, g.use("element"), quoteJS(el.Tag), attrs, post)
		return
	}
	g.emit("%s%s(%s, %s, [", pre, g.use("element"), quoteJS(el.Tag), attrs)
	g.indent++
	g.viewNodes(children)
	g.indent--
	g.emit("])%s,", post)
}

// elementAttrs renders the static attribute object. Reactive attribute
// values are excluded here; wrapParts turns each into a bindAttr wrapper.
func (g *generator) elementAttrs(el *ast.Element) string {
	var parts []string
	classes := el.Classes
	if g.scopeClass != "" {
		classes = append(append([]string{}, classes...), g.scopeClass)
	}
	if len(classes) > 0 {
		parts = append(parts, "class: "+quoteJS(strings.Join(classes, " ")))
	}
	if el.ID != "" {
		parts = append(parts, "id: "+quoteJS(el.ID))
	}
	for _, attr := range el.Attributes {
		if attr.Value != nil && g.w.referencesReactive(attr.Value) {
			continue
		}
		value := "true"
		if attr.Value != nil {
			value = g.w.child(attr.Value, precConditional)
		}
		parts = append(parts, propKey(attr.Name)+": "+value)
	}
	if len(parts) == 0 {
		return "null"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// wrapParts builds the open/close call fragments for an element's reactive
// attributes and attached directives. Directives wrap in source order, the
// first written ending up innermost.
func (g *generator) wrapParts(el *ast.Element) (string, string) {
	type wrap struct{ open, close string }
	var wraps []wrap
	for _, attr := range el.Attributes {
		if attr.Value == nil || !g.w.referencesReactive(attr.Value) {
			continue
		}
		wraps = append(wraps, wrap{
			open:  g.use("bindAttr") + "(",
			close: fmt.Sprintf(", %s, () => %s)", quoteJS(attr.Name), g.w.child(attr.Value, precConditional)),
		})
	}
	for _, dir := range el.Directives {
		open, close := g.directiveWrap(dir)
		wraps = append(wraps, wrap{open, close})
	}
	var pre, post strings.Builder
	for i := len(wraps) - 1; i >= 0; i-- {
		pre.WriteString(wraps[i].open)
	}
	for _, w := range wraps {
		post.WriteString(w.close)
	}
	return pre.String(), post.String()
}

func (g *generator) directiveWrap(dir ast.Directive) (string, string) {
	switch d := dir.(type) {
	case *ast.EventDirective:
		close := fmt.Sprintf(", %s, %s", quoteJS(d.Event), g.handler(d.Handler))
		if len(d.Modifiers) > 0 {
			close += ", " + stringArray(d.Modifiers)
		}
		return g.use("on") + "(", close + ")"
	case *ast.ModelDirective:
		target := g.w.child(d.Target, precPostfix)
		close := fmt.Sprintf(", () => %s, (__v) => %s = __v", target, target)
		if len(d.Modifiers) > 0 {
			close += ", " + stringArray(d.Modifiers)
		}
		return g.use("model") + "(", close + ")"
	case *ast.A11yDirective:
		return g.use("a11y") + "(", ", " + g.attrObject(d.Attrs) + ")"
	case *ast.LiveDirective:
		politeness := d.Politeness
		if politeness == "" {
			politeness = "polite"
		}
		return g.use("live") + "(", ", " + quoteJS(politeness) + ")"
	case *ast.FocusTrapDirective:
		if len(d.Options) == 0 {
			return g.use("focusTrap") + "(", ")"
		}
		return g.use("focusTrap") + "(", ", " + g.attrObject(d.Options) + ")"
	case *ast.SrOnlyDirective:
		return g.use("srOnly") + "(", ")"
	case *ast.ClientDirective:
		return g.use("clientOnly") + "(", ")"
	case *ast.ServerDirective:
		return g.use("serverOnly") + "(", ")"
	case *ast.NavigateDirective:
		call := g.use("navigate") + "(" + g.w.child(d.Path, precConditional)
		if d.Options != nil {
			call += ", " + g.w.child(d.Options, precConditional)
		}
		call += ")"
		return g.use("on") + "(", fmt.Sprintf(", \"click\", () => %s)", call)
	case *ast.BackDirective:
		return g.use("on") + "(", fmt.Sprintf(", \"click\", () => %s())", g.use("back"))
	case *ast.ForwardDirective:
		return g.use("on") + "(", fmt.Sprintf(", \"click\", () => %s())", g.use("forward"))
	}
	panic(fmt.Sprintf("codegen: unhandled attached directive %T", dir))
}

// handler prints an event handler expression. Function-valued expressions
// pass through; anything else is wrapped in a closure so the expression
// evaluates on dispatch, not at render time.
func (g *generator) handler(e ast.Expr) string {
	switch e.(type) {
	case *ast.ArrowFunction, *ast.Identifier, *ast.MemberExpr:
		return g.w.child(e, precConditional)
	default:
		return "() => " + g.w.child(e, precAssign)
	}
}

func (g *generator) attrObject(attrs []*ast.Attribute) string {
	parts := make([]string, len(attrs))
	for i, attr := range attrs {
		value := "true"
		if attr.Value != nil {
			value = g.w.child(attr.Value, precConditional)
		}
		parts[i] = propKey(attr.Name) + ": " + value
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func stringArray(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = quoteJS(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (g *generator) componentCall(comp *ast.Component) {
	parts := make([]string, len(comp.Props))
	for i, prop := range comp.Props {
		value := "true"
		if prop.Value != nil {
			value = g.w.child(prop.Value, precConditional)
			if g.w.referencesReactive(prop.Value) {
				value = "() => " + value
			}
		}
		parts[i] = propKey(prop.Name) + ": " + value
	}
	props := "{}"
	if len(parts) > 0 {
		props = "{ " + strings.Join(parts, ", ") + " }"
	}
	g.mark(comp)
	g.emit("%s(%s),", comp.Name, props)
}

func (g *generator) slot(sl *ast.SlotElement) {
	g.mark(sl)
	if len(sl.Fallback) == 0 {
		g.emit("%s(props, %s),", g.use("slot"), quoteJS(sl.Name))
		return
	}
	g.emit("%s(props, %s, () => [", g.use("slot"), quoteJS(sl.Name))
	g.indent++
	g.viewNodes(sl.Fallback)
	g.indent--
	g.emit("]),")
}

func (g *generator) textParts(txt *ast.Text) {
	for _, part := range txt.Parts {
		if part.Expr == nil {
			g.mark(txt)
			g.emit("%s(%s),", g.use("text"), quoteJS(part.Text))
			continue
		}
		g.mark(part.Expr)
		if g.w.referencesReactive(part.Expr) {
			g.emit("%s(() => %s),", g.use("bind"), g.w.child(part.Expr, precConditional))
		} else {
			g.emit("%s(%s),", g.use("text"), g.w.child(part.Expr, precConditional))
		}
	}
}

func (g *generator) ifDirective(dir *ast.IfDirective) {
	g.mark(dir)
	g.emit("%s([", g.use("cond"))
	g.indent++
	g.condBranch(dir, dir.Cond, dir.Consequent)
	for _, branch := range dir.ElseIfBranches {
		g.mark(branch)
		g.condBranch(branch, branch.Cond, branch.Body)
	}
	g.indent--
	if !dir.HasElse && dir.Alternate == nil {
		g.emit("], null),")
		return
	}
	g.emit("], () => [")
	g.indent++
	g.viewNodes(dir.Alternate)
	g.indent--
	g.emit("]),")
}

func (g *generator) condBranch(node ast.Node, cond ast.Expr, body []ast.ViewNode) {
	g.mark(node)
	g.emit("[() => %s, () => [", g.w.child(cond, precConditional))
	g.indent++
	g.viewNodes(body)
	g.indent--
	g.emit("]],")
}

func (g *generator) eachDirective(dir *ast.EachDirective) {
	g.mark(dir)
	g.emit("%s(() => %s, (%s) => [", g.use("list"), g.w.child(dir.Source, precConditional), dir.ItemName)
	g.indent++
	g.w.push(dir.ItemName)
	g.viewNodes(dir.Body)
	g.indent--
	if dir.KeyExpr == nil {
		g.w.pop()
		g.emit("], null),")
		return
	}
	key := g.w.child(dir.KeyExpr, precConditional)
	g.w.pop()
	g.emit("], (%s) => %s),", dir.ItemName, key)
}

func (g *generator) renderGate(node ast.Node, primitive string, children []ast.ViewNode) {
	g.mark(node)
	g.emit("%s(() => [", primitive)
	g.indent++
	g.viewNodes(children)
	g.indent--
	g.emit("]),")
}

func (g *generator) link(dir *ast.LinkDirective) {
	options := "null"
	if dir.Options != nil {
		options = g.w.child(dir.Options, precConditional)
	}
	g.mark(dir)
	if len(dir.Content) == 0 {
		g.emit("%s(%s, %s, []),", g.use("link"), g.w.child(dir.Path, precConditional), options)
		return
	}
	g.emit("%s(%s, %s, [", g.use("link"), g.w.child(dir.Path, precConditional), options)
	g.indent++
	g.viewNodes(dir.Content)
	g.indent--
	g.emit("]),")
}

// ---------------------------------------------------------------------------
// Naming

// jsFilename is the generated module's name for the source map File field.
func jsFilename(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".js"
}

// componentName derives the exported function name from the source filename:
// "todo-list.pulse" becomes "TodoList".
func componentName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	upper := true
	for _, r := range base {
		switch {
		case r == '-' || r == '_' || r == '.' || r == ' ':
			upper = true
		case upper:
			b.WriteRune(toUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || !isLetterStart(name[0]) {
		return "Component"
	}
	return name
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}

func isLetterStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
