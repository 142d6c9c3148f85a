package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pulselang/pulse/pkg/compiler/ast"
)

// printer serializes expression and statement trees to JavaScript. It
// rewrites references to reactive names (state entries, store state, store
// getters) into `.value` accesses, honoring lexical shadowing by arrow
// parameters, loop variables and local declarations. Output is a pure
// function of the tree, which keeps generated modules byte-identical across
// runs.
type printer struct {
	reactive map[string]bool
	scopes   []map[string]bool
}

func newPrinter(reactive map[string]bool) *printer {
	return &printer{reactive: reactive}
}

func (w *printer) push(names ...string) {
	scope := make(map[string]bool, len(names))
	for _, n := range names {
		scope[n] = true
	}
	w.scopes = append(w.scopes, scope)
}

func (w *printer) pop() {
	w.scopes = w.scopes[:len(w.scopes)-1]
}

func (w *printer) declare(name string) {
	if len(w.scopes) > 0 {
		w.scopes[len(w.scopes)-1][name] = true
	}
}

func (w *printer) shadowed(name string) bool {
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if w.scopes[i][name] {
			return true
		}
	}
	return false
}

func (w *printer) isReactiveName(name string) bool {
	return w.reactive[name] && !w.shadowed(name)
}

// operator precedence, mirroring the parser's table; higher binds tighter
const (
	precSequence = iota
	precAssign
	precConditional
	precLogicalOr
	precLogicalAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

func exprPrec(e ast.Expr) int {
	switch ex := e.(type) {
	case *ast.SequenceExpr:
		return precSequence
	case *ast.AssignmentExpr, *ast.ArrowFunction:
		return precAssign
	case *ast.ConditionalExpr:
		return precConditional
	case *ast.LogicalExpr:
		if ex.Op == "&&" {
			return precLogicalAnd
		}
		return precLogicalOr
	case *ast.BinaryExpr:
		switch ex.Op {
		case "==", "!=", "===", "!==":
			return precEquality
		case "<", ">", "<=", ">=":
			return precRelational
		case "+", "-":
			return precAdditive
		default:
			return precMultiplicative
		}
	case *ast.UnaryExpr:
		return precUnary
	case *ast.UpdateExpr:
		return precPostfix
	default:
		return precPrimary
	}
}

// child prints a subexpression, parenthesizing when its precedence is below
// what the position requires.
func (w *printer) child(e ast.Expr, min int) string {
	s := w.expr(e)
	if exprPrec(e) < min {
		return "(" + s + ")"
	}
	return s
}

func (w *printer) expr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.Literal:
		return w.literal(ex)
	case *ast.Identifier:
		if w.isReactiveName(ex.Name) {
			return ex.Name + ".value"
		}
		return ex.Name
	case *ast.TemplateLit:
		return w.template(ex)
	case *ast.ArrayLit:
		parts := make([]string, len(ex.Elements))
		for i, el := range ex.Elements {
			parts[i] = w.expr(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.ObjectLit:
		return w.object(ex)
	case *ast.UnaryExpr:
		if ex.Op == "await" {
			return "await " + w.child(ex.Operand, precUnary)
		}
		operand := w.child(ex.Operand, precUnary)
		if ex.Op == "-" && strings.HasPrefix(operand, "-") {
			// -(-x) must not print as --x
			operand = "(" + operand + ")"
		}
		return ex.Op + operand
	case *ast.UpdateExpr:
		return w.child(ex.Operand, precPostfix) + ex.Op
	case *ast.BinaryExpr:
		p := exprPrec(ex)
		return w.child(ex.Left, p) + " " + ex.Op + " " + w.child(ex.Right, p+1)
	case *ast.LogicalExpr:
		p := exprPrec(ex)
		return w.child(ex.Left, p) + " " + ex.Op + " " + w.child(ex.Right, p+1)
	case *ast.AssignmentExpr:
		return w.child(ex.Target, precPostfix) + " " + ex.Op + " " + w.child(ex.Value, precAssign)
	case *ast.ConditionalExpr:
		return w.child(ex.Test, precLogicalOr) + " ? " + w.child(ex.Consequent, precAssign) + " : " + w.child(ex.Alternate, precAssign)
	case *ast.ArrowFunction:
		return w.arrow(ex)
	case *ast.CallExpr:
		args := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = w.expr(a)
		}
		return w.child(ex.Callee, precPostfix) + "(" + strings.Join(args, ", ") + ")"
	case *ast.MemberExpr:
		if ex.Computed {
			return w.child(ex.Object, precPostfix) + "[" + w.expr(ex.Index) + "]"
		}
		return w.child(ex.Object, precPostfix) + "." + ex.Property
	case *ast.SpreadExpr:
		return "..." + w.child(ex.Arg, precAssign)
	case *ast.SequenceExpr:
		parts := make([]string, len(ex.Exprs))
		for i, sub := range ex.Exprs {
			parts[i] = w.child(sub, precAssign)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	panic(fmt.Sprintf("codegen: unhandled expression node %T", e))
}

func (w *printer) literal(lit *ast.Literal) string {
	switch v := lit.Value.(type) {
	case string:
		return quoteJS(v)
	case bool, float64:
		return lit.Raw
	case nil:
		if lit.Raw == "undefined" {
			return "undefined"
		}
		return "null"
	default:
		return lit.Raw
	}
}

func (w *printer) template(tpl *ast.TemplateLit) string {
	var b strings.Builder
	b.WriteByte('`')
	for _, part := range tpl.Parts {
		if part.Expr != nil {
			b.WriteString("${")
			b.WriteString(w.expr(part.Expr))
			b.WriteString("}")
			continue
		}
		b.WriteString(escapeTemplateText(part.Text))
	}
	b.WriteByte('`')
	return b.String()
}

func (w *printer) object(obj *ast.ObjectLit) string {
	parts := make([]string, len(obj.Properties))
	for i, prop := range obj.Properties {
		switch {
		case prop.Spread:
			parts[i] = "..." + w.child(prop.Value, precAssign)
		case prop.Shorthand && !w.isReactiveName(prop.Key):
			parts[i] = prop.Key
		default:
			parts[i] = propKey(prop.Key) + ": " + w.child(prop.Value, precAssign)
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (w *printer) arrow(fn *ast.ArrowFunction) string {
	names := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		names[i] = param.Name
	}
	w.push(names...)
	defer w.pop()

	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		s := param.Name
		if param.Rest {
			s = "..." + s
		}
		if param.Default != nil {
			s += " = " + w.expr(param.Default)
		}
		params[i] = s
	}
	head := "(" + strings.Join(params, ", ") + ")"
	if fn.BlockBody != nil {
		return head + " => { " + w.inlineStmts(fn.BlockBody) + " }"
	}
	body := w.child(fn.Body, precAssign)
	if _, isObj := fn.Body.(*ast.ObjectLit); isObj {
		body = "(" + body + ")"
	}
	return head + " => " + body
}

// inlineStmts renders a statement list on one line, for arrow bodies nested
// inside expressions.
func (w *printer) inlineStmts(body []ast.Stmt) string {
	parts := make([]string, len(body))
	for i, stmt := range body {
		parts[i] = w.stmt(stmt)
	}
	return strings.Join(parts, " ")
}

func (w *printer) stmt(s ast.Stmt) string {
	switch st := s.(type) {
	case *ast.ExprStmt:
		return w.expr(st.Expr) + ";"
	case *ast.LetStmt:
		kw := "let"
		if st.Const {
			kw = "const"
		}
		value := w.expr(st.Value)
		w.declare(st.Name)
		return kw + " " + st.Name + " = " + value + ";"
	case *ast.ReturnStmt:
		if st.Value == nil {
			return "return;"
		}
		return "return " + w.expr(st.Value) + ";"
	}
	panic(fmt.Sprintf("codegen: unhandled statement node %T", s))
}

// referencesReactive reports whether the expression reads any reactive name
// that is not shadowed, deciding whether a binding primitive must wrap it.
func (w *printer) referencesReactive(e ast.Expr) bool {
	switch ex := e.(type) {
	case nil:
		return false
	case *ast.Literal:
		return false
	case *ast.Identifier:
		return w.isReactiveName(ex.Name)
	case *ast.TemplateLit:
		for _, part := range ex.Parts {
			if part.Expr != nil && w.referencesReactive(part.Expr) {
				return true
			}
		}
	case *ast.ArrayLit:
		for _, el := range ex.Elements {
			if w.referencesReactive(el) {
				return true
			}
		}
	case *ast.ObjectLit:
		for _, prop := range ex.Properties {
			if w.referencesReactive(prop.Value) {
				return true
			}
		}
	case *ast.UnaryExpr:
		return w.referencesReactive(ex.Operand)
	case *ast.UpdateExpr:
		return w.referencesReactive(ex.Operand)
	case *ast.BinaryExpr:
		return w.referencesReactive(ex.Left) || w.referencesReactive(ex.Right)
	case *ast.LogicalExpr:
		return w.referencesReactive(ex.Left) || w.referencesReactive(ex.Right)
	case *ast.AssignmentExpr:
		return w.referencesReactive(ex.Target) || w.referencesReactive(ex.Value)
	case *ast.ConditionalExpr:
		return w.referencesReactive(ex.Test) || w.referencesReactive(ex.Consequent) || w.referencesReactive(ex.Alternate)
	case *ast.ArrowFunction:
		names := make([]string, len(ex.Params))
		for i, p := range ex.Params {
			names[i] = p.Name
		}
		w.push(names...)
		defer w.pop()
		if ex.Body != nil {
			return w.referencesReactive(ex.Body)
		}
		for _, stmt := range ex.BlockBody {
			if w.stmtReferencesReactive(stmt) {
				return true
			}
		}
	case *ast.CallExpr:
		if w.referencesReactive(ex.Callee) {
			return true
		}
		for _, a := range ex.Args {
			if w.referencesReactive(a) {
				return true
			}
		}
	case *ast.MemberExpr:
		if w.referencesReactive(ex.Object) {
			return true
		}
		if ex.Computed {
			return w.referencesReactive(ex.Index)
		}
	case *ast.SpreadExpr:
		return w.referencesReactive(ex.Arg)
	case *ast.SequenceExpr:
		for _, sub := range ex.Exprs {
			if w.referencesReactive(sub) {
				return true
			}
		}
	}
	return false
}

func (w *printer) stmtReferencesReactive(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.ExprStmt:
		return w.referencesReactive(st.Expr)
	case *ast.LetStmt:
		return w.referencesReactive(st.Value)
	case *ast.ReturnStmt:
		return st.Value != nil && w.referencesReactive(st.Value)
	}
	return false
}

// quoteJS renders a Go string as a double-quoted JavaScript string literal.
func quoteJS(s string) string {
	return strconv.Quote(s)
}

func identLikeKey(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		ok := ch == '_' || ch == '$' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(i > 0 && ch >= '0' && ch <= '9')
		if !ok {
			return false
		}
	}
	return true
}

// propKey quotes object keys that are not valid identifiers (aria-label,
// numeric strings).
func propKey(key string) string {
	if identLikeKey(key) {
		return key
	}
	return quoteJS(key)
}

func escapeTemplateText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "`", "\\`")
	s = strings.ReplaceAll(s, "${", "\\${")
	return s
}
