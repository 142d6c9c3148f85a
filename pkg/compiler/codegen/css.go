package codegen

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pulselang/pulse/pkg/compiler/ast"
)

// ScopeToken derives the per-component style scope class from the component
// filename and its style text. The token is stable for identical inputs, so
// rebuilds of an unchanged file produce identical output.
func ScopeToken(filename, css string) string {
	sum := sha256.Sum256([]byte(filename + "\x00" + css))
	return "p-" + hex.EncodeToString(sum[:])[:6]
}

// printCSS flattens the style tree into plain CSS. Nested rules resolve
// against their parent selector (`&` splices the parent in place, anything
// else becomes a descendant), and when scope is non-empty the scope class is
// appended to every compound selector. Keyframe bodies are never scoped.
// Preprocessor blocks and structurally unparseable styles fall back to the
// raw text unmodified.
func printCSS(block *ast.StyleBlock, scope string) string {
	if block == nil {
		return ""
	}
	if block.Rules == nil {
		return strings.TrimSpace(block.Raw)
	}
	var b strings.Builder
	for _, node := range block.Rules {
		printStyleNode(&b, node, nil, scope, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

func printStyleNode(b *strings.Builder, node ast.StyleNode, parents []string, scope string, depth int) {
	switch n := node.(type) {
	case *ast.Rule:
		printRule(b, n, parents, scope, depth)
	case *ast.AtRule:
		printAtRule(b, n, parents, scope, depth)
	}
}

func printRule(b *strings.Builder, rule *ast.Rule, parents []string, scope string, depth int) {
	indent := strings.Repeat("  ", depth)
	resolved := resolveSelectors(parents, splitSelectors(rule.Selector))

	if rule.Selector == "" {
		// declaration wrapper inside an at-rule body; the at-rule
		// already opened the braces
		for _, decl := range rule.Declarations {
			printDeclaration(b, decl, indent)
		}
		return
	}
	if len(rule.Declarations) > 0 {
		header := make([]string, len(resolved))
		for i, sel := range resolved {
			header[i] = scopeSelector(sel, scope)
		}
		b.WriteString(indent)
		b.WriteString(strings.Join(header, ", "))
		b.WriteString(" {\n")
		for _, decl := range rule.Declarations {
			printDeclaration(b, decl, indent+"  ")
		}
		b.WriteString(indent)
		b.WriteString("}\n")
	}
	for _, child := range rule.Rules {
		printStyleNode(b, child, resolved, scope, depth)
	}
}

func printAtRule(b *strings.Builder, at *ast.AtRule, parents []string, scope string, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString("@")
	b.WriteString(at.Name)
	if at.Params != "" {
		b.WriteString(" ")
		b.WriteString(at.Params)
	}
	if at.Body == nil {
		b.WriteString(";\n")
		return
	}
	b.WriteString(" {\n")
	inner := scope
	if at.Name == "keyframes" || strings.HasSuffix(at.Name, "-keyframes") {
		inner = ""
	}
	for _, node := range at.Body {
		printStyleNode(b, node, parents, inner, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("}\n")
}

func printDeclaration(b *strings.Builder, decl *ast.Declaration, indent string) {
	b.WriteString(indent)
	b.WriteString(decl.Property)
	b.WriteString(": ")
	b.WriteString(decl.Value)
	if decl.Important {
		b.WriteString(" !important")
	}
	b.WriteString(";\n")
}

// resolveSelectors combines each parent selector with each child selector.
func resolveSelectors(parents, children []string) []string {
	if len(parents) == 0 {
		return children
	}
	out := make([]string, 0, len(parents)*len(children))
	for _, parent := range parents {
		for _, child := range children {
			if strings.Contains(child, "&") {
				out = append(out, strings.ReplaceAll(child, "&", parent))
			} else {
				out = append(out, parent+" "+child)
			}
		}
	}
	return out
}

// splitSelectors splits a selector list on top-level commas.
func splitSelectors(sel string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(sel); i++ {
		switch sel[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(sel[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(sel[start:]))
	keep := parts[:0]
	for _, p := range parts {
		if p != "" {
			keep = append(keep, p)
		}
	}
	return keep
}

// scopeSelector appends the scope class to every compound selector, placing
// it before any pseudo-class or pseudo-element so `.card:hover` becomes
// `.card.p-xxxxxx:hover`. Combinators and selectors that are purely
// pseudo (like :root) pass through untouched.
func scopeSelector(sel, scope string) string {
	if scope == "" {
		return sel
	}
	fields := splitCompound(sel)
	for i, f := range fields {
		if f == ">" || f == "+" || f == "~" {
			continue
		}
		fields[i] = scopeCompound(f, scope)
	}
	return strings.Join(fields, " ")
}

func splitCompound(sel string) []string {
	var fields []string
	depth := 0
	start := -1
	for i := 0; i < len(sel); i++ {
		ch := sel[i]
		switch {
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
		}
		if depth == 0 && (ch == ' ' || ch == '\t') {
			if start >= 0 {
				fields = append(fields, sel[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, sel[start:])
	}
	return fields
}

func scopeCompound(compound, scope string) string {
	idx := pseudoIndex(compound)
	if idx == 0 {
		return compound
	}
	if idx < 0 {
		return compound + "." + scope
	}
	return compound[:idx] + "." + scope + compound[idx:]
}

// pseudoIndex finds the first top-level ':' in a compound selector, or -1.
func pseudoIndex(compound string) int {
	depth := 0
	for i := 0; i < len(compound); i++ {
		switch compound[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
