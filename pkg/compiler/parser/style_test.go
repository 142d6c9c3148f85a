package parser

import (
	"testing"

	"github.com/pulselang/pulse/pkg/compiler/ast"
)

func TestParseStyle_SimpleRule(t *testing.T) {
	block := ParseStyle(`
.card {
  color: red;
  margin: 0 auto !important;
}
`, 1, 1)
	if block.Lang != "" {
		t.Fatalf("lang = %q, want native CSS", block.Lang)
	}
	if len(block.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(block.Rules))
	}
	rule := block.Rules[0].(*ast.Rule)
	if rule.Selector != ".card" {
		t.Errorf("selector = %q", rule.Selector)
	}
	if len(rule.Declarations) != 2 {
		t.Fatalf("declarations = %+v", rule.Declarations)
	}
	if rule.Declarations[0].Property != "color" || rule.Declarations[0].Value != "red" {
		t.Errorf("decl[0] = %+v", rule.Declarations[0])
	}
	if !rule.Declarations[1].Important || rule.Declarations[1].Value != "0 auto" {
		t.Errorf("decl[1] = %+v, want !important stripped from value", rule.Declarations[1])
	}
}

func TestParseStyle_Nesting(t *testing.T) {
	block := ParseStyle(`
.card {
  color: red;
  &:hover { color: blue; }
  .title { font-weight: bold; }
}
`, 1, 1)
	rule := block.Rules[0].(*ast.Rule)
	if len(rule.Rules) != 2 {
		t.Fatalf("nested rules = %d, want 2", len(rule.Rules))
	}
	hover := rule.Rules[0].(*ast.Rule)
	if hover.Selector != "&:hover" {
		t.Errorf("nested selector = %q", hover.Selector)
	}
	title := rule.Rules[1].(*ast.Rule)
	if title.Selector != ".title" {
		t.Errorf("nested selector = %q", title.Selector)
	}
}

func TestParseStyle_AtRules(t *testing.T) {
	block := ParseStyle(`
@import url("base.css");
@media (max-width: 600px) {
  .card { display: none; }
}
@keyframes spin {
  from { transform: rotate(0deg); }
  to { transform: rotate(360deg); }
}
`, 1, 1)
	if len(block.Rules) != 3 {
		t.Fatalf("rules = %d, want 3", len(block.Rules))
	}
	imp := block.Rules[0].(*ast.AtRule)
	if imp.Name != "import" || imp.Body != nil {
		t.Errorf("import = %+v", imp)
	}
	media := block.Rules[1].(*ast.AtRule)
	if media.Name != "media" || media.Params != "(max-width: 600px)" {
		t.Errorf("media = %+v", media)
	}
	if len(media.Body) != 1 {
		t.Fatalf("media body = %+v", media.Body)
	}
	kf := block.Rules[2].(*ast.AtRule)
	if kf.Name != "keyframes" || kf.Params != "spin" || len(kf.Body) != 2 {
		t.Errorf("keyframes = %+v", kf)
	}
}

func TestParseStyle_FontFaceDeclarations(t *testing.T) {
	block := ParseStyle(`
@font-face {
  font-family: "Inter";
  src: url("inter.woff2");
}
`, 1, 1)
	ff := block.Rules[0].(*ast.AtRule)
	if ff.Name != "font-face" {
		t.Fatalf("name = %q", ff.Name)
	}
	wrapper := ff.Body[0].(*ast.Rule)
	if wrapper.Selector != "" || len(wrapper.Declarations) != 2 {
		t.Fatalf("wrapper = %+v", wrapper)
	}
}

func TestParseStyle_PreprocessorDetection(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		lang string
	}{
		{"scss variable", "$primary: #333;\n.card { color: $primary; }", "scss"},
		{"scss mixin", "@mixin center { display: flex; }", "scss"},
		{"less variable", "@primary: #333;\n.card { color: @primary; }", "less"},
		{"stylus assignment", "gutter = 16px\n.card\n  margin gutter", "stylus"},
		{"plain css with known at-rule", "@media (min-width: 100px) { .a { color: red; } }", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := ParseStyle(tt.raw, 1, 1)
			if block.Lang != tt.lang {
				t.Errorf("lang = %q, want %q", block.Lang, tt.lang)
			}
			if tt.lang != "" && block.Rules != nil {
				t.Error("preprocessor blocks must not be structurally parsed")
			}
			if block.Raw != tt.raw {
				t.Error("raw text must round-trip")
			}
		})
	}
}

func TestParseStyle_FallbackOnMalformed(t *testing.T) {
	raw := ".card { color: red;" // unbalanced
	block := ParseStyle(raw, 1, 1)
	if block.Rules != nil {
		t.Errorf("rules = %+v, want raw fallback", block.Rules)
	}
	if block.Raw != raw {
		t.Error("raw text must be preserved")
	}
}

func TestParseStyle_TopLevelDeclarationsFallBack(t *testing.T) {
	block := ParseStyle("color: red;", 1, 1)
	if block.Rules != nil {
		t.Error("top-level declarations have no selector; expected raw fallback")
	}
}

func TestParseStyle_CommentsAndStrings(t *testing.T) {
	block := ParseStyle(`
/* header { not a rule }  */
.quote::before {
  content: "}";
}
`, 1, 1)
	if len(block.Rules) != 1 {
		t.Fatalf("rules = %+v", block.Rules)
	}
	rule := block.Rules[0].(*ast.Rule)
	if rule.Selector != ".quote::before" {
		t.Errorf("selector = %q", rule.Selector)
	}
	if rule.Declarations[0].Value != `"}"` {
		t.Errorf("content value = %q", rule.Declarations[0].Value)
	}
}
