package parser

import (
	"strings"
	"testing"

	"github.com/pulselang/pulse/pkg/compiler/ast"
	"github.com/pulselang/pulse/pkg/compiler/lexer"
	"github.com/pulselang/pulse/pkg/compiler/token"
)

func parseExprText(t *testing.T, source string) ast.Expr {
	t.Helper()
	toks, err := lexer.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", source, err)
	}
	p := New(toks)
	e, perr := p.parseExpr()
	if perr != nil {
		t.Fatalf("parseExpr(%q) error: %v", source, perr)
	}
	if !p.at(token.EOF) {
		t.Fatalf("parseExpr(%q) left tokens behind at %v", source, p.cur())
	}
	return e
}

func TestParseExpr_Precedence(t *testing.T) {
	e := parseExprText(t, "1 + 2 * 3")
	add, ok := e.(*ast.BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("root = %+v, want +", e)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("right = %+v, want * to bind tighter", add.Right)
	}
}

func TestParseExpr_Grouping(t *testing.T) {
	e := parseExprText(t, "(1 + 2) * 3")
	mul, ok := e.(*ast.BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("root = %+v, want *", e)
	}
	if add, ok := mul.Left.(*ast.BinaryExpr); !ok || add.Op != "+" {
		t.Fatalf("left = %+v, want grouped +", mul.Left)
	}
}

func TestParseExpr_LogicalAndNullish(t *testing.T) {
	e := parseExprText(t, "a && b || c ?? d")
	root, ok := e.(*ast.LogicalExpr)
	if !ok || root.Op != "??" {
		t.Fatalf("root = %+v, want ?? at lowest precedence", e)
	}
	or, ok := root.Left.(*ast.LogicalExpr)
	if !ok || or.Op != "||" {
		t.Fatalf("left = %+v, want ||", root.Left)
	}
	if and, ok := or.Left.(*ast.LogicalExpr); !ok || and.Op != "&&" {
		t.Fatalf("left.left = %+v, want &&", or.Left)
	}
}

func TestParseExpr_Conditional(t *testing.T) {
	e := parseExprText(t, `a > 1 ? "big" : "small"`)
	cond, ok := e.(*ast.ConditionalExpr)
	if !ok {
		t.Fatalf("root = %T, want conditional", e)
	}
	if _, ok := cond.Test.(*ast.BinaryExpr); !ok {
		t.Errorf("test = %T", cond.Test)
	}
}

func TestParseExpr_Assignment(t *testing.T) {
	e := parseExprText(t, "a.b += c = 2")
	assign, ok := e.(*ast.AssignmentExpr)
	if !ok || assign.Op != "+=" {
		t.Fatalf("root = %+v, want +=", e)
	}
	inner, ok := assign.Value.(*ast.AssignmentExpr)
	if !ok || inner.Op != "=" {
		t.Fatalf("value = %+v, want right-associative =", assign.Value)
	}
}

func TestParseExpr_InvalidAssignmentTarget(t *testing.T) {
	toks, err := lexer.Tokenize("1 = 2")
	if err != nil {
		t.Fatal(err)
	}
	p := New(toks)
	if _, perr := p.parseExpr(); perr == nil || !strings.Contains(perr.Msg, "Invalid assignment target") {
		t.Fatalf("error = %v, want invalid assignment target", perr)
	}
}

func TestParseExpr_CallMemberChain(t *testing.T) {
	e := parseExprText(t, "a.b.c(1, x)[i].d")
	outer, ok := e.(*ast.MemberExpr)
	if !ok || outer.Property != "d" {
		t.Fatalf("root = %+v, want .d access", e)
	}
	idx, ok := outer.Object.(*ast.MemberExpr)
	if !ok || !idx.Computed {
		t.Fatalf("object = %+v, want computed index", outer.Object)
	}
	call, ok := idx.Object.(*ast.CallExpr)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("index object = %+v, want a 2-arg call", idx.Object)
	}
}

func TestParseExpr_UnaryAndPostfix(t *testing.T) {
	if e := parseExprText(t, "!!done"); e != nil {
		outer := e.(*ast.UnaryExpr)
		if _, ok := outer.Operand.(*ast.UnaryExpr); !ok {
			t.Errorf("double negation should nest, got %+v", outer.Operand)
		}
	}
	upd := parseExprText(t, "count++").(*ast.UpdateExpr)
	if upd.Op != "++" {
		t.Errorf("op = %q", upd.Op)
	}
	aw := parseExprText(t, "await load()").(*ast.UnaryExpr)
	if aw.Op != "await" {
		t.Errorf("op = %q, want await", aw.Op)
	}
}

func TestParseExpr_ArrowFunctions(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		params    int
		blockBody bool
	}{
		{"bare parameter", "x => x * 2", 1, false},
		{"empty parameters", "() => 1", 0, false},
		{"multiple with default", "(a, b = 1) => a + b", 2, false},
		{"rest parameter", "(...args) => args", 1, false},
		{"block body", "(x) => { let y = x; return y }", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, ok := parseExprText(t, tt.source).(*ast.ArrowFunction)
			if !ok {
				t.Fatalf("not an arrow function")
			}
			if len(fn.Params) != tt.params {
				t.Errorf("params = %d, want %d", len(fn.Params), tt.params)
			}
			if (fn.BlockBody != nil) != tt.blockBody {
				t.Errorf("block body = %v, want %v", fn.BlockBody != nil, tt.blockBody)
			}
		})
	}
}

func TestParseExpr_ParenIsNotArrow(t *testing.T) {
	e := parseExprText(t, "(a)")
	if _, ok := e.(*ast.Identifier); !ok {
		t.Fatalf("grouped identifier = %T, want plain identifier", e)
	}
	seq, ok := parseExprText(t, "(a, b)").(*ast.SequenceExpr)
	if !ok || len(seq.Exprs) != 2 {
		t.Fatalf("sequence = %+v", seq)
	}
}

func TestParseExpr_Literals(t *testing.T) {
	tests := []struct {
		source string
		value  interface{}
	}{
		{"42", 42.0},
		{"3.14", 3.14},
		{"1e3", 1000.0},
		{`"hi"`, "hi"},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"undefined", nil},
	}
	for _, tt := range tests {
		lit, ok := parseExprText(t, tt.source).(*ast.Literal)
		if !ok {
			t.Errorf("%q: not a literal", tt.source)
			continue
		}
		if lit.Value != tt.value {
			t.Errorf("%q: value = %v, want %v", tt.source, lit.Value, tt.value)
		}
		if lit.Raw == "" {
			t.Errorf("%q: raw spelling lost", tt.source)
		}
	}
}

func TestParseExpr_ObjectAndArray(t *testing.T) {
	obj := parseExprText(t, `{ a: 1, b, "c-d": 2, ...rest }`).(*ast.ObjectLit)
	if len(obj.Properties) != 4 {
		t.Fatalf("properties = %d, want 4", len(obj.Properties))
	}
	if !obj.Properties[1].Shorthand {
		t.Error("b should be shorthand")
	}
	if obj.Properties[2].Key != "c-d" {
		t.Errorf("string key = %q", obj.Properties[2].Key)
	}
	if !obj.Properties[3].Spread {
		t.Error("rest should be spread")
	}

	arr := parseExprText(t, "[1, x, ...xs]").(*ast.ArrayLit)
	if len(arr.Elements) != 3 {
		t.Fatalf("elements = %d, want 3", len(arr.Elements))
	}
	if _, ok := arr.Elements[2].(*ast.SpreadExpr); !ok {
		t.Error("third element should be spread")
	}
}

func TestParseExpr_TemplateLiteral(t *testing.T) {
	tpl := parseExprText(t, "`Hello ${name}, you have ${n + 1}`").(*ast.TemplateLit)
	if len(tpl.Parts) != 4 {
		t.Fatalf("parts = %d, want 4", len(tpl.Parts))
	}
	if tpl.Parts[0].Text != "Hello " {
		t.Errorf("parts[0] = %q", tpl.Parts[0].Text)
	}
	if _, ok := tpl.Parts[3].Expr.(*ast.BinaryExpr); !ok {
		t.Errorf("parts[3] = %T, want binary expression", tpl.Parts[3].Expr)
	}
}

func TestParseExpr_EmbeddedPositions(t *testing.T) {
	errs := parseErrs(t, "view {\n  p \"count: {1 +}\"\n}")
	if len(errs) == 0 {
		t.Fatal("want an error from the interpolation")
	}
	if errs[0].Line != 2 {
		t.Errorf("line = %d, want 2 (inside the text literal)", errs[0].Line)
	}
}

func TestParseStmts_Declarations(t *testing.T) {
	prog := parse(t, `
actions {
  setup() {
    let a = 1
    const b = 2;
    a = b
    return a
  }
}
`)
	body := prog.Actions.Actions[0].Body
	if len(body) != 4 {
		t.Fatalf("statements = %d, want 4", len(body))
	}
	if let, ok := body[0].(*ast.LetStmt); !ok || let.Const {
		t.Errorf("stmt[0] = %+v, want let", body[0])
	}
	if c, ok := body[1].(*ast.LetStmt); !ok || !c.Const {
		t.Errorf("stmt[1] = %+v, want const", body[1])
	}
	if _, ok := body[3].(*ast.ReturnStmt); !ok {
		t.Errorf("stmt[3] = %T, want return", body[3])
	}
}
