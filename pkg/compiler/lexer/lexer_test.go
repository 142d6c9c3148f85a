package lexer

import (
	"strings"
	"testing"

	"github.com/pulselang/pulse/pkg/compiler/token"
)

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenize_Operators(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []token.Type
	}{
		{
			name:   "compound assignment",
			source: "a += 1",
			want:   []token.Type{token.Ident, token.PlusAssign, token.Number, token.EOF},
		},
		{
			name:   "logical assignment",
			source: "a ??= b ||= c &&= d",
			want: []token.Type{
				token.Ident, token.NullAssign, token.Ident, token.OrAssign,
				token.Ident, token.AndAssign, token.Ident, token.EOF,
			},
		},
		{
			name:   "strict equality beats assignment",
			source: "a === b !== c",
			want:   []token.Type{token.Ident, token.EqEqEq, token.Ident, token.NotEqEq, token.Ident, token.EOF},
		},
		{
			name:   "increment and decrement",
			source: "a++ - --b",
			want:   []token.Type{token.Ident, token.Inc, token.Minus, token.Dec, token.Ident, token.EOF},
		},
		{
			name:   "arrow and spread",
			source: "(...xs) => xs",
			want: []token.Type{
				token.LParen, token.Ellipsis, token.Ident, token.RParen,
				token.Arrow, token.Ident, token.EOF,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.source)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.source, err)
			}
			got := types(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", toks, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	toks, err := Tokenize("state {\n  count: 0\n}")
	if err != nil {
		t.Fatal(err)
	}
	// count sits on line 2, column 3
	var found bool
	for _, tok := range toks {
		if tok.Is("count") {
			found = true
			if tok.Line != 2 || tok.Column != 3 {
				t.Errorf("count at %d:%d, want 2:3", tok.Line, tok.Column)
			}
		}
	}
	if !found {
		t.Fatal("count token not found")
	}
}

func TestTokenizeAt_OffsetsPositions(t *testing.T) {
	toks, err := TokenizeAt("count + 1", 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Line != 5 || toks[0].Column != 10 {
		t.Errorf("first token at %d:%d, want 5:10", toks[0].Line, toks[0].Column)
	}
}

func TestTokenize_StringsAndTemplates(t *testing.T) {
	toks, err := Tokenize("\"Hello {name}\" `sum: ${a + b}`")
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Type != token.String || toks[0].Value != "Hello {name}" {
		t.Errorf("string token = %v", toks[0])
	}
	if toks[1].Type != token.Template || toks[1].Value != "sum: ${a + b}" {
		t.Errorf("template token = %v", toks[1])
	}
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := Tokenize("view { p \"oops }")
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
	lexErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !strings.Contains(lexErr.Msg, "Unterminated") {
		t.Errorf("message = %q, want it to mention Unterminated", lexErr.Msg)
	}
	if lexErr.Line != 1 {
		t.Errorf("line = %d, want 1", lexErr.Line)
	}
}

func TestTokenize_UnterminatedTemplate(t *testing.T) {
	_, err := Tokenize("`no end")
	if err == nil {
		t.Fatal("expected error for unterminated template")
	}
}

func TestTokenize_DirectiveNames(t *testing.T) {
	toks, err := Tokenize("@if (x) @else-if (y) @else")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tok := range toks {
		if tok.Type == token.At {
			names = append(names, tok.Value)
		}
	}
	want := []string{"if", "else-if", "else"}
	if len(names) != len(want) {
		t.Fatalf("directive names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("directive %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestTokenize_StyleBlockCapture(t *testing.T) {
	src := "state { x: 1 }\nstyle {\n  .card { color: red; content: \"}\" }\n}\nview { div }"
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatal(err)
	}
	var raw *token.Token
	for i := range toks {
		if toks[i].Type == token.RawCSS {
			raw = &toks[i]
		}
	}
	if raw == nil {
		t.Fatal("no RawCSS token produced for style block")
	}
	if !strings.Contains(raw.Value, ".card { color: red") {
		t.Errorf("raw css = %q", raw.Value)
	}
	if strings.Contains(raw.Value, "view") {
		t.Errorf("style capture ran past the closing brace: %q", raw.Value)
	}
	// the view block after style must still tokenize normally
	var sawView bool
	for _, tok := range toks {
		if tok.Is("view") {
			sawView = true
		}
	}
	if !sawView {
		t.Error("view token missing after style block")
	}
}

func TestTokenize_StyleOnlyAtTopLevel(t *testing.T) {
	// "style" inside another block is an ordinary identifier
	toks, err := Tokenize("view { div style=\"x\" }")
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range toks {
		if tok.Type == token.RawCSS {
			t.Fatal("nested style attribute must not trigger CSS capture")
		}
	}
}

func TestTokenize_Comments(t *testing.T) {
	toks, err := Tokenize("a // line\n/* block\ncomment */ b")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 3 { // a, b, EOF
		t.Fatalf("tokens = %v", toks)
	}
	if toks[1].Line != 3 {
		t.Errorf("b on line %d, want 3", toks[1].Line)
	}
}

func TestTokenize_Numbers(t *testing.T) {
	toks, err := Tokenize("1 2.5 1e9 3.14e-2")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "2.5", "1e9", "3.14e-2"}
	for i, w := range want {
		if toks[i].Type != token.Number || toks[i].Value != w {
			t.Errorf("number %d = %v, want %q", i, toks[i], w)
		}
	}
}
