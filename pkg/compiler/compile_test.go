package compiler

import (
	"strings"
	"testing"
)

const counterSource = `
route "/counter"

state {
  count: 0
}

view {
  div.container {
    h1 "Count: {count}"
    button @click(count++) "Increment"
  }
}

style {
  .container { padding: 16px; }
}
`

func TestCompile_Counter(t *testing.T) {
	res := Compile(counterSource, Options{Filename: "counter.pulse"})
	if !res.Success {
		t.Fatalf("compile failed: %+v", res.Errors)
	}
	for _, frag := range []string{
		`from "@pulse/runtime";`,
		"const count = signal(0);",
		"bind(() => count.value),",
		`"click", () => count.value++),`,
		"injectStyles(",
	} {
		if !strings.Contains(res.Code, frag) {
			t.Errorf("code missing %q\n---\n%s", frag, res.Code)
		}
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected diagnostics: %+v", res.Errors)
	}
}

func TestCompile_CustomRuntime(t *testing.T) {
	res := Compile("state { n: 0 }\nview { p \"{n}\" }", Options{Runtime: "/lib/runtime.js"})
	if !res.Success {
		t.Fatalf("compile failed: %+v", res.Errors)
	}
	if !strings.Contains(res.Code, `from "/lib/runtime.js";`) {
		t.Errorf("custom runtime not honored:\n%s", res.Code)
	}
}

func TestCompile_DuplicateBlock(t *testing.T) {
	res := Compile("state { a: 1 }\nstate { b: 2 }\nview { p }", Options{})
	if res.Success {
		t.Fatal("want failure")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %+v, want 1", res.Errors)
	}
	d := res.Errors[0]
	if !strings.Contains(d.Message, "Duplicate state block") {
		t.Errorf("message = %q", d.Message)
	}
	if d.Line != 2 {
		t.Errorf("line = %d, want 2", d.Line)
	}
	if !strings.Contains(d.DocsURL, "duplicate-block") {
		t.Errorf("docs = %q", d.DocsURL)
	}
}

func TestCompile_LexError(t *testing.T) {
	res := Compile(`view { p "unterminated }`, Options{})
	if res.Success {
		t.Fatal("want failure")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %+v", res.Errors)
	}
	if res.Errors[0].DocsURL != DocsLex {
		t.Errorf("docs = %q, want %q", res.Errors[0].DocsURL, DocsLex)
	}
}

func TestCompile_AccumulatesErrors(t *testing.T) {
	res := Compile("state { x: }\nprops { y: }\nview { p }", Options{})
	if res.Success {
		t.Fatal("want failure")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %d (%+v), want 2", len(res.Errors), res.Errors)
	}
	if res.Code != "" {
		t.Error("failed compile must not emit code")
	}
}

func TestCompile_MissingEntryValueMessage(t *testing.T) {
	res := Compile("state { x: }", Options{})
	if res.Success || len(res.Errors) == 0 {
		t.Fatal("want failure")
	}
	if !strings.Contains(res.Errors[0].Message, "Expected an expression") {
		t.Errorf("message = %q", res.Errors[0].Message)
	}
}

func TestCompile_ElseIfFormsGenerateIdenticalCode(t *testing.T) {
	base := "state { n: 0 }\nview {\n@if (n > 0) { p \"a\" }\n%s\n@else { p \"c\" }\n}"
	hyphen := Compile(strings.Replace(base, "%s", `@else-if (n < 0) { p "b" }`, 1), Options{})
	twoTok := Compile(strings.Replace(base, "%s", `@else @if (n < 0) { p "b" }`, 1), Options{})
	if !hyphen.Success || !twoTok.Success {
		t.Fatalf("compiles failed: %+v / %+v", hyphen.Errors, twoTok.Errors)
	}
	if hyphen.Code != twoTok.Code {
		t.Errorf("the two @else-if spellings must generate identical code:\n%s\n---\n%s", hyphen.Code, twoTok.Code)
	}
}

func TestCompile_SourceMap(t *testing.T) {
	res := Compile(counterSource, Options{Filename: "counter.pulse", SourceMap: true})
	if !res.Success {
		t.Fatalf("compile failed: %+v", res.Errors)
	}
	if res.Map == nil || res.Map.Version != 3 || res.Map.Sources[0] != "counter.pulse" {
		t.Fatalf("map = %+v", res.Map)
	}
	if res.Map.SourcesContent[0] != counterSource {
		t.Error("source content must embed the original text")
	}
}

func TestCompile_Deterministic(t *testing.T) {
	opts := Options{Filename: "counter.pulse", ScopeStyles: true}
	a := Compile(counterSource, opts)
	b := Compile(counterSource, opts)
	if a.Code != b.Code {
		t.Fatal("identical input produced different code")
	}
}

func TestCompile_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"}",
		"view",
		"view {",
		"view { div { ",
		"state { @ }",
		"@if (x) { }",
		"style { .a { ",
		"actions { f( }",
		"\x00\x01\x02",
		strings.Repeat("view { ", 50),
	}
	for _, src := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Compile(%q) panicked: %v", src, r)
				}
			}()
			res := Compile(src, Options{})
			if src != "" && res.Success && len(res.Errors) == 0 {
				return // some fragments are legitimately valid
			}
		}()
	}
}

func TestParse_FirstFatalError(t *testing.T) {
	if _, err := Parse("state { x: }"); err == nil {
		t.Fatal("want an error")
	}
	prog, err := Parse("state { x: 1 }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog.State == nil {
		t.Fatal("program missing state")
	}
}

func TestTokenize_Passthrough(t *testing.T) {
	toks, err := Tokenize("state { x: 1 }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) == 0 {
		t.Fatal("no tokens")
	}
}
