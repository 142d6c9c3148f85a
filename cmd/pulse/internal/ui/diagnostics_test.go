package ui

import (
	"strings"
	"testing"

	"github.com/pulselang/pulse/pkg/compiler"
)

func TestRenderDiagnostics(t *testing.T) {
	src := "state {\nstate {\n}"
	diags := []compiler.Diagnostic{{
		Message: "Duplicate state block",
		Line:    2,
		Column:  1,
		DocsURL: "https://pulselang.dev/docs/errors#duplicate-block",
	}}

	var buf strings.Builder
	RenderDiagnostics(&buf, "app.pulse", src, diags)
	out := buf.String()

	for _, want := range []string{
		"Duplicate state block",
		"app.pulse:2:1",
		"state {",
		"^",
		"https://pulselang.dev/docs/errors#duplicate-block",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSnippet_OutOfRange(t *testing.T) {
	lines := []string{"view {"}
	if got := renderSnippet(lines, 5, 1); got != "" {
		t.Errorf("renderSnippet out of range = %q, want empty", got)
	}
}

func TestRenderSnippet_CaretColumn(t *testing.T) {
	lines := []string{"view {", "  div(bad"}
	out := renderSnippet(lines, 2, 7)
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(rows) != 2 {
		t.Fatalf("snippet has %d rows, want 2:\n%s", len(rows), out)
	}
	caretCol := strings.Index(rows[1], "^")
	srcCol := strings.Index(rows[0], "div(bad")
	if caretCol < 0 || srcCol < 0 {
		t.Fatalf("missing caret or source in snippet:\n%s", out)
	}
	// caret sits under column 7 of the source line
	if caretCol != srcCol+4 {
		t.Errorf("caret at %d, want %d", caretCol, srcCol+4)
	}
}

func TestRenderSummary(t *testing.T) {
	var ok strings.Builder
	RenderSummary(&ok, 3, 0)
	if !strings.Contains(ok.String(), "3 file(s) compiled") {
		t.Errorf("summary = %q", ok.String())
	}

	var bad strings.Builder
	RenderSummary(&bad, 2, 5)
	if !strings.Contains(bad.String(), "5 error(s)") {
		t.Errorf("summary = %q", bad.String())
	}
}
