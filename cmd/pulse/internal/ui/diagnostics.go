package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pulselang/pulse/pkg/compiler"
)

var (
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	fileStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	positionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	caretStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	docsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Underline(true)
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// RenderDiagnostics writes human-readable diagnostics for one source file,
// each with a source snippet and caret marking the reported column.
func RenderDiagnostics(w io.Writer, filename, source string, diags []compiler.Diagnostic) {
	lines := strings.Split(source, "\n")

	for _, d := range diags {
		fmt.Fprintf(w, "%s %s %s\n",
			errorStyle.Render("error:"),
			d.Message,
			positionStyle.Render(fmt.Sprintf("(%s:%d:%d)", filename, d.Line, d.Column)))

		if snippet := renderSnippet(lines, d.Line, d.Column); snippet != "" {
			fmt.Fprint(w, snippet)
		}

		if d.DocsURL != "" {
			fmt.Fprintf(w, "  %s\n", docsStyle.Render(d.DocsURL))
		}
		fmt.Fprintln(w)
	}
}

// renderSnippet returns the offending source line with a caret under the
// reported column, or "" when the position is out of range.
func renderSnippet(lines []string, line, column int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	src := lines[line-1]

	var b strings.Builder
	gutter := fmt.Sprintf("%4d | ", line)
	fmt.Fprintf(&b, "  %s%s\n", gutterStyle.Render(gutter), src)

	if column >= 1 && column <= len(src)+1 {
		pad := strings.Repeat(" ", len(gutter)+column-1)
		fmt.Fprintf(&b, "  %s%s\n", pad, caretStyle.Render("^"))
	}
	return b.String()
}

// RenderSummary writes a one-line result for a compile run.
func RenderSummary(w io.Writer, files, errors int) {
	if errors == 0 {
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("✓ %d file(s) compiled", files)))
		return
	}
	fmt.Fprintln(w, summaryStyle.Render(fmt.Sprintf("✖ %d error(s) across %d file(s)", errors, files)))
}

// FileHeader returns a styled file name for per-file progress output.
func FileHeader(name string) string {
	return fileStyle.Render(name)
}
