// Package compiler is the public entry point of the Pulse compiler: a pure,
// synchronous pipeline from component source text to a JavaScript module
// targeting the reactive runtime primitives.
//
// Compile never panics and never returns a Go error: every failure is
// reported as a Diagnostic on the Result. Parse is the lower-level entry
// that surfaces the first fatal error as a returned error, for tooling that
// prefers exceptions. The compiler holds no cross-invocation state, so
// independent call sites may invoke it concurrently.
package compiler

import (
	"github.com/pulselang/pulse/pkg/compiler/ast"
	"github.com/pulselang/pulse/pkg/compiler/codegen"
	"github.com/pulselang/pulse/pkg/compiler/lexer"
	"github.com/pulselang/pulse/pkg/compiler/parser"
	"github.com/pulselang/pulse/pkg/compiler/token"
)

// DefaultRuntime is the import path of the reactive primitives module used
// when Options.Runtime is empty.
const DefaultRuntime = "@pulse/runtime"

// DocsLex is the docs anchor attached to lexical diagnostics.
const DocsLex = "https://pulselang.dev/docs/errors#lex"

// Options control a single compilation.
type Options struct {
	// Runtime is the import path of the reactive primitives module.
	Runtime string
	// SourceMap requests a V3 source map alongside the generated code.
	SourceMap bool
	// Filename names the component for diagnostics, the generated
	// function and the style scope token.
	Filename string
	// ScopeStyles rewrites style selectors with a per-component token.
	ScopeStyles bool
}

// Diagnostic is a user-facing compile problem with an optional source
// position and documentation link.
type Diagnostic struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	DocsURL string `json:"docsUrl,omitempty"`
}

// Result is what Compile always returns, success or not.
type Result struct {
	Success bool
	Code    string
	Map     *codegen.SourceMap
	Errors  []Diagnostic
}

// Tokenize lexes source text into the token stream consumed by Parse.
func Tokenize(source string) ([]token.Token, error) {
	return lexer.Tokenize(source)
}

// Parse parses source text into a Program, returning the first fatal error
// (a *lexer.Error or *parser.ParseError) when the source is malformed.
func Parse(source string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	prog, errs := parser.ParseProgram(toks)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return prog, nil
}

// Compile runs the full pipeline: tokenize, parse, validate, generate.
// Diagnostics from every phase are accumulated; generation only runs on a
// clean program, so Success implies Code is complete.
func Compile(source string, opts Options) Result {
	if opts.Runtime == "" {
		opts.Runtime = DefaultRuntime
	}
	toks, err := lexer.Tokenize(source)
	if err != nil {
		le := err.(*lexer.Error)
		return Result{Errors: []Diagnostic{{
			Message: le.Msg,
			Line:    le.Line,
			Column:  le.Column,
			DocsURL: DocsLex,
		}}}
	}
	prog, parseErrs := parser.ParseProgram(toks)
	var diags []Diagnostic
	for _, pe := range parseErrs {
		diags = append(diags, Diagnostic{Message: pe.Msg, Line: pe.Line, Column: pe.Column, DocsURL: pe.Docs})
	}
	diags = append(diags, Validate(prog)...)
	if len(diags) > 0 {
		return Result{Errors: diags}
	}
	code, srcMap := codegen.Generate(prog, codegen.Options{
		Runtime:     opts.Runtime,
		Filename:    opts.Filename,
		Source:      source,
		SourceMap:   opts.SourceMap,
		ScopeStyles: opts.ScopeStyles,
	})
	return Result{Success: true, Code: code, Map: srcMap}
}
