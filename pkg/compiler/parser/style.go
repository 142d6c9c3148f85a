package parser

import (
	"regexp"
	"strings"

	"github.com/pulselang/pulse/pkg/compiler/ast"
)

// ParseStyle parses the raw text of a style block into Rule/AtRule nodes.
// The raw text is always retained on the returned block so the output can
// round-trip literal CSS. Two fallbacks apply, neither of which is an error:
//
//   - when the text matches a third-party preprocessor syntax (SCSS/LESS/
//     Stylus sigils), Lang is set and no structural parsing is attempted;
//     compilation is deferred to an external collaborator.
//   - when native parsing fails partway, the block degrades to raw CSS that
//     the generator emits verbatim.
func ParseStyle(raw string, line, col int) *ast.StyleBlock {
	block := &ast.StyleBlock{Base: ast.At(line, col), Raw: raw}
	if lang := detectPreprocessor(raw); lang != "" {
		block.Lang = lang
		return block
	}
	sp := &styleParser{src: raw, line: line, col: col}
	decls, rules, ok := sp.parseBody()
	if !ok || len(decls) > 0 {
		// top-level declarations have no selector to attach to; keep raw
		return block
	}
	block.Rules = rules
	return block
}

var (
	scssVarRe    = regexp.MustCompile(`(?m)^\s*\$[\w-]+\s*:`)
	scssCtrlRe   = regexp.MustCompile(`(?m)^\s*@(mixin|include|extend|function|if|each|use|forward)\b`)
	lessVarRe    = regexp.MustCompile(`(?m)^\s*@([\w-]+)\s*:`)
	stylusVarRe  = regexp.MustCompile(`(?m)^\s*[\w$-]+\s*=\s*\S`)
	knownAtRules = map[string]bool{
		"media": true, "keyframes": true, "supports": true, "import": true,
		"charset": true, "font-face": true, "namespace": true, "page": true,
		"layer": true, "container": true, "property": true,
	}
)

// detectPreprocessor recognizes variable declarations using non-CSS sigils
// and preprocessor control directives. Detection is deliberately syntactic;
// actual compilation belongs to the delegating build shim.
func detectPreprocessor(raw string) string {
	if scssVarRe.MatchString(raw) || scssCtrlRe.MatchString(raw) {
		return "scss"
	}
	for _, m := range lessVarRe.FindAllStringSubmatch(raw, -1) {
		if !knownAtRules[strings.ToLower(m[1])] {
			return "less"
		}
	}
	if stylusVarRe.MatchString(raw) {
		return "stylus"
	}
	return ""
}

type styleParser struct {
	src  string
	pos  int
	line int
	col  int
}

// parseBody parses declarations and nested rules until '}' or end of input
// (the '}' is not consumed). ok is false on a structural error.
func (s *styleParser) parseBody() (decls []*ast.Declaration, rules []ast.StyleNode, ok bool) {
	for {
		s.skipSpaceAndComments()
		if s.pos >= len(s.src) || s.src[s.pos] == '}' {
			return decls, rules, true
		}
		if s.src[s.pos] == '@' {
			at, atOK := s.parseAtRule()
			if !atOK {
				return nil, nil, false
			}
			rules = append(rules, at)
			continue
		}
		// Disambiguation: '&' opening a line always starts a nested rule;
		// otherwise whichever of '{' and ';'/'}' comes first decides
		// between selector and declaration.
		if s.src[s.pos] == '&' || s.nextSignificant() == '{' {
			rule, ruleOK := s.parseRule()
			if !ruleOK {
				return nil, nil, false
			}
			rules = append(rules, rule)
			continue
		}
		decl, declOK := s.parseDeclaration()
		if !declOK {
			return nil, nil, false
		}
		decls = append(decls, decl)
	}
}

// nextSignificant scans ahead (string- and paren-aware) and reports which
// structural character appears first: '{' for a nested rule, anything else
// for a declaration.
func (s *styleParser) nextSignificant() byte {
	depth := 0
	for i := s.pos; i < len(s.src); i++ {
		ch := s.src[i]
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case '"', '\'':
			for i++; i < len(s.src) && s.src[i] != ch; i++ {
				if s.src[i] == '\\' {
					i++
				}
			}
		case '{':
			if depth == 0 {
				return '{'
			}
		case ';', '}':
			if depth == 0 {
				return ch
			}
		}
	}
	return 0
}

func (s *styleParser) parseRule() (*ast.Rule, bool) {
	startLine, startCol := s.line, s.col
	selStart := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '{' {
		s.advance()
	}
	if s.pos >= len(s.src) {
		return nil, false
	}
	selector := collapseSpace(s.src[selStart:s.pos])
	if selector == "" {
		return nil, false
	}
	s.advance() // '{'
	decls, nested, ok := s.parseBody()
	if !ok {
		return nil, false
	}
	if s.pos >= len(s.src) || s.src[s.pos] != '}' {
		return nil, false
	}
	s.advance() // '}'
	return &ast.Rule{
		Base:         ast.At(startLine, startCol),
		Selector:     selector,
		Declarations: decls,
		Rules:        nested,
	}, true
}

func (s *styleParser) parseAtRule() (*ast.AtRule, bool) {
	startLine, startCol := s.line, s.col
	s.advance() // '@'
	nameStart := s.pos
	for s.pos < len(s.src) && (isAlpha(s.src[s.pos]) || s.src[s.pos] == '-') {
		s.advance()
	}
	name := s.src[nameStart:s.pos]
	if name == "" {
		return nil, false
	}
	paramStart := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '{' && s.src[s.pos] != ';' {
		s.advance()
	}
	params := collapseSpace(s.src[paramStart:s.pos])
	at := &ast.AtRule{Base: ast.At(startLine, startCol), Name: name, Params: params}
	if s.pos < len(s.src) && s.src[s.pos] == ';' {
		s.advance()
		return at, true
	}
	if s.pos >= len(s.src) {
		return nil, false
	}
	s.advance() // '{'
	decls, body, ok := s.parseBody()
	if !ok {
		return nil, false
	}
	// declaration-bearing at-rules (e.g. @font-face) wrap their
	// declarations in a selector-less rule
	if len(decls) > 0 {
		body = append([]ast.StyleNode{&ast.Rule{Base: at.Base, Declarations: decls}}, body...)
	}
	at.Body = body
	if s.pos >= len(s.src) || s.src[s.pos] != '}' {
		return nil, false
	}
	s.advance() // '}'
	return at, true
}

func (s *styleParser) parseDeclaration() (*ast.Declaration, bool) {
	startLine, startCol := s.line, s.col
	propStart := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != ':' && s.src[s.pos] != ';' && s.src[s.pos] != '}' && s.src[s.pos] != '{' {
		s.advance()
	}
	if s.pos >= len(s.src) || s.src[s.pos] != ':' {
		return nil, false
	}
	prop := strings.TrimSpace(s.src[propStart:s.pos])
	if prop == "" {
		return nil, false
	}
	s.advance() // ':'
	valStart := s.pos
	depth := 0
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == '(' {
			depth++
		} else if ch == ')' {
			depth--
		} else if ch == '"' || ch == '\'' {
			quote := ch
			s.advance()
			for s.pos < len(s.src) && s.src[s.pos] != quote {
				s.advance()
			}
		} else if (ch == ';' || ch == '}') && depth == 0 {
			break
		}
		s.advance()
	}
	value := collapseSpace(s.src[valStart:s.pos])
	if s.pos < len(s.src) && s.src[s.pos] == ';' {
		s.advance()
	}
	decl := &ast.Declaration{Base: ast.At(startLine, startCol), Property: prop, Value: value}
	if strings.HasSuffix(decl.Value, "!important") {
		decl.Important = true
		decl.Value = strings.TrimSpace(strings.TrimSuffix(decl.Value, "!important"))
	}
	return decl, true
}

func (s *styleParser) skipSpaceAndComments() {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.advance()
			continue
		}
		if ch == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*' {
			s.advance()
			s.advance()
			for s.pos+1 < len(s.src) && !(s.src[s.pos] == '*' && s.src[s.pos+1] == '/') {
				s.advance()
			}
			if s.pos+1 < len(s.src) {
				s.advance()
				s.advance()
			}
			continue
		}
		return
	}
}

func (s *styleParser) advance() {
	if s.pos < len(s.src) {
		if s.src[s.pos] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos++
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// collapseSpace trims and normalizes interior whitespace runs to single
// spaces so selector text compares and scopes deterministically.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
