package parser

import (
	"strings"
	"testing"

	"github.com/pulselang/pulse/pkg/compiler/ast"
	"github.com/pulselang/pulse/pkg/compiler/lexer"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	prog, errs := ParseProgram(toks)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return prog
}

func parseErrs(t *testing.T, source string) []*ParseError {
	t.Helper()
	toks, err := lexer.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	_, errs := ParseProgram(toks)
	return errs
}

func TestParseProgram_FullComponent(t *testing.T) {
	prog := parse(t, `
route "/counter"

page {
  title: "Counter"
  description: "A demo"
}

import Button from "./button.pulse"
import Icon

props {
  label: "Save"
  step: 1
}

state {
  count: 0
}

view {
  h1 "Hello {label}"
}

actions {
  increment() {
    count += step
  }
}

style {
  h1 { color: blue; }
}
`)
	if prog.Route == nil || prog.Route.Path != "/counter" {
		t.Fatalf("route = %+v, want /counter", prog.Route)
	}
	if prog.Page == nil || len(prog.Page.Entries) != 2 {
		t.Fatalf("page entries = %+v, want 2", prog.Page)
	}
	if prog.Page.Entries[0].Name != "title" {
		t.Errorf("first page entry = %q, want title", prog.Page.Entries[0].Name)
	}
	if len(prog.Imports) != 2 {
		t.Fatalf("imports = %d, want 2", len(prog.Imports))
	}
	if prog.Imports[0].Name != "Button" || prog.Imports[0].From != "./button.pulse" {
		t.Errorf("import[0] = %+v", prog.Imports[0])
	}
	if prog.Imports[1].Name != "Icon" || prog.Imports[1].From != "" {
		t.Errorf("import[1] = %+v", prog.Imports[1])
	}
	if prog.Props == nil || len(prog.Props.Entries) != 2 {
		t.Fatalf("props = %+v", prog.Props)
	}
	if prog.State == nil || len(prog.State.Entries) != 1 || prog.State.Entries[0].Name != "count" {
		t.Fatalf("state = %+v", prog.State)
	}
	if prog.View == nil || len(prog.View.Children) != 1 {
		t.Fatalf("view = %+v", prog.View)
	}
	if prog.Actions == nil || len(prog.Actions.Actions) != 1 {
		t.Fatalf("actions = %+v", prog.Actions)
	}
	if prog.Style == nil || len(prog.Style.Rules) != 1 {
		t.Fatalf("style = %+v", prog.Style)
	}
}

func TestParseProgram_DuplicateBlocks(t *testing.T) {
	for _, block := range []string{"state { a: 1 }", "props { a: 1 }", "view { div }", "page { title: \"x\" }"} {
		errs := parseErrs(t, block+"\n"+block)
		if len(errs) != 1 {
			t.Fatalf("%s twice: got %d errors %v, want 1", block, len(errs), errs)
		}
		if !strings.Contains(errs[0].Msg, "Duplicate") {
			t.Errorf("%s twice: error %q, want a Duplicate diagnostic", block, errs[0].Msg)
		}
		if errs[0].Docs != DocsDuplicate {
			t.Errorf("docs = %q, want %q", errs[0].Docs, DocsDuplicate)
		}
	}
}

func TestParseProgram_MissingEntryValue(t *testing.T) {
	errs := parseErrs(t, "state { x: }")
	if len(errs) == 0 {
		t.Fatal("want an error for a missing entry value")
	}
	if !strings.Contains(errs[0].Msg, "Expected an expression") {
		t.Errorf("error = %q, want an Expected-an-expression diagnostic", errs[0].Msg)
	}
}

func TestParseProgram_ErrorRecovery(t *testing.T) {
	source := `
state { x: }
view {
  div "still parsed"
}
`
	toks, err := lexer.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	prog, errs := ParseProgram(toks)
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly 1", errs)
	}
	if prog.View == nil || len(prog.View.Children) != 1 {
		t.Fatalf("view was not recovered after the bad state block: %+v", prog.View)
	}
}

func TestParseProgram_MultipleErrorsAccumulate(t *testing.T) {
	errs := parseErrs(t, "state { x: }\nprops { y: }\nview { div }")
	if len(errs) != 2 {
		t.Fatalf("errors = %v, want 2", errs)
	}
}

func TestParseProgram_UnknownBlock(t *testing.T) {
	errs := parseErrs(t, "widgets { a: 1 }")
	if len(errs) == 0 || !strings.Contains(errs[0].Msg, "Unknown block") {
		t.Fatalf("errors = %v, want an Unknown-block diagnostic", errs)
	}
}

func TestParseProgram_EntrySeparatorsOptional(t *testing.T) {
	prog := parse(t, "state { a: 1, b: 2; c: 3\nd: 4 }")
	if len(prog.State.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(prog.State.Entries))
	}
}

func TestParseProgram_ContextualKeywordsAsNames(t *testing.T) {
	prog := parse(t, "state { from: 1, of: 2, in: 3, key: 4 }")
	if len(prog.State.Entries) != 4 {
		t.Fatalf("entries = %+v, want 4", prog.State.Entries)
	}
}

func TestParseRouterBlock(t *testing.T) {
	prog := parse(t, `
router {
  routes {
    "/": Home
    "/about": About,
  }
  mode: "history"
  fallback: NotFound
  guards {
    beforeEach(to, from) {
      return true
    }
  }
}
`)
	r := prog.Router
	if r == nil {
		t.Fatal("router block missing")
	}
	if len(r.Routes) != 2 || r.Routes[0].Path != "/" || r.Routes[0].Component != "Home" {
		t.Fatalf("routes = %+v", r.Routes)
	}
	if r.Mode == nil || r.Fallback == nil {
		t.Fatalf("mode/fallback missing: %+v", r)
	}
	if len(r.Guards) != 1 || r.Guards[0].Name != "beforeEach" || len(r.Guards[0].Params) != 2 {
		t.Fatalf("guards = %+v", r.Guards)
	}
}

func TestParseStoreBlock(t *testing.T) {
	prog := parse(t, `
store {
  state {
    user: null
    theme: "dark"
  }
  getters {
    isAdmin() { user && user.role === "admin" }
  }
  actions {
    async login(name) {
      user = await fetchUser(name)
    }
  }
  persist: true
  storageKey: "app"
  plugins: [logger]
}
`)
	s := prog.Store
	if s == nil {
		t.Fatal("store block missing")
	}
	if len(s.State) != 2 || s.State[0].Name != "user" {
		t.Fatalf("store state = %+v", s.State)
	}
	if len(s.Getters) != 1 || s.Getters[0].Name != "isAdmin" {
		t.Fatalf("getters = %+v", s.Getters)
	}
	if len(s.Actions) != 1 || !s.Actions[0].Async {
		t.Fatalf("actions = %+v", s.Actions)
	}
	if s.Persist == nil || s.StorageKey == nil || s.Plugins == nil {
		t.Fatalf("options missing: %+v", s)
	}
}

func TestParseActions_Modifiers(t *testing.T) {
	prog := parse(t, `
actions {
  server async save(data) {
    return data
  }
  async load() {
    items = await fetchItems()
  }
  reset(value = 0, ...rest) {
    count = value
  }
}
`)
	acts := prog.Actions.Actions
	if len(acts) != 3 {
		t.Fatalf("actions = %d, want 3", len(acts))
	}
	if !acts[0].Server || !acts[0].Async {
		t.Errorf("save modifiers = server:%v async:%v, want both", acts[0].Server, acts[0].Async)
	}
	if !acts[1].Async || acts[1].Server {
		t.Errorf("load modifiers = %+v", acts[1])
	}
	reset := acts[2]
	if len(reset.Params) != 2 {
		t.Fatalf("reset params = %+v", reset.Params)
	}
	if reset.Params[0].Default == nil {
		t.Error("value parameter lost its default")
	}
	if !reset.Params[1].Rest {
		t.Error("rest parameter not flagged")
	}
}

func TestParseProgram_ErrorPositions(t *testing.T) {
	errs := parseErrs(t, "state {\n  x: }\n}")
	if len(errs) == 0 {
		t.Fatal("want an error")
	}
	if errs[0].Line != 2 {
		t.Errorf("line = %d, want 2", errs[0].Line)
	}
	if errs[0].Error() == "" || !strings.Contains(errs[0].Error(), "2:") {
		t.Errorf("Error() = %q, want a line:col prefix", errs[0].Error())
	}
}
