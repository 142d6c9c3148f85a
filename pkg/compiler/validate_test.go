package compiler

import (
	"strings"
	"testing"
)

func compileErrs(t *testing.T, source string) []Diagnostic {
	t.Helper()
	res := Compile(source, Options{})
	if res.Success {
		t.Fatalf("compile unexpectedly succeeded:\n%s", res.Code)
	}
	if len(res.Errors) == 0 {
		t.Fatal("no diagnostics reported")
	}
	return res.Errors
}

func wantDiag(t *testing.T, diags []Diagnostic, substr string) {
	t.Helper()
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("no diagnostic contains %q in %+v", substr, diags)
}

func TestValidate_ServerActionMustBeAsync(t *testing.T) {
	diags := compileErrs(t, `
actions {
  server save(data) {
    return data
  }
}
view { p }
`)
	wantDiag(t, diags, `Server action "save" must be declared async`)
}

func TestValidate_ServerAsyncActionPasses(t *testing.T) {
	res := Compile(`
actions {
  server async save(data) {
    return data
  }
}
view { p }
`, Options{})
	if !res.Success {
		t.Fatalf("unexpected diagnostics: %+v", res.Errors)
	}
}

func TestValidate_StoreOptions(t *testing.T) {
	diags := compileErrs(t, `
store {
  state { a: 1 }
  persist: "yes"
  storageKey: 42
  plugins: "nope"
}
view { p }
`)
	wantDiag(t, diags, "Invalid value for persist")
	wantDiag(t, diags, "Invalid value for storageKey")
	wantDiag(t, diags, "Invalid value for plugins")
}

func TestValidate_RouterMode(t *testing.T) {
	diags := compileErrs(t, `
router {
  routes { "/": Home }
  mode: "memory"
}
view { @outlet }
`)
	wantDiag(t, diags, "Invalid router mode")
}

func TestValidate_RoutePaths(t *testing.T) {
	diags := compileErrs(t, `
router {
  routes { "about": About }
}
view { @outlet }
`)
	wantDiag(t, diags, "must begin with '/'")

	diags = compileErrs(t, `route "counter"
view { p }`)
	wantDiag(t, diags, "must begin with '/'")
}

func TestValidate_LivePoliteness(t *testing.T) {
	diags := compileErrs(t, `
view {
  div @live(loud) "status"
}
`)
	wantDiag(t, diags, "politeness")
}

func TestValidate_ModelTarget(t *testing.T) {
	diags := compileErrs(t, `
state { n: 0 }
view {
  input @model(n + 1)
}
`)
	wantDiag(t, diags, "@model target must be an identifier or member expression")
}

func TestValidate_ModelMemberTargetPasses(t *testing.T) {
	res := Compile(`
state { form: {} }
view {
  input @model(form.name)
}
`, Options{})
	if !res.Success {
		t.Fatalf("unexpected diagnostics: %+v", res.Errors)
	}
}

func TestValidate_A11yValues(t *testing.T) {
	diags := compileErrs(t, `
view {
  nav @a11y(tabindex=3) { }
}
`)
	wantDiag(t, diags, "must be a string, boolean or identifier")
}

func TestValidate_DiagnosticsCarryPositions(t *testing.T) {
	diags := compileErrs(t, `
actions {
  server save() {
    return 1
  }
}
view { p }
`)
	if diags[0].Line == 0 || diags[0].Column == 0 {
		t.Errorf("diagnostic lost its position: %+v", diags[0])
	}
	if diags[0].DocsURL == "" {
		t.Errorf("diagnostic lost its docs link: %+v", diags[0])
	}
}
