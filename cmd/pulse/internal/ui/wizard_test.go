package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestWizard_StepFlow(t *testing.T) {
	m := NewModel("demo")

	next, _ := m.Update(keyMsg(tea.KeyEnter))
	m = next.(Model)
	if m.step != StepTemplate {
		t.Fatalf("after basics enter: step = %d, want StepTemplate", m.step)
	}

	// pick the second template
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	next, _ = m.Update(keyMsg(tea.KeyEnter))
	m = next.(Model)
	if m.step != StepOptions {
		t.Fatalf("after template enter: step = %d, want StepOptions", m.step)
	}
	if m.config.Template != "todo" {
		t.Errorf("Template = %q, want %q", m.config.Template, "todo")
	}

	// toggle source maps on
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	next, _ = m.Update(keyMsg(tea.KeyEnter))
	m = next.(Model)
	if m.step != StepSummary {
		t.Fatalf("after options enter: step = %d, want StepSummary", m.step)
	}
	if !m.config.SourceMap {
		t.Error("SourceMap = false after toggle")
	}
}

func TestWizard_InvalidNameBlocksAdvance(t *testing.T) {
	m := NewModel("")
	m.inputs[0].SetValue("bad name!")

	next, _ := m.Update(keyMsg(tea.KeyEnter))
	m = next.(Model)
	if m.step != StepBasics {
		t.Errorf("step = %d, want StepBasics for invalid name", m.step)
	}
}

func TestWizard_BackFromTemplate(t *testing.T) {
	m := NewModel("demo")
	next, _ := m.Update(keyMsg(tea.KeyEnter))
	m = next.(Model)

	next, _ = m.Update(keyMsg(tea.KeyEsc))
	m = next.(Model)
	if m.step != StepBasics {
		t.Errorf("step = %d, want StepBasics after esc", m.step)
	}
}

func TestIsValidProjectName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"my-app", true},
		{"App_2", true},
		{"", false},
		{"has space", false},
		{"dot.name", false},
	}
	for _, tt := range tests {
		if got := isValidProjectName(tt.name); got != tt.want {
			t.Errorf("isValidProjectName(%q) = %t, want %t", tt.name, got, tt.want)
		}
	}
}
