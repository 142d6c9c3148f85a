package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewWithIO(strings.NewReader(input), &out), &out
}

func TestText(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultValue string
		want         string
	}{
		{"answer given", "my-app\n", "app", "my-app"},
		{"empty takes default", "\n", "app", "app"},
		{"whitespace trimmed", "  my-app  \n", "app", "my-app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)
			if got := p.Text("Project name", tt.defaultValue); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPort(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"valid", "3000\n", 3000},
		{"empty takes default", "\n", 5173},
		{"not a number", "dev\n", 5173},
		{"out of range", "70000\n", 5173},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)
			if got := p.Port("Dev server port", 5173); got != tt.want {
				t.Errorf("Port() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
	}{
		{"yes", "y\n", false, true},
		{"spelled out", "yes\n", false, true},
		{"no", "n\n", true, false},
		{"empty takes default yes", "\n", true, true},
		{"empty takes default no", "\n", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)
			if got := p.Confirm("Initialize git?", tt.defaultYes); got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	options := []string{"counter - Minimal counter", "todo - Todo list"}

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"by number", "2\n", 1},
		{"by name", "todo\n", 1},
		{"name case-insensitive", "TODO\n", 1},
		{"empty takes default", "\n", 0},
		{"out of range takes default", "9\n", 0},
		{"unknown takes default", "widget\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestPrompter(tt.input)
			if got := p.Select("Template:", options, 0); got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
			if !strings.Contains(out.String(), "1) counter") {
				t.Errorf("options not listed:\n%s", out.String())
			}
		})
	}
}
