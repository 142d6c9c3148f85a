package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulselang/pulse/cmd/pulse/internal/scaffold"
)

// Step represents the current step in the creation flow
type Step int

const (
	StepBasics Step = iota
	StepTemplate
	StepOptions
	StepSummary
	StepExecuting
	StepComplete
)

// KeyMap defines the wizard keyboard shortcuts
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Space key.Binding
	Back  key.Binding
	Quit  key.Binding
	Tab   key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Space: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type executionDoneMsg struct{ err error }

// Model is the project-creation wizard state.
type Model struct {
	width  int
	height int

	step   Step
	config scaffold.ProjectConfig

	inputs       []textinput.Model
	currentInput int
	selectedItem int
	options      []wizardOption
	spinner      spinner.Model

	executionError error
	quitting       bool
}

type wizardOption struct {
	label   string
	enabled bool
}

// NewModel creates a new wizard model.
func NewModel(projectName string) Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "my-pulse-app"
	nameInput.Focus()
	nameInput.CharLimit = 50
	nameInput.Width = 40
	if projectName != "" {
		nameInput.SetValue(projectName)
	}

	portInput := textinput.New()
	portInput.Placeholder = "5173"
	portInput.CharLimit = 5
	portInput.Width = 10
	portInput.SetValue("5173")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		step:    StepBasics,
		inputs:  []textinput.Model{nameInput, portInput},
		spinner: s,
		options: []wizardOption{
			{label: "Source maps", enabled: false},
			{label: "Initialize git repository", enabled: true},
		},
		config: scaffold.ProjectConfig{
			Name:     projectName,
			Template: "counter",
			Port:     5173,
		},
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Quit) && m.step != StepExecuting && m.step != StepBasics {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.step {
		case StepBasics:
			return m.updateBasics(msg)
		case StepTemplate:
			return m.updateTemplate(msg)
		case StepOptions:
			return m.updateOptions(msg)
		case StepSummary:
			if key.Matches(msg, DefaultKeyMap.Enter) {
				m.step = StepExecuting
				return m, tea.Batch(m.spinner.Tick, m.executeCreation())
			}
			if key.Matches(msg, DefaultKeyMap.Back) {
				m.step = StepOptions
				return m, nil
			}
		case StepComplete:
			if key.Matches(msg, DefaultKeyMap.Enter) {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case executionDoneMsg:
		m.executionError = msg.err
		m.step = StepComplete
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateBasics(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Tab):
		m.inputs[m.currentInput].Blur()
		m.currentInput = (m.currentInput + 1) % len(m.inputs)
		m.inputs[m.currentInput].Focus()
		return m, textinput.Blink

	case key.Matches(msg, DefaultKeyMap.Enter):
		name := strings.TrimSpace(m.inputs[0].Value())
		if !isValidProjectName(name) {
			return m, nil
		}
		m.config.Name = name
		if port, err := strconv.Atoi(m.inputs[1].Value()); err == nil && port > 0 {
			m.config.Port = port
		}
		m.step = StepTemplate
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.currentInput], cmd = m.inputs[m.currentInput].Update(msg)
	return m, cmd
}

func (m Model) updateTemplate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.selectedItem < len(scaffold.Templates)-1 {
			m.selectedItem++
		}
	case key.Matches(msg, DefaultKeyMap.Enter):
		m.config.Template = scaffold.Templates[m.selectedItem]
		m.selectedItem = 0
		m.step = StepOptions
	case key.Matches(msg, DefaultKeyMap.Back):
		m.step = StepBasics
	}
	return m, nil
}

func (m Model) updateOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.selectedItem < len(m.options)-1 {
			m.selectedItem++
		}
	case key.Matches(msg, DefaultKeyMap.Space):
		m.options[m.selectedItem].enabled = !m.options[m.selectedItem].enabled
	case key.Matches(msg, DefaultKeyMap.Enter):
		m.config.SourceMap = m.options[0].enabled
		m.config.GitInit = m.options[1].enabled
		m.selectedItem = 0
		m.step = StepSummary
	case key.Matches(msg, DefaultKeyMap.Back):
		m.step = StepTemplate
	}
	return m, nil
}

// executeCreation generates the project off the UI goroutine.
func (m Model) executeCreation() tea.Cmd {
	cfg := m.config
	return func() tea.Msg {
		err := scaffold.Generate(&cfg)
		return executionDoneMsg{err: err}
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	for _, line := range GetArt(m.width, m.height) {
		b.WriteString(dimStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.step {
	case StepBasics:
		b.WriteString(titleStyle.Render("Project basics"))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Name: ") + m.inputs[0].View() + "\n")
		b.WriteString(labelStyle.Render("Port: ") + m.inputs[1].View() + "\n")
		b.WriteString("\n" + dimStyle.Render("tab: next field • enter: continue"))

	case StepTemplate:
		b.WriteString(titleStyle.Render("Choose a template"))
		b.WriteString("\n\n")
		for i, tmpl := range scaffold.Templates {
			cursor := "  "
			style := labelStyle
			if i == m.selectedItem {
				cursor = "> "
				style = selectedStyle
			}
			b.WriteString(cursor + style.Render(tmpl) + "\n")
		}
		b.WriteString("\n" + dimStyle.Render("↑/↓: move • enter: select • esc: back"))

	case StepOptions:
		b.WriteString(titleStyle.Render("Options"))
		b.WriteString("\n\n")
		for i, opt := range m.options {
			cursor := "  "
			style := labelStyle
			if i == m.selectedItem {
				cursor = "> "
				style = selectedStyle
			}
			box := "[ ]"
			if opt.enabled {
				box = "[x]"
			}
			b.WriteString(cursor + style.Render(box+" "+opt.label) + "\n")
		}
		b.WriteString("\n" + dimStyle.Render("space: toggle • enter: continue • esc: back"))

	case StepSummary:
		b.WriteString(titleStyle.Render("Summary"))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("  Name:       %s\n", m.config.Name)))
		b.WriteString(labelStyle.Render(fmt.Sprintf("  Template:   %s\n", m.config.Template)))
		b.WriteString(labelStyle.Render(fmt.Sprintf("  Port:       %d\n", m.config.Port)))
		b.WriteString(labelStyle.Render(fmt.Sprintf("  Source maps: %t\n", m.options[0].enabled)))
		b.WriteString(labelStyle.Render(fmt.Sprintf("  Git init:   %t\n", m.options[1].enabled)))
		b.WriteString("\n" + dimStyle.Render("enter: create project • esc: back"))

	case StepExecuting:
		b.WriteString(m.spinner.View() + " Creating project...\n")

	case StepComplete:
		if m.executionError != nil {
			b.WriteString(failStyle.Render("✖ Project creation failed") + "\n\n")
			b.WriteString(labelStyle.Render(m.executionError.Error()) + "\n")
		} else {
			b.WriteString(doneStyle.Render("✓ Project created") + "\n\n")
			b.WriteString(labelStyle.Render(fmt.Sprintf("  cd %s\n  pulse dev\n", m.config.Name)))
		}
		b.WriteString("\n" + dimStyle.Render("enter: exit"))
	}

	return b.String()
}

// GetConfig returns the final project configuration
func (m Model) GetConfig() scaffold.ProjectConfig {
	return m.config
}

// Err returns the execution error, if any.
func (m Model) Err() error {
	return m.executionError
}

// isValidProjectName reports whether name is usable as a directory and
// package name.
func isValidProjectName(name string) bool {
	if name == "" || len(name) > 50 {
		return false
	}
	for _, ch := range name {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch == '-' || ch == '_') {
			return false
		}
	}
	return true
}

// RunCreateTUI starts the interactive wizard and generates the project.
func RunCreateTUI(projectName string) (scaffold.ProjectConfig, error) {
	p := tea.NewProgram(NewModel(projectName), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return scaffold.ProjectConfig{}, err
	}

	model, ok := final.(Model)
	if !ok {
		return scaffold.ProjectConfig{}, fmt.Errorf("unexpected model type")
	}
	if model.quitting && model.step != StepComplete {
		return scaffold.ProjectConfig{}, fmt.Errorf("cancelled")
	}
	return model.GetConfig(), model.Err()
}
