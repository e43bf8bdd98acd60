package main

import (
	"fmt"
	"strings"

	"github.com/SirRandoo/streamkit/internal/manifest"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// --- inputModel: bubbletea model for text input with validation ---

type inputModel struct {
	textInput textinput.Model
	title     string
	validate  func(string) error
	errMsg    string
	done      bool
	aborted   bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			if m.validate != nil {
				if err := m.validate(m.textInput.Value()); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		}
	}
	m.errMsg = ""
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(m.textInput.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

// --- confirmModel: bubbletea model for yes/no confirmation ---

type confirmModel struct {
	title   string
	value   bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.value = true
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.value = false
			m.done = true
			return m, tea.Quit
		case "left", "right", "tab", "h", "l":
			m.value = !m.value
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	yes, no := " Yes ", " No "
	if m.value {
		yes = selectedStyle.Render(yes)
	} else {
		no = selectedStyle.Render(no)
	}
	return fmt.Sprintf("%s %s / %s\n", titleStyle.Render(m.title), yes, no)
}

// --- prompt helpers ---

func promptInput(title, placeholder string, validate func(string) error) (string, error) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	result, err := tea.NewProgram(inputModel{textInput: ti, title: title, validate: validate}).Run()
	if err != nil {
		return "", err
	}
	rm := result.(inputModel)
	if rm.aborted {
		return "", fmt.Errorf("user aborted")
	}
	return strings.TrimSpace(rm.textInput.Value()), nil
}

func promptConfirm(title string, initial bool) (bool, error) {
	result, err := tea.NewProgram(confirmModel{title: title, value: initial}).Run()
	if err != nil {
		return false, err
	}
	rm := result.(confirmModel)
	if rm.aborted {
		return false, fmt.Errorf("user aborted")
	}
	return rm.value, nil
}

// interactiveBundle collects one bundle and its resources. Flag values seed
// the bundle prompts.
func interactiveBundle(bundleRoot string, versioned bool) (manifest.Bundle, error) {
	root, err := promptInput("Bundle root (empty for the extension root)", bundleRoot, relativePathValidator)
	if err != nil {
		return manifest.Bundle{}, err
	}
	if root == "" {
		root = bundleRoot
	}
	versioned, err = promptConfirm("Nest the bundle under a host-version directory?", versioned)
	if err != nil {
		return manifest.Bundle{}, err
	}

	bundle := manifest.Bundle{Root: root, Versioned: versioned}
	seen := make(map[string]bool)
	for {
		res, err := promptResource(seen)
		if err != nil {
			return manifest.Bundle{}, err
		}
		seen[res.Name] = true
		bundle.Resources = append(bundle.Resources, res)
		fmt.Printf("  → %s (%s)\n", res.Name, res.Type)

		more, err := promptConfirm("Add another resource?", false)
		if err != nil {
			return manifest.Bundle{}, err
		}
		if !more {
			return bundle, nil
		}
	}
}

func promptResource(seen map[string]bool) (manifest.Resource, error) {
	name, err := promptInput("Resource name (without extension)", "libcrypto", resourceNameValidator(seen))
	if err != nil {
		return manifest.Resource{}, err
	}
	typeStr, err := promptInput("Resource type (Dll, Assembly, NetStandardAssembly)", "Dll", func(s string) error {
		_, err := manifest.ParseResourceType(strings.TrimSpace(s))
		return err
	})
	if err != nil {
		return manifest.Resource{}, err
	}
	rt, _ := manifest.ParseResourceType(typeStr)
	root, err := promptInput("Resource directory inside the bundle (empty for none)", "", relativePathValidator)
	if err != nil {
		return manifest.Resource{}, err
	}
	return manifest.Resource{Name: name, Root: root, Type: rt}, nil
}

func resourceNameValidator(seen map[string]bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("resource name is required")
		}
		if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
			return fmt.Errorf("resource name must not contain path separators")
		}
		if seen[s] {
			return fmt.Errorf("resource %q is already added", s)
		}
		return nil
	}
}

func relativePathValidator(s string) error {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\`) {
		return fmt.Errorf("path must be relative to the extension")
	}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("path must not contain ..")
		}
	}
	return nil
}
