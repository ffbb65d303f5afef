package installer

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// TextStep collects one free-form value into an env key.
type TextStep struct {
	input    textinput.Model
	title    string
	envKey   string
	optional bool
	ready    bool
}

func NewTextStep(title, envKey, placeholder string, secret, optional bool) Step {
	input := textinput.New()
	input.CharLimit = 255
	input.Width = 50
	input.Placeholder = placeholder
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}

	return &TextStep{
		input:    input,
		title:    title,
		envKey:   envKey,
		optional: optional,
	}
}

func (s *TextStep) Init() tea.Cmd {
	s.input.Focus()
	s.ready = true
	return textinput.Blink
}

func (s *TextStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		if cmd := s.Init(); cmd != nil {
			return s, cmd
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			value := s.input.Value()
			if value == "" && !s.optional {
				return s, cmd
			}
			if value != "" {
				state.EnvVars[s.envKey] = value
			}
			return nil, nil
		}
	}
	return s, cmd
}

func (s *TextStep) View(state *InstallState) string {
	hint := ""
	if s.optional {
		hint = " (optional - press Enter to skip)"
	}
	return fmt.Sprintf("Enter the %s%s:\n\n%s\n\n(press enter to confirm)\n",
		s.title, hint, s.input.View())
}
