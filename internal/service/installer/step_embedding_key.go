package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// EmbeddingKeyStep collects the OpenAI key that backs the similarity
// index when chat goes through OpenRouter, which has no embeddings
// endpoint. Providers that embed natively skip this step.
type EmbeddingKeyStep struct {
	input textinput.Model
	ready bool
}

func NewEmbeddingKeyStep() Step {
	return &EmbeddingKeyStep{}
}

func (s *EmbeddingKeyStep) Init() tea.Cmd {
	return nil
}

func (s *EmbeddingKeyStep) needed(state *InstallState) bool {
	return strings.ToLower(state.EnvVars["LLM_PROVIDER"]) == "openrouter"
}

func (s *EmbeddingKeyStep) initInput() {
	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 255
	s.input.Width = 40
	s.input.EchoMode = textinput.EchoPassword
	s.input.EchoCharacter = '•'
	s.input.Placeholder = "sk-..."
	s.ready = true
}

func (s *EmbeddingKeyStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.needed(state) {
		return nil, nil
	}
	if !s.ready {
		s.initInput()
		return s, textinput.Blink
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			state.EnvVars["OPENAI_API_KEY"] = s.input.Value()
			return nil, nil
		}
	}
	return s, cmd
}

func (s *EmbeddingKeyStep) View(state *InstallState) string {
	if !s.needed(state) {
		return ""
	}
	if !s.ready {
		s.initInput()
	}

	return fmt.Sprintf("OpenRouter does not serve embeddings.\nEnter your OpenAI API key (used for the similarity index):\n\n%s\n\n(press enter to confirm)\n",
		s.input.View())
}
