package installer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step represents a single step in the installation wizard
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

func getSteps() []Step {
	return []Step{
		NewProviderStep(),
		NewAPIKeyStep(),
		NewEmbeddingKeyStep(),
		NewTextStep("Supabase project URL", "SUPABASE_URL", "https://xyzcompany.supabase.co", false, false),
		NewTextStep("Supabase service key", "SUPABASE_KEY", "eyJ...", true, false),
		NewTextStep("Pinecone index endpoint", "PINECONE_ENDPOINT", "https://my-index-xxxx.svc.pinecone.io", false, false),
		NewTextStep("Pinecone API key", "PINECONE_API_KEY", "pcsk_...", true, false),
		NewTextStep("LINE channel secret", "LINE_CHANNEL_SECRET", "", true, false),
		NewTextStep("LINE channel access token", "LINE_CHANNEL_ACCESS_TOKEN", "", true, false),
		NewTextStep("Telegram bot token (staff channel)", "TELEGRAM_TOKEN", "optional - press Enter to skip", false, true),
		NewSaveEnvStep(),
	}
}

type nextMsg struct{}
type errMsg error

// model is the main Bubble Tea model that orchestrates the steps
type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	err         error
	width       int
	height      int
}

func initialModel() model {
	return model{
		steps:       getSteps(),
		currentStep: 0,
		state:       NewInstallState(),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 && m.steps[0] != nil {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case errMsg:
		m.err = msg
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)

	if nextStep == nil {
		// Step indicated completion, move to next
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			return m, tea.Quit
		}
		return m, m.steps[m.currentStep].Init()
	}

	if nextStep != m.steps[m.currentStep] {
		m.steps[m.currentStep] = nextStep
	}

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Installation cancelled.\n"
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(press ctrl+c to quit)\n"
	}

	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}

	return titleStyle.Render("Setting up MotorBot 🚗") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard starts the TUI
func RunWizard() (*InstallState, error) {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if finalModel.quitting {
		return nil, fmt.Errorf("motorbot installation interrupted")
	}

	return finalModel.state, nil
}
