package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/raphi011/sweep/internal/ui/styles"
)

// ConfirmResult distinguishes an explicit "no" from a cancelled prompt.
// Callers deciding whether to mutate must treat both as "do not proceed".
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

// confirmModel renders a yes/no question. Enter defaults to no: the
// destructive answer always needs an explicit keypress.
type confirmModel struct {
	prompt string
	result ConfirmResult
	done   bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.result.Confirmed = true
	case "n", "N", "enter":
		// no is the default
	case "ctrl+c", "q", "esc":
		m.result.Cancelled = true
	default:
		return m, nil
	}

	m.done = true
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	return m.prompt + " " + styles.MutedStyle.Render("[y/N]") + " "
}

// Confirm asks a yes/no question and reports the answer.
func Confirm(prompt string) (ConfirmResult, error) {
	p := tea.NewProgram(confirmModel{prompt: prompt})
	final, err := p.Run()
	if err != nil {
		return ConfirmResult{}, err
	}
	return final.(confirmModel).result, nil
}
