// Package ui provides the interactive collaborators for sweep sessions:
// the multi-select branch picker, confirmation prompts, spinner, and
// rendering of plans and results.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raphi011/sweep/internal/git"
	"github.com/raphi011/sweep/internal/plan"
	"github.com/raphi011/sweep/internal/session"
	"github.com/raphi011/sweep/internal/ui/styles"
)

// Terminal implements session.UI on top of Bubbletea prompts.
type Terminal struct{}

// NewTerminal creates the interactive terminal collaborator.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// SelectBranches presents the multi-select picker and reports the chosen
// subset, or cancellation.
func (t *Terminal) SelectBranches(branches []git.Branch, label string) (session.Selection, error) {
	if len(branches) == 0 {
		return session.Selection{}, nil
	}

	p := tea.NewProgram(newPicker(branches, label))
	finalModel, err := p.Run()
	if err != nil {
		return session.Selection{}, err
	}

	m := finalModel.(pickerModel)
	if m.cancelled {
		return session.Selection{Cancelled: true}, nil
	}
	return session.Selection{Branches: m.selection()}, nil
}

// ConfirmPlan shows the plan preview and asks a yes/no question; a
// cancelled prompt counts as no.
func (t *Terminal) ConfirmPlan(items []plan.Item, prompt string) (bool, error) {
	return t.confirm(FormatPlan(items, false) + "\n" + prompt)
}

// confirm asks a yes/no question; a cancelled prompt counts as no.
func (t *Terminal) confirm(prompt string) (bool, error) {
	result, err := Confirm(prompt)
	if err != nil {
		return false, err
	}
	return result.Confirmed && !result.Cancelled, nil
}

// ConfirmForce asks whether unmerged branches that failed a safe delete
// should be retried with a forced delete.
func (t *Terminal) ConfirmForce(items []plan.Item) (bool, error) {
	var b strings.Builder
	b.WriteString(styles.WarningStyle.Render("Not fully merged:") + "\n")
	for _, item := range items {
		b.WriteString("  " + item.Branch.Ref + "\n")
	}
	b.WriteString(fmt.Sprintf("Force delete %d branch(es)?", len(items)))
	return t.confirm(b.String())
}
