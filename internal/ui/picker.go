package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/raphi011/sweep/internal/git"
	"github.com/raphi011/sweep/internal/ui/styles"
)

// maxVisibleRows limits how many branches the picker shows at once.
const maxVisibleRows = 12

// pickerModel is the multi-select branch picker.
type pickerModel struct {
	label    string
	branches []git.Branch
	rows     []string // display label per branch, same index

	filtered []int // indices into branches
	cursor   int   // position in filtered list
	selected map[int]bool
	filter   string

	flash     string // transient message (clipboard copy)
	done      bool
	cancelled bool
}

// newPicker creates the picker with merged branches pre-selected.
func newPicker(branches []git.Branch, label string) pickerModel {
	m := pickerModel{
		label:    label,
		branches: branches,
		rows:     make([]string, len(branches)),
		selected: make(map[int]bool),
	}
	for i, b := range branches {
		m.rows[i] = b.Ref
		if b.IsMerged {
			m.selected[i] = true
		}
	}
	m.applyFilter()
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.flash = ""

	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		m.done = true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "home", "pgup":
		m.cursor = 0
	case "end", "pgdown":
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}
	case " ":
		if len(m.filtered) > 0 {
			idx := m.filtered[m.cursor]
			if m.selected[idx] {
				delete(m.selected, idx)
			} else {
				m.selected[idx] = true
			}
		}
	case "ctrl+a":
		m.toggleAllFiltered()
	case "ctrl+y":
		if len(m.filtered) > 0 {
			ref := m.branches[m.filtered[m.cursor]].Ref
			if err := clipboard.WriteAll(ref); err == nil {
				m.flash = fmt.Sprintf("copied %q", ref)
			}
		}
	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.applyFilter()
		}
	default:
		if key.Type == tea.KeyRunes {
			m.filter += string(key.Runes)
			m.applyFilter()
		}
	}

	return m, nil
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (%d selected):\n", m.label, len(m.selected)))
	b.WriteString(styles.FilterLabelStyle.Render("Filter: ") + styles.FilterStyle.Render(m.filter) + "\n\n")

	start := 0
	if m.cursor >= maxVisibleRows {
		start = m.cursor - maxVisibleRows + 1
	}
	end := min(start+maxVisibleRows, len(m.filtered))

	if start > 0 {
		b.WriteString(styles.MutedStyle.Render("  ↑ more above") + "\n")
	}

	for i := start; i < end; i++ {
		idx := m.filtered[i]
		branch := m.branches[idx]

		cursor := "  "
		style := styles.NormalStyle
		if i == m.cursor {
			cursor = "> "
			style = styles.AccentStyle
		}

		checkbox := "[ ]"
		if m.selected[idx] {
			checkbox = "[✓]"
		}

		b.WriteString(cursor + checkbox + " " + style.Render(m.rows[idx]))
		b.WriteString("  " + branchDetail(branch) + "\n")
	}

	if end < len(m.filtered) {
		b.WriteString(styles.MutedStyle.Render("  ↓ more below") + "\n")
	}
	if len(m.filtered) == 0 {
		b.WriteString(styles.MutedStyle.Render("  No matching branches") + "\n")
	}

	b.WriteString("\n")
	if m.flash != "" {
		b.WriteString(styles.SuccessStyle.Render(m.flash) + "\n")
	}
	b.WriteString(styles.MutedStyle.Render(
		"↑/↓ move • space toggle • ctrl+a all • ctrl+y copy • type to filter • enter confirm • esc cancel") + "\n")
	return b.String()
}

// branchDetail renders the status column for one picker row.
func branchDetail(b git.Branch) string {
	var parts []string
	if b.IsMerged {
		parts = append(parts, styles.SuccessStyle.Render("merged"))
	} else {
		parts = append(parts, styles.WarningStyle.Render("unmerged"))
	}
	if b.Ahead > 0 || b.Behind > 0 {
		parts = append(parts, styles.MutedStyle.Render(fmt.Sprintf("↑%d ↓%d", b.Ahead, b.Behind)))
	}
	if age := FormatAge(b.LastCommitAt); age != "" {
		parts = append(parts, styles.MutedStyle.Render(age))
	}
	return strings.Join(parts, " ")
}

// applyFilter recomputes the visible rows with fuzzy matching.
func (m *pickerModel) applyFilter() {
	if m.filter == "" {
		m.filtered = make([]int, len(m.branches))
		for i := range m.branches {
			m.filtered[i] = i
		}
	} else {
		matches := fuzzy.Find(m.filter, m.rows)
		m.filtered = make([]int, 0, len(matches))
		for _, match := range matches {
			m.filtered = append(m.filtered, match.Index)
		}
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

// toggleAllFiltered selects every visible row, or clears them if all are
// already selected.
func (m *pickerModel) toggleAllFiltered() {
	all := len(m.filtered) > 0
	for _, idx := range m.filtered {
		if !m.selected[idx] {
			all = false
			break
		}
	}
	for _, idx := range m.filtered {
		if all {
			delete(m.selected, idx)
		} else {
			m.selected[idx] = true
		}
	}
}

// selection returns the chosen branches in display order.
func (m pickerModel) selection() []git.Branch {
	var chosen []git.Branch
	for i, b := range m.branches {
		if m.selected[i] {
			chosen = append(chosen, b)
		}
	}
	return chosen
}
