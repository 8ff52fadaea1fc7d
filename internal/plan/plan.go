// Package plan reduces a branch universe to an ordered deletion plan
// under the session's policy.
package plan

import (
	"errors"
	"sort"
	"time"

	"github.com/raphi011/sweep/internal/config"
	"github.com/raphi011/sweep/internal/git"
	"github.com/raphi011/sweep/internal/policy"
)

// ErrNoDeletableSelection indicates every operator-selected branch was
// removed by the safety-net filters. Terminal for the session.
var ErrNoDeletableSelection = errors.New("no deletable branches selected")

// Item is one entry of a deletion plan. Immutable once created and
// consumed exactly once by the execution engine.
type Item struct {
	Branch        git.Branch
	TargetsRemote bool
}

// Sort orders branches for display and planning: local before remote,
// then last-commit recency descending. Branches without a resolvable
// timestamp sort as oldest. The input is not modified.
func Sort(branches []git.Branch) []git.Branch {
	sorted := make([]git.Branch, len(branches))
	copy(sorted, branches)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Kind != b.Kind {
			return a.Kind == git.KindLocal
		}
		if a.LastCommitAt.IsZero() != b.LastCommitAt.IsZero() {
			return !a.LastCommitAt.IsZero()
		}
		return a.LastCommitAt.After(b.LastCommitAt)
	})
	return sorted
}

// Build runs the automatic pipeline: pattern filter, staleness filter,
// protection filter, current-branch exclusion — in that order. Every
// surviving branch becomes one plan item.
func Build(branches []git.Branch, current string, settings config.Settings, now time.Time) []Item {
	protected := policy.ParseProtected(settings.ProtectedBranches)

	var items []Item
	for _, b := range Sort(branches) {
		if settings.Pattern != "" && !policy.MatchesPattern(b.Name, settings.Pattern) {
			continue
		}
		if !policy.IsStale(b.LastCommitAt, settings.CleanupMergedDays, now) {
			continue
		}
		if policy.IsProtected(b.Name, protected) {
			continue
		}
		if isCurrent(b, current) {
			continue
		}
		items = append(items, newItem(b))
	}
	return items
}

// FromSelection converts an operator-chosen subset into a plan. Protection
// and current-branch exclusion are re-applied as a safety net: an explicit
// protection rule holds even if the picker failed to suppress the branch.
// Returns ErrNoDeletableSelection when nothing survives.
func FromSelection(selected []git.Branch, current string, settings config.Settings) ([]Item, error) {
	if len(selected) == 0 {
		return nil, ErrNoDeletableSelection
	}

	protected := policy.ParseProtected(settings.ProtectedBranches)

	var items []Item
	for _, b := range selected {
		if policy.IsProtected(b.Name, protected) {
			continue
		}
		if isCurrent(b, current) {
			continue
		}
		items = append(items, newItem(b))
	}
	if len(items) == 0 {
		return nil, ErrNoDeletableSelection
	}
	return items, nil
}

func newItem(b git.Branch) Item {
	return Item{Branch: b, TargetsRemote: b.Kind == git.KindRemote}
}

// isCurrent reports whether b is the checked-out branch. Only local
// branches can be current; a detached HEAD matches nothing.
func isCurrent(b git.Branch, current string) bool {
	return b.Kind == git.KindLocal && current != "" && current != git.Detached && b.Name == current
}
