package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/raphi011/sweep/internal/engine"
	"github.com/raphi011/sweep/internal/plan"
	"github.com/raphi011/sweep/internal/ui/styles"
)

// FormatAge renders a commit timestamp as a compact relative age.
// Returns "" for unknown (zero) timestamps.
func FormatAge(t time.Time) string {
	return formatAgeAt(t, time.Now())
}

func formatAgeAt(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days < 1:
		return "today"
	case days < 14:
		return fmt.Sprintf("%dd ago", days)
	case days < 60:
		return fmt.Sprintf("%dw ago", days/7)
	case days < 730:
		return fmt.Sprintf("%dmo ago", days/30)
	default:
		return fmt.Sprintf("%dy ago", days/365)
	}
}

// FormatPlan renders the deletion plan as a preview table.
func FormatPlan(items []plan.Item, dryRun bool) string {
	var b strings.Builder
	if dryRun {
		b.WriteString(styles.Bold.Render(fmt.Sprintf("Would delete %d branch(es):", len(items))) + "\n")
	} else {
		b.WriteString(styles.Bold.Render(fmt.Sprintf("%d branch(es) to delete:", len(items))) + "\n")
	}

	for _, item := range items {
		target := "local"
		if item.TargetsRemote {
			target = item.Branch.Remote
		}
		b.WriteString(fmt.Sprintf("  %-40s %-8s %s\n",
			item.Branch.Ref,
			styles.MutedStyle.Render(target),
			branchDetail(item.Branch)))
	}
	return b.String()
}

// FormatResults renders per-branch outcomes with ✓/✗ markers.
func FormatResults(results []engine.Result) string {
	var b strings.Builder
	for _, r := range results {
		if r.Succeeded {
			b.WriteString(fmt.Sprintf("  %s %s\n", styles.SuccessStyle.Render("✓"), r.Branch.Ref))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s: %s\n",
			styles.ErrorStyle.Render("✗"), r.Branch.Ref, styles.MutedStyle.Render(r.ErrorDetail)))
	}
	return b.String()
}

// FormatSummary renders the end-of-session summary line.
func FormatSummary(deleted, failed int, dryRun bool) string {
	if dryRun {
		return fmt.Sprintf("Would delete %d branch(es)\n", deleted)
	}
	if failed > 0 {
		return fmt.Sprintf("Deleted %d branch(es), %d failed\n", deleted, failed)
	}
	return fmt.Sprintf("Deleted %d branch(es)\n", deleted)
}
