package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/sweep/internal/config"
	"github.com/raphi011/sweep/internal/engine"
	"github.com/raphi011/sweep/internal/git"
	"github.com/raphi011/sweep/internal/log"
	"github.com/raphi011/sweep/internal/output"
	"github.com/raphi011/sweep/internal/session"
	"github.com/raphi011/sweep/internal/ui"
)

// sweepFlags holds the root command's flag values before they are merged
// with the config file into session Settings.
var sweepFlags config.Settings

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sweepFlags.Pattern, "pattern", "p", "", "Only branches matching this regex (substring fallback)")
	cmd.Flags().BoolVarP(&sweepFlags.IncludeRemote, "include-remote", "r", false, "Also list and delete remote branches")
	cmd.Flags().BoolVar(&sweepFlags.LocalOnly, "local-only", false, "Only local branches, overriding config")
	cmd.Flags().BoolVarP(&sweepFlags.DryRun, "dry-run", "n", false, "Preview without deleting")
	cmd.Flags().BoolVarP(&sweepFlags.SkipConfirmation, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVarP(&sweepFlags.Force, "force", "f", false, "Force-delete unmerged branches")
	cmd.Flags().StringSliceVar(&sweepFlags.ProtectedBranches, "protected", nil, "Protected branch names or /regex/flags entries")
	cmd.Flags().StringVar(&sweepFlags.DefaultRemote, "remote", "", "Remote used for base detection and deletes")
	cmd.Flags().IntVar(&sweepFlags.CleanupMergedDays, "days", 0, "Only branches idle for at least this many days")

	cmd.MarkFlagsMutuallyExclusive("include-remote", "local-only")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	l := log.FromContext(ctx)
	out := output.FromContext(ctx)

	if !git.IsInsideRepo(ctx) {
		return fmt.Errorf("not inside a git repository")
	}

	settings := config.Resolve(sweepFlags, *cfg)
	tty := isTTY()

	if !settings.Automatic() && !tty {
		return fmt.Errorf("no terminal for interactive selection: pass -p, --days, or -y")
	}

	repo := git.NewRepository("")
	controller := session.New(repo, repo, ui.NewTerminal(), settings)
	controller.Interactive = !settings.Automatic()
	if tty {
		controller.Progress = ui.NewSpinner("Scanning branches...")
	}

	l.Debug("starting session",
		"interactive", controller.Interactive,
		"dryRun", settings.DryRun,
		"remote", settings.WantRemote())

	report, err := controller.Run(ctx)
	if err != nil {
		return err
	}

	switch report.Outcome {
	case session.OutcomeCancelled:
		l.Println("Cancelled, nothing deleted")
		return nil

	case session.OutcomeSuccess, session.OutcomePartialFailure:
		if len(report.Plan) == 0 {
			out.Println("No branches to delete")
			return nil
		}

		out.Print(ui.FormatResults(report.Results))
		failed := len(engine.Failures(report.Results))
		out.Print(ui.FormatSummary(len(report.Results)-failed, failed, settings.DryRun))

		if report.Outcome == session.OutcomePartialFailure {
			return errPartialFailure
		}
		return nil

	default:
		return fmt.Errorf("unexpected session outcome %q", report.Outcome)
	}
}
