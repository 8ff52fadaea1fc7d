package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/sweep/internal/config"
	"github.com/raphi011/sweep/internal/git"
	"github.com/raphi011/sweep/internal/log"
	"github.com/raphi011/sweep/internal/output"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Shared state injected into commands
	cfg *config.Config
)

// errPartialFailure maps to exit code 2: some deletions failed and were
// not recovered by the force-retry.
var errPartialFailure = errors.New("some branches could not be deleted")

// rootCmd represents the base command; running it starts a sweep session.
var rootCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Prune local and remote git branches",
	Long: `sweep deletes git branches you no longer need.

Without flags it opens an interactive picker listing every branch with
merge status, age, and ahead/behind counts relative to the detected base
branch. Merged branches come pre-selected.

With a pattern, an age threshold, or -y it runs non-interactively:
branches matching the filters are deleted after one confirmation.
Protected branches (main, master, develop by default) are never deleted.

Examples:
  sweep                        # Interactive picker
  sweep -p 'feature/'          # Delete branches matching a pattern
  sweep --days 30 -n           # Preview branches idle for 30+ days
  sweep -p 'bugfix/' -y -f     # Force-delete without prompts
  sweep -r                     # Include remote branches
  sweep config init            # Create default config file

Exit codes:
  0  Success (including empty plan, dry-run, and cancellation)
  1  Fatal error (not a repository, no deletable selection, ...)
  2  Partial failure (some deletions failed)`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2, // Enable typo suggestions
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip git check for completion and help commands
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}

		// Validate mutually exclusive flags
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}

		// Flags are parsed at this point; the logger must be built from
		// their final values, not the defaults Execute saw.
		cmd.SetContext(log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet)))

		// Check git is available
		return git.CheckGit()
	},
	RunE: runSweep,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Load config
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loadedCfg

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Add output printer (stdout for primary data); the logger is attached
	// in PersistentPreRunE once flags are parsed
	ctx = output.WithPrinter(ctx, os.Stdout)

	// Store context for commands to use
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errPartialFailure) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'sweep -h' for help")
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	addSweepFlags(rootCmd)
	rootCmd.AddCommand(newConfigCmd())
}

// isTTY reports whether stdout is a terminal; non-TTY output forces
// automatic mode and disables the spinner.
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
