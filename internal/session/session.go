// Package session orchestrates one sweep run: load the branch universe,
// build a plan interactively or from declarative settings, execute it,
// and surface one of four distinguishable end states.
package session

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/sweep/internal/config"
	"github.com/raphi011/sweep/internal/engine"
	"github.com/raphi011/sweep/internal/git"
	"github.com/raphi011/sweep/internal/log"
	"github.com/raphi011/sweep/internal/plan"
)

// BranchSource is the read-side surface the controller needs from the
// branch repository.
type BranchSource interface {
	CurrentBranch(ctx context.Context) (string, error)
	IsWorkingTreeClean(ctx context.Context) bool
	LoadBranches(ctx context.Context, opts git.LoadOptions) ([]git.Branch, error)
}

// Selection is the outcome of the interactive picker.
type Selection struct {
	Branches  []git.Branch
	Cancelled bool
}

// UI bundles the interactive collaborators: branch picker, plan
// confirmation, and force-retry confirmation.
type UI interface {
	SelectBranches(branches []git.Branch, label string) (Selection, error)
	ConfirmPlan(items []plan.Item, prompt string) (bool, error)
	ConfirmForce(items []plan.Item) (bool, error)
}

// Outcome is a session's end state. Fatal errors are returned as errors
// instead, so the caller can distinguish all four dispositions.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialFailure Outcome = "partial-failure"
	OutcomeCancelled      Outcome = "cancelled"
)

// State is the controller's position in the session flow.
type State string

const (
	StateLoading    State = "loading"
	StateSelecting  State = "selecting"
	StateConfirming State = "confirming"
	StateExecuting  State = "executing"
	StateDone       State = "done"
	StateCancelled  State = "cancelled"
	StateFailed     State = "failed"
)

// Report is the structured result of a session; rendering is the
// caller's job.
type Report struct {
	Outcome Outcome
	Plan    []plan.Item
	Results []engine.Result // final outcome per plan item
	History []engine.Result // every attempt, including pre-retry failures
}

// Progress is an optional loading indicator shown while the branch
// universe is fetched.
type Progress interface {
	Start()
	Stop()
}

// Controller drives the session state machine.
type Controller struct {
	source   BranchSource
	deleter  engine.Deleter
	ui       UI
	settings config.Settings

	// Interactive selects the picker path; the caller decides this from
	// the settings and TTY state.
	Interactive bool

	// Progress, when set, runs while the branch universe loads.
	Progress Progress

	// now is swappable for tests.
	now func() time.Time

	state State
}

// New creates a session controller.
func New(source BranchSource, deleter engine.Deleter, ui UI, settings config.Settings) *Controller {
	return &Controller{
		source:   source,
		deleter:  deleter,
		ui:       ui,
		settings: settings,
		now:      time.Now,
		state:    StateLoading,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State { return c.state }

// Run executes the session. A returned error is the fatal disposition:
// repository access failure, UI failure, or an empty post-filter
// selection. Everything else is expressed through Report.Outcome.
func (c *Controller) Run(ctx context.Context) (Report, error) {
	l := log.FromContext(ctx)

	universe, current, clean, err := c.load(ctx)
	if err != nil {
		c.state = StateFailed
		return Report{}, err
	}
	l.Debug("loaded branch universe", "branches", len(universe), "current", current)
	if !clean {
		// Deletes don't touch the working tree, but an operator mid-change
		// may not want to lose the branch they meant to come back to.
		l.Println("Working tree has uncommitted changes")
	}

	items, report, done, err := c.buildPlan(ctx, universe, current)
	if done || err != nil {
		return report, err
	}

	c.state = StateExecuting
	eng := engine.New(c.deleter)
	results, err := eng.Run(ctx, items, engine.Options{
		DryRun: c.settings.DryRun,
		Force:  c.settings.Force,
	}, c.ui)
	if err != nil {
		c.state = StateFailed
		return Report{}, fmt.Errorf("execution failed: %w", err)
	}

	report = Report{
		Outcome: OutcomeSuccess,
		Plan:    items,
		Results: results,
		History: eng.History(),
	}
	if len(engine.Failures(results)) > 0 {
		report.Outcome = OutcomePartialFailure
	}
	c.state = StateDone
	return report, nil
}

// load fetches the current branch, working tree state, and the branch
// universe concurrently. The current branch is excluded from the universe
// here; with force set, interactive mode may still display it (the plan
// excludes it regardless).
func (c *Controller) load(ctx context.Context) ([]git.Branch, string, bool, error) {
	var (
		universe []git.Branch
		current  string
		clean    bool
	)

	if c.Progress != nil {
		c.Progress.Start()
		defer c.Progress.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = c.source.CurrentBranch(gctx)
		return err
	})
	g.Go(func() error {
		clean = c.source.IsWorkingTreeClean(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		universe, err = c.source.LoadBranches(gctx, git.LoadOptions{
			IncludeRemote: c.settings.WantRemote(),
			DefaultRemote: c.settings.DefaultRemote,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", false, fmt.Errorf("failed to read repository: %w", err)
	}

	if !(c.settings.Force && c.Interactive) {
		universe = excludeCurrent(universe, current)
	}
	return universe, current, clean, nil
}

// buildPlan produces the deletion plan for either mode. When done is
// true the session ended before execution and report/err carry the
// disposition.
func (c *Controller) buildPlan(ctx context.Context, universe []git.Branch, current string) (items []plan.Item, report Report, done bool, err error) {
	if c.Interactive {
		c.state = StateSelecting
		selection, err := c.ui.SelectBranches(plan.Sort(universe), "Select branches to delete")
		if err != nil {
			c.state = StateFailed
			return nil, Report{}, true, fmt.Errorf("selection failed: %w", err)
		}
		if selection.Cancelled {
			c.state = StateCancelled
			return nil, Report{Outcome: OutcomeCancelled}, true, nil
		}

		items, err = plan.FromSelection(selection.Branches, current, c.settings)
		if err != nil {
			c.state = StateFailed
			return nil, Report{}, true, err
		}
		return items, Report{}, false, nil
	}

	items = plan.Build(universe, current, c.settings, c.now())
	if len(items) == 0 {
		// Nothing matched the policy: a successful no-op, not an error.
		c.state = StateDone
		return nil, Report{Outcome: OutcomeSuccess}, true, nil
	}

	if !c.settings.SkipConfirmation {
		c.state = StateConfirming
		prompt := fmt.Sprintf("Delete %d branch(es)?", len(items))
		if c.settings.DryRun {
			prompt = fmt.Sprintf("Preview deletion of %d branch(es)?", len(items))
		}
		proceed, err := c.ui.ConfirmPlan(items, prompt)
		if err != nil {
			c.state = StateFailed
			return nil, Report{}, true, fmt.Errorf("confirmation failed: %w", err)
		}
		if !proceed {
			c.state = StateCancelled
			return nil, Report{Outcome: OutcomeCancelled, Plan: items}, true, nil
		}
	}
	return items, Report{}, false, nil
}

// excludeCurrent filters the checked-out branch out of the universe.
func excludeCurrent(branches []git.Branch, current string) []git.Branch {
	if current == "" || current == git.Detached {
		return branches
	}
	out := branches[:0:0]
	for _, b := range branches {
		if b.Kind == git.KindLocal && b.Name == current {
			continue
		}
		out = append(out, b)
	}
	return out
}
