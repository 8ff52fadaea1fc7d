// Package engine executes a deletion plan sequentially, records per-item
// results, and drives the force-escalation retry for unmerged branches.
package engine

import (
	"context"
	"strings"

	"github.com/raphi011/sweep/internal/git"
	"github.com/raphi011/sweep/internal/plan"
)

// Deleter is the narrow mutating surface the engine needs from the
// branch repository.
type Deleter interface {
	DeleteLocalBranch(ctx context.Context, name string, force bool) error
	DeleteRemoteBranch(ctx context.Context, remote, name string) error
}

// ForceConfirmer decides whether unmerged branches that failed a safe
// delete should be retried with a forced delete.
type ForceConfirmer interface {
	ConfirmForce(items []plan.Item) (bool, error)
}

// Result records one delete attempt for one plan item.
type Result struct {
	Branch      git.Branch
	Succeeded   bool
	ErrorDetail string // empty on success
}

// State is the engine's execution state.
type State string

const (
	StateIdle                      State = "idle"
	StateExecuting                 State = "executing"
	StateAwaitingForceConfirmation State = "awaiting-force-confirmation"
	StateCompleted                 State = "completed"
	StateCancelled                 State = "cancelled"
)

// Engine walks a deletion plan one item at a time. Deletes are never
// issued concurrently: git's ref locking makes interleaved deletes racy
// and partial-failure attribution ambiguous.
type Engine struct {
	deleter Deleter
	state   State
	history []Result // every attempt across all passes, in order
}

// New creates an engine in the idle state.
func New(deleter Deleter) *Engine {
	return &Engine{deleter: deleter, state: StateIdle}
}

// State returns the current execution state.
func (e *Engine) State() State { return e.state }

// History returns every attempt made during the session, including the
// first-pass failures of items that later succeeded under force.
func (e *Engine) History() []Result {
	out := make([]Result, len(e.history))
	copy(out, e.history)
	return out
}

// Options controls one engine run.
type Options struct {
	DryRun bool
	Force  bool
}

// Run executes the full plan and, when unmerged branches fail a safe
// delete and force wasn't already active, offers one force-retry of
// exactly the failed subset via the confirmer. The returned results hold
// the final outcome per branch, in plan order.
func (e *Engine) Run(ctx context.Context, items []plan.Item, opts Options, confirm ForceConfirmer) ([]Result, error) {
	e.state = StateExecuting
	results := e.executePass(ctx, items, opts)

	unmerged := unmergedFailures(items, results)
	if opts.DryRun || opts.Force || len(unmerged) == 0 {
		e.state = StateCompleted
		return results, nil
	}

	e.state = StateAwaitingForceConfirmation
	proceed, err := confirm.ConfirmForce(unmerged)
	if err != nil {
		e.state = StateCancelled
		return results, err
	}
	if !proceed {
		// Remaining failures are terminal for the session.
		e.state = StateCancelled
		return results, nil
	}

	e.state = StateExecuting
	retried := e.executePass(ctx, unmerged, Options{Force: true})
	e.state = StateCompleted
	return mergeResults(results, retried), nil
}

// executePass walks items sequentially. In dry-run mode every item is
// recorded as succeeded without invoking any mutating operation. A failed
// item never aborts the rest of the pass.
func (e *Engine) executePass(ctx context.Context, items []plan.Item, opts Options) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		r := Result{Branch: item.Branch, Succeeded: true}
		if !opts.DryRun {
			if err := e.deleteOne(ctx, item, opts.Force); err != nil {
				r.Succeeded = false
				r.ErrorDetail = err.Error()
			}
		}
		results = append(results, r)
		e.history = append(e.history, r)
	}
	return results
}

func (e *Engine) deleteOne(ctx context.Context, item plan.Item, force bool) error {
	if item.TargetsRemote {
		return e.deleter.DeleteRemoteBranch(ctx, item.Branch.Remote, item.Branch.Name)
	}
	return e.deleter.DeleteLocalBranch(ctx, item.Branch.Name, force)
}

// IsUnmergedFailure reports whether a failure detail indicates git's
// not-fully-merged rejection of a safe delete.
func IsUnmergedFailure(detail string) bool {
	return strings.Contains(detail, "not fully merged")
}

// unmergedFailures pairs results with their plan items (same order by
// construction) and returns the items that failed as unmerged.
func unmergedFailures(items []plan.Item, results []Result) []plan.Item {
	var failed []plan.Item
	for i, r := range results {
		if !r.Succeeded && IsUnmergedFailure(r.ErrorDetail) {
			failed = append(failed, items[i])
		}
	}
	return failed
}

// mergeResults folds retry outcomes into the first-pass results: the
// retried item's final outcome replaces its first attempt for reporting.
func mergeResults(first, retried []Result) []Result {
	byRef := make(map[string]Result, len(retried))
	for _, r := range retried {
		byRef[r.Branch.Ref] = r
	}

	merged := make([]Result, len(first))
	for i, r := range first {
		if final, ok := byRef[r.Branch.Ref]; ok {
			merged[i] = final
			continue
		}
		merged[i] = r
	}
	return merged
}

// Failures returns the results that did not succeed.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Succeeded {
			failed = append(failed, r)
		}
	}
	return failed
}
