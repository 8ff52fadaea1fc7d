package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/raphi011/sweep/internal/config"
	"github.com/raphi011/sweep/internal/git"
	"github.com/raphi011/sweep/internal/log"
	"github.com/raphi011/sweep/internal/plan"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	current    string
	branches   []git.Branch
	dirty      bool
	currentErr error
	loadErr    error
	loadOpts   git.LoadOptions
}

func (s *fakeSource) CurrentBranch(ctx context.Context) (string, error) {
	return s.current, s.currentErr
}

func (s *fakeSource) IsWorkingTreeClean(ctx context.Context) bool {
	return !s.dirty
}

func (s *fakeSource) LoadBranches(ctx context.Context, opts git.LoadOptions) ([]git.Branch, error) {
	s.loadOpts = opts
	return s.branches, s.loadErr
}

type fakeDeleter struct {
	deleted      []string
	failUnmerged map[string]bool
}

func (d *fakeDeleter) DeleteLocalBranch(ctx context.Context, name string, force bool) error {
	if d.failUnmerged[name] && !force {
		return fmt.Errorf("the branch '%s' is not fully merged", name)
	}
	d.deleted = append(d.deleted, name)
	return nil
}

func (d *fakeDeleter) DeleteRemoteBranch(ctx context.Context, remote, name string) error {
	d.deleted = append(d.deleted, remote+"/"+name)
	return nil
}

type fakeUI struct {
	selection    Selection
	selectErr    error
	confirmPlan  bool
	confirmForce bool

	selectCalled  bool
	planPrompt    string
	planItems     []plan.Item
	forceItems    []plan.Item
	shownBranches []git.Branch
}

func (u *fakeUI) SelectBranches(branches []git.Branch, label string) (Selection, error) {
	u.selectCalled = true
	u.shownBranches = branches
	return u.selection, u.selectErr
}

func (u *fakeUI) ConfirmPlan(items []plan.Item, prompt string) (bool, error) {
	u.planItems = items
	u.planPrompt = prompt
	return u.confirmPlan, nil
}

func (u *fakeUI) ConfirmForce(items []plan.Item) (bool, error) {
	u.forceItems = items
	return u.confirmForce, nil
}

func local(name string, daysOld int, merged bool) git.Branch {
	return git.Branch{
		Ref:          name,
		Name:         name,
		Kind:         git.KindLocal,
		LastCommitAt: testNow.AddDate(0, 0, -daysOld),
		IsMerged:     merged,
	}
}

func newTestController(source *fakeSource, deleter *fakeDeleter, ui *fakeUI, settings config.Settings) *Controller {
	c := New(source, deleter, ui, settings)
	c.now = func() time.Time { return testNow }
	return c
}

func TestRun_AutomaticSuccess(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		current: "main",
		branches: []git.Branch{
			local("main", 1, true),
			local("feature/a", 40, true),
			local("feature/b", 50, true),
		},
	}
	deleter := &fakeDeleter{}
	ui := &fakeUI{confirmPlan: true}
	settings := config.Settings{Pattern: "^feature/"}

	report, err := newTestController(source, deleter, ui, settings).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %q, want success", report.Outcome)
	}
	if ui.selectCalled {
		t.Error("automatic mode must not open the picker")
	}
	if len(deleter.deleted) != 2 {
		t.Errorf("deleted = %v, want both feature branches", deleter.deleted)
	}
	if len(report.Results) != 2 || len(report.History) != 2 {
		t.Errorf("results/history = %d/%d, want 2/2", len(report.Results), len(report.History))
	}
}

func TestRun_AutomaticEmptyPlanIsSuccess(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		current:  "main",
		branches: []git.Branch{local("main", 1, true)},
	}
	deleter := &fakeDeleter{}
	ui := &fakeUI{}
	settings := config.Settings{Pattern: "^feature/"}

	c := newTestController(source, deleter, ui, settings)
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %q, want success", report.Outcome)
	}
	if len(report.Plan) != 0 || len(deleter.deleted) != 0 {
		t.Error("empty plan must be a no-op")
	}
	if ui.planItems != nil {
		t.Error("empty plan must not prompt for confirmation")
	}
	if c.State() != StateDone {
		t.Errorf("state = %q, want done", c.State())
	}
}

func TestRun_AutomaticConfirmationDeclined(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		current:  "main",
		branches: []git.Branch{local("feature/a", 40, true)},
	}
	deleter := &fakeDeleter{}
	ui := &fakeUI{confirmPlan: false}
	settings := config.Settings{Pattern: "^feature/"}

	c := newTestController(source, deleter, ui, settings)
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomeCancelled {
		t.Errorf("outcome = %q, want cancelled", report.Outcome)
	}
	if len(report.Plan) != 1 {
		t.Errorf("cancelled report should carry the declined plan, got %v", report.Plan)
	}
	if len(deleter.deleted) != 0 {
		t.Errorf("nothing may be deleted after decline, got %v", deleter.deleted)
	}
	if ui.planPrompt != "Delete 1 branch(es)?" {
		t.Errorf("prompt = %q", ui.planPrompt)
	}
	if c.State() != StateCancelled {
		t.Errorf("state = %q, want cancelled", c.State())
	}
}

func TestRun_SkipConfirmation(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		current:  "main",
		branches: []git.Branch{local("feature/a", 40, true)},
	}
	deleter := &fakeDeleter{}
	ui := &fakeUI{}
	settings := config.Settings{SkipConfirmation: true}

	report, err := newTestController(source, deleter, ui, settings).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %q, want success", report.Outcome)
	}
	if ui.planItems != nil {
		t.Error("confirmation skipped, ConfirmPlan must not run")
	}
	if len(deleter.deleted) != 1 {
		t.Errorf("deleted = %v, want feature/a", deleter.deleted)
	}
}

func TestRun_DryRunPrompt(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		current:  "main",
		branches: []git.Branch{local("feature/a", 40, true)},
	}
	deleter := &fakeDeleter{}
	ui := &fakeUI{confirmPlan: true}
	settings := config.Settings{Pattern: "^feature/", DryRun: true}

	report, err := newTestController(source, deleter, ui, settings).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if ui.planPrompt != "Preview deletion of 1 branch(es)?" {
		t.Errorf("prompt = %q", ui.planPrompt)
	}
	if len(deleter.deleted) != 0 {
		t.Errorf("dry run deleted %v", deleter.deleted)
	}
	if report.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %q, want success", report.Outcome)
	}
}

func TestRun_InteractiveSelection(t *testing.T) {
	t.Parallel()

	a := local("feature/a", 40, true)
	b := local("feature/b", 10, false)
	source := &fakeSource{current: "main", branches: []git.Branch{a, b}}
	deleter := &fakeDeleter{}
	ui := &fakeUI{selection: Selection{Branches: []git.Branch{a}}}

	c := newTestController(source, deleter, ui, config.Settings{})
	c.Interactive = true

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !ui.selectCalled {
		t.Fatal("picker not shown")
	}
	if report.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %q, want success", report.Outcome)
	}
	if len(deleter.deleted) != 1 || deleter.deleted[0] != "feature/a" {
		t.Errorf("deleted = %v, want only feature/a", deleter.deleted)
	}
}

func TestRun_InteractiveCancelled(t *testing.T) {
	t.Parallel()

	source := &fakeSource{current: "main", branches: []git.Branch{local("a", 10, true)}}
	deleter := &fakeDeleter{}
	ui := &fakeUI{selection: Selection{Cancelled: true}}

	c := newTestController(source, deleter, ui, config.Settings{})
	c.Interactive = true

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Outcome != OutcomeCancelled {
		t.Errorf("outcome = %q, want cancelled", report.Outcome)
	}
	if len(deleter.deleted) != 0 {
		t.Errorf("deleted = %v, want nothing", deleter.deleted)
	}
	if c.State() != StateCancelled {
		t.Errorf("state = %q, want cancelled", c.State())
	}
}

func TestRun_InteractiveEmptySelectionIsFatal(t *testing.T) {
	t.Parallel()

	source := &fakeSource{current: "main", branches: []git.Branch{local("a", 10, true)}}
	ui := &fakeUI{selection: Selection{}}

	c := newTestController(source, &fakeDeleter{}, ui, config.Settings{})
	c.Interactive = true

	_, err := c.Run(context.Background())
	if !errors.Is(err, plan.ErrNoDeletableSelection) {
		t.Errorf("err = %v, want ErrNoDeletableSelection", err)
	}
	if c.State() != StateFailed {
		t.Errorf("state = %q, want failed", c.State())
	}
}

func TestRun_CurrentBranchExcludedFromUniverse(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		current: "current",
		branches: []git.Branch{
			local("current", 1, true),
			local("other", 40, true),
		},
	}
	ui := &fakeUI{selection: Selection{Branches: []git.Branch{local("other", 40, true)}}}

	c := newTestController(source, &fakeDeleter{}, ui, config.Settings{})
	c.Interactive = true

	if _, err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, b := range ui.shownBranches {
		if b.Name == "current" {
			t.Error("checked-out branch must not be offered")
		}
	}
}

func TestRun_ForceInteractiveShowsCurrentButNeverPlansIt(t *testing.T) {
	t.Parallel()

	current := local("current", 1, true)
	source := &fakeSource{
		current:  "current",
		branches: []git.Branch{current, local("other", 40, true)},
	}
	deleter := &fakeDeleter{}
	// Operator selects the current branch anyway
	ui := &fakeUI{selection: Selection{Branches: []git.Branch{current, local("other", 40, true)}}}

	c := newTestController(source, deleter, ui, config.Settings{Force: true})
	c.Interactive = true

	if _, err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	shown := false
	for _, b := range ui.shownBranches {
		if b.Name == "current" {
			shown = true
		}
	}
	if !shown {
		t.Error("force + interactive should display the checked-out branch")
	}
	for _, name := range deleter.deleted {
		if name == "current" {
			t.Error("checked-out branch must never be deleted")
		}
	}
}

func TestRun_PartialFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		current: "main",
		branches: []git.Branch{
			local("feature/a", 40, true),
			local("feature/b", 40, false),
		},
	}
	deleter := &fakeDeleter{failUnmerged: map[string]bool{"feature/b": true}}
	ui := &fakeUI{confirmPlan: true, confirmForce: false}
	settings := config.Settings{Pattern: "^feature/"}

	report, err := newTestController(source, deleter, ui, settings).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomePartialFailure {
		t.Errorf("outcome = %q, want partial-failure", report.Outcome)
	}
	if len(ui.forceItems) != 1 || ui.forceItems[0].Branch.Name != "feature/b" {
		t.Errorf("force offer = %+v, want just feature/b", ui.forceItems)
	}
}

func TestRun_ForceEscalationRecovers(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		current:  "main",
		branches: []git.Branch{local("feature/b", 40, false)},
	}
	deleter := &fakeDeleter{failUnmerged: map[string]bool{"feature/b": true}}
	ui := &fakeUI{confirmPlan: true, confirmForce: true}
	settings := config.Settings{Pattern: "^feature/"}

	report, err := newTestController(source, deleter, ui, settings).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %q, want success after forced retry", report.Outcome)
	}
	// History keeps the pre-retry failure, Results report the final outcome
	if len(report.History) != 2 {
		t.Errorf("history = %d entries, want 2", len(report.History))
	}
	if len(report.Results) != 1 || !report.Results[0].Succeeded {
		t.Errorf("results = %+v, want one success", report.Results)
	}
}

func TestRun_LoadFailureIsFatal(t *testing.T) {
	t.Parallel()

	source := &fakeSource{loadErr: errors.New("not a git repository")}
	c := newTestController(source, &fakeDeleter{}, &fakeUI{}, config.Settings{})

	_, err := c.Run(context.Background())
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if c.State() != StateFailed {
		t.Errorf("state = %q, want failed", c.State())
	}
}

func TestRun_LoadOptionsFollowSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		settings   config.Settings
		wantRemote bool
	}{
		{"default", config.Settings{SkipConfirmation: true}, false},
		{"include remote", config.Settings{SkipConfirmation: true, IncludeRemote: true}, true},
		{"local only wins", config.Settings{SkipConfirmation: true, IncludeRemote: true, LocalOnly: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			source := &fakeSource{current: "main"}
			c := newTestController(source, &fakeDeleter{}, &fakeUI{}, tt.settings)
			if _, err := c.Run(context.Background()); err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if source.loadOpts.IncludeRemote != tt.wantRemote {
				t.Errorf("IncludeRemote = %v, want %v", source.loadOpts.IncludeRemote, tt.wantRemote)
			}
		})
	}
}

func TestRun_DirtyWorkingTreeWarns(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, dirty bool) string {
		t.Helper()
		var buf bytes.Buffer
		ctx := log.WithLogger(context.Background(), log.New(&buf, false, false))

		source := &fakeSource{
			current:  "main",
			branches: []git.Branch{local("feature/a", 40, true)},
			dirty:    dirty,
		}
		c := newTestController(source, &fakeDeleter{}, &fakeUI{}, config.Settings{SkipConfirmation: true})
		if _, err := c.Run(ctx); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return buf.String()
	}

	if got := run(t, true); !strings.Contains(got, "uncommitted changes") {
		t.Errorf("dirty tree produced no warning, log = %q", got)
	}
	if got := run(t, false); strings.Contains(got, "uncommitted changes") {
		t.Errorf("clean tree warned anyway, log = %q", got)
	}
}

type countingProgress struct {
	started, stopped int
}

func (p *countingProgress) Start() { p.started++ }
func (p *countingProgress) Stop()  { p.stopped++ }

func TestRun_ProgressWrapsLoad(t *testing.T) {
	t.Parallel()

	source := &fakeSource{current: "main"}
	c := newTestController(source, &fakeDeleter{}, &fakeUI{}, config.Settings{SkipConfirmation: true})
	progress := &countingProgress{}
	c.Progress = progress

	if _, err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if progress.started != 1 || progress.stopped != 1 {
		t.Errorf("progress started/stopped = %d/%d, want 1/1", progress.started, progress.stopped)
	}
}
