package git

import (
	"context"
	"fmt"
	"strings"
)

// Detached is the sentinel returned by CurrentBranch when HEAD does not
// point at a branch.
const Detached = "(detached)"

// Repository wraps git operations against a single repository.
// An empty dir means the current working directory.
type Repository struct {
	dir string
}

// NewRepository creates a Repository rooted at dir.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// CurrentBranch returns the current branch name.
// Returns Detached for detached HEAD state.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	output, err := outputGit(ctx, r.dir, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	branch := strings.TrimSpace(string(output))
	if branch == "" {
		return Detached, nil
	}
	return branch, nil
}

// IsWorkingTreeClean returns true if the working tree has no uncommitted
// changes or untracked files. Errors are treated as clean (safe default).
func (r *Repository) IsWorkingTreeClean(ctx context.Context) bool {
	output, err := outputGit(ctx, r.dir, "status", "--porcelain")
	if err != nil {
		return true
	}
	return strings.TrimSpace(string(output)) == ""
}

// baseCandidates returns the probe order for base-branch detection:
// remote default-branch names first, then local ones.
func baseCandidates(remote string) []string {
	if remote == "" {
		remote = "origin"
	}
	return []string{
		remote + "/main",
		remote + "/master",
		remote + "/develop",
		"main",
		"master",
		"develop",
	}
}

// DetectBaseBranch probes well-known default branch names and returns the
// first that exists. Returns "" when none do; callers then skip ahead/behind
// computation entirely.
func (r *Repository) DetectBaseBranch(ctx context.Context, remote string) string {
	for _, candidate := range baseCandidates(remote) {
		if err := runGit(ctx, r.dir, "rev-parse", "--verify", "--quiet", candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// mergedSet returns the refs reachable from the relevant reference point:
// for local branches the branches merged into the current HEAD, for remote
// branches the analogous remote-tracking set. Query failures yield an empty
// set rather than an error — branches are then simply not flagged merged.
func (r *Repository) mergedSet(ctx context.Context, remote bool) map[string]bool {
	args := []string{"branch", "--merged"}
	if remote {
		args = []string{"branch", "-r", "--merged"}
	}
	output, err := outputGit(ctx, r.dir, args...)
	if err != nil {
		return map[string]bool{}
	}
	return parseBranchList(string(output))
}

// aheadBehind returns the symmetric-difference commit counts between base
// and ref. A failed count query (e.g. unrelated histories) yields {0, 0}.
func (r *Repository) aheadBehind(ctx context.Context, base, ref string) (ahead, behind int) {
	output, err := outputGit(ctx, r.dir, "rev-list", "--left-right", "--count", base+"..."+ref)
	if err != nil {
		return 0, 0
	}
	return parseAheadBehind(string(output))
}

// parseAheadBehind parses `rev-list --left-right --count base...ref` output:
// "<behind>\t<ahead>". Left side counts commits only in base.
func parseAheadBehind(out string) (ahead, behind int) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return 0, 0
	}
	if _, err := fmt.Sscanf(fields[0], "%d", &behind); err != nil {
		return 0, 0
	}
	if _, err := fmt.Sscanf(fields[1], "%d", &ahead); err != nil {
		return 0, 0
	}
	return ahead, behind
}

// DeleteLocalBranch deletes a local branch, forced (-D) or safe (-d).
// The name is validated before git sees it.
func (r *Repository) DeleteLocalBranch(ctx context.Context, name string, force bool) error {
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	flag := "-d"
	if force {
		flag = "-D"
	}
	if err := runGit(ctx, r.dir, "branch", flag, name); err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}

// DeleteRemoteBranch deletes a branch on the given remote via push --delete.
// Both the remote and branch name are validated before git sees them.
func (r *Repository) DeleteRemoteBranch(ctx context.Context, remote, name string) error {
	if err := ValidateBranchName(remote); err != nil {
		return err
	}
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	if err := runGit(ctx, r.dir, "push", remote, "--delete", name); err != nil {
		return fmt.Errorf("failed to delete remote branch: %w", err)
	}
	return nil
}
