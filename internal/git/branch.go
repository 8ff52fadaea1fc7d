package git

import (
	"strings"
	"time"
)

// Kind distinguishes local branches from remote-tracking branches.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// Branch holds everything sweep knows about one branch.
type Branch struct {
	Ref          string    // short ref: "feature/x" or "origin/feature/x"
	Name         string    // leaf name without remote prefix
	Kind         Kind      //
	Remote       string    // remote short name, set only for remote branches
	LastCommitAt time.Time // zero when the tip has no resolvable commit date
	CommitHash   string    // short hash of the tip commit, may be empty
	Subject      string    // first line of the tip commit message, may be empty
	IsMerged     bool      // member of the merged set for its kind
	Ahead        int       // commits unique to the branch vs the base branch
	Behind       int       // commits unique to the base branch vs the branch
}

// refLineFormat is the for-each-ref format used by LoadBranches.
// Fields are tab-separated: short ref, strict ISO commit date, short hash, subject.
const refLineFormat = "%(refname:short)%09%(committerdate:iso8601-strict)%09%(objectname:short)%09%(contents:subject)"

// parseRefLine converts one for-each-ref output line into a Branch.
// Returns false for lines that must not materialize as branches:
// empty lines, the HEAD pointer, and remote refs that don't split
// into remote/name (e.g. "origin/HEAD").
func parseRefLine(line string, remote bool) (Branch, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return Branch{}, false
	}

	fields := strings.SplitN(line, "\t", 4)
	ref := fields[0]
	if ref == "" || ref == "HEAD" {
		return Branch{}, false
	}

	b := Branch{Ref: ref, Name: ref, Kind: KindLocal}

	if remote {
		remoteName, name, ok := SplitRemoteRef(ref)
		if !ok || name == "HEAD" {
			return Branch{}, false
		}
		b.Kind = KindRemote
		b.Remote = remoteName
		b.Name = name
	}

	if len(fields) > 1 {
		// Unparseable dates leave LastCommitAt zero rather than failing
		// the whole enumeration.
		if t, err := time.Parse(time.RFC3339, fields[1]); err == nil {
			b.LastCommitAt = t
		}
	}
	if len(fields) > 2 {
		b.CommitHash = fields[2]
	}
	if len(fields) > 3 {
		b.Subject = fields[3]
	}

	return b, true
}

// SplitRemoteRef decomposes "origin/feature/x" into ("origin", "feature/x").
// Returns false when the ref has no remote prefix or either part is empty.
func SplitRemoteRef(ref string) (remote, name string, ok bool) {
	remote, name, found := strings.Cut(ref, "/")
	if !found || remote == "" || name == "" {
		return "", "", false
	}
	return remote, name, true
}

// parseBranchList parses `git branch [-r] --merged` output into a set of refs.
// The current-branch marker (*), worktree marker (+), and pointer alias
// lines ("origin/HEAD -> origin/main") are stripped or skipped.
func parseBranchList(out string) map[string]bool {
	set := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "* ")
		trimmed = strings.TrimPrefix(trimmed, "+ ")
		if trimmed == "" || strings.Contains(trimmed, " -> ") {
			continue
		}
		set[trimmed] = true
	}
	return set
}
