// Package git provides git operations via shell commands.
//
// All operations use [os/exec.Command] to call the git CLI directly rather than
// using Go git libraries. This approach is simpler, more reliable, and ensures
// compatibility with user configurations (SSH keys, credential helpers, aliases).
//
// # Branch Queries
//
// Read-side operations on [Repository]:
//
//   - [Repository.LoadBranches]: Enumerate local/remote branches with commit
//     metadata, merge status, and ahead/behind counts in bounded parallel calls
//   - [Repository.CurrentBranch]: Current branch, "(detached)" when none
//   - [Repository.IsWorkingTreeClean]: Working tree cleanliness
//   - [Repository.DetectBaseBranch]: Probe well-known default branch names
//
// # Mutations
//
// Branch deletion with mandatory name validation:
//
//   - [Repository.DeleteLocalBranch]: git branch -d / -D
//   - [Repository.DeleteRemoteBranch]: git push <remote> --delete
//
// Every mutating call validates the branch name with [ValidateBranchName]
// before git sees it. Names that could be parsed as flags or contain shell
// metacharacters are rejected with [InvalidNameError].
package git
