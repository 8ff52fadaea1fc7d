package git

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentQueries bounds the per-branch ahead/behind fan-out.
const maxConcurrentQueries = 8

// LoadOptions controls branch enumeration.
type LoadOptions struct {
	IncludeRemote bool
	// DefaultRemote is used for base-branch probing ("origin" when empty).
	DefaultRemote string
}

// LoadBranches enumerates branches with commit metadata, merge status,
// and ahead/behind counts relative to the detected base branch.
//
// The independent read queries (local refs, remote refs, merged sets, base
// detection) run concurrently; ahead/behind counting then fans out across
// branches with bounded parallelism. Only ref enumeration failures are
// fatal — merged-set and count failures degrade to safe defaults.
func (r *Repository) LoadBranches(ctx context.Context, opts LoadOptions) ([]Branch, error) {
	var (
		locals, remotes           []Branch
		mergedLocal, mergedRemote map[string]bool
		base                      string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		locals, err = r.listRefs(gctx, false)
		return err
	})
	g.Go(func() error {
		mergedLocal = r.mergedSet(gctx, false)
		return nil
	})
	g.Go(func() error {
		base = r.DetectBaseBranch(gctx, opts.DefaultRemote)
		return nil
	})
	if opts.IncludeRemote {
		g.Go(func() error {
			var err error
			remotes, err = r.listRefs(gctx, true)
			return err
		})
		g.Go(func() error {
			mergedRemote = r.mergedSet(gctx, true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	branches := make([]Branch, 0, len(locals)+len(remotes))
	for _, b := range locals {
		b.IsMerged = mergedLocal[b.Ref]
		branches = append(branches, b)
	}
	for _, b := range remotes {
		b.IsMerged = mergedRemote[b.Ref]
		branches = append(branches, b)
	}

	if base != "" {
		counts := make([][2]int, len(branches))
		cg, cctx := errgroup.WithContext(ctx)
		cg.SetLimit(maxConcurrentQueries)
		for i, b := range branches {
			if b.Ref == base {
				continue
			}
			cg.Go(func() error {
				ahead, behind := r.aheadBehind(cctx, base, b.Ref)
				counts[i] = [2]int{ahead, behind}
				return nil // count failures already degraded to zeros
			})
		}
		_ = cg.Wait()
		for i := range branches {
			branches[i].Ahead = counts[i][0]
			branches[i].Behind = counts[i][1]
		}
	}

	return branches, nil
}

// listRefs enumerates local or remote branch refs via for-each-ref.
func (r *Repository) listRefs(ctx context.Context, remote bool) ([]Branch, error) {
	pattern := "refs/heads"
	if remote {
		pattern = "refs/remotes"
	}
	output, err := outputGit(ctx, r.dir, "for-each-ref", "--format="+refLineFormat, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var branches []Branch
	for _, line := range strings.Split(string(output), "\n") {
		if b, ok := parseRefLine(line, remote); ok {
			branches = append(branches, b)
		}
	}
	return branches, nil
}
