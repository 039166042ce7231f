package discover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"go.uber.org/zap"
)

// TargetBranchEnv overrides the branch --changed diffs against.
const TargetBranchEnv = "LINTRO_TARGET_BRANCH"

// Delta detects files changed relative to a baseline branch.
type Delta struct {
	RootDir      string
	TargetBranch string
	Logger       *zap.Logger
}

func (d *Delta) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// ChangedFiles returns absolute paths of files with uncommitted changes
// (staged or not) plus files changed between the target branch and HEAD.
// Returns nil (no filtering) if git is unavailable or no baseline exists.
func (d *Delta) ChangedFiles(ctx context.Context) (map[string]bool, error) {
	repo, err := git.PlainOpenWithOptions(d.RootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		d.log().Debug("not a git repository, using all files", zap.String("dir", d.RootDir))
		return nil, nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil
	}
	root := wt.Filesystem.Root()

	worktreeChanges, err := d.worktreeChanges(wt)
	if err != nil {
		d.log().Debug("worktree status failed, using all files", zap.Error(err))
		return nil, nil
	}

	branchChanges, err := d.branchChanges(ctx, repo)
	if err != nil {
		d.log().Debug("branch diff failed, using all files", zap.Error(err))
		return nil, nil
	}

	changed := make(map[string]bool, len(worktreeChanges)+len(branchChanges))
	for p := range worktreeChanges {
		changed[filepath.Join(root, filepath.FromSlash(p))] = true
	}
	for p := range branchChanges {
		changed[filepath.Join(root, filepath.FromSlash(p))] = true
	}
	if len(changed) == 0 {
		d.log().Debug("no changed files detected")
	}
	return changed, nil
}

// worktreeChanges returns files with uncommitted modifications (staged + unstaged).
func (d *Delta) worktreeChanges(wt *git.Worktree) (map[string]bool, error) {
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}

	changed := make(map[string]bool)
	for path, s := range status {
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		if s.Worktree == git.Deleted || s.Staging == git.Deleted {
			continue
		}
		changed[path] = true
	}
	return changed, nil
}

// branchChanges returns files changed between HEAD and the target branch.
func (d *Delta) branchChanges(ctx context.Context, repo *git.Repository) (map[string]bool, error) {
	targetBranch := d.targetBranch(repo)
	if targetBranch == "" {
		return nil, nil
	}

	headRef, err := repo.Head()
	if err != nil {
		// unborn branch: nothing committed yet
		return nil, nil
	}
	headCommit, err := repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting HEAD commit: %w", err)
	}

	targetRef, err := repo.Reference(plumbing.NewBranchReferenceName(targetBranch), true)
	if err != nil {
		targetRef, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", targetBranch), true)
		if err != nil {
			return nil, nil
		}
	}
	targetCommit, err := repo.CommitObject(targetRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting target commit: %w", err)
	}

	// On the target branch itself, the latest commit is the change set.
	if headCommit.Hash == targetCommit.Hash {
		if headCommit.NumParents() == 0 {
			return nil, nil
		}
		parent, err := headCommit.Parent(0)
		if err != nil {
			return nil, nil
		}
		targetCommit = parent
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, err
	}
	targetTree, err := targetCommit.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, targetTree, headTree, &object.DiffTreeOptions{})
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	changed := make(map[string]bool)
	for _, change := range changes {
		if name := changeName(change); name != "" {
			changed[name] = true
		}
	}
	return changed, nil
}

// targetBranch determines the branch to diff against.
func (d *Delta) targetBranch(repo *git.Repository) string {
	if branch := os.Getenv(TargetBranchEnv); branch != "" {
		return branch
	}
	if d.TargetBranch != "" {
		return d.TargetBranch
	}

	ciVars := []string{
		"GITHUB_BASE_REF",                     // GitHub Actions
		"CI_MERGE_REQUEST_TARGET_BRANCH_NAME", // GitLab CI
		"BITBUCKET_PR_DESTINATION_BRANCH",     // Bitbucket
		"CHANGE_TARGET",                       // Jenkins
	}
	for _, v := range ciVars {
		if branch := os.Getenv(v); branch != "" {
			return branch
		}
	}

	if branch := detectDefaultBranch(repo); branch != "" {
		return branch
	}
	return "main"
}

// detectDefaultBranch reads the symbolic ref for origin/HEAD.
func detectDefaultBranch(repo *git.Repository) string {
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false)
	if err != nil {
		return ""
	}
	target := ref.Target().String()
	if branch, ok := strings.CutPrefix(target, "refs/remotes/origin/"); ok {
		return branch
	}
	return ""
}

// changeName extracts the file path from a tree change. Deleted files are
// dropped since there is nothing left to lint.
func changeName(change *object.Change) string {
	action, err := change.Action()
	if err != nil {
		return ""
	}
	switch action {
	case merkletrie.Insert, merkletrie.Modify:
		return change.To.Name
	}
	return ""
}

// FilterChanged keeps files present in changed. A nil set keeps everything.
func FilterChanged(files []string, changed map[string]bool) []string {
	if changed == nil {
		return files
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		if changed[filepath.Clean(f)] {
			out = append(out, f)
		}
	}
	return out
}
