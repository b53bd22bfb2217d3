// Package git reads the version-control position of a workspace so snapshots
// can record which commit they were taken on.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Info is the git position of a working tree.
type Info struct {
	Commit string `json:"commit"`
	Branch string `json:"branch"`
	Dirty  bool   `json:"dirty"`
}

// IsGitRepo checks if dir is inside a git working tree
func IsGitRepo(dir string) bool {
	out, err := run(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// GetCurrentBranch returns the current branch name
func GetCurrentBranch(dir string) (string, error) {
	out, err := run(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return out, nil
}

// GetCurrentCommit returns the current commit hash
func GetCurrentCommit(dir string) (string, error) {
	out, err := run(dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current commit: %w", err)
	}
	return out, nil
}

// HasUncommittedChanges checks if there are uncommitted changes. The
// control directory does not count.
func HasUncommittedChanges(dir string) (bool, error) {
	out, err := run(dir, "status", "--porcelain", "--", ".", ":(exclude).timewarp")
	if err != nil {
		return false, fmt.Errorf("failed to check git status: %w", err)
	}
	return out != "", nil
}

// Describe returns the git position of dir, or nil when dir is not a git
// working tree, git is not installed, or HEAD has no commit yet.
func Describe(dir string) *Info {
	if !IsGitRepo(dir) {
		return nil
	}
	commit, err := GetCurrentCommit(dir)
	if err != nil {
		return nil
	}
	info := &Info{Commit: commit}
	if branch, err := GetCurrentBranch(dir); err == nil {
		info.Branch = branch
	}
	if dirty, err := HasUncommittedChanges(dir); err == nil {
		info.Dirty = dirty
	}
	return info
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
