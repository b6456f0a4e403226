package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// LocalRepoScanner implements the RepoScanner interface by executing the
// local 'git' binary installed on the machine.
type LocalRepoScanner struct{}

var _ RepoScanner = &LocalRepoScanner{} // Compile-time check

// NewLocalRepoScanner creates a new instance of the local repo scanner.
func NewLocalRepoScanner() *LocalRepoScanner {
	return &LocalRepoScanner{}
}

// run executes a git command and returns its stdout output.
func (c *LocalRepoScanner) run(_ context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.Command("git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// CommitsTouching implements the RepoScanner interface.
func (c *LocalRepoScanner) CommitsTouching(ctx context.Context, repoPath, path string, from, to time.Time) ([]string, error) {
	args := []string{
		"log",
		"--pretty=format:%H",
	}
	if !from.IsZero() {
		args = append(args, fmt.Sprintf("--since=%s", from.Format(DateTimeFormat)))
	}
	if !to.IsZero() {
		args = append(args, fmt.Sprintf("--until=%s", to.Format(DateTimeFormat)))
	}
	args = append(args, "--", path)

	out, err := c.run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// HeadCommit implements the RepoScanner interface.
func (c *LocalRepoScanner) HeadCommit(ctx context.Context, repoPath string) (string, error) {
	out, err := c.run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
