// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// RequireGit skips the test when git is not installed.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH, skipping integration test")
	}
}

// Run executes git in dir with an isolated configuration and fails the test on error.
func Run(t testing.TB, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_GLOBAL=/dev/null",
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME=dirty-test",
		"GIT_AUTHOR_EMAIL=dirty-test@example.com",
		"GIT_COMMITTER_NAME=dirty-test",
		"GIT_COMMITTER_EMAIL=dirty-test@example.com",
		"LC_ALL=C",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s in %s failed: %v\n%s", strings.Join(args, " "), dir, err, out)
	}
	return string(out)
}

// Options describe the state of a repository created by NewRepo.
type Options struct {
	Dirty  bool // Leave an untracked file in the working tree
	Remote bool // Configure an origin remote (never contacted)
}

// NewRepo creates base/name as a repository with one empty commit and returns its path.
func NewRepo(t testing.TB, base, name string, opts Options) string {
	t.Helper()

	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	Run(t, dir, "init", "-q")
	Run(t, dir, "commit", "--allow-empty", "-q", "-m", "init")

	if opts.Remote {
		Run(t, dir, "remote", "add", "origin", "https://example.invalid/repo.git")
	}
	if opts.Dirty {
		WriteFile(t, filepath.Join(dir, "untracked.txt"), "hello")
	}

	return dir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

// Corrupt overwrites the repository's HEAD so git no longer recognizes it.
func Corrupt(t testing.TB, repo string) {
	t.Helper()
	WriteFile(t, filepath.Join(repo, ".git", "HEAD"), "this is not a ref\n")
}
