package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalker(t *testing.T) {
	// Setup temp directory structure
	tmpDir := t.TempDir()

	// Structure:
	// /src
	//   /project-a (git)
	//     /nested (git, must not be reported)
	//   /project-b (bare)
	//   /group
	//     /project-c (git)
	//   /node_modules
	//     /vendored (git)
	//   /z-link-to-a -> project-a

	srcDir := filepath.Join(tmpDir, "src")
	mustMkdir(t, srcDir)

	projA := filepath.Join(srcDir, "project-a")
	mustMkdir(t, filepath.Join(projA, ".git"))
	mustMkdir(t, filepath.Join(projA, "nested", ".git"))

	projB := filepath.Join(srcDir, "project-b")
	mustMkdir(t, filepath.Join(projB, "objects"))
	mustCreateFile(t, filepath.Join(projB, "HEAD"))
	mustCreateFile(t, filepath.Join(projB, "config"))

	projC := filepath.Join(srcDir, "group", "project-c")
	mustMkdir(t, filepath.Join(projC, ".git"))

	vendored := filepath.Join(srcDir, "node_modules", "vendored")
	mustMkdir(t, filepath.Join(vendored, ".git"))

	symlink := filepath.Join(srcDir, "z-link-to-a")
	if err := os.Symlink(projA, symlink); err != nil {
		t.Logf("Skipping symlink setup on platform: %v", err)
	}

	got := collect(NewWalker(srcDir, 3))
	want := []string{
		filepath.Join("group", "project-c"),
		filepath.Join("node_modules", "vendored"),
		"project-a",
		"project-b",
	}
	assert.Equal(t, want, relPaths(got))

	for _, c := range got {
		assert.True(t, filepath.IsAbs(c.Path), "%s: Path %q should be absolute", c.RelPath, c.Path)
		assert.Equal(t, filepath.Join(srcDir, c.RelPath), c.Path)
	}

	// Exclusions prune the named directories.
	excluded := relPaths(collect(NewWalker(srcDir, 3).Exclude("node_modules")))
	assert.NotContains(t, excluded, filepath.Join("node_modules", "vendored"))
}

func TestWalker_ExcludeOnLiteral(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	mustMkdir(t, filepath.Join(tmpDir, "keep", ".git"))
	mustMkdir(t, filepath.Join(tmpDir, "skip", ".git"))

	w := &Walker{Root: tmpDir, MaxDepth: 2}
	require.NotPanics(t, func() { w.Exclude("skip") })
	assert.Equal(t, []string{"keep"}, relPaths(collect(w)))
}

func TestWalker_DepthBound(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	mustMkdir(t, filepath.Join(tmpDir, "a", ".git"))
	mustMkdir(t, filepath.Join(tmpDir, "deep", "nested", "b", ".git"))
	mustMkdir(t, filepath.Join(tmpDir, "deeper", "x", "y", "z", "c", ".git"))

	tests := []struct {
		depth int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
	}

	for _, tt := range tests {
		got := collect(NewWalker(tmpDir, tt.depth))
		assert.Len(t, got, tt.want, "depth %d: found %v", tt.depth, relPaths(got))
		for _, c := range got {
			levels := strings.Count(c.RelPath, string(filepath.Separator)) + 1
			assert.LessOrEqual(t, levels, tt.depth, "depth %d: candidate %s exceeds bound", tt.depth, c.RelPath)
		}
	}
}

func TestWalker_RootIsRepository(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	mustMkdir(t, filepath.Join(tmpDir, ".git"))
	mustMkdir(t, filepath.Join(tmpDir, "child", ".git"))

	for _, depth := range []int{0, 5} {
		got := collect(NewWalker(tmpDir, depth))
		assert.Equal(t, []string{"."}, relPaths(got), "depth %d", depth)
	}
}

func TestWalker_NegativeDepth(t *testing.T) {
	t.Parallel()

	w := NewWalker(t.TempDir(), -2)
	assert.Equal(t, 0, w.MaxDepth)
}

func TestWalker_NoDoubleReporting(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	parent := filepath.Join(tmpDir, "parent")
	mustMkdir(t, filepath.Join(parent, ".git"))
	mustMkdir(t, filepath.Join(parent, "child", ".git"))
	mustMkdir(t, filepath.Join(parent, "vendor", "lib", ".git"))
	mustMkdir(t, filepath.Join(parent, ".git", "modules", "sub", "objects"))
	mustCreateFile(t, filepath.Join(parent, ".git", "modules", "sub", "HEAD"))
	mustCreateFile(t, filepath.Join(parent, ".git", "modules", "sub", "config"))

	got := collect(NewWalker(tmpDir, 5))
	assert.Equal(t, []string{"parent"}, relPaths(got))
}

func TestWalker_GitFileMarksRoot(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	wt := filepath.Join(tmpDir, "worktree")
	mustMkdir(t, wt)
	mustCreateFile(t, filepath.Join(wt, ".git"))
	mustMkdir(t, filepath.Join(wt, "inner", ".git"))

	got := collect(NewWalker(tmpDir, 3))
	assert.Equal(t, []string{"worktree"}, relPaths(got))
}

func TestWalker_SymlinkCycleTerminates(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	loop := filepath.Join(tmpDir, "a", "b")
	mustMkdir(t, loop)
	if err := os.Symlink(tmpDir, filepath.Join(loop, "back-to-root")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	mustMkdir(t, filepath.Join(tmpDir, "a", "repo", ".git"))

	got := collect(NewWalker(tmpDir, 50))
	assert.Equal(t, []string{filepath.Join("a", "repo")}, relPaths(got))
}

func TestWalker_UnreadableDirectorySkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	t.Parallel()

	tmpDir := t.TempDir()
	mustMkdir(t, filepath.Join(tmpDir, "ok", ".git"))
	locked := filepath.Join(tmpDir, "locked")
	mustMkdir(t, filepath.Join(locked, "hidden", ".git"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got := collect(NewWalker(tmpDir, 3))
	assert.Equal(t, []string{"ok"}, relPaths(got))
}

func TestWalker_StopsEarly(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		mustMkdir(t, filepath.Join(tmpDir, name, ".git"))
	}

	var seen []string
	for c := range NewWalker(tmpDir, 2).Walk() {
		seen = append(seen, c.RelPath)
		if len(seen) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestWalker_DeterministicOrder(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	for _, p := range []string{"zeta", "alpha/two", "alpha/one", "Mixed", "beta/x/y"} {
		mustMkdir(t, filepath.Join(tmpDir, filepath.FromSlash(p), ".git"))
	}

	first := relPaths(collect(NewWalker(tmpDir, 3)))
	second := relPaths(collect(NewWalker(tmpDir, 3)))
	assert.Equal(t, first, second, "walks differ")

	want := []string{
		"Mixed",
		filepath.Join("alpha", "one"),
		filepath.Join("alpha", "two"),
		filepath.Join("beta", "x", "y"),
		"zeta",
	}
	assert.Equal(t, want, first)
}

func collect(w *Walker) []Candidate {
	var out []Candidate
	for c := range w.Walk() {
		out = append(out, c)
	}
	return out
}

func relPaths(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.RelPath)
	}
	return out
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0755))
}

func mustCreateFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))
}
