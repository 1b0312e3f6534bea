package discovery

import (
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/iamkaf/dirty/pkg/git"
)

// Walker finds git repositories below a root directory, up to a maximum depth.
//
// The walk is depth-first and visits entries in lexical order, so the sequence
// of candidates is deterministic for an unchanged tree. A repository root is
// reported once and never descended into, which keeps nested repositories and
// submodules out of the results. Symbolic links are never followed and
// unreadable directories are skipped.
type Walker struct {
	Root       string
	MaxDepth   int
	Exclusions map[string]bool // Directory names never descended into
	Logger     *slog.Logger
}

// NewWalker creates a walker for root. A negative depth is treated as 0,
// which only checks root itself.
func NewWalker(root string, depth int) *Walker {
	if depth < 0 {
		depth = 0
	}
	return &Walker{
		Root:       root,
		MaxDepth:   depth,
		Exclusions: map[string]bool{},
	}
}

// Exclude adds directory names that are never descended into.
func (w *Walker) Exclude(names ...string) *Walker {
	if w.Exclusions == nil {
		w.Exclusions = map[string]bool{}
	}
	for _, n := range names {
		w.Exclusions[n] = true
	}
	return w
}

// Walk returns a lazy sequence of repository candidates. Directories are read
// only as the consumer pulls values; stopping early stops the walk.
func (w *Walker) Walk() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		w.visit(w.Root, 0, yield)
	}
}

// visit reports whether the walk should continue.
func (w *Walker) visit(dir string, depth int, yield func(Candidate) bool) bool {
	if git.IsGitRepo(dir) {
		return yield(w.candidate(dir))
	}

	if depth >= w.MaxDepth {
		return true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.debug("skipping unreadable directory", "path", dir, "error", err)
		return true
	}

	for _, entry := range entries {
		// DirEntry types come from lstat, so symlinks to directories are not dirs here.
		if !entry.IsDir() {
			continue
		}
		if w.Exclusions[entry.Name()] {
			continue
		}
		if !w.visit(filepath.Join(dir, entry.Name()), depth+1, yield) {
			return false
		}
	}

	return true
}

func (w *Walker) candidate(dir string) Candidate {
	rel, err := filepath.Rel(w.Root, dir)
	if err != nil {
		rel = dir
	}
	return Candidate{
		Path:    dir,
		RelPath: rel,
	}
}

func (w *Walker) debug(msg string, args ...any) {
	if w.Logger != nil {
		w.Logger.Debug(msg, args...)
	}
}
