package git

import (
	"os"
	"path/filepath"
)

// MetadataDir is the name of the metadata entry marking a non-bare repository root.
const MetadataDir = ".git"

// IsGitRepo checks if a path is a git repository root
func IsGitRepo(path string) bool {
	return HasMetadataDir(path) || IsBareRepo(path)
}

// HasMetadataDir reports whether path directly contains a .git directory or
// a .git file (worktrees and submodules use a gitfile).
func HasMetadataDir(path string) bool {
	info, err := os.Stat(filepath.Join(path, MetadataDir))
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode().IsRegular()
}

// IsBareRepo reports whether path has the layout of a bare repository
// (HEAD, config and an objects directory at its top level).
func IsBareRepo(path string) bool {
	headPath := filepath.Join(path, "HEAD")
	configPath := filepath.Join(path, "config")
	objectsPath := filepath.Join(path, "objects")
	if _, err := os.Stat(headPath); err != nil {
		return false
	}
	if _, err := os.Stat(configPath); err != nil {
		return false
	}
	info, err := os.Stat(objectsPath)
	return err == nil && info.IsDir()
}
