package discovery

// Candidate represents a discovered repository root waiting to be probed
type Candidate struct {
	Path    string // Absolute path to the repository root
	RelPath string // Path relative to the scan root ("." for the root itself)
}
