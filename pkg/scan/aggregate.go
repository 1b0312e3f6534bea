package scan

import (
	"cmp"
	"slices"
)

// Filters restrict which repositories are listed. Set filters compose with AND.
// Repositories that failed to probe never pass an active filter.
type Filters struct {
	DirtyOnly bool
	LocalOnly bool
	Unpushed  bool
}

// Active reports whether any filter is set.
func (f Filters) Active() bool {
	return f.DirtyOnly || f.LocalOnly || f.Unpushed
}

// Match reports whether s passes every active filter.
func (f Filters) Match(s RepoStatus) bool {
	if !f.Active() {
		return true
	}
	if !s.Classified() {
		return false
	}
	if f.DirtyOnly && !s.Dirty {
		return false
	}
	if f.LocalOnly && !s.LocalOnly {
		return false
	}
	if f.Unpushed && !s.Unpushed() {
		return false
	}
	return true
}

// Summary holds counts over every repository found, independent of filters.
type Summary struct {
	Total     int // Repositories found, including failed probes
	Dirty     int
	LocalOnly int
	Unpushed  int
	Failed    int
	Shown     int // Entries passing the filters
}

// Report is the ordered outcome of one scan.
type Report struct {
	Root    string
	Filters Filters
	All     []RepoStatus // Every repository, in discovery order
	Entries []RepoStatus // Repositories passing Filters, in discovery order
	Summary Summary
}

// Failures returns the repositories that could not be inspected.
func (r *Report) Failures() []RepoStatus {
	var out []RepoStatus
	for _, s := range r.All {
		if !s.Classified() {
			out = append(out, s)
		}
	}
	return out
}

// Aggregate orders results by discovery index, applies filters and computes
// the summary. It does not modify results.
func Aggregate(root string, results []Result, f Filters) *Report {
	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b Result) int {
		return cmp.Compare(a.Index, b.Index)
	})

	all := make([]RepoStatus, 0, len(ordered))
	var entries []RepoStatus
	for _, r := range ordered {
		all = append(all, r.Status)
		if f.Match(r.Status) {
			entries = append(entries, r.Status)
		}
	}

	summary := Summarize(all)
	summary.Shown = len(entries)

	return &Report{
		Root:    root,
		Filters: f,
		All:     all,
		Entries: entries,
		Summary: summary,
	}
}

// Summarize folds statuses into counts. Failed probes count toward Total and
// Failed only.
func Summarize(statuses []RepoStatus) Summary {
	var s Summary
	for _, st := range statuses {
		s.Total++
		if !st.Classified() {
			s.Failed++
			continue
		}
		if st.Dirty {
			s.Dirty++
		}
		if st.LocalOnly {
			s.LocalOnly++
		}
		if st.Unpushed() {
			s.Unpushed++
		}
	}
	s.Shown = len(statuses)
	return s
}
