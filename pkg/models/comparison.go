package models

// MismatchKind categorizes why two trees disagree at a path
type MismatchKind string

const (
	// KindContent indicates both files exist but their bytes differ
	KindContent MismatchKind = "content"
	// KindOnlyInGolden indicates the path exists only in the golden tree
	KindOnlyInGolden MismatchKind = "only_in_golden"
	// KindOnlyInCandidate indicates the path exists only in the candidate tree
	KindOnlyInCandidate MismatchKind = "only_in_candidate"
	// KindType indicates a file on one side and a directory (or nothing usable) on the other
	KindType MismatchKind = "type"
	// KindReadError indicates a file could not be read
	KindReadError MismatchKind = "read_error"
	// KindListError indicates a directory could not be listed
	KindListError MismatchKind = "list_error"
	// KindCounts indicates header counts and compared pairs disagree
	KindCounts MismatchKind = "counts"
)

// Mismatch is one accumulated comparison error
type Mismatch struct {
	Kind MismatchKind `json:"kind"`

	// Path is the slash-separated path relative to both roots ("." for the root)
	Path string `json:"path,omitempty"`

	GoldenPath    string `json:"golden_path,omitempty"`
	CandidatePath string `json:"candidate_path,omitempty"`

	// Message is the human readable diagnostic
	Message string `json:"message"`
}

// ComparisonResult accumulates the outcome of comparing two directory trees.
// A fresh value is created for every comparison.
type ComparisonResult struct {
	GoldenRoot    string `json:"golden_root"`
	CandidateRoot string `json:"candidate_root"`

	// FilesCompared counts file pairs whose contents were checked
	FilesCompared int `json:"files_compared"`

	// PathsVisited counts relative paths visited in either tree, the root included
	PathsVisited int `json:"paths_visited"`

	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Record appends a mismatch
func (r *ComparisonResult) Record(m Mismatch) {
	r.Mismatches = append(r.Mismatches, m)
}

// Errors returns the number of recorded mismatches
func (r *ComparisonResult) Errors() int {
	return len(r.Mismatches)
}

// Identical reports whether the trees matched without any error
func (r *ComparisonResult) Identical() bool {
	return len(r.Mismatches) == 0
}

// ByKind groups mismatches by kind
func (r *ComparisonResult) ByKind() map[MismatchKind][]Mismatch {
	grouped := make(map[MismatchKind][]Mismatch)
	for _, m := range r.Mismatches {
		grouped[m.Kind] = append(grouped[m.Kind], m)
	}
	return grouped
}
