package compare

// RelPath is a slash-separated path relative to the roots of both trees.
// The zero value denotes the roots themselves.
type RelPath struct {
	p string
}

// Root is the path of the tree roots
var Root = RelPath{}

// Join returns the path of the named child
func (r RelPath) Join(name string) RelPath {
	if r.IsRoot() {
		return RelPath{p: name}
	}
	return RelPath{p: r.p + "/" + name}
}

// IsRoot reports whether r is the root path
func (r RelPath) IsRoot() bool {
	return r.p == ""
}

// Slash returns the path as passed to storage backends ("" for the root)
func (r RelPath) Slash() string {
	return r.p
}

// String renders the path for diagnostics; the root renders as "."
func (r RelPath) String() string {
	if r.IsRoot() {
		return "."
	}
	return r.p
}
