package stage

// Record is the append-only list of absolute paths staged during one
// process run. It is not safe for concurrent use; staging and cleanup never
// overlap.
type Record struct {
	paths []string
}

// Add appends a staged path.
func (r *Record) Add(path string) {
	r.paths = append(r.paths, path)
}

// Len returns the number of recorded paths.
func (r *Record) Len() int {
	return len(r.paths)
}

// Paths returns a copy of the recorded paths in staging order.
func (r *Record) Paths() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Drain returns the recorded paths and empties the record.
func (r *Record) Drain() []string {
	out := r.paths
	r.paths = nil
	return out
}
