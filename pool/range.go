package pool

// ChunkRange is a half-open [Begin, End) interval of chunk indices into a
// SinglePool's chunk space. Begin must be less than End; an empty range
// is never constructed or stored in either free index.
type ChunkRange struct {
	Begin int
	End   int
}

// Size returns the number of chunks the range spans.
func (r ChunkRange) Size() int {
	return r.End - r.Begin
}

// Empty reports whether the range spans no chunks.
func (r ChunkRange) Empty() bool {
	return r.Begin >= r.End
}

// adjoins reports whether r immediately precedes other with no gap,
// i.e. r.End == other.Begin. Adjoining free ranges are required to have
// been coalesced (invariant I3); this is the predicate used to decide
// whether a newly freed range should merge with a neighbor.
func (r ChunkRange) adjoins(other ChunkRange) bool {
	return r.End == other.Begin
}

// sizeLess orders two ranges by (size, begin), the key used by the
// size-ordered free index. Ties on size break to the lower begin.
func sizeLess(a, b ChunkRange) bool {
	if a.Size() != b.Size() {
		return a.Size() < b.Size()
	}
	return a.Begin < b.Begin
}

// positionLess orders two ranges by begin, the key used by the
// position-ordered free index.
func positionLess(a, b ChunkRange) bool {
	return a.Begin < b.Begin
}
