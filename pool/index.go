package pool

import "sort"

// sizeIndex is the free-region index keyed by (size, begin): a sorted
// multiset supporting "smallest free range whose size is at least k" in
// O(log n). Implemented as a sorted slice rather than a tree: small
// in-memory free lists like this one favor a flat, cache-friendly slice
// over pointer-chasing tree nodes.
type sizeIndex struct {
	ranges []ChunkRange
}

func (idx *sizeIndex) insert(r ChunkRange) {
	i := sort.Search(len(idx.ranges), func(i int) bool {
		return !sizeLess(idx.ranges[i], r)
	})
	idx.ranges = append(idx.ranges, ChunkRange{})
	copy(idx.ranges[i+1:], idx.ranges[i:])
	idx.ranges[i] = r
}

func (idx *sizeIndex) remove(r ChunkRange) bool {
	i := idx.find(r)
	if i < 0 {
		return false
	}
	idx.ranges = append(idx.ranges[:i], idx.ranges[i+1:]...)
	return true
}

// find locates the exact entry equal to r, scanning the run of entries
// with matching size (there can be more than one free range of the same
// size) for an exact Begin match.
func (idx *sizeIndex) find(r ChunkRange) int {
	i := sort.Search(len(idx.ranges), func(i int) bool {
		return !sizeLess(idx.ranges[i], r)
	})
	for ; i < len(idx.ranges) && idx.ranges[i].Size() == r.Size(); i++ {
		if idx.ranges[i] == r {
			return i
		}
	}
	return -1
}

// lowerBound returns the smallest free range whose size is at least k,
// ties broken by lowest Begin, and true if one exists.
func (idx *sizeIndex) lowerBound(k int) (ChunkRange, bool) {
	i := sort.Search(len(idx.ranges), func(i int) bool {
		return idx.ranges[i].Size() >= k
	})
	if i == len(idx.ranges) {
		return ChunkRange{}, false
	}
	return idx.ranges[i], true
}

func (idx *sizeIndex) len() int {
	return len(idx.ranges)
}

// positionIndex is the free-region index keyed by Begin: a sorted set
// supporting predecessor/successor queries in O(log n), used only for
// neighbor coalescing on deallocate.
type positionIndex struct {
	ranges []ChunkRange
}

func (idx *positionIndex) insert(r ChunkRange) {
	i := sort.Search(len(idx.ranges), func(i int) bool {
		return !positionLess(idx.ranges[i], r)
	})
	idx.ranges = append(idx.ranges, ChunkRange{})
	copy(idx.ranges[i+1:], idx.ranges[i:])
	idx.ranges[i] = r
}

func (idx *positionIndex) remove(r ChunkRange) bool {
	i := idx.indexOf(r.Begin)
	if i < 0 || idx.ranges[i] != r {
		return false
	}
	idx.ranges = append(idx.ranges[:i], idx.ranges[i+1:]...)
	return true
}

func (idx *positionIndex) indexOf(begin int) int {
	i := sort.Search(len(idx.ranges), func(i int) bool {
		return idx.ranges[i].Begin >= begin
	})
	if i < len(idx.ranges) && idx.ranges[i].Begin == begin {
		return i
	}
	return -1
}

// predecessor returns the free range immediately before r by position,
// i.e. the range with the largest Begin strictly less than r.Begin.
func (idx *positionIndex) predecessor(r ChunkRange) (ChunkRange, bool) {
	i := sort.Search(len(idx.ranges), func(i int) bool {
		return idx.ranges[i].Begin >= r.Begin
	})
	if i == 0 {
		return ChunkRange{}, false
	}
	return idx.ranges[i-1], true
}

// successor returns the free range immediately after r by position, i.e.
// the range with the smallest Begin strictly greater than r.Begin.
func (idx *positionIndex) successor(r ChunkRange) (ChunkRange, bool) {
	i := sort.Search(len(idx.ranges), func(i int) bool {
		return idx.ranges[i].Begin > r.Begin
	})
	if i == len(idx.ranges) {
		return ChunkRange{}, false
	}
	return idx.ranges[i], true
}

func (idx *positionIndex) len() int {
	return len(idx.ranges)
}

// all returns the free ranges in position order, for introspection and
// invariant checks.
func (idx *positionIndex) all() []ChunkRange {
	return idx.ranges
}
