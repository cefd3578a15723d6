package pool

import (
	"fmt"
	"strings"
)

// String renders a per-chunk occupancy line ('X' for allocated, '-' for
// free) followed by a free-set summary, in size-index order (ascending
// by size, ties by begin), exactly as specified:
//
//	<per-chunk X or - for each of N chunks>
//	Free Set:  [b1, e1) [b2, e2) ...
func (p *SinglePool) String() string {
	var b strings.Builder

	occupied := make([]bool, p.capacityChunks)
	for _, r := range p.allocations {
		for i := r.Begin; i < r.End; i++ {
			occupied[i] = true
		}
	}
	for _, isAllocated := range occupied {
		if isAllocated {
			b.WriteByte('X')
		} else {
			b.WriteByte('-')
		}
	}
	b.WriteByte('\n')

	b.WriteString("Free Set: ")
	for _, r := range p.sizeIdx.ranges {
		fmt.Fprintf(&b, " [%d, %d)", r.Begin, r.End)
	}
	b.WriteByte('\n')

	return b.String()
}

// String renders each owned SinglePool in order, separated by a single
// space.
func (mp *MultiPool) String() string {
	var b strings.Builder
	for i, sp := range mp.pools {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sp.String())
	}
	return b.String()
}
