package pool

import (
	"fmt"
	"unsafe"

	"github.com/JohnCGriffin/overflow"
)

// SinglePool owns one contiguous byte buffer of fixed capacity,
// partitioned into equally sized chunks. It maintains the dual free-region
// indices, performs best-fit allocation within its capacity, and
// coalesces adjacent free regions on deallocation. A SinglePool cannot
// grow; that is MultiPool's job.
//
// SinglePool is not safe for concurrent use. Public operations are not
// re-entrant with respect to the same instance.
type SinglePool struct {
	capacityChunks int
	buffer         []byte

	sizeIdx sizeIndex
	posIdx  positionIndex

	allocations map[unsafe.Pointer]ChunkRange
}

// NewSinglePool creates a SinglePool of capacityChunks chunks.
// capacityChunks must be at least 1.
func NewSinglePool(capacityChunks int) *SinglePool {
	if capacityChunks < 1 {
		panic(fmt.Errorf("pool: capacityChunks must be >= 1, got %d", capacityChunks))
	}

	total, ok := overflow.Mul(capacityChunks, ChunkSize)
	if !ok {
		errorf("SinglePool: capacity overflow for %d chunks", capacityChunks)
		panic(fmt.Errorf("%w: capacity overflow for %d chunks", ErrGrowthFailed, capacityChunks))
	}

	p := &SinglePool{
		capacityChunks: capacityChunks,
		buffer:         make([]byte, total),
		allocations:    make(map[unsafe.Pointer]ChunkRange),
	}

	full := ChunkRange{Begin: 0, End: capacityChunks}
	p.sizeIdx.insert(full)
	p.posIdx.insert(full)

	debugf("SinglePool: constructed with %d chunks (%d bytes)", capacityChunks, total)
	return p
}

// addressOf returns the byte address of the first byte of chunk index
// begin within this pool's buffer.
func (p *SinglePool) addressOf(begin int) unsafe.Pointer {
	return unsafe.Pointer(&p.buffer[begin*ChunkSize])
}

// Allocate services a request for nBytes, rounding up to whole chunks
// and selecting the smallest free range whose size is at least the
// request (best-fit), ties broken by the lowest begin. It reports false
// if no free range is large enough; this is an expected outcome, not an
// error.
func (p *SinglePool) Allocate(nBytes int) (unsafe.Pointer, bool) {
	k := RequiredChunks(nBytes)

	r, ok := p.sizeIdx.lowerBound(k)
	if !ok {
		debugf("SinglePool: no free range >= %d chunks for %d bytes", k, nBytes)
		return nil, false
	}

	p.sizeIdx.remove(r)
	p.posIdx.remove(r)

	if r.Size() > k {
		remainder := ChunkRange{Begin: r.Begin + k, End: r.End}
		p.sizeIdx.insert(remainder)
		p.posIdx.insert(remainder)
	}

	allocated := ChunkRange{Begin: r.Begin, End: r.Begin + k}
	addr := p.addressOf(allocated.Begin)
	p.allocations[addr] = allocated

	debugf("SinglePool: allocated %d bytes (%d chunks) at chunk %d", nBytes, k, allocated.Begin)
	return addr, true
}

// Deallocate returns the range backing addr to the free indices,
// coalescing with an immediately adjacent predecessor and/or successor
// free range. addr must be a key currently held by this pool's
// allocations; any other value is a contract violation and this method
// panics, per the allocator's fatal-error policy.
func (p *SinglePool) Deallocate(addr unsafe.Pointer) {
	r, ok := p.allocations[addr]
	if !ok {
		errorf("SinglePool: deallocate of unknown address %p", addr)
		panic(fmt.Errorf("%w: %p", ErrUnknownAddress, addr))
	}
	delete(p.allocations, addr)

	merged := r
	if pred, ok := p.posIdx.predecessor(merged); ok && pred.adjoins(merged) {
		p.sizeIdx.remove(pred)
		p.posIdx.remove(pred)
		merged = ChunkRange{Begin: pred.Begin, End: merged.End}
	}
	if succ, ok := p.posIdx.successor(merged); ok && merged.adjoins(succ) {
		p.sizeIdx.remove(succ)
		p.posIdx.remove(succ)
		merged = ChunkRange{Begin: merged.Begin, End: succ.End}
	}

	p.sizeIdx.insert(merged)
	p.posIdx.insert(merged)

	debugf("SinglePool: freed chunks [%d, %d), now free [%d, %d)", r.Begin, r.End, merged.Begin, merged.End)
}

// NumAllocations returns the number of live allocations.
func (p *SinglePool) NumAllocations() int {
	return len(p.allocations)
}

// NumAllocatedChunks returns the total number of chunks currently
// backing live allocations.
func (p *SinglePool) NumAllocatedChunks() int {
	total := 0
	for _, r := range p.allocations {
		total += r.Size()
	}
	return total
}

// NumFreeChunks returns the total number of chunks not currently backing
// any allocation.
func (p *SinglePool) NumFreeChunks() int {
	total := 0
	for _, r := range p.posIdx.all() {
		total += r.Size()
	}
	return total
}

// NumChunks returns the pool's fixed chunk capacity.
func (p *SinglePool) NumChunks() int {
	return p.capacityChunks
}

// NumFreeFragments returns the number of disjoint free ranges.
func (p *SinglePool) NumFreeFragments() int {
	return p.posIdx.len()
}
