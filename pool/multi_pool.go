package pool

import (
	"fmt"
	"unsafe"

	"github.com/JohnCGriffin/overflow"
)

// MultiPool owns an ordered sequence of SinglePools and routes each
// allocation to the pool that produced it. It delegates allocation to an
// existing pool when possible and appends a new, larger SinglePool when
// no existing pool has a sufficient contiguous free run. Existing pools
// are never relocated or shrunk, so addresses remain valid across
// appends for as long as the owning pool (or the MultiPool itself) is
// not destroyed.
//
// MultiPool is not safe for concurrent use, matching SinglePool.
type MultiPool struct {
	pools   []*SinglePool
	routing map[unsafe.Pointer]*SinglePool
}

// NewMultiPool creates a MultiPool with one initial SinglePool of
// initialChunks chunks.
func NewMultiPool(initialChunks int) *MultiPool {
	mp := &MultiPool{
		pools:   []*SinglePool{NewSinglePool(initialChunks)},
		routing: make(map[unsafe.Pointer]*SinglePool),
	}
	infof("MultiPool: constructed with initial pool of %d chunks", initialChunks)
	return mp
}

// Allocate services a request for nBytes. It probes each owned pool in
// order; the first that can satisfy the request wins. If none can, a new
// SinglePool is appended with capacity 2*M + RequiredChunks(nBytes)
// chunks, where M is the largest NumChunks() among the existing pools,
// and the allocation is retried on it (which must succeed by
// construction). MultiPool.Allocate never reports failure under normal
// operation; growth failure is fatal.
func (mp *MultiPool) Allocate(nBytes int) unsafe.Pointer {
	maxChunks := 0
	for _, sp := range mp.pools {
		if addr, ok := sp.Allocate(nBytes); ok {
			mp.routing[addr] = sp
			return addr
		}
		if sp.NumChunks() > maxChunks {
			maxChunks = sp.NumChunks()
		}
	}

	doubled, ok := overflow.Mul(2, maxChunks)
	if !ok {
		errorf("MultiPool: growth capacity overflow doubling %d chunks", maxChunks)
		panic(fmt.Errorf("%w: doubling %d chunks overflows", ErrGrowthFailed, maxChunks))
	}
	newCapacity, ok := overflow.Add(doubled, RequiredChunks(nBytes))
	if !ok {
		errorf("MultiPool: growth capacity overflow adding required chunks")
		panic(fmt.Errorf("%w: growth capacity overflows", ErrGrowthFailed))
	}

	infof("MultiPool: growing with new pool of %d chunks (%d existing pools)", newCapacity, len(mp.pools))
	sp := NewSinglePool(newCapacity)
	mp.pools = append(mp.pools, sp)

	addr, ok := sp.Allocate(nBytes)
	if !ok {
		// Unreachable by construction: newCapacity >= RequiredChunks(nBytes).
		errorf("MultiPool: newly grown pool of %d chunks could not satisfy %d bytes", newCapacity, nBytes)
		panic(fmt.Errorf("%w: new pool of %d chunks could not satisfy %d bytes", ErrGrowthFailed, newCapacity, nBytes))
	}
	mp.routing[addr] = sp
	return addr
}

// Deallocate routes addr to its owning pool and frees it there. addr
// must be present in the routing map; an unknown address is a contract
// violation and this method panics.
func (mp *MultiPool) Deallocate(addr unsafe.Pointer) {
	sp, ok := mp.routing[addr]
	if !ok {
		errorf("MultiPool: deallocate of unrouted address %p", addr)
		panic(fmt.Errorf("%w: %p", ErrUnknownAddress, addr))
	}
	sp.Deallocate(addr)
	delete(mp.routing, addr)
}

// NumAllocations returns the number of live allocations across all owned
// pools, computed as the size of the routing map. This must equal the
// sum of NumAllocations() over owned pools; that equality is asserted in
// TestMultiPoolAllocationCountAgreement rather than merely documented.
func (mp *MultiPool) NumAllocations() int {
	return len(mp.routing)
}

// NumFreeChunks returns the total free chunks across all owned pools.
func (mp *MultiPool) NumFreeChunks() int {
	total := 0
	for _, sp := range mp.pools {
		total += sp.NumFreeChunks()
	}
	return total
}

// NumAllocatedChunks returns the total allocated chunks across all owned
// pools.
func (mp *MultiPool) NumAllocatedChunks() int {
	total := 0
	for _, sp := range mp.pools {
		total += sp.NumAllocatedChunks()
	}
	return total
}

// NumChunks returns the total chunk capacity across all owned pools.
func (mp *MultiPool) NumChunks() int {
	total := 0
	for _, sp := range mp.pools {
		total += sp.NumChunks()
	}
	return total
}

// NumFreeFragments returns the total number of free fragments across all
// owned pools.
func (mp *MultiPool) NumFreeFragments() int {
	total := 0
	for _, sp := range mp.pools {
		total += sp.NumFreeFragments()
	}
	return total
}

// NumPools reports how many SinglePools this MultiPool currently owns;
// useful for asserting on growth behavior in tests.
func (mp *MultiPool) NumPools() int {
	return len(mp.pools)
}
