package pool

import (
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// A single small allocation takes the lowest-addressed chunks and leaves
// the remainder as one free fragment.
func TestSinglePoolSingleSmallAllocation(t *testing.T) {
	p := NewSinglePool(4)

	addr, ok := p.Allocate(4) // sizeof(int)
	require.True(t, ok)
	require.NotNil(t, addr)

	require.Equal(t, 1, p.NumAllocations())
	require.Equal(t, 1, p.NumAllocatedChunks())
	require.Equal(t, 3, p.NumFreeChunks())
	require.Equal(t, 1, p.NumFreeFragments())
	require.Equal(t, []ChunkRange{{Begin: 1, End: 4}}, p.posIdx.all())
}

// Allocating the whole pool and then freeing it returns to a single free
// fragment spanning the full capacity.
func TestSinglePoolFillThenEmpty(t *testing.T) {
	p := NewSinglePool(4)

	addr, ok := p.Allocate(4 * ChunkSize)
	require.True(t, ok)
	require.Equal(t, 4, p.NumAllocatedChunks())
	require.Equal(t, 0, p.NumFreeChunks())
	require.Equal(t, 0, p.NumFreeFragments())

	p.Deallocate(addr)
	require.Equal(t, 0, p.NumAllocatedChunks())
	require.Equal(t, 1, p.NumFreeFragments())
	require.Equal(t, []ChunkRange{{Begin: 0, End: 4}}, p.posIdx.all())
}

// Allocate A, B, C (1 chunk each); free A then B.
func TestSinglePoolCoalesceLeft(t *testing.T) {
	p := NewSinglePool(4)

	a, _ := p.Allocate(1)
	b, _ := p.Allocate(1)
	_, _ = p.Allocate(1) // C

	p.Deallocate(a)
	require.Equal(t, 2, p.NumFreeFragments())
	require.ElementsMatch(t, []ChunkRange{{0, 1}, {3, 4}}, p.posIdx.all())

	p.Deallocate(b)
	require.Equal(t, 2, p.NumFreeFragments())
	require.ElementsMatch(t, []ChunkRange{{0, 2}, {3, 4}}, p.posIdx.all())
}

// Allocate A, B, C, D (1 chunk each); free D then C.
func TestSinglePoolCoalesceRight(t *testing.T) {
	p := NewSinglePool(4)

	_, _ = p.Allocate(1) // A
	_, _ = p.Allocate(1) // B
	c, _ := p.Allocate(1)
	d, _ := p.Allocate(1)

	p.Deallocate(d)
	require.Equal(t, 1, p.NumFreeFragments())
	require.ElementsMatch(t, []ChunkRange{{3, 4}}, p.posIdx.all())

	p.Deallocate(c)
	require.Equal(t, 1, p.NumFreeFragments())
	require.ElementsMatch(t, []ChunkRange{{2, 4}}, p.posIdx.all())
}

// Allocate A, B, C, D (1 chunk each); free A, then C, then B, leaving D
// allocated. Freeing B merges its two now-adjacent free neighbors into
// one fragment.
func TestSinglePoolThreeWayMerge(t *testing.T) {
	p := NewSinglePool(4)

	a, _ := p.Allocate(1)
	b, _ := p.Allocate(1)
	c, _ := p.Allocate(1)
	_, _ = p.Allocate(1) // D

	p.Deallocate(a)
	require.ElementsMatch(t, []ChunkRange{{0, 1}}, p.posIdx.all())

	p.Deallocate(c)
	require.Equal(t, 2, p.NumFreeFragments())
	require.ElementsMatch(t, []ChunkRange{{0, 1}, {2, 3}}, p.posIdx.all())

	p.Deallocate(b)
	require.Equal(t, 1, p.NumFreeFragments())
	require.ElementsMatch(t, []ChunkRange{{0, 3}}, p.posIdx.all())
	require.Equal(t, 1, p.NumAllocations())
}

func TestSinglePoolOutOfSpaceReturnsFalse(t *testing.T) {
	p := NewSinglePool(2)
	_, ok := p.Allocate(2 * ChunkSize)
	require.True(t, ok)

	_, ok = p.Allocate(1)
	require.False(t, ok, "no free chunks left")
}

func TestSinglePoolBestFitPicksSmallestSufficientRange(t *testing.T) {
	p := NewSinglePool(20)

	// Free a and b (adjacent, so they coalesce into one size-7 range),
	// leaving the divider allocated and c's size-10 range separate. A
	// request for 3 chunks should land on the size-7 range, not size-10.
	a, _ := p.Allocate(2 * ChunkSize) // [0,2)
	b, _ := p.Allocate(5 * ChunkSize) // [2,7)
	_, _ = p.Allocate(3 * ChunkSize)  // [7,10) kept allocated as a divider
	c, _ := p.Allocate(10 * ChunkSize) // [10,20)

	p.Deallocate(a)
	p.Deallocate(b)
	p.Deallocate(c)

	require.ElementsMatch(t, []ChunkRange{{0, 7}, {10, 20}}, p.posIdx.all())

	addr, ok := p.Allocate(3 * ChunkSize)
	require.True(t, ok)
	r, ok := p.allocations[addr]
	require.True(t, ok)
	require.Equal(t, ChunkRange{Begin: 0, End: 3}, r, "best-fit chooses the smaller size-7 range over the size-10 range")
}

func TestSinglePoolDeallocateUnknownAddressPanics(t *testing.T) {
	p := NewSinglePool(4)
	var bogus unsafe.Pointer = unsafe.Pointer(new(byte))

	require.Panics(t, func() {
		p.Deallocate(bogus)
	})
}

func TestSinglePoolDeallocateDoubleFreePanics(t *testing.T) {
	p := NewSinglePool(4)
	addr, _ := p.Allocate(1)
	p.Deallocate(addr)

	require.Panics(t, func() {
		p.Deallocate(addr)
	})
}

func TestSinglePoolAddressIdentity(t *testing.T) {
	p := NewSinglePool(4)
	addr, ok := p.Allocate(1)
	require.True(t, ok)

	base := unsafe.Pointer(&p.buffer[0])
	want := unsafe.Add(base, 0*ChunkSize)
	require.Equal(t, want, addr)
}

// Free chunks plus allocated chunks always equal the pool's total
// chunk count, regardless of how fragmented the free set is.
func TestSinglePoolConservation(t *testing.T) {
	p := NewSinglePool(10)
	addrs := make([]unsafe.Pointer, 0)
	for i := 0; i < 5; i++ {
		addr, ok := p.Allocate(1)
		require.True(t, ok)
		addrs = append(addrs, addr)
	}
	require.Equal(t, p.NumChunks(), p.NumFreeChunks()+p.NumAllocatedChunks())

	for _, addr := range addrs[:2] {
		p.Deallocate(addr)
	}
	require.Equal(t, p.NumChunks(), p.NumFreeChunks()+p.NumAllocatedChunks())
}

// Any sequence of paired allocate/deallocate operations returns the
// pool to its initial single free range.
func TestSinglePoolRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := NewSinglePool(32)

	for trial := 0; trial < 20; trial++ {
		var live []unsafe.Pointer
		ops := 200
		for i := 0; i < ops; i++ {
			if len(live) > 0 && (rng.Intn(2) == 0 || p.NumFreeFragments() == 0) {
				idx := rng.Intn(len(live))
				p.Deallocate(live[idx])
				live = append(live[:idx], live[idx+1:]...)
				continue
			}
			size := 1 + rng.Intn(3)
			addr, ok := p.Allocate(size * ChunkSize)
			if ok {
				live = append(live, addr)
			}
		}
		for _, addr := range live {
			p.Deallocate(addr)
		}

		require.Equal(t, 0, p.NumAllocations())
		require.Equal(t, 1, p.NumFreeFragments())
		require.Equal(t, []ChunkRange{{Begin: 0, End: 32}}, p.posIdx.all())
	}
}

// The size and position indices must always agree on the free set, and
// no two free ranges may end up touching (they'd have coalesced),
// checked after a mixed sequence of allocations and frees.
func TestSinglePoolIndexInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := NewSinglePool(40)

	var live []unsafe.Pointer
	for i := 0; i < 300; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(live))
			p.Deallocate(live[idx])
			live = append(live[:idx], live[idx+1:]...)
		} else {
			addr, ok := p.Allocate(1 + rng.Intn(4)*ChunkSize)
			if ok {
				live = append(live, addr)
			}
		}

		requireIndexAgreement(t, p)
		requireNoTouchingFreeRanges(t, p)
	}
}

func requireIndexAgreement(t *testing.T, p *SinglePool) {
	t.Helper()
	require.ElementsMatch(t, p.sizeIdx.ranges, p.posIdx.all(), "size and position indices must hold the same set of ranges")
}

func requireNoTouchingFreeRanges(t *testing.T, p *SinglePool) {
	t.Helper()
	ranges := p.posIdx.all()
	for i := 1; i < len(ranges); i++ {
		require.Less(t, ranges[i-1].End, ranges[i].Begin, "adjacent free ranges must have been coalesced")
	}
}
