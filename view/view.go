// Package view provides a typed convenience façade over pool.MultiPool.
// It is a thin collaborator, not part of the allocator core: it computes
// n * sizeof(T), delegates to MultiPool.Allocate, and reinterprets the
// returned bytes as a []T of length n. The core's only obligation to
// this façade is returning addresses aligned at least as strongly as a
// byte.
package view

import (
	"unsafe"

	"github.com/mccallm/chunkpool/pool"
)

// View is a typed slice backed by a MultiPool allocation. The zero value
// is not usable; construct with New.
type View[T any] struct {
	addr unsafe.Pointer
	data []T
}

// New allocates space for n values of T from mp and returns a View over
// it. There is no failure result: pool.MultiPool.Allocate always grows to
// fit, and a growth failure panics inside it.
func New[T any](mp *pool.MultiPool, n int) View[T] {
	var zero T
	size := int(unsafe.Sizeof(zero)) * n
	addr := mp.Allocate(size)
	return View[T]{
		addr: addr,
		data: unsafe.Slice((*T)(addr), n),
	}
}

// Slice returns the typed slice backing this view. The slice is valid
// until a matching Free or destruction of the owning MultiPool.
func (v View[T]) Slice() []T {
	return v.data
}

// Free releases the view's backing allocation back to mp. Callers must
// not use Slice's result after calling Free.
func Free[T any](mp *pool.MultiPool, v View[T]) {
	mp.Deallocate(v.addr)
}
