package pool

import "errors"

// Error definitions for the two contract-violation classes described in
// the allocator's error handling design. Out-of-space on SinglePool is
// not an error at all -- SinglePool.Allocate reports it with the
// boolean-ok idiom -- so no sentinel exists for it.
var (
	// ErrUnknownAddress indicates deallocate was called with an address
	// this pool did not hand out, or already freed (a double free). This
	// is a programmer error; it is never returned, only wrapped into a
	// panic, per the contract that deallocation of an unknown address is
	// fatal and recovery is not supported.
	ErrUnknownAddress = errors.New("pool: deallocate of unknown address")

	// ErrGrowthFailed indicates a MultiPool could not allocate the
	// backing buffer for a newly appended SinglePool. Like
	// ErrUnknownAddress, this is only ever wrapped into a panic.
	ErrGrowthFailed = errors.New("pool: failed to grow multipool")
)
