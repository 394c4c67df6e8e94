// Package arena hands out the byte buffers of a single conversion and keeps
// their total under a fixed budget. Buffers are released when the arena and
// everything it handed out become unreachable, so error paths need no cleanup.
package arena

import (
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/KuratZero/c-png-to-pnm/src/utils"
)

type Arena struct {
	limit     uint64
	allocated uint64
}

// New creates an arena that refuses to hand out more than limit bytes in
// total. A zero limit means no budget beyond what the runtime can provide.
func New(limit uint64) *Arena {
	return &Arena{limit: limit}
}

func (a *Arena) Allocated() uint64 {
	return a.allocated
}

func (a *Arena) Limit() uint64 {
	return a.limit
}

// Size multiplies buffer dimensions, failing with ErrAllocation on overflow.
func Size(what string, factors ...uint64) (uint64, error) {
	n, ok := utils.MulSize(factors...)
	if !ok {
		return 0, oops.New(pngerr.ErrAllocation, "size of %s overflows (%v)", what, factors)
	}
	return n, nil
}

// Bytes returns a zeroed buffer of n bytes charged against the budget.
func (a *Arena) Bytes(what string, n uint64) (buf []byte, err error) {
	total, ok := utils.AddSize(a.allocated, n)
	if !ok || (a.limit != 0 && total > a.limit) {
		return nil, oops.New(pngerr.ErrAllocation, "%s needs %d bytes, %d of %d already in use", what, n, a.allocated, a.limit)
	}
	if n != uint64(int(n)) || int(n) < 0 {
		return nil, oops.New(pngerr.ErrAllocation, "%s needs %d bytes, more than is addressable", what, n)
	}

	defer func() {
		if err != nil {
			buf = nil
			err = oops.New(pngerr.ErrAllocation, "failed to allocate %d bytes for %s: %v", n, what, err)
		}
	}()
	defer utils.RecoverPanicAsError(&err)

	buf = make([]byte, int(n))
	a.allocated = total
	return buf, nil
}

// Scratch returns a buffer for short-lived data, such as a chunk payload that
// is copied elsewhere right away. Its size must fit in the remaining budget,
// but it is not charged against it.
func (a *Arena) Scratch(what string, n uint64) ([]byte, error) {
	if a.limit != 0 && (a.allocated > a.limit || n > a.limit-a.allocated) {
		return nil, oops.New(pngerr.ErrAllocation, "%s needs %d bytes, %d of %d already in use", what, n, a.allocated, a.limit)
	}
	buf, err := a.Bytes(what, n)
	if err != nil {
		return nil, err
	}
	a.release(n)
	return buf, nil
}

// Grow appends src to dst, charging any reallocation against the budget. dst
// must be nil or a slice previously returned by Grow on the same arena.
func (a *Arena) Grow(what string, dst, src []byte) ([]byte, error) {
	need, ok := utils.AddSize(uint64(len(dst)), uint64(len(src)))
	if !ok {
		return nil, oops.New(pngerr.ErrAllocation, "size of %s overflows", what)
	}
	if need <= uint64(cap(dst)) {
		return append(dst, src...), nil
	}

	newCap := need
	if doubled := uint64(cap(dst)) * 2; doubled > newCap {
		newCap = doubled
	}
	if a.limit != 0 {
		remaining := uint64(0)
		if a.allocated < a.limit {
			remaining = a.limit - a.allocated
		}
		if newCap > remaining && need <= remaining {
			newCap = need
		}
	}

	buf, err := a.Bytes(what, newCap)
	if err != nil {
		return nil, err
	}
	buf = buf[:len(dst)]
	copy(buf, dst)
	a.release(uint64(cap(dst)))
	return append(buf, src...), nil
}

// release returns n bytes of budget for a buffer the arena no longer tracks.
func (a *Arena) release(n uint64) {
	if n > a.allocated {
		a.allocated = 0
		return
	}
	a.allocated -= n
}
