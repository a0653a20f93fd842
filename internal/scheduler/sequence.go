package scheduler

import "sync/atomic"

// halfRange is the distance beyond which two sequence numbers are assumed to
// straddle a wrap of the 32-bit counter.
const halfRange = 1 << 31

// sequence hands out submission stamps for the priority queue. It wraps at
// 2^32 and relies on seqBefore to keep ordering across the wrap.
type sequence struct {
	next atomic.Uint32
}

// take returns the current stamp and advances the counter.
func (s *sequence) take() uint32 {
	return s.next.Add(1) - 1
}

// reset moves the counter to start. Only used to exercise wraparound.
func (s *sequence) reset(start uint32) {
	s.next.Store(start)
}

// seqBefore reports whether stamp a was issued before stamp b.
//
// When the raw distance between the stamps exceeds 2^31 the counter must have
// wrapped between them, so the numerically larger stamp is the older one.
// Otherwise the smaller stamp is older. The result is only meaningful while
// fewer than 2^31 stamps separate a and b.
func seqBefore(a, b uint32) bool {
	if a == b {
		return false
	}

	var diff uint32
	if a > b {
		diff = a - b
	} else {
		diff = b - a
	}

	if diff > halfRange {
		return a > b
	}
	return a < b
}
