//go:build !deadlock

package pool

import "sync"

// wakeMutex guards the slot collection and the parked/woken handshake.
type wakeMutex = sync.Mutex
