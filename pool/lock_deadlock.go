//go:build deadlock

package pool

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// wakeMutex reports lock-order inversions and long waits when the package is
// built with -tags deadlock.
type wakeMutex = deadlock.Mutex

func init() {
	deadlock.Opts.DeadlockTimeout = 10 * time.Second
}
