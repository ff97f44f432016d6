package world

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// DefaultLockTimeout bounds how long any world lock may be waited on.
const DefaultLockTimeout = 2 * time.Second

var locksMu sync.Mutex

// ConfigureLocks sets the contention bound for every world lock.
//
// Locks block natively; a watchdog fires onTimeout when an acquisition waits
// longer than timeout. Lock-order detection is off: it identifies holders by
// goroutine id and misreports concurrent readers as recursive locking.
// A nil onTimeout installs the fatal handler: contention past the bound is a
// lock-ordering bug or a stuck holder, so it is logged and the process panics.
// timeout <= 0 disables the watchdog.
func ConfigureLocks(timeout time.Duration, onTimeout func()) {
	locksMu.Lock()
	defer locksMu.Unlock()

	if onTimeout == nil {
		onTimeout = fatalLockTimeout(timeout)
	}
	deadlock.Opts.DeadlockTimeout = timeout
	deadlock.Opts.Disable = timeout <= 0
	deadlock.Opts.DisableLockOrderDetection = true
	deadlock.Opts.OnPotentialDeadlock = onTimeout
}

func fatalLockTimeout(timeout time.Duration) func() {
	return func() {
		slog.Error("world lock contention exceeded bound, aborting", "timeout", timeout)
		panic(fmt.Errorf("%w after %s", ErrLockTimeout, timeout))
	}
}

func init() {
	ConfigureLocks(DefaultLockTimeout, nil)
}
