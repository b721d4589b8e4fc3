// Package probeguard converts faults occurring inside ELF reader probes
// into a recoverable error for the current goroutine, so a transient or
// malformed mapping cannot take down the host process.
//
// A C-style guard would install a SIGSEGV/SIGBUS handler and perform a
// non-local jump back to a sentinel set up at probe entry. Go's runtime
// already owns the disposition of those signals, and competing with it is
// both unsupported and unnecessary: runtime/debug.SetPanicOnFault turns an
// invalid memory access during a probe into an ordinary recoverable panic on
// the same goroutine, which Probe converts into an error. This gets the same
// fault-isolation behavior without touching signal disposition at all.
package probeguard

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrProbeFault is wrapped into the error Probe returns when the guarded
// function faults.
var ErrProbeFault = errors.New("probeguard: fault during memory probe")

var (
	mu        sync.Mutex
	installed bool
	refcount  atomic.Int32
)

// Install marks the guard as active for the process. Safe to call more
// than once; only the first call takes effect, matching a one-shot init
// lifecycle shared with the rest of the process-wide state.
//
// SetPanicOnFault applies only to the calling goroutine, so Install
// itself cannot arm the goroutines that will actually run Probe: the
// background refresh worker, or any caller other than the one that
// happened to call Install. Probe arms and disarms the flag on its own
// goroutine instead; Install/Uninstall only track whether the guard is
// meant to be in effect at all.
func Install() error {
	mu.Lock()
	defer mu.Unlock()

	installed = true
	return nil
}

// Uninstall marks the guard inactive. Called once at teardown
// (xhook.Clear).
func Uninstall() {
	mu.Lock()
	defer mu.Unlock()

	installed = false
}

// Probe runs fn, recovering any fault-induced panic (or any other panic
// raised while dereferencing guarded memory) into an error instead of
// letting it escape. Probe arms SetPanicOnFault on its own goroutine for
// the duration of the call and restores the prior value on return, since
// the flag is goroutine-local and the caller of Install is not
// necessarily the goroutine that ends up running fn.
func Probe(fn func() error) (err error) {
	refcount.Add(1)
	defer refcount.Add(-1)

	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrProbeFault, r)
		}
	}()

	return fn()
}

// Active reports whether any goroutine is currently inside a Probe call.
// Exposed for diagnostics only.
func Active() bool {
	return refcount.Load() > 0
}

// Installed reports whether Install has been called without a matching
// Uninstall. Exposed for diagnostics only.
func Installed() bool {
	mu.Lock()
	defer mu.Unlock()
	return installed
}
