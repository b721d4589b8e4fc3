// Package xhook is the public facade: a process-wide hook registry plus a
// map reconciler that retargets PLT/GOT relocation slots in loaded shared
// objects to redirect calls through registered replacement functions.
//
// Register adds a hook spec without touching any mapped object. Refresh
// scans the current mapping report and applies every spec that matches a
// loaded object's pathname, synchronously or on the background worker.
package xhook

import (
	"sync"

	"github.com/google/uuid"

	"github.com/zboralski/xgohook/internal/audit"
	"github.com/zboralski/xgohook/internal/hookspec"
	"github.com/zboralski/xgohook/internal/probeguard"
	"github.com/zboralski/xgohook/internal/reconciler"
	"github.com/zboralski/xgohook/internal/xhlog"
)

// Core is the process-wide state a real deployment shares across all
// Register/Refresh/Clear calls: one hook registry, one reconciler (and
// its known-object table), one background worker, under a fixed
// two-lock ordering: registryMu before refreshMu.
type Core struct {
	registryMu sync.Mutex // guards registry, one-shot init flags, worker state
	refreshMu  sync.Mutex // guards the reconciler's known-object table

	registry *hookspec.Registry
	recon    *reconciler.Reconciler
	worker   *reconciler.Worker
	trail    *audit.Trail
	log      *xhlog.Logger

	guardInstalled bool
	workerStarted  bool
}

// defaultCore is the process-wide instance the package-level functions
// operate on, matching a single-instance-per-process model.
var defaultCore = NewCore()

// NewCore builds an independent Core. The package-level functions
// (Register, Refresh, SetDebug, Clear) operate on a shared default
// instance; NewCore exists for tests and for embedders that want
// isolation from that shared state.
func NewCore() *Core {
	registry := hookspec.New()
	log := xhlog.New(false)
	trail := audit.NewTrail(256)

	recon := reconciler.New(registry)
	recon.Log = log
	recon.Trail = trail

	return &Core{
		registry: registry,
		recon:    recon,
		worker:   reconciler.NewWorker(recon),
		trail:    trail,
		log:      log,
	}
}

// Register appends a new hook spec to the registry: patternSrc is matched
// against each loaded object's pathname, symbol is retargeted to
// replacement in every matching object a subsequent Refresh finds. If
// oldOut is non-nil it receives the value replaced each time the spec is
// successfully patched into a matching object; with several matching
// objects it holds the value from the last one patched. Register never
// scans mapped objects itself; call Refresh afterward to apply it.
func (c *Core) Register(patternSrc, symbol string, replacement uintptr, oldOut *uintptr) error {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()

	if !c.guardInstalled {
		if err := probeguard.Install(); err != nil {
			return hookspec.ErrUnknown
		}
		c.guardInstalled = true
	}

	return c.registry.Register(patternSrc, symbol, replacement, oldOut)
}

// Refresh reconciles the current mapping report against the registry.
// async dispatches the sweep to the background worker and returns
// immediately (starting the worker on first use); otherwise Refresh blocks
// until the sweep completes.
func (c *Core) Refresh(async bool) error {
	if async {
		c.registryMu.Lock()
		if !c.workerStarted {
			c.worker.Start()
			c.workerStarted = true
		}
		c.registryMu.Unlock()

		c.worker.Trigger()
		return nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	return c.recon.Run(uuid.NewString())
}

// SetDebug toggles verbose logging for this Core.
func (c *Core) SetDebug(debug bool) {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	c.log.SetLevel(debug)
}

// Trail returns the bounded audit trail of recent hook lifecycle events,
// used by the `xgohook status`/`xgohook watch` CLI subcommands.
func (c *Core) Trail() *audit.Trail {
	return c.trail
}

// Clear tears down all state: stops the worker, drops every registered
// spec, and uninstalls the probe guard. It is the only operation that
// holds both locks at once, fencing out all other activity while tearing
// down.
func (c *Core) Clear() {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.workerStarted {
		c.worker.Stop()
		c.worker = reconciler.NewWorker(c.recon)
		c.workerStarted = false
	}

	c.registry.Clear()

	if c.guardInstalled {
		probeguard.Uninstall()
		c.guardInstalled = false
	}
}

// Register adds a hook spec to the default, process-wide Core. See
// (*Core).Register.
func Register(patternSrc, symbol string, replacement uintptr, oldOut *uintptr) error {
	return defaultCore.Register(patternSrc, symbol, replacement, oldOut)
}

// Refresh reconciles the default Core against the current mapping report.
// See (*Core).Refresh.
func Refresh(async bool) error {
	return defaultCore.Refresh(async)
}

// SetDebug toggles verbose logging on the default Core.
func SetDebug(debug bool) {
	defaultCore.SetDebug(debug)
}

// Clear tears down the default Core's state. See (*Core).Clear.
func Clear() {
	defaultCore.Clear()
}

// Default returns the process-wide Core the package-level functions use,
// for callers (the CLI) that need access to its audit trail.
func Default() *Core {
	return defaultCore
}
