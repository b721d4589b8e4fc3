// Package reconciler implements the map reconciler: it walks the current
// mapping report, matches loaded objects against the hook registry, and
// applies the relocation patcher to every newly seen or relocated object.
// Known objects are carried forward across sweeps, objects no longer
// present are dropped, and only the first mapping for a given pathname in
// one sweep is ever hooked.
package reconciler

import (
	"errors"
	"fmt"
	"io"

	"github.com/zboralski/xgohook/internal/audit"
	"github.com/zboralski/xgohook/internal/elfview"
	"github.com/zboralski/xgohook/internal/hookspec"
	"github.com/zboralski/xgohook/internal/maps"
	"github.com/zboralski/xgohook/internal/patcher"
	"github.com/zboralski/xgohook/internal/xhlog"
)

// ElfView is the subset of *elfview.View the reconciler depends on, so
// tests can drive the algorithm against a fake without a real process to
// hook.
type ElfView interface {
	Hook(symbolName string, newFn uintptr, patch PatchFunc) (uintptr, error)
}

// PatchFunc performs a single relocation-slot store, as patcher.Patch does.
type PatchFunc = elfview.PatchFunc

// ElfOpener builds an ElfView for the object currently mapped at baseAddr.
type ElfOpener func(baseAddr uintptr, pathname string) (ElfView, error)

// HeaderChecker does the cheap ELF-header sanity check ahead of a full open.
type HeaderChecker func(baseAddr uintptr) error

// ObjectRecord is one loaded object the reconciler is tracking across
// sweeps.
type ObjectRecord struct {
	Pathname string
	BaseAddr uintptr
	view     ElfView
}

// Reconciler holds the known-object table between sweeps. It is not safe
// for concurrent Run calls; callers serialize access with their own lock
// (see the refresh mutex in xhook.go).
type Reconciler struct {
	Registry    *hookspec.Registry
	Open        ElfOpener
	CheckHeader HeaderChecker
	Patch       PatchFunc
	MapsSource  func() (io.ReadCloser, error)
	Log         *xhlog.Logger
	Trail       *audit.Trail

	known map[string]*ObjectRecord
}

// New builds a Reconciler wired to the real ELF reader, patcher, and
// /proc/self/maps.
func New(registry *hookspec.Registry) *Reconciler {
	return &Reconciler{
		Registry: registry,
		Open: func(baseAddr uintptr, pathname string) (ElfView, error) {
			return elfview.New(baseAddr, pathname)
		},
		CheckHeader: elfview.CheckHeader,
		Patch:       patcher.Patch,
		MapsSource:  maps.Self,
		Log:         xhlog.NewNop(),
		known:       make(map[string]*ObjectRecord),
	}
}

// Run performs one full reconciliation sweep: it re-reads the mapping
// report, matches every readable, non-synthetic mapping against the
// registry snapshot, hooks new or relocated objects, and drops records for
// objects no longer mapped. refreshID identifies this sweep in logs and the
// audit trail.
func (r *Reconciler) Run(refreshID string) error {
	rc, err := r.MapsSource()
	if err != nil {
		return fmt.Errorf("reconciler: open maps source: %w", err)
	}
	defer rc.Close()

	mappings := maps.Parse(rc)
	specs := r.Registry.Snapshot()

	fresh := make(map[string]*ObjectRecord, len(r.known))
	matched := 0
	patchedTotal := 0

	for _, m := range mappings {
		if !m.Readable() || m.Synthetic() {
			continue
		}

		if !anyMatch(specs, m.Pathname) {
			continue
		}
		matched++

		if _, dup := fresh[m.Pathname]; dup {
			// Not the first mapping for this pathname in this sweep;
			// only the first one found wins.
			r.logSkip(refreshID, m.Pathname, "duplicate mapping")
			continue
		}

		if err := r.CheckHeader(m.Start); err != nil {
			r.logSkip(refreshID, m.Pathname, "invalid elf header")
			continue
		}

		if existing, ok := r.known[m.Pathname]; ok {
			delete(r.known, m.Pathname)
			fresh[m.Pathname] = existing

			if existing.BaseAddr == m.Start {
				continue
			}

			existing.BaseAddr = m.Start
			existing.view = nil
			n, hookErr := r.hookObject(refreshID, existing, specs)
			patchedTotal += n
			if hookErr != nil {
				r.Log.ProbeFault(refreshID, m.Pathname, hookErr)
			}
			continue
		}

		rec := &ObjectRecord{Pathname: m.Pathname, BaseAddr: m.Start}
		fresh[m.Pathname] = rec
		n, hookErr := r.hookObject(refreshID, rec, specs)
		patchedTotal += n
		if hookErr != nil {
			r.Log.ProbeFault(refreshID, m.Pathname, hookErr)
		}
	}

	for path := range r.known {
		if r.Trail != nil {
			r.Trail.Record(audit.Event{Kind: audit.Unloaded, RefreshID: refreshID, Pathname: path})
		}
	}
	unloaded := len(r.known)

	r.known = fresh
	r.Log.Refresh(refreshID, matched, patchedTotal, unloaded)

	return nil
}

// hookObject applies every registry spec matching rec's pathname, opening
// the ELF view lazily and caching it on the record.
func (r *Reconciler) hookObject(refreshID string, rec *ObjectRecord, specs []*hookspec.Spec) (patched int, err error) {
	if rec.view == nil {
		view, openErr := r.Open(rec.BaseAddr, rec.Pathname)
		if openErr != nil {
			if r.Trail != nil {
				r.Trail.Record(audit.Event{
					Kind: audit.ProbeFault, RefreshID: refreshID,
					Pathname: rec.Pathname, Detail: openErr.Error(),
				})
			}
			return 0, openErr
		}
		rec.view = view
	}

	for _, s := range specs {
		if !s.Matches(rec.Pathname) {
			continue
		}

		old, hookErr := rec.view.Hook(s.Symbol, s.Replacement, r.Patch)
		if hookErr != nil {
			if errors.Is(hookErr, elfview.ErrSymbolNotFound) {
				continue
			}
			r.Log.ProbeFault(refreshID, rec.Pathname, hookErr)
			if r.Trail != nil {
				r.Trail.Record(audit.Event{
					Kind: audit.ProbeFault, RefreshID: refreshID,
					Pathname: rec.Pathname, Symbol: s.Symbol, Detail: hookErr.Error(),
				})
			}
			continue
		}

		if s.OldOut != nil {
			*s.OldOut = old
		}

		patched++
		r.Log.Patch(refreshID, rec.Pathname, s.Symbol, old, s.Replacement)
		if r.Trail != nil {
			r.Trail.Record(audit.Event{Kind: audit.Patched, RefreshID: refreshID, Pathname: rec.Pathname, Symbol: s.Symbol})
		}
	}

	return patched, nil
}

func (r *Reconciler) logSkip(refreshID, pathname, reason string) {
	r.Log.SkipObject(refreshID, pathname, reason)
	if r.Trail != nil {
		r.Trail.Record(audit.Event{Kind: audit.Skipped, RefreshID: refreshID, Pathname: pathname, Detail: reason})
	}
}

func anyMatch(specs []*hookspec.Spec, pathname string) bool {
	for _, s := range specs {
		if s.Matches(pathname) {
			return true
		}
	}
	return false
}
