// Package hookspec implements the hook registry: an append-only ordered
// sequence of hook specs, each binding a pathname regex to a symbol name and
// a replacement/out-original pair.
package hookspec

import (
	"regexp"
	"sync"
)

// Spec is one registered hook. Immutable after Register.
type Spec struct {
	PatternSrc  string
	Pattern     *regexp.Regexp
	Symbol      string
	Replacement uintptr
	// OldOut, if non-nil, is written with the prior target the first time
	// this spec is successfully applied to a matching object.
	OldOut *uintptr
}

// Matches reports whether pathname matches this spec's pattern.
func (s *Spec) Matches(pathname string) bool {
	return s.Pattern.MatchString(pathname)
}

// Registry holds the process-wide ordered sequence of hook specs.
// Registration is thread-safe and never triggers a refresh.
type Registry struct {
	mu    sync.Mutex
	specs []*Spec
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register compiles pattern with Go's regexp package (RE2 syntax, not
// POSIX ERE) and appends a new Spec
// to the tail of the registry. It returns ErrInvalidArg if any required
// argument is missing or the pattern fails to compile.
func (r *Registry) Register(pattern, symbol string, replacement uintptr, oldOut *uintptr) error {
	if pattern == "" || symbol == "" || replacement == 0 {
		return ErrInvalidArg
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return ErrInvalidArg
	}

	spec := &Spec{
		PatternSrc:  pattern,
		Pattern:     re,
		Symbol:      symbol,
		Replacement: replacement,
		OldOut:      oldOut,
	}

	r.mu.Lock()
	r.specs = append(r.specs, spec)
	r.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the current hook specs in insertion order, safe
// to iterate without holding the registry lock.
func (r *Registry) Snapshot() []*Spec {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len reports the number of registered specs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.specs)
}

// Clear drops every registered spec. Called only by xhook.Clear teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.specs = nil
	r.mu.Unlock()
}
