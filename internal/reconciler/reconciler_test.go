package reconciler

import (
	"io"
	"strings"
	"testing"

	"github.com/zboralski/xgohook/internal/hookspec"
)

const fakeMapsV1 = `` +
	"10000000-10001000 r--p 00000000 00:00 0 /fake/libtarget.so\n" +
	"10001000-10002000 r-xp 00001000 00:00 0 /fake/libtarget.so\n" +
	"20000000-20001000 r--p 00000000 00:00 0 /fake/libother.so\n"

// fakeView is an ElfView test double that records every Hook call and
// returns a fixed old value.
type fakeView struct {
	hooks []string
	old   uintptr
	err   error
}

func (f *fakeView) Hook(symbolName string, newFn uintptr, patch PatchFunc) (uintptr, error) {
	f.hooks = append(f.hooks, symbolName)
	if f.err != nil {
		return 0, f.err
	}
	return f.old, nil
}

func newTestReconciler(mapsText string, opener ElfOpener) (*Reconciler, *hookspec.Registry) {
	registry := hookspec.New()
	r := New(registry)
	r.MapsSource = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(mapsText)), nil
	}
	r.CheckHeader = func(uintptr) error { return nil }
	r.Open = opener
	return r, registry
}

func TestRunHooksNewlySeenObject(t *testing.T) {
	view := &fakeView{old: 0xfeed}
	opener := func(baseAddr uintptr, pathname string) (ElfView, error) { return view, nil }

	r, registry := newTestReconciler(fakeMapsV1, opener)
	_ = registry.Register(`libtarget\.so`, "mmap", 0x1234, nil)

	if err := r.Run("r1"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(view.hooks) != 1 || view.hooks[0] != "mmap" {
		t.Fatalf("got hooks %v, want one call to mmap", view.hooks)
	}
	if len(r.known) != 1 {
		t.Fatalf("got %d known objects, want 1", len(r.known))
	}
}

func TestRunOnlyHooksFirstDuplicateMapping(t *testing.T) {
	dup := "" +
		"10000000-10001000 r--p 00000000 00:00 0 /fake/libtarget.so\n" +
		"30000000-30001000 r--p 00000000 00:00 0 /fake/libtarget.so\n"

	opens := 0
	opener := func(baseAddr uintptr, pathname string) (ElfView, error) {
		opens++
		return &fakeView{old: 1}, nil
	}

	r, registry := newTestReconciler(dup, opener)
	_ = registry.Register(`libtarget\.so`, "mmap", 0x1234, nil)

	if err := r.Run("r1"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if opens != 1 {
		t.Fatalf("got %d Open calls, want 1 (first mapping wins)", opens)
	}
	if r.known["/fake/libtarget.so"].BaseAddr != 0x10000000 {
		t.Fatalf("got base %#x, want first mapping's base", r.known["/fake/libtarget.so"].BaseAddr)
	}
}

func TestRunDropsUnseenObjects(t *testing.T) {
	opener := func(baseAddr uintptr, pathname string) (ElfView, error) { return &fakeView{old: 1}, nil }

	r, registry := newTestReconciler(fakeMapsV1, opener)
	_ = registry.Register(`libtarget\.so`, "mmap", 0x1234, nil)

	if err := r.Run("r1"); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, ok := r.known["/fake/libtarget.so"]; !ok {
		t.Fatalf("expected libtarget.so to be known after first sweep")
	}

	r.MapsSource = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("20000000-20001000 r--p 00000000 00:00 0 /fake/libother.so\n")), nil
	}
	if err := r.Run("r2"); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if _, ok := r.known["/fake/libtarget.so"]; ok {
		t.Fatalf("expected libtarget.so to be dropped after it left the mapping report")
	}
}

func TestRunSkipsUnmatchedMappings(t *testing.T) {
	opens := 0
	opener := func(baseAddr uintptr, pathname string) (ElfView, error) {
		opens++
		return &fakeView{old: 1}, nil
	}

	r, registry := newTestReconciler(fakeMapsV1, opener)
	_ = registry.Register(`nothing_matches_this\.so`, "mmap", 0x1234, nil)

	if err := r.Run("r1"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if opens != 0 {
		t.Fatalf("got %d Open calls, want 0 for an unmatched registry", opens)
	}
}

func TestRunRehooksOnBaseAddrChange(t *testing.T) {
	view := &fakeView{old: 1}
	opener := func(baseAddr uintptr, pathname string) (ElfView, error) { return view, nil }

	r, registry := newTestReconciler(fakeMapsV1, opener)
	_ = registry.Register(`libtarget\.so`, "mmap", 0x1234, nil)

	if err := r.Run("r1"); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if len(view.hooks) != 1 {
		t.Fatalf("got %d hooks after first run, want 1", len(view.hooks))
	}

	relocated := "40000000-40001000 r--p 00000000 00:00 0 /fake/libtarget.so\n"
	r.MapsSource = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(relocated)), nil
	}
	if err := r.Run("r2"); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if len(view.hooks) != 2 {
		t.Fatalf("got %d hooks after relocation, want 2 (re-hooked)", len(view.hooks))
	}
	if r.known["/fake/libtarget.so"].BaseAddr != 0x40000000 {
		t.Fatalf("got base %#x, want relocated base", r.known["/fake/libtarget.so"].BaseAddr)
	}
}
