package patcher

import (
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapPage maps one fresh read-only page for Patch to operate on, the way
// a GOT page would be mapped by the loader before any hook runs.
func mmapPage(t *testing.T) (uintptr, func()) {
	t.Helper()

	data, err := unix.Mmap(-1, 0, int(pageSize), unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		t.Fatalf("mmap: %v", err)
	}

	addr := uintptr(unsafe.Pointer(&data[0]))
	return addr, func() { _ = unix.Munmap(data) }
}

func TestPatchWritesAndRestoresProtection(t *testing.T) {
	addr, cleanup := mmapPage(t)
	defer cleanup()

	old, err := Patch(addr, 0xdeadbeef)
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if old != 0 {
		t.Fatalf("expected prior value 0 on a fresh page, got %#x", old)
	}

	got := *(*uintptr)(unsafe.Pointer(addr)) //nolint:govet
	if got != 0xdeadbeef {
		t.Fatalf("got %#x after patch, want 0xdeadbeef", got)
	}

	prot, _ := queryProtection(addr &^ (pageSize - 1))
	if prot&unix.PROT_WRITE != 0 {
		t.Fatalf("expected page protection restored to non-writable, got prot=%d", prot)
	}
}

func TestPatchIsIdempotent(t *testing.T) {
	addr, cleanup := mmapPage(t)
	defer cleanup()

	if _, err := Patch(addr, 0x1234); err != nil {
		t.Fatalf("first Patch: %v", err)
	}

	old, err := Patch(addr, 0x1234)
	if err != nil {
		t.Fatalf("second Patch: %v", err)
	}
	if old != 0x1234 {
		t.Fatalf("expected idempotent Patch to report 0x1234 unchanged, got %#x", old)
	}
}

func TestPatchRejectsUnalignedAddr(t *testing.T) {
	addr, cleanup := mmapPage(t)
	defer cleanup()

	if _, err := Patch(addr+1, 0x1234); err == nil {
		t.Fatalf("expected error patching an unaligned address")
	}
}

func TestPatchAcceptsLastAlignedSlotInPage(t *testing.T) {
	// Since pageSize is always a multiple of ptrSize, the last
	// pointer-aligned slot in a page never straddles into the next one;
	// the straddle check in Patch exists only for a malformed address
	// that also fails the alignment check first. This exercises that
	// boundary slot to confirm it patches cleanly.
	addr, cleanup := mmapPage(t)
	defer cleanup()

	lastSlot := addr + pageSize - ptrSize

	if _, err := Patch(lastSlot, 0x1234); err != nil {
		t.Fatalf("Patch at last aligned slot: %v", err)
	}
}
