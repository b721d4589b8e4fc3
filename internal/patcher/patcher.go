// Package patcher implements the relocation patcher: given a target virtual
// address inside a loaded object's GOT-like region and a new pointer value,
// it makes the page writable, performs an aligned pointer-sized store,
// restores protection, and flushes the instruction cache for the affected
// range.
package patcher

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

var (
	mu       sync.Mutex
	pageSize = uintptr(os.Getpagesize())
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// Patch overwrites the pointer-sized slot at addr with newValue and returns
// the value that was there beforehand. Patch is safe to call with the
// refresh lock held. It is not allocation-free: looking up the page's
// current protection opens and parses /proc/self/maps.
//
// A store that would straddle a page boundary is rejected rather than
// handled across two mprotect spans; GOT slots are always pointer-aligned
// by the linker, so this only fires on a malformed or deliberately hostile
// target address.
func Patch(addr uintptr, newValue uintptr) (uintptr, error) {
	if addr%ptrSize != 0 {
		return 0, fmt.Errorf("patcher: addr %#x is not pointer-aligned", addr)
	}

	pageStart := addr &^ (pageSize - 1)
	if pageStart != (addr+ptrSize-1)&^(pageSize-1) {
		return 0, fmt.Errorf("patcher: store at %#x straddles a page boundary", addr)
	}

	mu.Lock()
	defer mu.Unlock()

	restore, err := ensureWritable(pageStart, pageSize)
	if err != nil {
		return 0, fmt.Errorf("patcher: mprotect writable: %w", err)
	}
	defer func() {
		if restore != nil {
			_ = restore()
		}
	}()

	ptr := (*uintptr)(unsafe.Pointer(addr)) //nolint:govet
	old := atomic.LoadUintptr(ptr)

	if old == newValue {
		// Idempotent: already patched, no write needed.
		return old, nil
	}

	atomic.StoreUintptr(ptr, newValue)
	flushICache(addr, ptrSize)

	return old, nil
}

// ensureWritable adds PROT_WRITE to the page at pageStart if it isn't
// already writable, returning a function that restores the original
// protection. perms for the page are queried from /proc/self/maps since
// there is no direct mprotect-query syscall on Linux; when that lookup
// fails, ensureWritable conservatively assumes read+exec and restores
// read+exec afterward rather than leaving the page writable.
func ensureWritable(pageStart, size uintptr) (func() error, error) {
	prevProt, writable := queryProtection(pageStart)
	if writable {
		return func() error { return nil }, nil
	}

	if err := unix.Mprotect(pageBytes(pageStart, size), prevProt|unix.PROT_WRITE); err != nil {
		return nil, err
	}

	return func() error {
		return unix.Mprotect(pageBytes(pageStart, size), prevProt)
	}, nil
}

// pageBytes builds the byte-slice view mprotect's Go binding expects,
// without copying or allocating the underlying memory.
func pageBytes(addr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size)) //nolint:govet
}
