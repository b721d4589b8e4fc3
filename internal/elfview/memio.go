package elfview

import (
	"fmt"
	"unsafe"

	"github.com/zboralski/xgohook/internal/probeguard"
)

// peek reads n bytes starting at addr directly out of the process's own
// address space. There is no file behind this: the ELF Reader parses the
// mapped image in place, the way the original library reads a loaded
// object's headers by pointer rather than by re-opening its path.
//
// Every call is routed through probeguard.Probe so a read that lands on an
// unmapped or since-munmapped page surfaces as an error instead of a crash.
func peek(addr uintptr, n int) ([]byte, error) {
	if addr == 0 || n <= 0 {
		return nil, fmt.Errorf("elfview: invalid peek range addr=%#x n=%d", addr, n)
	}

	out := make([]byte, n)
	err := probeguard.Probe(func() error {
		src := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n) //nolint:govet
		copy(out, src)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("elfview: peek addr=%#x n=%d: %w", addr, n, err)
	}
	return out, nil
}

func peekU8(addr uintptr) (uint8, error) {
	b, err := peek(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func peekU16(addr uintptr) (uint16, error) {
	b, err := peek(addr, 2)
	if err != nil {
		return 0, err
	}
	return le.Uint16(b), nil
}

func peekU32(addr uintptr) (uint32, error) {
	b, err := peek(addr, 4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

func peekU64(addr uintptr) (uint64, error) {
	b, err := peek(addr, 8)
	if err != nil {
		return 0, err
	}
	return le.Uint64(b), nil
}

// peekCString reads a NUL-terminated string at addr, bounded by maxLen.
func peekCString(addr uintptr, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = 4096
	}
	var out []byte
	err := probeguard.Probe(func() error {
		for i := 0; i < maxLen; i++ {
			p := (*byte)(unsafe.Pointer(addr + uintptr(i))) //nolint:govet
			b := *p
			if b == 0 {
				return nil
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("elfview: peekCString addr=%#x: %w", addr, err)
	}
	return string(out), nil
}
