package patcher

import (
	"golang.org/x/sys/unix"

	"github.com/zboralski/xgohook/internal/maps"
)

// queryProtection looks up the current protection of the page containing
// addr by scanning /proc/self/maps, since Linux has no direct "query
// mprotect state" syscall. It returns the PROT_* bitmask to restore and
// whether the page is already writable.
func queryProtection(addr uintptr) (prot int, writable bool) {
	f, err := maps.Self()
	if err != nil {
		// Conservative fallback: assume read+exec, matches a typical GOT
		// page's protection before patching.
		return unix.PROT_READ | unix.PROT_EXEC, false
	}
	defer f.Close()

	for _, m := range maps.Parse(f) {
		if addr < m.Start || addr >= m.End {
			continue
		}
		p := 0
		if len(m.Perms) == 4 {
			if m.Perms[0] == 'r' {
				p |= unix.PROT_READ
			}
			if m.Perms[1] == 'w' {
				p |= unix.PROT_WRITE
			}
			if m.Perms[2] == 'x' {
				p |= unix.PROT_EXEC
			}
		}
		return p, p&unix.PROT_WRITE != 0
	}

	return unix.PROT_READ | unix.PROT_EXEC, false
}
