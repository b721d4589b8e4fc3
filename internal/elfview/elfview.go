// Package elfview implements the ELF Reader: given an in-memory base
// address and a pathname for a loaded shared object, it locates the dynamic
// symbol and relocation tables and exposes a symbol-to-relocation-slot hook
// operation. All parsing happens directly against the live mapped image;
// nothing here ever opens the file on disk.
package elfview

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
)

var le = binary.LittleEndian

// Class identifies 32- vs 64-bit ELF.
type Class int

const (
	Class32 Class = 1
	Class64 Class = 2
)

// ErrSymbolNotFound is returned by Hook when the requested symbol is absent
// from both hash tables; this is a no-op, not a failure, for the object
// as a whole.
var ErrSymbolNotFound = errors.New("elfview: symbol not found")

// PatchFunc performs a single relocation-slot store, as patcher.Patch does.
// Hook takes this as a parameter rather than importing the patcher package
// directly so the reader and the patcher stay independently testable.
type PatchFunc func(addr uintptr, newVal uintptr) (uintptr, error)

// View is a parsed, hookable ELF image for one loaded object.
type View struct {
	BaseAddr uintptr
	Pathname string
	Class    Class
	Machine  elf.Machine
	Bias     uintptr

	dynSegAddr uintptr // runtime address of the PT_DYNAMIC segment

	symtab    uintptr // runtime address of DT_SYMTAB
	strtab    uintptr // runtime address of DT_STRTAB
	strtabSz  uint64
	gnuHash   uintptr // runtime address of DT_GNU_HASH, 0 if absent
	sysvHash  uintptr // runtime address of DT_HASH, 0 if absent

	pltRelType relEntryKind
	pltRel     uintptr
	pltRelSz   uint64

	dynRelType relEntryKind
	dynRel     uintptr
	dynRelSz   uint64

	relocTable map[uint32]bool // accepted "absolute pointer"/"jump-slot" types for Machine

	usable bool
}

type relEntryKind int

const (
	relNone relEntryKind = iota
	relRel               // Elf_Rel: no addend
	relRela              // Elf_Rela: has addend
)

// New validates the ELF header at baseAddr and parses enough of the dynamic
// section to support Hook. A non-nil error means the View is unusable;
// subsequent Hook calls on an unusable View fail fast without touching
// memory again.
func New(baseAddr uintptr, pathname string) (*View, error) {
	v := &View{BaseAddr: baseAddr, Pathname: pathname}

	if err := v.parseHeader(); err != nil {
		return nil, err
	}
	if err := v.parseDynamic(); err != nil {
		return nil, err
	}

	v.relocTable = acceptedRelocTypes(v.Machine)
	if v.relocTable == nil {
		return nil, fmt.Errorf("elfview: unsupported machine %v", v.Machine)
	}

	v.usable = true
	return v, nil
}

// CheckHeader validates the ELF magic/class/encoding/type at baseAddr and
// checks that the program headers include a PT_LOAD and a PT_DYNAMIC
// segment, without touching the dynamic section itself. The reconciler uses this as its
// late, cheap sanity check before committing to a full View parse.
func CheckHeader(baseAddr uintptr) error {
	v := &View{BaseAddr: baseAddr}
	return v.parseHeader()
}

// Hook retargets every matching PLT/general relocation slot for symbolName
// in this object to newFn, returning the value previously active at the
// first slot patched. If the symbol isn't present in either hash table this
// is a no-op for the object and returns ErrSymbolNotFound.
func (v *View) Hook(symbolName string, newFn uintptr, patch PatchFunc) (oldFn uintptr, err error) {
	if !v.usable {
		return 0, fmt.Errorf("elfview: view for %s is unusable", v.Pathname)
	}

	symIdx, ok, err := v.lookupSymbol(symbolName)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrSymbolNotFound
	}

	patched := false

	apply := func(relAddr uintptr, relSz uint64, kind relEntryKind) error {
		if relAddr == 0 || relSz == 0 {
			return nil
		}
		entrySize := relEntrySize(v.Class, kind)
		if entrySize == 0 {
			return nil
		}
		count := int(relSz / uint64(entrySize))
		for i := 0; i < count; i++ {
			entryAddr := relAddr + uintptr(i*entrySize)
			offset, info, _, err := v.readRelEntry(entryAddr, kind)
			if err != nil {
				return err
			}
			idx, relType := splitInfo(v.Class, info)
			if idx != uint64(symIdx) {
				continue
			}
			if !v.relocTable[relType] {
				continue
			}
			target := v.Bias + uintptr(offset)
			old, err := patch(target, newFn)
			if err != nil {
				return err
			}
			if !patched {
				oldFn = old
				patched = true
			}
		}
		return nil
	}

	if err := apply(v.pltRel, v.pltRelSz, v.pltRelType); err != nil {
		return 0, err
	}
	if err := apply(v.dynRel, v.dynRelSz, v.dynRelType); err != nil {
		return 0, err
	}

	if !patched {
		return 0, ErrSymbolNotFound
	}
	return oldFn, nil
}
