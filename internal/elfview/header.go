package elfview

import (
	"debug/elf"
	"fmt"
)

const (
	ei_class = 4
	ei_data  = 5
	elfMagic = "\x7fELF"
)

// parseHeader validates the ELF header and locates the PT_LOAD (offset 0)
// and PT_DYNAMIC segments, computing the load bias from the first
// loadable segment's p_vaddr.
func (v *View) parseHeader() error {
	ident, err := peek(v.BaseAddr, 16)
	if err != nil {
		return fmt.Errorf("elfview: read e_ident: %w", err)
	}
	if string(ident[:4]) != elfMagic {
		return fmt.Errorf("elfview: bad magic at %#x", v.BaseAddr)
	}

	switch ident[ei_class] {
	case byte(elf.ELFCLASS32):
		v.Class = Class32
	case byte(elf.ELFCLASS64):
		v.Class = Class64
	default:
		return fmt.Errorf("elfview: unsupported ELF class %d", ident[ei_class])
	}

	if ident[ei_data] != byte(elf.ELFDATA2LSB) {
		return fmt.Errorf("elfview: unsupported data encoding %d (only little-endian supported)", ident[ei_data])
	}

	etype, err := peekU16(v.BaseAddr + 16)
	if err != nil {
		return err
	}
	if elf.Type(etype) != elf.ET_DYN && elf.Type(etype) != elf.ET_EXEC {
		return fmt.Errorf("elfview: unsupported e_type %d", etype)
	}

	machine, err := peekU16(v.BaseAddr + 18)
	if err != nil {
		return err
	}
	v.Machine = elf.Machine(machine)

	var phoff uint64
	var phentsize, phnum uint16
	if v.Class == Class64 {
		phoff, err = peekU64(v.BaseAddr + 32)
		if err != nil {
			return err
		}
		phentsize, err = peekU16(v.BaseAddr + 54)
		if err != nil {
			return err
		}
		phnum, err = peekU16(v.BaseAddr + 56)
		if err != nil {
			return err
		}
	} else {
		off32, err2 := peekU32(v.BaseAddr + 28)
		if err2 != nil {
			return err2
		}
		phoff = uint64(off32)
		phentsize, err = peekU16(v.BaseAddr + 42)
		if err != nil {
			return err
		}
		phnum, err = peekU16(v.BaseAddr + 44)
		if err != nil {
			return err
		}
	}

	var firstLoadVAddr uint64
	haveFirstLoad := false
	var dynVAddr uint64
	haveDyn := false

	for i := 0; i < int(phnum); i++ {
		phAddr := v.BaseAddr + uintptr(phoff) + uintptr(i)*uintptr(phentsize)

		ptype, err := peekU32(phAddr)
		if err != nil {
			return err
		}

		var vaddr uint64
		switch elf.ProgType(ptype) {
		case elf.PT_LOAD:
			if v.Class == Class64 {
				vaddr, err = peekU64(phAddr + 16)
			} else {
				var v32 uint32
				v32, err = peekU32(phAddr + 8)
				vaddr = uint64(v32)
			}
			if err != nil {
				return err
			}
			if !haveFirstLoad {
				firstLoadVAddr = vaddr
				haveFirstLoad = true
			}
		case elf.PT_DYNAMIC:
			if v.Class == Class64 {
				vaddr, err = peekU64(phAddr + 16)
			} else {
				var v32 uint32
				v32, err = peekU32(phAddr + 8)
				vaddr = uint64(v32)
			}
			if err != nil {
				return err
			}
			dynVAddr = vaddr
			haveDyn = true
		}
	}

	if !haveFirstLoad {
		return fmt.Errorf("elfview: no PT_LOAD segment")
	}
	if !haveDyn {
		return fmt.Errorf("elfview: no PT_DYNAMIC segment")
	}

	if firstLoadVAddr != 0 {
		v.Bias = v.BaseAddr - uintptr(firstLoadVAddr)
	} else {
		v.Bias = v.BaseAddr
	}

	v.dynSegAddr = uintptr(dynVAddr) + v.Bias
	return nil
}
