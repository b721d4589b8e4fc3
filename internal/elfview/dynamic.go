package elfview

import (
	"debug/elf"
	"fmt"
)

// dtGNUHash is DT_GNU_HASH. Older debug/elf builds may lack the named
// constant, so it's hardcoded here rather than relied on from the package.
const dtGNUHash = 0x6ffffef5

// parseDynamic walks PT_DYNAMIC and extracts pointers (adjusted by load
// bias) to the dynamic symbol/string tables, the SysV and/or GNU hash
// tables, and the PLT/general relocation tables, and detects REL vs RELA.
func (v *View) parseDynamic() error {
	entrySize := 16
	if v.Class == Class32 {
		entrySize = 8
	}

	var pltRelSz uint64
	var pltRelType elf.DynTag // DT_REL or DT_RELA

	for i := 0; ; i++ {
		entryAddr := v.dynSegAddr + uintptr(i*entrySize)

		var tag int64
		var val uint64
		var err error

		if v.Class == Class64 {
			raw, e := peekU64(entryAddr)
			if e != nil {
				return e
			}
			tag = int64(raw)
			val, err = peekU64(entryAddr + 8)
		} else {
			raw, e := peekU32(entryAddr)
			if e != nil {
				return e
			}
			tag = int64(int32(raw))
			var v32 uint32
			v32, err = peekU32(entryAddr + 4)
			val = uint64(v32)
		}
		if err != nil {
			return err
		}

		if elf.DynTag(tag) == elf.DT_NULL {
			break
		}

		switch elf.DynTag(tag) {
		case elf.DT_SYMTAB:
			v.symtab = uintptr(val) + v.Bias
		case elf.DT_STRTAB:
			v.strtab = uintptr(val) + v.Bias
		case elf.DT_STRSZ:
			v.strtabSz = val
		case elf.DT_HASH:
			v.sysvHash = uintptr(val) + v.Bias
		case elf.DynTag(dtGNUHash):
			v.gnuHash = uintptr(val) + v.Bias
		case elf.DT_JMPREL:
			v.pltRel = uintptr(val) + v.Bias
		case elf.DT_PLTRELSZ:
			pltRelSz = val
		case elf.DT_PLTREL:
			pltRelType = elf.DynTag(val)
		case elf.DT_RELA:
			v.dynRel = uintptr(val) + v.Bias
			v.dynRelType = relRela
		case elf.DT_RELASZ:
			v.dynRelSz = val
		case elf.DT_REL:
			v.dynRel = uintptr(val) + v.Bias
			if v.dynRelType == relNone {
				v.dynRelType = relRel
			}
		case elf.DT_RELSZ:
			v.dynRelSz = val
		}

		// Safety valve: PT_DYNAMIC is bounded in practice; a runaway walk
		// past a sane entry count means the table is malformed.
		if i > 1<<16 {
			return fmt.Errorf("elfview: PT_DYNAMIC walk exceeded sanity bound")
		}
	}

	v.pltRelSz = pltRelSz
	switch pltRelType {
	case elf.DT_RELA:
		v.pltRelType = relRela
	case elf.DT_REL:
		v.pltRelType = relRel
	default:
		v.pltRelType = relNone
	}

	if v.symtab == 0 || v.strtab == 0 {
		return fmt.Errorf("elfview: missing DT_SYMTAB/DT_STRTAB")
	}
	if v.gnuHash == 0 && v.sysvHash == 0 {
		return fmt.Errorf("elfview: missing DT_HASH/DT_GNU_HASH")
	}

	return nil
}
