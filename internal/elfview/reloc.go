package elfview

// relEntrySize returns the on-disk size in bytes of one relocation entry for
// the given class and kind (REL has no addend, RELA does).
func relEntrySize(class Class, kind relEntryKind) int {
	switch {
	case class == Class64 && kind == relRela:
		return 24
	case class == Class64 && kind == relRel:
		return 16
	case class == Class32 && kind == relRela:
		return 12
	case class == Class32 && kind == relRel:
		return 8
	default:
		return 0
	}
}

// splitInfo extracts (symbol index, relocation type) out of r_info, whose
// packing differs between 32- and 64-bit ELF.
func splitInfo(class Class, info uint64) (symIdx uint64, relType uint32) {
	if class == Class64 {
		return info >> 32, uint32(info & 0xffffffff)
	}
	return info >> 8, uint32(info & 0xff)
}

// readRelEntry reads one relocation entry at addr, returning r_offset,
// r_info, and r_addend (zero for REL entries).
func (v *View) readRelEntry(addr uintptr, kind relEntryKind) (offset uint64, info uint64, addend int64, err error) {
	if v.Class == Class64 {
		offset, err = peekU64(addr)
		if err != nil {
			return
		}
		info, err = peekU64(addr + 8)
		if err != nil {
			return
		}
		if kind == relRela {
			var a uint64
			a, err = peekU64(addr + 16)
			addend = int64(a)
		}
		return
	}

	var off32, info32 uint32
	off32, err = peekU32(addr)
	if err != nil {
		return
	}
	info32, err = peekU32(addr + 4)
	if err != nil {
		return
	}
	offset = uint64(off32)
	info = uint64(info32)
	if kind == relRela {
		var a32 uint32
		a32, err = peekU32(addr + 8)
		addend = int64(int32(a32))
	}
	return
}
