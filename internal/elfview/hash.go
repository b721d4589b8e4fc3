package elfview

// lookupSymbol resolves symbolName to its dynamic symbol table index,
// preferring the GNU hash table when present, falling back to SysV hash
// preferring the GNU hash table when present.
func (v *View) lookupSymbol(symbolName string) (uint32, bool, error) {
	if v.gnuHash != 0 {
		idx, ok, err := v.lookupGNUHash(symbolName)
		if err != nil || ok {
			return idx, ok, err
		}
	}
	if v.sysvHash != 0 {
		return v.lookupSysVHash(symbolName)
	}
	return 0, false, nil
}

func gnuHashOf(name string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(name[i])
	}
	return h
}

func (v *View) lookupGNUHash(symbolName string) (uint32, bool, error) {
	nbuckets, err := peekU32(v.gnuHash)
	if err != nil {
		return 0, false, err
	}
	symoffset, err := peekU32(v.gnuHash + 4)
	if err != nil {
		return 0, false, err
	}
	bloomSize, err := peekU32(v.gnuHash + 8)
	if err != nil {
		return 0, false, err
	}
	bloomShift, err := peekU32(v.gnuHash + 12)
	if err != nil {
		return 0, false, err
	}

	wordBytes := uintptr(8)
	if v.Class == Class32 {
		wordBytes = 4
	}

	bloomBase := v.gnuHash + 16
	bucketsBase := bloomBase + uintptr(bloomSize)*wordBytes
	chainBase := bucketsBase + uintptr(nbuckets)*4

	if nbuckets == 0 {
		return 0, false, nil
	}

	h1 := gnuHashOf(symbolName)
	h2 := h1 >> bloomShift

	wordBits := uint32(64)
	if v.Class == Class32 {
		wordBits = 32
	}

	bloomIdx := (h1 / wordBits) % bloomSize
	var bloomWord uint64
	if v.Class == Class64 {
		bloomWord, err = peekU64(bloomBase + uintptr(bloomIdx)*wordBytes)
	} else {
		var w32 uint32
		w32, err = peekU32(bloomBase + uintptr(bloomIdx)*wordBytes)
		bloomWord = uint64(w32)
	}
	if err != nil {
		return 0, false, err
	}

	bit1 := (bloomWord >> (h1 % wordBits)) & 1
	bit2 := (bloomWord >> (h2 % wordBits)) & 1
	if bit1 == 0 || bit2 == 0 {
		return 0, false, nil
	}

	bucket, err := peekU32(bucketsBase + uintptr(h1%nbuckets)*4)
	if err != nil {
		return 0, false, err
	}
	if bucket == 0 {
		return 0, false, nil
	}
	if bucket < symoffset {
		return 0, false, nil
	}

	index := bucket
	for {
		chainHash, err := peekU32(chainBase + uintptr(index-symoffset)*4)
		if err != nil {
			return 0, false, err
		}

		if (chainHash | 1) == (h1 | 1) {
			name, err := v.symName(index)
			if err != nil {
				return 0, false, err
			}
			if name == symbolName {
				return index, true, nil
			}
		}

		if chainHash&1 != 0 {
			return 0, false, nil
		}
		index++
	}
}

func (v *View) lookupSysVHash(symbolName string) (uint32, bool, error) {
	nbucket, err := peekU32(v.sysvHash)
	if err != nil {
		return 0, false, err
	}
	nchain, err := peekU32(v.sysvHash + 4)
	if err != nil {
		return 0, false, err
	}
	if nbucket == 0 {
		return 0, false, nil
	}

	bucketsBase := v.sysvHash + 8
	chainBase := bucketsBase + uintptr(nbucket)*4

	h := elfSysVHash(symbolName)
	index, err := peekU32(bucketsBase + uintptr(h%nbucket)*4)
	if err != nil {
		return 0, false, err
	}

	for index != 0 {
		name, err := v.symName(index)
		if err != nil {
			return 0, false, err
		}
		if name == symbolName {
			return index, true, nil
		}
		if index >= nchain {
			return 0, false, nil
		}
		index, err = peekU32(chainBase + uintptr(index)*4)
		if err != nil {
			return 0, false, err
		}
	}

	return 0, false, nil
}

func elfSysVHash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = (h << 4) + uint32(name[i])
		g := h & 0xf0000000
		if g != 0 {
			h ^= g >> 24
		}
		h &^= g
	}
	return h
}

// symName reads the name of the dynamic symbol table entry at index.
func (v *View) symName(index uint32) (string, error) {
	var nameOff uint32
	var err error

	if v.Class == Class64 {
		// Elf64_Sym: st_name(4) st_info(1) st_other(1) st_shndx(2) st_value(8) st_size(8)
		entryAddr := v.symtab + uintptr(index)*24
		nameOff, err = peekU32(entryAddr)
	} else {
		// Elf32_Sym: st_name(4) st_value(4) st_size(4) st_info(1) st_other(1) st_shndx(2)
		entryAddr := v.symtab + uintptr(index)*16
		nameOff, err = peekU32(entryAddr)
	}
	if err != nil {
		return "", err
	}

	return peekCString(v.strtab+uintptr(nameOff), int(v.strtabSz))
}
