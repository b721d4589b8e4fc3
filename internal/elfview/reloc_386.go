package elfview

import "debug/elf"

// i386RelocTypes are the "absolute pointer" and "jump-slot" relocation
// types xgohook will retarget on 32-bit x86.
var i386RelocTypes = map[uint32]bool{
	uint32(elf.R_386_32):       true, // direct 32-bit
	uint32(elf.R_386_GLOB_DAT): true, // GOT entry for global data symbol
	uint32(elf.R_386_JMP_SLOT): true, // PLT GOT entry
}
