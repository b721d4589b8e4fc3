package elfview

import "debug/elf"

// amd64RelocTypes are the "absolute pointer" and "jump-slot" relocation
// types xgohook will retarget on x86-64.
var amd64RelocTypes = map[uint32]bool{
	uint32(elf.R_X86_64_64):        true, // direct 64-bit
	uint32(elf.R_X86_64_GLOB_DAT):  true, // GOT entry for global data symbol
	uint32(elf.R_X86_64_JMP_SLOT):  true, // PLT GOT entry
}
