package elfview

import "debug/elf"

// arm64RelocTypes are the "absolute pointer" and "jump-slot" relocation
// types xgohook will retarget on ARM64.
var arm64RelocTypes = map[uint32]bool{
	uint32(elf.R_AARCH64_ABS64):     true, // absolute 64-bit symbol reference
	uint32(elf.R_AARCH64_GLOB_DAT):  true, // GOT entry for global data symbol
	uint32(elf.R_AARCH64_JUMP_SLOT): true, // PLT GOT entry for function call
}
