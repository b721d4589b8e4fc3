package elfview

import "debug/elf"

// armRelocTypes are the "absolute pointer" and "jump-slot" relocation types
// xgohook will retarget on 32-bit ARM.
var armRelocTypes = map[uint32]bool{
	uint32(elf.R_ARM_ABS32):     true, // direct 32-bit
	uint32(elf.R_ARM_GLOB_DAT):  true, // GOT entry for global data symbol
	uint32(elf.R_ARM_JUMP_SLOT): true, // PLT GOT entry
}

// acceptedRelocTypes returns the architecture-specific relocation type table
// for machine, or nil if xgohook doesn't support that architecture.
func acceptedRelocTypes(machine elf.Machine) map[uint32]bool {
	switch machine {
	case elf.EM_X86_64:
		return amd64RelocTypes
	case elf.EM_386:
		return i386RelocTypes
	case elf.EM_AARCH64:
		return arm64RelocTypes
	case elf.EM_ARM:
		return armRelocTypes
	default:
		return nil
	}
}
