package disasm

// ARM64 branch detection from the raw 32-bit encoding. These identify basic
// block terminators and extract PC-relative targets.

// Branch describes a decoded block-terminating instruction.
type Branch struct {
	Target   uint64 // absolute target for PC-relative forms
	Cond     bool   // has a fallthrough edge
	Ret      bool   // RET
	Indirect bool   // BR Xn: target unknown statically
}

// branchForm is one PC-relative branch encoding.
type branchForm struct {
	mask, bits uint32
	shift      uint // position of the immediate
	width      int  // immediate width in bits
	cond       bool
}

var branchForms = []branchForm{
	{0xFC000000, 0x14000000, 0, 26, false}, // B
	{0xFF000010, 0x54000000, 5, 19, true},  // B.cond
	{0x7F000000, 0x34000000, 5, 19, true},  // CBZ
	{0x7F000000, 0x35000000, 5, 19, true},  // CBNZ
	{0x7F000000, 0x36000000, 5, 14, true},  // TBZ
	{0x7F000000, 0x37000000, 5, 14, true},  // TBNZ
}

// DecodeBranch decodes a terminator at pc. It returns nil for any other
// instruction, including BL/BLR which return to the next instruction.
func DecodeBranch(raw uint32, pc uint64) *Branch {
	// RET {Xn}
	if raw&0xFFFFFC1F == 0xD65F0000 {
		return &Branch{Ret: true}
	}
	// BR Xn
	if raw&0xFFFFFC1F == 0xD61F0000 {
		return &Branch{Indirect: true}
	}
	for _, f := range branchForms {
		if raw&f.mask != f.bits {
			continue
		}
		imm := (raw >> f.shift) & (1<<f.width - 1)
		offset := int64(signExtend(imm, f.width)) * 4
		return &Branch{Target: uint64(int64(pc) + offset), Cond: f.cond}
	}
	return nil
}

// signExtend sign-extends the low bits of val to int32.
func signExtend(val uint32, bits int) int32 {
	sign := uint32(1) << (bits - 1)
	mask := sign - 1
	if val&sign != 0 {
		return int32(val | ^mask)
	}
	return int32(val & mask)
}
