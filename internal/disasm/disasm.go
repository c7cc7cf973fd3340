// Package disasm decodes ARM64 machine code and splits it into basic blocks.
package disasm

import (
	"encoding/binary"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
)

// Inst is a decoded ARM64 instruction.
type Inst struct {
	Addr     uint64
	Raw      uint32
	Mnemonic string         // lower case; ".word" if undecodable
	Args     []arm64asm.Arg // decoded operands, nil if undecodable
}

// Options controls disassembly.
type Options struct {
	BaseAddr uint64 // VA of the first byte of data
	MaxSteps int    // maximum instructions to decode; 0 = 10M
}

const defaultMaxSteps = 10_000_000

func (o Options) effectiveMax() int {
	if o.MaxSteps > 0 {
		return o.MaxSteps
	}
	return defaultMaxSteps
}

// Disassemble decodes little-endian ARM64 instructions from data. Trailing
// bytes that do not form a whole instruction are ignored.
func Disassemble(data []byte, opts Options) []Inst {
	n := len(data) / 4
	if maxSteps := opts.effectiveMax(); n > maxSteps {
		n = maxSteps
	}

	result := make([]Inst, 0, n)
	for i := 0; i < n; i++ {
		off := i * 4
		result = append(result, Decode(data[off:off+4], opts.BaseAddr+uint64(off)))
	}
	return result
}

// Decode decodes the 4-byte instruction word at addr.
func Decode(word []byte, addr uint64) Inst {
	raw := binary.LittleEndian.Uint32(word)
	inst := Inst{Addr: addr, Raw: raw}

	dec, err := arm64asm.Decode(word)
	if err != nil {
		inst.Mnemonic = ".word"
		return inst
	}

	inst.Mnemonic = strings.ToLower(dec.Op.String())
	for _, a := range dec.Args {
		if a == nil {
			break
		}
		inst.Args = append(inst.Args, a)
	}
	return inst
}
