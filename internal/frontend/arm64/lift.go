// Package arm64 lifts ARM64 machine code into ir functions, one per symbol.
package arm64

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"

	"cfgdot/internal/disasm"
	"cfgdot/internal/ir"
)

// Lift decodes data loaded at base and lifts it as function name.
func Lift(name string, data []byte, base uint64) *ir.Function {
	insts := disasm.Disassemble(data, disasm.Options{BaseAddr: base})
	return LiftCFG(disasm.BuildCFG(name, insts))
}

// LiftCFG converts a block-split function. Blocks are named loc_<addr>.
// Registers become named values, immediates integer constants, in-function
// PC-relative targets block references, and memory operands constant
// expressions over base, index and offset. The last instruction of every
// block is the terminator, including plain fallthrough.
func LiftCFG(cfg disasm.FuncCFG) *ir.Function {
	fn := &ir.Function{Name: cfg.Name}
	byAddr := make(map[uint64]*ir.BasicBlock, len(cfg.Blocks))
	for _, b := range cfg.Blocks {
		bb := &ir.BasicBlock{Name: fmt.Sprintf("loc_%x", cfg.Insts[b.Start].Addr)}
		byAddr[cfg.Insts[b.Start].Addr] = bb
		fn.Blocks = append(fn.Blocks, bb)
	}

	l := lifter{blocks: byAddr, regs: make(map[string]*ir.Result)}
	for bi, b := range cfg.Blocks {
		bb := fn.Blocks[bi]
		for idx := b.Start; idx < b.End; idx++ {
			bb.Insts = append(bb.Insts, l.inst(cfg.Insts[idx]))
		}
		term := bb.Insts[len(bb.Insts)-1]
		term.Term = true
		for _, s := range b.Succs {
			term.Succs = append(term.Succs, fn.Blocks[s])
		}
	}
	return fn
}

type lifter struct {
	blocks map[uint64]*ir.BasicBlock
	regs   map[string]*ir.Result
}

func (l *lifter) inst(in disasm.Inst) *ir.Instruction {
	inst := &ir.Instruction{Op: in.Mnemonic}
	args := in.Args
	// B.cond carries its condition as the first argument.
	if len(args) > 0 {
		if c, ok := args[0].(arm64asm.Cond); ok {
			inst.Op += "." + strings.ToLower(c.String())
			args = args[1:]
		}
	}
	if in.Args == nil && in.Mnemonic == ".word" {
		inst.Operands = []ir.Value{ir.IntConst{V: int64(in.Raw)}}
		return inst
	}
	for _, a := range args {
		inst.Operands = append(inst.Operands, l.arg(in.Addr, a))
	}
	return inst
}

func (l *lifter) arg(pc uint64, a arm64asm.Arg) ir.Value {
	switch a := a.(type) {
	case arm64asm.Reg:
		return l.reg(a.String())
	case arm64asm.RegSP:
		return l.reg(a.String())
	case arm64asm.Imm:
		return ir.IntConst{V: int64(a.Imm)}
	case arm64asm.Imm64:
		return ir.IntConst{V: int64(a.Imm)}
	case arm64asm.PCRel:
		target := uint64(int64(pc) + int64(a))
		if bb, ok := l.blocks[target]; ok {
			return &ir.BlockRef{Block: bb}
		}
		return ir.IntConst{V: int64(target)}
	case arm64asm.MemImmediate:
		ops := []ir.Value{l.reg(a.Base.String())}
		if off, ok := memOffset(a.String()); ok {
			ops = append(ops, ir.IntConst{V: off})
		}
		return &ir.ConstExpr{Op: "mem", Operands: ops}
	case arm64asm.MemExtend:
		return &ir.ConstExpr{Op: "mem", Operands: []ir.Value{
			l.reg(a.Base.String()),
			l.reg(a.Index.String()),
		}}
	}
	return &ir.Result{Name: a.String()}
}

// reg returns the shared value for a register name.
func (l *lifter) reg(name string) *ir.Result {
	if r, ok := l.regs[name]; ok {
		return r
	}
	r := &ir.Result{Name: name}
	l.regs[name] = r
	return r
}

var memOffsetRe = regexp.MustCompile(`#(-?(?:0x[0-9a-fA-F]+|[0-9]+))`)

// memOffset extracts the immediate offset from a memory operand such as
// "[X0,#16]" or "[X1,#-0x8]!".
func memOffset(s string) (int64, bool) {
	m := memOffsetRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(m[1], 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
