// Package ir is the host-independent function IR consumed by the CFG printer.
// Frontends (Go SSA, ARM64, JSONL) lower their own representation into it.
package ir

import (
	"errors"
	"fmt"
)

// Function is an ordered sequence of basic blocks. Blocks[0] is the entry.
type Function struct {
	Name   string
	Blocks []*BasicBlock
}

// BasicBlock is a straight-line sequence of instructions ending in a terminator.
// Name may be empty until the printer assigns one.
type BasicBlock struct {
	Name  string
	Insts []*Instruction
}

func (b *BasicBlock) ValueName() string     { return b.Name }
func (b *BasicBlock) SetValueName(s string) { b.Name = s }

// Terminator returns the block's last instruction if it is a terminator.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.Insts) == 0 {
		return nil
	}
	if last := b.Insts[len(b.Insts)-1]; last.Term {
		return last
	}
	return nil
}

// Instruction is one IR instruction.
type Instruction struct {
	Op       string
	Operands []Value
	Result   Value // nil if the instruction produces no value
	Term     bool
	Succs    []*BasicBlock // only for terminators; T first, F second for two-way branches
}

// HasValue reports whether the instruction produces a value.
func (i *Instruction) HasValue() bool { return i.Result != nil }

var (
	ErrNoName        = errors.New("ir: function has no name")
	ErrNoBlocks      = errors.New("ir: function has no blocks")
	ErrSuccNotTerm   = errors.New("ir: successors on non-terminator")
	ErrForeignSucc   = errors.New("ir: successor not in function")
	ErrResultNotName = errors.New("ir: instruction result is not nameable")
	ErrTermNotLast   = errors.New("ir: terminator is not the last instruction")
	ErrDupBlockName  = errors.New("ir: duplicate block name")
)

// Validate checks the structural invariants the printer relies on.
// It does not check for cycles through constant or phi operands.
func (f *Function) Validate() error {
	if f.Name == "" {
		return ErrNoName
	}
	if len(f.Blocks) == 0 {
		return fmt.Errorf("%w: %s", ErrNoBlocks, f.Name)
	}
	own := make(map[*BasicBlock]bool, len(f.Blocks))
	names := make(map[string]bool, len(f.Blocks))
	for bi, b := range f.Blocks {
		own[b] = true
		if b.Name == "" {
			continue
		}
		if names[b.Name] {
			return fmt.Errorf("%w: %s block %d (%s)", ErrDupBlockName, f.Name, bi, b.Name)
		}
		names[b.Name] = true
	}
	for bi, b := range f.Blocks {
		term := b.Terminator()
		for ii, inst := range b.Insts {
			if inst.Term && inst != term {
				return fmt.Errorf("%w: %s block %d inst %d (%s)", ErrTermNotLast, f.Name, bi, ii, inst.Op)
			}
			if !inst.Term && len(inst.Succs) > 0 {
				return fmt.Errorf("%w: %s block %d inst %d (%s)", ErrSuccNotTerm, f.Name, bi, ii, inst.Op)
			}
			for _, s := range inst.Succs {
				if !own[s] {
					return fmt.Errorf("%w: %s block %d inst %d (%s)", ErrForeignSucc, f.Name, bi, ii, inst.Op)
				}
			}
			if inst.Result != nil {
				if _, ok := inst.Result.(Named); !ok {
					return fmt.Errorf("%w: %s block %d inst %d (%s)", ErrResultNotName, f.Name, bi, ii, inst.Op)
				}
			}
		}
	}
	return nil
}
