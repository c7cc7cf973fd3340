package disasm

import "sort"

// Block is a run of instructions with a single entry point.
type Block struct {
	ID    int
	Start int   // index into FuncCFG.Insts (inclusive)
	End   int   // index into FuncCFG.Insts (exclusive)
	Succs []int // block ids; taken target before fallthrough
}

// FuncCFG is the block structure of one function.
type FuncCFG struct {
	Name   string
	Blocks []Block
	Insts  []Inst
}

// BuildCFG splits a function's instruction stream into blocks.
//  1. Leaders: index 0, in-function branch targets, instructions after a
//     terminator.
//  2. Partition instructions by leader.
//  3. Successors from each block's last instruction.
func BuildCFG(name string, insts []Inst) FuncCFG {
	if len(insts) == 0 {
		return FuncCFG{Name: name, Insts: insts}
	}

	funcStart := insts[0].Addr
	funcEnd := insts[len(insts)-1].Addr + 4
	inFunc := func(addr uint64) bool { return addr >= funcStart && addr < funcEnd }

	addrToIdx := make(map[uint64]int, len(insts))
	for i, inst := range insts {
		addrToIdx[inst.Addr] = i
	}

	// Pass 1.
	leaders := map[int]bool{0: true}
	for i, inst := range insts {
		br := DecodeBranch(inst.Raw, inst.Addr)
		if br == nil {
			continue
		}
		if i+1 < len(insts) {
			leaders[i+1] = true
		}
		if !br.Ret && !br.Indirect && inFunc(br.Target) {
			if idx, ok := addrToIdx[br.Target]; ok {
				leaders[idx] = true
			}
		}
	}

	sorted := make([]int, 0, len(leaders))
	for idx := range leaders {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	// Pass 2.
	blocks := make([]Block, len(sorted))
	leaderToBlock := make(map[int]int, len(sorted))
	for i, start := range sorted {
		end := len(insts)
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		blocks[i] = Block{ID: i, Start: start, End: end}
		leaderToBlock[start] = i
	}

	// Pass 3.
	for i := range blocks {
		blk := &blocks[i]
		last := insts[blk.End-1]
		br := DecodeBranch(last.Raw, last.Addr)
		next, hasNext := leaderToBlock[blk.End]

		switch {
		case br == nil:
			if hasNext {
				blk.Succs = append(blk.Succs, next)
			}
		case br.Ret, br.Indirect:
			// No static successors.
		default:
			target := -1
			if idx, ok := addrToIdx[br.Target]; ok && inFunc(br.Target) {
				target = leaderToBlock[idx]
			}
			switch {
			case br.Cond && target >= 0 && hasNext:
				blk.Succs = append(blk.Succs, target, next)
			case br.Cond && hasNext:
				// Taken edge leaves the function.
				blk.Succs = append(blk.Succs, next)
			case target >= 0:
				blk.Succs = append(blk.Succs, target)
			}
		}
	}

	return FuncCFG{Name: name, Blocks: blocks, Insts: insts}
}
