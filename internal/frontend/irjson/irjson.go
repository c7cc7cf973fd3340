// Package irjson reads functions from JSONL, one function object per line.
//
//	{"name":"f","blocks":[
//	  {"id":"entry","name":"entry","insts":[
//	    {"op":"icmp","result":{"id":"c"},"operands":[{"kind":"ref","name":"x"},{"kind":"int","value":0}]},
//	    {"op":"br","term":true,"succs":["a","b"],"operands":[{"kind":"ref","id":"c"},{"kind":"block","id":"a"},{"kind":"block","id":"b"}]}]},
//	  ...]}
//
// Blocks and results are linked by "id"; "name" is the display name and may
// be omitted, in which case the printer assigns one. Value kinds: ref, block,
// int, expr, aggregate, phi. An instruction with op "phi" yields a phi value.
package irjson

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"cfgdot/internal/ir"
)

var (
	ErrUnknownKind  = errors.New("irjson: unknown value kind")
	ErrUnknownBlock = errors.New("irjson: unknown block id")
	ErrDuplicateID  = errors.New("irjson: duplicate id")
)

// FuncRecord is one line of input.
type FuncRecord struct {
	Name   string        `json:"name"`
	Blocks []BlockRecord `json:"blocks"`
}

// BlockRecord is one basic block.
type BlockRecord struct {
	ID    string       `json:"id"`
	Name  string       `json:"name,omitempty"`
	Insts []InstRecord `json:"insts"`
}

// InstRecord is one instruction.
type InstRecord struct {
	Op       string        `json:"op"`
	Result   *ResultRecord `json:"result,omitempty"`
	Operands []ValueRecord `json:"operands,omitempty"`
	Term     bool          `json:"term,omitempty"`
	Succs    []string      `json:"succs,omitempty"` // block ids
}

// ResultRecord declares the value an instruction produces.
type ResultRecord struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ValueRecord is one operand.
type ValueRecord struct {
	Kind     string        `json:"kind"`
	ID       string        `json:"id,omitempty"`   // ref: result id; block: block id
	Name     string        `json:"name,omitempty"` // ref: external value name
	Value    int64         `json:"value,omitempty"`
	Op       string        `json:"op,omitempty"`
	Operands []ValueRecord `json:"operands,omitempty"`
}

// ReadFile reads every function in the JSONL file at path.
func ReadFile(path string) ([]*ir.Function, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("irjson: open: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes functions from r until EOF.
func Read(r io.Reader) ([]*ir.Function, error) {
	var fns []*ir.Function
	dec := json.NewDecoder(r)
	for dec.More() {
		var rec FuncRecord
		if err := dec.Decode(&rec); err != nil {
			return fns, fmt.Errorf("irjson: line %d: %w", len(fns)+1, err)
		}
		fn, err := Convert(rec)
		if err != nil {
			return fns, fmt.Errorf("irjson: line %d: %w", len(fns)+1, err)
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

// Convert links one record into an ir.Function.
func Convert(rec FuncRecord) (*ir.Function, error) {
	l := linker{
		blocks:  make(map[string]*ir.BasicBlock),
		results: make(map[string]ir.Value),
	}
	fn := &ir.Function{Name: rec.Name}

	// Pass 1: blocks and results, so operands may refer forward.
	for _, br := range rec.Blocks {
		if _, dup := l.blocks[br.ID]; dup {
			return nil, fmt.Errorf("%w: block %q", ErrDuplicateID, br.ID)
		}
		bb := &ir.BasicBlock{Name: br.Name}
		l.blocks[br.ID] = bb
		fn.Blocks = append(fn.Blocks, bb)
		for _, irec := range br.Insts {
			inst := &ir.Instruction{Op: irec.Op, Term: irec.Term}
			if irec.Result != nil {
				if _, dup := l.results[irec.Result.ID]; dup && irec.Result.ID != "" {
					return nil, fmt.Errorf("%w: result %q", ErrDuplicateID, irec.Result.ID)
				}
				if irec.Op == "phi" {
					inst.Result = &ir.Phi{Name: irec.Result.Name}
				} else {
					inst.Result = &ir.Result{Name: irec.Result.Name}
				}
				if irec.Result.ID != "" {
					l.results[irec.Result.ID] = inst.Result
				}
			}
			bb.Insts = append(bb.Insts, inst)
		}
	}

	// Pass 2: operands and successors.
	for bi, br := range rec.Blocks {
		for ii, irec := range br.Insts {
			inst := fn.Blocks[bi].Insts[ii]
			ops, err := l.values(irec.Operands)
			if err != nil {
				return nil, fmt.Errorf("block %q inst %d: %w", br.ID, ii, err)
			}
			inst.Operands = ops
			if phi, ok := inst.Result.(*ir.Phi); ok {
				phi.Operands = ops
			}
			for _, sid := range irec.Succs {
				s, ok := l.blocks[sid]
				if !ok {
					return nil, fmt.Errorf("block %q inst %d: %w: %q", br.ID, ii, ErrUnknownBlock, sid)
				}
				inst.Succs = append(inst.Succs, s)
			}
		}
	}

	if err := fn.Validate(); err != nil {
		return nil, err
	}
	return fn, nil
}

type linker struct {
	blocks  map[string]*ir.BasicBlock
	results map[string]ir.Value
}

func (l *linker) values(recs []ValueRecord) ([]ir.Value, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	vals := make([]ir.Value, 0, len(recs))
	for _, r := range recs {
		v, err := l.value(r)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (l *linker) value(r ValueRecord) (ir.Value, error) {
	switch r.Kind {
	case "ref":
		if v, ok := l.results[r.ID]; ok && r.ID != "" {
			return v, nil
		}
		return &ir.Result{Name: r.Name}, nil
	case "block":
		bb, ok := l.blocks[r.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, r.ID)
		}
		return &ir.BlockRef{Block: bb}, nil
	case "int":
		return ir.IntConst{V: r.Value}, nil
	case "expr":
		ops, err := l.values(r.Operands)
		if err != nil {
			return nil, err
		}
		return &ir.ConstExpr{Op: r.Op, Operands: ops}, nil
	case "aggregate":
		ops, err := l.values(r.Operands)
		if err != nil {
			return nil, err
		}
		return &ir.ConstAggregate{Operands: ops}, nil
	case "phi":
		ops, err := l.values(r.Operands)
		if err != nil {
			return nil, err
		}
		return &ir.Phi{Name: r.Name, Operands: ops}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
}
