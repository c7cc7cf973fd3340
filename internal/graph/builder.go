package graph

import (
	"strings"

	"cfgdot/internal/ir"
	"cfgdot/internal/render"
)

// Context holds the naming state for one function. A fresh Context is used
// per function and discarded once its graph is built.
type Context struct {
	names     Namer
	ids       map[*ir.BasicBlock]int // in first-encounter order
	nodes     []*render.Node
	expanding map[*ir.Phi]bool
}

// NewContext returns an empty per-function context.
func NewContext() *Context {
	return &Context{
		ids:       make(map[*ir.BasicBlock]int),
		expanding: make(map[*ir.Phi]bool),
	}
}

// BlockID returns the id of b, allocating the next one if b has not been
// seen yet. An unnamed block is named first.
func (c *Context) BlockID(b *ir.BasicBlock) int {
	if id, ok := c.ids[b]; ok {
		return id
	}
	c.names.NameOf(b)
	id := len(c.ids)
	c.ids[b] = id
	return id
}

// Reserve records every explicit block and value name in fn so that
// generated names never collide with them.
func (c *Context) Reserve(fn *ir.Function) {
	seen := make(map[*ir.Phi]bool)
	for _, bb := range fn.Blocks {
		c.names.Reserve(bb.Name)
		for _, inst := range bb.Insts {
			if inst.Result != nil {
				c.reserveValue(inst.Result, seen)
			}
			for _, op := range inst.Operands {
				c.reserveValue(op, seen)
			}
		}
	}
}

func (c *Context) reserveValue(v ir.Value, seen map[*ir.Phi]bool) {
	c.names.Reserve(ir.NameOf(v))
	var ops []ir.Value
	switch v := v.(type) {
	case *ir.BlockRef:
		c.names.Reserve(v.Block.Name)
	case *ir.ConstExpr:
		ops = v.Operands
	case *ir.ConstAggregate:
		ops = v.Operands
	case *ir.Phi:
		if seen[v] {
			return
		}
		seen[v] = true
		ops = v.Operands
	}
	for _, op := range ops {
		c.reserveValue(op, seen)
	}
}

// Build walks fn in block and instruction order and returns one node per
// block. Explicit names are reserved up front. Block ids follow first encounter, so a block first seen as a branch
// target is numbered when its predecessor's terminator is visited.
func Build(fn *ir.Function) []*render.Node {
	c := NewContext()
	c.Reserve(fn)
	for _, bb := range fn.Blocks {
		c.block(bb)
	}
	return c.nodes
}

func (c *Context) block(bb *ir.BasicBlock) {
	id := c.BlockID(bb)
	node := render.NewNode(bb.Name, id)

	for _, inst := range bb.Insts {
		if inst.HasValue() {
			c.names.NameOf(inst.Result.(ir.Named))
		}

		// Successor ids are taken before operands are printed so the true
		// target is numbered ahead of the false target.
		if inst.Term {
			for _, s := range inst.Succs {
				c.BlockID(s)
				node.AddSucc(s.Name)
			}
		}

		node.AddInst(c.Inst(inst))
	}

	c.nodes = append(c.nodes, node)
}

// Inst returns the text line for one instruction: "[%name = ]op operands...".
func (c *Context) Inst(inst *ir.Instruction) string {
	var b strings.Builder
	if inst.HasValue() {
		b.WriteByte('%')
		b.WriteString(c.names.NameOf(inst.Result.(ir.Named)))
		b.WriteString(" = ")
	}
	b.WriteString(inst.Op)
	for _, op := range inst.Operands {
		c.operand(&b, op)
	}
	return b.String()
}
