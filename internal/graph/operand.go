package graph

import (
	"fmt"
	"strconv"
	"strings"

	"cfgdot/internal/ir"
)

// Operand returns the text of one operand, including its leading space.
//
//	BlockRef        " BB<id>"
//	IntConst        " <decimal>"
//	ConstExpr       " (" operands " )"   opcode is not printed
//	ConstAggregate  " (" operands " )"
//	Phi             " [" operands " ]"
//	Result          " %<name>"
func (c *Context) Operand(v ir.Value) string {
	var b strings.Builder
	c.operand(&b, v)
	return b.String()
}

func (c *Context) operand(b *strings.Builder, v ir.Value) {
	switch v := v.(type) {
	case *ir.BlockRef:
		b.WriteString(" BB")
		b.WriteString(strconv.Itoa(c.BlockID(v.Block)))
	case ir.IntConst:
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(v.V, 10))
	case *ir.ConstExpr:
		c.list(b, " (", v.Operands, " )")
	case *ir.ConstAggregate:
		c.list(b, " (", v.Operands, " )")
	case *ir.Phi:
		// A phi reached again through its own operands prints as a reference.
		if c.expanding[v] {
			b.WriteString(" %")
			b.WriteString(c.names.NameOf(v))
			return
		}
		c.expanding[v] = true
		c.list(b, " [", v.Operands, " ]")
		delete(c.expanding, v)
	case *ir.Result:
		b.WriteString(" %")
		b.WriteString(c.names.NameOf(v))
	default:
		panic(fmt.Sprintf("graph: unexpected value %T", v))
	}
}

func (c *Context) list(b *strings.Builder, open string, ops []ir.Value, end string) {
	b.WriteString(open)
	for _, op := range ops {
		c.operand(b, op)
	}
	b.WriteString(end)
}
