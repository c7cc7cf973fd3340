// Package overview converts printed CFG nodes into a lattice.FuncCFG so a
// compact, call-oriented view can be rendered next to the full record graph.
package overview

import (
	"strings"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	cfgrender "cfgdot/internal/render"
)

// callOps are the opcodes whose first operand names a callee.
var callOps = map[string]bool{
	"call":   true,
	"invoke": true,
	"go":     true,
	"defer":  true,
	"bl":     true,
	"blr":    true,
}

// BuildFuncCFG maps nodes to a lattice.FuncCFG. Block ids are the node ids;
// Start/End index the instructions of the function in node order.
func BuildFuncCFG(name string, nodes []*cfgrender.Node) *lattice.FuncCFG {
	byName := make(map[string]int, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n.ID
	}

	lcfg := &lattice.FuncCFG{Name: name}
	offset := 0
	for _, n := range nodes {
		lb := &lattice.BasicBlock{
			ID:    n.ID,
			Start: offset,
			End:   offset + len(n.Insts),
			Term:  len(n.Succs) == 0,
		}

		for i, s := range n.Succs {
			succ := lattice.Successor{BlockID: byName[s]}
			if len(n.Succs) >= 2 {
				succ.Cond = branchCond(i)
			}
			lb.Succs = append(lb.Succs, succ)
		}

		for i, text := range n.Insts {
			if callee, ok := calleeOf(text); ok {
				lb.Calls = append(lb.Calls, lattice.CallSite{
					Offset: offset + i,
					Callee: callee,
				})
			}
		}

		offset += len(n.Insts)
		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}

// DOT renders the lattice view of one function.
func DOT(name string, nodes []*cfgrender.Node) string {
	g := &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{BuildFuncCFG(name, nodes)}}
	return render.DOTCFG(g, name)
}

func branchCond(i int) string {
	switch i {
	case 0:
		return "T"
	case 1:
		return "F"
	}
	return ""
}

// calleeOf extracts the callee from an instruction line such as
// "%3 = call %fmt.Println %2" or "bl %0x1234".
func calleeOf(text string) (string, bool) {
	if _, rest, ok := strings.Cut(text, " = "); ok {
		text = rest
	}
	fields := strings.Fields(text)
	if len(fields) < 2 || !callOps[fields[0]] {
		return "", false
	}
	return strings.TrimPrefix(fields[1], "%"), true
}
