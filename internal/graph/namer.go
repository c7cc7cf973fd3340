// Package graph walks an ir.Function and builds the per-block render nodes.
package graph

import (
	"strconv"

	"cfgdot/internal/ir"
)

// Namer assigns display names to unnamed values from a monotonic counter.
// Blocks and values share one counter, and a counter value already used as
// an explicit name is skipped.
type Namer struct {
	next  int
	taken map[string]bool
}

// Reserve marks name as in use so NameOf never hands it out.
func (n *Namer) Reserve(name string) {
	if name == "" {
		return
	}
	if n.taken == nil {
		n.taken = make(map[string]bool)
	}
	n.taken[name] = true
}

// NameOf returns v's name, stamping the next unused counter value onto v
// first if it has none.
func (n *Namer) NameOf(v ir.Named) string {
	if name := v.ValueName(); name != "" {
		return name
	}
	for {
		name := strconv.Itoa(n.next)
		n.next++
		if n.taken[name] {
			continue
		}
		n.Reserve(name)
		v.SetValueName(name)
		return name
	}
}
