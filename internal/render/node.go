package render

import (
	"fmt"
	"io"
	"strings"
)

// DefaultIndent is the left indent applied to nodes inside a digraph.
const DefaultIndent = 4

// instIndent prefixes every instruction line inside a record label.
const instIndent = "            "

// Node is one basic block of a rendered CFG.
type Node struct {
	ID    int
	Name  string
	Insts []string // rendered instruction text, in block order
	Succs []string // successor block names, in terminator order
}

// NewNode returns an empty node for block name with the given id.
func NewNode(name string, id int) *Node {
	return &Node{ID: id, Name: name}
}

func (n *Node) AddInst(text string) { n.Insts = append(n.Insts, text) }
func (n *Node) AddSucc(name string) { n.Succs = append(n.Succs, name) }

// String renders the node with no indent.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

// Render writes the node as a record-shaped DOT node followed by its
// outgoing edges. Every emitted line is prefixed by indent spaces.
//
// A block with two or more successors gets a T/F split; only ports s0 and s1
// exist in the label, further successors still get s<i> edges.
func (n *Node) Render(w io.Writer, indent int) error {
	var b strings.Builder
	n.write(&b, indent)
	_, err := io.WriteString(w, b.String())
	return err
}

func (n *Node) write(b *strings.Builder, indent int) {
	rs := strings.Repeat(" ", indent)
	name := dotQuote(n.Name)

	fmt.Fprintf(b, "%s%s [shape=record,\n", rs, name)
	fmt.Fprintf(b, "%s    label=\"{BB%d\\l\\l\n", rs, n.ID)

	for i, inst := range n.Insts {
		fmt.Fprintf(b, "%s%s%s\\l", rs, instIndent, recordEscape(inst))
		if i != len(n.Insts)-1 {
			b.WriteByte('\n')
		}
	}

	switch len(n.Succs) {
	case 0:
		b.WriteString("\\l}\"];\n")
	case 1:
		b.WriteString("\\l}\"];\n")
		fmt.Fprintf(b, "%s%s -> %s;\n", rs, name, dotQuote(n.Succs[0]))
	default:
		b.WriteString("\\l|{<s0>T|<s1>F}}\"];\n")
		for i, s := range n.Succs {
			fmt.Fprintf(b, "%s%s:s%d -> %s;\n", rs, name, i, dotQuote(s))
		}
	}
}

// Digraph renders a complete DOT document for function fnName.
func Digraph(fnName string, nodes []*Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph \"CFG for '%s' function \" {\n", headerEscape(fnName))
	for _, n := range nodes {
		n.write(&b, DefaultIndent)
	}
	b.WriteString("}\n")
	return b.String()
}
