package gossa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfgdot/internal/graph"
)

const maxSrc = `package p

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
`

func TestFromSource(t *testing.T) {
	fns, err := FromSource("p.go", maxSrc)
	require.NoError(t, err)
	require.Len(t, fns, 1)

	fn := fns[0]
	assert.Equal(t, "Max", fn.Name)
	require.NoError(t, fn.Validate())

	nodes := graph.Build(fn)
	require.Len(t, nodes, 3)
	assert.Equal(t, "entry.0", nodes[0].Name)
	assert.Equal(t, []string{"%0 = gtr %a %b", "if %0 BB1 BB2"}, nodes[0].Insts)
	assert.Equal(t, []string{"if.then.1", "if.done.2"}, nodes[0].Succs)
	assert.Equal(t, []string{"return %a"}, nodes[1].Insts)
	assert.Equal(t, []string{"return %b"}, nodes[2].Insts)
	assert.Empty(t, nodes[2].Succs)
}

func TestFromSourceLoop(t *testing.T) {
	src := `package p

func Sum(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		s += i
	}
	return s
}
`
	fns, err := FromSource("p.go", src)
	require.NoError(t, err)
	require.Len(t, fns, 1)

	var phis int
	for _, n := range graph.Build(fns[0]) {
		for _, text := range n.Insts {
			if _, rhs, ok := strings.Cut(text, " = "); ok && strings.HasPrefix(rhs, "phi ") {
				phis++
			}
		}
	}
	assert.Equal(t, 2, phis, "loop header merges s and i")
}

func TestFromSourceConstants(t *testing.T) {
	src := `package p

func Big() uint64 { return 1<<63 }
func Neg() int8 { return -3 }
`
	fns, err := FromSource("p.go", src)
	require.NoError(t, err)
	require.Len(t, fns, 2)
	assert.Equal(t, "Big", fns[0].Name)
	assert.Equal(t, []string{"return -9223372036854775808"}, graph.Build(fns[0])[0].Insts)
	assert.Equal(t, []string{"return -3"}, graph.Build(fns[1])[0].Insts)
}

func TestFromSourceParseError(t *testing.T) {
	_, err := FromSource("p.go", "package p\nfunc {")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gossa: parse")
}
