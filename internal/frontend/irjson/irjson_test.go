package irjson

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfgdot/internal/graph"
	"cfgdot/internal/ir"
)

const diamondJSONL = `{"name":"f","blocks":[
 {"id":"entry","name":"entry","insts":[
  {"op":"icmp","result":{"id":"c"},"operands":[{"kind":"ref","name":"x"},{"kind":"int","value":0}]},
  {"op":"br","term":true,"succs":["a","b"],"operands":[{"kind":"ref","id":"c"},{"kind":"block","id":"a"},{"kind":"block","id":"b"}]}]},
 {"id":"a","name":"a","insts":[{"op":"ret","term":true}]},
 {"id":"b","name":"b","insts":[{"op":"ret","term":true}]}]}
{"name":"g","blocks":[{"id":"0","insts":[
  {"op":"store","operands":[{"kind":"expr","op":"gep","operands":[{"kind":"aggregate","operands":[{"kind":"int","value":1},{"kind":"int","value":-2}]}]},{"kind":"ref","name":"p"}]},
  {"op":"ret","term":true}]}]}
`

func TestRead(t *testing.T) {
	fns, err := Read(strings.NewReader(diamondJSONL))
	require.NoError(t, err)
	require.Len(t, fns, 2)

	f := fns[0]
	assert.Equal(t, "f", f.Name)
	require.Len(t, f.Blocks, 3)
	entry := f.Blocks[0]
	icmp, br := entry.Insts[0], entry.Insts[1]
	assert.Same(t, icmp.Result, br.Operands[0], "refs by id link to the defining result")
	assert.Equal(t, []*ir.BasicBlock{f.Blocks[1], f.Blocks[2]}, br.Succs)

	nodes := graph.Build(f)
	assert.Equal(t, []string{"%0 = icmp %x 0", "br %0 BB1 BB2"}, nodes[0].Insts)

	g := graph.Build(fns[1])
	assert.Equal(t, "0", g[0].Name)
	assert.Equal(t, []string{"store ( ( 1 -2 ) ) %p", "ret"}, g[0].Insts)
}

func TestReadPhiForwardRef(t *testing.T) {
	src := `{"name":"loop","blocks":[
 {"id":"entry","insts":[{"op":"br","term":true,"succs":["l"],"operands":[{"kind":"block","id":"l"}]}]},
 {"id":"l","insts":[
  {"op":"phi","result":{"id":"i"},"operands":[{"kind":"int","value":0},{"kind":"block","id":"entry"},{"kind":"ref","id":"n"},{"kind":"block","id":"l"}]},
  {"op":"add","result":{"id":"n"},"operands":[{"kind":"ref","id":"i"},{"kind":"int","value":1}]},
  {"op":"br","term":true,"succs":["l"],"operands":[{"kind":"block","id":"l"}]}]}]}`
	fns, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, fns, 1)

	l := fns[0].Blocks[1]
	phi, ok := l.Insts[0].Result.(*ir.Phi)
	require.True(t, ok)
	assert.Same(t, l.Insts[1].Result, phi.Operands[2])

	nodes := graph.Build(fns[0])
	// entry "0", l "1", phi "2", add "3".
	assert.Equal(t, []string{"%2 = phi 0 BB0 %3 BB1", "%3 = add [ 0 BB0 %3 BB1 ] 1", "br BB1"}, nodes[1].Insts)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"unknown kind", `{"name":"f","blocks":[{"id":"e","insts":[{"op":"ret","term":true,"operands":[{"kind":"float"}]}]}]}`, ErrUnknownKind},
		{"unknown succ", `{"name":"f","blocks":[{"id":"e","insts":[{"op":"br","term":true,"succs":["nope"]}]}]}`, ErrUnknownBlock},
		{"duplicate block", `{"name":"f","blocks":[{"id":"e","insts":[]},{"id":"e","insts":[]}]}`, ErrDuplicateID},
		{"no blocks", `{"name":"f","blocks":[]}`, ir.ErrNoBlocks},
		{"succ on non-terminator", `{"name":"f","blocks":[{"id":"e","insts":[{"op":"add","succs":["e"]}]}]}`, ir.ErrSuccNotTerm},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.src))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestReadSyntaxError(t *testing.T) {
	_, err := Read(strings.NewReader(`{"name":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fns.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(diamondJSONL), 0644))
	fns, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, fns, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
