package disasm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(raws ...uint32) []byte {
	data := make([]byte, 4*len(raws))
	for i, r := range raws {
		binary.LittleEndian.PutUint32(data[i*4:], r)
	}
	return data
}

func TestDisassembleNOP(t *testing.T) {
	insts := Disassemble(words(nop, nop), Options{BaseAddr: 0x1000})
	require.Len(t, insts, 2)
	assert.Equal(t, uint64(0x1000), insts[0].Addr)
	assert.Equal(t, uint64(0x1004), insts[1].Addr)
	assert.Equal(t, "nop", insts[0].Mnemonic)
	assert.Empty(t, insts[0].Args)
}

func TestDisassembleArgs(t *testing.T) {
	// ADD X0, X1, X2
	insts := Disassemble(words(0x8B020020), Options{})
	require.Len(t, insts, 1)
	assert.Equal(t, "add", insts[0].Mnemonic)
	require.Len(t, insts[0].Args, 3)
	assert.Equal(t, "X0", insts[0].Args[0].String())
}

func TestDisassembleMaxSteps(t *testing.T) {
	raws := make([]uint32, 100)
	for i := range raws {
		raws[i] = nop
	}
	assert.Len(t, Disassemble(words(raws...), Options{MaxSteps: 10}), 10)
}

func TestDisassembleShort(t *testing.T) {
	assert.Empty(t, Disassemble(nil, Options{}))
	assert.Empty(t, Disassemble([]byte{0x01, 0x02}, Options{}))
}
