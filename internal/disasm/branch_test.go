package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBranch(t *testing.T) {
	tests := []struct {
		name   string
		raw    uint32
		pc     uint64
		target uint64
		cond   bool
	}{
		{"B forward", 0x14000000 | 0x40, 0x1000, 0x1100, false},
		{"B backward", 0x14000000 | (0x03FFFFFF - 3), 0x1000, 0x0FF0, false},
		{"B.EQ", 0x54000000 | (8 << 5), 0x2000, 0x2020, true},
		{"CBZ X0", 0xB4000000 | (0x10 << 5), 0x3000, 0x3040, true},
		{"CBNZ W1", 0x35000000 | (2 << 5) | 1, 0x3000, 0x3008, true},
		{"TBZ", 0x36000000 | (4 << 5), 0x4000, 0x4010, true},
		{"TBNZ backward", 0x37000000 | (0x3FFF << 5), 0x4000, 0x3FFC, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			br := DecodeBranch(tc.raw, tc.pc)
			require.NotNil(t, br)
			assert.Equal(t, tc.target, br.Target)
			assert.Equal(t, tc.cond, br.Cond)
			assert.False(t, br.Ret)
		})
	}
}

func TestDecodeBranch_Ret(t *testing.T) {
	br := DecodeBranch(0xD65F03C0, 0x1000) // RET
	require.NotNil(t, br)
	assert.True(t, br.Ret)

	br = DecodeBranch(0xD65F0000|(1<<5), 0x1000) // RET X1
	require.NotNil(t, br)
	assert.True(t, br.Ret)
}

func TestDecodeBranch_Indirect(t *testing.T) {
	br := DecodeBranch(0xD61F0000|(16<<5), 0x1000) // BR X16
	require.NotNil(t, br)
	assert.True(t, br.Indirect)
	assert.False(t, br.Ret)
}

func TestDecodeBranch_NotBranch(t *testing.T) {
	assert.Nil(t, DecodeBranch(0x8B020020, 0x1000), "ADD X0, X1, X2")
	assert.Nil(t, DecodeBranch(0x94000000|0x100, 0x1000), "BL returns to the next instruction")
	assert.Nil(t, DecodeBranch(0xD63F0000|(2<<5), 0x1000), "BLR X2")
	assert.Nil(t, DecodeBranch(0xD503201F, 0x1000), "NOP")
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		val  uint32
		bits int
		want int32
	}{
		{0x04, 19, 4},
		{0x7FFFF, 19, -1},
		{0x3FFF, 14, -1},
		{0x2000, 14, -8192},
		{0x2000000, 26, -33554432},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, signExtend(tc.val, tc.bits), "signExtend(0x%x, %d)", tc.val, tc.bits)
	}
}
