package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperandString(t *testing.T) {
	assert.Equal(t, "cx", RegisterOperand(CX).String())
	assert.Equal(t, "255", ImmediateByteOperand(0xff).String())
	assert.Equal(t, "65535", ImmediateWordOperand(0xffff).String())
	assert.Equal(t, "-128", JumpOperand(-128).String())
	assert.Equal(t, "[bx + si + 4]", MemoryOperand(EffectiveAddress{Kind: DualBase, Base: BX, Index: SI}, Displacement{DisplacementByte, 4}).String())
	assert.Equal(t, "", Operand{}.String())
}

func TestOperationFormat(t *testing.T) {
	bx := MemoryOperand(EffectiveAddress{Kind: SingleBase, Base: BX}, Displacement{})

	tests := []struct {
		op       Operation
		plain    string
		explicit string
	}{
		{
			op:       Operation{Mnemonic: Mov, Destination: RegisterOperand(CX), Source: RegisterOperand(BX), Word: true},
			plain:    "mov cx, bx",
			explicit: "mov cx, bx",
		},
		{
			op:       Operation{Mnemonic: Add, Destination: bx, Source: ImmediateByteOperand(2), Word: true},
			plain:    "add [bx], 2",
			explicit: "add word [bx], 2",
		},
		{
			op:       Operation{Mnemonic: Mov, Destination: bx, Source: ImmediateByteOperand(7)},
			plain:    "mov [bx], 7",
			explicit: "mov byte [bx], 7",
		},
		{
			// a register source already fixes the size
			op:       Operation{Mnemonic: Mov, Destination: bx, Source: RegisterOperand(AL)},
			plain:    "mov [bx], al",
			explicit: "mov [bx], al",
		},
		{
			op:       Operation{Mnemonic: Jcxz, Destination: JumpOperand(-2)},
			plain:    "jcxz -2",
			explicit: "jcxz -2",
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.plain, test.op.String())
		assert.Equal(t, test.plain, test.op.Format(false))
		assert.Equal(t, test.explicit, test.op.Format(true))
	}
}
