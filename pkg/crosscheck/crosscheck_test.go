package crosscheck

import (
	"testing"

	"github.com/doichev-kostia/performance-aware-programming/sim8086/pkg/decoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listing = [][]byte{
	{0x89, 0xd9},                         // mov cx, bx
	{0xb8, 0x05, 0x00},                   // mov ax, 5
	{0x8a, 0x60, 0x04},                   // mov ah, [bx + si + 4]
	{0x8b, 0x2e, 0x05, 0x00},             // mov bp, [5]
	{0x89, 0x8c, 0xd4, 0xfe},             // mov [si - 300], cx
	{0xc7, 0x83, 0x85, 0x03, 0x5b, 0x01}, // mov [bp + di + 901], 347
	{0x83, 0x82, 0xe8, 0x03, 0x1d},       // add [bp + si + 1000], 29
	{0x81, 0xc6, 0xe8, 0x03},             // add si, 1000
	{0x80, 0x07, 0x22},                   // add [bx], 34
	{0x2c, 0x09},                         // sub al, 9
	{0x3d, 0xe8, 0x03},                   // cmp ax, 1000
	{0x74, 0xfe},                         // je -2
	{0x72, 0x02},                         // jb 2
	{0x77, 0x00},                         // jnbe 0
	{0xe2, 0xfc},                         // loop -4
	{0xe1, 0x00},                         // loopz 0
	{0xe0, 0x00},                         // loopnz 0
	{0xe3, 0x00},                         // jcxz 0
}

func decode(t *testing.T, code []byte) []decoder.Instruction {
	t.Helper()
	instructions, err := decoder.NewDecoder(code).Instructions()
	require.NoError(t, err)
	return instructions
}

func TestVerifyAgreesWithReference(t *testing.T) {
	var code []byte
	for _, inst := range listing {
		code = append(code, inst...)
	}

	result := Verify(code, decode(t, code))
	assert.Equal(t, len(listing), result.Checked)
	assert.Empty(t, result.Mismatches)
	assert.False(t, result.Fatal())
}

func TestVerifyReportsJgeAsJne(t *testing.T) {
	code := []byte{0x89, 0xd9, 0x7d, 0x02}

	result := Verify(code, decode(t, code))
	require.Len(t, result.Mismatches, 1)

	mismatch := result.Mismatches[0]
	assert.Equal(t, MnemonicMismatch, mismatch.Kind)
	assert.Equal(t, 2, mismatch.Instruction.Offset)
	assert.Equal(t, decoder.Jne, mismatch.Instruction.Operation.Mnemonic)
	assert.False(t, result.Fatal())
}

func TestVerifyReportsLengthMismatch(t *testing.T) {
	code := []byte{0x89, 0xd9, 0xb8, 0x05, 0x00}
	instructions := decode(t, code)
	require.Len(t, instructions, 2)

	// pretend the immediate was a single byte
	instructions[1].Bytes = instructions[1].Bytes[:2]

	result := Verify(code, instructions)
	require.Len(t, result.Mismatches, 1)
	assert.Equal(t, LengthMismatch, result.Mismatches[0].Kind)
	assert.True(t, result.Fatal())
}

func TestVerifyOffsetOutOfRange(t *testing.T) {
	result := Verify([]byte{0x89, 0xd9}, []decoder.Instruction{{Offset: 4}})
	require.Len(t, result.Mismatches, 1)
	assert.Equal(t, ReferenceFailed, result.Mismatches[0].Kind)
	assert.True(t, result.Fatal())
}
