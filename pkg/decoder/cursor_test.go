package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	c := cursor{bytes: []byte{0x01, 0x34, 0x12, 0xff}}

	b, err := c.peek()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)
	assert.Equal(t, 0, c.pos)

	b, ok := c.next()
	assert.True(t, ok)
	assert.Equal(t, byte(0x01), b)

	w, err := c.word()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), w)
	assert.Equal(t, 3, c.pos)

	_, err = c.word()
	assert.ErrorIs(t, err, ErrTruncatedInstruction)

	_, ok = c.next()
	assert.False(t, ok)
	_, err = c.peek()
	assert.ErrorIs(t, err, ErrTruncatedInstruction)
	_, err = c.expect()
	assert.ErrorIs(t, err, ErrTruncatedInstruction)
}

func TestCursorDisplacement(t *testing.T) {
	c := cursor{bytes: []byte{0xdb, 0xd4, 0xfe}}

	disp, err := c.displacement(DisplacementNone)
	require.NoError(t, err)
	assert.Equal(t, Displacement{Len: DisplacementNone}, disp)
	assert.Equal(t, 0, c.pos)

	disp, err = c.displacement(DisplacementByte)
	require.NoError(t, err)
	assert.Equal(t, Displacement{Len: DisplacementByte, Value: 0xdb}, disp)
	assert.Equal(t, -37, disp.Signed())

	disp, err = c.displacement(DisplacementWord)
	require.NoError(t, err)
	assert.Equal(t, Displacement{Len: DisplacementWord, Value: 0xfed4}, disp)
	assert.Equal(t, -300, disp.Signed())

	_, err = c.displacement(DisplacementByte)
	assert.ErrorIs(t, err, ErrTruncatedInstruction)
}
