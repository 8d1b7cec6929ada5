package decoder

import "encoding/binary"

// cursor is a forward-only reader over the instruction bytes. peek is the
// only read that doesn't move pos.
type cursor struct {
	bytes []byte
	pos   int
}

func (c *cursor) next() (byte, bool) {
	if len(c.bytes) > c.pos {
		b := c.bytes[c.pos]
		c.pos += 1
		return b, true
	} else {
		return 0, false
	}
}

// expect reads a byte the current instruction can't do without.
func (c *cursor) expect() (byte, error) {
	b, ok := c.next()
	if ok == false {
		return 0, ErrTruncatedInstruction
	}
	return b, nil
}

// [low] [high]
func (c *cursor) word() (uint16, error) {
	if len(c.bytes)-c.pos < 2 {
		c.pos = len(c.bytes)
		return 0, ErrTruncatedInstruction
	}
	value := binary.LittleEndian.Uint16(c.bytes[c.pos : c.pos+2])
	c.pos += 2
	return value, nil
}

func (c *cursor) peek() (byte, error) {
	if len(c.bytes) > c.pos {
		return c.bytes[c.pos], nil
	}
	return 0, ErrTruncatedInstruction
}

// displacement reads 0, 1 or 2 bytes according to l.
func (c *cursor) displacement(l DisplacementLen) (Displacement, error) {
	switch l {
	case DisplacementNone:
		return Displacement{Len: DisplacementNone}, nil
	case DisplacementByte:
		b, err := c.expect()
		if err != nil {
			return Displacement{}, err
		}
		return Displacement{Len: DisplacementByte, Value: uint16(b)}, nil
	case DisplacementWord:
		w, err := c.word()
		if err != nil {
			return Displacement{}, err
		}
		return Displacement{Len: DisplacementWord, Value: w}, nil
	default:
		return Displacement{}, ErrInvalidAddressingMode
	}
}
