package decoder

import (
	"errors"
	"io"
)

// Header is written before the first decoded line. nasm reads it as the
// 16-bit mode switch.
const Header = "bits 16\n\n"

// Instruction is a decoded operation together with where it came from.
type Instruction struct {
	Offset     int
	Bytes      []byte
	Descriptor Descriptor
	Operation  Operation
}

// Len is the encoded length in bytes.
func (i Instruction) Len() int {
	return len(i.Bytes)
}

type Option func(d *Decoder)

// WithExplicitWidth prefixes memory destinations of immediate forms with
// byte/word.
func WithExplicitWidth() Option {
	return func(d *Decoder) {
		d.explicitWidth = true
	}
}

// WithHook registers fn to be called with every decoded instruction.
func WithHook(fn func(Instruction)) Option {
	return func(d *Decoder) {
		d.hook = fn
	}
}

type Decoder struct {
	cursor  cursor
	decoded []byte
	err     error

	explicitWidth bool
	hook          func(Instruction)
}

func NewDecoder(bytes []byte, opts ...Option) *Decoder {
	d := &Decoder{
		cursor:  cursor{bytes: bytes, pos: 0},
		decoded: make([]byte, 0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) reset() {
	d.cursor.pos = 0
	d.err = nil
	d.decoded = make([]byte, 0, len(Header)+len(d.cursor.bytes)*8)
}

// Decode runs a full pass over the buffer and returns the assembly text.
// On failure nothing is returned; Decoded still holds the lines produced
// before the failing instruction.
func (d *Decoder) Decode() ([]byte, error) {
	d.reset()
	d.decoded = append(d.decoded, Header...)

	for {
		instruction, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		d.decoded = append(d.decoded, instruction.Operation.Format(d.explicitWidth)...)
		d.decoded = append(d.decoded, '\n')
	}

	return d.decoded, nil
}

// Decoded returns the output of the last Decode call, partial if it failed.
func (d *Decoder) Decoded() []byte {
	return d.decoded
}

// Instructions runs a full pass and returns the decoded instructions.
func (d *Decoder) Instructions() ([]Instruction, error) {
	d.reset()

	instructions := make([]Instruction, 0)
	for {
		instruction, err := d.Next()
		if errors.Is(err, io.EOF) {
			return instructions, nil
		}
		if err != nil {
			return instructions, err
		}
		instructions = append(instructions, instruction)
	}
}

// Next decodes one instruction. It returns io.EOF when the stream ends on an
// instruction boundary. Any other error is a *DecodeError and ends the pass:
// later calls keep returning it.
func (d *Decoder) Next() (Instruction, error) {
	if d.err != nil {
		return Instruction{}, d.err
	}

	start := d.cursor.pos
	opcode, ok := d.cursor.next()
	if ok == false {
		return Instruction{}, io.EOF
	}

	descriptor, operation, err := d.decodeOperation(opcode)
	if err != nil {
		d.err = &DecodeError{Offset: start, Opcode: opcode, Err: err}
		return Instruction{}, d.err
	}

	end := d.cursor.pos
	instruction := Instruction{
		Offset:     start,
		Bytes:      d.cursor.bytes[start:end:end],
		Descriptor: descriptor,
		Operation:  operation,
	}

	if d.hook != nil {
		d.hook(instruction)
	}

	return instruction, nil
}

func (d *Decoder) decodeOperation(opcode byte) (Descriptor, Operation, error) {
	descriptor, err := Classify(opcode)
	if err != nil {
		return Descriptor{}, Operation{}, err
	}

	// the mnemonic sits in the next byte, which is read again below as the
	// mod/rm byte
	if descriptor.Mnemonic == NeedsSecondByte {
		next, err := d.cursor.peek()
		if err != nil {
			return descriptor, Operation{}, err
		}
		descriptor, err = descriptor.WithSecondByte(next)
		if err != nil {
			return descriptor, Operation{}, err
		}
	}

	if err := descriptor.validate(); err != nil {
		return descriptor, Operation{}, err
	}

	operation := Operation{Mnemonic: descriptor.Mnemonic, Word: descriptor.Word.Set}
	isWord := descriptor.Word.Set

	switch descriptor.Layout {
	// [xxxxxx|d|w] [mod|reg|r/m] [disp-lo?] [disp-hi?]
	case LayoutRegisterModRM:
		operand, err := d.cursor.expect()
		if err != nil {
			return descriptor, Operation{}, err
		}
		_, reg, rm, err := ParseModRegRM(operand, isWord)
		if err != nil {
			return descriptor, Operation{}, err
		}
		rmOperand, err := d.rmOperand(rm)
		if err != nil {
			return descriptor, Operation{}, err
		}

		operation.Destination = rmOperand
		operation.Source = RegisterOperand(reg)
		if descriptor.Direction.Set {
			operation.Destination, operation.Source = operation.Source, operation.Destination
		}

	// [xxxxxx|s|w] [mod|ext|r/m] [disp-lo?] [disp-hi?] [data] [data if s|w = 0|1]
	case LayoutOpcodeExtensionModRM:
		operand, err := d.cursor.expect()
		if err != nil {
			return descriptor, Operation{}, err
		}
		_, rm, err := ParseModRM(operand, isWord)
		if err != nil {
			return descriptor, Operation{}, err
		}
		// displacement comes before the immediate
		operation.Destination, err = d.rmOperand(rm)
		if err != nil {
			return descriptor, Operation{}, err
		}

		// the 8086 uses one byte and sign-extends it when s|w = 1|1. Only the
		// byte is kept, it is printed as read.
		operation.Source, err = d.immediate(isWord && !descriptor.Sign.Set)
		if err != nil {
			return descriptor, Operation{}, err
		}

	// [xxxx|w|reg] [data] [data if w = 1]
	case LayoutImmediateToRegister:
		operation.Destination = RegisterOperand(descriptor.Register)
		operation.Source, err = d.immediate(isWord)
		if err != nil {
			return descriptor, Operation{}, err
		}

	// [xxxxxxxx] [ip-inc8]
	case LayoutShortJump:
		offset, err := d.cursor.expect()
		if err != nil {
			return descriptor, Operation{}, err
		}
		operation.Destination = JumpOperand(int8(offset))
	}

	return descriptor, operation, nil
}

// rmOperand turns the r/m field into an operand, reading the displacement if
// it's a memory reference.
func (d *Decoder) rmOperand(rm RM) (Operand, error) {
	if rm.IsRegister {
		return RegisterOperand(rm.Register), nil
	}

	displacement, err := d.cursor.displacement(rm.Displacement)
	if err != nil {
		return Operand{}, err
	}
	return MemoryOperand(rm.Address, displacement), nil
}

// [data] [data if isWord]
func (d *Decoder) immediate(isWord bool) (Operand, error) {
	if isWord {
		value, err := d.cursor.word()
		if err != nil {
			return Operand{}, err
		}
		return ImmediateWordOperand(value), nil
	}

	value, err := d.cursor.expect()
	if err != nil {
		return Operand{}, err
	}
	return ImmediateByteOperand(value), nil
}
