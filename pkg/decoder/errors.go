package decoder

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode              = errors.New("unknown opcode")
	ErrUnknownModRMDisambiguation = errors.New("unknown mod/rm disambiguation")
	ErrInvalidAddressingMode      = errors.New("invalid addressing mode")
	ErrInvalidRegisterField       = errors.New("invalid register field")
	ErrTruncatedInstruction       = errors.New("truncated instruction")
	ErrInvalidDescriptor          = errors.New("invalid opcode descriptor")
)

// UnknownOpcodeError is returned when the first byte of an instruction matches
// no row of the opcode table.
type UnknownOpcodeError struct {
	Opcode byte
}

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %.8b", e.Opcode)
}

func (e UnknownOpcodeError) Is(target error) bool {
	return target == ErrUnknownOpcode
}

// UnknownModRMError is returned when bits 5-3 of the byte following a shared
// opcode don't select any known mnemonic.
type UnknownModRMError struct {
	Opcode byte
	ModRM  byte
}

func (e UnknownModRMError) Error() string {
	return fmt.Sprintf("unknown mod/rm disambiguation: opcode %.8b, mod/rm %.8b (field %.3b)", e.Opcode, e.ModRM, (e.ModRM>>3)&0b111)
}

func (e UnknownModRMError) Is(target error) bool {
	return target == ErrUnknownModRMDisambiguation
}

// DecodeError records where a decode pass stopped.
type DecodeError struct {
	// Offset of the first byte of the failing instruction
	Offset int
	Opcode byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed at offset %d (opcode %.8b): %v", e.Offset, e.Opcode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
