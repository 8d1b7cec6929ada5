package decoder

import "fmt"

// REG (Register) field encoding
// | REG | W = 0 | W = 1|
// ---------------------
// | 000 | AL    | AX   |
// | 001 | CL    | CX   |
// | 010 | DL    | DX   |
// | 011 | BL    | BX   |
// | 100 | AH    | SP   |
// | 101 | CH    | BP   |
// | 110 | DH    | SI   |
// | 111 | BH    | DI   |
type Register byte

const (
	AL Register = iota
	CL
	DL
	BL
	AH
	CH
	DH
	BH
	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI
)

var registerNames = [...]string{
	AL: "al",
	CL: "cl",
	DL: "dl",
	BL: "bl",
	AH: "ah",
	CH: "ch",
	DH: "dh",
	BH: "bh",
	AX: "ax",
	CX: "cx",
	DX: "dx",
	BX: "bx",
	SP: "sp",
	BP: "bp",
	SI: "si",
	DI: "di",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return fmt.Sprintf("Register(%d)", byte(r))
}

// IsWord reports whether r is one of the 16-bit registers.
func (r Register) IsWord() bool {
	return r >= AX && r <= DI
}

// RegisterFromField maps the 3 low bits of field to a register, picking the
// 8-bit or 16-bit bank with isWord. Callers shift the REG field down first.
func RegisterFromField(field byte, isWord bool) (Register, error) {
	if field > 0b111 {
		return 0, fmt.Errorf("%w: %.3b", ErrInvalidRegisterField, field)
	}

	reg := Register(field)
	if isWord {
		reg += AX
	}
	return reg, nil
}

// Accumulator returns al or ax.
func Accumulator(isWord bool) Register {
	if isWord {
		return AX
	}
	return AL
}
