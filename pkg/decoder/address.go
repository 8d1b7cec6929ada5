package decoder

import (
	"fmt"
	"strings"
)

// MOD field
//
// The MOD field indicates how many displacement bytes are present.
// Following Intel convention, if the displacement is two bytes,
// the most-significant byte is stored second in the instruction. (Little Endian)
const (
	MemoryModeNoDisplacementFieldEncoding = 0b00
	MemoryMode8DisplacementFieldEncoding  = 0b01
	MemoryMode16DisplacementFieldEncoding = 0b10
	RegisterModeFieldEncoding             = 0b11
)

// DisplacementLen is the number of displacement bytes following a mod/rm byte.
type DisplacementLen byte

const (
	DisplacementNone DisplacementLen = iota
	DisplacementByte
	DisplacementWord
)

func (l DisplacementLen) String() string {
	switch l {
	case DisplacementNone:
		return "none"
	case DisplacementByte:
		return "byte"
	case DisplacementWord:
		return "word"
	default:
		return fmt.Sprintf("DisplacementLen(%d)", byte(l))
	}
}

// Mode is the decoded MOD field. Register mode never carries a displacement.
type Mode struct {
	Register     bool
	Displacement DisplacementLen
}

var (
	RegisterMode = Mode{Register: true}
	MemoryMode0  = Mode{Displacement: DisplacementNone}
	MemoryMode8  = Mode{Displacement: DisplacementByte}
	MemoryMode16 = Mode{Displacement: DisplacementWord}
)

// ModeFromField decodes the 2-bit MOD field (already shifted down).
func ModeFromField(mod byte) (Mode, error) {
	switch mod {
	case MemoryModeNoDisplacementFieldEncoding:
		return MemoryMode0, nil
	case MemoryMode8DisplacementFieldEncoding:
		return MemoryMode8, nil
	case MemoryMode16DisplacementFieldEncoding:
		return MemoryMode16, nil
	case RegisterModeFieldEncoding:
		return RegisterMode, nil
	default:
		return Mode{}, fmt.Errorf("%w: %.2b", ErrInvalidAddressingMode, mod)
	}
}

func (m Mode) String() string {
	if m.Register {
		return "register"
	}
	return "memory(" + m.Displacement.String() + ")"
}

// AddressKind is the shape of an effective address expression.
type AddressKind byte

const (
	DirectAddress AddressKind = iota
	SingleBase
	DualBase
)

// EffectiveAddress is the base/index part of a memory operand. The displacement
// is kept apart because it is read after the mod/rm byte.
type EffectiveAddress struct {
	Kind  AddressKind
	Base  Register
	Index Register
}

// EffectiveAddressEquation based on the r/m (Register/Memory) field encoding
// Table 4-10 in "Instruction reference"
//
// | r/m | equation |
// ------------------
// | 000 | bx + si  |
// | 001 | bx + di  |
// | 010 | bp + si  |
// | 011 | bp + di  |
// | 100 | si       |
// | 101 | di       |
// | 110 | bp       | If MOD = 00, then it's a Direct Address
// | 111 | bx       |
var effectiveAddressEquation = [8]EffectiveAddress{
	0b000: {Kind: DualBase, Base: BX, Index: SI},
	0b001: {Kind: DualBase, Base: BX, Index: DI},
	0b010: {Kind: DualBase, Base: BP, Index: SI},
	0b011: {Kind: DualBase, Base: BP, Index: DI},
	0b100: {Kind: SingleBase, Base: SI},
	0b101: {Kind: SingleBase, Base: DI},
	0b110: {Kind: SingleBase, Base: BP},
	0b111: {Kind: SingleBase, Base: BX},
}

// EffectiveAddressFromField selects the address expression for a memory mode.
// The returned length is how many displacement bytes must be read: a direct
// address always takes a full word even though MOD said "no displacement".
func EffectiveAddressFromField(rm byte, mode Mode) (EffectiveAddress, DisplacementLen, error) {
	if mode.Register {
		return EffectiveAddress{}, 0, fmt.Errorf("%w: register mode has no effective address", ErrInvalidAddressingMode)
	}
	if rm > 0b111 {
		return EffectiveAddress{}, 0, fmt.Errorf("%w: r/m %.3b", ErrInvalidRegisterField, rm)
	}

	if rm == 0b110 && mode.Displacement == DisplacementNone {
		return EffectiveAddress{Kind: DirectAddress}, DisplacementWord, nil
	}

	return effectiveAddressEquation[rm], mode.Displacement, nil
}

// Displacement is a displacement value tagged with the width it was read with.
type Displacement struct {
	Len   DisplacementLen
	Value uint16
}

// Signed returns the displacement sign-extended from its own width.
func (d Displacement) Signed() int {
	switch d.Len {
	case DisplacementByte:
		return int(int8(d.Value))
	case DisplacementWord:
		return int(int16(d.Value))
	default:
		return 0
	}
}

func (ea EffectiveAddress) equation() string {
	switch ea.Kind {
	case SingleBase:
		return ea.Base.String()
	case DualBase:
		return ea.Base.String() + " + " + ea.Index.String()
	default:
		return ""
	}
}

// Format renders the address with its displacement, e.g. [bx + si + 4].
func (ea EffectiveAddress) Format(disp Displacement) string {
	if ea.Kind == DirectAddress {
		return fmt.Sprintf("[%d]", disp.Value)
	}

	var builder strings.Builder
	builder.WriteString("[")
	builder.WriteString(ea.equation())

	// presence is decided by the declared length, [bp + 0] is kept as is
	if disp.Len != DisplacementNone {
		signed := disp.Signed()
		if signed < 0 {
			fmt.Fprintf(&builder, " - %d", -signed)
		} else {
			fmt.Fprintf(&builder, " + %d", signed)
		}
	}

	builder.WriteString("]")
	return builder.String()
}
