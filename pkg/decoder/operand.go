package decoder

import (
	"fmt"
	"strings"
)

type OperandKind byte

const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandMemory
	OperandImmediateByte
	OperandImmediateWord
	OperandJump
)

// Operand is one side of an Operation. Only the fields belonging to Kind are
// meaningful.
type Operand struct {
	Kind OperandKind

	Register     Register
	Address      EffectiveAddress
	Displacement Displacement
	Immediate    uint16
	Jump         int8
}

func RegisterOperand(r Register) Operand {
	return Operand{Kind: OperandRegister, Register: r}
}

func MemoryOperand(ea EffectiveAddress, disp Displacement) Operand {
	return Operand{Kind: OperandMemory, Address: ea, Displacement: disp}
}

func ImmediateByteOperand(v uint8) Operand {
	return Operand{Kind: OperandImmediateByte, Immediate: uint16(v)}
}

func ImmediateWordOperand(v uint16) Operand {
	return Operand{Kind: OperandImmediateWord, Immediate: v}
}

func JumpOperand(offset int8) Operand {
	return Operand{Kind: OperandJump, Jump: offset}
}

func (o Operand) IsImmediate() bool {
	return o.Kind == OperandImmediateByte || o.Kind == OperandImmediateWord
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandRegister:
		return o.Register.String()
	case OperandMemory:
		return o.Address.Format(o.Displacement)
	case OperandImmediateByte, OperandImmediateWord:
		// the raw value, a sign-extended byte immediate is not widened
		return fmt.Sprintf("%d", o.Immediate)
	case OperandJump:
		return fmt.Sprintf("%d", o.Jump)
	default:
		return ""
	}
}

// Operation is a decoded instruction: mnemonic dest[, src].
type Operation struct {
	Mnemonic    Mnemonic
	Destination Operand
	// Kind is OperandNone for jumps and loops
	Source Operand
	// Word is the operand size of the instruction, used for explicit widths
	Word bool
}

func (op Operation) HasSource() bool {
	return op.Source.Kind != OperandNone
}

func (op Operation) String() string {
	return op.Format(false)
}

// Format renders the operation. With explicitWidth a memory destination that
// receives an immediate is prefixed with byte/word, which nasm needs to pick
// the encoding: mov word [bp + 75], 512
func (op Operation) Format(explicitWidth bool) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s ", op.Mnemonic)

	if explicitWidth && op.Destination.Kind == OperandMemory && op.Source.IsImmediate() {
		if op.Word {
			builder.WriteString("word ")
		} else {
			builder.WriteString("byte ")
		}
	}
	builder.WriteString(op.Destination.String())

	if op.HasSource() {
		builder.WriteString(", ")
		builder.WriteString(op.Source.String())
	}

	return builder.String()
}
