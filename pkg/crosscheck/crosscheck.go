// Package crosscheck compares decoded instructions against the x86asm
// disassembler running in 16-bit mode.
package crosscheck

import (
	"fmt"
	"strings"

	"github.com/doichev-kostia/performance-aware-programming/sim8086/pkg/decoder"
	"golang.org/x/arch/x86/x86asm"
)

const mode16 = 16

type MismatchKind byte

const (
	// LengthMismatch means the two decoders disagree on where the next
	// instruction starts, so everything after it is suspect.
	LengthMismatch MismatchKind = iota
	MnemonicMismatch
	ReferenceFailed
)

func (k MismatchKind) String() string {
	switch k {
	case LengthMismatch:
		return "length"
	case MnemonicMismatch:
		return "mnemonic"
	case ReferenceFailed:
		return "reference"
	default:
		return fmt.Sprintf("MismatchKind(%d)", byte(k))
	}
}

type Mismatch struct {
	Kind        MismatchKind
	Instruction decoder.Instruction
	// Reference is the x86asm rendering in Intel syntax
	Reference string
	Detail    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("offset %d: %s mismatch: %q vs %q (%s)", m.Instruction.Offset, m.Kind, m.Instruction.Operation, m.Reference, m.Detail)
}

// Result collects the outcome of Verify.
type Result struct {
	Checked    int
	Mismatches []Mismatch
}

// Fatal reports whether any instruction boundary disagrees.
func (r Result) Fatal() bool {
	for _, m := range r.Mismatches {
		if m.Kind != MnemonicMismatch {
			return true
		}
	}
	return false
}

var referenceOps = map[decoder.Mnemonic]x86asm.Op{
	decoder.Mov:    x86asm.MOV,
	decoder.Add:    x86asm.ADD,
	decoder.Sub:    x86asm.SUB,
	decoder.Cmp:    x86asm.CMP,
	decoder.Je:     x86asm.JE,
	decoder.Jl:     x86asm.JL,
	decoder.Jle:    x86asm.JLE,
	decoder.Jb:     x86asm.JB,
	decoder.Jbe:    x86asm.JBE,
	decoder.Jp:     x86asm.JP,
	decoder.Jo:     x86asm.JO,
	decoder.Js:     x86asm.JS,
	decoder.Jne:    x86asm.JNE,
	decoder.Jnl:    x86asm.JGE,
	decoder.Jg:     x86asm.JG,
	decoder.Jnb:    x86asm.JAE,
	decoder.Jnbe:   x86asm.JA,
	decoder.Jnp:    x86asm.JNP,
	decoder.Jno:    x86asm.JNO,
	decoder.Jns:    x86asm.JNS,
	decoder.Loop:   x86asm.LOOP,
	decoder.Loopz:  x86asm.LOOPE,
	decoder.Loopnz: x86asm.LOOPNE,
	decoder.Jcxz:   x86asm.JCXZ,
}

// Verify decodes every instruction again with x86asm, starting at the same
// offset of code, and reports where the two disagree.
func Verify(code []byte, instructions []decoder.Instruction) Result {
	result := Result{Mismatches: make([]Mismatch, 0)}

	for _, instruction := range instructions {
		result.Checked++

		if instruction.Offset < 0 || instruction.Offset >= len(code) {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Kind:        ReferenceFailed,
				Instruction: instruction,
				Detail:      fmt.Sprintf("offset outside of %d bytes of code", len(code)),
			})
			continue
		}

		inst, err := x86asm.Decode(code[instruction.Offset:], mode16)
		if err != nil {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Kind:        ReferenceFailed,
				Instruction: instruction,
				Detail:      err.Error(),
			})
			continue
		}

		reference := strings.ToLower(x86asm.IntelSyntax(inst, uint64(instruction.Offset), nil))

		if inst.Len != instruction.Len() {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Kind:        LengthMismatch,
				Instruction: instruction,
				Reference:   reference,
				Detail:      fmt.Sprintf("decoded %d bytes, reference %d", instruction.Len(), inst.Len),
			})
			continue
		}

		want, ok := referenceOps[instruction.Operation.Mnemonic]
		if !ok || want != inst.Op {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Kind:        MnemonicMismatch,
				Instruction: instruction,
				Reference:   reference,
				Detail:      fmt.Sprintf("opcode %.8b is %s in the reference", instruction.Descriptor.Opcode, inst.Op),
			})
		}
	}

	return result
}
