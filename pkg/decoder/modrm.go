package decoder

// RM is the resolved r/m field: either a register or an effective address
// whose displacement still has to be read from the stream.
type RM struct {
	IsRegister   bool
	Register     Register
	Address      EffectiveAddress
	Displacement DisplacementLen
}

// [mod|reg|r/m]
//
//	2   3   3
func parseOperand(operand byte) (mod byte, reg byte, rm byte) {
	mod = operand >> 6
	reg = (operand >> 3) & 0b00000111
	rm = operand & 0b00000111
	return mod, reg, rm
}

// ParseModRegRM decodes a [mod|reg|r/m] byte where the middle field names a
// register.
func ParseModRegRM(operand byte, isWord bool) (Mode, Register, RM, error) {
	_, regField, _ := parseOperand(operand)

	reg, err := RegisterFromField(regField, isWord)
	if err != nil {
		return Mode{}, 0, RM{}, err
	}

	mode, rm, err := ParseModRM(operand, isWord)
	if err != nil {
		return Mode{}, 0, RM{}, err
	}

	return mode, reg, rm, nil
}

// ParseModRM decodes a [mod|xxx|r/m] byte ignoring the middle field, which is
// an opcode extension for these instructions.
func ParseModRM(operand byte, isWord bool) (Mode, RM, error) {
	mod, _, rmField := parseOperand(operand)

	mode, err := ModeFromField(mod)
	if err != nil {
		return Mode{}, RM{}, err
	}

	if mode.Register {
		reg, err := RegisterFromField(rmField, isWord)
		if err != nil {
			return Mode{}, RM{}, err
		}
		return mode, RM{IsRegister: true, Register: reg}, nil
	}

	address, dispLen, err := EffectiveAddressFromField(rmField, mode)
	if err != nil {
		return Mode{}, RM{}, err
	}

	return mode, RM{Address: address, Displacement: dispLen}, nil
}
