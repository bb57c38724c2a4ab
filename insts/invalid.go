package insts

// Invalid is the fallback sentinel for an opcode that no family's formats
// accept.
type Invalid struct {
	common
}

// NewInvalid wraps a 32-bit opcode as Invalid. It never fails.
func NewInvalid(opcode uint32) Instruction {
	return &Invalid{common: common{opcode: opcode}}
}

// NewInvalidCompact wraps a 16-bit opcode as Invalid. It never fails.
func NewInvalidCompact(opcode uint16) Instruction {
	return &Invalid{common: common{opcode: uint32(opcode), compact: true}}
}

// Mnemonic renders the fixed sentinel text; Operands is empty. FormatLine
// lists an Invalid like any other instruction.
func (i *Invalid) Mnemonic() string {
	if i.compact {
		return "INVALID COMPACT INSTRUCTION"
	}
	return "INVALID INSTRUCTION"
}

// Operands is always empty for Invalid.
func (i *Invalid) Operands() string { return "" }
