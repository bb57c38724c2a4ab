package insts

import (
	"strconv"

	"github.com/sarchlab/c64xplusdis/bitfield"
)

// NOP is a decoded NOP/IDLE instruction.
type NOP struct {
	common
	Count uint8
	Idle  bool
}

// Mnemonic renders "IDLE" or "NOP"; the <count+1> cycle count is rendered by
// Operands.
func (n *NOP) Mnemonic() string {
	if n.Idle {
		return "IDLE"
	}
	return "NOP"
}

// Operands renders the cycle-count operand, or "" for bare NOP/IDLE.
func (n *NOP) Operands() string {
	if n.Idle || n.Count == 0 {
		return ""
	}
	return strconv.Itoa(int(n.Count) + 1)
}

// 32-bit NOP/IDLE: the p bit, 12 zero bits, a 4-bit src count, then 15 zero
// bits. count=0b1111 -> IDLE.
var nopFormat32 = bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.Match{Size: 12, Value: 0},
	bitfield.Unsigned{Size: 4, Name: "count"},
	bitfield.Match{Size: 15, Value: 0},
}

// NewNOP decodes the 32-bit NOP/IDLE format.
func NewNOP(opcode uint32) (Instruction, error) {
	fields, err := bitfield.Match(nopFormat32, opcode, 32)
	if err != nil {
		return nil, errUnsupported
	}

	countVal, _ := fields.Get("count")
	count, _ := countVal.AsU8()

	return &NOP{
		common: common{opcode: opcode, pBit: pBitOf(fields)},
		Count:  count,
		Idle:   count == 0b1111,
	}, nil
}

// Compact NOP: fixed 13-bit prefix 0xC6E, 3-bit count. IDLE is unreachable
// here since the field is only 3 bits wide.
var nopFormatCompact = bitfield.Format{
	bitfield.Match{Size: 13, Value: 0xC6E},
	bitfield.Unsigned{Size: 3, Name: "count"},
}

// NewNOPCompact decodes the 16-bit NOP format.
func NewNOPCompact(opcode uint16) (Instruction, error) {
	fields, err := bitfield.Match(nopFormatCompact, uint32(opcode), 16)
	if err != nil {
		return nil, errUnsupported
	}

	countVal, _ := fields.Get("count")
	count, _ := countVal.AsU8()

	return &NOP{
		common: common{opcode: uint32(opcode), compact: true},
		Count:  count,
	}, nil
}
