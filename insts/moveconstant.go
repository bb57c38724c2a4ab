package insts

import (
	"github.com/sarchlab/c64xplusdis/bitfield"
	"github.com/sarchlab/c64xplusdis/regs"
)

// MoveConstant is a decoded MVK/MVKH instruction: load an immediate into a
// destination register, optionally into the high halfword.
type MoveConstant struct {
	common
	High        bool
	Constant    uint32
	Destination regs.Register
	Unit        regs.Unit
}

// Mnemonic renders e.g. "MVK.S1" or "MVKH.L2".
func (m *MoveConstant) Mnemonic() string {
	base := "MVK"
	if m.High {
		base = "MVKH"
	}
	return base + "." + m.Unit.SidedString(m.Destination.Side())
}

// Operands renders e.g. "0x1234, A3".
func (m *MoveConstant) Operands() string {
	return hex32(m.Constant) + ", " + m.Destination.String()
}

// The 32-bit S-unit format is p(1) s(1) tag(4) h(1) cst(16) dst(5)
// predicate(4) = 32 bits; the L/D formats share p, s and the tag position.
// The tag values below are this module's own disambiguating prefixes (the
// spec's prose gives field names and shapes, not a literal encoding table);
// see DESIGN.md.
const (
	tagMoveConstantS = 0b1010
	tagMoveConstantL = 0b1011
	tagMoveConstantD = 0b1100
)

// The L/D 32-bit formats use a 5-bit constant, not 16, per spec: cst(5)
// dst(5) reserved(12) between the tag and the predicate.
func moveConstantFormatLD32(tag uint32) bitfield.Format {
	return bitfield.Format{
		bitfield.Bit{Name: "p"},
		bitfield.Bit{Name: "s"},
		bitfield.Match{Size: 4, Value: tag},
		bitfield.Unsigned{Size: 5, Name: "cst"},
		bitfield.Unsigned{Size: 5, Name: "dst"},
		bitfield.Match{Size: 12, Value: 0},
	}
}

var moveConstantFormatS32 = bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.Bit{Name: "s"},
	bitfield.Match{Size: 4, Value: tagMoveConstantS},
	bitfield.Bit{Name: "h"},
	bitfield.Unsigned{Size: 16, Name: "cst"},
	bitfield.Unsigned{Size: 5, Name: "dst"},
}

var moveConstantFormatL32 = moveConstantFormatLD32(tagMoveConstantL)
var moveConstantFormatD32 = moveConstantFormatLD32(tagMoveConstantD)

// moveConstantFull32Formats pairs each full-32-bit format with its unit, in
// dispatch order (S, L, D per spec).
var moveConstantFull32Formats = []struct {
	format bitfield.Format
	unit   regs.Unit
}{
	{appendPredicate(moveConstantFormatS32), regs.UnitS},
	{appendPredicate(moveConstantFormatL32), regs.UnitL},
	{appendPredicate(moveConstantFormatD32), regs.UnitD},
}

func appendPredicate(f bitfield.Format) bitfield.Format {
	out := make(bitfield.Format, len(f), len(f)+1)
	copy(out, f)
	return append(out, bitfield.ConditionalOperationField{Name: "predicate"})
}

// NewMoveConstant tries the three 32-bit single-unit MVK/MVKH formats.
func NewMoveConstant(opcode uint32) (Instruction, error) {
	for _, candidate := range moveConstantFull32Formats {
		fields, err := bitfield.Match(candidate.format, opcode, 32)
		if err != nil {
			continue
		}
		return buildMoveConstant(opcode, false, fields, candidate.unit)
	}
	return nil, errUnsupported
}

func buildMoveConstant(opcode uint32, compact bool, fields bitfield.Fields, unit regs.Unit) (Instruction, error) {
	p, _ := fields.Get("p")
	pBit, _ := p.AsBool()

	s, err := fields.Get("s")
	side := false
	if err == nil {
		side, _ = s.AsBool()
	}

	cstVal, err := fields.Get("cst")
	if err != nil {
		return nil, errOther
	}
	cst, _ := cstVal.AsU32()

	dstVal, err := fields.Get("dst")
	if err != nil {
		return nil, errOther
	}
	dstIdx, _ := dstVal.AsU8()

	high := false
	if hv, err := fields.Get("h"); err == nil {
		high, _ = hv.AsBool()
	}

	var predicate *regs.ConditionalOperation
	if pv, err := fields.Get("predicate"); err == nil {
		predicate, _ = pv.AsConditional()
	}

	return &MoveConstant{
		common: common{
			opcode:    opcode,
			compact:   compact,
			pBit:      pBit,
			predicate: predicate,
		},
		High:        high,
		Constant:    cst,
		Destination: regs.FromScalar(dstIdx, side),
		Unit:        unit,
	}, nil
}

// Compact single-unit S/L forms: the constant is split across four
// subfields and reassembled per spec's formula
// cst = cst20 | (cst43<<3) | (cst65<<5) | (cst7<<7).
func moveConstantCompactFormat(tag uint32, tagSize uint) bitfield.Format {
	return bitfield.Format{
		bitfield.Bit{Name: "s"},
		bitfield.Unsigned{Size: 3, Name: "cst20"},
		bitfield.Unsigned{Size: 2, Name: "cst43"},
		bitfield.Unsigned{Size: 2, Name: "cst65"},
		bitfield.Unsigned{Size: 1, Name: "cst7"},
		bitfield.Unsigned{Size: 4, Name: "dst"},
		bitfield.Match{Size: tagSize, Value: tag},
	}
}

const (
	tagMoveConstantCompactS = 0b100
	tagMoveConstantCompactL = 0b101
)

var moveConstantCompactS = moveConstantCompactFormat(tagMoveConstantCompactS, 3)
var moveConstantCompactL = moveConstantCompactFormat(tagMoveConstantCompactL, 3)

// moveConstantCompactMulti selects its unit via LSDUnit and carries an
// optional 2-bit condition code per spec (0->NZ(A0),1->Z(A0),2->NZ(B0),3->Z(B0)).
// A 2-bit tag disambiguates this format from the other compact families
// that would otherwise also satisfy an untagged 16-bit layout.
const tagMoveConstantCompactMulti = 0b11

var moveConstantCompactMulti = bitfield.Format{
	bitfield.LSDUnit{Name: "unit"},
	bitfield.Match{Size: 2, Value: tagMoveConstantCompactMulti},
	bitfield.Unsigned{Size: 6, Name: "cst"},
	bitfield.Unsigned{Size: 4, Name: "dst"},
	bitfield.Unsigned{Size: 2, Name: "cc"},
}

func ccToPredicate(cc uint8) *regs.ConditionalOperation {
	var v regs.ConditionalOperation
	switch cc {
	case 0:
		v = regs.NonZero(regs.FromScalar(0, false))
	case 1:
		v = regs.Zero(regs.FromScalar(0, false))
	case 2:
		v = regs.NonZero(regs.FromScalar(0, true))
	default:
		v = regs.Zero(regs.FromScalar(0, true))
	}
	return &v
}

func reassembleCompactConstant(fields bitfield.Fields) uint32 {
	get := func(name string) uint32 {
		v, err := fields.Get(name)
		if err != nil {
			return 0
		}
		u, _ := v.AsU32()
		return u
	}
	return get("cst20") | (get("cst43") << 3) | (get("cst65") << 5) | (get("cst7") << 7)
}

// NewMoveConstantCompact tries the single-unit split-field S/L forms, then
// the multi-unit LSDUnit-selected form.
func NewMoveConstantCompact(opcode uint16) (Instruction, error) {
	opcode32 := uint32(opcode)

	if fields, err := bitfield.Match(moveConstantCompactS, opcode32, 16); err == nil {
		return buildMoveConstantCompactSplit(opcode, fields, regs.UnitS)
	}
	if fields, err := bitfield.Match(moveConstantCompactL, opcode32, 16); err == nil {
		return buildMoveConstantCompactSplit(opcode, fields, regs.UnitL)
	}
	if fields, err := bitfield.Match(moveConstantCompactMulti, opcode32, 16); err == nil {
		return buildMoveConstantCompactMulti(opcode, fields)
	}

	return nil, errUnsupported
}

func buildMoveConstantCompactSplit(opcode uint16, fields bitfield.Fields, unit regs.Unit) (Instruction, error) {
	s, _ := fields.Get("s")
	side, _ := s.AsBool()

	dstVal, _ := fields.Get("dst")
	dstIdx, _ := dstVal.AsU8()

	return &MoveConstant{
		common: common{
			opcode:  uint32(opcode),
			compact: true,
		},
		Constant:    reassembleCompactConstant(fields),
		Destination: regs.FromScalar(dstIdx, side),
		Unit:        unit,
	}, nil
}

func buildMoveConstantCompactMulti(opcode uint16, fields bitfield.Fields) (Instruction, error) {
	unitVal, _ := fields.Get("unit")
	unit, _ := unitVal.AsUnit()

	dstVal, _ := fields.Get("dst")
	dstIdx, _ := dstVal.AsU8()

	cstVal, _ := fields.Get("cst")
	cst, _ := cstVal.AsU32()

	ccVal, _ := fields.Get("cc")
	cc, _ := ccVal.AsU8()

	side := cc == 2 || cc == 3
	predicate := ccToPredicate(cc)

	return &MoveConstant{
		common: common{
			opcode:    uint32(opcode),
			compact:   true,
			predicate: predicate,
		},
		Constant:    cst,
		Destination: regs.FromScalar(dstIdx, side),
		Unit:        unit,
	}, nil
}
