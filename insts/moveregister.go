package insts

import (
	"github.com/sarchlab/c64xplusdis/bitfield"
	"github.com/sarchlab/c64xplusdis/regs"
)

// MoveRegister is a decoded MV/MVD (register-to-register), MV register-pair,
// or MVC (control-register move) instruction.
type MoveRegister struct {
	common
	Source      regs.RegisterFile
	Destination regs.RegisterFile
	Unit        regs.Unit
	IsPair      bool
	IsControl   bool
	Delayed     bool
	Side        bool
	CrossPath   bool
}

// Mnemonic renders "MV"/"MVD" or "MVC" plus its unit suffix; the pair form
// and the control-register form have no unit suffix, matching spec's
// rendering rule. MVD is used instead of MV when the move is delayed
// (M-unit); a cross-path "X" is appended when either operand's actual side
// differs from the instruction's own announced side.
func (m *MoveRegister) Mnemonic() string {
	if m.IsControl {
		return "MVC"
	}
	if m.IsPair {
		return "MV"
	}

	name := "MV"
	if m.Delayed {
		name = "MVD"
	}

	suffix := m.Unit.SidedString(m.Side)
	if m.CrossPath {
		suffix += "X"
	}
	return name + "." + suffix
}

// Operands renders "src, dst".
func (m *MoveRegister) Operands() string {
	return m.Source.String() + ", " + m.Destination.String()
}

const (
	tagMoveRegisterS = 0b0001
	tagMoveRegisterL = 0b0010
	tagMoveRegisterD = 0b0011
	tagMoveRegisterM = 0b0100

	mvRegisterPairPrefix = 0x106

	// MVC tags are 5 bits wide; their low 4 bits avoid the MV unit tags
	// (1..4), the pair prefix and the MVK tags so neither form shadows MVC.
	tagMVCtoControlPlain  = 0b00111
	tagMVCtoControlCrhi   = 0b01001
	tagMVCfromControlPlain = 0b01101
	tagMVCfromControlCrhi  = 0b00101
)

func moveRegisterFormat(tag uint32) bitfield.Format {
	return appendPredicate(bitfield.Format{
		bitfield.Bit{Name: "p"},
		bitfield.Bit{Name: "s"},
		bitfield.Match{Size: 4, Value: tag},
		bitfield.RegisterField{Size: 5, Name: "src"},
		bitfield.RegisterField{Size: 5, Name: "dst"},
		bitfield.Match{Size: 12, Value: 0},
	})
}

var moveRegisterFormats = []struct {
	format bitfield.Format
	unit   regs.Unit
}{
	{moveRegisterFormat(tagMoveRegisterS), regs.UnitS},
	{moveRegisterFormat(tagMoveRegisterL), regs.UnitL},
	{moveRegisterFormat(tagMoveRegisterD), regs.UnitD},
	{moveRegisterFormat(tagMoveRegisterM), regs.UnitM},
}

var moveRegisterPairFormat = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.Bit{Name: "s"},
	bitfield.Match{Size: 16, Value: mvRegisterPairPrefix},
	bitfield.RegisterPair{Size: 5, Name: "src"},
	bitfield.RegisterPair{Size: 5, Name: "dst"},
})

var mvcToControlPlain = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.BitMatch{Name: "s", Value: true},
	bitfield.Match{Size: 5, Value: tagMVCtoControlPlain},
	bitfield.RegisterField{Size: 5, Name: "src"},
	bitfield.ControlRegisterField{Size: 5, Name: "cr"},
	bitfield.Match{Size: 11, Value: 0},
})

var mvcToControlCrhi = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.BitMatch{Name: "s", Value: true},
	bitfield.Match{Size: 5, Value: tagMVCtoControlCrhi},
	bitfield.RegisterField{Size: 5, Name: "src"},
	bitfield.Unsigned{Size: 5, Name: "crhi"},
	bitfield.ControlRegisterField{Size: 5, Name: "cr"},
	bitfield.Match{Size: 6, Value: 0},
})

var mvcFromControlPlain = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.BitMatch{Name: "s", Value: true},
	bitfield.Match{Size: 5, Value: tagMVCfromControlPlain},
	bitfield.ControlRegisterField{Size: 5, Name: "cr"},
	bitfield.RegisterField{Size: 5, Name: "dst"},
	bitfield.Match{Size: 11, Value: 0},
})

var mvcFromControlCrhi = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.BitMatch{Name: "s", Value: true},
	bitfield.Match{Size: 5, Value: tagMVCfromControlCrhi},
	bitfield.Unsigned{Size: 5, Name: "crhi"},
	bitfield.ControlRegisterField{Size: 5, Name: "cr"},
	bitfield.RegisterField{Size: 5, Name: "dst"},
	bitfield.Match{Size: 6, Value: 0},
})

// NewMoveRegister tries the four unit variants, then the register-pair form,
// then the four MVC variants, in that order.
func NewMoveRegister(opcode uint32) (Instruction, error) {
	for _, candidate := range moveRegisterFormats {
		if fields, err := bitfield.Match(candidate.format, opcode, 32); err == nil {
			return buildMoveRegister(opcode, fields, candidate.unit)
		}
	}

	if fields, err := bitfield.Match(moveRegisterPairFormat, opcode, 32); err == nil {
		return buildMoveRegisterPair(opcode, fields)
	}

	for _, format := range []bitfield.Format{mvcToControlPlain, mvcToControlCrhi, mvcFromControlPlain, mvcFromControlCrhi} {
		if fields, err := bitfield.Match(format, opcode, 32); err == nil {
			return buildMVC(opcode, fields)
		}
	}

	return nil, errUnsupported
}

func predicateOf(fields bitfield.Fields) *regs.ConditionalOperation {
	if pv, err := fields.Get("predicate"); err == nil {
		cond, _ := pv.AsConditional()
		return cond
	}
	return nil
}

func pBitOf(fields bitfield.Fields) bool {
	v, err := fields.Get("p")
	if err != nil {
		return false
	}
	b, _ := v.AsBool()
	return b
}

func buildMoveRegister(opcode uint32, fields bitfield.Fields, unit regs.Unit) (Instruction, error) {
	srcVal, err := fields.Get("src")
	if err != nil {
		return nil, errOther
	}
	src, _ := srcVal.AsRegister()

	dstVal, err := fields.Get("dst")
	if err != nil {
		return nil, errOther
	}
	dst, _ := dstVal.AsRegister()

	side := sideOf(fields)
	cross := src.Side() != side || dst.Side() != side

	return &MoveRegister{
		common: common{
			opcode:    opcode,
			pBit:      pBitOf(fields),
			predicate: predicateOf(fields),
		},
		Source:      regs.NewRegisterFileGP(src),
		Destination: regs.NewRegisterFileGP(dst),
		Unit:        unit,
		Delayed:     unit == regs.UnitM,
		Side:        side,
		CrossPath:   cross,
	}, nil
}

func buildMoveRegisterPair(opcode uint32, fields bitfield.Fields) (Instruction, error) {
	srcVal, err := fields.Get("src")
	if err != nil {
		return nil, errOther
	}
	src, _ := srcVal.AsRegister()

	dstVal, err := fields.Get("dst")
	if err != nil {
		return nil, errOther
	}
	dst, _ := dstVal.AsRegister()

	return &MoveRegister{
		common: common{
			opcode:    opcode,
			pBit:      pBitOf(fields),
			predicate: predicateOf(fields),
		},
		Source:      regs.NewRegisterFileGP(src),
		Destination: regs.NewRegisterFileGP(dst),
		Unit:        regs.UnitL,
		IsPair:      true,
	}, nil
}

func buildMVC(opcode uint32, fields bitfield.Fields) (Instruction, error) {
	crVal, err := fields.Get("cr")
	if err != nil {
		return nil, errOther
	}
	cr, _ := crVal.AsControlRegister()

	var gp regs.Register
	toControl := false
	if srcVal, err := fields.Get("src"); err == nil {
		gp, _ = srcVal.AsRegister()
		toControl = true
	} else if dstVal, err := fields.Get("dst"); err == nil {
		gp, _ = dstVal.AsRegister()
	} else {
		return nil, errOther
	}

	var source, dest regs.RegisterFile
	if toControl {
		source = regs.NewRegisterFileGP(gp)
		dest = regs.NewRegisterFileControl(cr)
	} else {
		source = regs.NewRegisterFileControl(cr)
		dest = regs.NewRegisterFileGP(gp)
	}

	return &MoveRegister{
		common: common{
			opcode:    opcode,
			pBit:      pBitOf(fields),
			predicate: predicateOf(fields),
		},
		Source:      source,
		Destination: dest,
		IsControl:   true,
	}, nil
}

// Compact MV: LSDUnit(2) src(3) dst(3) ms_bit(1) ms(1) x(1) reserved(5) = 16
// bits. ms is folded into whichever of src/dst ms_bit selects, per spec's
// formula reg += ms<<3. When the crosspath bit is set, the source register
// is complemented (A<->B) before use.
var moveRegisterCompactFormat = bitfield.Format{
	bitfield.LSDUnit{Name: "unit"},
	bitfield.Unsigned{Size: 3, Name: "src"},
	bitfield.Unsigned{Size: 3, Name: "dst"},
	bitfield.Bit{Name: "ms_bit"},
	bitfield.Unsigned{Size: 1, Name: "ms"},
	bitfield.Bit{Name: "x"},
	bitfield.Match{Size: 5, Value: 0},
}

// NewMoveRegisterCompact decodes the 16-bit MV form.
func NewMoveRegisterCompact(opcode uint16) (Instruction, error) {
	fields, err := bitfield.Match(moveRegisterCompactFormat, uint32(opcode), 16)
	if err != nil {
		return nil, errUnsupported
	}

	unitVal, _ := fields.Get("unit")
	unit, _ := unitVal.AsUnit()

	srcVal, _ := fields.Get("src")
	srcIdx, _ := srcVal.AsU8()
	dstVal, _ := fields.Get("dst")
	dstIdx, _ := dstVal.AsU8()

	msBitVal, _ := fields.Get("ms_bit")
	msBit, _ := msBitVal.AsBool()
	msVal, _ := fields.Get("ms")
	ms, _ := msVal.AsU8()

	if msBit {
		dstIdx += ms << 3
	} else {
		srcIdx += ms << 3
	}

	src := regs.FromScalar(srcIdx, false)
	dst := regs.FromScalar(dstIdx, false)

	xVal, _ := fields.Get("x")
	x, _ := xVal.AsBool()
	if x {
		src = src.Not()
	}

	side := dst.Side()

	return &MoveRegister{
		common: common{
			opcode:  uint32(opcode),
			compact: true,
		},
		Source:      regs.NewRegisterFileGP(src),
		Destination: regs.NewRegisterFileGP(dst),
		Unit:        unit,
		Side:        side,
		CrossPath:   src.Side() != side,
	}, nil
}

// Compact MVC is side-B-fixed: source GP register to the ILC control
// register. tag(10) s(=1,1) src(5) = 16 bits.
var moveRegisterCompactMVCFormat = bitfield.Format{
	bitfield.Match{Size: 10, Value: 0b0110110110},
	bitfield.BitMatch{Name: "s", Value: true},
	bitfield.RegisterField{Size: 5, Name: "src"},
}

// NewMVCCompact decodes the 16-bit source-to-ILC MVC form.
func NewMVCCompact(opcode uint16) (Instruction, error) {
	fields, err := bitfield.Match(moveRegisterCompactMVCFormat, uint32(opcode), 16)
	if err != nil {
		return nil, errUnsupported
	}

	srcVal, _ := fields.Get("src")
	src, _ := srcVal.AsRegister()

	return &MoveRegister{
		common: common{
			opcode:  uint32(opcode),
			compact: true,
		},
		Source:      regs.NewRegisterFileGP(src),
		Destination: regs.NewRegisterFileControl(regs.CRILC),
		IsControl:   true,
	}, nil
}
