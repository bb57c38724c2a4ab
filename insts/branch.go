package insts

import (
	"fmt"

	"github.com/sarchlab/c64xplusdis/bitfield"
	"github.com/sarchlab/c64xplusdis/regs"
)

// Branch is a decoded branch/BNOP/CALLP instruction.
type Branch struct {
	common

	Displacement  int32
	Register      regs.Register
	HasRegister   bool
	NopCount      uint8
	PointerOp     string // "IRP" or "NRP", when this is a pointer branch
	Unit          regs.Unit
	Side          bool
	CrossPath     bool
	PCE1Address   uint32
	PCE1Patched   bool
}

// PatchPCE1 records the packet's base address so Operands can render an
// absolute target. The packet decoder calls this on every Branch after a
// packet decodes successfully.
func (b *Branch) PatchPCE1(base uint32) {
	b.PCE1Address = base
	b.PCE1Patched = true
}

// Mnemonic follows spec's selection: CALLP if predicate is ReservedLow,
// else BNOP if a nop count is present, else B; suffixed with the unit side,
// plus a cross-path "X" when a register operand crosses sides.
func (b *Branch) Mnemonic() string {
	name := "B"
	if b.predicate != nil && b.predicate.IsReserved() && *b.predicate == regs.ReservedLow {
		name = "CALLP"
	} else if b.NopCount > 0 {
		name = "BNOP"
	}

	suffix := regs.UnitS.SidedString(b.Side)
	if b.HasRegister && b.CrossPath {
		suffix += "X"
	}
	return name + "." + suffix
}

// Operands renders the branch target (register operand, IRP/NRP pointer, or
// PCE1-relative address), plus a
// CALLP return register or BNOP cycle count where applicable.
func (b *Branch) Operands() string {
	var base string
	if b.HasRegister {
		base = b.Register.String()
	} else if b.PointerOp != "" {
		base = b.PointerOp
	} else {
		target := b.PCE1Address
		if b.Displacement >= 0 {
			target += uint32(b.Displacement)
		} else {
			target -= uint32(-b.Displacement)
		}
		sign := "+"
		mag := b.Displacement
		if mag < 0 {
			sign = "-"
			mag = -mag
		}
		base = fmt.Sprintf("0x%x (PCE1%s0x%x)", target, sign, mag)
	}

	if b.predicate != nil && b.predicate.IsReserved() && *b.predicate == regs.ReservedLow {
		return base + ", " + regs.FromScalar(3, b.Side).String()
	}
	if b.NopCount > 0 {
		return fmt.Sprintf("%s, %d", base, b.NopCount)
	}
	return base
}

const (
	branchSPMask           = 0b100
	branchRegisterPrefix   = 0xD8
	branchPointerPrefix    = 0x71
	branchBNOPDispPrefix   = 0x48
)

var branchDispFormat = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.Bit{Name: "s"},
	bitfield.Match{Size: 3, Value: branchSPMask},
	bitfield.Signed{Size: 21, Name: "disp"},
	bitfield.Match{Size: 2, Value: 0},
})

// BNOP-with-register must be tried before the general register branch since
// both share the 0xD8 prefix and this one additionally requires s=1.
var branchBNOPRegisterFormat = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.BitMatch{Name: "s", Value: true},
	bitfield.Match{Size: 10, Value: branchRegisterPrefix},
	bitfield.Unsigned{Size: 3, Name: "nop"},
	bitfield.RegisterField{Size: 5, Name: "src"},
	bitfield.Match{Size: 8, Value: 0},
})

var branchRegisterFormat = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.Bit{Name: "s"},
	bitfield.Match{Size: 10, Value: branchRegisterPrefix},
	bitfield.Bit{Name: "x"},
	bitfield.RegisterCrosspath{Size: 5, Name: "src"},
	bitfield.Match{Size: 10, Value: 0},
})

var branchPointerFormat = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.Bit{Name: "s"},
	bitfield.Match{Size: 7, Value: branchPointerPrefix},
	bitfield.Unsigned{Size: 3, Name: "op"},
	bitfield.Match{Size: 16, Value: 0},
})

var branchBNOPDispFormat = appendPredicate(bitfield.Format{
	bitfield.Bit{Name: "p"},
	bitfield.Bit{Name: "s"},
	bitfield.Match{Size: 7, Value: branchBNOPDispPrefix},
	bitfield.Signed{Size: 12, Name: "disp"},
	bitfield.Unsigned{Size: 3, Name: "nop"},
	bitfield.Match{Size: 4, Value: 0},
})

// NewBranch tries the five 32-bit branch formats in order.
func NewBranch(opcode uint32) (Instruction, error) {
	if fields, err := bitfield.Match(branchDispFormat, opcode, 32); err == nil {
		return buildBranchDisp(opcode, fields, false)
	}
	if fields, err := bitfield.Match(branchBNOPRegisterFormat, opcode, 32); err == nil {
		return buildBranchRegister(opcode, fields, true)
	}
	if fields, err := bitfield.Match(branchRegisterFormat, opcode, 32); err == nil {
		return buildBranchRegister(opcode, fields, false)
	}
	if fields, err := bitfield.Match(branchPointerFormat, opcode, 32); err == nil {
		return buildBranchPointer(opcode, fields)
	}
	if fields, err := bitfield.Match(branchBNOPDispFormat, opcode, 32); err == nil {
		return buildBranchDisp(opcode, fields, true)
	}
	return nil, errUnsupported
}

func sideOf(fields bitfield.Fields) bool {
	return fields.GetBoolOr("s", false)
}

func displacementShift(hasNop, fpheadActive bool) uint {
	if hasNop && fpheadActive {
		return 1
	}
	return 2
}

func buildBranchDisp(opcode uint32, fields bitfield.Fields, isBNOP bool) (Instruction, error) {
	dispVal, err := fields.Get("disp")
	if err != nil {
		return nil, errOther
	}
	disp, _ := dispVal.AsI32()

	var nopCount uint8
	if isBNOP {
		nopVal, _ := fields.Get("nop")
		nopCount, _ = nopVal.AsU8()
	}

	// Outside a packet context there is no active fphead, so the shift is
	// always 2; the packet decoder re-derives displacement shift itself
	// when an fphead is present (see disasm package).
	shift := displacementShift(isBNOP, false)

	return &Branch{
		common: common{
			opcode:    opcode,
			pBit:      pBitOf(fields),
			predicate: predicateOf(fields),
		},
		Displacement: disp << shift,
		NopCount:     nopCount,
		Unit:         regs.UnitS,
		Side:         sideOf(fields),
	}, nil
}

func buildBranchRegister(opcode uint32, fields bitfield.Fields, isBNOP bool) (Instruction, error) {
	srcVal, err := fields.Get("src")
	if err != nil {
		return nil, errOther
	}
	src, _ := srcVal.AsRegister()

	side := sideOf(fields)
	cross := src.Side() != side

	var nopCount uint8
	if isBNOP {
		nopVal, _ := fields.Get("nop")
		nopCount, _ = nopVal.AsU8()
	}

	return &Branch{
		common: common{
			opcode:    opcode,
			pBit:      pBitOf(fields),
			predicate: predicateOf(fields),
		},
		Register:    src,
		HasRegister: true,
		NopCount:    nopCount,
		Unit:        regs.UnitS,
		Side:        side,
		CrossPath:   cross,
	}, nil
}

func buildBranchPointer(opcode uint32, fields bitfield.Fields) (Instruction, error) {
	opVal, err := fields.Get("op")
	if err != nil {
		return nil, errOther
	}
	op, _ := opVal.AsU8()

	name := "?"
	switch op {
	case 0b110:
		name = "IRP"
	case 0b111:
		name = "NRP"
	default:
		return nil, errUnsupported
	}

	return &Branch{
		common: common{
			opcode:    opcode,
			pBit:      pBitOf(fields),
			predicate: predicateOf(fields),
		},
		PointerOp: name,
		Unit:      regs.UnitS,
		Side:      sideOf(fields),
	}, nil
}

// --- Compact branch formats ---
//
// Decoded only when the enclosing fphead's DecodeCompactBranches is true;
// the dispatcher's compact trial checks this before calling NewBranchCompact.

const (
	tagSBS7  = 0b000001
	tagSBU8  = 0b00001
	tagSCS10 = 0b000010
	tagSBS7C = 0b0001
	tagSBU8C = 0b000011
	tagSX1B  = 0b000000111100
)

var compactBranchSBS7 = bitfield.Format{
	bitfield.Match{Size: 6, Value: tagSBS7},
	bitfield.Signed{Size: 7, Name: "disp"},
	bitfield.Unsigned{Size: 3, Name: "nop"},
}

var compactBranchSBU8 = bitfield.Format{
	bitfield.Match{Size: 5, Value: tagSBU8},
	bitfield.Unsigned{Size: 8, Name: "disp"},
	bitfield.Match{Size: 3, Value: 0b111},
}

var compactBranchSCS10 = bitfield.Format{
	bitfield.Match{Size: 6, Value: tagSCS10},
	bitfield.Signed{Size: 10, Name: "disp"},
}

var compactBranchSBS7C = bitfield.Format{
	bitfield.Match{Size: 4, Value: tagSBS7C},
	bitfield.Bit{Name: "s"},
	bitfield.Bit{Name: "z"},
	bitfield.Signed{Size: 7, Name: "disp"},
	bitfield.Unsigned{Size: 3, Name: "nop"},
}

var compactBranchSBU8C = bitfield.Format{
	bitfield.Match{Size: 6, Value: tagSBU8C},
	bitfield.Bit{Name: "s"},
	bitfield.Bit{Name: "z"},
	bitfield.Unsigned{Size: 8, Name: "disp"},
}

var compactBranchSX1B = bitfield.Format{
	bitfield.Match{Size: 12, Value: tagSX1B},
	bitfield.Unsigned{Size: 4, Name: "reg"},
}

// NewBranchCompact decodes one of the six compact branch formats. Callers
// (the dispatcher) must only invoke this when the active fphead's
// DecodeCompactBranches is set.
func NewBranchCompact(opcode uint16, fpheadActive bool) (Instruction, error) {
	opcode32 := uint32(opcode)

	if fields, err := bitfield.Match(compactBranchSBS7C, opcode32, 16); err == nil {
		return buildCompactBranchConditional(opcode, fields, true)
	}
	if fields, err := bitfield.Match(compactBranchSBU8C, opcode32, 16); err == nil {
		return buildCompactBranchConditional(opcode, fields, false)
	}
	if fields, err := bitfield.Match(compactBranchSBS7, opcode32, 16); err == nil {
		return buildCompactBranchPlain(opcode, fields, true, fpheadActive)
	}
	if fields, err := bitfield.Match(compactBranchSBU8, opcode32, 16); err == nil {
		return buildCompactBranchPlain(opcode, fields, false, fpheadActive)
	}
	if fields, err := bitfield.Match(compactBranchSCS10, opcode32, 16); err == nil {
		return buildCompactBranchCALLP(opcode, fields)
	}
	if fields, err := bitfield.Match(compactBranchSX1B, opcode32, 16); err == nil {
		return buildCompactBranchRegister(opcode, fields)
	}

	return nil, errUnsupported
}

func nopOrDefault(fields bitfield.Fields) uint8 {
	v, err := fields.Get("nop")
	if err != nil {
		return 5
	}
	n, _ := v.AsU8()
	if n > 5 {
		return 5
	}
	return n
}

func buildCompactBranchPlain(opcode uint16, fields bitfield.Fields, hasNop, fpheadActive bool) (Instruction, error) {
	dispVal, err := fields.Get("disp")
	if err != nil {
		return nil, errOther
	}
	disp, _ := dispVal.AsI32()

	shift := displacementShift(hasNop, fpheadActive)

	return &Branch{
		common:       common{opcode: uint32(opcode), compact: true},
		Displacement: disp << shift,
		NopCount:     nopOrDefault(fields),
		Unit:         regs.UnitS,
	}, nil
}

func buildCompactBranchConditional(opcode uint16, fields bitfield.Fields, hasNop bool) (Instruction, error) {
	dispVal, err := fields.Get("disp")
	if err != nil {
		return nil, errOther
	}
	disp, _ := dispVal.AsI32()

	side := fields.GetBoolOr("s", false)
	zVal, _ := fields.Get("z")
	z, _ := zVal.AsBool()

	var predicate regs.ConditionalOperation
	if z {
		predicate = regs.Zero(regs.FromScalar(0, side))
	} else {
		predicate = regs.NonZero(regs.FromScalar(0, side))
	}

	shift := displacementShift(hasNop, true)

	return &Branch{
		common: common{
			opcode:    uint32(opcode),
			compact:   true,
			predicate: &predicate,
		},
		Displacement: disp << shift,
		NopCount:     nopOrDefault(fields),
		Unit:         regs.UnitS,
		Side:         side,
	}, nil
}

func buildCompactBranchCALLP(opcode uint16, fields bitfield.Fields) (Instruction, error) {
	dispVal, err := fields.Get("disp")
	if err != nil {
		return nil, errOther
	}
	disp, _ := dispVal.AsI32()

	predicate := regs.ReservedLow

	return &Branch{
		common: common{
			opcode:    uint32(opcode),
			compact:   true,
			predicate: &predicate,
		},
		Displacement: disp << 2,
		Unit:         regs.UnitS,
	}, nil
}

func buildCompactBranchRegister(opcode uint16, fields bitfield.Fields) (Instruction, error) {
	regVal, err := fields.Get("reg")
	if err != nil {
		return nil, errOther
	}
	idx, _ := regVal.AsU8()

	return &Branch{
		common:      common{opcode: uint32(opcode), compact: true},
		Register:    regs.FromScalar(idx, true),
		HasRegister: true,
		Unit:        regs.UnitS,
		Side:        true,
	}, nil
}
