package insts

import (
	"github.com/sarchlab/c64xplusdis/bitfield"
	"github.com/sarchlab/c64xplusdis/regs"
)

// CompactInstructionHeader is the trailing word of a fetch packet that
// switches some of its 32-bit slots to pairs of 16-bit compact instructions
// and carries mode bits those compact instructions decode against.
type CompactInstructionHeader struct {
	common

	Layout                [7]bool
	LoadsProtected        bool
	RegisterSet           bool
	PrimaryDataSize       regs.DataSize
	SecondaryDataSize     regs.DataSize
	DecodeCompactBranches bool
	Saturate              bool
	CompactPBits          [14]bool
}

// Mnemonic has no real-world analogue and is empty; ReadPacket still returns
// the header as the packet's last instruction, so it is listed with a blank
// mnemonic.
func (h *CompactInstructionHeader) Mnemonic() string { return "" }

// Operands is empty; see Mnemonic.
func (h *CompactInstructionHeader) Operands() string { return "" }

const fpheadTag = 0b1110

// fpheadFormat: 14 p-bits, SAT(1), BR(1), DSZ_1(2), DSZ_2(1), RS(1),
// PROT(1), layout(7), fixed tag 0b1110 in the top 4 bits. 14+1+1+2+1+1+1+7+4=32.
var fpheadFormat = bitfield.Format{
	bitfield.BitArray{Size: 14, Name: "pbits"},
	bitfield.Bit{Name: "sat"},
	bitfield.Bit{Name: "br"},
	bitfield.Unsigned{Size: 2, Name: "dsz1"},
	bitfield.Bit{Name: "dsz2"},
	bitfield.Bit{Name: "rs"},
	bitfield.Bit{Name: "prot"},
	bitfield.BitArray{Size: 7, Name: "layout"},
	bitfield.Match{Size: 4, Value: fpheadTag},
}

var secondaryWhenDoubleWord = [4]regs.DataSize{regs.SizeWord, regs.SizeByte, regs.SizeNonAlignedWord, regs.SizeHalfWord}
var secondaryWhenWord = [4]regs.DataSize{regs.SizeByteUnsigned, regs.SizeByte, regs.SizeHalfWordUnsigned, regs.SizeHalfWord}

// NewCompactInstructionHeader decodes the fixed-position fphead format.
func NewCompactInstructionHeader(opcode uint32) (Instruction, error) {
	fields, err := bitfield.Match(fpheadFormat, opcode, 32)
	if err != nil {
		return nil, errUnsupported
	}

	layoutVal, _ := fields.Get("layout")
	layoutBits, _ := layoutVal.AsBoolSeq()
	var layout [7]bool
	copy(layout[:], layoutBits)

	pbitsVal, _ := fields.Get("pbits")
	pbits, _ := pbitsVal.AsBoolSeq()
	var compactPBits [14]bool
	copy(compactPBits[:], pbits)

	satVal, _ := fields.Get("sat")
	sat, _ := satVal.AsBool()
	brVal, _ := fields.Get("br")
	br, _ := brVal.AsBool()
	dsz2Val, _ := fields.Get("dsz2")
	dsz2, _ := dsz2Val.AsBool()
	dsz1Val, _ := fields.Get("dsz1")
	dsz1, _ := dsz1Val.AsU8()
	rsVal, _ := fields.Get("rs")
	rs, _ := rsVal.AsBool()
	protVal, _ := fields.Get("prot")
	prot, _ := protVal.AsBool()

	var primary, secondary regs.DataSize
	if dsz2 {
		primary = regs.SizeDoubleWord
		secondary = secondaryWhenDoubleWord[dsz1]
	} else {
		primary = regs.SizeWord
		secondary = secondaryWhenWord[dsz1]
	}

	return &CompactInstructionHeader{
		common:                common{opcode: opcode},
		Layout:                layout,
		LoadsProtected:        prot,
		RegisterSet:           rs,
		PrimaryDataSize:       primary,
		SecondaryDataSize:     secondary,
		DecodeCompactBranches: br,
		Saturate:              sat,
		CompactPBits:          compactPBits,
	}, nil
}
