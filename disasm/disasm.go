// Package disasm implements the packet-level layout algorithm: given a
// 32-byte fetch packet, decide which slots are compact, decode every
// instruction in byte order, and thread the parallel_with_previous chain
// through them.
package disasm

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/sarchlab/c64xplusdis/insts"
)

// PacketSize is the fixed size of a C64x+ fetch packet in bytes.
const PacketSize = 32

// ErrInvalidData marks a structural violation of the packet: a
// CompactInstructionHeader appeared outside the last slot. The caller (the
// CLI) resynchronizes by advancing the PC rather than aborting the stream.
var ErrInvalidData = errors.New("disasm: compact instruction header outside last slot")

// ReadInstruction dispatches a standalone 32-bit word with no packet
// context. It never fails; an unrecognized opcode decodes as Invalid.
func ReadInstruction(opcode uint32) insts.Instruction {
	return insts.Dispatch(opcode)
}

// ReadCompactInstruction dispatches a 16-bit word. head is the enclosing
// packet's fphead, or nil when there is none (e.g. reading a single
// mid-packet-aligned instruction with no compact context).
func ReadCompactInstruction(opcode uint16, head *insts.CompactInstructionHeader) insts.Instruction {
	return insts.DispatchCompact(opcode, head)
}

// ReadPacket decodes a full 32-byte fetch packet per the fixed 7-slot walk:
// the trailing word is decoded first to discover an optional compact
// instruction header, then slots 0..6 are walked in byte order, each either
// a 32-bit instruction or a pair of 16-bit compact instructions depending on
// the header's layout. Every Branch in the result has its absolute target
// patched against baseAddress.
func ReadPacket(packet [PacketSize]byte, baseAddress uint32) ([]insts.Instruction, error) {
	lastOpcode := binary.LittleEndian.Uint32(packet[PacketSize-4:])
	last := ReadInstruction(lastOpcode)

	var head *insts.CompactInstructionHeader
	if h, ok := last.(*insts.CompactInstructionHeader); ok {
		head = h
	}

	out := make([]insts.Instruction, 0, 8)
	previousPBit := false

	for index := 0; index < PacketSize-4; {
		slot := index / 4

		if head != nil && head.Layout[slot] {
			for half := 0; half < 2; half++ {
				opcode := binary.LittleEndian.Uint16(packet[index : index+2])
				inst := ReadCompactInstruction(opcode, head)

				inst.SetParallelWithPrevious(previousPBit)
				previousPBit = head.CompactPBits[index/2]

				out = append(out, inst)
				index += 2
			}
			continue
		}

		opcode := binary.LittleEndian.Uint32(packet[index : index+4])
		inst := ReadInstruction(opcode)

		if _, ok := inst.(*insts.CompactInstructionHeader); ok {
			return nil, errors.Wrapf(ErrInvalidData, "header found at slot %d", slot)
		}

		fixupBranchShift(inst, head != nil)

		inst.SetParallelWithPrevious(previousPBit)
		previousPBit = inst.PBit()

		out = append(out, inst)
		index += 4
	}

	last.SetParallelWithPrevious(previousPBit)
	out = append(out, last)

	for _, inst := range out {
		if br, ok := inst.(*insts.Branch); ok {
			br.PatchPCE1(baseAddress)
		}
	}

	return out, nil
}

// fixupBranchShift re-derives a 32-bit BNOP-with-displacement's shift amount
// now that the enclosing packet's fphead presence is known: the family
// decoder assumes no active fphead (shift-by-2) since it has no packet
// context, so this undoes that and reapplies shift-by-1 when an fphead is
// actually present, per spec's displacement-shift rule. Compact branches
// already receive the correct fphead-aware shift from the dispatcher, since
// they can only be decoded when a header exists.
func fixupBranchShift(inst insts.Instruction, fpheadActive bool) {
	br, ok := inst.(*insts.Branch)
	if !ok || br.IsCompact() || !fpheadActive || br.NopCount == 0 || br.HasRegister {
		return
	}
	br.Displacement >>= 1
}
