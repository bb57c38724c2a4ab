package disasm

import (
	"fmt"

	"github.com/sarchlab/c64xplusdis/insts"
)

// FormatLine renders one listing line: PC, opcode, parallel marker,
// predicate, mnemonic, operands, in the fixed column layout the CLI writes
// verbatim to its output.
func FormatLine(pc uint32, inst insts.Instruction) string {
	pcField := fmt.Sprintf("0x%08x: ", pc)
	opcodeField := fmt.Sprintf("%-12s", formatOpcode(inst))
	parallelField := fmt.Sprintf("%-4s", formatParallel(inst))
	predicateField := fmt.Sprintf("%-6s", formatPredicate(inst))
	mnemonicField := fmt.Sprintf("%-12s", inst.Mnemonic())

	return pcField + opcodeField + parallelField + predicateField + mnemonicField + inst.Operands()
}

func formatOpcode(inst insts.Instruction) string {
	if inst.IsCompact() {
		return fmt.Sprintf("0x%04x", inst.Opcode())
	}
	return fmt.Sprintf("0x%08x", inst.Opcode())
}

func formatParallel(inst insts.Instruction) string {
	if inst.IsParallelWithPrevious() {
		return "||"
	}
	return ""
}

// formatPredicate renders e.g. "[  A1]"; Reserved variants and the absence
// of a predicate both render as empty, per spec's CALLP rendering rule
// (CALLP carries ReservedLow but the mnemonic alone signals it).
func formatPredicate(inst insts.Instruction) string {
	p := inst.Predicate()
	if p == nil || p.IsReserved() {
		return ""
	}
	return "[" + fmt.Sprintf("%4s", p.String()) + "]"
}
