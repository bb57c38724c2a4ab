// Package insts implements the C64x+ instruction-family decoders (move
// constant, move register, branch, NOP/IDLE, compact instruction header,
// invalid) and the ordered-trial dispatcher that drives them.
package insts

import "github.com/sarchlab/c64xplusdis/regs"

// Instruction is the common contract every decoded instruction satisfies.
// Concrete types are a closed tagged sum (one struct per family); the
// packet decoder type-switches on the concrete type rather than using
// runtime downcasts.
type Instruction interface {
	Opcode() uint32
	IsCompact() bool
	IsParallelWithPrevious() bool
	SetParallelWithPrevious(bool)
	PBit() bool
	Predicate() *regs.ConditionalOperation
	Mnemonic() string
	Operands() string
}

// common holds the attributes every instruction family carries, per spec's
// InstructionData record.
type common struct {
	opcode               uint32
	compact              bool
	parallelWithPrevious bool
	pBit                 bool
	predicate            *regs.ConditionalOperation
}

func (c *common) Opcode() uint32                       { return c.opcode }
func (c *common) IsCompact() bool                       { return c.compact }
func (c *common) IsParallelWithPrevious() bool          { return c.parallelWithPrevious }
func (c *common) SetParallelWithPrevious(v bool)        { c.parallelWithPrevious = v }
func (c *common) PBit() bool                            { return c.pBit }
func (c *common) Predicate() *regs.ConditionalOperation { return c.predicate }
