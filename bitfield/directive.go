package bitfield

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/c64xplusdis/regs"
)

// ErrNoMatch means a directive's bits didn't satisfy its constraint; the
// caller should try the next candidate format. It corresponds to spec's
// InvalidInput error kind at the directive level.
var ErrNoMatch = errors.New("bitfield: no match")

// cursor consumes bits from the LSB end of a raw opcode.
type cursor struct {
	value uint32
	pos   uint
}

func (c *cursor) take(size uint) uint32 {
	mask := uint32(1)<<size - 1
	v := (c.value >> c.pos) & mask
	c.pos += size
	return v
}

// Directive is one step of a format: it consumes a fixed number of bits from
// the cursor and either fails the whole match or stores a named value.
type Directive interface {
	// size returns the number of bits this directive consumes.
	size() uint
	// apply consumes bits from c and records (or checks) a value in fields.
	apply(c *cursor, fields Fields) error
}

// Match fails unless the extracted bits equal Value.
type Match struct {
	Size  uint
	Value uint32
}

func (m Match) size() uint { return m.Size }

func (m Match) apply(c *cursor, _ Fields) error {
	got := c.take(m.Size)
	if got != m.Value {
		return ErrNoMatch
	}
	return nil
}

// MatchMultiple fails unless the extracted bits are one of Values.
type MatchMultiple struct {
	Size   uint
	Values []uint32
}

func (m MatchMultiple) size() uint { return m.Size }

func (m MatchMultiple) apply(c *cursor, _ Fields) error {
	got := c.take(m.Size)
	for _, v := range m.Values {
		if got == v {
			return nil
		}
	}
	return ErrNoMatch
}

// Bit stores a single bit as a bool under Name.
type Bit struct {
	Name string
}

func (b Bit) size() uint { return 1 }

func (b Bit) apply(c *cursor, fields Fields) error {
	fields[b.Name] = boolValue(c.take(1) != 0)
	return nil
}

// BitMatch fails unless the bit equals Value; it also stores the bit under
// Name (so later directives, e.g. RegisterCrosspath, can consult it).
type BitMatch struct {
	Name  string
	Value bool
}

func (b BitMatch) size() uint { return 1 }

func (b BitMatch) apply(c *cursor, fields Fields) error {
	got := c.take(1) != 0
	fields[b.Name] = boolValue(got)
	if got != b.Value {
		return ErrNoMatch
	}
	return nil
}

// BitArray stores Size bits as an LSB-first []bool under Name.
type BitArray struct {
	Size uint
	Name string
}

func (b BitArray) size() uint { return b.Size }

func (b BitArray) apply(c *cursor, fields Fields) error {
	raw := c.take(b.Size)
	bits := make([]bool, b.Size)
	for i := uint(0); i < b.Size; i++ {
		bits[i] = (raw>>i)&1 != 0
	}
	fields[b.Name] = boolSeqValue(bits)
	return nil
}

// Unsigned stores Size bits as a u8 (Size<=8) or u32 under Name.
type Unsigned struct {
	Size uint
	Name string
}

func (u Unsigned) size() uint { return u.Size }

func (u Unsigned) apply(c *cursor, fields Fields) error {
	v := c.take(u.Size)
	if u.Size <= 8 {
		fields[u.Name] = u8Value(uint8(v))
	} else {
		fields[u.Name] = u32Value(v)
	}
	return nil
}

// Signed stores Size bits sign-extended to an int32 under Name.
type Signed struct {
	Size uint
	Name string
}

func (s Signed) size() uint { return s.Size }

func (s Signed) apply(c *cursor, fields Fields) error {
	v := c.take(s.Size)
	signBit := uint32(1) << (s.Size - 1)
	var extended int32
	if v&signBit != 0 {
		extended = int32(v) - int32(uint32(1)<<s.Size)
	} else {
		extended = int32(v)
	}
	fields[s.Name] = i32Value(extended)
	return nil
}

// RegisterField stores Size bits as a scalar Register under Name, using the
// previously-matched "s" field as the side bit (defaulting to side A if
// absent).
type RegisterField struct {
	Size uint
	Name string
}

func (r RegisterField) size() uint { return r.Size }

func (r RegisterField) apply(c *cursor, fields Fields) error {
	v := uint8(c.take(r.Size))
	side := fields.GetBoolOr("s", false)
	fields[r.Name] = registerValue(regs.FromScalar(v, side))
	return nil
}

// RegisterCrosspath stores Size bits as a scalar Register whose side is "s"
// XOR "x": a set cross-path bit means the operand is fetched from the
// opposite side.
type RegisterCrosspath struct {
	Size uint
	Name string
}

func (r RegisterCrosspath) size() uint { return r.Size }

func (r RegisterCrosspath) apply(c *cursor, fields Fields) error {
	v := uint8(c.take(r.Size))
	s := fields.GetBoolOr("s", false)
	x := fields.GetBoolOr("x", false)
	fields[r.Name] = registerValue(regs.FromScalar(v, s != x))
	return nil
}

// RegisterPair stores Size bits as a register pair under Name, using the
// previously-matched "s" field as the side bit.
type RegisterPair struct {
	Size uint
	Name string
}

func (r RegisterPair) size() uint { return r.Size }

func (r RegisterPair) apply(c *cursor, fields Fields) error {
	v := uint8(c.take(r.Size))
	side := fields.GetBoolOr("s", false)
	fields[r.Name] = registerValue(regs.FromPair(v, side))
	return nil
}

// ControlRegisterField stores Size bits (as crlo) plus an optional
// already-matched "crhi" field (defaulting to 0) as a ControlRegister under
// Name; it fails if the pair isn't a documented control register.
type ControlRegisterField struct {
	Size uint
	Name string
}

func (r ControlRegisterField) size() uint { return r.Size }

func (r ControlRegisterField) apply(c *cursor, fields Fields) error {
	crlo := uint8(c.take(r.Size))
	crhi := fields.GetU8Or("crhi", 0)
	cr, ok := regs.ControlRegisterFrom(crlo, crhi)
	if !ok {
		return ErrNoMatch
	}
	fields[r.Name] = controlRegisterValue(cr)
	return nil
}

// LSDUnit consumes 2 bits and stores a Unit restricted to {L, S, D} under
// Name; value 3 (M) fails.
type LSDUnit struct {
	Name string
}

func (l LSDUnit) size() uint { return 2 }

func (l LSDUnit) apply(c *cursor, fields Fields) error {
	v := c.take(2)
	var u regs.Unit
	switch v {
	case 0:
		u = regs.UnitL
	case 1:
		u = regs.UnitS
	case 2:
		u = regs.UnitD
	default:
		return ErrNoMatch
	}
	fields[l.Name] = unitValue(u)
	return nil
}

// ConditionalOperationField consumes 4 bits (low 3 = creg, high = z) and
// stores an optional ConditionalOperation under Name; the unconditional
// encoding stores a nil pointer, not an error.
type ConditionalOperationField struct {
	Name string
}

func (cf ConditionalOperationField) size() uint { return 4 }

func (cf ConditionalOperationField) apply(c *cursor, fields Fields) error {
	raw := c.take(4)
	creg := uint8(raw & 0b111)
	z := raw&0b1000 != 0
	fields[cf.Name] = conditionalValue(regs.ConditionalOperationFrom(creg, z))
	return nil
}
