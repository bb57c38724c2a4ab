// Package regs provides the C64x+ register model: general-purpose registers
// (scalar and pair, on side A or B) and the closed set of control registers.
package regs

import "strconv"

// Register is a general-purpose C64x+ register. It is either a scalar on
// side A or B, or a register pair (two adjacent registers, even index first)
// on side A or B.
type Register struct {
	side   bool // false = A, true = B
	lo     uint8
	isPair bool
}

// FromScalar builds a scalar register (A0..A31 or B0..B31) from an index and
// a side bit (false=A, true=B).
func FromScalar(value uint8, side bool) Register {
	return Register{side: side, lo: value}
}

// FromPair builds a register pair, normalizing value to its even lower half;
// the upper half is always lo+1. This matches the invariant that pair
// indices differ by exactly 1 and the lower index is even.
func FromPair(value uint8, side bool) Register {
	even := value - (value % 2)
	return Register{side: side, lo: even, isPair: true}
}

// Side reports the register's side: false=A, true=B.
func (r Register) Side() bool {
	return r.side
}

// IsPair reports whether r is a register pair.
func (r Register) IsPair() bool {
	return r.isPair
}

// Not returns the cross-path complement of r: same index(es), opposite side.
func (r Register) Not() Register {
	r.side = !r.side
	return r
}

// Add advances a scalar register by k, or for a pair advances the lower half
// to the even value of k and sets the upper half to lower+1.
func (r Register) Add(k uint8) Register {
	if r.isPair {
		even := k - (k % 2)
		return Register{side: r.side, lo: r.lo + even, isPair: true}
	}
	return Register{side: r.side, lo: r.lo + k}
}

// String renders the register in C64x+ assembly syntax, e.g. "A3", "B14",
// "A1:A0".
func (r Register) String() string {
	letter := "A"
	if r.side {
		letter = "B"
	}
	if !r.isPair {
		return letter + strconv.Itoa(int(r.lo))
	}
	hi := r.lo + 1
	return letter + strconv.Itoa(int(hi)) + ":" + letter + strconv.Itoa(int(r.lo))
}

// Unit is one of the four C64x+ functional units.
type Unit uint8

// Functional units.
const (
	UnitL Unit = iota
	UnitS
	UnitM
	UnitD
)

// String renders the unit letter alone (no side suffix).
func (u Unit) String() string {
	switch u {
	case UnitL:
		return "L"
	case UnitS:
		return "S"
	case UnitM:
		return "M"
	case UnitD:
		return "D"
	default:
		return "?"
	}
}

// SidedString renders the unit with its side suffix: "1" for side A
// (false), "2" for side B (true).
func (u Unit) SidedString(side bool) string {
	if side {
		return u.String() + "2"
	}
	return u.String() + "1"
}
