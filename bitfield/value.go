package bitfield

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/c64xplusdis/regs"
)

// kind tags the concrete type carried by a Value.
type kind uint8

const (
	kindBool kind = iota
	kindBoolSeq
	kindU8
	kindU32
	kindI32
	kindRegister
	kindControlRegister
	kindUnit
	kindConditional
)

// Value is a tagged union of every type a directive can extract: bool,
// bool-sequence, u8, u32, i32, Register, ControlRegister, Unit, or an optional
// ConditionalOperation.
type Value struct {
	k    kind
	b    bool
	bs   []bool
	u8   uint8
	u32  uint32
	i32  int32
	reg  regs.Register
	cr   regs.ControlRegister
	unit regs.Unit
	cond *regs.ConditionalOperation
}

func boolValue(b bool) Value             { return Value{k: kindBool, b: b} }
func boolSeqValue(bs []bool) Value       { return Value{k: kindBoolSeq, bs: bs} }
func u8Value(v uint8) Value              { return Value{k: kindU8, u8: v} }
func u32Value(v uint32) Value            { return Value{k: kindU32, u32: v} }
func i32Value(v int32) Value             { return Value{k: kindI32, i32: v} }
func registerValue(r regs.Register) Value {
	return Value{k: kindRegister, reg: r}
}
func controlRegisterValue(c regs.ControlRegister) Value {
	return Value{k: kindControlRegister, cr: c}
}
func unitValue(u regs.Unit) Value { return Value{k: kindUnit, unit: u} }
func conditionalValue(c *regs.ConditionalOperation) Value {
	return Value{k: kindConditional, cond: c}
}

// ErrWrongType is returned by a strict accessor when the stored Value does
// not carry the requested type.
var ErrWrongType = errors.New("bitfield: field has the wrong type")

// AsBool strictly returns the bool carried by this Value.
func (v Value) AsBool() (bool, error) {
	if v.k != kindBool {
		return false, ErrWrongType
	}
	return v.b, nil
}

// AsBoolSeq strictly returns the LSB-first bool sequence carried by this
// Value.
func (v Value) AsBoolSeq() ([]bool, error) {
	if v.k != kindBoolSeq {
		return nil, ErrWrongType
	}
	return v.bs, nil
}

// AsU8 permissively returns the integer carried by this Value, narrowing a
// u32 with a plain cast if necessary.
func (v Value) AsU8() (uint8, error) {
	switch v.k {
	case kindU8:
		return v.u8, nil
	case kindU32:
		return uint8(v.u32), nil
	default:
		return 0, ErrWrongType
	}
}

// AsU32 permissively returns the integer carried by this Value, widening a
// u8 if necessary.
func (v Value) AsU32() (uint32, error) {
	switch v.k {
	case kindU32:
		return v.u32, nil
	case kindU8:
		return uint32(v.u8), nil
	default:
		return 0, ErrWrongType
	}
}

// AsI32 strictly returns the sign-extended integer carried by this Value.
func (v Value) AsI32() (int32, error) {
	if v.k != kindI32 {
		return 0, ErrWrongType
	}
	return v.i32, nil
}

// AsRegister strictly returns the Register carried by this Value.
func (v Value) AsRegister() (regs.Register, error) {
	if v.k != kindRegister {
		return regs.Register{}, ErrWrongType
	}
	return v.reg, nil
}

// AsControlRegister strictly returns the ControlRegister carried by this
// Value.
func (v Value) AsControlRegister() (regs.ControlRegister, error) {
	if v.k != kindControlRegister {
		return 0, ErrWrongType
	}
	return v.cr, nil
}

// AsUnit strictly returns the Unit carried by this Value.
func (v Value) AsUnit() (regs.Unit, error) {
	if v.k != kindUnit {
		return 0, ErrWrongType
	}
	return v.unit, nil
}

// AsConditional strictly returns the optional ConditionalOperation carried
// by this Value; a nil result means "unconditional", not an error.
func (v Value) AsConditional() (*regs.ConditionalOperation, error) {
	if v.k != kindConditional {
		return nil, ErrWrongType
	}
	return v.cond, nil
}

// Fields is the name -> Value mapping a successful Match produces.
type Fields map[string]Value

// ErrMissingField is returned by Get when name was never matched.
var ErrMissingField = errors.New("bitfield: missing field")

// Get returns the Value stored under name, or ErrMissingField.
func (f Fields) Get(name string) (Value, error) {
	v, ok := f[name]
	if !ok {
		return Value{}, errors.Wrap(ErrMissingField, name)
	}
	return v, nil
}

// GetBoolOr returns the bool stored under name, or def if name is absent.
// Used for the optional "s"/"x" side-selector fields.
func (f Fields) GetBoolOr(name string, def bool) bool {
	v, ok := f[name]
	if !ok {
		return def
	}
	b, err := v.AsBool()
	if err != nil {
		return def
	}
	return b
}

// GetU8Or returns the integer stored under name, or def if name is absent.
func (f Fields) GetU8Or(name string, def uint8) uint8 {
	v, ok := f[name]
	if !ok {
		return def
	}
	u, err := v.AsU8()
	if err != nil {
		return def
	}
	return u
}
