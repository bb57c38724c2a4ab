package insts

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by a family's New/NewCompact when the opcode
// doesn't match any of that family's formats. Dispatch treats it as "try the
// next family".
var ErrUnsupported = errors.New("insts: opcode matches no format in this family")

// errUnsupported and errOther both surface as ErrUnsupported to the
// dispatcher; errOther marks the (unreachable in practice) case where a
// format matched but a field the builder relies on was absent.
var errUnsupported = ErrUnsupported
var errOther = errors.Wrap(ErrUnsupported, "matched format missing an expected field")

func hex32(v uint32) string {
	return fmt.Sprintf("0x%x", v)
}

func hex16(v uint16) string {
	return fmt.Sprintf("0x%x", v)
}
