package bitfield

import (
	"github.com/samber/lo"
)

// Format is an ordered sequence of directives. A directive that reads "s",
// "x", or "crhi" must appear after the directive that produces it.
type Format []Directive

// totalSize returns how many bits a format consumes; used to validate a
// format against the width (32 or 16) it's being tried against.
func (f Format) totalSize() uint {
	return lo.Reduce(f, func(acc uint, d Directive, _ int) uint {
		return acc + d.size()
	}, 0)
}

// Match tries format against opcode (the low width bits are significant;
// width is 32 or 16). On success it returns the extracted named fields; on
// failure (a directive's constraint wasn't satisfied) it returns
// ErrNoMatch, and the caller should try the next candidate format.
func Match(format Format, opcode uint32, width uint) (Fields, error) {
	if format.totalSize() > width {
		return nil, ErrNoMatch
	}

	c := &cursor{value: opcode}
	fields := make(Fields, len(format))

	for _, d := range format {
		if err := d.apply(c, fields); err != nil {
			return nil, err
		}
	}

	return fields, nil
}

// MatchFirst tries each format in order and returns the fields of the first
// one that matches, alongside its index. It returns ErrNoMatch if none of
// the candidates match.
func MatchFirst(formats []Format, opcode uint32, width uint) (Fields, int, error) {
	idx, _, ok := lo.FindIndexOf(formats, func(f Format) bool {
		_, err := Match(f, opcode, width)
		return err == nil
	})
	if !ok {
		return nil, -1, ErrNoMatch
	}
	fields, err := Match(formats[idx], opcode, width)
	if err != nil {
		return nil, -1, err
	}
	return fields, idx, nil
}
