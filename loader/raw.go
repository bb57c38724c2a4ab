// Package loader provides input ingestion for the disassembler: a raw
// little-endian byte stream, or the .text section of an ELF image.
package loader

import (
	"os"

	"github.com/pkg/errors"
)

// LoadRaw reads the whole file as a flat instruction stream starting at
// address 0. A disassembler has no entry point or segment table to place in
// a virtual address space, so this is the entirety of the raw-mode contract.
func LoadRaw(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open raw image")
	}
	return data, nil
}
