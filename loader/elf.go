package loader

import (
	"debug/elf"

	"github.com/pkg/errors"
)

// LoadELF extracts the .text section of an ELF image: its raw bytes and its
// load address. Disassembly has no use for a segment table, BSS zero-fill,
// or a symbol table (Non-goals exclude cross-reference resolution), so this
// is narrower than a loader built for an emulator: one section in, bytes and
// a base address out.
func LoadELF(path string) (text []byte, base uint32, err error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to open ELF file")
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 && f.Class != elf.ELFCLASS64 {
		return nil, 0, errors.New("not a recognized ELF class")
	}

	if f.Machine != elf.EM_TI_C6000 {
		return nil, 0, errors.Errorf("not a C64x+ ELF file (machine type: %v)", f.Machine)
	}

	section := f.Section(".text")
	if section == nil {
		return nil, 0, errors.New("no .text section found")
	}

	data, err := section.Data()
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to read .text section at 0x%x", section.Addr)
	}

	if section.Addr > uint64(^uint32(0)) {
		return nil, 0, errors.Errorf(".text load address 0x%x exceeds 32-bit range", section.Addr)
	}

	return data, uint32(section.Addr), nil
}
