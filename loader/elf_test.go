package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c64xplusdis/loader"
)

var _ = Describe("LoadELF", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Context("with a valid C64x+ ELF image", func() {
		It("should extract the .text bytes and load address", func() {
			elfPath := filepath.Join(tempDir, "test.elf")
			code := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
			createMinimalC6000ELF(elfPath, 0x00001000, code)

			text, base, err := loader.LoadELF(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(base).To(Equal(uint32(0x00001000)))
			Expect(text).To(Equal(code))
		})
	})

	Context("with an invalid file", func() {
		It("should return an error for a non-existent file", func() {
			_, _, err := loader.LoadELF("/nonexistent/path/to/file.elf")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to open"))
		})

		It("should return an error for a non-ELF file", func() {
			notElfPath := filepath.Join(tempDir, "not-elf.bin")
			Expect(os.WriteFile(notElfPath, []byte("not an elf file"), 0644)).To(Succeed())

			_, _, err := loader.LoadELF(notElfPath)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a non-C64x+ ELF", func() {
		It("should return an error naming the rejected machine type", func() {
			elfPath := filepath.Join(tempDir, "x86.elf")
			createMinimalC6000ELFWithMachine(elfPath, 0x1000, []byte{0, 0}, 62) // EM_X86_64

			_, _, err := loader.LoadELF(elfPath)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("not a C64x+ ELF file"))
		})
	})

	Context("with no .text section", func() {
		It("should return an error", func() {
			elfPath := filepath.Join(tempDir, "no-text.elf")
			createC6000ELFWithoutText(elfPath)

			_, _, err := loader.LoadELF(elfPath)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(".text"))
		})
	})
})

const emTIC6000 = 140

// createMinimalC6000ELF writes a minimal ELF64 image with one .text section
// at textAddr carrying code, plus the .shstrtab section name table needed
// for debug/elf to resolve section names.
func createMinimalC6000ELF(path string, textAddr uint32, code []byte) {
	createMinimalC6000ELFWithMachine(path, textAddr, code, emTIC6000)
}

func createMinimalC6000ELFWithMachine(path string, textAddr uint32, code []byte, machine uint16) {
	const shdrSize = 64
	const numSections = 3 // null, .text, .shstrtab

	strtab := buildStrtab(".text", ".shstrtab")
	textNameOff := uint32(1)                     // after the leading nul
	shstrtabNameOff := uint32(1 + len(".text\x00"))

	shoff := uint64(64) // right after the ELF header
	textOff := shoff + shdrSize*numSections
	strtabOff := textOff + uint64(len(code))

	header := make([]byte, 64)
	copy(header[0:4], []byte{0x7f, 'E', 'L', 'F'})
	header[4] = 2 // ELFCLASS64
	header[5] = 1 // little endian
	header[6] = 1 // version
	binary.LittleEndian.PutUint16(header[16:18], 2) // ET_EXEC
	binary.LittleEndian.PutUint16(header[18:20], machine)
	binary.LittleEndian.PutUint32(header[20:24], 1)
	binary.LittleEndian.PutUint64(header[32:40], 0) // phoff (no program headers)
	binary.LittleEndian.PutUint64(header[40:48], shoff)
	binary.LittleEndian.PutUint16(header[52:54], 64) // ehsize
	binary.LittleEndian.PutUint16(header[54:56], 56)
	binary.LittleEndian.PutUint16(header[56:58], 0) // phnum
	binary.LittleEndian.PutUint16(header[58:60], shdrSize)
	binary.LittleEndian.PutUint16(header[60:62], numSections)
	binary.LittleEndian.PutUint16(header[62:64], 2) // shstrndx

	nullShdr := make([]byte, shdrSize)

	textShdr := make([]byte, shdrSize)
	binary.LittleEndian.PutUint32(textShdr[0:4], textNameOff)
	binary.LittleEndian.PutUint32(textShdr[4:8], 1)                 // SHT_PROGBITS
	binary.LittleEndian.PutUint64(textShdr[8:16], 0x6)               // SHF_ALLOC|SHF_EXECINSTR
	binary.LittleEndian.PutUint64(textShdr[16:24], uint64(textAddr))
	binary.LittleEndian.PutUint64(textShdr[24:32], textOff)
	binary.LittleEndian.PutUint64(textShdr[32:40], uint64(len(code)))
	binary.LittleEndian.PutUint64(textShdr[48:56], 1) // addralign

	strtabShdr := make([]byte, shdrSize)
	binary.LittleEndian.PutUint32(strtabShdr[0:4], shstrtabNameOff)
	binary.LittleEndian.PutUint32(strtabShdr[4:8], 3) // SHT_STRTAB
	binary.LittleEndian.PutUint64(strtabShdr[24:32], strtabOff)
	binary.LittleEndian.PutUint64(strtabShdr[32:40], uint64(len(strtab)))
	binary.LittleEndian.PutUint64(strtabShdr[48:56], 1) // addralign

	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = f.Close() }()

	_, _ = f.Write(header)
	_, _ = f.Write(nullShdr)
	_, _ = f.Write(textShdr)
	_, _ = f.Write(strtabShdr)
	_, _ = f.Write(code)
	_, _ = f.Write(strtab)
}

// createC6000ELFWithoutText writes a valid C64x+ ELF with only a
// .shstrtab section, exercising the missing-.text-section error path.
func createC6000ELFWithoutText(path string) {
	const shdrSize = 64
	const numSections = 2 // null, .shstrtab

	strtab := buildStrtab(".shstrtab")
	shstrtabNameOff := uint32(1)

	shoff := uint64(64)
	strtabOff := shoff + shdrSize*numSections

	header := make([]byte, 64)
	copy(header[0:4], []byte{0x7f, 'E', 'L', 'F'})
	header[4] = 2
	header[5] = 1
	header[6] = 1
	binary.LittleEndian.PutUint16(header[16:18], 2)
	binary.LittleEndian.PutUint16(header[18:20], emTIC6000)
	binary.LittleEndian.PutUint32(header[20:24], 1)
	binary.LittleEndian.PutUint64(header[40:48], shoff)
	binary.LittleEndian.PutUint16(header[52:54], 64)
	binary.LittleEndian.PutUint16(header[54:56], 56)
	binary.LittleEndian.PutUint16(header[58:60], shdrSize)
	binary.LittleEndian.PutUint16(header[60:62], numSections)
	binary.LittleEndian.PutUint16(header[62:64], 1) // shstrndx

	nullShdr := make([]byte, shdrSize)

	strtabShdr := make([]byte, shdrSize)
	binary.LittleEndian.PutUint32(strtabShdr[0:4], shstrtabNameOff)
	binary.LittleEndian.PutUint32(strtabShdr[4:8], 3)
	binary.LittleEndian.PutUint64(strtabShdr[24:32], strtabOff)
	binary.LittleEndian.PutUint64(strtabShdr[32:40], uint64(len(strtab)))
	binary.LittleEndian.PutUint64(strtabShdr[48:56], 1) // addralign

	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = f.Close() }()

	_, _ = f.Write(header)
	_, _ = f.Write(nullShdr)
	_, _ = f.Write(strtabShdr)
	_, _ = f.Write(strtab)
}

// buildStrtab concatenates names into an ELF string table: a leading nul,
// then each name nul-terminated in order.
func buildStrtab(names ...string) []byte {
	out := []byte{0}
	for _, n := range names {
		out = append(out, n...)
		out = append(out, 0)
	}
	return out
}
