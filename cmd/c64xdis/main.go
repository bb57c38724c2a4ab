// Package main provides the entry point for c64xdis, the C64x+ fetch-packet
// disassembler CLI.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/c64xplusdis/disasm"
	"github.com/sarchlab/c64xplusdis/loader"
)

var (
	outputPath = flag.String("o", "", "Output file path (default: stdout)")
	isELF      = flag.Bool("elf", false, "Treat the input as an ELF image and extract its .text section")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: c64xdis [options] <image>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	imagePath := flag.Arg(0)

	var (
		code []byte
		base uint32
		err  error
	)
	if *isELF {
		code, base, err = loader.LoadELF(imagePath)
	} else {
		code, err = loader.LoadRaw(imagePath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", imagePath)
		fmt.Printf("Base address: 0x%08x\n", base)
		fmt.Printf("Bytes: %d\n", len(code))
	}

	out, closeFn, err := openOutput(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	count, err := disassemble(code, base, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Instructions decoded: %d\n", count)
	}
}

// disassemble walks code 32 bytes at a time, decoding each fetch packet and
// writing its listing to out. A structural decode failure resynchronizes by
// advancing past the offending packet (or 4 bytes, when fewer than 32 remain)
// rather than aborting the stream, per the resynchronization policy.
func disassemble(code []byte, base uint32, out *bufio.Writer) (int, error) {
	count := 0
	offset := 0

	for offset < len(code) {
		remaining := len(code) - offset
		pc := base + uint32(offset)

		if remaining < disasm.PacketSize {
			if remaining < 4 {
				break
			}
			word := binary.LittleEndian.Uint32(code[offset : offset+4])
			inst := disasm.ReadInstruction(word)
			fmt.Fprintln(out, disasm.FormatLine(pc, inst))
			count++
			offset += 4
			continue
		}

		var packet [disasm.PacketSize]byte
		copy(packet[:], code[offset:offset+disasm.PacketSize])

		insts, err := disasm.ReadPacket(packet, pc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode error at 0x%08x: %v\n", pc, err)
			offset += disasm.PacketSize
			continue
		}

		slotOffset := 0
		for _, inst := range insts {
			fmt.Fprintln(out, disasm.FormatLine(pc+uint32(slotOffset), inst))
			count++
			if inst.IsCompact() {
				slotOffset += 2
			} else {
				slotOffset += 4
			}
		}
		offset += disasm.PacketSize
	}

	return count, nil
}

// openOutput returns stdout when path is empty, otherwise a buffered file
// writer. If the file already exists it prompts on stdin before overwriting,
// per the CLI's interactive-overwrite-prompt contract.
func openOutput(path string) (*bufio.Writer, func(), error) {
	if path == "" {
		w := bufio.NewWriter(os.Stdout)
		return w, func() { _ = w.Flush() }, nil
	}

	if _, err := os.Stat(path); err == nil {
		if !confirmOverwrite(path) {
			return nil, func() {}, errors.Errorf("not overwriting existing file %q", path)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, func() {}, errors.Wrapf(err, "failed to create output file %q", path)
	}

	w := bufio.NewWriter(f)
	return w, func() { _ = w.Flush(); _ = f.Close() }, nil
}

func confirmOverwrite(path string) bool {
	fmt.Fprintf(os.Stderr, "%s already exists. Overwrite? [y/N] ", path)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
