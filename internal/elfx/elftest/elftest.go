// Package elftest writes minimal ARM64 ELF files for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Base is the virtual address the single PT_LOAD segment is mapped at.
const Base = 0x10000

// Func is one function placed in .text, in order.
type Func struct {
	Name  string
	Words []uint32
}

const (
	textOff  = 0x100
	sections = 5 // null, .text, .symtab, .strtab, .shstrtab
)

// Build returns an ELF64 AArch64 image of the given type whose .text holds
// funcs back to back, with one STT_FUNC symbol each.
func Build(typ elf.Type, funcs ...Func) []byte {
	le := binary.LittleEndian

	var text bytes.Buffer
	strtab := []byte{0}
	syms := []elf.Sym64{{}}
	for _, fn := range funcs {
		addr := Base + textOff + uint64(text.Len())
		for _, w := range fn.Words {
			binary.Write(&text, le, w)
		}
		syms = append(syms, elf.Sym64{
			Name:  uint32(len(strtab)),
			Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC),
			Shndx: 1,
			Value: addr,
			Size:  uint64(4 * len(fn.Words)),
		})
		strtab = append(strtab, fn.Name...)
		strtab = append(strtab, 0)
	}
	var symtab bytes.Buffer
	for _, s := range syms {
		binary.Write(&symtab, le, s)
	}
	shstrtab := []byte("\x00.text\x00.symtab\x00.strtab\x00.shstrtab\x00")

	align := func(n int) int { return (n + 15) &^ 15 }
	symOff := align(textOff + text.Len())
	strOff := align(symOff + symtab.Len())
	shstrOff := align(strOff + len(strtab))
	shOff := align(shstrOff + len(shstrtab))
	size := shOff + sections*64

	out := make([]byte, size)
	var hdr bytes.Buffer
	binary.Write(&hdr, le, elf.Header64{
		Ident:     [16]byte{0x7f, 'E', 'L', 'F', byte(elf.ELFCLASS64), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT)},
		Type:      uint16(typ),
		Machine:   uint16(elf.EM_AARCH64),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     Base + textOff,
		Phoff:     64,
		Shoff:     uint64(shOff),
		Ehsize:    64,
		Phentsize: 56,
		Phnum:     1,
		Shentsize: 64,
		Shnum:     sections,
		Shstrndx:  4,
	})
	binary.Write(&hdr, le, elf.Prog64{
		Type:   uint32(elf.PT_LOAD),
		Flags:  uint32(elf.PF_R | elf.PF_X),
		Off:    0,
		Vaddr:  Base,
		Paddr:  Base,
		Filesz: uint64(size),
		Memsz:  uint64(size),
		Align:  0x1000,
	})
	copy(out, hdr.Bytes())
	copy(out[textOff:], text.Bytes())
	copy(out[symOff:], symtab.Bytes())
	copy(out[strOff:], strtab)
	copy(out[shstrOff:], shstrtab)

	var sh bytes.Buffer
	shdrs := []elf.Section64{
		{},
		{Name: 1, Type: uint32(elf.SHT_PROGBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			Addr: Base + textOff, Off: textOff, Size: uint64(text.Len()), Addralign: 4},
		{Name: 7, Type: uint32(elf.SHT_SYMTAB), Off: uint64(symOff), Size: uint64(symtab.Len()),
			Link: 3, Info: 1, Addralign: 8, Entsize: 24},
		{Name: 15, Type: uint32(elf.SHT_STRTAB), Off: uint64(strOff), Size: uint64(len(strtab)), Addralign: 1},
		{Name: 23, Type: uint32(elf.SHT_STRTAB), Off: uint64(shstrOff), Size: uint64(len(shstrtab)), Addralign: 1},
	}
	for _, s := range shdrs {
		binary.Write(&sh, le, s)
	}
	copy(out[shOff:], sh.Bytes())
	return out
}

// Write builds an ELF and writes it into a temp dir, returning its path.
func Write(t testing.TB, typ elf.Type, funcs ...Func) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "code.elf")
	if err := os.WriteFile(path, Build(typ, funcs...), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
