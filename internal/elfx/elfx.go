// Package elfx reads ARM64 function code out of ELF executables and shared
// objects.
package elfx

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

var (
	ErrNotELF       = errors.New("elfx: not an ELF file")
	ErrNotARM64     = errors.New("elfx: not ARM64 (EM_AARCH64)")
	ErrNot64Bit     = errors.New("elfx: not 64-bit ELF")
	ErrNotLoadable  = errors.New("elfx: not an executable or shared object")
	ErrNoSegment    = errors.New("elfx: no PT_LOAD segment covers address")
	ErrSymbolNoSize = errors.New("elfx: symbol has zero size")
)

// File wraps a debug/elf.File.
type File struct {
	ELF  *elf.File
	f    *os.File
	size int64
}

// Open opens an ELF file and checks it is a 64-bit ARM64 executable or
// shared object.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfx: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("elfx: stat: %w", err)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}

	var bad error
	switch {
	case ef.Class != elf.ELFCLASS64:
		bad = ErrNot64Bit
	case ef.Machine != elf.EM_AARCH64:
		bad = ErrNotARM64
	case ef.Type != elf.ET_DYN && ef.Type != elf.ET_EXEC:
		bad = ErrNotLoadable
	}
	if bad != nil {
		f.Close()
		return nil, bad
	}

	return &File{ELF: ef, f: f, size: info.Size()}, nil
}

// Close releases the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Symbol is a function symbol with a known size.
type Symbol struct {
	Name string
	Addr uint64
	Size uint64
}

// Functions returns the sized STT_FUNC symbols from .symtab and .dynsym,
// without duplicates, ordered by address then name.
func (f *File) Functions() ([]Symbol, error) {
	var all []elf.Symbol
	for _, load := range []func() ([]elf.Symbol, error){f.ELF.Symbols, f.ELF.DynamicSymbols} {
		syms, err := load()
		if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
			return nil, fmt.Errorf("elfx: symbols: %w", err)
		}
		all = append(all, syms...)
	}

	seen := make(map[Symbol]bool)
	var out []Symbol
	for _, s := range all {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Size == 0 || s.Name == "" {
			continue
		}
		sym := Symbol{Name: s.Name, Addr: s.Value, Size: s.Size}
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Addr != out[j].Addr {
			return out[i].Addr < out[j].Addr
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// VAToFileOffset converts a virtual address to a file offset using PT_LOAD
// segments.
func (f *File) VAToFileOffset(va uint64) (uint64, error) {
	for _, p := range f.ELF.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if va >= p.Vaddr && va < p.Vaddr+p.Filesz {
			offset := va - p.Vaddr + p.Off
			if offset >= uint64(f.size) {
				return 0, fmt.Errorf("elfx: VA 0x%x maps to offset 0x%x beyond file size 0x%x", va, offset, f.size)
			}
			return offset, nil
		}
	}
	return 0, fmt.Errorf("%w: VA 0x%x", ErrNoSegment, va)
}

// ReadBytesAtVA reads up to n bytes starting at virtual address va.
func (f *File) ReadBytesAtVA(va uint64, n int) ([]byte, error) {
	off, err := f.VAToFileOffset(va)
	if err != nil {
		return nil, err
	}
	if avail := f.size - int64(off); int64(n) > avail {
		n = int(avail)
	}
	buf := make([]byte, n)
	m, err := f.f.ReadAt(buf, int64(off))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("elfx: read at 0x%x: %w", off, err)
	}
	return buf[:m], nil
}

// Code returns the bytes of function sym.
func (f *File) Code(sym Symbol) ([]byte, error) {
	if sym.Size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNoSize, sym.Name)
	}
	return f.ReadBytesAtVA(sym.Addr, int(sym.Size))
}
