package arm64

import (
	"fmt"

	"cfgdot/internal/elfx"
	"cfgdot/internal/ir"
)

// LoadELF lifts every sized function symbol of an ARM64 ELF file, in address
// order.
func LoadELF(path string) ([]*ir.Function, error) {
	ef, err := elfx.Open(path)
	if err != nil {
		return nil, err
	}
	defer ef.Close()

	syms, err := ef.Functions()
	if err != nil {
		return nil, err
	}
	fns := make([]*ir.Function, 0, len(syms))
	for _, sym := range syms {
		code, err := ef.Code(sym)
		if err != nil {
			return nil, fmt.Errorf("arm64: %s: %w", sym.Name, err)
		}
		if len(code) < 4 {
			continue
		}
		fns = append(fns, Lift(sym.Name, code, sym.Addr))
	}
	return fns, nil
}
