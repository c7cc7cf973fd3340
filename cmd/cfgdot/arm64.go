package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cfgdot/internal/frontend/arm64"
	"cfgdot/internal/ir"
)

func newARM64Cmd(f *flags) *cobra.Command {
	var elfPath, binPath, base, name string
	cmd := &cobra.Command{
		Use:   "arm64",
		Short: "Print CFGs of ARM64 machine code",
		Example: `  cfgdot arm64 --elf libfoo.so --func '^Foo_'
  cfgdot arm64 --bin func.bin --base 0x1000 --name func`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fns []*ir.Function
			switch {
			case elfPath != "" && binPath != "":
				return fmt.Errorf("--elf and --bin are mutually exclusive")
			case elfPath != "":
				var err error
				if fns, err = arm64.LoadELF(elfPath); err != nil {
					return err
				}
			case binPath != "":
				data, err := os.ReadFile(binPath)
				if err != nil {
					return fmt.Errorf("read %s: %w", binPath, err)
				}
				pc, err := strconv.ParseUint(strings.TrimPrefix(base, "0x"), 16, 64)
				if err != nil {
					return fmt.Errorf("--base: %w", err)
				}
				if name == "" {
					name = strings.TrimSuffix(filepath.Base(binPath), filepath.Ext(binPath))
				}
				if len(data) < 4 {
					return fmt.Errorf("%s: no instructions", binPath)
				}
				fns = append(fns, arm64.Lift(name, data, pc))
			default:
				return fmt.Errorf("--elf or --bin is required")
			}
			return f.run(cmd, fns)
		},
	}
	cmd.Flags().StringVar(&elfPath, "elf", "", "ARM64 ELF file; every function symbol is printed")
	cmd.Flags().StringVar(&binPath, "bin", "", "raw little-endian code of one function")
	cmd.Flags().StringVar(&base, "base", "0", "load address of --bin (hex)")
	cmd.Flags().StringVar(&name, "name", "", "function name for --bin (default: file name)")
	return cmd
}
