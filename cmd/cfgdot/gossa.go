package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cfgdot/internal/frontend/gossa"
	"cfgdot/internal/ir"
)

func newGoCmd(f *flags) *cobra.Command {
	var dir, file string
	cmd := &cobra.Command{
		Use:   "go [packages...]",
		Short: "Print CFGs of Go functions from their SSA form",
		Example: `  cfgdot go ./...
  cfgdot go --file main.go --func '^main$'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fns []*ir.Function
			var err error
			switch {
			case file != "":
				fns, err = gossa.FromSource(file, nil)
			case len(args) == 0:
				fns, err = gossa.Load(dir, ".")
			default:
				fns, err = gossa.Load(dir, args...)
			}
			if err != nil {
				return err
			}
			if len(fns) == 0 {
				return fmt.Errorf("no functions found")
			}
			return f.run(cmd, fns)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to load packages from")
	cmd.Flags().StringVar(&file, "file", "", "single Go source file instead of packages")
	return cmd
}
