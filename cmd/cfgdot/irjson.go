package main

import (
	"github.com/spf13/cobra"

	"cfgdot/internal/frontend/irjson"
	"cfgdot/internal/ir"
)

func newIRCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "ir <file.jsonl>...",
		Short: "Print CFGs of functions serialized as JSONL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fns []*ir.Function
			for _, path := range args {
				got, err := irjson.ReadFile(path)
				if err != nil {
					return err
				}
				fns = append(fns, got...)
			}
			return f.run(cmd, fns)
		},
	}
}
