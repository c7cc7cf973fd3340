package main

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cfgdot/internal/config"
	"cfgdot/internal/ir"
	"cfgdot/internal/logging"
	"cfgdot/internal/pass"
)

var errFailed = errors.New("some functions could not be written")

// flags holds the persistent command-line settings.
type flags struct {
	config   string
	prefix   string
	outDir   string
	funcRe   string
	overview bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "cfgdot",
		Short: "Render per-function control-flow graphs as Graphviz DOT",
		Long: `cfgdot writes one DOT file per function: a record node per basic block
listing its instructions, with edges for control flow. Output files are
named [<prefix>_]<function>.dot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "YAML config file (default "+config.DefaultFile+" if present)")
	pf.StringVarP(&f.prefix, "prefix", "s", "", "prefix for output dot files")
	pf.StringVarP(&f.outDir, "out", "o", "", "output directory")
	pf.StringVar(&f.funcRe, "func", "", "only print functions whose name matches this regexp")
	pf.BoolVar(&f.overview, "overview", false, "also write a lattice overview graph per function")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newGoCmd(f), newARM64Cmd(f), newIRCmd(f), newVersionCmd())
	return root
}

// settings merges the config file with flags set on the command line.
func (f *flags) settings(fs *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return cfg, err
	}
	if fs.Changed("prefix") {
		cfg.Prefix = f.prefix
	}
	if fs.Changed("out") {
		cfg.OutDir = f.outDir
	}
	if fs.Changed("func") {
		cfg.Func = f.funcRe
	}
	if fs.Changed("overview") {
		cfg.Overview = f.overview
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	return cfg, nil
}

// run prints fns with the merged settings.
func (f *flags) run(cmd *cobra.Command, fns []*ir.Function) error {
	cfg, err := f.settings(cmd.Flags())
	if err != nil {
		return err
	}
	p := &pass.Pass{
		Dir:      cfg.OutDir,
		Prefix:   cfg.Prefix,
		Overview: cfg.Overview,
		Log:      logging.New(cmd.ErrOrStderr(), cfg.Verbose),
	}
	if cfg.Func != "" {
		if p.Filter, err = regexp.Compile(cfg.Func); err != nil {
			return fmt.Errorf("--func: %w", err)
		}
	}

	st, err := p.Run(fns)
	if err != nil {
		return err
	}
	p.Log.Info().Int("written", st.Written).Int("skipped", st.Skipped).Int("failed", st.Failed).
		Int("overview_failed", st.OverviewFailed).Msg("done")
	if st.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errFailed, st.Failed, st.Written+st.Failed)
	}
	if st.OverviewFailed > 0 {
		return fmt.Errorf("%w: %d overview graphs", errFailed, st.OverviewFailed)
	}
	return nil
}
