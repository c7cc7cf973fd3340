// Package pass drives the CFG printer over a sequence of functions, one
// function at a time.
package pass

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"

	"cfgdot/internal/graph"
	"cfgdot/internal/ir"
	"cfgdot/internal/output"
	"cfgdot/internal/overview"
)

// ErrOverview marks a failure to write the overview graph after the main
// CFG file was written.
var ErrOverview = errors.New("pass: overview not written")

// Pass prints the CFG of each function it is run on.
type Pass struct {
	Dir      string         // output directory
	Prefix   string         // filename prefix, "" for none
	Filter   *regexp.Regexp // nil selects every function
	Overview bool           // also write [prefix_]name.overview.dot
	Log      zerolog.Logger

	written map[string]string // path -> function, for this Pass
}

// Stats counts the outcome of Run.
type Stats struct {
	Written        int
	Skipped        int
	Failed         int
	OverviewFailed int // CFG written, overview not
}

// RunOnFunction builds and writes the CFG of fn. It never modifies the IR
// beyond naming unnamed values and always reports modified == false.
func (p *Pass) RunOnFunction(fn *ir.Function) (modified bool, err error) {
	if err := fn.Validate(); err != nil {
		return false, fmt.Errorf("pass: %w", err)
	}
	nodes := graph.Build(fn)

	path, err := output.WriteDOT(p.dir(), p.Prefix, fn.Name, nodes)
	if err != nil {
		return false, err
	}
	p.track(path, fn.Name)
	p.Log.Info().Str("func", fn.Name).Str("path", path).Int("blocks", len(nodes)).Msg("wrote cfg")

	if p.Overview {
		opath := filepath.Join(p.dir(), output.Filename(p.Prefix, fn.Name, ".overview.dot"))
		if err := output.WriteFile(opath, overview.DOT(fn.Name, nodes)); err != nil {
			return false, fmt.Errorf("%w: %w", ErrOverview, err)
		}
		p.track(opath, fn.Name)
		p.Log.Debug().Str("func", fn.Name).Str("path", opath).Msg("wrote overview")
	}
	return false, nil
}

// track warns when two functions map to the same output file.
func (p *Pass) track(path, fnName string) {
	if p.written == nil {
		p.written = make(map[string]string)
	}
	if prev, ok := p.written[path]; ok && prev != fnName {
		p.Log.Warn().Str("func", fnName).Str("previous", prev).Str("path", path).Msg("output file overwritten")
	}
	p.written[path] = fnName
}

// Run calls RunOnFunction for each function in order. A file that cannot be
// opened is reported and counted; the remaining functions still run. Any
// other error stops the run.
func (p *Pass) Run(fns []*ir.Function) (Stats, error) {
	var st Stats
	for _, fn := range fns {
		if p.Filter != nil && !p.Filter.MatchString(fn.Name) {
			p.Log.Debug().Str("func", fn.Name).Msg("skipped by filter")
			st.Skipped++
			continue
		}
		_, err := p.RunOnFunction(fn)
		if err == nil {
			st.Written++
			continue
		}
		var oe *output.OpenError
		if !errors.As(err, &oe) {
			return st, err
		}
		if errors.Is(err, ErrOverview) {
			p.Log.Error().Str("func", fn.Name).Str("path", oe.Path).Err(oe.Err).Msg("cannot open overview file")
			st.Written++
			st.OverviewFailed++
			continue
		}
		p.Log.Error().Str("func", fn.Name).Str("path", oe.Path).Err(oe.Err).Msg("cannot open output file")
		st.Failed++
	}
	return st, nil
}

func (p *Pass) dir() string {
	if p.Dir == "" {
		return "."
	}
	return p.Dir
}
