// Package gossa lowers Go SSA functions (golang.org/x/tools/go/ssa) into ir.
package gossa

import (
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"cfgdot/internal/ir"
)

var ErrPackages = errors.New("gossa: package errors")

// Load type-checks the packages matching patterns under dir, builds SSA and
// returns the functions declared in them, sorted by name.
func Load(dir string, patterns ...string) ([]*ir.Function, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedTypesSizes,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("gossa: load: %w", err)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s: %v", ErrPackages, pkg.PkgPath, pkg.Errors)
		}
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	own := make(map[*ssa.Package]bool, len(ssaPkgs))
	for _, p := range ssaPkgs {
		if p != nil {
			own[p] = true
		}
	}
	return collect(prog, own), nil
}

// FromSource builds SSA for a single Go source file. Imports are resolved
// from source.
func FromSource(filename string, src any) ([]*ir.Function, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("gossa: parse: %w", err)
	}
	tc := &types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg := types.NewPackage(f.Name.Name, f.Name.Name)
	ssaPkg, _, err := ssautil.BuildPackage(tc, fset, pkg, []*ast.File{f}, ssa.InstantiateGenerics)
	if err != nil {
		return nil, fmt.Errorf("gossa: build: %w", err)
	}
	return collect(ssaPkg.Prog, map[*ssa.Package]bool{ssaPkg: true}), nil
}

func collect(prog *ssa.Program, own map[*ssa.Package]bool) []*ir.Function {
	var fns []*ssa.Function
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Pkg == nil || !own[fn.Pkg] || fn.Synthetic != "" || len(fn.Blocks) == 0 {
			continue
		}
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool {
		return fns[i].RelString(fns[i].Pkg.Pkg) < fns[j].RelString(fns[j].Pkg.Pkg)
	})

	out := make([]*ir.Function, 0, len(fns))
	for _, fn := range fns {
		out = append(out, Convert(fn))
	}
	return out
}

// Convert lowers one SSA function. Instruction results are left unnamed so
// the printer numbers them; parameters, globals and functions keep their
// names. Blocks are named "<comment>.<index>".
func Convert(fn *ssa.Function) *ir.Function {
	c := converter{
		values: make(map[ssa.Value]ir.Value),
		blocks: make(map[*ssa.BasicBlock]*ir.BasicBlock, len(fn.Blocks)),
	}
	name := fn.String()
	if fn.Pkg != nil {
		name = fn.RelString(fn.Pkg.Pkg)
	}
	out := &ir.Function{Name: name}

	// Pass 1: blocks and instruction results, so phis may refer forward.
	for _, b := range fn.Blocks {
		bb := &ir.BasicBlock{Name: blockName(b)}
		c.blocks[b] = bb
		out.Blocks = append(out.Blocks, bb)
		for _, instr := range b.Instrs {
			v, ok := instr.(ssa.Value)
			if !ok || !producesValue(v) {
				continue
			}
			if _, isPhi := v.(*ssa.Phi); isPhi {
				c.values[v] = &ir.Phi{}
			} else {
				c.values[v] = &ir.Result{}
			}
		}
	}

	// Pass 2: instructions.
	for _, b := range fn.Blocks {
		bb := c.blocks[b]
		for _, instr := range b.Instrs {
			bb.Insts = append(bb.Insts, c.inst(b, instr))
		}
	}
	return out
}

type converter struct {
	values map[ssa.Value]ir.Value
	blocks map[*ssa.BasicBlock]*ir.BasicBlock
}

func (c *converter) inst(b *ssa.BasicBlock, instr ssa.Instruction) *ir.Instruction {
	inst := &ir.Instruction{Op: opcode(instr)}
	if v, ok := instr.(ssa.Value); ok && producesValue(v) {
		inst.Result = c.values[v]
	}

	for _, op := range instr.Operands(nil) {
		if op == nil || *op == nil {
			continue
		}
		inst.Operands = append(inst.Operands, c.value(*op))
	}

	switch instr.(type) {
	case *ssa.If, *ssa.Jump:
		inst.Term = true
		for _, s := range b.Succs {
			inst.Succs = append(inst.Succs, c.blocks[s])
			inst.Operands = append(inst.Operands, &ir.BlockRef{Block: c.blocks[s]})
		}
	case *ssa.Return, *ssa.Panic:
		inst.Term = true
	}

	if phi, ok := inst.Result.(*ir.Phi); ok {
		phi.Operands = inst.Operands
	}
	return inst
}

func (c *converter) value(v ssa.Value) ir.Value {
	if iv, ok := c.values[v]; ok {
		return iv
	}
	var iv ir.Value
	switch v := v.(type) {
	case *ssa.Const:
		iv = constValue(v)
	case *ssa.Function, *ssa.Global:
		iv = &ir.Result{Name: v.String()}
	default:
		iv = &ir.Result{Name: v.Name()}
	}
	c.values[v] = iv
	return iv
}

func constValue(c *ssa.Const) ir.Value {
	if c.Value != nil {
		if b, ok := c.Type().Underlying().(*types.Basic); ok && b.Info()&types.IsInteger != 0 {
			if b.Info()&types.IsUnsigned != 0 {
				return ir.IntConst{V: int64(c.Uint64())}
			}
			return ir.IntConst{V: c.Int64()}
		}
	}
	return &ir.Result{Name: c.Name()}
}

// producesValue reports whether v has a non-empty result type.
func producesValue(v ssa.Value) bool {
	if t, ok := v.Type().(*types.Tuple); ok {
		return t.Len() > 0
	}
	return v.Type() != nil
}

func blockName(b *ssa.BasicBlock) string {
	if b.Comment == "" {
		return fmt.Sprintf("b%d", b.Index)
	}
	return fmt.Sprintf("%s.%d", b.Comment, b.Index)
}

var binOps = map[token.Token]string{
	token.ADD:     "add",
	token.SUB:     "sub",
	token.MUL:     "mul",
	token.QUO:     "quo",
	token.REM:     "rem",
	token.AND:     "and",
	token.OR:      "or",
	token.XOR:     "xor",
	token.SHL:     "shl",
	token.SHR:     "shr",
	token.AND_NOT: "andnot",
	token.EQL:     "eql",
	token.NEQ:     "neq",
	token.LSS:     "lss",
	token.LEQ:     "leq",
	token.GTR:     "gtr",
	token.GEQ:     "geq",
}

var unOps = map[token.Token]string{
	token.NOT:   "not",
	token.SUB:   "neg",
	token.XOR:   "compl",
	token.MUL:   "load",
	token.ARROW: "recv",
}

func opcode(instr ssa.Instruction) string {
	switch v := instr.(type) {
	case *ssa.BinOp:
		if s, ok := binOps[v.Op]; ok {
			return s
		}
	case *ssa.UnOp:
		if s, ok := unOps[v.Op]; ok {
			return s
		}
	case *ssa.Call:
		if v.Call.IsInvoke() {
			return "invoke"
		}
		return "call"
	}
	name := fmt.Sprintf("%T", instr)
	return strings.ToLower(strings.TrimPrefix(name, "*ssa."))
}
