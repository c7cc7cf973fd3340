package ir

// Value is an operand or instruction result. The set of implementations is
// closed: *Result, *BlockRef, IntConst, *ConstExpr, *ConstAggregate, *Phi.
type Value interface {
	isValue()
}

// Named is implemented by values that carry a display name which the printer
// may assign when absent.
type Named interface {
	ValueName() string
	SetValueName(string)
}

// Result is a reference to a named value: an instruction result, parameter,
// global or any host value without further structure. An empty Name marks an
// unnamed placeholder.
type Result struct {
	Name string
}

// BlockRef is a basic block used as an operand (e.g. a branch target).
type BlockRef struct {
	Block *BasicBlock
}

// IntConst is an integer constant holding its sign-extended value.
type IntConst struct {
	V int64
}

// ConstExpr is a compile-time expression over constant operands.
type ConstExpr struct {
	Op       string
	Operands []Value
}

// ConstAggregate is a constant struct, array or vector.
type ConstAggregate struct {
	Operands []Value
}

// Phi is a merge value: one candidate operand per incoming edge.
type Phi struct {
	Name     string
	Operands []Value
}

func (*Result) isValue()         {}
func (*BlockRef) isValue()       {}
func (IntConst) isValue()        {}
func (*ConstExpr) isValue()      {}
func (*ConstAggregate) isValue() {}
func (*Phi) isValue()            {}

func (r *Result) ValueName() string     { return r.Name }
func (r *Result) SetValueName(s string) { r.Name = s }
func (p *Phi) ValueName() string        { return p.Name }
func (p *Phi) SetValueName(s string)    { p.Name = s }

// NameOf returns the current display name of v, or "" if v carries none.
func NameOf(v Value) string {
	if n, ok := v.(Named); ok {
		return n.ValueName()
	}
	return ""
}
