package prim

import (
	"fmt"

	"github.com/wybec/wybe/internal/ident"
)

// Flow is the parameter-passing direction of a PrimArg.
type Flow int

const (
	In Flow = iota
	Out
)

func (f Flow) String() string {
	if f == Out {
		return "out"
	}
	return "in"
}

// FlowTag records how an in/out source parameter was split into an
// in+out pair during unbranching/flattening.
type FlowTag int

const (
	Ordinary FlowTag = iota
	FirstHalf
	SecondHalf
	Implicit
)

func (t FlowTag) String() string {
	switch t {
	case FirstHalf:
		return "firstHalf"
	case SecondHalf:
		return "secondHalf"
	case Implicit:
		return "implicit"
	default:
		return "ordinary"
	}
}

// PrimArg is either a variable reference or a literal, each carrying a
// TypeSpec.
type PrimArg interface {
	Type() ident.TypeSpec
	String() string
	primArg()
}

// ArgVar is a variable-reference PrimArg.
type ArgVar struct {
	Var      PrimVarName
	Ty       ident.TypeSpec
	FlowDir  Flow
	FlowTag  FlowTag
	FinalUse bool
}

func (a ArgVar) Type() ident.TypeSpec { return a.Ty }
func (a ArgVar) primArg()             {}
func (a ArgVar) String() string {
	final := ""
	if a.FinalUse {
		final = "!"
	}
	return fmt.Sprintf("%s%s:%s", a.Var, final, a.FlowDir)
}

// LitKind distinguishes literal PrimArg payload types.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StringLit
	CharLit
)

// ArgLit is a literal-value PrimArg.
type ArgLit struct {
	Kind  LitKind
	Ty    ident.TypeSpec
	Int   int64
	Float float64
	Str   string
	Char  rune
}

func (a ArgLit) Type() ident.TypeSpec { return a.Ty }
func (a ArgLit) primArg()             {}
func (a ArgLit) String() string {
	switch a.Kind {
	case IntLit:
		return fmt.Sprintf("%d", a.Int)
	case FloatLit:
		return fmt.Sprintf("%g", a.Float)
	case StringLit:
		return fmt.Sprintf("%q", a.Str)
	case CharLit:
		return fmt.Sprintf("%q", a.Char)
	}
	return "<lit>"
}

// IntArg builds an integer literal PrimArg of the given TypeSpec.
func IntArg(n int64, ty ident.TypeSpec) ArgLit { return ArgLit{Kind: IntLit, Int: n, Ty: ty} }

// FloatArg builds a float literal PrimArg.
func FloatArg(f float64, ty ident.TypeSpec) ArgLit { return ArgLit{Kind: FloatLit, Float: f, Ty: ty} }

// StringArg builds a string literal PrimArg.
func StringArg(s string, ty ident.TypeSpec) ArgLit { return ArgLit{Kind: StringLit, Str: s, Ty: ty} }

// CharArg builds a char literal PrimArg.
func CharArg(c rune, ty ident.TypeSpec) ArgLit { return ArgLit{Kind: CharLit, Char: c, Ty: ty} }

// Var builds an in-flow, non-final ArgVar — the common case.
func Var(name PrimVarName, ty ident.TypeSpec) ArgVar {
	return ArgVar{Var: name, Ty: ty, FlowDir: In}
}

// OutVar builds an out-flow ArgVar.
func OutVar(name PrimVarName, ty ident.TypeSpec) ArgVar {
	return ArgVar{Var: name, Ty: ty, FlowDir: Out}
}
