package prim

import (
	"fmt"
	"strings"

	"github.com/wybec/wybe/internal/ident"
)

// ProcSpec identifies a callable procedure: its module, name, and a
// disambiguating id (procs are indexed by name to a list, supporting
// overloading by arity — §4.2).
type ProcSpec struct {
	Mod  ident.ModSpec
	Name ident.Ident
	ID   int
}

func (p ProcSpec) String() string {
	return fmt.Sprintf("%s.%s#%d", p.Mod, p.Name, p.ID)
}

// Prim is one primitive instruction: a proc call, a foreign call, a
// guard, fail, or nop. Foreign calls are a single tagged variant (§9:
// "do not explode per-language").
type Prim interface {
	String() string
	prim()
}

// PrimCall calls another Wybe procedure.
type PrimCall struct {
	Proc ProcSpec
	Args []PrimArg
}

func (p *PrimCall) prim() {}
func (p *PrimCall) String() string {
	return fmt.Sprintf("%s(%s)", p.Proc, joinArgs(p.Args))
}

// ForeignFlag is an opaque per-call foreign-call modifier, e.g. the
// destructive flag on a mutate call.
type ForeignFlag string

// PrimForeignCall calls a foreign operation. Lang "llvm" denotes the
// built-in arithmetic/comparison/move operator set (§6); any other
// language string names an external symbol for codegen to declare.
type PrimForeignCall struct {
	Lang  string
	Name  string
	Flags []ForeignFlag
	Args  []PrimArg
}

func (p *PrimForeignCall) prim() {}
func (p *PrimForeignCall) String() string {
	return fmt.Sprintf("foreign %s %s(%s)", p.Lang, p.Name, joinArgs(p.Args))
}

// HasFlag reports whether flag is present among the call's flags.
func (p *PrimForeignCall) HasFlag(flag ForeignFlag) bool {
	for _, f := range p.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// SetFlag ensures flag is present among the call's flags, adding it if
// absent.
func (p *PrimForeignCall) SetFlag(flag ForeignFlag) {
	if p.HasFlag(flag) {
		return
	}
	p.Flags = append(p.Flags, flag)
}

// PrimGuard tests var against an integer value.
type PrimGuard struct {
	Var PrimVarName
	Val int64
}

func (p *PrimGuard) prim() {}
func (p *PrimGuard) String() string {
	return fmt.Sprintf("guard(%s, %d)", p.Var, p.Val)
}

// PrimFail unconditionally fails the enclosing (semi-deterministic)
// procedure.
type PrimFail struct{}

func (p *PrimFail) prim() {}
func (p *PrimFail) String() string { return "fail" }

// PrimNop does nothing; BodyBuilder drops these on sight.
type PrimNop struct{}

func (p *PrimNop) prim() {}
func (p *PrimNop) String() string { return "nop" }

// Move is sugar for the foreign move(v, out) primitive that
// BodyBuilder's constant folder and the unbrancher emit (§4.5, §4.5a).
func Move(v PrimArg, out PrimArg) *PrimForeignCall {
	return &PrimForeignCall{Lang: "llvm", Name: "move", Args: []PrimArg{v, out}}
}

// IsMove reports whether p is a move(v, out) foreign call, and returns
// its arguments.
func IsMove(p Prim) (in, out PrimArg, ok bool) {
	fc, isForeign := p.(*PrimForeignCall)
	if !isForeign || fc.Lang != "llvm" || fc.Name != "move" || len(fc.Args) != 2 {
		return nil, nil, false
	}
	return fc.Args[0], fc.Args[1], true
}

func joinArgs(args []PrimArg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
