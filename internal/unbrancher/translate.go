package unbrancher

import (
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

// builtinOp names the "llvm" foreign operator flatten's synthetic
// BinOp/UnOp calls lower to (§4.3, §4.5a).
type builtinOp struct {
	name      string
	predicate string // non-empty for icmp/fcmp
}

var builtinOps = map[string]builtinOp{
	"+": {name: "add"}, "-": {name: "sub"}, "*": {name: "mul"}, "/": {name: "div"},
	"+.": {name: "fadd"}, "-.": {name: "fsub"}, "*.": {name: "fmul"}, "/.": {name: "fdiv"},
	"==": {name: "icmp", predicate: "eq"}, "~=": {name: "icmp", predicate: "ne"},
	"<": {name: "icmp", predicate: "slt"}, "<=": {name: "icmp", predicate: "sle"},
	">": {name: "icmp", predicate: "sgt"}, ">=": {name: "icmp", predicate: "sge"},
	"==.": {name: "fcmp", predicate: "eq"}, "~=.": {name: "fcmp", predicate: "ne"},
	"neg": {name: "neg"}, "not": {name: "not"},
}

// translateLit maps a surface literal onto its primitive-IR form.
func translateLit(l *astir.Lit, ty ident.TypeSpec) prim.ArgLit {
	switch l.Kind {
	case astir.FloatLit:
		return prim.FloatArg(l.Float, ty)
	case astir.StringLit:
		return prim.StringArg(l.Str, ty)
	case astir.CharLit:
		return prim.CharArg(l.Char, ty)
	default:
		return prim.IntArg(l.Int, ty)
	}
}

// translateArg lowers one atomic surface Expr into the one (in or
// out flow) or two (in/out flow) PrimArgs it occupies at a call site
// (§3 FlowTag: FirstHalf/SecondHalf split an in/out occurrence).
func (u *Unbrancher) translateArg(e astir.Expr, env *env) []prim.PrimArg {
	ty := astir.TypeOf(e)
	switch v := astir.Unwrap(e).(type) {
	case *astir.VarRef:
		switch v.Flow {
		case astir.FlowOut:
			name := env.bind(v.Name)
			return []prim.PrimArg{prim.OutVar(name, ty)}
		case astir.FlowInOut:
			oldName := env.current(v.Name)
			newName := env.bind(v.Name)
			first := prim.ArgVar{Var: oldName, Ty: ty, FlowDir: prim.In, FlowTag: prim.FirstHalf}
			second := prim.ArgVar{Var: newName, Ty: ty, FlowDir: prim.Out, FlowTag: prim.SecondHalf}
			return []prim.PrimArg{first, second}
		default: // FlowIn
			return []prim.PrimArg{prim.Var(env.current(v.Name), ty)}
		}
	case *astir.Lit:
		return []prim.PrimArg{translateLit(v, ty)}
	}
	return nil
}

func (u *Unbrancher) translateArgs(args []astir.Expr, env *env) []prim.PrimArg {
	var out []prim.PrimArg
	for _, a := range args {
		out = append(out, u.translateArg(a, env)...)
	}
	return out
}

// buildCallPrim assembles the Prim for a call to proc with the given
// already-lowered args (its last entries being the output args):
// a builtin operator becomes a "llvm" foreign call, otherwise it is
// resolved against u.resolve (falling back to an unresolved PrimCall
// for the linker to settle later — cross-module resolution is outside
// this pass's scope, §4.2).
func (u *Unbrancher) buildCallPrim(proc ident.Ident, args []prim.PrimArg, surfaceArity int) prim.Prim {
	if op, ok := builtinOps[string(proc)]; ok {
		var flags []prim.ForeignFlag
		if op.predicate != "" {
			flags = append(flags, prim.ForeignFlag(op.predicate))
		}
		return &prim.PrimForeignCall{Lang: "llvm", Name: op.name, Flags: flags, Args: args}
	}
	if spec, ok := u.resolve(proc, surfaceArity); ok {
		return &prim.PrimCall{Proc: spec, Args: args}
	}
	return &prim.PrimCall{Proc: prim.ProcSpec{Mod: u.mod.Spec, Name: proc, ID: -1}, Args: args}
}
