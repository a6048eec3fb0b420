// Package bodybuilder implements the stateful ProcBody writer of §4.5:
// input substitution, output renaming, and common-subexpression
// elimination, assembled around constant folding (§4.5a).
package bodybuilder

import (
	"strings"

	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

// BodyBuilder is a single-owner writer over a partially-built
// ProcBody. Two concurrent calls to Instr on the same instance are
// undefined (§4.5 "Contract").
type BodyBuilder struct {
	namer *prim.Namer

	// currSubst is the input substitution: reads of an eliminated
	// variable resolve to its replacement PrimArg (var or literal).
	currSubst map[prim.PrimVarName]prim.PrimArg

	// outSubst is the output renaming used when a callee's output
	// variable is bound directly to a caller's site (inlining).
	outSubst map[prim.PrimVarName]prim.PrimVarName

	// subExprs maps a canonicalised input-only skeleton to the output
	// args it already produced, for CSE.
	subExprs map[string][]prim.PrimArg

	body *prim.ProcBody
}

// New returns an empty BodyBuilder sharing namer with its proc (and,
// once forked, with every branch of that proc).
func New(namer *prim.Namer) *BodyBuilder {
	return &BodyBuilder{
		namer:     namer,
		currSubst: make(map[prim.PrimVarName]prim.PrimArg),
		outSubst:  make(map[prim.PrimVarName]prim.PrimVarName),
		subExprs:  make(map[string][]prim.PrimArg),
		body:      prim.NewProcBody(),
	}
}

// Namer returns the per-proc SSA namer shared by this builder and any
// of its branch forks.
func (bb *BodyBuilder) Namer() *prim.Namer { return bb.namer }

// Finish returns the ProcBody assembled so far. Once a fork has been
// built (via BuildFork), the body is sealed and Finish returns the
// terminal tree.
func (bb *BodyBuilder) Finish() *prim.ProcBody { return bb.body }

// Instr emits prim into the body, applying substitution, constant
// folding, move elimination, and CSE in that order (§4.5 "instr").
func (bb *BodyBuilder) Instr(p prim.Prim, pos ident.OptPos) {
	if _, ok := p.(*prim.PrimNop); ok {
		return
	}

	p = bb.substitute(p)
	p = foldConstant(p)

	if v, out, ok := prim.IsMove(p); ok {
		if outVar, isVar := out.(prim.ArgVar); isVar && outVar.FlowDir == prim.Out {
			bb.currSubst[outVar.Var] = v
			return
		}
	}

	skeleton, outputs, cseable := splitSkeleton(p)
	if cseable {
		if prevOutputs, hit := bb.subExprs[skeleton]; hit {
			for i, newOut := range outputs {
				if i >= len(prevOutputs) {
					break
				}
				newVar, ok1 := newOut.(prim.ArgVar)
				oldVar, ok2 := prevOutputs[i].(prim.ArgVar)
				if ok1 && ok2 {
					bb.currSubst[newVar.Var] = prim.Var(oldVar.Var, oldVar.Ty)
				}
			}
			return
		}
		bb.subExprs[skeleton] = outputs
	}

	bb.body.Append(p, pos)
}

// BuildFork closes the body's linear prefix with a fork on
// discriminator. If discriminator resolves (through currSubst) to a
// known integer literal, the fork folds away entirely and only the
// selected branch builder runs, inline, against the current state
// (§4.5 "compile-time branch folding"). Otherwise every branch builder
// runs against its own copy of the current substitution/CSE state —
// branches neither see each other's results nor leak results back to
// the parent — and the resulting bodies become the fork's branches.
func (bb *BodyBuilder) BuildFork(discriminator prim.PrimVarName, final bool, branches ...func(*BodyBuilder)) {
	if lit, ok := bb.resolveVarName(discriminator).(prim.ArgLit); ok && lit.Kind == prim.IntLit {
		n := int(lit.Int)
		if n >= 0 && n < len(branches) {
			branches[n](bb)
		}
		return
	}

	forked := make([]*prim.ProcBody, len(branches))
	for i, fn := range branches {
		child := bb.cloneForBranch()
		fn(child)
		forked[i] = child.Finish()
	}
	bb.body.Fork = &prim.PrimFork{Var: discriminator, Final: final, Branches: forked}
}

func (bb *BodyBuilder) cloneForBranch() *BodyBuilder {
	return &BodyBuilder{
		namer:     bb.namer,
		currSubst: cloneSubst(bb.currSubst),
		outSubst:  cloneOutSubst(bb.outSubst),
		subExprs:  cloneSubExprs(bb.subExprs),
		body:      prim.NewProcBody(),
	}
}

func cloneSubst(m map[prim.PrimVarName]prim.PrimArg) map[prim.PrimVarName]prim.PrimArg {
	out := make(map[prim.PrimVarName]prim.PrimArg, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneOutSubst(m map[prim.PrimVarName]prim.PrimVarName) map[prim.PrimVarName]prim.PrimVarName {
	out := make(map[prim.PrimVarName]prim.PrimVarName, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSubExprs(m map[string][]prim.PrimArg) map[string][]prim.PrimArg {
	out := make(map[string][]prim.PrimArg, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// resolveVarName expands v through currSubst to fixpoint, returning
// the final PrimArg (a variable with no further substitution, or a
// literal).
func (bb *BodyBuilder) resolveVarName(v prim.PrimVarName) prim.PrimArg {
	var a prim.PrimArg = prim.Var(v, ident.Unspecified)
	for {
		cur, ok := a.(prim.ArgVar)
		if !ok {
			return a
		}
		repl, found := bb.currSubst[cur.Var]
		if !found {
			return a
		}
		a = repl
	}
}

// substitute rewrites p's input args through currSubst (to fixpoint)
// and output args through outSubst.
func (bb *BodyBuilder) substitute(p prim.Prim) prim.Prim {
	switch pr := p.(type) {
	case *prim.PrimCall:
		return &prim.PrimCall{Proc: pr.Proc, Args: bb.substituteArgs(pr.Args)}
	case *prim.PrimForeignCall:
		return &prim.PrimForeignCall{Lang: pr.Lang, Name: pr.Name, Flags: pr.Flags, Args: bb.substituteArgs(pr.Args)}
	default:
		return p
	}
}

func (bb *BodyBuilder) substituteArgs(args []prim.PrimArg) []prim.PrimArg {
	out := make([]prim.PrimArg, len(args))
	for i, a := range args {
		out[i] = bb.substituteArg(a)
	}
	return out
}

func (bb *BodyBuilder) substituteArg(a prim.PrimArg) prim.PrimArg {
	v, ok := a.(prim.ArgVar)
	if !ok {
		return a
	}
	if v.FlowDir == prim.Out {
		if renamed, found := bb.outSubst[v.Var]; found {
			v.Var = renamed
		}
		return v
	}
	for {
		repl, found := bb.currSubst[v.Var]
		if !found {
			return v
		}
		rv, isVar := repl.(prim.ArgVar)
		if !isVar {
			return repl
		}
		// Preserve this occurrence's flow metadata; only the identity
		// changes.
		v.Var, v.Ty = rv.Var, rv.Ty
	}
}

// splitSkeleton builds the CSE key for a call-shaped prim: its
// canonical opcode plus its (already-substituted) input args, and the
// list of its output args in order. Prims with no outputs (guards,
// fail) are never CSE candidates.
func splitSkeleton(p prim.Prim) (skeleton string, outputs []prim.PrimArg, cseable bool) {
	var opcode string
	var args []prim.PrimArg
	switch pr := p.(type) {
	case *prim.PrimCall:
		opcode = "call:" + pr.Proc.String()
		args = pr.Args
	case *prim.PrimForeignCall:
		opcode = "foreign:" + pr.Lang + ":" + pr.Name
		args = pr.Args
	default:
		return "", nil, false
	}

	var sb strings.Builder
	sb.WriteString(opcode)
	for _, a := range args {
		if v, ok := a.(prim.ArgVar); ok {
			if v.FlowDir == prim.Out {
				outputs = append(outputs, a)
				continue
			}
		}
		sb.WriteByte('|')
		sb.WriteString(a.String())
	}
	if len(outputs) == 0 {
		return "", nil, false
	}
	return sb.String(), outputs, true
}
