// Package unbrancher turns flattened statement sequences into the
// fork-structured, SSA-named ProcBody form BodyBuilder assembles
// (§4.4): linear statements become prims, `if` becomes a primFork, and
// `do`/`break`/`next` become a lifted tail-recursive private proc.
package unbrancher

import (
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/bodybuilder"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
	"github.com/wybec/wybe/internal/symtab"
)

// Resolver looks up a callable proc by name and surface arity. It
// returns false for calls this pass cannot yet settle (cross-module or
// forward references); those lower to an unresolved PrimCall for a
// later linking pass to fix up.
type Resolver func(name ident.Ident, arity int) (prim.ProcSpec, bool)

// Unbrancher lowers one proc's SourceImpl into a PrimitiveImpl, lifting
// any do-loops it contains into fresh private procs registered on mod.
type Unbrancher struct {
	mod      *symtab.Module
	procName ident.Ident
	resolve  Resolver
}

// New returns an Unbrancher that lowers procs of mod, minting loop
// procs rooted at procName's origin and resolving calls via resolve.
func New(mod *symtab.Module, procName ident.Ident, resolve Resolver) *Unbrancher {
	return &Unbrancher{mod: mod, procName: procName, resolve: resolve}
}

// loopCtx threads the enclosing do-loop proc's identity through a
// loop body's translation so break/next can compile to a return or a
// self-call respectively (§4.4).
type loopCtx struct {
	proc  prim.ProcSpec
	names []ident.Ident
}

// LowerProc advances def from SourceImpl to PrimitiveImpl.
func (u *Unbrancher) LowerProc(def *astir.ProcDef) error {
	src, ok := def.Impl.(*astir.SourceImpl)
	if !ok {
		if s, ok2 := def.Impl.(astir.SourceImpl); ok2 {
			src = &s
		} else {
			return errNotSource(def.Name)
		}
	}

	namer := prim.NewNamer()
	e := newEnv(namer)

	var params []astir.PrimParam
	var outputs []ident.Ident
	for _, p := range def.Proto.Params {
		switch p.Flow {
		case astir.FlowIn:
			v := e.bind(p.Name)
			params = append(params, astir.PrimParam{Name: v, Type: p.Type, Flow: prim.In})
		case astir.FlowOut:
			params = append(params, astir.PrimParam{
				Name: prim.PrimVarName{Name: p.Name, Suffix: prim.FinalSuffix}, Type: p.Type, Flow: prim.Out,
			})
			outputs = append(outputs, p.Name)
		case astir.FlowInOut:
			v := e.bind(p.Name)
			params = append(params, astir.PrimParam{Name: v, Type: p.Type, Flow: prim.In})
			params = append(params, astir.PrimParam{
				Name: prim.PrimVarName{Name: p.Name, Suffix: prim.FinalSuffix}, Type: p.Type, Flow: prim.Out,
			})
			outputs = append(outputs, p.Name)
		}
	}

	bb := bodybuilder.New(namer)
	u.unbranchInto(bb, src.Stmts, e, outputs, nil)

	return def.Advance(&astir.PrimitiveImpl{
		Proto: &astir.PrimProto{Name: def.Name, Params: params},
		Body:  bb.Finish(),
	})
}

// unbranchInto translates stmts in order against e, appending prims to
// bb. It returns once the statement list is exhausted (emitting the
// proc's or loop's finalization/self-call) or once a branching or
// loop-exit construct has taken over the remainder of the path.
func (u *Unbrancher) unbranchInto(bb *bodybuilder.BodyBuilder, stmts []astir.Stmt, e *env, outputs []ident.Ident, loop *loopCtx) {
	for i := 0; i < len(stmts); i++ {
		switch st := stmts[i].(type) {
		case *astir.CallStmt:
			args := u.translateArgs(st.Args, e)
			bb.Instr(u.buildCallPrim(st.Proc, args, len(st.Args)), st.Pos())

		case *astir.ForeignCallStmt:
			args := u.translateArgs(st.Args, e)
			bb.Instr(&prim.PrimForeignCall{Lang: st.Lang, Name: st.Name, Args: args}, st.Pos())

		case *astir.If:
			u.unbranchIf(bb, desugarIf(st), stmts[i+1:], e, outputs, loop)
			return

		case *astir.When:
			ifEquiv := &astir.If{Clauses: []astir.IfClause{{Cond: st.Cond, Body: st.Body}}}
			u.unbranchIf(bb, ifEquiv, stmts[i+1:], e, outputs, loop)
			return

		case *astir.Unless:
			ifEquiv := &astir.If{Clauses: []astir.IfClause{{Cond: st.Cond}}, Else: st.Body}
			u.unbranchIf(bb, ifEquiv, stmts[i+1:], e, outputs, loop)
			return

		case *astir.Do:
			u.unbranchDo(bb, st, e)

		case *astir.While:
			u.unbranchDo(bb, whileToDo(st), e)

		case *astir.Until:
			u.unbranchDo(bb, untilToDo(st), e)

		case *astir.For:
			u.unbranchDo(bb, forToDo(st), e)

		case *astir.Break:
			if loop != nil {
				u.finalize(bb, e, loop.names, st.Pos())
			} else {
				u.finalize(bb, e, outputs, st.Pos())
			}
			return

		case *astir.Next:
			if loop != nil {
				u.emitSelfCall(bb, loop, e, st.Pos())
			}
			return
		}
	}

	if loop != nil {
		u.emitSelfCall(bb, loop, e, ident.UnknownPos)
		return
	}
	u.finalize(bb, e, outputs, ident.UnknownPos)
}

// desugarIf folds a multi-clause `if c1::b1 | c2::b2 | ... end` into
// nested binary ifs, so the rest of the pipeline only ever sees a
// single-clause (or clause-less) If (§4.4 "branch order is fixed").
func desugarIf(st *astir.If) *astir.If {
	if len(st.Clauses) <= 1 {
		return st
	}
	rest := desugarIf(&astir.If{Clauses: st.Clauses[1:], Else: st.Else})
	return &astir.If{Clauses: []astir.IfClause{st.Clauses[0]}, Else: []astir.Stmt{rest}}
}

// unbranchIf lowers a single-clause If into a two-way primFork. Per
// §4.4 "branch order is fixed": branch 0 is false, branch 1 is true.
// The statements following the If (tail) are duplicated into both
// branches rather than factored into a shared join continuation —
// every resulting leaf is therefore genuinely terminal, so the fork is
// always built with final=true.
func (u *Unbrancher) unbranchIf(bb *bodybuilder.BodyBuilder, st *astir.If, tail []astir.Stmt, e *env, outputs []ident.Ident, loop *loopCtx) {
	if len(st.Clauses) == 0 {
		u.unbranchInto(bb, append(append([]astir.Stmt{}, st.Else...), tail...), e, outputs, loop)
		return
	}
	clause := st.Clauses[0]
	disc := u.condVarName(bb, clause.Cond, e, st.Pos())

	falseBody := append(append([]astir.Stmt{}, st.Else...), tail...)
	trueBody := append(append([]astir.Stmt{}, clause.Body...), tail...)

	bb.BuildFork(disc, true,
		func(b *bodybuilder.BodyBuilder) { u.unbranchInto(b, falseBody, e.copy(), outputs, loop) },
		func(b *bodybuilder.BodyBuilder) { u.unbranchInto(b, trueBody, e.copy(), outputs, loop) },
	)
}

// condVarName resolves an If/When/Unless condition to the boolean
// PrimVarName a primFork discriminates on, emitting whatever prims are
// needed to produce it (a literal is moved into a temp; a call's
// result is bound to a fresh temp via its implicit output arg).
func (u *Unbrancher) condVarName(bb *bodybuilder.BodyBuilder, cond astir.Expr, e *env, pos ident.OptPos) prim.PrimVarName {
	switch c := astir.Unwrap(cond).(type) {
	case *astir.VarRef:
		return e.current(c.Name)
	case *astir.Lit:
		tmp := e.bind("$cond")
		bb.Instr(prim.Move(translateLit(c, ident.Unspecified), prim.OutVar(tmp, ident.Unspecified)), pos)
		return tmp
	case *astir.Call:
		args := u.translateArgs(c.Args, e)
		tmp := e.bind("$cond")
		args = append(args, prim.OutVar(tmp, ident.Unspecified))
		bb.Instr(u.buildCallPrim(c.Proc, args, len(c.Args)), pos)
		return tmp
	default:
		tmp := e.bind("$cond")
		return tmp
	}
}

// unbranchDo lifts st's body into a fresh private tail-recursive proc
// (§4.4), passing every name currently bound in e as a loop-carried
// in/out parameter, then emits the initial call to it.
func (u *Unbrancher) unbranchDo(bb *bodybuilder.BodyBuilder, st *astir.Do, e *env) {
	carried := e.names()

	loopNamer := prim.NewNamer()
	loopEnv := newEnv(loopNamer)
	var loopParams []astir.PrimParam
	for _, n := range carried {
		v := loopEnv.bind(n)
		loopParams = append(loopParams, astir.PrimParam{Name: v, Type: ident.Unspecified, Flow: prim.In})
		loopParams = append(loopParams, astir.PrimParam{
			Name: prim.PrimVarName{Name: n, Suffix: prim.FinalSuffix}, Type: ident.Unspecified, Flow: prim.Out,
		})
	}

	name := u.mod.Implementation.FreshProcName(u.procName)
	def := &astir.ProcDef{Name: name, Proto: &astir.ProcProto{Name: name}, Pos: st.Pos(), Impl: astir.SourceImpl{}}
	u.mod.AddPrivateProc(def)

	loopSpec := prim.ProcSpec{Mod: u.mod.Spec, Name: name, ID: def.ID}
	loop := &loopCtx{proc: loopSpec, names: carried}

	loopBB := bodybuilder.New(loopNamer)
	u.unbranchInto(loopBB, st.Body, loopEnv, carried, loop)

	if err := def.Advance(&astir.PrimitiveImpl{
		Proto: &astir.PrimProto{Name: name, Params: loopParams},
		Body:  loopBB.Finish(),
	}); err != nil {
		panic(err) // def was just created above; advancing Source->Primitive cannot fail
	}

	var callArgs []prim.PrimArg
	for _, n := range carried {
		callArgs = append(callArgs, prim.Var(e.current(n), ident.Unspecified))
		callArgs = append(callArgs, prim.OutVar(e.bind(n), ident.Unspecified))
	}
	bb.Instr(&prim.PrimCall{Proc: loopSpec, Args: callArgs}, st.Pos())
}

// emitSelfCall compiles `next`: a tail call back into the enclosing
// loop proc carrying the current value of every loop-carried name.
func (u *Unbrancher) emitSelfCall(bb *bodybuilder.BodyBuilder, loop *loopCtx, e *env, pos ident.OptPos) {
	var args []prim.PrimArg
	for _, n := range loop.names {
		args = append(args, prim.Var(e.current(n), ident.Unspecified))
		args = append(args, prim.OutVar(e.bind(n), ident.Unspecified))
	}
	bb.Instr(&prim.PrimCall{Proc: loop.proc, Args: args}, pos)
}

// finalize binds every output-flow formal name's current value to its
// proc-exit slot (PrimVarName{name, FinalSuffix}), the convention a
// caller's output argument resolves to (§3).
func (u *Unbrancher) finalize(bb *bodybuilder.BodyBuilder, e *env, outputs []ident.Ident, pos ident.OptPos) {
	for _, name := range outputs {
		final := prim.PrimVarName{Name: name, Suffix: prim.FinalSuffix}
		bb.Instr(prim.Move(prim.Var(e.current(name), ident.Unspecified), prim.OutVar(final, ident.Unspecified)), pos)
	}
}

// whileToDo desugars `while E do B end` into `do if E then B;next else
// break end end`.
func whileToDo(st *astir.While) *astir.Do {
	body := append(append([]astir.Stmt{}, st.Body...), &astir.Next{})
	return &astir.Do{Body: []astir.Stmt{&astir.If{
		Clauses: []astir.IfClause{{Cond: st.Cond, Body: body}},
		Else:    []astir.Stmt{&astir.Break{}},
	}}}
}

// untilToDo desugars `until E do B end` into `do if E then break else
// B;next end end`.
func untilToDo(st *astir.Until) *astir.Do {
	body := append(append([]astir.Stmt{}, st.Body...), &astir.Next{})
	return &astir.Do{Body: []astir.Stmt{&astir.If{
		Clauses: []astir.IfClause{{Cond: st.Cond, Body: []astir.Stmt{&astir.Break{}}}},
		Else:    body,
	}}}
}

// forToDo desugars `for V in E do B end` into a loop that test-calls
// the iteration proc "next" each pass, per Wybe's semi-deterministic
// test-proc convention: a failing test call takes the implicit else.
func forToDo(st *astir.For) *astir.Do {
	cond := astir.NewCall(st.Pos(), "next", st.Iterable, astir.NewVarRef(st.Pos(), st.Var, astir.FlowOut))
	body := append(append([]astir.Stmt{}, st.Body...), &astir.Next{})
	return &astir.Do{Body: []astir.Stmt{&astir.If{
		Clauses: []astir.IfClause{{Cond: cond, Body: body}},
		Else:    []astir.Stmt{&astir.Break{}},
	}}}
}

type notSourceErr struct{ name ident.Ident }

func (e notSourceErr) Error() string { return "proc " + string(e.name) + ": impl is not SourceImpl" }

func errNotSource(name ident.Ident) error { return notSourceErr{name} }
