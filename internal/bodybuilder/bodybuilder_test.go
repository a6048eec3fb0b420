package bodybuilder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

func intTy() ident.TypeSpec { return ident.TypeSpec{Name: "int"} }

func TestConstantFoldingRewritesAddToMove(t *testing.T) {
	bb := New(prim.NewNamer())
	out := prim.OutVar(prim.PrimVarName{Name: "r", Suffix: 0}, intTy())
	bb.Instr(&prim.PrimForeignCall{
		Lang: "llvm", Name: "add",
		Args: []prim.PrimArg{prim.IntArg(2, intTy()), prim.IntArg(3, intTy()), out},
	}, ident.UnknownPos)

	// The folded move(5, r) is absorbed by move elimination: nothing is
	// emitted, and r's substitution resolves to the literal 5.
	body := bb.Finish()
	require.Empty(t, body.Prims)
	folded, ok := bb.currSubst[out.Var]
	require.True(t, ok)
	require.Equal(t, prim.IntArg(5, intTy()), folded)
	require.Equal(t, prim.IntArg(5, intTy()), bb.resolveVarName(out.Var))
}

func TestDivisionByZeroIsNotFolded(t *testing.T) {
	bb := New(prim.NewNamer())
	out := prim.OutVar(prim.PrimVarName{Name: "r", Suffix: 0}, intTy())
	call := &prim.PrimForeignCall{
		Lang: "llvm", Name: "div",
		Args: []prim.PrimArg{prim.IntArg(5, intTy()), prim.IntArg(0, intTy()), out},
	}
	bb.Instr(call, ident.UnknownPos)

	body := bb.Finish()
	require.Len(t, body.Prims, 1)
	_, _, ok := prim.IsMove(body.Prims[0].Prim)
	require.False(t, ok, "division by zero must be emitted unchanged so the runtime traps")
}

func TestMoveEliminationChainsThroughCurrSubst(t *testing.T) {
	bb := New(prim.NewNamer())
	x := prim.PrimVarName{Name: "x", Suffix: 0}
	y := prim.PrimVarName{Name: "y", Suffix: 0}

	bb.Instr(prim.Move(prim.IntArg(7, intTy()), prim.OutVar(x, intTy())), ident.UnknownPos)
	bb.Instr(prim.Move(prim.Var(x, intTy()), prim.OutVar(y, intTy())), ident.UnknownPos)

	body := bb.Finish()
	require.Empty(t, body.Prims, "both moves collapse into the substitution table, nothing is emitted")

	// A later read of y should resolve straight to the literal 7.
	useOut := prim.OutVar(prim.PrimVarName{Name: "z", Suffix: 0}, intTy())
	bb.Instr(&prim.PrimCall{
		Proc: prim.ProcSpec{Name: "use"},
		Args: []prim.PrimArg{prim.Var(y, intTy()), useOut},
	}, ident.UnknownPos)

	body = bb.Finish()
	require.Len(t, body.Prims, 1)
	call := body.Prims[0].Prim.(*prim.PrimCall)
	require.Equal(t, prim.IntArg(7, intTy()), call.Args[0])
}

func TestCSEEliminatesSecondIdenticalCall(t *testing.T) {
	bb := New(prim.NewNamer())
	spec := prim.ProcSpec{Name: "f"}
	a := prim.Var(prim.PrimVarName{Name: "a", Suffix: 0}, intTy())

	out1 := prim.OutVar(prim.PrimVarName{Name: "r1", Suffix: 0}, intTy())
	out2 := prim.OutVar(prim.PrimVarName{Name: "r2", Suffix: 0}, intTy())

	bb.Instr(&prim.PrimCall{Proc: spec, Args: []prim.PrimArg{a, out1}}, ident.UnknownPos)
	bb.Instr(&prim.PrimCall{Proc: spec, Args: []prim.PrimArg{a, out2}}, ident.UnknownPos)

	body := bb.Finish()
	require.Len(t, body.Prims, 1, "the second call is redundant and is eliminated via CSE")

	// r2 should now resolve to r1's value.
	useOut := prim.OutVar(prim.PrimVarName{Name: "z", Suffix: 0}, intTy())
	bb.Instr(&prim.PrimCall{
		Proc: prim.ProcSpec{Name: "use"},
		Args: []prim.PrimArg{prim.Var(prim.PrimVarName{Name: "r2", Suffix: 0}, intTy()), useOut},
	}, ident.UnknownPos)
	body = bb.Finish()
	call := body.Prims[len(body.Prims)-1].Prim.(*prim.PrimCall)
	used := call.Args[0].(prim.ArgVar)
	require.Equal(t, prim.PrimVarName{Name: "r1", Suffix: 0}, used.Var)
}

func TestBuildForkFoldsOnKnownLiteral(t *testing.T) {
	bb := New(prim.NewNamer())
	disc := prim.PrimVarName{Name: "d", Suffix: 0}
	bb.currSubst[disc] = prim.IntArg(1, intTy())

	var ranFalse, ranTrue bool
	bb.BuildFork(disc, false,
		func(b *BodyBuilder) { ranFalse = true },
		func(b *BodyBuilder) { ranTrue = true },
	)

	require.False(t, ranFalse)
	require.True(t, ranTrue)
	require.IsType(t, prim.NoFork{}, bb.Finish().Fork, "folded fork leaves the parent body unforked")
}

func TestBuildForkBranchesDoNotShareSubst(t *testing.T) {
	bb := New(prim.NewNamer())
	disc := prim.PrimVarName{Name: "d", Suffix: 0}

	bb.BuildFork(disc, true,
		func(b *BodyBuilder) {
			b.currSubst[prim.PrimVarName{Name: "only-in-branch-0", Suffix: 0}] = prim.IntArg(1, intTy())
		},
		func(b *BodyBuilder) {
			_, leaked := b.currSubst[prim.PrimVarName{Name: "only-in-branch-0", Suffix: 0}]
			require.False(t, leaked, "branch 1 must not see branch 0's substitutions")
		},
	)

	fork, ok := bb.Finish().Fork.(*prim.PrimFork)
	require.True(t, ok)
	require.Len(t, fork.Branches, 2)
	require.True(t, fork.Final)
	_, leakedToParent := bb.currSubst[prim.PrimVarName{Name: "only-in-branch-0", Suffix: 0}]
	require.False(t, leakedToParent, "a branch's substitutions must not leak back to the parent")
}
