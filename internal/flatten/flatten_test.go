package flatten

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
)

func TestFreshNamesAreUniquePerFlattener(t *testing.T) {
	f := New()
	require.Equal(t, ident.Ident("$tmp0"), f.fresh())
	require.Equal(t, ident.Ident("$tmp1"), f.fresh())

	g := New()
	require.Equal(t, ident.Ident("$tmp0"), g.fresh(), "counters are per-Flattener (per-proc), not global")
}

// TestNestedCallFlattensToTempChain verifies `foo(bar(x), 1)` becomes
// two CallStmts, with the inner call's output bound to a fresh
// temporary fed into the outer call (§4.3).
func TestNestedCallFlattensToTempChain(t *testing.T) {
	inner := astir.NewCall(ident.UnknownPos, "bar", astir.NewVarRef(ident.UnknownPos, "x", astir.FlowIn))
	outer := astir.NewCallStmt(ident.UnknownPos, "foo", inner, &astir.Lit{Kind: astir.IntLit, Int: 1})

	f := New()
	out := f.FlattenStmts([]astir.Stmt{outer})
	require.Len(t, out, 2)

	innerCall, ok := out[0].(*astir.CallStmt)
	require.True(t, ok)
	require.Equal(t, ident.Ident("bar"), innerCall.Proc)
	require.Len(t, innerCall.Args, 2, "original arg plus the fresh output temp")

	outerCall, ok := out[1].(*astir.CallStmt)
	require.True(t, ok)
	require.Equal(t, ident.Ident("foo"), outerCall.Proc)
	require.Len(t, outerCall.Args, 2)

	outTemp, ok := innerCall.Args[1].(*astir.VarRef)
	require.True(t, ok)
	require.Equal(t, astir.FlowOut, outTemp.Flow)

	inTemp, ok := outerCall.Args[0].(*astir.VarRef)
	require.True(t, ok)
	require.Equal(t, outTemp.Name, inTemp.Name)
	require.Equal(t, astir.FlowIn, inTemp.Flow)
}

// TestBinOpFlattensToSyntheticCall verifies `x + y` becomes a CallStmt
// naming the operator as the proc, with a fresh output temp.
func TestBinOpFlattensToSyntheticCall(t *testing.T) {
	expr := &astir.BinOp{
		Op:   "+",
		Left: astir.NewVarRef(ident.UnknownPos, "x", astir.FlowIn),
		Right: astir.NewVarRef(ident.UnknownPos, "y", astir.FlowIn),
	}
	stmt := astir.NewCallStmt(ident.UnknownPos, "use", expr)

	f := New()
	out := f.FlattenStmts([]astir.Stmt{stmt})
	require.Len(t, out, 2)

	plus, ok := out[0].(*astir.CallStmt)
	require.True(t, ok)
	require.Equal(t, ident.Ident("+"), plus.Proc)
	require.Len(t, plus.Args, 3)
}

// TestAscriptionPreservedThroughFlattening checks that a type
// ascription wrapping a non-atomic expression survives flattening,
// still wrapping the replacement temporary reference.
func TestAscriptionPreservedThroughFlattening(t *testing.T) {
	call := astir.NewCall(ident.UnknownPos, "bar")
	asc := &astir.Ascription{Inner: call, Type: ident.TypeSpec{Name: "int"}}
	stmt := astir.NewCallStmt(ident.UnknownPos, "use", asc)

	f := New()
	out := f.FlattenStmts([]astir.Stmt{stmt})
	require.Len(t, out, 2)

	use, ok := out[1].(*astir.CallStmt)
	require.True(t, ok)
	wrapped, ok := use.Args[0].(*astir.Ascription)
	require.True(t, ok)
	require.Equal(t, ident.TypeSpec{Name: "int"}, wrapped.Type)
	require.True(t, astir.IsAtomic(wrapped))
}

// TestOnlyFirstIfClauseConditionHoists ensures a later clause's
// condition-evaluation prims stay inside that clause's own arm rather
// than leaking into the unconditional lead-in.
func TestOnlyFirstIfClauseConditionHoists(t *testing.T) {
	firstCond := astir.NewVarRef(ident.UnknownPos, "p", astir.FlowIn)
	secondCond := astir.NewCall(ident.UnknownPos, "q")

	ifStmt := &astir.If{
		Clauses: []astir.IfClause{
			{Cond: firstCond, Body: nil},
			{Cond: secondCond, Body: nil},
		},
	}

	f := New()
	out := f.FlattenStmts([]astir.Stmt{ifStmt})
	require.Len(t, out, 1, "no prims needed before the If since the first condition is already atomic")

	flattenedIf, ok := out[0].(*astir.If)
	require.True(t, ok)
	require.Len(t, flattenedIf.Clauses[1].Body, 1, "second clause's call-evaluation prim lives in its own body")
}

func TestDoAndLoopBodiesRecurse(t *testing.T) {
	inner := astir.NewCallStmt(ident.UnknownPos, "foo", astir.NewCall(ident.UnknownPos, "bar"))
	doStmt := &astir.Do{Body: []astir.Stmt{inner}}

	f := New()
	out := f.FlattenStmts([]astir.Stmt{doStmt})
	require.Len(t, out, 1)

	flattenedDo, ok := out[0].(*astir.Do)
	require.True(t, ok)
	require.Len(t, flattenedDo.Body, 2, "the nested call flattens into two statements")
}
