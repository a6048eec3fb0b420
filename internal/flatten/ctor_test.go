package flatten

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wybec/wybe/internal/alias"
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
	"github.com/wybec/wybe/internal/symtab"
	"github.com/wybec/wybe/internal/unbrancher"
)

func pointCtor() *astir.CtorDecl {
	return &astir.CtorDecl{
		TypeName: "point",
		Tag:      0,
		Name:     "point",
		Fields: []astir.CtorField{
			{Name: "x", Type: ident.NewTypeSpec(nil, "int")},
			{Name: "y", Type: ident.NewTypeSpec(nil, "int")},
		},
	}
}

// TestDesugarCtorGeneratesConstructorGetterSetter checks the shape of
// the procs DesugarCtor builds for a two-field constructor: one ctor
// proc and a getter+setter pair per field.
func TestDesugarCtorGeneratesConstructorGetterSetter(t *testing.T) {
	defs := DesugarCtor(pointCtor())
	require.Len(t, defs, 5, "ctor + (getter, setter) per field")

	ctor := defs[0]
	require.Equal(t, ident.Ident("point"), ctor.Name)
	require.Len(t, ctor.Proto.Params, 3, "x, y, result")
	require.Equal(t, astir.FlowOut, ctor.Proto.Params[2].Flow)

	src := ctor.Impl.(astir.SourceImpl)
	require.Len(t, src.Stmts, 3, "alloc plus one mutate per field")
	alloc := src.Stmts[0].(*astir.ForeignCallStmt)
	require.Equal(t, "alloc", alloc.Name)
	mutate := src.Stmts[1].(*astir.ForeignCallStmt)
	require.Equal(t, "mutate", mutate.Name)

	xGetter, xSetter := defs[1], defs[2]
	require.Equal(t, ident.Ident("x"), xGetter.Name)
	require.Equal(t, ident.Ident("x="), xSetter.Name)
	require.Equal(t, astir.FlowIn, xSetter.Proto.Params[1].Flow)
	require.Equal(t, astir.FlowInOut, xSetter.Proto.Params[0].Flow)

	getterSrc := xGetter.Impl.(astir.SourceImpl)
	access := getterSrc.Stmts[0].(*astir.ForeignCallStmt)
	require.Equal(t, "access", access.Name)
}

// TestDesugaredCtorLowersThroughUnbrancher runs every proc DesugarCtor
// produces through the unbrancher, proving the generated alloc/access/
// mutate statements are genuine lowerable surface syntax, not just
// shapes that happen to satisfy a unit test (§4.3/§4.4 end to end).
func TestDesugaredCtorLowersThroughUnbrancher(t *testing.T) {
	mod := symtab.New(".", ident.ParseModSpec("demo"), nil)
	noResolve := func(ident.Ident, int) (prim.ProcSpec, bool) { return prim.ProcSpec{}, false }

	for _, def := range DesugarCtor(pointCtor()) {
		u := unbrancher.New(mod, def.Name, noResolve)
		require.NoError(t, u.LowerProc(def))
		require.Equal(t, astir.StagePrimitive, def.Impl.Stage())
	}
}

// TestCtorSetterMutateProvenDestructive takes the setter proc
// DesugarCtor built for "x=", gives it a primitive body of the mutate
// shape that setter lowers to (input object unaliased and at its final
// use), and runs it through alias analysis, confirming that mutate is
// rewritten destructive (§4.6). The body is built here by hand rather
// than taken from the unbrancher's output.
func TestCtorSetterMutateProvenDestructive(t *testing.T) {
	defs := DesugarCtor(pointCtor())
	setter := defs[2] // "x="
	require.Equal(t, ident.Ident("x="), setter.Name)

	obj := prim.PrimVarName{Name: "obj", Suffix: 0}
	objOut := prim.PrimVarName{Name: "obj", Suffix: 1}
	val := prim.PrimVarName{Name: "val", Suffix: 0}

	body := prim.NewProcBody()
	body.Append(&prim.PrimForeignCall{
		Lang: "llvm", Name: "mutate",
		Args: []prim.PrimArg{
			prim.ArgVar{Var: obj, Ty: ident.Unspecified, FlowDir: prim.In, FlowTag: prim.FirstHalf, FinalUse: true},
			prim.ArgVar{Var: objOut, Ty: ident.Unspecified, FlowDir: prim.Out, FlowTag: prim.SecondHalf},
			prim.IntArg(2, ident.Unspecified),
			prim.IntArg(0, ident.Unspecified),
			prim.ArgVar{Var: val, Ty: ident.Unspecified, FlowDir: prim.In, FinalUse: true},
		},
	}, ident.UnknownPos)

	setter.Impl = &astir.PrimitiveImpl{
		Proto: &astir.PrimProto{Name: setter.Name, Params: []astir.PrimParam{
			{Name: obj, Flow: prim.In}, {Name: val, Flow: prim.In},
		}},
		Body: body,
	}

	aliasMap, rewritten, err := alias.AnalyzeProc(setter, func(prim.ProcSpec) (alias.CalleeInfo, bool) {
		return alias.CalleeInfo{}, false
	})
	require.NoError(t, err)
	require.NotNil(t, aliasMap)

	mutate := rewritten.Prims[0].Prim.(*prim.PrimForeignCall)
	require.True(t, mutate.HasFlag(alias.DestructiveFlag))
}
