package flatten

import (
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
)

// setterSuffix marks a generated field setter's proc name. A getter and
// setter share a field's name in the surface grammar (the "unified"
// getter/setter convention), resolved by which argument flows carry
// "?"/"!"; this compiler's proc lookup is plain name+arity (§4.2), with
// no mode-polymorphic overload resolution, so the setter is registered
// under a distinct name at the same arity instead of colliding with the
// getter's.
const setterSuffix = "="

// DesugarCtor expands one constructor declaration into the constructor
// proc plus a getter and setter proc per field, built entirely from
// alloc/access/mutate foreign calls (§9 Open Question: "ctor
// declarations and the unified getter/setter expansion... desugar to
// primitive alloc/access/mutate foreign calls at normalisation time").
// A field's size and offset are modeled as one word per field (offset
// = field index, field count = object size); the actual byte layout is
// LLVM codegen's concern, out of this compiler's scope (§1).
//
// The returned ProcDefs are plain SourceImpl procs: ordinary surface
// calls to decl.Name or a field's name compile exactly like a call to
// any user-written proc, so the caller only needs to register them
// (e.g. via symtab.Module.AddPublicProc) before lowering.
func DesugarCtor(decl *astir.CtorDecl) []*astir.ProcDef {
	objTy := ident.NewTypeSpec(nil, decl.TypeName)
	size := len(decl.Fields)

	defs := make([]*astir.ProcDef, 0, 1+2*len(decl.Fields))
	defs = append(defs, ctorProc(decl, objTy, size))
	for i, f := range decl.Fields {
		defs = append(defs, getterProc(decl, f, objTy, size, i))
		defs = append(defs, setterProc(decl, f, objTy, size, i))
	}
	return defs
}

// sizeLit models one of the ctor's uniform one-word-per-field layout
// numbers (a size or an offset) as a plain integer literal.
func sizeLit(n int) *astir.Lit { return &astir.Lit{Kind: astir.IntLit, Int: int64(n)} }

// ctorProc builds `decl.Name(f1, f2, ...) -> result`: an alloc
// producing result, then one destructively-threaded mutate per field
// writing that field's argument into it.
func ctorProc(decl *astir.CtorDecl, objTy ident.TypeSpec, size int) *astir.ProcDef {
	const resultName = ident.Ident("result")

	params := make([]astir.Param, 0, len(decl.Fields)+1)
	for _, f := range decl.Fields {
		params = append(params, astir.Param{Name: f.Name, Type: f.Type, Flow: astir.FlowIn})
	}
	params = append(params, astir.Param{Name: resultName, Type: objTy, Flow: astir.FlowOut})

	stmts := []astir.Stmt{
		&astir.ForeignCallStmt{
			Lang: "llvm", Name: "alloc",
			Args: []astir.Expr{
				&astir.Lit{Kind: astir.IntLit, Int: int64(decl.Tag)},
				sizeLit(size),
				astir.NewVarRef(decl.Pos, resultName, astir.FlowOut),
			},
		},
	}
	for i, f := range decl.Fields {
		stmts = append(stmts, &astir.ForeignCallStmt{
			Lang: "llvm", Name: "mutate",
			Args: []astir.Expr{
				astir.NewVarRef(decl.Pos, resultName, astir.FlowInOut),
				sizeLit(size),
				sizeLit(i),
				astir.NewVarRef(decl.Pos, f.Name, astir.FlowIn),
			},
		})
	}

	return &astir.ProcDef{
		Name:  decl.Name,
		Proto: &astir.ProcProto{Name: decl.Name, Params: params},
		Pos:   decl.Pos,
		Impl:  astir.SourceImpl{Stmts: stmts},
	}
}

// getterProc builds `f.Name(obj) -> val`: a single access reading the
// field out of obj.
func getterProc(decl *astir.CtorDecl, f astir.CtorField, objTy ident.TypeSpec, size, offset int) *astir.ProcDef {
	const objName, valName = ident.Ident("obj"), ident.Ident("val")

	params := []astir.Param{
		{Name: objName, Type: objTy, Flow: astir.FlowIn},
		{Name: valName, Type: f.Type, Flow: astir.FlowOut},
	}
	stmts := []astir.Stmt{
		&astir.ForeignCallStmt{
			Lang: "llvm", Name: "access",
			Args: []astir.Expr{
				astir.NewVarRef(decl.Pos, objName, astir.FlowIn),
				sizeLit(size),
				sizeLit(offset),
				astir.NewVarRef(decl.Pos, valName, astir.FlowOut),
			},
		},
	}
	return &astir.ProcDef{
		Name:  f.Name,
		Proto: &astir.ProcProto{Name: f.Name, Params: params},
		Pos:   decl.Pos,
		Impl:  astir.SourceImpl{Stmts: stmts},
	}
}

// setterProc builds `f.Name=(!obj, val)`: a single mutate writing val
// into obj's field in place, destructive exactly when alias analysis
// proves obj is unaliased and at its final use (§4.6).
func setterProc(decl *astir.CtorDecl, f astir.CtorField, objTy ident.TypeSpec, size, offset int) *astir.ProcDef {
	const objName, valName = ident.Ident("obj"), ident.Ident("val")
	name := f.Name + setterSuffix

	params := []astir.Param{
		{Name: objName, Type: objTy, Flow: astir.FlowInOut},
		{Name: valName, Type: f.Type, Flow: astir.FlowIn},
	}
	stmts := []astir.Stmt{
		&astir.ForeignCallStmt{
			Lang: "llvm", Name: "mutate",
			Args: []astir.Expr{
				astir.NewVarRef(decl.Pos, objName, astir.FlowInOut),
				sizeLit(size),
				sizeLit(offset),
				astir.NewVarRef(decl.Pos, valName, astir.FlowIn),
			},
		},
	}
	return &astir.ProcDef{
		Name:  name,
		Proto: &astir.ProcProto{Name: name, Params: params},
		Pos:   decl.Pos,
		Impl:  astir.SourceImpl{Stmts: stmts},
	}
}
