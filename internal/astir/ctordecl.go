package astir

import "github.com/wybec/wybe/internal/ident"

// CtorField is one named, typed field of a constructor declaration.
type CtorField struct {
	Name ident.Ident
	Type ident.TypeSpec
}

// CtorDecl is one sum-type constructor of TypeName (§6 "constructor
// declarations"): Tag discriminates it among TypeName's sibling
// constructors, and Fields lists its payload in declaration order. Per
// §9's Open Question decision, ctor declarations and the getter/setter
// convention they imply are syntactic sugar: the normaliser expands
// each CtorDecl into ordinary ProcDefs (the constructor itself, and a
// getter/setter pair per field) before the flattener ever runs, so
// nothing downstream needs to know constructors exist at all.
type CtorDecl struct {
	TypeName ident.Ident
	Tag      int
	Name     ident.Ident
	Fields   []CtorField
	Pos      ident.OptPos
}
