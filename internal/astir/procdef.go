package astir

import (
	"fmt"

	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

// ImplStage orders the three forms a ProcDef's implementation advances
// through (§3): a proc's impl advances monotonically, never backward.
type ImplStage int

const (
	StageSource ImplStage = iota
	StagePrimitive
	StageBlocks
)

// Impl is the sealed interface for a ProcDef's implementation, one of
// SourceImpl, PrimitiveImpl, or BlocksImpl.
type Impl interface {
	Stage() ImplStage
	implNode()
}

// SourceImpl holds the pre-lowering statement list.
type SourceImpl struct {
	Stmts []Stmt
}

func (SourceImpl) Stage() ImplStage { return StageSource }
func (SourceImpl) implNode()        {}

// PrimProto is the post-lowering prototype: parameters flattened to
// primitive in/out pairs.
type PrimProto struct {
	Name   ident.Ident
	Params []PrimParam
}

// PrimParam is one formal parameter in primitive form.
type PrimParam struct {
	Name    prim.PrimVarName
	Type    ident.TypeSpec
	Flow    prim.Flow
	Phantom bool // phantom (erased) params are excluded from alias analysis
}

// Analysis is the result of alias analysis on a proc (§4.6); defined
// fully in package alias, referenced here as an opaque attachment so
// astir does not depend on alias (avoiding an import cycle, since
// alias depends on astir for ProcDef/ProcBody traversal).
type Analysis interface {
	IsAnalysis()
}

// PrimitiveImpl holds the lowered, optimised, (optionally) analysed
// form.
type PrimitiveImpl struct {
	Proto    *PrimProto
	Body     *prim.ProcBody
	Analysis Analysis // nil until alias analysis has run
}

func (PrimitiveImpl) Stage() ImplStage { return StagePrimitive }
func (PrimitiveImpl) implNode()        {}

// BlocksImpl holds the post-codegen block form. Codegen is an external
// collaborator (§1); this repo only carries the placeholder shape it
// would occupy (§4.7).
type BlocksImpl struct {
	Opaque any
}

func (BlocksImpl) Stage() ImplStage { return StageBlocks }
func (BlocksImpl) implNode()        {}

// ProcDef is a procedure or function definition at any pipeline stage.
type ProcDef struct {
	Name  ident.Ident
	Proto *ProcProto
	Impl  Impl
	Pos   ident.OptPos

	// ID disambiguates same-named overloads within a module, assigned
	// by the symbol table on registration (§4.2); -1 until then.
	ID int
}

// Advance replaces d.Impl with next, enforcing the monotonic-stage
// invariant (§3). Returns an error (never panics) if next would move
// backward or stay put.
func (d *ProcDef) Advance(next Impl) error {
	if next.Stage() <= d.Impl.Stage() {
		return fmt.Errorf("proc %s: cannot advance impl from stage %d to stage %d", d.Name, d.Impl.Stage(), next.Stage())
	}
	d.Impl = next
	return nil
}
