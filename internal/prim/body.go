package prim

import (
	"strings"

	"github.com/wybec/wybe/internal/ident"
)

// PlacedPrim pairs a Prim with its optional source position.
type PlacedPrim struct {
	Prim Prim
	Pos  ident.OptPos
}

// Fork is either no fork (this body ends in a return-equivalent) or a
// multi-way primFork on an integer-valued variable.
type Fork interface {
	fork()
}

// NoFork marks a ProcBody that terminates without branching.
type NoFork struct{}

func (NoFork) fork() {}

// PrimFork is a multi-way branch: branch index equals the discriminator
// variable's value. Branch order is fixed by the unbrancher (§4.4:
// index 0 = false, index 1 = true, for a two-way if).
type PrimFork struct {
	Var      PrimVarName
	Final    bool // true iff no branch rejoins (tail position for CSE)
	Branches []*ProcBody
}

func (*PrimFork) fork() {}

// ProcBody is a tree-shaped sequence of prims terminated by either
// NoFork or a PrimFork. Built fresh by BodyBuilder and never mutated
// after assembly; analysis may produce a rewritten copy (§3).
type ProcBody struct {
	Prims []PlacedPrim
	Fork  Fork
}

// NewProcBody returns an empty body with no fork, ready for prims to
// be appended.
func NewProcBody() *ProcBody {
	return &ProcBody{Fork: NoFork{}}
}

// Append adds a placed prim to the body's linear prim sequence.
func (b *ProcBody) Append(p Prim, pos ident.OptPos) {
	b.Prims = append(b.Prims, PlacedPrim{Prim: p, Pos: pos})
}

// Walk visits every linear prim of every branch on every root-to-leaf
// path, depth-first, calling visit(prim) before descending into any
// fork. It does not provide path context; callers needing per-branch
// state should recurse manually over Fork.
func (b *ProcBody) Walk(visit func(PlacedPrim)) {
	for _, pp := range b.Prims {
		visit(pp)
	}
	if fork, ok := b.Fork.(*PrimFork); ok {
		for _, branch := range fork.Branches {
			branch.Walk(visit)
		}
	}
}

func (b *ProcBody) String() string {
	var sb strings.Builder
	for _, pp := range b.Prims {
		sb.WriteString(pp.Prim.String())
		sb.WriteByte('\n')
	}
	switch f := b.Fork.(type) {
	case *PrimFork:
		sb.WriteString("fork ")
		sb.WriteString(f.Var.String())
		sb.WriteString(" {\n")
		for i, branch := range f.Branches {
			sb.WriteString(itoa(i))
			sb.WriteString(": ")
			sb.WriteString(branch.String())
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}
