package astir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

func TestProcDefAdvanceMonotonic(t *testing.T) {
	d := &ProcDef{
		Name:  "foo",
		Proto: &ProcProto{Name: "foo"},
		Impl:  SourceImpl{},
	}

	require.NoError(t, d.Advance(PrimitiveImpl{Proto: &PrimProto{Name: "foo"}, Body: prim.NewProcBody()}))
	require.Equal(t, StagePrimitive, d.Impl.Stage())

	// advancing backward is rejected
	err := d.Advance(SourceImpl{})
	require.Error(t, err)

	require.NoError(t, d.Advance(BlocksImpl{}))
	require.Equal(t, StageBlocks, d.Impl.Stage())

	// re-advancing to the same stage is also rejected
	err = d.Advance(BlocksImpl{})
	require.Error(t, err)
}

func TestIsAtomic(t *testing.T) {
	require.True(t, IsAtomic(NewVarRef(ident.UnknownPos, "x", FlowIn)))
	require.True(t, IsAtomic(&Lit{Kind: IntLit, Int: 1}))
	require.False(t, IsAtomic(NewCall(ident.UnknownPos, "f")))
}
