package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
)

func TestAddPublicTypeMirrorsBothTables(t *testing.T) {
	m := New(".", ident.ParseModSpec("math"), nil)
	m.AddPublicType("complex", 0, ident.UnknownPos)

	_, inInterface := m.Interface.Types["complex"]
	_, inImpl := m.Implementation.Types["complex"]
	require.True(t, inInterface)
	require.True(t, inImpl)
	require.NoError(t, m.CheckInvariant())
}

func TestAddPrivateTypeOnlyImplementation(t *testing.T) {
	m := New(".", ident.ParseModSpec("math"), nil)
	m.AddPrivateType("scratch", 0, ident.UnknownPos)

	_, inInterface := m.Interface.Types["scratch"]
	_, inImpl := m.Implementation.Types["scratch"]
	require.False(t, inInterface)
	require.True(t, inImpl)
}

func TestAddProcOverloadsByArity(t *testing.T) {
	m := New(".", ident.ParseModSpec("math"), nil)
	def1 := &astir.ProcDef{Name: "gcd", Proto: &astir.ProcProto{Name: "gcd", Params: []astir.Param{{Name: "a"}, {Name: "b"}}}}
	def2 := &astir.ProcDef{Name: "gcd", Proto: &astir.ProcProto{Name: "gcd", Params: []astir.Param{{Name: "a"}}}}

	id1 := m.AddPublicProc(def1)
	id2 := m.AddPublicProc(def2)
	require.NotEqual(t, id1, id2)

	found, ok := m.LookupProcArity("gcd", 1)
	require.True(t, ok)
	require.Same(t, def2, found)

	require.Len(t, m.Interface.Procs["gcd"], 2)
	require.NoError(t, m.CheckInvariant())
}

func TestImportSpecCombineElementwiseMax(t *testing.T) {
	a := NewItemImport(map[ident.Ident]ident.Visibility{"foo": ident.Private, "bar": ident.Public})
	b := NewItemImport(map[ident.Ident]ident.Visibility{"foo": ident.Public})

	combined := Combine(a, b)
	require.Equal(t, ident.Public, combined.Items["foo"])
	require.Equal(t, ident.Public, combined.Items["bar"])
}

func TestImportSpecCombineWhole(t *testing.T) {
	a := NewWholeImport(ident.Private)
	b := Nothing()
	combined := Combine(a, b)
	require.NotNil(t, combined.Whole)
	require.Equal(t, ident.Private, *combined.Whole)
}

func TestFreshProcNameIsUnique(t *testing.T) {
	impl := NewImplementation()
	n1 := impl.FreshProcName("loop")
	n2 := impl.FreshProcName("loop")
	require.NotEqual(t, n1, n2)
}
