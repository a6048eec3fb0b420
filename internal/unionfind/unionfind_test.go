package unionfind

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

func TestUniteAndFind(t *testing.T) {
	m := New()
	a, b, c := pv("a"), pv("b"), pv("c")

	require.True(t, m.Singleton(a))
	require.False(t, m.Aliased(a, b))

	require.True(t, m.Unite(a, b))
	require.True(t, m.Aliased(a, b))
	require.False(t, m.Singleton(a))

	// uniting the same pair again reports no new merge
	require.False(t, m.Unite(a, b))

	require.False(t, m.Aliased(a, c))
	m.Unite(b, c)
	require.True(t, m.Aliased(a, c))
}

func TestDeleteRootPromotesSibling(t *testing.T) {
	m := New()
	a, b, c := pv("a"), pv("b"), pv("c")
	m.Unite(a, b)
	m.Unite(a, c)

	root := m.Find(a)
	m.Delete(root)

	// the remaining two members must still be aliased to each other
	remaining := []prim.PrimVarName{a, b, c}
	var survivors []prim.PrimVarName
	for _, x := range remaining {
		if x != root {
			survivors = append(survivors, x)
		}
	}
	require.True(t, m.Aliased(survivors[0], survivors[1]))
}

func TestDeleteOnlyMemberDropsClass(t *testing.T) {
	m := New()
	a := pv("a")
	m.ensure(a)
	m.Delete(a)
	require.Empty(t, m.Keys())
}

func TestCanonicalPairsSortedAndDeduped(t *testing.T) {
	m := New()
	a, b, c := pv("a"), pv("b"), pv("c")
	m.Unite(a, b)
	m.Unite(b, c)

	pairs := m.CanonicalPairs()
	require.Len(t, pairs, 2)
	// re-running must produce the same canonical order
	pairs2 := m.Clone().CanonicalPairs()
	require.Equal(t, pairs, pairs2)
}

func TestChangedIgnoresFirstPopulation(t *testing.T) {
	before := New()
	after := New()
	a, b := pv("a"), pv("b")
	after.Unite(a, b)

	require.False(t, Changed(before, after))

	before2 := after.Clone()
	after2 := after.Clone()
	c := pv("c")
	after2.Unite(a, c)
	require.True(t, Changed(before2, after2))
}

func pv(name string) prim.PrimVarName {
	return prim.PrimVarName{Name: ident.Ident(name), Suffix: 0}
}
