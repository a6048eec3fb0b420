package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/symtab"
)

func TestSingleAcyclicModuleClosesImmediately(t *testing.T) {
	d := New(nil)
	mod := d.EnterModule(".", ident.ParseModSpec("std"), nil)
	require.Equal(t, 1, mod.ThisLoadNum)
	require.Equal(t, 1, mod.MinDependencyNum)

	scc := d.ExitModule()
	require.Equal(t, []ident.ModSpec{ident.ParseModSpec("std")}, scc)

	loaded, ok := d.Loaded(ident.ParseModSpec("std"))
	require.True(t, ok)
	require.Same(t, mod, loaded)
}

// TestMutualRecursionClosesAsOneSCC simulates module A importing B
// while B imports A back, verifying both close together as a single
// SCC rooted at A (§4.1, §8 Module SCC).
func TestMutualRecursionClosesAsOneSCC(t *testing.T) {
	d := New(nil)

	a := d.EnterModule(".", ident.ParseModSpec("a"), nil)

	var bMod *symtab.Module
	_, err := d.Import(a, ident.ParseModSpec("b"), func() (*symtab.Module, error) {
		b := d.EnterModule(".", ident.ParseModSpec("b"), nil)
		// B imports A back: A is on the stack, so this closes a cycle.
		_, err := d.Import(b, ident.ParseModSpec("a"), func() (*symtab.Module, error) {
			t.Fatal("a should already be on the stack; loadFn must not run")
			return nil, nil
		})
		require.NoError(t, err)
		bMod = b
		scc := d.ExitModule()
		require.Nil(t, scc, "b is part of an unfinished SCC and must defer")
		return b, nil
	})
	require.NoError(t, err)

	require.Equal(t, a.ThisLoadNum, bMod.MinDependencyNum)

	scc := d.ExitModule()
	require.ElementsMatch(t, []ident.ModSpec{ident.ParseModSpec("a"), ident.ParseModSpec("b")}, scc)

	_, aLoaded := d.Loaded(ident.ParseModSpec("a"))
	_, bLoaded := d.Loaded(ident.ParseModSpec("b"))
	require.True(t, aLoaded)
	require.True(t, bLoaded)
}

func TestSCCInvariant(t *testing.T) {
	// §8 "Module SCC": for every module M, minDependencyNum <=
	// thisLoadNum, and equality holds iff M is the SCC root.
	d := New(nil)
	a := d.EnterModule(".", ident.ParseModSpec("a"), nil)
	require.LessOrEqual(t, a.MinDependencyNum, a.ThisLoadNum)
	scc := d.ExitModule()
	require.NotNil(t, scc)
	require.Equal(t, a.MinDependencyNum, a.ThisLoadNum)
}
