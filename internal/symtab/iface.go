// Package symtab implements the module symbol tables of §4.2: each
// module holds a public Interface and a private Implementation, with
// every public entry mirrored into the implementation tables.
package symtab

import (
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
)

// TypeEntry records a declared type's arity and declaration position.
type TypeEntry struct {
	Arity int
	Pos   ident.OptPos
}

// ProcEntry is one overload of a public proc: its disambiguating id,
// prototype, and declaration position.
type ProcEntry struct {
	ID    int
	Proto *astir.ProcProto
	Pos   ident.OptPos
}

// Interface holds a module's public surface: types, resources, procs
// (overloaded by arity), re-exported dependencies, and the set of
// transitive module dependencies to link.
type Interface struct {
	Types     map[ident.Ident]TypeEntry
	Resources map[ident.Ident]ident.OptPos
	Procs     map[ident.Ident][]ProcEntry
	Reexports map[string]ImportSpec // keyed by dotted ModSpec
	Deps      map[string]bool       // transitive deps to link, keyed by dotted ModSpec
}

// NewInterface returns an empty Interface.
func NewInterface() *Interface {
	return &Interface{
		Types:     make(map[ident.Ident]TypeEntry),
		Resources: make(map[ident.Ident]ident.OptPos),
		Procs:     make(map[ident.Ident][]ProcEntry),
		Reexports: make(map[string]ImportSpec),
		Deps:      make(map[string]bool),
	}
}

// ImportRecord pairs the spec a module imports from with what it
// actually uses and re-exports (§4.2).
type ImportRecord struct {
	Uses    ident.ModSpec
	Imports ImportSpec
}

// Implementation holds everything private plus mirrors of every
// public entry: imports, submodules, all locally-defined
// types/resources/procs, and per-proc synthetic-name counters.
type Implementation struct {
	Imports      map[string]ImportRecord // keyed by dotted source spec
	Submodules   map[ident.Ident]*Module
	Types        map[ident.Ident]TypeEntry
	Resources    map[ident.Ident]ident.OptPos
	Procs        map[ident.Ident][]*astir.ProcDef
	ProcCounters map[ident.Ident]int // fresh synthetic-proc-name counters, keyed by origin proc
}

// NewImplementation returns an empty Implementation.
func NewImplementation() *Implementation {
	return &Implementation{
		Imports:      make(map[string]ImportRecord),
		Submodules:   make(map[ident.Ident]*Module),
		Types:        make(map[ident.Ident]TypeEntry),
		Resources:    make(map[ident.Ident]ident.OptPos),
		Procs:        make(map[ident.Ident][]*astir.ProcDef),
		ProcCounters: make(map[ident.Ident]int),
	}
}

// FreshProcName mints a unique private proc name derived from origin,
// for loop-body lifting during unbranching (§4.4).
func (impl *Implementation) FreshProcName(origin ident.Ident) ident.Ident {
	n := impl.ProcCounters[origin]
	impl.ProcCounters[origin] = n + 1
	return ident.Ident(string(origin) + "__loop" + itoa(n))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
