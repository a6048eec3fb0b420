package symtab

import (
	"fmt"

	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
)

// Module is the mutable record for one module: its directory, path,
// optional type parameters, public Interface, and (once populated) its
// private Implementation. ThisLoadNum/MinDependencyNum drive the
// driver's SCC discovery (§4.1).
type Module struct {
	Dir    string
	Spec   ident.ModSpec
	Params []ident.Ident

	Interface      *Interface
	Implementation *Implementation

	ThisLoadNum      int
	MinDependencyNum int

	nextProcID int
}

// New creates a module with an empty Interface and Implementation.
func New(dir string, spec ident.ModSpec, params []ident.Ident) *Module {
	return &Module{
		Dir:            dir,
		Spec:           spec,
		Params:         params,
		Interface:      NewInterface(),
		Implementation: NewImplementation(),
	}
}

// SetNextProcID restores the fresh-overload-id counter to n. Used only
// when reconstructing a Module from a persisted artifact, so that proc
// ids minted afterward do not collide with ids already on disk.
func (m *Module) SetNextProcID(n int) {
	if n > m.nextProcID {
		m.nextProcID = n
	}
}

// AddPublicType records a public type, updating both tables (§4.2
// invariant).
func (m *Module) AddPublicType(name ident.Ident, arity int, pos ident.OptPos) {
	entry := TypeEntry{Arity: arity, Pos: pos}
	m.Interface.Types[name] = entry
	m.Implementation.Types[name] = entry
}

// AddPrivateType records a private type, updating only the
// implementation table.
func (m *Module) AddPrivateType(name ident.Ident, arity int, pos ident.OptPos) {
	m.Implementation.Types[name] = TypeEntry{Arity: arity, Pos: pos}
}

// AddPublicResource records a public resource, updating both tables.
func (m *Module) AddPublicResource(name ident.Ident, pos ident.OptPos) {
	m.Interface.Resources[name] = pos
	m.Implementation.Resources[name] = pos
}

// AddPrivateResource records a private resource, updating only the
// implementation table.
func (m *Module) AddPrivateResource(name ident.Ident, pos ident.OptPos) {
	m.Implementation.Resources[name] = pos
}

// AddPublicProc registers a new overload of a public proc def,
// updating both tables and returning the ProcDef's fresh overload id.
func (m *Module) AddPublicProc(def *astir.ProcDef) int {
	id := m.addProcImpl(def)
	m.Interface.Procs[def.Name] = append(m.Interface.Procs[def.Name], ProcEntry{
		ID:    id,
		Proto: def.Proto,
		Pos:   def.Pos,
	})
	return id
}

// AddPrivateProc registers a new overload of a private proc def,
// updating only the implementation table.
func (m *Module) AddPrivateProc(def *astir.ProcDef) int {
	return m.addProcImpl(def)
}

func (m *Module) addProcImpl(def *astir.ProcDef) int {
	id := m.nextProcID
	m.nextProcID++
	def.ID = id
	m.Implementation.Procs[def.Name] = append(m.Implementation.Procs[def.Name], def)
	return id
}

// LookupProc finds all overloads of name visible from the
// implementation (private + public).
func (m *Module) LookupProc(name ident.Ident) []*astir.ProcDef {
	return m.Implementation.Procs[name]
}

// LookupProcArity finds the single overload of name with the given
// arity, if any.
func (m *Module) LookupProcArity(name ident.Ident, arity int) (*astir.ProcDef, bool) {
	for _, def := range m.Implementation.Procs[name] {
		if def.Proto.Arity() == arity {
			return def, true
		}
	}
	return nil, false
}

// CheckInvariant verifies that every public entry is mirrored into the
// implementation tables (§4.2 invariant). The driver does not call it;
// it is exercised by tests.
func (m *Module) CheckInvariant() error {
	for name, entry := range m.Interface.Types {
		implEntry, ok := m.Implementation.Types[name]
		if !ok || implEntry != entry {
			return fmt.Errorf("module %s: public type %s missing from implementation", m.Spec, name)
		}
	}
	for name, pos := range m.Interface.Resources {
		implPos, ok := m.Implementation.Resources[name]
		if !ok || implPos != pos {
			return fmt.Errorf("module %s: public resource %s missing from implementation", m.Spec, name)
		}
	}
	for name, entries := range m.Interface.Procs {
		implDefs := m.Implementation.Procs[name]
		if len(implDefs) < len(entries) {
			return fmt.Errorf("module %s: public proc %s has fewer implementation overloads than interface entries", m.Spec, name)
		}
	}
	return nil
}
