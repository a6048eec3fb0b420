// Package driver implements the compiler driver and module SCC loader
// of §4.1: a single-threaded stack discipline (Tarjan lowlink,
// discovered through import declarations rather than a pre-built
// graph) that decides, as each module finishes, whether it closes its
// own strongly-connected component or must wait for the rest of its
// cycle.
package driver

import (
	"github.com/wybec/wybe/internal/diagnostics"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/options"
	"github.com/wybec/wybe/internal/symtab"
)

// Driver holds the single-threaded compiler state: options, the
// diagnostic buffer, the table of fully-loaded modules, the load
// counter, the under-compilation stack, and modules deferred pending
// their SCC's closure (§5 "the compiler state and the current
// under-compilation stack are sole-owned by the driver").
type Driver struct {
	Options *options.Options
	Diags   *diagnostics.Buffer

	loaded      map[string]*symtab.Module
	loadCounter int
	stack       []*symtab.Module
	deferred    []*symtab.Module
}

// New returns a driver with empty state.
func New(opts *options.Options) *Driver {
	if opts == nil {
		opts = options.New()
	}
	return &Driver{
		Options: opts,
		Diags:   diagnostics.NewBuffer(),
		loaded:  make(map[string]*symtab.Module),
	}
}

// EnterModule pushes a new module onto the under-compilation stack,
// assigning thisLoadNum := ++counter and minDependencyNum :=
// thisLoadNum (§4.1).
func (d *Driver) EnterModule(dir string, spec ident.ModSpec, params []ident.Ident) *symtab.Module {
	d.loadCounter++
	mod := symtab.New(dir, spec, params)
	mod.ThisLoadNum = d.loadCounter
	mod.MinDependencyNum = d.loadCounter
	d.stack = append(d.stack, mod)
	return mod
}

// Current returns the module currently being compiled (top of stack),
// or nil if the stack is empty.
func (d *Driver) Current() *symtab.Module {
	if len(d.stack) == 0 {
		return nil
	}
	return d.stack[len(d.stack)-1]
}

// ExitModule pops the top of the stack. If its minDependencyNum is
// still less than its thisLoadNum, it belongs to an unfinished SCC:
// it moves to the deferred list and ExitModule returns nil. Otherwise
// it is an SCC root: ExitModule collects it plus every deferred module
// sharing its minDependencyNum, removes them from deferred, registers
// them all as loaded, and returns their specs as the completed SCC
// (§4.1).
func (d *Driver) ExitModule() []ident.ModSpec {
	n := len(d.stack)
	top := d.stack[n-1]
	d.stack = d.stack[:n-1]

	if top.MinDependencyNum < top.ThisLoadNum {
		d.deferred = append(d.deferred, top)
		return nil
	}

	// SCC root: the members of this SCC are exactly the deferred
	// modules sharing top's minDependencyNum, which (since modules
	// finish in nested order) form a contiguous suffix of `deferred`.
	cut := len(d.deferred)
	for cut > 0 && d.deferred[cut-1].MinDependencyNum == top.ThisLoadNum {
		cut--
	}
	members := append([]*symtab.Module{}, d.deferred[cut:]...)
	d.deferred = d.deferred[:cut]
	members = append(members, top)

	specs := make([]ident.ModSpec, len(members))
	for i, m := range members {
		d.loaded[m.Spec.String()] = m
		specs[i] = m.Spec
	}
	return specs
}

// Loaded looks up a fully-closed (SCC-finalized) module by spec.
func (d *Driver) Loaded(spec ident.ModSpec) (*symtab.Module, bool) {
	m, ok := d.loaded[spec.String()]
	return m, ok
}

// LoadedSpecs lists every fully-closed module's spec, in no particular
// order. Used by ambient tooling (e.g. internal/inspect) to enumerate
// what is available to browse.
func (d *Driver) LoadedSpecs() []ident.ModSpec {
	specs := make([]ident.ModSpec, 0, len(d.loaded))
	for _, m := range d.loaded {
		specs = append(specs, m.Spec)
	}
	return specs
}

// RegisterLoaded installs mod directly into the loaded table, bypassing
// the SCC stack discipline of EnterModule/ExitModule. Used when a
// module was reconstructed from a persisted artifact (§6) rather than
// discovered via Import.
func (d *Driver) RegisterLoaded(mod *symtab.Module) {
	d.loaded[mod.Spec.String()] = mod
}

// OnStack reports whether spec is currently under compilation (i.e.
// importing it would close a cycle), and returns that module.
func (d *Driver) OnStack(spec ident.ModSpec) (*symtab.Module, bool) {
	for _, m := range d.stack {
		if m.Spec.Equal(spec) {
			return m, true
		}
	}
	return nil, false
}

// Import resolves an import of target from caller. If target is
// already fully loaded, it is returned directly (no cycle, since a
// fully-loaded module can no longer be on the stack). If target is on
// the stack, this is a cycle: caller's minDependencyNum is lowered to
// target's thisLoadNum, and target is returned. Otherwise the caller
// must load target itself (pushing it via EnterModule, populating it,
// and calling ExitModule) via loadFn; once loaded, if target turned
// out to be cyclic with anything below caller, that is propagated into
// caller's minDependencyNum too (§4.1 "On importing a not-yet-loaded
// module M... if M was cyclic with the current module, update the
// current module's minDependencyNum").
func (d *Driver) Import(caller *symtab.Module, target ident.ModSpec, loadFn func() (*symtab.Module, error)) (*symtab.Module, error) {
	if m, ok := d.Loaded(target); ok {
		return m, nil
	}
	if m, ok := d.OnStack(target); ok {
		if m.ThisLoadNum < caller.MinDependencyNum {
			caller.MinDependencyNum = m.ThisLoadNum
		}
		return m, nil
	}
	mod, err := loadFn()
	if err != nil {
		return nil, err
	}
	if mod.MinDependencyNum < caller.MinDependencyNum {
		caller.MinDependencyNum = mod.MinDependencyNum
	}
	return mod, nil
}
