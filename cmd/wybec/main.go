// Command wybec is the Wybe compiler driver's CLI entrypoint: it loads
// one or more persisted module artifacts (§6), lowers any proc still in
// source form, runs alias analysis over the result, and optionally
// writes the analysed module back out as an artifact (§A.5, §A.7).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wybec/wybe/internal/alias"
	"github.com/wybec/wybe/internal/artifact"
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/diagnostics"
	"github.com/wybec/wybe/internal/driver"
	"github.com/wybec/wybe/internal/errors"
	"github.com/wybec/wybe/internal/flatten"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/inspect"
	"github.com/wybec/wybe/internal/options"
	"github.com/wybec/wybe/internal/prim"
	"github.com/wybec/wybe/internal/symtab"
	"github.com/wybec/wybe/internal/unbrancher"
)

func main() {
	root := &cobra.Command{
		Use:   "wybec",
		Short: "Wybe compiler driver",
	}
	root.AddCommand(options.NewCompileCommand(runCompile))
	root.AddCommand(newInspectCommand())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newInspectCommand builds the `inspect` subcommand: it loads a set of
// persisted artifacts read-only (no lowering, no analysis) and drops
// the caller into the debugging REPL of internal/inspect (§A.7).
func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <artifact...>",
		Short: "Interactively browse loaded module artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := driver.New(nil)
			for _, path := range args {
				mod, err := artifact.Load(path)
				if err != nil {
					return fmt.Errorf("loading %s: %w", path, err)
				}
				d.RegisterLoaded(mod)
			}
			inspect.New(d).Start(os.Stdout)
			return nil
		},
	}
}

// runCompile loads each root artifact, advances every still-source proc
// to primitive form, runs alias analysis over the whole module, and
// (if requested) persists the result. Modules are processed
// independently; a dependency graph across --dump-artifact paths is
// out of scope here (§1 "single module at a time").
func runCompile(opts *options.Options, roots []string) error {
	diags := diagnostics.NewBuffer()

	for _, root := range roots {
		if err := compileOne(root, opts, diags); err != nil {
			diags.Emit(errors.Internal(errors.ICE003, err.Error(), ident.UnknownPos))
		}
	}

	code := diags.Flush(os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

func compileOne(path string, opts *options.Options, diags *diagnostics.Buffer) error {
	mod, err := artifact.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	if err := lowerModule(mod); err != nil {
		return fmt.Errorf("lowering %s: %w", mod.Spec, err)
	}

	if opts.Enabled(options.CategoryAnalysis) {
		fmt.Fprintf(os.Stderr, "[Analysis] running alias analysis on %s\n", mod.Spec)
	}
	if err := alias.AnalyzeModule(mod, noExternalCallees); err != nil {
		return fmt.Errorf("analysing %s: %w", mod.Spec, err)
	}

	if opts.DumpArtifact != "" {
		if err := artifact.Save(mod, opts.DumpArtifact); err != nil {
			return fmt.Errorf("saving %s: %w", opts.DumpArtifact, err)
		}
	}
	return nil
}

// lowerModule advances every proc still in SourceImpl form to
// PrimitiveImpl, resolving intra-module calls by name and arity. Calls
// this module does not itself define are left unresolved (§4.4 "a
// later linking pass"), which is fine for alias.AnalyzeModule's own
// external resolver to treat as opaque. Per §2's normaliser ordering
// (normaliser -> flattener -> unbrancher -> BodyBuilder), each body is
// run through a fresh Flattener before the unbrancher ever sees it, so
// translateArg's atomic-only args assumption always holds.
func lowerModule(mod *symtab.Module) error {
	resolve := func(name ident.Ident, arity int) (prim.ProcSpec, bool) {
		def, ok := mod.LookupProcArity(name, arity)
		if !ok {
			return prim.ProcSpec{}, false
		}
		return prim.ProcSpec{Mod: mod.Spec, Name: def.Name, ID: def.ID}, true
	}

	for name, defs := range mod.Implementation.Procs {
		for _, def := range defs {
			var stmts []astir.Stmt
			switch src := def.Impl.(type) {
			case astir.SourceImpl:
				stmts = src.Stmts
			case *astir.SourceImpl:
				stmts = src.Stmts
			default:
				continue
			}

			def.Impl = astir.SourceImpl{Stmts: flatten.New().FlattenStmts(stmts)}

			u := unbrancher.New(mod, name, resolve)
			if err := u.LowerProc(def); err != nil {
				return err
			}
		}
	}
	return nil
}

// noExternalCallees is the Resolver used when a module is compiled on
// its own, with no loaded dependencies to consult: every call leaving
// the module's own call graph is treated as unknown, so alias analysis
// conservatively never unifies through it (§4.6 "Across modules").
func noExternalCallees(prim.ProcSpec) (alias.CalleeInfo, bool) {
	return alias.CalleeInfo{}, false
}
