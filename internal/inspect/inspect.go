// Package inspect implements a read-only debugging REPL (§A.7) over a
// driver's already-loaded module table: printing a module's interface,
// a proc's primitive-form body, or its alias map. It never mutates
// driver state — grounded in the teacher's internal/repl line-editing
// style (github.com/peterh/liner) but with no evaluation semantics at
// all, since this is an inspection tool rather than a language REPL.
package inspect

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/wybec/wybe/internal/alias"
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/driver"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/symtab"
)

var (
	bold = color.New(color.Bold).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
	red  = color.New(color.FgRed).SprintFunc()
)

// REPL inspects a fixed driver's loaded modules interactively.
type REPL struct {
	d *driver.Driver
}

// New returns an inspection REPL over d.
func New(d *driver.Driver) *REPL {
	return &REPL{d: d}
}

// Start runs the read-eval-print loop against out until EOF or :quit.
// Recognised commands: :modules, :iface <mod>, :body <mod> <proc>,
// :alias <mod> <proc>, :quit.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	fmt.Fprintln(out, bold("wybec inspect"))
	fmt.Fprintln(out, dim("Type :help for a command list, :quit to exit"))

	line.SetCompleter(func(input string) (c []string) {
		if !strings.HasPrefix(input, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":modules", ":iface", ":body", ":alias", ":quit"} {
			if strings.HasPrefix(cmd, input) {
				c = append(c, cmd)
			}
		}
		return c
	})

	for {
		input, err := line.Prompt("inspect> ")
		if err == io.EOF {
			fmt.Fprintln(out, "goodbye")
			return
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if r.dispatch(input, out) {
			return
		}
	}
}

// dispatch runs one command line, returning true if the REPL should
// exit.
func (r *REPL) dispatch(input string, out io.Writer) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		r.printHelp(out)
	case ":modules":
		r.printModules(out)
	case ":iface":
		if len(fields) < 2 {
			fmt.Fprintln(out, red("usage: :iface <module>"))
			return false
		}
		r.printInterface(fields[1], out)
	case ":body":
		if len(fields) < 3 {
			fmt.Fprintln(out, red("usage: :body <module> <proc>"))
			return false
		}
		r.printBody(fields[1], fields[2], out)
	case ":alias":
		if len(fields) < 3 {
			fmt.Fprintln(out, red("usage: :alias <module> <proc>"))
			return false
		}
		r.printAlias(fields[1], fields[2], out)
	default:
		fmt.Fprintf(out, "%s: unknown command %q (:help for a list)\n", red("error"), fields[0])
	}
	return false
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, ":modules               list every fully-loaded module")
	fmt.Fprintln(out, ":iface <module>        print a module's public interface")
	fmt.Fprintln(out, ":body <module> <proc>  print a proc's primitive-form body")
	fmt.Fprintln(out, ":alias <module> <proc> print a proc's alias map")
	fmt.Fprintln(out, ":quit                  exit")
}

func (r *REPL) lookupModule(dotted string, out io.Writer) (*symtab.Module, bool) {
	mod, ok := r.d.Loaded(ident.ParseModSpec(dotted))
	if !ok {
		fmt.Fprintf(out, "%s: module %q is not loaded\n", red("error"), dotted)
		return nil, false
	}
	return mod, true
}

// lookupProc finds the first overload of name in mod, since the REPL's
// commands take a bare proc name with no arity.
func lookupProc(mod *symtab.Module, name string) (*astir.ProcDef, bool) {
	defs := mod.LookupProc(ident.NewIdent(name))
	if len(defs) == 0 {
		return nil, false
	}
	return defs[0], true
}

func (r *REPL) printModules(out io.Writer) {
	specs := r.d.LoadedSpecs()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.String()
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
}

func (r *REPL) printInterface(dotted string, out io.Writer) {
	mod, ok := r.lookupModule(dotted, out)
	if !ok {
		return
	}
	iface := mod.Interface

	types := make([]string, 0, len(iface.Types))
	for name, entry := range iface.Types {
		types = append(types, fmt.Sprintf("%s/%d", name, entry.Arity))
	}
	sort.Strings(types)
	fmt.Fprintln(out, bold("types:"))
	for _, t := range types {
		fmt.Fprintln(out, "  "+t)
	}

	resources := make([]string, 0, len(iface.Resources))
	for name := range iface.Resources {
		resources = append(resources, string(name))
	}
	sort.Strings(resources)
	fmt.Fprintln(out, bold("resources:"))
	for _, rs := range resources {
		fmt.Fprintln(out, "  "+rs)
	}

	procs := make([]string, 0, len(iface.Procs))
	for name, entries := range iface.Procs {
		for _, e := range entries {
			procs = append(procs, fmt.Sprintf("%s/%d", name, e.Proto.Arity()))
		}
	}
	sort.Strings(procs)
	fmt.Fprintln(out, bold("procs:"))
	for _, p := range procs {
		fmt.Fprintln(out, "  "+p)
	}
}

func (r *REPL) printBody(dotted, procName string, out io.Writer) {
	mod, ok := r.lookupModule(dotted, out)
	if !ok {
		return
	}
	def, ok := lookupProc(mod, procName)
	if !ok {
		fmt.Fprintf(out, "%s: proc %q not found in %s\n", red("error"), procName, dotted)
		return
	}
	pimpl, ok := def.Impl.(*astir.PrimitiveImpl)
	if !ok {
		fmt.Fprintf(out, "%s: proc %q is not in primitive form\n", red("error"), procName)
		return
	}
	fmt.Fprint(out, pimpl.Body.String())
}

func (r *REPL) printAlias(dotted, procName string, out io.Writer) {
	mod, ok := r.lookupModule(dotted, out)
	if !ok {
		return
	}
	def, ok := lookupProc(mod, procName)
	if !ok {
		fmt.Fprintf(out, "%s: proc %q not found in %s\n", red("error"), procName, dotted)
		return
	}
	pimpl, ok := def.Impl.(*astir.PrimitiveImpl)
	if !ok {
		fmt.Fprintf(out, "%s: proc %q is not in primitive form\n", red("error"), procName)
		return
	}
	an, ok := pimpl.Analysis.(*alias.Analysis)
	if !ok || an == nil || an.ArgAliasMap == nil {
		fmt.Fprintln(out, dim("(no alias analysis attached)"))
		return
	}
	pairs := an.ArgAliasMap.CanonicalPairs()
	if len(pairs) == 0 {
		fmt.Fprintln(out, dim("(no aliasing: every tracked variable is a singleton)"))
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(out, "%s == %s\n", p[0].String(), p[1].String())
	}
}
