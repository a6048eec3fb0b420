// Package options parses the compiler's command-line switches (§6):
// verbosity, per-category tracing, and the persisted-artifact dump
// path.
package options

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Category names recognised by --trace (§6, §A.1).
const (
	CategoryBodyBuilder = "BodyBuilder"
	CategoryAnalysis    = "Analysis"
	CategoryUnbranch    = "Unbranch"
	CategoryDriver      = "Driver"
	CategoryFlatten     = "Flatten"
	CategoryBlocks      = "Blocks"
)

// Options holds the compiler's parsed command-line state, owned by
// the driver (§4.1).
type Options struct {
	Verbosity    int
	Trace        map[string]bool
	DumpArtifact string
	Roots        []string

	pendingCategories *[]string
}

// New returns Options with every trace category disabled and
// verbosity 0.
func New() *Options {
	return &Options{Trace: make(map[string]bool)}
}

// Enabled reports whether category is traced at the current verbosity
// (verbosity 0 suppresses all tracing regardless of --trace).
func (o *Options) Enabled(category string) bool {
	return o.Verbosity > 0 && o.Trace[category]
}

// BindFlags registers this Options' flags onto fs, for reuse across
// cobra subcommands (§A.3).
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Verbosity, "verbosity", 0, "trace verbosity (0-3)")
	var categories []string
	fs.StringArrayVar(&categories, "trace", nil, "enable tracing for a log category (repeatable)")
	fs.StringVar(&o.DumpArtifact, "dump-artifact", "", "write the persisted module artifact to this path")

	// Defer materializing categories into the map until flags are
	// parsed; callers invoke Finalize once cobra has parsed them
	// (NewCompileCommand does so at the start of RunE).
	o.pendingCategories = &categories
}

// Finalize must be called after pflag.Parse (cobra does this before
// RunE) to move --trace occurrences into the Trace set.
func (o *Options) Finalize() {
	if o.pendingCategories == nil {
		return
	}
	for _, c := range *o.pendingCategories {
		o.Trace[c] = true
	}
	o.pendingCategories = nil
}

// NewCompileCommand builds the `compile` cobra subcommand, binding a
// fresh Options and invoking run with it once args are parsed.
func NewCompileCommand(run func(opts *Options, roots []string) error) *cobra.Command {
	opts := New()
	cmd := &cobra.Command{
		Use:   "compile <artifact...>",
		Short: "Compile one or more persisted Wybe module artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Finalize()
			opts.Roots = args
			return run(opts, args)
		},
	}
	opts.BindFlags(cmd.Flags())
	return cmd
}
