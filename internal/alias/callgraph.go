package alias

import (
	"fmt"

	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

// CallGraph is a directed graph over ProcSpec nodes restricted to one
// known proc set (typically a module's own procs in primitive form).
// Calls leaving that set are not represented as edges: by §4.6
// "Across SCCs: strict bottom-up", any such callee belongs to a
// strictly earlier, already-analysed SCC (or another module), and is
// resolved externally rather than walked here — grounded in the
// teacher's call-graph/SCC shape (internal/elaborate/scc.go), here
// keyed on ProcSpec instead of a bare function name.
type CallGraph struct {
	nodes []prim.ProcSpec
	index map[string]int
	edges map[string][]string
	defOf map[string]*astir.ProcDef
}

// NewCallGraph returns an empty CallGraph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		index: make(map[string]int),
		edges: make(map[string][]string),
		defOf: make(map[string]*astir.ProcDef),
	}
}

func (g *CallGraph) addNode(spec prim.ProcSpec, def *astir.ProcDef) {
	key := spec.String()
	if _, ok := g.index[key]; ok {
		return
	}
	g.index[key] = len(g.nodes)
	g.nodes = append(g.nodes, spec)
	g.defOf[key] = def
}

func (g *CallGraph) addEdge(from, to prim.ProcSpec) {
	g.edges[from.String()] = append(g.edges[from.String()], to.String())
}

// BuildCallGraph constructs the call graph over defs (all of mod's
// procs already in primitive form): a node per proc, an edge per
// PrimCall whose callee is also in defs.
func BuildCallGraph(mod ident.ModSpec, defs []*astir.ProcDef) (*CallGraph, error) {
	g := NewCallGraph()
	specOf := make(map[*astir.ProcDef]prim.ProcSpec, len(defs))
	for _, def := range defs {
		if _, ok := def.Impl.(*astir.PrimitiveImpl); !ok {
			return nil, fmt.Errorf("alias: proc %s is not in primitive form", def.Name)
		}
		spec := prim.ProcSpec{Mod: mod, Name: def.Name, ID: def.ID}
		specOf[def] = spec
		g.addNode(spec, def)
	}
	for _, def := range defs {
		pimpl := def.Impl.(*astir.PrimitiveImpl)
		from := specOf[def]
		pimpl.Body.Walk(func(pp prim.PlacedPrim) {
			call, ok := pp.Prim.(*prim.PrimCall)
			if !ok {
				return
			}
			if _, known := g.index[call.Proc.String()]; known {
				g.addEdge(from, call.Proc)
			}
		})
	}
	return g, nil
}

// SCCs computes the graph's strongly-connected components using
// Tarjan's algorithm, returning them in the order each component's
// root finishes the depth-first search. Since DFS only finishes a
// caller's SCC after every callee reachable from it has already
// finished, this order is already the bottom-up order §4.6 requires:
// a proc's SCC never precedes any of its callees' SCCs.
func (g *CallGraph) SCCs() [][]*astir.ProcDef {
	index := 0
	var stack []string
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var sccs [][]*astir.ProcDef

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []*astir.ProcDef
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, g.defOf[w])
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, n := range g.nodes {
		key := n.String()
		if _, seen := indices[key]; !seen {
			strongconnect(key)
		}
	}
	return sccs
}
