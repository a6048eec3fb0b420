// Package unionfind implements the path-compressed, union-by-rank
// AliasMap used by alias analysis (§3, §4.6, §9: "a path-compressed
// union-by-rank is adequate; all maps are small").
package unionfind

import (
	"sort"

	"github.com/wybec/wybe/internal/prim"
)

// AliasMap is a union-find equivalence relation over PrimVarNames.
// The zero value is an empty map (every name alone in its own class).
type AliasMap struct {
	parent map[prim.PrimVarName]prim.PrimVarName
	rank   map[prim.PrimVarName]int
}

// New returns an empty AliasMap.
func New() *AliasMap {
	return &AliasMap{
		parent: make(map[prim.PrimVarName]prim.PrimVarName),
		rank:   make(map[prim.PrimVarName]int),
	}
}

func (m *AliasMap) ensure(v prim.PrimVarName) {
	if _, ok := m.parent[v]; !ok {
		m.parent[v] = v
		m.rank[v] = 0
	}
}

// Find returns the canonical root of v's equivalence class, creating a
// singleton class for v if it is not yet known. Path compression
// flattens the chain as a side effect.
func (m *AliasMap) Find(v prim.PrimVarName) prim.PrimVarName {
	m.ensure(v)
	root := v
	for m.parent[root] != root {
		root = m.parent[root]
	}
	// path compression
	for m.parent[v] != root {
		next := m.parent[v]
		m.parent[v] = root
		v = next
	}
	return root
}

// Unite merges a's and b's equivalence classes (union by rank).
// Returns true if this unification actually merged two previously
// distinct classes.
func (m *AliasMap) Unite(a, b prim.PrimVarName) bool {
	ra, rb := m.Find(a), m.Find(b)
	if ra == rb {
		return false
	}
	if m.rank[ra] < m.rank[rb] {
		ra, rb = rb, ra
	}
	m.parent[rb] = ra
	if m.rank[ra] == m.rank[rb] {
		m.rank[ra]++
	}
	return true
}

// Aliased reports whether a and b are in the same equivalence class.
func (m *AliasMap) Aliased(a, b prim.PrimVarName) bool {
	return m.Find(a) == m.Find(b)
}

// Singleton reports whether v's equivalence class contains only v
// itself — i.e. no other known variable aliases it.
func (m *AliasMap) Singleton(v prim.PrimVarName) bool {
	root := m.Find(v)
	count := 0
	for key := range m.parent {
		if m.Find(key) == root {
			count++
			if count > 1 {
				return false
			}
		}
	}
	return count <= 1
}

// Keys returns every PrimVarName currently tracked, in no particular
// order.
func (m *AliasMap) Keys() []prim.PrimVarName {
	keys := make([]prim.PrimVarName, 0, len(m.parent))
	for k := range m.parent {
		keys = append(keys, k)
	}
	return keys
}

// Classes groups all tracked keys by their root, for iteration.
func (m *AliasMap) Classes() map[prim.PrimVarName][]prim.PrimVarName {
	classes := make(map[prim.PrimVarName][]prim.PrimVarName)
	for _, k := range m.Keys() {
		root := m.Find(k)
		classes[root] = append(classes[root], k)
	}
	return classes
}

// Delete removes v from the map. If v was the root of its class, a
// surviving member of the class (if any) becomes the new root; if v
// was the only member, the class is simply dropped (§3: "key deletion
// with root rewrite").
func (m *AliasMap) Delete(v prim.PrimVarName) {
	if _, ok := m.parent[v]; !ok {
		return
	}
	root := m.Find(v)
	if root != v {
		for k := range m.parent {
			if m.parent[k] == v {
				m.parent[k] = root
			}
		}
		delete(m.parent, v)
		delete(m.rank, v)
		return
	}
	// v is the root: find a sibling to promote, or drop the class.
	var sibling prim.PrimVarName
	found := false
	for k := range m.parent {
		if k != v && m.Find(k) == root {
			sibling = k
			found = true
			break
		}
	}
	delete(m.parent, v)
	delete(m.rank, v)
	if found {
		m.parent[sibling] = sibling
		m.rank[sibling] = 0
		for k := range m.parent {
			if k != sibling && m.parent[k] == v {
				m.parent[k] = sibling
			}
		}
	}
}

// Pair is a canonicalized, order-independent pair of variable names.
type Pair [2]prim.PrimVarName

func (p Pair) less(o Pair) bool {
	if p[0] != o[0] {
		return lessVar(p[0], o[0])
	}
	return lessVar(p[1], o[1])
}

func lessVar(a, b prim.PrimVarName) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Suffix < b.Suffix
}

// CanonicalPairs converts the map to a sorted, duplicate-free list of
// equivalence pairs — used to detect whether an SCC fixed-point
// iteration changed anything (§4.6 "Change detection").
func (m *AliasMap) CanonicalPairs() []Pair {
	var pairs []Pair
	for root, members := range m.Classes() {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return lessVar(members[i], members[j]) })
		for _, mem := range members {
			if mem == root {
				continue
			}
			a, b := root, mem
			if lessVar(b, a) {
				a, b = b, a
			}
			pairs = append(pairs, Pair{a, b})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].less(pairs[j]) })
	return pairs
}

// Changed reports whether iterating from before to after changed the
// alias map, per §4.6: true iff the canonical pair lists differ AND
// before is non-empty (first-time population never counts as change).
func Changed(before, after *AliasMap) bool {
	beforePairs := before.CanonicalPairs()
	if len(beforePairs) == 0 {
		return false
	}
	afterPairs := after.CanonicalPairs()
	if len(beforePairs) != len(afterPairs) {
		return true
	}
	for i := range beforePairs {
		if beforePairs[i] != afterPairs[i] {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of m, so branches can diverge without
// sharing state (§4.6 "Alias maps are value types").
func (m *AliasMap) Clone() *AliasMap {
	out := New()
	for k, v := range m.parent {
		out.parent[k] = v
	}
	for k, v := range m.rank {
		out.rank[k] = v
	}
	return out
}
