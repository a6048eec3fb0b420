// Package prim defines the three-address primitive IR: PrimVarName,
// PrimArg, Prim, and the fork-tree ProcBody that BodyBuilder assembles
// and alias analysis walks.
package prim

import "github.com/wybec/wybe/internal/ident"

// PrimVarName is an SSA variable identity: a source name plus an
// integer suffix. Suffix 0 is the first binding of name; suffix -1 is
// reserved for "the ultimate output value of this name" (§3).
type PrimVarName struct {
	Name   ident.Ident
	Suffix int
}

// FinalSuffix marks "the ultimate output value of this name".
const FinalSuffix = -1

func (v PrimVarName) String() string {
	if v.Suffix == FinalSuffix {
		return string(v.Name) + "#final"
	}
	return string(v.Name) + "#" + itoa(v.Suffix)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Namer assigns fresh SSA suffixes per source name, one Namer per proc
// under construction.
type Namer struct {
	next map[ident.Ident]int
}

// NewNamer returns an empty per-proc SSA namer.
func NewNamer() *Namer {
	return &Namer{next: make(map[ident.Ident]int)}
}

// Fresh returns a PrimVarName for name with a suffix not previously
// returned by this Namer — the SSA invariant (§3): for any (name,
// suffix) pair, at most one assignment in the procedure body.
func (n *Namer) Fresh(name ident.Ident) PrimVarName {
	suffix := n.next[name]
	n.next[name] = suffix + 1
	return PrimVarName{Name: name, Suffix: suffix}
}
