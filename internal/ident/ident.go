// Package ident defines the opaque identifiers, module paths, source
// positions, and visibility/type values shared across the compiler.
package ident

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Ident names a module segment, variable source name, procedure, or type.
// Values built with NewIdent (as ParseModSpec does) are normalized to
// Unicode NFC, so that two differently-composed spellings of the same
// identifier compare equal; a plain Ident(s) conversion is not normalized.
type Ident string

// NewIdent normalizes s and returns it as an Ident.
func NewIdent(s string) Ident {
	return Ident(norm.NFC.String(s))
}

func (i Ident) String() string { return string(i) }

// ModSpec is an ordered sequence of Ident naming a module path.
type ModSpec []Ident

// ParseModSpec splits dotted external notation ("foo.bar.baz") into a ModSpec.
func ParseModSpec(dotted string) ModSpec {
	parts := strings.Split(dotted, ".")
	spec := make(ModSpec, len(parts))
	for i, p := range parts {
		spec[i] = NewIdent(p)
	}
	return spec
}

// String renders the ModSpec using external dotted notation.
func (m ModSpec) String() string {
	parts := make([]string, len(m))
	for i, id := range m {
		parts[i] = string(id)
	}
	return strings.Join(parts, ".")
}

// Equal reports structural equality between two ModSpecs.
func (m ModSpec) Equal(other ModSpec) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// Append returns a new ModSpec with child appended.
func (m ModSpec) Append(child Ident) ModSpec {
	out := make(ModSpec, len(m)+1)
	copy(out, m)
	out[len(m)] = child
	return out
}

// OptPos is an optional source position. Never affects semantics, only
// diagnostics; the zero value is the "unknown" position.
type OptPos struct {
	known  bool
	File   string
	Line   int
	Column int
}

// UnknownPos is the canonical unknown position.
var UnknownPos = OptPos{}

// NewPos builds a known position.
func NewPos(file string, line, col int) OptPos {
	return OptPos{known: true, File: file, Line: line, Column: col}
}

// Known reports whether this position carries real source information.
func (p OptPos) Known() bool { return p.known }

func (p OptPos) String() string {
	if !p.known {
		return "<unknown>"
	}
	return p.File + ":" + itoa(p.Line) + ":" + itoa(p.Column)
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

// Visibility is a two-valued, totally ordered access level.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// Max returns the more permissive of two visibilities.
func Max(a, b Visibility) Visibility {
	if a > b {
		return a
	}
	return b
}

// Min returns the more restrictive of two visibilities.
func Min(a, b Visibility) Visibility {
	if a < b {
		return a
	}
	return b
}
