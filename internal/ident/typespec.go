package ident

import "strings"

// TypeSpec is either unspecified (left for inference) or a constructor
// applied to zero or more argument TypeSpecs. Equality is structural.
type TypeSpec struct {
	unspecified bool
	Mod         ModSpec
	Name        Ident
	Args        []TypeSpec
}

// Unspecified is the "to be inferred" TypeSpec.
var Unspecified = TypeSpec{unspecified: true}

// NewTypeSpec constructs a concrete (ModSpec, Ident, [TypeSpec]) type.
func NewTypeSpec(mod ModSpec, name Ident, args ...TypeSpec) TypeSpec {
	return TypeSpec{Mod: mod, Name: name, Args: args}
}

// IsUnspecified reports whether this TypeSpec still needs inference.
func (t TypeSpec) IsUnspecified() bool { return t.unspecified }

// Equal reports structural equality, including recursively on Args.
func (t TypeSpec) Equal(other TypeSpec) bool {
	if t.unspecified != other.unspecified {
		return false
	}
	if t.unspecified {
		return true
	}
	if !t.Mod.Equal(other.Mod) || t.Name != other.Name {
		return false
	}
	if len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

func (t TypeSpec) String() string {
	if t.unspecified {
		return "?"
	}
	var b strings.Builder
	if len(t.Mod) > 0 {
		b.WriteString(t.Mod.String())
		b.WriteByte('.')
	}
	b.WriteString(string(t.Name))
	if len(t.Args) > 0 {
		b.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}
