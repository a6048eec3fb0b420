package symtab

import "github.com/wybec/wybe/internal/ident"

// ImportSpec is either "nothing" (the zero value: no items, no whole-
// module re-export) or a mapping of item names to the visibility under
// which they are re-exported, plus an optional whole-module visibility
// (§4.2).
type ImportSpec struct {
	Items map[ident.Ident]ident.Visibility
	Whole *ident.Visibility
}

// Nothing is the empty ImportSpec.
func Nothing() ImportSpec {
	return ImportSpec{}
}

// NewItemImport builds an ImportSpec re-exporting exactly the given
// items.
func NewItemImport(items map[ident.Ident]ident.Visibility) ImportSpec {
	return ImportSpec{Items: items}
}

// NewWholeImport builds an ImportSpec re-exporting the whole module at
// the given visibility.
func NewWholeImport(vis ident.Visibility) ImportSpec {
	return ImportSpec{Whole: &vis}
}

// Combine merges two ImportSpecs for the same source module:
// elementwise max on visibility for shared items, union of items, and
// max on the whole-module visibility if either specifies one (§4.2).
func Combine(a, b ImportSpec) ImportSpec {
	out := ImportSpec{Items: make(map[ident.Ident]ident.Visibility, len(a.Items)+len(b.Items))}
	for name, vis := range a.Items {
		out.Items[name] = vis
	}
	for name, vis := range b.Items {
		if existing, ok := out.Items[name]; ok {
			out.Items[name] = ident.Max(existing, vis)
		} else {
			out.Items[name] = vis
		}
	}
	switch {
	case a.Whole != nil && b.Whole != nil:
		v := ident.Max(*a.Whole, *b.Whole)
		out.Whole = &v
	case a.Whole != nil:
		v := *a.Whole
		out.Whole = &v
	case b.Whole != nil:
		v := *b.Whole
		out.Whole = &v
	}
	return out
}
