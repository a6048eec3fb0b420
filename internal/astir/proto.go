// Package astir holds the minimal surface-statement/expression shapes
// this compiler consumes from the parser boundary (§6, an external
// collaborator), and the ProcDef record that advances through source,
// primitive, and blocks form (§3).
package astir

import "github.com/wybec/wybe/internal/ident"

// SourceFlow is a surface parameter's flow prefix: none = in, "?" =
// out, "!" = in/out (§6).
type SourceFlow int

const (
	FlowIn SourceFlow = iota
	FlowOut
	FlowInOut
)

func (f SourceFlow) String() string {
	switch f {
	case FlowOut:
		return "?"
	case FlowInOut:
		return "!"
	default:
		return ""
	}
}

// Param is one formal parameter of a surface ProcProto.
type Param struct {
	Name ident.Ident
	Type ident.TypeSpec
	Flow SourceFlow
}

// ProcProto is a surface procedure/function prototype.
type ProcProto struct {
	Name     ident.Ident
	Params   []Param
	Resource []ident.Ident // resources used, if any
	IsTest   bool          // semi-deterministic ("test") proc
}

// Arity is the formal parameter count, used as the overload key
// alongside Name (§4.2).
func (p *ProcProto) Arity() int { return len(p.Params) }
