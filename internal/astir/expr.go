package astir

import "github.com/wybec/wybe/internal/ident"

// Expr is a surface expression: a variable reference, a literal, a
// call (procedure or function), a binary/unary operator application,
// or a type ascription. Complex shapes (if/let-in/where, list/tuple
// sugar) desugar to these before reaching the flattener, per the
// parser-boundary contract of §6.
type Expr interface {
	Pos() ident.OptPos
	exprNode()
}

// node carries the position every Expr embeds.
type node struct {
	P ident.OptPos
}

func (n node) Pos() ident.OptPos { return n.P }

// VarRef is a variable reference with its surface flow prefix.
type VarRef struct {
	node
	Name ident.Ident
	Flow SourceFlow
}

func (*VarRef) exprNode() {}

// LitKind distinguishes literal expression payload types.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StringLit
	CharLit
)

// Lit is a literal expression.
type Lit struct {
	node
	Kind  LitKind
	Int   int64
	Float float64
	Str   string
	Char  rune
}

func (*Lit) exprNode() {}

// Call is a function or procedure call appearing in expression
// position. Flattening turns it into a statement plus a fresh output
// temporary (§4.3).
type Call struct {
	node
	Proc ident.Ident
	Args []Expr
}

func (*Call) exprNode() {}

// BinOp is an infix operator application (arithmetic, comparison,
// logical, range).
type BinOp struct {
	node
	Op          string
	Left, Right Expr
}

func (*BinOp) exprNode() {}

// UnOp is a prefix operator application.
type UnOp struct {
	node
	Op      string
	Operand Expr
}

func (*UnOp) exprNode() {}

// Ascription is an `e : Type` type ascription. It is a transparent
// wrapper for atomicity purposes: Ascription{v} is atomic exactly when
// v is (§4.3 only cares that the underlying value is atomic; the type
// annotation rides along for the IR builder to pick up).
type Ascription struct {
	node
	Inner Expr
	Type  ident.TypeSpec
}

func (*Ascription) exprNode() {}

// NewVarRef builds a VarRef at pos.
func NewVarRef(pos ident.OptPos, name ident.Ident, flow SourceFlow) *VarRef {
	return &VarRef{node: node{pos}, Name: name, Flow: flow}
}

// NewCall builds a Call at pos.
func NewCall(pos ident.OptPos, proc ident.Ident, args ...Expr) *Call {
	return &Call{node: node{pos}, Proc: proc, Args: args}
}

// IsAtomic reports whether e needs no further flattening: a variable
// reference or a literal, or an Ascription wrapping one (§4.3).
func IsAtomic(e Expr) bool {
	switch v := e.(type) {
	case *VarRef, *Lit:
		return true
	case *Ascription:
		return IsAtomic(v.Inner)
	default:
		return false
	}
}

// TypeOf extracts the TypeSpec an atomic Expr carries, defaulting to
// Unspecified when none was ascribed — type inference itself is out
// of this compiler's scope (§1); downstream passes either receive an
// already-resolved TypeSpec or carry Unspecified through.
func TypeOf(e Expr) ident.TypeSpec {
	if a, ok := e.(*Ascription); ok {
		return a.Type
	}
	return ident.Unspecified
}

// Unwrap strips any Ascription wrapper, returning the underlying Expr.
func Unwrap(e Expr) Expr {
	for {
		a, ok := e.(*Ascription)
		if !ok {
			return e
		}
		e = a.Inner
	}
}
