package bodybuilder

import (
	"github.com/wybec/wybe/internal/ident"
	"github.com/wybec/wybe/internal/prim"
)

// foldableOps are the "llvm" foreign operators §4.5a allows folding.
// The literal kind the operands must have is checked by the per-op fold
// functions below.
var foldableOps = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true,
	"fadd": true, "fsub": true, "fmul": true, "fdiv": true,
	"icmp": true, "fcmp": true,
}

// foldConstant rewrites a foreign "llvm" arithmetic/comparison prim
// whose inputs are all literals into move(result, output). Division by
// zero is left unfolded so the runtime traps (§4.5a).
func foldConstant(p prim.Prim) prim.Prim {
	fc, ok := p.(*prim.PrimForeignCall)
	if !ok || fc.Lang != "llvm" || !foldableOps[fc.Name] || len(fc.Args) < 2 {
		return p
	}

	out := fc.Args[len(fc.Args)-1]
	outVar, isOut := out.(prim.ArgVar)
	if !isOut || outVar.FlowDir != prim.Out {
		return p
	}
	inputs := fc.Args[:len(fc.Args)-1]

	switch fc.Name {
	case "icmp":
		return foldIntCmp(fc, inputs, out)
	case "fcmp":
		return foldFloatCmp(fc, inputs, out)
	default:
		if isFloatOp(fc.Name) {
			return foldFloatArith(fc, inputs, out)
		}
		return foldIntArith(fc, inputs, out)
	}
}

func isFloatOp(name string) bool {
	switch name {
	case "fadd", "fsub", "fmul", "fdiv":
		return true
	}
	return false
}

func asIntLit(a prim.PrimArg) (int64, bool) {
	lit, ok := a.(prim.ArgLit)
	if !ok || lit.Kind != prim.IntLit {
		return 0, false
	}
	return lit.Int, true
}

func asFloatLit(a prim.PrimArg) (float64, bool) {
	lit, ok := a.(prim.ArgLit)
	if !ok || lit.Kind != prim.FloatLit {
		return 0, false
	}
	return lit.Float, true
}

func foldIntArith(fc *prim.PrimForeignCall, inputs []prim.PrimArg, out prim.PrimArg) prim.Prim {
	if len(inputs) != 2 {
		return fc
	}
	a, ok1 := asIntLit(inputs[0])
	b, ok2 := asIntLit(inputs[1])
	if !ok1 || !ok2 {
		return fc
	}
	var result int64
	switch fc.Name {
	case "add":
		result = a + b
	case "sub":
		result = a - b
	case "mul":
		result = a * b
	case "div":
		if b == 0 {
			return fc
		}
		result = a / b
	default:
		return fc
	}
	return prim.Move(prim.IntArg(result, out.Type()), out)
}

func foldFloatArith(fc *prim.PrimForeignCall, inputs []prim.PrimArg, out prim.PrimArg) prim.Prim {
	if len(inputs) != 2 {
		return fc
	}
	a, ok1 := asFloatLit(inputs[0])
	b, ok2 := asFloatLit(inputs[1])
	if !ok1 || !ok2 {
		return fc
	}
	var result float64
	switch fc.Name {
	case "fadd":
		result = a + b
	case "fsub":
		result = a - b
	case "fmul":
		result = a * b
	case "fdiv":
		if b == 0 {
			return fc
		}
		result = a / b
	default:
		return fc
	}
	return prim.Move(prim.FloatArg(result, out.Type()), out)
}

// predicateOf returns the comparison flag carried by icmp/fcmp calls,
// stashed as a ForeignFlag (§4.5a "predicate flag").
func predicateOf(fc *prim.PrimForeignCall) (string, bool) {
	for _, fl := range fc.Flags {
		switch string(fl) {
		case "eq", "ne", "slt", "sle", "sgt", "sge":
			return string(fl), true
		}
	}
	return "", false
}

func foldIntCmp(fc *prim.PrimForeignCall, inputs []prim.PrimArg, out prim.PrimArg) prim.Prim {
	if len(inputs) != 2 {
		return fc
	}
	pred, ok := predicateOf(fc)
	if !ok {
		return fc
	}
	a, ok1 := asIntLit(inputs[0])
	b, ok2 := asIntLit(inputs[1])
	if !ok1 || !ok2 {
		return fc
	}
	var result bool
	switch pred {
	case "eq":
		result = a == b
	case "ne":
		result = a != b
	case "slt":
		result = a < b
	case "sle":
		result = a <= b
	case "sgt":
		result = a > b
	case "sge":
		result = a >= b
	}
	return prim.Move(boolLit(result, out.Type()), out)
}

func foldFloatCmp(fc *prim.PrimForeignCall, inputs []prim.PrimArg, out prim.PrimArg) prim.Prim {
	if len(inputs) != 2 {
		return fc
	}
	pred, ok := predicateOf(fc)
	if !ok {
		return fc
	}
	a, ok1 := asFloatLit(inputs[0])
	b, ok2 := asFloatLit(inputs[1])
	if !ok1 || !ok2 {
		return fc
	}
	var result bool
	switch pred {
	case "eq":
		result = a == b
	case "ne":
		result = a != b
	case "slt":
		result = a < b
	case "sle":
		result = a <= b
	case "sgt":
		result = a > b
	case "sge":
		result = a >= b
	}
	return prim.Move(boolLit(result, out.Type()), out)
}

func boolLit(b bool, ty ident.TypeSpec) prim.ArgLit {
	n := int64(0)
	if b {
		n = 1
	}
	return prim.IntArg(n, ty)
}
