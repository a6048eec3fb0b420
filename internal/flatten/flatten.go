// Package flatten resolves compound expressions into statement
// sequences, inventing fresh temporaries for every non-atomic
// subexpression (§4.3).
package flatten

import (
	"github.com/wybec/wybe/internal/astir"
	"github.com/wybec/wybe/internal/ident"
)

// Flattener generates fresh per-proc temporaries ("$tmpN") while
// flattening a statement sequence. One Flattener is used per proc
// body (§4.3 "counter per-proc").
type Flattener struct {
	counter int
}

// New returns a Flattener with its counter reset to zero.
func New() *Flattener {
	return &Flattener{}
}

// fresh mints a temporary name. The leading "$" guarantees it cannot
// collide with any user name, which the grammar forbids from starting
// with "$" (§4.3 "Fresh-name guarantee").
func (f *Flattener) fresh() ident.Ident {
	n := f.counter
	f.counter++
	return ident.Ident("$tmp" + itoa(n))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// FlattenStmts flattens every statement in stmts, in order.
func (f *Flattener) FlattenStmts(stmts []astir.Stmt) []astir.Stmt {
	var out []astir.Stmt
	for _, s := range stmts {
		out = append(out, f.flattenStmt(s)...)
	}
	return out
}

func (f *Flattener) flattenStmt(s astir.Stmt) []astir.Stmt {
	switch st := s.(type) {
	case *astir.CallStmt:
		pre, args := f.flattenArgs(st.Args)
		return append(pre, astir.NewCallStmt(st.Pos(), st.Proc, args...))

	case *astir.ForeignCallStmt:
		pre, args := f.flattenArgs(st.Args)
		return append(pre, &astir.ForeignCallStmt{
			Lang: st.Lang, Name: st.Name, Args: args,
		})

	case *astir.If:
		// Only the first clause's condition-evaluation prims can safely
		// precede the If itself (it always runs). Every later clause's
		// condition is only evaluated when prior ones are false, so its
		// prims must stay inside that clause's own arm.
		clauses := make([]astir.IfClause, len(st.Clauses))
		var lead []astir.Stmt
		for i, c := range st.Clauses {
			pre, cond := f.flattenExpr(c.Cond)
			body := f.FlattenStmts(c.Body)
			if i == 0 {
				lead = pre
			} else {
				body = append(pre, body...)
			}
			clauses[i] = astir.IfClause{Cond: cond, Body: body}
		}
		out := append([]astir.Stmt{}, lead...)
		return append(out, &astir.If{
			Clauses: clauses,
			Else:    f.FlattenStmts(st.Else),
		})

	case *astir.Do:
		return []astir.Stmt{&astir.Do{Body: f.FlattenStmts(st.Body)}}

	case *astir.Break, *astir.Next:
		return []astir.Stmt{s}

	case *astir.For:
		pre, iter := f.flattenExpr(st.Iterable)
		return append(pre, &astir.For{Var: st.Var, Iterable: iter, Body: f.FlattenStmts(st.Body)})

	case *astir.While:
		pre, cond := f.flattenExpr(st.Cond)
		return append(pre, &astir.While{Cond: cond, Body: f.FlattenStmts(st.Body)})

	case *astir.Until:
		pre, cond := f.flattenExpr(st.Cond)
		return append(pre, &astir.Until{Cond: cond, Body: f.FlattenStmts(st.Body)})

	case *astir.When:
		pre, cond := f.flattenExpr(st.Cond)
		return append(pre, &astir.When{Cond: cond, Body: f.FlattenStmts(st.Body)})

	case *astir.Unless:
		pre, cond := f.flattenExpr(st.Cond)
		return append(pre, &astir.Unless{Cond: cond, Body: f.FlattenStmts(st.Body)})
	}
	return []astir.Stmt{s}
}

func (f *Flattener) flattenArgs(args []astir.Expr) (pre []astir.Stmt, out []astir.Expr) {
	out = make([]astir.Expr, len(args))
	for i, a := range args {
		p, atomic := f.flattenExpr(a)
		pre = append(pre, p...)
		out[i] = atomic
	}
	return pre, out
}

// flattenExpr resolves e into a leading statement sequence plus a
// replacement atomic expression (§4.3).
func (f *Flattener) flattenExpr(e astir.Expr) (pre []astir.Stmt, atomic astir.Expr) {
	switch ex := e.(type) {
	case *astir.VarRef, *astir.Lit:
		return nil, e

	case *astir.Ascription:
		p, inner := f.flattenExpr(ex.Inner)
		return p, &astir.Ascription{Inner: inner, Type: ex.Type}

	case *astir.Call:
		argPre, args := f.flattenArgs(ex.Args)
		tmp := f.fresh()
		out := astir.NewVarRef(ex.Pos(), tmp, astir.FlowOut)
		call := astir.NewCallStmt(ex.Pos(), ex.Proc, append(args, out)...)
		return append(argPre, call), astir.NewVarRef(ex.Pos(), tmp, astir.FlowIn)

	case *astir.BinOp:
		leftPre, left := f.flattenExpr(ex.Left)
		rightPre, right := f.flattenExpr(ex.Right)
		tmp := f.fresh()
		out := astir.NewVarRef(ex.Pos(), tmp, astir.FlowOut)
		call := astir.NewCallStmt(ex.Pos(), ident.Ident(ex.Op), left, right, out)
		pre := append(leftPre, rightPre...)
		return append(pre, call), astir.NewVarRef(ex.Pos(), tmp, astir.FlowIn)

	case *astir.UnOp:
		operandPre, operand := f.flattenExpr(ex.Operand)
		tmp := f.fresh()
		out := astir.NewVarRef(ex.Pos(), tmp, astir.FlowOut)
		call := astir.NewCallStmt(ex.Pos(), ident.Ident(ex.Op), operand, out)
		return append(operandPre, call), astir.NewVarRef(ex.Pos(), tmp, astir.FlowIn)
	}
	return nil, e
}
