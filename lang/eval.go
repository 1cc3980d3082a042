package lang

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/ctrlfn/lang/ast"
	"github.com/ardnew/ctrlfn/log"
)

// EvalExpr computes a Value from an expression node against ec's current
// local scope. Nestable arithmetic/unary nodes combine at most two
// in-flight operand values per operator (lhs, rhs); recursing into EvalExpr
// for each operand realizes exactly that discipline without needing an
// explicit node stack, since Go's own call stack already holds the "at most
// two operands in flight" frame per operator.
func EvalExpr(ec *EvalContext, expr ast.Expr) (Value, error) {
	log.TraceContext(ec.Context(), "eval_expr", slog.String("node", fmt.Sprintf("%T", expr)))

	switch n := expr.(type) {
	case *ast.IntLit:
		return VInt(n.Value), nil
	case *ast.FloatLit:
		return VFloat(n.Value), nil
	case *ast.BoolLit:
		return VBool(n.Value), nil
	case *ast.StringLit:
		return VString(n.Value), nil

	case *ast.Ident:
		cell, ok := Resolve(n.Name, ec.scope)
		if !ok {
			return Value{}, ErrUnboundName.With(attrString("name", n.Name))
		}

		return cell.Load(), nil

	case *ast.RefExpr:
		return evalRef(ec, n)

	case *ast.ArithExpr:
		x, err := EvalExpr(ec, n.X)
		if err != nil {
			return Value{}, err
		}

		y, err := EvalExpr(ec, n.Y)
		if err != nil {
			return Value{}, err
		}

		return Arith(n.Op, x, y), nil

	case *ast.UnaryExpr:
		x, err := EvalExpr(ec, n.X)
		if err != nil {
			return Value{}, err
		}

		if n.Op == ast.Not {
			return Not(x), nil
		}

		return Neg(x), nil

	case *ast.CompareExpr:
		// Deferred: the sub-expressions are not evaluated here. They are
		// carried forward so if/for/while can re-evaluate them against the
		// callee's own scope, where names the comparison references may not
		// yet be bound in the caller's scope.
		return VCondThunk(n.Op, n.X, n.Y), nil

	case *ast.CallExpr:
		return CallFunc(ec, n.Callee, n.Args)

	case *ast.FuncPtrExpr:
		return VCallThunk(n.Name, n.Args), nil

	case *ast.AnonFuncExpr:
		return evalAnonFunc(ec, n)

	case *ast.RangeExpr:
		return VRange(n.Start, n.End), nil

	case *ast.CounterExpr:
		ec.scope.Define(n.Name, VInt(n.Start))

		return VCounter(n.Name, n.Start, n.End), nil

	case *ast.ListExpr, *ast.MapExpr:
		// The value domain has no collection variant; a collection literal
		// carries no runtime representation of its own.
		return VVoid(), nil

	default:
		return Value{}, fmt.Errorf("lang: unhandled expression node %T", expr)
	}
}

func evalRef(ec *EvalContext, n *ast.RefExpr) (Value, error) {
	if id, ok := n.Inner.(*ast.Ident); ok {
		cell, ok := Resolve(id.Name, ec.scope)
		if !ok {
			return Value{}, ErrUnboundName.With(attrString("name", id.Name))
		}

		return VRef(cell), nil
	}

	v, err := EvalExpr(ec, n.Inner)
	if err != nil {
		return Value{}, err
	}

	return VRef(NewCell(v)), nil
}

// evalAnonFunc reifies an anonymous-function literal to a CallThunk,
// evaluating each binding expression in the enclosing scope to supply both
// the runtime argument and the inferred parameter type.
func evalAnonFunc(ec *EvalContext, n *ast.AnonFuncExpr) (Value, error) {
	fn, cached := lookupAnonFunc(n)

	if !cached {
		params := make([]Param, len(n.Params))

		for i, p := range n.Params {
			v, err := EvalExpr(ec, p.Binding)
			if err != nil {
				return Value{}, err
			}

			params[i] = Param{Name: p.Name, Type: v.ReifiedType()}
		}

		fn = &Func{
			Captured:   ec.scope,
			Name:       anonFuncName(n),
			Params:     params,
			ReturnType: n.ReturnType,
			Body:       n.Body,
		}

		storeAnonFunc(n, fn)
	}

	// Bind the callable under its stable name in the current scope so that
	// CallFunc (re-entered by if/for/while) can resolve it, and build the
	// call-form argument expressions (the caller's current binding
	// expressions, re-evaluated at invocation time).
	ec.scope.Define(fn.Name, VFunc(fn))

	callArgs := make([]ast.Expr, len(n.Params))
	for i, p := range n.Params {
		callArgs[i] = p.Binding
	}

	return VCallThunk(fn.Name, callArgs), nil
}

func anonFuncName(n *ast.AnonFuncExpr) string {
	return fmt.Sprintf("$anon@%p", n)
}
