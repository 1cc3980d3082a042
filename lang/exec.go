package lang

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/ctrlfn/lang/ast"
	"github.com/ardnew/ctrlfn/log"
)

// Exec runs stmts in order against ec's current local scope. It returns the
// value of the first Return statement encountered, or Void if execution
// falls off the end.
func Exec(ec *EvalContext, stmts []ast.Stmt, returnType string) (Value, error) {
	for _, stmt := range stmts {
		log.TraceContext(ec.Context(), "exec_stmt", slog.String("node", fmt.Sprintf("%T", stmt)))

		switch s := stmt.(type) {
		case *ast.LetStmt:
			v, err := EvalExpr(ec, s.Value)
			if err != nil {
				return Value{}, err
			}

			v, err = collapseCond(ec, v)
			if err != nil {
				return Value{}, err
			}

			ec.scope.Define(s.Name, v)

		case *ast.AssignStmt:
			v, err := EvalExpr(ec, s.Value)
			if err != nil {
				return Value{}, err
			}

			v, err = collapseCond(ec, v)
			if err != nil {
				return Value{}, err
			}

			cell, ok := Resolve(s.Name, ec.scope)
			if !ok {
				return Value{}, ErrUnboundName.With(attrString("name", s.Name))
			}

			if cur := cell.Load(); cur.Kind == KindRef {
				cur.Ref.Store(v)
			} else {
				cell.Store(v)
			}

		case *ast.ExprStmt:
			if _, err := EvalExpr(ec, s.X); err != nil {
				return Value{}, err
			}

		case *ast.ReturnStmt:
			v, err := EvalExpr(ec, s.Value)
			if err != nil {
				return Value{}, err
			}

			if returnType != "" && v.ReifiedType() != returnType {
				return Value{}, ErrReturnType.With(
					attrString("want", returnType),
					attrString("got", v.ReifiedType()),
				)
			}

			return v, nil
		}
	}

	return VVoid(), nil
}

// collapseCond eagerly collapses a CondThunk to a Bool by evaluating both
// operand expressions in the current scope and applying the comparison.
// let and assign right-hand sides collapse a CondThunk this way; return
// does not, passing it through unevaluated.
func collapseCond(ec *EvalContext, v Value) (Value, error) {
	if v.Kind != KindCondThunk {
		return v, nil
	}

	return evalCondThunk(ec, v)
}

// evalCondThunk evaluates a CondThunk's operands against ec's current scope
// and applies its comparison/logical operator.
func evalCondThunk(ec *EvalContext, v Value) (Value, error) {
	x, err := EvalExpr(ec, v.CondX)
	if err != nil {
		return Value{}, err
	}

	y, err := EvalExpr(ec, v.CondY)
	if err != nil {
		return Value{}, err
	}

	b, err := Compare(v.CondOp, x, y)
	if err != nil {
		return Value{}, err
	}

	return VBool(b), nil
}
