package lang

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ardnew/ctrlfn/lang/ast"
)

func TestCallFunc_DispatchesToNativeFunc(t *testing.T) {
	ResetGlobal()

	var called bool

	Global().Define("probe", VFuncPtr(&NativeFunc{
		Name: "probe",
		Call: func(ec *EvalContext, args []Value) (Value, error) {
			called = true

			return VVoid(), nil
		},
	}))

	ec := NewEvalContext(context.Background(), NewScope(), &bytes.Buffer{}, strings.NewReader(""))

	if _, err := CallFunc(ec, "probe", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !called {
		t.Error("expected the native function to be invoked")
	}
}

func TestCallFunc_DispatchesToUserFunc(t *testing.T) {
	ResetGlobal()

	Global().Define("double", VFunc(&Func{
		Name:       "double",
		Params:     []Param{{Name: "n", Type: "int"}},
		ReturnType: "int",
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.ArithExpr{
				Op: ast.Add,
				X:  &ast.Ident{Name: "n"},
				Y:  &ast.Ident{Name: "n"},
			}},
		},
	}))

	ec := NewEvalContext(context.Background(), NewScope(), &bytes.Buffer{}, strings.NewReader(""))

	got, err := CallFunc(ec, "double", []ast.Expr{&ast.IntLit{Value: 21}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Int != 42 {
		t.Errorf("expected 42, got %v", got.Int)
	}
}

func TestCallFunc_UnboundCallee_IsFatal(t *testing.T) {
	ResetGlobal()

	ec := NewEvalContext(context.Background(), NewScope(), &bytes.Buffer{}, strings.NewReader(""))

	if _, err := CallFunc(ec, "missing", nil); err == nil {
		t.Fatal("expected an unbound-name error")
	}
}

func TestCallFunc_NonCallableValue_IsFatal(t *testing.T) {
	ResetGlobal()

	Global().Define("notAFunc", VInt(1))

	ec := NewEvalContext(context.Background(), NewScope(), &bytes.Buffer{}, strings.NewReader(""))

	if _, err := CallFunc(ec, "notAFunc", nil); err == nil {
		t.Fatal("expected a not-callable error")
	}
}

func TestCallFunc_ParamTypeMismatch_IsFatal(t *testing.T) {
	ResetGlobal()

	Global().Define("wantsInt", VFunc(&Func{
		Name:   "wantsInt",
		Params: []Param{{Name: "n", Type: "int"}},
		Body:   nil,
	}))

	ec := NewEvalContext(context.Background(), NewScope(), &bytes.Buffer{}, strings.NewReader(""))

	_, err := CallFunc(ec, "wantsInt", []ast.Expr{&ast.StringLit{Value: "nope"}})
	if err == nil {
		t.Fatal("expected a param-type-mismatch error")
	}
}

func TestCallFunc_ReturnTypeMismatch_IsFatal(t *testing.T) {
	ResetGlobal()

	Global().Define("wrongReturn", VFunc(&Func{
		Name:       "wrongReturn",
		ReturnType: "int",
		Body: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.StringLit{Value: "oops"}},
		},
	}))

	ec := NewEvalContext(context.Background(), NewScope(), &bytes.Buffer{}, strings.NewReader(""))

	_, err := CallFunc(ec, "wrongReturn", nil)
	if err == nil {
		t.Fatal("expected a return-type-mismatch error")
	}
}

func TestCallFunc_ByReferenceParam_BindsCallersCell(t *testing.T) {
	ResetGlobal()

	Global().Define("bump", VFunc(&Func{
		Name:   "bump",
		Params: []Param{{Name: "n", Type: "int"}},
		Body: []ast.Stmt{
			&ast.AssignStmt{Name: "n", Value: &ast.IntLit{Value: 42}},
		},
	}))

	callerScope := NewScope()
	callerScope.Define("x", VInt(1))

	ec := NewEvalContext(context.Background(), callerScope, &bytes.Buffer{}, strings.NewReader(""))

	if _, err := CallFunc(ec, "bump", []ast.Expr{&ast.RefExpr{Inner: &ast.Ident{Name: "x"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cell, _ := callerScope.Lookup("x")
	if cell.Load().Int != 42 {
		t.Errorf("expected caller's x to be updated via the &x alias, got %v", cell.Load().Int)
	}
}
