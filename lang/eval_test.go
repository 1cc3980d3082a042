package lang

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ardnew/ctrlfn/lang/ast"
)

func newTestEvalContext() *EvalContext {
	ResetGlobal()
	ResetAnonFuncCache()
	registerBuiltins(Global())

	return NewEvalContext(context.Background(), NewScope(), &bytes.Buffer{}, strings.NewReader(""))
}

func TestEvalExpr_AnonFuncIdentity_SameNodeIsCacheHit(t *testing.T) {
	ec := newTestEvalContext()

	node := &ast.AnonFuncExpr{
		Params:     []ast.Param{{Name: "n", Binding: &ast.IntLit{Value: 1}}},
		ReturnType: "int",
		HasBody:    true,
		Body:       []ast.Stmt{&ast.ReturnStmt{Value: &ast.Ident{Name: "n"}}},
	}

	first, err := EvalExpr(ec, node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := EvalExpr(ec, node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ThunkName != second.ThunkName {
		t.Errorf(
			"expected the same syntactic anonymous function to reuse its Func (cache hit), got %q and %q",
			first.ThunkName, second.ThunkName,
		)
	}

	fn1, ok := lookupAnonFunc(node)
	if !ok {
		t.Fatal("expected the node to be present in the anonymous-function cache")
	}

	fn2, _ := lookupAnonFunc(node)

	if fn1 != fn2 {
		t.Error("expected repeated lookups to return the identical *Func pointer")
	}
}

func TestEvalExpr_AnonFuncIdentity_DistinctNodesAreDistinctFuncs(t *testing.T) {
	ec := newTestEvalContext()

	nodeA := &ast.AnonFuncExpr{ReturnType: "void", HasBody: true}
	nodeB := &ast.AnonFuncExpr{ReturnType: "void", HasBody: true}

	a, err := EvalExpr(ec, nodeA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := EvalExpr(ec, nodeB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.ThunkName == b.ThunkName {
		t.Error("expected distinct anonymous-function nodes to produce distinct names")
	}
}

func TestEvalExpr_CompareExpr_ReifiesToCondThunkWithoutEvaluatingOperands(t *testing.T) {
	ec := newTestEvalContext()

	// x is never defined anywhere in scope; if the comparison evaluated its
	// operands eagerly this would fail with an unbound-name error.
	cmp := &ast.CompareExpr{
		Op: ast.Eq,
		X:  &ast.Ident{Name: "x"},
		Y:  &ast.IntLit{Value: 5},
	}

	v, err := EvalExpr(ec, cmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Kind != KindCondThunk {
		t.Fatalf("expected a CondThunk, got %v", v.Kind)
	}
}

func TestEvalExpr_RefExpr_YieldsSharedCell(t *testing.T) {
	ec := newTestEvalContext()
	ec.scope.Define("x", VInt(7))

	v, err := EvalExpr(ec, &ast.RefExpr{Inner: &ast.Ident{Name: "x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Kind != KindRef {
		t.Fatalf("expected KindRef, got %v", v.Kind)
	}

	cell, _ := ec.scope.Lookup("x")
	if v.Ref != cell {
		t.Error("expected &x to yield a Ref pointing at x's own cell")
	}
}

func TestEvalExpr_ArithExpr_DeepRefDereferencesBeforeOperating(t *testing.T) {
	ec := newTestEvalContext()
	ec.scope.Define("x", VInt(4))

	cellX, _ := ec.scope.Lookup("x")
	refToRef := VRef(NewCell(VRef(cellX)))
	ec.scope.Define("y", refToRef)

	arith := &ast.ArithExpr{
		Op: ast.Add,
		X:  &ast.Ident{Name: "y"},
		Y:  &ast.IntLit{Value: 1},
	}

	v, err := EvalExpr(ec, arith)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Kind != KindInt || v.Int != 5 {
		t.Errorf("expected 5 after dereferencing a two-level Ref chain, got %+v", v)
	}
}

func TestResolve_LocalBeforeGlobal(t *testing.T) {
	ResetGlobal()

	Global().Define("x", VInt(1))

	local := NewScope()
	local.Define("x", VInt(2))

	cell, ok := Resolve("x", local)
	if !ok {
		t.Fatal("expected to resolve x")
	}

	if cell.Load().Int != 2 {
		t.Errorf("expected local binding to shadow global, got %v", cell.Load().Int)
	}

	cell, ok = Resolve("x", nil)
	if !ok {
		t.Fatal("expected to resolve x in global scope with nil local")
	}

	if cell.Load().Int != 1 {
		t.Errorf("expected global binding, got %v", cell.Load().Int)
	}
}
