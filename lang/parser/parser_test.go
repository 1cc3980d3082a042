package parser

import (
	"testing"

	"github.com/ardnew/ctrlfn/lang/ast"
)

func TestParse_EmptyProgram(t *testing.T) {
	prog, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(prog.Funcs) != 0 {
		t.Errorf("expected no functions, got %d", len(prog.Funcs))
	}
}

func TestParse_FuncDeclWithoutBody(t *testing.T) {
	prog, err := Parse([]byte(`func add = (a: int, b: int) -> int`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(prog.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Funcs))
	}

	fn := prog.Funcs[0]

	if fn.Name != "add" {
		t.Errorf("expected name 'add', got %q", fn.Name)
	}

	if fn.HasBody {
		t.Errorf("expected no body")
	}

	if fn.ReturnType != "int" {
		t.Errorf("expected return type 'int', got %q", fn.ReturnType)
	}

	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}

	if fn.Params[0].Name != "a" || fn.Params[0].Type != "int" {
		t.Errorf("unexpected param 0: %+v", fn.Params[0])
	}
}

func TestParse_FuncWithBody_LetAssignReturn(t *testing.T) {
	src := `
func main = () -> int {
	let x = 1;
	x = x + 2;
	return x;
}
`
	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := prog.Funcs[0]
	if !fn.HasBody {
		t.Fatalf("expected body")
	}

	if len(fn.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(fn.Body))
	}

	if _, ok := fn.Body[0].(*ast.LetStmt); !ok {
		t.Errorf("expected LetStmt, got %T", fn.Body[0])
	}

	if _, ok := fn.Body[1].(*ast.AssignStmt); !ok {
		t.Errorf("expected AssignStmt, got %T", fn.Body[1])
	}

	ret, ok := fn.Body[2].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected ReturnStmt, got %T", fn.Body[2])
	}

	if _, ok := ret.Value.(*ast.Ident); !ok {
		t.Errorf("expected Ident return value, got %T", ret.Value)
	}
}

func TestParse_OperatorPrecedence(t *testing.T) {
	// "^" binds looser than comparison, which binds looser than "+"/"-",
	// which binds looser than "*"/"/"/"%".
	src := `func f = () { return 1 + 2 * 3 == 7 ^ false; }`

	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ret := prog.Funcs[0].Body[0].(*ast.ReturnStmt)

	xor, ok := ret.Value.(*ast.ArithExpr)
	if !ok || xor.Op != ast.Xor {
		t.Fatalf("expected top-level Xor ArithExpr, got %#v", ret.Value)
	}

	cmp, ok := xor.X.(*ast.CompareExpr)
	if !ok || cmp.Op != ast.Eq {
		t.Fatalf("expected Eq CompareExpr on xor's left, got %#v", xor.X)
	}

	add, ok := cmp.X.(*ast.ArithExpr)
	if !ok || add.Op != ast.Add {
		t.Fatalf("expected Add ArithExpr on comparison's left, got %#v", cmp.X)
	}

	mul, ok := add.Y.(*ast.ArithExpr)
	if !ok || mul.Op != ast.Mul {
		t.Fatalf("expected Mul nested under Add's right operand, got %#v", add.Y)
	}
}

func TestParse_RefExpr(t *testing.T) {
	src := `func f = () { let y = &x; }`

	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	let := prog.Funcs[0].Body[0].(*ast.LetStmt)

	ref, ok := let.Value.(*ast.RefExpr)
	if !ok {
		t.Fatalf("expected RefExpr, got %T", let.Value)
	}

	if _, ok := ref.Inner.(*ast.Ident); !ok {
		t.Errorf("expected Ident inside RefExpr, got %T", ref.Inner)
	}
}

func TestParse_FuncPtrLiteral(t *testing.T) {
	src := `func f = () { return $body|x, y|; }`

	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ret := prog.Funcs[0].Body[0].(*ast.ReturnStmt)

	fp, ok := ret.Value.(*ast.FuncPtrExpr)
	if !ok {
		t.Fatalf("expected FuncPtrExpr, got %T", ret.Value)
	}

	if fp.Name != "body" {
		t.Errorf("expected name 'body', got %q", fp.Name)
	}

	if len(fp.Args) != 2 {
		t.Errorf("expected 2 args, got %d", len(fp.Args))
	}
}

func TestParse_AnonFuncLiteral(t *testing.T) {
	src := `func f = () { if($|a: x > 0| -> bool{ return true; }, $|| -> void{}); }`

	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stmt := prog.Funcs[0].Body[0].(*ast.ExprStmt)

	call, ok := stmt.X.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", stmt.X)
	}

	if call.Callee != "if" {
		t.Fatalf("expected callee 'if', got %q", call.Callee)
	}

	anon, ok := call.Args[0].(*ast.AnonFuncExpr)
	if !ok {
		t.Fatalf("expected AnonFuncExpr, got %T", call.Args[0])
	}

	if len(anon.Params) != 1 || anon.Params[0].Name != "a" {
		t.Fatalf("unexpected params: %+v", anon.Params)
	}

	if _, ok := anon.Params[0].Binding.(*ast.CompareExpr); !ok {
		t.Errorf("expected CompareExpr binding, got %T", anon.Params[0].Binding)
	}

	if anon.ReturnType != "bool" {
		t.Errorf("expected return type 'bool', got %q", anon.ReturnType)
	}
}

func TestParse_CounterExpr(t *testing.T) {
	src := `func f = () { for(i in 0..10, $body||); }`

	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stmt := prog.Funcs[0].Body[0].(*ast.ExprStmt)
	call := stmt.X.(*ast.CallExpr)

	counter, ok := call.Args[0].(*ast.CounterExpr)
	if !ok {
		t.Fatalf("expected CounterExpr, got %T", call.Args[0])
	}

	if counter.Name != "i" || counter.Start != 0 || counter.End != 10 {
		t.Errorf("unexpected counter: %+v", counter)
	}
}

func TestParse_RangeExprWithoutName(t *testing.T) {
	src := `func f = () { for(0..5, $body||); }`

	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := prog.Funcs[0].Body[0].(*ast.ExprStmt).X.(*ast.CallExpr)

	rng, ok := call.Args[0].(*ast.RangeExpr)
	if !ok {
		t.Fatalf("expected RangeExpr, got %T", call.Args[0])
	}

	if rng.Start != 0 || rng.End != 5 {
		t.Errorf("unexpected range: %+v", rng)
	}
}

func TestParse_AssignmentVsExpressionStatementAmbiguity(t *testing.T) {
	src := `
func f = () {
	x = 1;
	f(x);
}
`
	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := prog.Funcs[0].Body[0].(*ast.AssignStmt); !ok {
		t.Errorf("expected AssignStmt, got %T", prog.Funcs[0].Body[0])
	}

	if _, ok := prog.Funcs[0].Body[1].(*ast.ExprStmt); !ok {
		t.Errorf("expected ExprStmt, got %T", prog.Funcs[0].Body[1])
	}
}

func TestParse_ListAndMapLiterals(t *testing.T) {
	src := `func f = () { let a = [1, 2, 3]; let b = {"k": 1}; }`

	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list := prog.Funcs[0].Body[0].(*ast.LetStmt).Value.(*ast.ListExpr)
	if len(list.Elems) != 3 {
		t.Errorf("expected 3 elements, got %d", len(list.Elems))
	}

	m := prog.Funcs[0].Body[1].(*ast.LetStmt).Value.(*ast.MapExpr)
	if len(m.Pairs) != 1 {
		t.Errorf("expected 1 pair, got %d", len(m.Pairs))
	}
}

func TestParse_BoolLiterals(t *testing.T) {
	src := `func f = () { return true; }`

	prog, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ret := prog.Funcs[0].Body[0].(*ast.ReturnStmt)

	lit, ok := ret.Value.(*ast.BoolLit)
	if !ok || !lit.Value {
		t.Fatalf("expected BoolLit(true), got %#v", ret.Value)
	}
}

func TestParse_SyntaxError_ReportsPosition(t *testing.T) {
	_, err := Parse([]byte(`func f = (`))
	if err == nil {
		t.Fatal("expected a syntax error")
	}

	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}

	if perr.Pos.Line == 0 {
		t.Errorf("expected a populated position, got %+v", perr.Pos)
	}
}
