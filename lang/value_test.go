package lang

import (
	"testing"

	"github.com/ardnew/ctrlfn/lang/ast"
)

func TestValue_Deref_FollowsChainToNonRef(t *testing.T) {
	inner := NewCell(VInt(3))
	outer := NewCell(VRef(inner))

	v := VRef(outer)

	got := v.Deref()
	if got.Kind != KindInt || got.Int != 3 {
		t.Errorf("expected Deref to follow a two-level Ref chain to Int(3), got %+v", got)
	}
}

func TestValue_ReifiedType(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"int", VInt(1), "int"},
		{"float", VFloat(1.5), "float"},
		{"bool", VBool(true), "bool"},
		{"string", VString("s"), "string"},
		{"void", VVoid(), "void"},
		{"ref follows to inner type", VRef(NewCell(VInt(1))), "int"},
		{"callthunk reifies as func", VCallThunk("f", nil), "func"},
		{"condthunk reifies as bool", VCondThunk(ast.Eq, &ast.IntLit{Value: 1}, &ast.IntLit{Value: 1}), "bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.ReifiedType(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal ints", VInt(1), VInt(1), true},
		{"unequal ints", VInt(1), VInt(2), false},
		{"equal strings", VString("a"), VString("a"), true},
		{"mismatched kinds", VInt(1), VString("1"), false},
		{"ref dereferences before comparing", VRef(NewCell(VInt(5))), VInt(5), true},
		{"void equals void", VVoid(), VVoid(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompare_Ordering(t *testing.T) {
	tests := []struct {
		name string
		op   ast.CmpOp
		a, b Value
		want bool
	}{
		{"lt true", ast.Lt, VInt(1), VInt(2), true},
		{"lt false", ast.Lt, VInt(2), VInt(1), false},
		{"ge equal", ast.Ge, VInt(2), VInt(2), true},
		{"bool ordering true<false is false", ast.Lt, VBool(true), VBool(false), false},
		{"bool ordering false<true is true", ast.Lt, VBool(false), VBool(true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.op, tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompare_OrderingUndefinedOnNonIntBool_YieldsFalse(t *testing.T) {
	got, err := Compare(ast.Lt, VString("a"), VString("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got {
		t.Error("expected ordering on non-Int/Bool operands to be false, not an error")
	}
}

func TestCompare_LogicalOps(t *testing.T) {
	tests := []struct {
		name string
		op   ast.CmpOp
		a, b Value
		want bool
	}{
		{"and true", ast.And, VBool(true), VBool(true), true},
		{"and false", ast.And, VBool(true), VBool(false), false},
		{"or true", ast.Or, VBool(false), VBool(true), true},
		{"or false", ast.Or, VBool(false), VBool(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.op, tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompare_LogicalOpOnNonBool_IsFatal(t *testing.T) {
	_, err := Compare(ast.And, VInt(1), VBool(true))
	if err == nil {
		t.Fatal("expected an error for a logical op on a non-bool operand")
	}
}

func TestArith_MatchingNumericTypes(t *testing.T) {
	tests := []struct {
		name string
		op   ast.ArithOp
		a, b Value
		want Value
	}{
		{"int add", ast.Add, VInt(2), VInt(3), VInt(5)},
		{"int sub", ast.Sub, VInt(5), VInt(3), VInt(2)},
		{"int mul", ast.Mul, VInt(2), VInt(3), VInt(6)},
		{"int div", ast.Div, VInt(7), VInt(2), VInt(3)},
		{"int mod", ast.Mod, VInt(7), VInt(2), VInt(1)},
		{"int xor", ast.Xor, VInt(5), VInt(3), VInt(6)},
		{"float add", ast.Add, VFloat(1.5), VFloat(2.5), VFloat(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Arith(tt.op, tt.a, tt.b)
			if !Equal(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestArith_MismatchedOrNonNumericOperands_YieldsVoid(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
	}{
		{"mixed int/float", VInt(1), VFloat(1.5)},
		{"string operands", VString("a"), VString("b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Arith(ast.Add, tt.a, tt.b)
			if got.Kind != KindVoid {
				t.Errorf("expected Void, got %+v", got)
			}
		})
	}
}

func TestArith_RefOperandsDereferenceBeforeMatching(t *testing.T) {
	got := Arith(ast.Add, VRef(NewCell(VInt(2))), VInt(3))
	if got.Kind != KindInt || got.Int != 5 {
		t.Errorf("expected Ref(2)+3 to yield Int(5), got %+v", got)
	}
}

func TestNot(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want Value
	}{
		{"bool", VBool(true), VBool(false)},
		{"int bitwise", VInt(0), VInt(-1)},
		{"ref dereferences", VRef(NewCell(VBool(false))), VBool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Not(tt.v); !Equal(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNeg(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want Value
	}{
		{"int", VInt(3), VInt(-3)},
		{"float", VFloat(1.5), VFloat(-1.5)},
		{"ref dereferences", VRef(NewCell(VInt(4))), VInt(-4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Neg(tt.v); !Equal(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
