package lang

import (
	"fmt"
	"math"
	"sync"

	"github.com/ardnew/ctrlfn/lang/ast"
)

// reifiedTypeCache memoizes the string form of a Func/NativeFunc reification
// by the callable's own pointer identity, so re-reifying the same callee
// across many iterations of a hot for/while loop builds its descriptor once
// instead of on every call-binding check.
var reifiedTypeCache sync.Map // key: *Func or *NativeFunc, value: string

func cachedReifiedType(key any, compute func() string) string {
	if s, ok := reifiedTypeCache.Load(key); ok {
		return s.(string)
	}

	s := compute()

	reifiedTypeCache.Store(key, s)

	return s
}

// Kind discriminates the variants of the Value tagged union.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindRange
	KindCounter
	KindFuncPtr
	KindFunc
	KindCallThunk
	KindCondThunk
	KindRef
	KindType
)

//go:generate stringer -type=Kind

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindRange:
		return "range"
	case KindCounter:
		return "counter"
	case KindFuncPtr:
		return "funcptr"
	case KindFunc:
		return "func"
	case KindCallThunk:
		return "callthunk"
	case KindCondThunk:
		return "condthunk"
	case KindRef:
		return "ref"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// Value is the runtime tagged union described by the value domain: every
// variant lives in this one struct, discriminated by Kind. Value is cheap to
// copy; Func, Cell, and NativeFunc payloads are shared by pointer.
type Value struct {
	Kind Kind

	Int   int64
	Float float64
	Bool  bool
	Str   string

	RangeStart, RangeEnd int64
	CounterName          string

	Native *NativeFunc
	Func   *Func

	ThunkName string
	ThunkArgs []ast.Expr

	CondOp ast.CmpOp
	CondX  ast.Expr
	CondY  ast.Expr

	Ref *Cell

	TypeName string
}

// Constructors. Each yields a Value of exactly one Kind.

func VInt(v int64) Value      { return Value{Kind: KindInt, Int: v} }
func VFloat(v float64) Value  { return Value{Kind: KindFloat, Float: v} }
func VBool(v bool) Value      { return Value{Kind: KindBool, Bool: v} }
func VString(v string) Value  { return Value{Kind: KindString, Str: v} }
func VVoid() Value            { return Value{Kind: KindVoid} }
func VType(name string) Value { return Value{Kind: KindType, TypeName: name} }

func VRange(start, end int64) Value {
	return Value{Kind: KindRange, RangeStart: start, RangeEnd: end}
}

func VCounter(name string, start, end int64) Value {
	return Value{Kind: KindCounter, CounterName: name, RangeStart: start, RangeEnd: end}
}

func VFuncPtr(nf *NativeFunc) Value { return Value{Kind: KindFuncPtr, Native: nf} }
func VFunc(f *Func) Value           { return Value{Kind: KindFunc, Func: f} }

func VCallThunk(name string, args []ast.Expr) Value {
	return Value{Kind: KindCallThunk, ThunkName: name, ThunkArgs: args}
}

func VCondThunk(op ast.CmpOp, x, y ast.Expr) Value {
	return Value{Kind: KindCondThunk, CondOp: op, CondX: x, CondY: y}
}

func VRef(c *Cell) Value { return Value{Kind: KindRef, Ref: c} }

// Deref follows a chain of Ref values to any depth and returns the first
// non-Ref Value.
func (v Value) Deref() Value {
	for v.Kind == KindRef {
		v = v.Ref.Load()
	}

	return v
}

// ReifiedType computes the string-encoded type descriptor used for
// signature and return-type matching.
func (v Value) ReifiedType() string {
	switch v.Kind {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindVoid:
		return "void"
	case KindFuncPtr:
		return cachedReifiedType(v.Native, func() string { return fmt.Sprintf("native@%p", v.Native) })
	case KindFunc:
		return cachedReifiedType(v.Func, func() string { return v.Func.ReturnType })
	case KindRange:
		return fmt.Sprintf("range<%d, %d>", v.RangeStart, v.RangeEnd)
	case KindCounter:
		return fmt.Sprintf("counter<%s, %d, %d>", v.CounterName, v.RangeStart, v.RangeEnd)
	case KindCallThunk:
		return "func"
	case KindCondThunk:
		return "bool"
	case KindRef:
		return v.Ref.Load().ReifiedType()
	case KindType:
		return v.TypeName
	default:
		return "none"
	}
}

// String formats a Value the way print renders it.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindString:
		return v.Str
	case KindVoid:
		return "void"
	case KindRange:
		return fmt.Sprintf("%d..%d", v.RangeStart, v.RangeEnd)
	case KindCounter:
		return fmt.Sprintf("%s in %d..%d", v.CounterName, v.RangeStart, v.RangeEnd)
	case KindFuncPtr:
		return "<native function>"
	case KindFunc:
		return fmt.Sprintf("<func %s -> %s>", v.Func.Name, v.Func.ReturnType)
	case KindCallThunk:
		return fmt.Sprintf("<thunk %s>", v.ThunkName)
	case KindCondThunk:
		return fmt.Sprintf("<cond %s>", v.CondOp)
	case KindRef:
		return v.Ref.Load().String()
	case KindType:
		return v.TypeName
	default:
		return ""
	}
}

// Equal implements structural equality on same-variant primitives; Func
// values compare equal iff their declared return types match.
func Equal(a, b Value) bool {
	a, b = a.Deref(), b.Deref()

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindBool:
		return a.Bool == b.Bool
	case KindString:
		return a.Str == b.Str
	case KindVoid:
		return true
	case KindFunc:
		return a.Func.ReturnType == b.Func.ReturnType
	case KindType:
		return a.TypeName == b.TypeName
	default:
		return false
	}
}

// ordered returns both operands as int64 for comparison when they are Int or
// Bool operands; ok is false, and ordering undefined, for every other kind.
func ordered(a, b Value) (aInt, bInt int64, ok bool) {
	a, b = a.Deref(), b.Deref()

	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return a.Int, b.Int, true
	case a.Kind == KindBool && b.Kind == KindBool:
		return boolToInt(a.Bool), boolToInt(b.Bool), true
	default:
		return 0, 0, false
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}

	return 0
}

// Compare evaluates a comparison or logical CmpOp against two already
// dereferenced-or-not operands.
func Compare(op ast.CmpOp, a, b Value) (bool, error) {
	switch op {
	case ast.Eq:
		return Equal(a, b), nil
	case ast.Ne:
		return !Equal(a, b), nil
	case ast.Gt, ast.Lt, ast.Ge, ast.Le:
		x, y, ok := ordered(a, b)
		if !ok {
			return false, nil
		}

		switch op {
		case ast.Gt:
			return x > y, nil
		case ast.Lt:
			return x < y, nil
		case ast.Ge:
			return x >= y, nil
		default:
			return x <= y, nil
		}
	case ast.And, ast.Or:
		ad, bd := a.Deref(), b.Deref()
		if ad.Kind != KindBool || bd.Kind != KindBool {
			return false, ErrLogicOperand
		}

		if op == ast.And {
			return ad.Bool && bd.Bool, nil
		}

		return ad.Bool || bd.Bool, nil
	default:
		return false, nil
	}
}

// Arith evaluates a nestable binary arithmetic op. Arithmetic is defined on
// matching numeric types only; mismatched or non-numeric operand kinds
// (including mixed int/float) silently yield Void.
func Arith(op ast.ArithOp, a, b Value) Value {
	a, b = a.Deref(), b.Deref()

	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return arithInt(op, a.Int, b.Int)
	case a.Kind == KindFloat && b.Kind == KindFloat:
		return arithFloat(op, a.Float, b.Float)
	default:
		return VVoid()
	}
}

// arithInt applies op to two Int operands. Division and modulus by zero are
// left to Go's own runtime divide-by-zero trap rather than guarded against:
// this language promises host two's-complement semantics with no checked
// arithmetic, and a zero guard that silently substitutes a value is exactly
// the kind of check that rules out.
func arithInt(op ast.ArithOp, a, b int64) Value {
	switch op {
	case ast.Add:
		return VInt(a + b)
	case ast.Sub:
		return VInt(a - b)
	case ast.Mul:
		return VInt(a * b)
	case ast.Div:
		return VInt(a / b)
	case ast.Mod:
		return VInt(a % b)
	case ast.Xor:
		return VInt(a ^ b)
	default:
		return VVoid()
	}
}

// arithFloat applies the same operator set to floats. Xor on floats has no
// native meaning; it operates on the IEEE-754 bit pattern so that "matching
// numeric types only" stays true for every arithmetic op, not just the ones
// that are natural on floats.
func arithFloat(op ast.ArithOp, a, b float64) Value {
	switch op {
	case ast.Add:
		return VFloat(a + b)
	case ast.Sub:
		return VFloat(a - b)
	case ast.Mul:
		return VFloat(a * b)
	case ast.Div:
		return VFloat(a / b)
	case ast.Mod:
		return VFloat(math.Mod(a, b))
	case ast.Xor:
		return VFloat(math.Float64frombits(math.Float64bits(a) ^ math.Float64bits(b)))
	default:
		return VVoid()
	}
}

// Not implements logical-not: Bool->Bool, Int->Int (bitwise), or
// dereference-then-not for Ref.
func Not(a Value) Value {
	a = a.Deref()

	switch a.Kind {
	case KindBool:
		return VBool(!a.Bool)
	case KindInt:
		return VInt(^a.Int)
	default:
		return VVoid()
	}
}

// Neg implements negation: Int->Int, Float->Float, or dereference-then-neg
// for Ref.
func Neg(a Value) Value {
	a = a.Deref()

	switch a.Kind {
	case KindInt:
		return VInt(-a.Int)
	case KindFloat:
		return VFloat(-a.Float)
	default:
		return VVoid()
	}
}
