package lang

import (
	"bufio"
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/ctrlfn/lang/ast"
	"github.com/ardnew/ctrlfn/log"
)

// Param is one (name, declared-type) parameter binding.
type Param struct {
	Name string
	Type string
}

// Func is a user-defined function object: captured scope, ordered
// parameters, declared return type, and a statement body. It is immutable
// after construction; each invocation runs against a fresh local scope.
type Func struct {
	Public     bool
	Captured   *Scope
	Name       string
	Params     []Param
	ReturnType string
	Body       []ast.Stmt
}

// NativeFunc is a host-implemented callable installed as a FuncPtr value —
// the built-in control functions.
type NativeFunc struct {
	Name string
	Call func(ec *EvalContext, args []Value) (Value, error)
}

// EvalContext threads the pieces of interpreter state every evaluation step
// needs: cancellation, the current local scope, and the standard streams
// input/print touch.
type EvalContext struct {
	ctx      context.Context
	scope    *Scope
	stdout   io.Writer
	stdin    *bufio.Reader
	depth    *int
	maxDepth int
}

// recursionDepthKey is the context key under which --recursion-depth is
// carried from the CLI into the root EvalContext.
type recursionDepthKey struct{}

// WithRecursionDepth returns a context that caps nested function
// activations (the call chain CallFunc -> callFunc -> Exec -> CallFunc...)
// at max; callFunc enforces the limit once [NewEvalContext] picks it up. A
// non-positive max leaves recursion unbounded, matching the interpreter's
// prior behavior.
func WithRecursionDepth(ctx context.Context, max int) context.Context {
	return context.WithValue(ctx, recursionDepthKey{}, max)
}

func recursionDepthFrom(ctx context.Context) int {
	max, _ := ctx.Value(recursionDepthKey{}).(int)

	return max
}

// NewEvalContext builds the root EvalContext for a function activation.
func NewEvalContext(ctx context.Context, scope *Scope, stdout io.Writer, stdin io.Reader) *EvalContext {
	return &EvalContext{
		ctx:      ctx,
		scope:    scope,
		stdout:   stdout,
		stdin:    bufio.NewReader(stdin),
		depth:    new(int),
		maxDepth: recursionDepthFrom(ctx),
	}
}

// withScope returns a copy of ec bound to a different local scope, used when
// entering a new function activation or a built-in's re-entrant dispatch.
// The depth counter and its cap are shared with the copy, not reset.
func (ec *EvalContext) withScope(scope *Scope) *EvalContext {
	cp := *ec
	cp.scope = scope

	return &cp
}

// Scope returns the EvalContext's current local scope.
func (ec *EvalContext) Scope() *Scope { return ec.scope }

// Context returns the cancellation context threaded through evaluation.
func (ec *EvalContext) Context() context.Context { return ec.ctx }

// CallFunc implements the call dispatch protocol: resolve the callee
// local-then-global, evaluate each argument expression against scope, then
// dispatch to a native or user function.
func CallFunc(ec *EvalContext, name string, argExprs []ast.Expr) (Value, error) {
	log.TraceContext(ec.Context(), "call_func", slog.String("name", name), slog.Int("args", len(argExprs)))

	cell, ok := Resolve(name, ec.scope)
	if !ok {
		return Value{}, ErrUnboundName.With(attrString("name", name))
	}

	callee := cell.Load().Deref()

	args := make([]Value, len(argExprs))

	for i, e := range argExprs {
		v, err := EvalExpr(ec, e)
		if err != nil {
			return Value{}, err
		}

		args[i] = v
	}

	switch callee.Kind {
	case KindFuncPtr:
		return callee.Native.Call(ec, args)
	case KindFunc:
		return callFunc(ec, callee.Func, args)
	default:
		return Value{}, ErrNotCallable.With(attrString("name", name))
	}
}

// callFunc binds args to fn's parameters in a fresh local scope and runs the
// body.
func callFunc(ec *EvalContext, fn *Func, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return Value{}, ErrArity.With(
			attrString("func", fn.Name),
			attrInt("want", int64(len(fn.Params))),
			attrInt("got", int64(len(args))),
		)
	}

	if ec.maxDepth > 0 {
		*ec.depth++
		defer func() { *ec.depth-- }()

		if *ec.depth > ec.maxDepth {
			return Value{}, ErrRecursionLimit.With(
				attrString("func", fn.Name),
				attrInt("depth", int64(*ec.depth)),
				attrInt("max", int64(ec.maxDepth)),
			)
		}
	}

	local := NewScope()

	for i, p := range fn.Params {
		arg := args[i]

		if arg.ReifiedType() != p.Type {
			return Value{}, ErrParamType.With(
				attrString("func", fn.Name),
				attrString("param", p.Name),
				attrString("want", p.Type),
				attrString("got", arg.ReifiedType()),
			)
		}

		if arg.Kind == KindRef {
			local.Bind(p.Name, arg.Ref)
		} else {
			local.Define(p.Name, arg)
		}
	}

	log.TraceContext(ec.Context(), "func_activate", slog.String("func", fn.Name), slog.Int("params", len(fn.Params)))

	bodyCtx := ec.withScope(local)

	return Exec(bodyCtx, fn.Body, fn.ReturnType)
}
