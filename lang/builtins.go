package lang

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/ctrlfn/log"
)

// ErrInvalidBranch is fatal: an if/for/while branch or body argument that
// resolved to something other than a CallThunk, which never happens for a
// well-formed program.
var ErrInvalidBranch = NewError("branch is not a callable thunk")

// invokeThunk evaluates a CallThunk's stored argument expressions against
// ec's current scope and invokes the referenced callable.
func invokeThunk(ec *EvalContext, v Value) (Value, error) {
	v = v.Deref()
	if v.Kind != KindCallThunk {
		return Value{}, ErrInvalidBranch
	}

	log.TraceContext(ec.Context(), "invoke_thunk", slog.String("name", v.ThunkName))

	return CallFunc(ec, v.ThunkName, v.ThunkArgs)
}

// registerBuiltins installs print, if, for, while, and input as FuncPtr
// values in scope.
func registerBuiltins(scope *Scope) {
	install := func(name string, fn func(*EvalContext, []Value) (Value, error)) {
		scope.Define(name, VFuncPtr(&NativeFunc{Name: name, Call: fn}))
		log.Debug("bootstrap install builtin", slog.String("name", name))
	}

	install("print", builtinPrint)
	install("input", builtinInput)
	install("if", builtinIf)
	install("for", builtinFor)
	install("while", builtinWhile)
}

// builtinPrint prints each argument separated by a space, terminating with
// a newline; a CondThunk argument prints its evaluated boolean.
func builtinPrint(ec *EvalContext, args []Value) (Value, error) {
	parts := make([]string, len(args))

	for i, a := range args {
		a = a.Deref()

		if a.Kind == KindCondThunk {
			b, err := evalCondThunk(ec, a)
			if err != nil {
				return Value{}, err
			}

			parts[i] = b.String()

			continue
		}

		parts[i] = a.String()
	}

	fmt.Fprintln(ec.stdout, strings.Join(parts, " "))

	return VVoid(), nil
}

// builtinInput reads one trimmed line from standard input.
func builtinInput(ec *EvalContext, _ []Value) (Value, error) {
	line, err := ec.stdin.ReadString('\n')
	if err != nil && line == "" {
		return Value{}, ErrInput.Wrap(err)
	}

	return VString(strings.TrimRight(line, "\r\n")), nil
}

// builtinIf implements if(cond, then[, else]).
func builtinIf(ec *EvalContext, args []Value) (Value, error) {
	cond := args[0].Deref()

	var (
		b  bool
		ok bool
	)

	switch cond.Kind {
	case KindCondThunk:
		v, err := evalCondThunk(ec, cond)
		if err != nil {
			return Value{}, err
		}

		b, ok = v.Bool, true
	case KindBool:
		b, ok = cond.Bool, true
	default:
		// Control-flow misuse: cond is neither CondThunk nor Bool.
		return VVoid(), nil
	}

	if !ok {
		return VVoid(), nil
	}

	var branch Value

	switch {
	case b && len(args) > 1:
		branch = args[1]
	case !b && len(args) > 2:
		branch = args[2]
	default:
		// Two-argument if with a false condition, or a missing branch, is
		// permitted and yields Void.
		return VVoid(), nil
	}

	return invokeThunk(ec, branch)
}

// builtinFor implements for(source, body) over a Range or Counter.
func builtinFor(ec *EvalContext, args []Value) (Value, error) {
	source := args[0].Deref()
	body := args[1]

	switch source.Kind {
	case KindRange:
		for i := source.RangeStart; i < source.RangeEnd; i++ {
			if _, err := invokeThunk(ec, body); err != nil {
				return Value{}, err
			}
		}

	case KindCounter:
		cell, ok := Resolve(source.CounterName, ec.scope)
		if !ok {
			return Value{}, ErrUnboundName.With(attrString("name", source.CounterName))
		}

		for i := source.RangeStart; i < source.RangeEnd; i++ {
			cell.Store(VInt(i))

			if _, err := invokeThunk(ec, body); err != nil {
				return Value{}, err
			}
		}

	default:
		// Control-flow misuse: source is neither Range nor Counter.
		return VVoid(), nil
	}

	return VVoid(), nil
}

// builtinWhile implements while(cond, body).
func builtinWhile(ec *EvalContext, args []Value) (Value, error) {
	cond := args[0].Deref()
	body := args[1]

	if cond.Kind != KindCondThunk {
		return VVoid(), nil
	}

	for {
		b, err := evalCondThunk(ec, cond)
		if err != nil {
			return Value{}, err
		}

		if !b.Bool {
			break
		}

		if _, err := invokeThunk(ec, body); err != nil {
			return Value{}, err
		}
	}

	return VVoid(), nil
}
