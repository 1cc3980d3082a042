// Package lang implements the tree-walking evaluator: the value domain,
// environment/aliasing model, expression evaluator, function-call
// protocol, built-in control functions, and program bootstrap.
package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/ctrlfn/lang/ast"
	"github.com/ardnew/ctrlfn/lang/parser"
	"github.com/ardnew/ctrlfn/log"
)

// Program is a parsed, not-yet-bootstrapped source file.
type Program struct {
	ast *ast.Program
}

// Compile parses source into a Program, wrapping any syntax error with
// source-position context.
func Compile(source []byte) (*Program, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		if perr, ok := err.(*parser.Error); ok {
			return nil, NewParseError(perr, string(source))
		}

		return nil, err
	}

	return &Program{ast: tree}, nil
}

func convertParams(decls []ast.ParamDecl) []Param {
	params := make([]Param, len(decls))
	for i, d := range decls {
		params[i] = Param{Name: d.Name, Type: d.Type}
	}

	return params
}

// Run bootstraps and executes the program: registers built-ins, hoists
// top-level function definitions into GLOBAL, resolves main, and runs it
// with an empty local scope.
func (p *Program) Run(ctx context.Context, stdout io.Writer, stdin io.Reader) (Value, error) {
	log.DebugContext(ctx, "bootstrap reset global scope")
	ResetGlobal()
	ResetAnonFuncCache()

	log.DebugContext(ctx, "bootstrap register builtins")
	registerBuiltins(Global())

	hoisted := 0

	for _, fn := range p.ast.Funcs {
		if !fn.HasBody {
			continue
		}

		Global().Define(fn.Name, VFunc(&Func{
			Name:       fn.Name,
			Params:     convertParams(fn.Params),
			ReturnType: fn.ReturnType,
			Body:       fn.Body,
		}))

		hoisted++
	}

	log.DebugContext(ctx, "bootstrap hoisted top-level functions", slog.Int("count", hoisted))

	cell, ok := Global().Lookup("main")
	if !ok {
		return Value{}, ErrNoMain
	}

	mainVal := cell.Load()
	if mainVal.Kind != KindFunc {
		return Value{}, ErrMainNotFunc
	}

	log.DebugContext(ctx, "bootstrap entering main")

	ec := NewEvalContext(ctx, NewScope(), stdout, stdin)

	return callFunc(ec, mainVal.Func, nil)
}
