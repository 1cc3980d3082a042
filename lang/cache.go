package lang

import (
	"sync"

	"github.com/ardnew/ctrlfn/lang/ast"
)

// anonFuncCache memoizes the Func built for each anonymous-function AST
// node, keyed by the node's own pointer identity. A node is re-evaluated
// whenever control flow passes over it again (typically inside a loop
// body); since the parser builds exactly one node per syntactic occurrence,
// pointer identity *is* syntactic identity here, which is the natural
// Go-native reading of the upstream interpreter's content-keyed anonymous
// function cache.
//
// Guarded the same way as GLOBAL: reads take a shared guard, the rare
// insert takes an exclusive one, and no lock is held across a nested
// evaluation.
//
//nolint:gochecknoglobals
var (
	anonFuncCacheMu sync.RWMutex
	anonFuncCache   = map[*ast.AnonFuncExpr]*Func{}
)

func lookupAnonFunc(node *ast.AnonFuncExpr) (*Func, bool) {
	anonFuncCacheMu.RLock()
	defer anonFuncCacheMu.RUnlock()

	f, ok := anonFuncCache[node]

	return f, ok
}

func storeAnonFunc(node *ast.AnonFuncExpr, f *Func) {
	anonFuncCacheMu.Lock()
	defer anonFuncCacheMu.Unlock()

	anonFuncCache[node] = f
}

// ResetAnonFuncCache clears the anonymous-function cache. It exists for
// test isolation between independently-bootstrapped programs.
func ResetAnonFuncCache() {
	anonFuncCacheMu.Lock()
	anonFuncCache = map[*ast.AnonFuncExpr]*Func{}
	anonFuncCacheMu.Unlock()
}
