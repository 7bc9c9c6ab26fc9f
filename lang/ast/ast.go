// Package ast defines the typed abstract syntax tree that the block-graph
// lowerer produces and the evaluator runs. Unlike a textual-language AST,
// these nodes carry no source position: a Scratch block map has no text to
// point back into, only a graph of block ids.
package ast

// Expr is implemented by every expression node.
type Expr interface {
	expr()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmt()
}

// KV is one entry of an ordered name→expression mapping. The lowerer builds
// ProcCall.Args in the call's argumentids order and Builtin.Inputs in sorted
// key order, and that order must survive in the AST even though Go maps
// don't preserve it, so KV slices stand in for a map here.
type KV struct {
	Key   string
	Value Expr
}

// Lookup returns the expression associated with key, and whether it was
// found.
func Lookup(kvs []KV, key string) (Expr, bool) {
	for _, kv := range kvs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}
