// Package project implements the sprite/project container (C4): it bundles
// each target's lowered scripts with its mutable motion state, and fans out
// across targets in the order project.json lists them.
package project

import "github.com/mna/scratchvm/lang/ast"

// Sprite is one target's lowered scripts plus its mutable motion state. X
// and Y are the only per-sprite mutable fields; they're plain float64s
// rather than atomics because the evaluator is single-threaded.
type Sprite struct {
	Name  string
	Procs *ast.Procs
	X, Y  float64
}
