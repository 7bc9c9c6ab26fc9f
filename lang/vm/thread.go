// Package vm implements the evaluator (C5): a tree-walking interpreter over
// the lowered ast.Stmt/ast.Expr trees, reproducing Scratch's variable,
// list, procedure-argument, and broadcast-dispatch semantics.
package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dolthub/swiss"

	"github.com/mna/scratchvm/lang/ast"
	"github.com/mna/scratchvm/lang/project"
	"github.com/mna/scratchvm/lang/types"
)

// Thread is the evaluator's runtime state: variables, lists, the
// procedure-argument stacks, the answer buffer and timer origin, plus the
// host I/O abstractions. Stdout/Stderr/Stdin are swappable fields that
// default to the os package's when nil; a context.Context provides
// cooperative cancellation, and MaxStatements a step counter ceiling.
type Thread struct {
	// Stdout, Stderr and Stdin default to os.Stdout/os.Stderr/os.Stdin when
	// nil.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxStatements caps the number of statements the thread will execute
	// before it cancels itself, a safety valve against a malformed Forever
	// loop. <= 0 means unbounded.
	MaxStatements int

	// Now and Sleep back sensing_timer and control_wait respectively.
	// Defaulting to time.Now/time.Sleep, they're swappable so tests never
	// race on the wall clock or actually block.
	Now   func() time.Time
	Sleep func(time.Duration)

	project *project.Project

	vars  *swiss.Map[string, types.Value]
	lists *swiss.Map[string, []types.Value]

	// procArgs is a stack per parameter display name, not a call frame:
	// argument reporters resolve purely by display name, and the per-name
	// stacks support recursion. Kept as a plain Go map rather than the
	// swiss-table used for vars/lists: the key set is the small, fixed set
	// of a project's procedure parameter names, not a runtime-growable hot
	// path.
	procArgs map[string][]types.Value

	answer      string
	timerOrigin time.Time

	ctx    context.Context
	steps  uint64
	stdout io.Writer
	stderr io.Writer

	// stdin is wrapped in a single buffered reader for the run: creating a
	// new one per sensing_askandwait would discard whatever the previous one
	// had read ahead.
	stdin *bufio.Reader
}

// New returns a Thread ready to run proj.
func New(proj *project.Project) *Thread {
	return &Thread{
		project:  proj,
		vars:     swiss.NewMap[string, types.Value](16),
		lists:    swiss.NewMap[string, []types.Value](16),
		procArgs: make(map[string][]types.Value),
	}
}

func (th *Thread) init(ctx context.Context) {
	if th.Stdout != nil {
		th.stdout = th.Stdout
	} else {
		th.stdout = os.Stdout
	}
	if th.Stderr != nil {
		th.stderr = th.Stderr
	} else {
		th.stderr = os.Stderr
	}
	if th.Stdin != nil {
		th.stdin = bufio.NewReader(th.Stdin)
	} else {
		th.stdin = bufio.NewReader(os.Stdin)
	}
	if th.Now == nil {
		th.Now = time.Now
	}
	if th.Sleep == nil {
		th.Sleep = time.Sleep
	}
	th.ctx = ctx
	th.timerOrigin = th.Now()
}

// Run starts the project: every sprite's when_flag_clicked hats run, in
// sprite order then hat order. StopAll unwinds to here and ends the run
// successfully; any other error aborts it.
func (th *Thread) Run(ctx context.Context) error {
	th.init(ctx)

	for _, sprite := range th.project.Sprites() {
		for _, hat := range sprite.Procs.WhenFlagClicked {
			if err := th.runHat(sprite, hat); err != nil {
				var stopAll stopAllSignal
				if errors.As(err, &stopAll) {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// runHat executes a top-level hat body, acting as a procedure boundary: it
// swallows StopThisScript and lets StopAll (and real errors) propagate.
func (th *Thread) runHat(sprite *project.Sprite, body ast.Stmt) error {
	err := th.runStmt(sprite, body)
	var stopThis stopThisScriptSignal
	if errors.As(err, &stopThis) {
		return nil
	}
	return err
}

// checkStep enforces MaxStatements, if set.
func (th *Thread) checkStep() error {
	th.steps++
	if th.MaxStatements > 0 && th.steps > uint64(th.MaxStatements) {
		return fmt.Errorf("vm: exceeded maximum statement count (%d)", th.MaxStatements)
	}
	if err := th.ctx.Err(); err != nil {
		return fmt.Errorf("vm: cancelled: %w", err)
	}
	return nil
}

// Var returns a project variable's current value, or the default if unset.
func (th *Thread) Var(id string) types.Value {
	if v, ok := th.vars.Get(id); ok {
		return v
	}
	return types.Default
}

// List returns a project list's current contents, or nil if it doesn't
// exist.
func (th *Thread) List(id string) []types.Value {
	lst, _ := th.lists.Get(id)
	return lst
}

// ProcArgDepth returns the current stack depth for a parameter name, used
// to assert the stack-discipline invariant in tests.
func (th *Thread) ProcArgDepth(name string) int {
	return len(th.procArgs[name])
}

// Answer returns the last value captured by sensing_askandwait.
func (th *Thread) Answer() string { return th.answer }

func toDuration(seconds float64) time.Duration {
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds * float64(time.Second))
}
