package vm

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mna/scratchvm/lang/ast"
	"github.com/mna/scratchvm/lang/project"
	"github.com/mna/scratchvm/lang/types"
)

// runStmt executes one statement. Do, If/IfElse and the loop forms dispatch
// recursively; ProcCall and Builtin delegate to callProc and
// runBuiltinStmt.
func (th *Thread) runStmt(sprite *project.Sprite, s ast.Stmt) error {
	if err := th.checkStep(); err != nil {
		return err
	}

	switch st := s.(type) {
	case *ast.Do:
		for _, child := range st.Stmts {
			if err := th.runStmt(sprite, child); err != nil {
				return err
			}
		}
		return nil

	case *ast.If:
		cond, err := th.evalExpr(sprite, st.Cond)
		if err != nil {
			return err
		}
		if cond.Truth() {
			return th.runStmt(sprite, st.Then)
		}
		return nil

	case *ast.IfElse:
		cond, err := th.evalExpr(sprite, st.Cond)
		if err != nil {
			return err
		}
		if cond.Truth() {
			return th.runStmt(sprite, st.Then)
		}
		return th.runStmt(sprite, st.Else)

	case *ast.Repeat:
		timesV, err := th.evalExpr(sprite, st.Times)
		if err != nil {
			return err
		}
		f := math.Round(float64(types.ToNum(timesV)))
		if math.IsInf(f, 1) {
			for {
				if err := th.runStmt(sprite, st.Body); err != nil {
					return err
				}
			}
		}
		for i, n := 0, loopCount(f); i < n; i++ {
			if err := th.runStmt(sprite, st.Body); err != nil {
				return err
			}
		}
		return nil

	case *ast.Forever:
		for {
			if err := th.runStmt(sprite, st.Body); err != nil {
				return err
			}
		}

	case *ast.Until:
		for {
			cond, err := th.evalExpr(sprite, st.Cond)
			if err != nil {
				return err
			}
			if cond.Truth() {
				return nil
			}
			if err := th.runStmt(sprite, st.Body); err != nil {
				return err
			}
		}

	case *ast.While:
		for {
			cond, err := th.evalExpr(sprite, st.Cond)
			if err != nil {
				return err
			}
			if !cond.Truth() {
				return nil
			}
			if err := th.runStmt(sprite, st.Body); err != nil {
				return err
			}
		}

	case *ast.For:
		timesV, err := th.evalExpr(sprite, st.Times)
		if err != nil {
			return err
		}
		n := loopCount(math.Ceil(float64(types.ToNum(timesV))))
		for i := 1; i <= n; i++ {
			th.vars.Put(st.CounterID, types.Num(i))
			if err := th.runStmt(sprite, st.Body); err != nil {
				return err
			}
		}
		return nil

	case *ast.SetVariable:
		v, err := th.evalExpr(sprite, st.Value)
		if err != nil {
			return err
		}
		th.vars.Put(st.VarID, v)
		return nil

	case *ast.ChangeVariableBy:
		prev, ok := th.vars.Get(st.VarID)
		if !ok {
			prev = types.Default
		}
		deltaV, err := th.evalExpr(sprite, st.Delta)
		if err != nil {
			return err
		}
		th.vars.Put(st.VarID, types.Num(types.ToNum(prev)+types.ToNum(deltaV)))
		return nil

	case *ast.DeleteAllOfList:
		lst, _ := th.lists.Get(st.ListID)
		th.lists.Put(st.ListID, lst[:0])
		return nil

	case *ast.AddToList:
		item, err := th.evalExpr(sprite, st.Item)
		if err != nil {
			return err
		}
		lst, _ := th.lists.Get(st.ListID)
		th.lists.Put(st.ListID, append(lst, item))
		return nil

	case *ast.DeleteOfList:
		lst, ok := th.lists.Get(st.ListID)
		if !ok {
			return nil
		}
		idxV, err := th.evalExpr(sprite, st.Index)
		if err != nil {
			return err
		}
		i, ok := resolveListIndex(idxV, len(lst))
		if !ok {
			return nil
		}
		th.lists.Put(st.ListID, append(lst[:i], lst[i+1:]...))
		return nil

	case *ast.ReplaceItemOfList:
		lst, ok := th.lists.Get(st.ListID)
		if !ok {
			return nil
		}
		idxV, err := th.evalExpr(sprite, st.Index)
		if err != nil {
			return err
		}
		i, ok := resolveListIndex(idxV, len(lst))
		if !ok {
			return nil
		}
		item, err := th.evalExpr(sprite, st.Item)
		if err != nil {
			return err
		}
		lst[i] = item
		th.lists.Put(st.ListID, lst)
		return nil

	case *ast.StopAll:
		return stopAllSignal{}

	case *ast.StopThisScript:
		return stopThisScriptSignal{}

	case *ast.ProcCall:
		return th.callProc(sprite, st)

	case *ast.Builtin:
		return th.runBuiltinStmt(sprite, st)

	default:
		return fmt.Errorf("vm: unknown statement type %T", s)
	}
}

// reserved built-in proccodes that short-circuit straight to host I/O
// instead of looking up a custom procedure.
const (
	proccodePutchar   = "putchar %s"
	proccodePrint     = "print %s"
	proccodePrintln   = "println %s"
	proccodeTermClear = "term-clear"
)

// callProc implements procedure-call discipline: reserved proccodes dispatch
// to host I/O directly; otherwise each argument is pushed onto its
// parameter's name-keyed stack before the body runs, and exactly one entry
// per pushed parameter is popped afterward, even when the body raises
// StopThisScript. Argument-stack depth is a strict invariant.
func (th *Thread) callProc(sprite *project.Sprite, call *ast.ProcCall) error {
	switch call.Proccode {
	case proccodePutchar, proccodePrint:
		v, err := th.evalSoleArg(sprite, call)
		if err != nil {
			return err
		}
		fmt.Fprint(th.stdout, v.String())
		flush(th.stdout)
		return nil
	case proccodePrintln:
		v, err := th.evalSoleArg(sprite, call)
		if err != nil {
			return err
		}
		fmt.Fprintln(th.stdout, v.String())
		return nil
	case proccodeTermClear:
		fmt.Fprint(th.stdout, "\x1b[2J\x1b[H")
		flush(th.stdout)
		return nil
	}

	custom, ok := sprite.Procs.Custom[call.Proccode]
	if !ok {
		return fmt.Errorf("vm: unknown procedure %q", call.Proccode)
	}

	// the deferred pop runs even when an argument expression errors mid-loop,
	// so partially-pushed stacks are still restored on every exit path, not
	// just a completed call.
	pushed := make([]string, 0, len(call.Args))
	defer func() {
		for _, name := range pushed {
			stack := th.procArgs[name]
			th.procArgs[name] = stack[:len(stack)-1]
		}
	}()
	for _, kv := range call.Args {
		name, ok := custom.ArgNamesByID[kv.Key]
		if !ok {
			return fmt.Errorf("vm: proccode %q: unknown argument id %q", call.Proccode, kv.Key)
		}
		v, err := th.evalExpr(sprite, kv.Value)
		if err != nil {
			return err
		}
		th.procArgs[name] = append(th.procArgs[name], v)
		pushed = append(pushed, name)
	}

	err := th.runStmt(sprite, custom.Body)
	var stopThis stopThisScriptSignal
	if errors.As(err, &stopThis) {
		return nil
	}
	return err
}

func (th *Thread) evalSoleArg(sprite *project.Sprite, call *ast.ProcCall) (types.Value, error) {
	if len(call.Args) == 0 {
		return nil, fmt.Errorf("vm: proccode %q: expected one argument", call.Proccode)
	}
	return th.evalExpr(sprite, call.Args[0].Value)
}

// loopCount converts a non-negative, finite iteration count to an int,
// clamping values too large to represent instead of letting the conversion
// wrap.
func loopCount(f float64) int {
	if f <= 0 {
		return 0
	}
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(f)
}

type flusher interface{ Flush() error }

func flush(w io.Writer) {
	if f, ok := w.(flusher); ok {
		_ = f.Flush()
	}
}
