package vm_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mna/scratchvm/lang/ast"
	"github.com/mna/scratchvm/lang/project"
	"github.com/mna/scratchvm/lang/types"
	"github.com/mna/scratchvm/lang/vm"
)

func newThread(t *testing.T, proj *project.Project) (*vm.Thread, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	th := vm.New(proj)
	th.Stdout = &out
	th.Sleep = func(time.Duration) {}
	th.Now = func() time.Time { return time.Unix(0, 0) }
	return th, &out
}

func oneSprite(name string, procs *ast.Procs) *project.Project {
	proj := project.New(1)
	proj.Add(&project.Sprite{Name: name, Procs: procs})
	return proj
}

// one sprite, hat event_whenflagclicked -> looks_say with a literal ->
// stdout exactly "Hello, world!\n".
func TestScenarioHello(t *testing.T) {
	procs := ast.NewProcs()
	procs.WhenFlagClicked = []ast.Stmt{
		&ast.Builtin{Opcode: "looks_say", Inputs: []ast.KV{
			{Key: "MESSAGE", Value: &ast.Lit{Value: types.Str("Hello, world!")}},
		}},
	}

	th, out := newThread(t, oneSprite("Cat", procs))
	require.NoError(t, th.Run(context.Background()))
	require.Equal(t, "Hello, world!\n", out.String())
}

// Repeat{times=3, body=ChangeVariableBy(x,2)} with x initially unset;
// after run, vars["x"] = Num(6).
func TestScenarioRepeatCounter(t *testing.T) {
	procs := ast.NewProcs()
	procs.WhenFlagClicked = []ast.Stmt{
		&ast.Repeat{
			Times: &ast.Lit{Value: types.Num(3)},
			Body: &ast.ChangeVariableBy{
				VarID: "x",
				Delta: &ast.Lit{Value: types.Num(2)},
			},
		},
	}

	th, _ := newThread(t, oneSprite("Cat", procs))
	require.NoError(t, th.Run(context.Background()))
	require.Equal(t, types.Num(6), th.Var("x"))
}

// AddToList L 10,20,30; ReplaceItemOfList L index=2 item=99;
// DeleteOfList L index="last"; LengthOfList L -> 2; ItemOfList L index=2 ->
// 99.
func TestScenarioListRoundTrip(t *testing.T) {
	procs := ast.NewProcs()
	procs.WhenFlagClicked = []ast.Stmt{
		&ast.Do{Stmts: []ast.Stmt{
			&ast.AddToList{ListID: "L", Item: &ast.Lit{Value: types.Num(10)}},
			&ast.AddToList{ListID: "L", Item: &ast.Lit{Value: types.Num(20)}},
			&ast.AddToList{ListID: "L", Item: &ast.Lit{Value: types.Num(30)}},
			&ast.ReplaceItemOfList{ListID: "L", Index: &ast.Lit{Value: types.Num(2)}, Item: &ast.Lit{Value: types.Num(99)}},
			&ast.DeleteOfList{ListID: "L", Index: &ast.Lit{Value: types.Str("last")}},
		}},
	}

	th, _ := newThread(t, oneSprite("Cat", procs))
	require.NoError(t, th.Run(context.Background()))

	lst := th.List("L")
	require.Len(t, lst, 2)
	require.Equal(t, types.Num(99), lst[1])
}

// custom proc fact(n), recursive via a list accumulator; fact(5) == 120;
// post-call, the proc-arg stack for n is empty.
func TestScenarioRecursionFactorial(t *testing.T) {
	procs := ast.NewProcs()

	gt := &ast.Builtin{Opcode: "operator_gt", Inputs: []ast.KV{
		{Key: "OPERAND1", Value: &ast.ProcArg{Name: "n"}},
		{Key: "OPERAND2", Value: &ast.Lit{Value: types.Num(1)}},
	}}
	nMinus1 := &ast.Builtin{Opcode: "operator_subtract", Inputs: []ast.KV{
		{Key: "NUM1", Value: &ast.ProcArg{Name: "n"}},
		{Key: "NUM2", Value: &ast.Lit{Value: types.Num(1)}},
	}}
	lastOfAcc := &ast.ItemOfList{ListID: "acc", Index: &ast.Lit{Value: types.Str("last")}}
	tmpVal := &ast.Builtin{Opcode: "operator_multiply", Inputs: []ast.KV{
		{Key: "NUM1", Value: &ast.ProcArg{Name: "n"}},
		{Key: "NUM2", Value: lastOfAcc},
	}}

	recurseCase := &ast.Do{Stmts: []ast.Stmt{
		&ast.ProcCall{Proccode: "fact %s", Args: []ast.KV{{Key: "n_id", Value: nMinus1}}},
		&ast.SetVariable{VarID: "tmp", Value: tmpVal},
		&ast.DeleteOfList{ListID: "acc", Index: &ast.Lit{Value: types.Str("last")}},
		&ast.AddToList{ListID: "acc", Item: &ast.GetVar{VarID: "tmp"}},
	}}
	baseCase := &ast.AddToList{ListID: "acc", Item: &ast.Lit{Value: types.Num(1)}}

	procs.Custom["fact %s"] = &ast.Custom{
		ArgNamesByID: map[string]string{"n_id": "n"},
		Body:         &ast.IfElse{Cond: gt, Then: recurseCase, Else: baseCase},
	}
	procs.WhenFlagClicked = []ast.Stmt{
		&ast.ProcCall{Proccode: "fact %s", Args: []ast.KV{{Key: "n_id", Value: &ast.Lit{Value: types.Num(5)}}}},
	}

	th, _ := newThread(t, oneSprite("Cat", procs))
	require.NoError(t, th.Run(context.Background()))

	lst := th.List("acc")
	require.Len(t, lst, 1)
	require.Equal(t, types.Num(120), lst[0])
	require.Equal(t, 0, th.ProcArgDepth("n"))
}

// sprite A broadcasts "go"; sprites B and C each have a receiver that
// appends their name to a list; the list order matches sprite enumeration
// order, and askandwait after broadcastandwait runs only once both
// receivers finish.
func TestScenarioBroadcastOrder(t *testing.T) {
	bProcs := ast.NewProcs()
	bProcs.Broadcasts["go"] = []ast.Stmt{
		&ast.AddToList{ListID: "order", Item: &ast.Lit{Value: types.Str("B")}},
	}
	cProcs := ast.NewProcs()
	cProcs.Broadcasts["go"] = []ast.Stmt{
		&ast.AddToList{ListID: "order", Item: &ast.Lit{Value: types.Str("C")}},
	}
	aProcs := ast.NewProcs()
	aProcs.WhenFlagClicked = []ast.Stmt{
		&ast.Do{Stmts: []ast.Stmt{
			&ast.Builtin{Opcode: "event_broadcastandwait", Inputs: []ast.KV{
				{Key: "BROADCAST_INPUT", Value: &ast.Lit{Value: types.Str("go")}},
			}},
			&ast.Builtin{Opcode: "sensing_askandwait", Inputs: []ast.KV{
				{Key: "QUESTION", Value: &ast.Lit{Value: types.Str("done?")}},
			}},
		}},
	}

	proj := project.New(3)
	proj.Add(&project.Sprite{Name: "A", Procs: aProcs})
	proj.Add(&project.Sprite{Name: "B", Procs: bProcs})
	proj.Add(&project.Sprite{Name: "C", Procs: cProcs})

	th, _ := newThread(t, proj)
	th.Stdin = strings.NewReader("yes\n")
	require.NoError(t, th.Run(context.Background()))

	order := th.List("order")
	require.Len(t, order, 2)
	require.Equal(t, types.Str("B"), order[0])
	require.Equal(t, types.Str("C"), order[1])
	require.Equal(t, "yes", th.Answer())
}

// inside a Forever, after one iteration, StopAll executes: Run returns
// success, no subsequent hats run.
func TestScenarioStopAll(t *testing.T) {
	procs := ast.NewProcs()
	procs.WhenFlagClicked = []ast.Stmt{
		&ast.Forever{Body: &ast.Do{Stmts: []ast.Stmt{
			&ast.ChangeVariableBy{VarID: "x", Delta: &ast.Lit{Value: types.Num(1)}},
			&ast.StopAll{},
		}}},
		&ast.SetVariable{VarID: "ran_second", Value: &ast.Lit{Value: types.True}},
	}

	th, _ := newThread(t, oneSprite("Cat", procs))
	require.NoError(t, th.Run(context.Background()))
	require.Equal(t, types.Num(1), th.Var("x"))
	require.Equal(t, types.Default, th.Var("ran_second"))
}

// Two sequential askandwait reads must each consume one line: the thread
// keeps a single buffered reader over stdin, so the first read's buffering
// doesn't swallow the second line.
func TestAskAndWaitSequentialReads(t *testing.T) {
	ask := func(prompt string) ast.Stmt {
		return &ast.Builtin{Opcode: "sensing_askandwait", Inputs: []ast.KV{
			{Key: "QUESTION", Value: &ast.Lit{Value: types.Str(prompt)}},
		}}
	}
	procs := ast.NewProcs()
	procs.WhenFlagClicked = []ast.Stmt{
		&ast.Do{Stmts: []ast.Stmt{
			ask("first?"),
			&ast.AddToList{ListID: "answers", Item: &ast.Builtin{Opcode: "sensing_answer"}},
			ask("second?"),
			&ast.AddToList{ListID: "answers", Item: &ast.Builtin{Opcode: "sensing_answer"}},
		}},
	}

	th, _ := newThread(t, oneSprite("Cat", procs))
	th.Stdin = strings.NewReader("one\ntwo\n")
	require.NoError(t, th.Run(context.Background()))

	answers := th.List("answers")
	require.Len(t, answers, 2)
	require.Equal(t, types.Str("one"), answers[0])
	require.Equal(t, types.Str("two"), answers[1])
}

// An empty operand slot on operator_and/operator_or evaluates to the
// default value (falsy) rather than erroring.
func TestBooleanOperatorsMissingOperand(t *testing.T) {
	procs := ast.NewProcs()
	procs.WhenFlagClicked = []ast.Stmt{
		&ast.Do{Stmts: []ast.Stmt{
			&ast.SetVariable{VarID: "or", Value: &ast.Builtin{Opcode: "operator_or", Inputs: []ast.KV{
				{Key: "OPERAND1", Value: &ast.Lit{Value: types.True}},
			}}},
			&ast.SetVariable{VarID: "and", Value: &ast.Builtin{Opcode: "operator_and", Inputs: nil}},
		}},
	}

	th, _ := newThread(t, oneSprite("Cat", procs))
	require.NoError(t, th.Run(context.Background()))
	require.Equal(t, types.True, th.Var("or"))
	require.Equal(t, types.False, th.Var("and"))
}

// Property 3: after a ProcCall that raises StopThisScript mid-body, the
// argument-name stack depth is restored.
func TestProcArgStackRestoredAfterStopThisScript(t *testing.T) {
	procs := ast.NewProcs()
	procs.Custom["p %s"] = &ast.Custom{
		ArgNamesByID: map[string]string{"a_id": "a"},
		Body: &ast.Do{Stmts: []ast.Stmt{
			&ast.StopThisScript{},
			&ast.SetVariable{VarID: "unreached", Value: &ast.Lit{Value: types.True}},
		}},
	}
	procs.WhenFlagClicked = []ast.Stmt{
		&ast.ProcCall{Proccode: "p %s", Args: []ast.KV{{Key: "a_id", Value: &ast.Lit{Value: types.Num(1)}}}},
	}

	th, _ := newThread(t, oneSprite("Cat", procs))
	require.NoError(t, th.Run(context.Background()))
	require.Equal(t, 0, th.ProcArgDepth("a"))
	require.Equal(t, types.Default, th.Var("unreached"))
}
