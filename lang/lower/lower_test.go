package lower_test

import (
	"testing"

	json "github.com/mcvoid/json"
	"github.com/stretchr/testify/require"

	"github.com/mna/scratchvm/lang/ast"
	"github.com/mna/scratchvm/lang/lower"
	"github.com/mna/scratchvm/lang/types"
)

func parseBlocks(t *testing.T, src string) map[string]*json.Value {
	t.Helper()
	v, err := json.ParseString(src)
	require.NoError(t, err)
	m, err := v.AsObject()
	require.NoError(t, err)
	return m
}

func TestLowerWhenFlagClickedHello(t *testing.T) {
	blocks := parseBlocks(t, `{
		"hat": {"opcode": "event_whenflagclicked", "next": "say"},
		"say": {"opcode": "looks_say", "next": null, "inputs": {
			"MESSAGE": [1, [10, "Hello, world!"]]
		}}
	}`)

	procs, err := lower.Lower(blocks)
	require.NoError(t, err)
	require.Len(t, procs.WhenFlagClicked, 1)

	builtin, ok := procs.WhenFlagClicked[0].(*ast.Builtin)
	require.True(t, ok)
	require.Equal(t, "looks_say", builtin.Opcode)

	msg, ok := ast.Lookup(builtin.Inputs, "MESSAGE")
	require.True(t, ok)
	lit, ok := msg.(*ast.Lit)
	require.True(t, ok)
	require.Equal(t, types.Str("Hello, world!"), lit.Value)
}

// TestChainFlattening: a chain of k+1 next-linked blocks lowers to a Do of
// exactly k+1 statements, in source order.
func TestChainFlattening(t *testing.T) {
	blocks := parseBlocks(t, `{
		"hat":  {"opcode": "event_whenflagclicked", "next": "a"},
		"a": {"opcode": "control_stop", "next": "b", "fields": {"STOP_OPTION": ["this script", null]}},
		"b": {"opcode": "data_deletealloflist", "next": "c", "fields": {"LIST": ["L", "list1"]}},
		"c": {"opcode": "data_deletealloflist", "next": null, "fields": {"LIST": ["L", "list1"]}}
	}`)

	procs, err := lower.Lower(blocks)
	require.NoError(t, err)
	require.Len(t, procs.WhenFlagClicked, 1)

	do, ok := procs.WhenFlagClicked[0].(*ast.Do)
	require.True(t, ok)
	require.Len(t, do.Stmts, 3)
	require.IsType(t, &ast.StopThisScript{}, do.Stmts[0])
	require.IsType(t, &ast.DeleteAllOfList{}, do.Stmts[1])
	require.IsType(t, &ast.DeleteAllOfList{}, do.Stmts[2])
}

// TestSubstackDefaulting: a missing SUBSTACK lowers to an empty Do, not an
// error.
func TestSubstackDefaulting(t *testing.T) {
	blocks := parseBlocks(t, `{
		"hat": {"opcode": "event_whenflagclicked", "next": "if"},
		"if":  {"opcode": "control_if", "next": null, "inputs": {
			"CONDITION": [2, [10, "true"]]
		}}
	}`)

	procs, err := lower.Lower(blocks)
	require.NoError(t, err)
	require.Len(t, procs.WhenFlagClicked, 1)

	ifStmt, ok := procs.WhenFlagClicked[0].(*ast.If)
	require.True(t, ok)
	do, ok := ifStmt.Then.(*ast.Do)
	require.True(t, ok)
	require.Empty(t, do.Stmts)
}

func TestLowerControlStopUnknownOption(t *testing.T) {
	blocks := parseBlocks(t, `{
		"hat": {"opcode": "event_whenflagclicked", "next": "stop"},
		"stop": {"opcode": "control_stop", "next": null, "fields": {"STOP_OPTION": ["other scripts in sprite", null]}}
	}`)

	_, err := lower.Lower(blocks)
	require.Error(t, err)
}

func TestLowerProcedureDefinitionAndCall(t *testing.T) {
	blocks := parseBlocks(t, `{
		"def": {"opcode": "procedures_definition", "next": "body", "inputs": {
			"custom_block": [1, "proto"]
		}},
		"proto": {"opcode": "procedures_prototype", "next": null, "mutation": {
			"proccode": "greet %s",
			"argumentids": "[\"arg1\"]",
			"argumentnames": "[\"name\"]"
		}},
		"body": {"opcode": "looks_say", "next": null, "inputs": {
			"MESSAGE": [1, "arg1ref"]
		}},
		"arg1ref": {"opcode": "argument_reporter_string_number", "next": null, "fields": {
			"VALUE": ["name", null]
		}},
		"hat": {"opcode": "event_whenflagclicked", "next": "call"},
		"call": {"opcode": "procedures_call", "next": null, "mutation": {
			"proccode": "greet %s",
			"argumentids": "[\"arg1\"]"
		}, "inputs": {
			"arg1": [1, [10, "hi"]]
		}}
	}`)

	procs, err := lower.Lower(blocks)
	require.NoError(t, err)

	custom, ok := procs.Custom["greet %s"]
	require.True(t, ok)
	require.Equal(t, map[string]string{"arg1": "name"}, custom.ArgNamesByID)
	say, ok := custom.Body.(*ast.Builtin)
	require.True(t, ok)
	msg, ok := ast.Lookup(say.Inputs, "MESSAGE")
	require.True(t, ok)
	require.IsType(t, &ast.ProcArg{}, msg)
	require.Equal(t, "name", msg.(*ast.ProcArg).Name)

	require.Len(t, procs.WhenFlagClicked, 1)
	call, ok := procs.WhenFlagClicked[0].(*ast.ProcCall)
	require.True(t, ok)
	require.Equal(t, "greet %s", call.Proccode)
	require.Len(t, call.Args, 1)
	require.Equal(t, "arg1", call.Args[0].Key)
	lit, ok := call.Args[0].Value.(*ast.Lit)
	require.True(t, ok)
	require.Equal(t, types.Str("hi"), lit.Value)
}

func TestLowerBroadcastReceived(t *testing.T) {
	blocks := parseBlocks(t, `{
		"hat": {"opcode": "event_whenbroadcastreceived", "next": "stop", "fields": {
			"BROADCAST_OPTION": ["go", "broadcast1"]
		}},
		"stop": {"opcode": "control_stop", "next": null, "fields": {"STOP_OPTION": ["all", null]}}
	}`)

	procs, err := lower.Lower(blocks)
	require.NoError(t, err)
	require.Len(t, procs.Broadcasts["go"], 1)
	require.IsType(t, &ast.StopAll{}, procs.Broadcasts["go"][0])
}
