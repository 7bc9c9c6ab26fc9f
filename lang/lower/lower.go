// Package lower implements the block-graph lowerer (C3): it walks a flat,
// JSON-decoded block map and produces the typed ast.Stmt/ast.Expr trees the
// evaluator runs.
package lower

import (
	"fmt"
	"sort"

	json "github.com/mcvoid/json"

	"github.com/mna/scratchvm/lang/ast"
	"github.com/mna/scratchvm/lang/types"
)

const (
	opProceduresDefinition   = "procedures_definition"
	opWhenFlagClicked        = "event_whenflagclicked"
	opWhenBroadcastReceived  = "event_whenbroadcastreceived"
	opProceduresCall         = "procedures_call"
	opArgumentReporterStrNum = "argument_reporter_string_number"
	opDataItemOfList         = "data_itemoflist"
	opDataLengthOfList       = "data_lengthoflist"
	opOperatorMathop         = "operator_mathop"
	opControlIf              = "control_if"
	opControlIfElse          = "control_if_else"
	opControlRepeat          = "control_repeat"
	opControlForever         = "control_forever"
	opControlRepeatUntil     = "control_repeat_until"
	opControlWhile           = "control_while"
	opControlForEach         = "control_for_each"
	opControlStop            = "control_stop"
	opDataDeleteAllOfList    = "data_deletealloflist"
	opDataDeleteOfList       = "data_deleteoflist"
	opDataAddToList          = "data_addtolist"
	opDataReplaceItemOfList  = "data_replaceitemoflist"
	opDataSetVariableTo      = "data_setvariableto"
	opDataChangeVariableBy   = "data_changevariableby"
)

var mathOps = map[string]ast.MathOp{
	"abs": ast.MathAbs, "floor": ast.MathFloor, "ceiling": ast.MathCeiling,
	"sqrt": ast.MathSqrt, "sin": ast.MathSin, "cos": ast.MathCos, "tan": ast.MathTan,
	"asin": ast.MathAsin, "acos": ast.MathAcos, "atan": ast.MathAtan,
	"ln": ast.MathLn, "log": ast.MathLog, "e ^": ast.MathEToX, "10 ^": ast.MathTenToX,
}

// lowerer holds the per-target block map and accumulates the Procs bundle
// being built.
type lowerer struct {
	blocks blockMap
	procs  *ast.Procs
}

// Lower walks blocks (a target's flat JSON block map, already decoded by
// github.com/mcvoid/json) and returns the Procs bundle for that target.
func Lower(blocks map[string]*json.Value) (*ast.Procs, error) {
	l := &lowerer{blocks: blockMap(blocks), procs: ast.NewProcs()}

	ids := make([]string, 0, len(blocks))
	for id := range blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		b := l.blocks[id]
		opcode, err := opcodeOf(b)
		if err != nil {
			return nil, err
		}
		switch opcode {
		case opProceduresDefinition:
			if err := l.lowerProcedureDefinition(b); err != nil {
				return nil, err
			}
		case opWhenFlagClicked:
			if err := l.lowerHatBody(b, func(s ast.Stmt) { l.procs.WhenFlagClicked = append(l.procs.WhenFlagClicked, s) }); err != nil {
				return nil, err
			}
		case opWhenBroadcastReceived:
			name, err := fieldValue(b, "BROADCAST_OPTION")
			if err != nil {
				return nil, err
			}
			if err := l.lowerHatBody(b, func(s ast.Stmt) {
				l.procs.Broadcasts[name] = append(l.procs.Broadcasts[name], s)
			}); err != nil {
				return nil, err
			}
		}
	}
	return l.procs, nil
}

// lowerHatBody lowers the statement chain starting at a hat block's "next"
// and hands the result to append. A hat with no next contributes nothing.
func (l *lowerer) lowerHatBody(hat *json.Value, append func(ast.Stmt)) error {
	next, ok := nextOf(hat)
	if !ok {
		return nil
	}
	body, err := l.buildStatement(next)
	if err != nil {
		return err
	}
	append(body)
	return nil
}

// lowerProcedureDefinition resolves a procedures_definition block's
// custom_block input to its prototype block, zips argumentids/argumentnames
// into arg_names_by_id, and registers the procedure body under its
// proccode.
func (l *lowerer) lowerProcedureDefinition(def *json.Value) error {
	protoRaw := inputRaw(def, "custom_block")
	protoID, err := unwrapBlockRef(protoRaw)
	if err != nil {
		return fmt.Errorf("lowering: procedures_definition custom_block: %w", err)
	}
	proto, err := l.blocks.block(protoID)
	if err != nil {
		return err
	}

	proccode, err := mutationProccode(proto)
	if err != nil {
		return err
	}
	ids, err := mutationStringList(proto, "argumentids")
	if err != nil {
		return err
	}
	names, err := mutationStringList(proto, "argumentnames")
	if err != nil {
		return err
	}
	if len(ids) != len(names) {
		return fmt.Errorf("lowering: proccode %q: argumentids/argumentnames length mismatch", proccode)
	}

	argNames := make(map[string]string, len(ids))
	for i, id := range ids {
		argNames[id] = names[i]
	}

	var body ast.Stmt = &ast.Do{}
	if next, ok := nextOf(def); ok {
		body, err = l.buildStatement(next)
		if err != nil {
			return err
		}
	}

	l.procs.Custom[proccode] = &ast.Custom{ArgNamesByID: argNames, Body: body}
	return nil
}

// buildStatement implements the chain-walking rule: a single block with no
// next lowers directly, a chain of next-linked blocks flattens into a Do of
// exactly one statement per block, in source order. It never recurses
// through next, only through substacks, so an arbitrarily long sequence
// costs O(1) stack depth.
func (l *lowerer) buildStatement(id string) (ast.Stmt, error) {
	var stmts []ast.Stmt
	cur := id
	for {
		b, err := l.blocks.block(cur)
		if err != nil {
			return nil, err
		}
		s, err := l.buildSingleStmt(b)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		next, ok := nextOf(b)
		if !ok {
			break
		}
		cur = next
	}
	if len(stmts) == 1 {
		return stmts[0], nil
	}
	return &ast.Do{Stmts: stmts}, nil
}

// substack lowers a SUBSTACK/SUBSTACK2 input: a missing or null substack
// lowers to an empty Do, never an error.
func (l *lowerer) substack(b *json.Value, name string) (ast.Stmt, error) {
	raw := inputRaw(b, name)
	id, ok, err := unwrapInput(raw)
	if err != nil {
		return nil, fmt.Errorf("lowering: substack %q: %w", name, err)
	}
	if !ok {
		return &ast.Do{}, nil
	}
	return l.buildStatement(id)
}

func (l *lowerer) buildSingleStmt(b *json.Value) (ast.Stmt, error) {
	opcode, err := opcodeOf(b)
	if err != nil {
		return nil, err
	}

	switch opcode {
	case opControlIf:
		cond, err := l.buildInput(b, "CONDITION")
		if err != nil {
			return nil, err
		}
		then, err := l.substack(b, "SUBSTACK")
		if err != nil {
			return nil, err
		}
		return &ast.If{Cond: cond, Then: then}, nil

	case opControlIfElse:
		cond, err := l.buildInput(b, "CONDITION")
		if err != nil {
			return nil, err
		}
		then, err := l.substack(b, "SUBSTACK")
		if err != nil {
			return nil, err
		}
		els, err := l.substack(b, "SUBSTACK2")
		if err != nil {
			return nil, err
		}
		return &ast.IfElse{Cond: cond, Then: then, Else: els}, nil

	case opControlRepeat:
		times, err := l.buildInput(b, "TIMES")
		if err != nil {
			return nil, err
		}
		body, err := l.substack(b, "SUBSTACK")
		if err != nil {
			return nil, err
		}
		return &ast.Repeat{Times: times, Body: body}, nil

	case opControlForever:
		body, err := l.substack(b, "SUBSTACK")
		if err != nil {
			return nil, err
		}
		return &ast.Forever{Body: body}, nil

	case opControlRepeatUntil:
		cond, err := l.buildInput(b, "CONDITION")
		if err != nil {
			return nil, err
		}
		body, err := l.substack(b, "SUBSTACK")
		if err != nil {
			return nil, err
		}
		return &ast.Until{Cond: cond, Body: body}, nil

	case opControlWhile:
		cond, err := l.buildInput(b, "CONDITION")
		if err != nil {
			return nil, err
		}
		body, err := l.substack(b, "SUBSTACK")
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body}, nil

	case opControlForEach:
		counterID, err := fieldID(b, "VARIABLE")
		if err != nil {
			return nil, err
		}
		times, err := l.buildInput(b, "VALUE")
		if err != nil {
			return nil, err
		}
		body, err := l.substack(b, "SUBSTACK")
		if err != nil {
			return nil, err
		}
		return &ast.For{CounterID: counterID, Times: times, Body: body}, nil

	case opControlStop:
		opt, err := fieldValue(b, "STOP_OPTION")
		if err != nil {
			return nil, err
		}
		switch opt {
		case "all":
			return &ast.StopAll{}, nil
		case "this script":
			return &ast.StopThisScript{}, nil
		default:
			return nil, fmt.Errorf("lowering: control_stop: unknown STOP_OPTION %q", opt)
		}

	case opProceduresCall:
		return l.buildProcCall(b)

	case opDataDeleteAllOfList:
		listID, err := fieldID(b, "LIST")
		if err != nil {
			return nil, err
		}
		return &ast.DeleteAllOfList{ListID: listID}, nil

	case opDataDeleteOfList:
		listID, err := fieldID(b, "LIST")
		if err != nil {
			return nil, err
		}
		index, err := l.buildInput(b, "INDEX")
		if err != nil {
			return nil, err
		}
		return &ast.DeleteOfList{ListID: listID, Index: index}, nil

	case opDataAddToList:
		listID, err := fieldID(b, "LIST")
		if err != nil {
			return nil, err
		}
		item, err := l.buildInput(b, "ITEM")
		if err != nil {
			return nil, err
		}
		return &ast.AddToList{ListID: listID, Item: item}, nil

	case opDataReplaceItemOfList:
		listID, err := fieldID(b, "LIST")
		if err != nil {
			return nil, err
		}
		index, err := l.buildInput(b, "INDEX")
		if err != nil {
			return nil, err
		}
		item, err := l.buildInput(b, "ITEM")
		if err != nil {
			return nil, err
		}
		return &ast.ReplaceItemOfList{ListID: listID, Index: index, Item: item}, nil

	case opDataSetVariableTo:
		varID, err := fieldID(b, "VARIABLE")
		if err != nil {
			return nil, err
		}
		value, err := l.buildInput(b, "VALUE")
		if err != nil {
			return nil, err
		}
		return &ast.SetVariable{VarID: varID, Value: value}, nil

	case opDataChangeVariableBy:
		varID, err := fieldID(b, "VARIABLE")
		if err != nil {
			return nil, err
		}
		delta, err := l.buildInput(b, "VALUE")
		if err != nil {
			return nil, err
		}
		return &ast.ChangeVariableBy{VarID: varID, Delta: delta}, nil

	default:
		if fieldsNonEmpty(b) {
			return nil, fmt.Errorf("lowering: unsupported field-bearing opcode %q", opcode)
		}
		inputs, err := l.buildBuiltinInputs(b)
		if err != nil {
			return nil, err
		}
		return &ast.Builtin{Opcode: opcode, Inputs: inputs}, nil
	}
}

func (l *lowerer) buildExpr(b *json.Value) (ast.Expr, error) {
	opcode, err := opcodeOf(b)
	if err != nil {
		return nil, err
	}

	switch opcode {
	case opArgumentReporterStrNum:
		name, err := fieldValue(b, "VALUE")
		if err != nil {
			return nil, err
		}
		return &ast.ProcArg{Name: name}, nil

	case opDataItemOfList:
		listID, err := fieldID(b, "LIST")
		if err != nil {
			return nil, err
		}
		index, err := l.buildInput(b, "INDEX")
		if err != nil {
			return nil, err
		}
		return &ast.ItemOfList{ListID: listID, Index: index}, nil

	case opDataLengthOfList:
		listID, err := fieldID(b, "LIST")
		if err != nil {
			return nil, err
		}
		return &ast.LengthOfList{ListID: listID}, nil

	case opOperatorMathop:
		opStr, err := fieldValue(b, "OPERATOR")
		if err != nil {
			return nil, err
		}
		op, ok := mathOps[opStr]
		if !ok {
			return nil, fmt.Errorf("lowering: operator_mathop: unknown operator %q", opStr)
		}
		operand, err := l.buildInput(b, "NUM")
		if err != nil {
			return nil, err
		}
		return &ast.UnaryMath{Op: op, Operand: operand}, nil

	default:
		if fieldsNonEmpty(b) {
			return nil, fmt.Errorf("lowering: unsupported field-bearing opcode %q", opcode)
		}
		inputs, err := l.buildBuiltinInputs(b)
		if err != nil {
			return nil, err
		}
		return &ast.Builtin{Opcode: opcode, Inputs: inputs}, nil
	}
}

// buildInput lowers one named input of b into an expression: element [1] of
// the input envelope is either a block-id string reference to a reporter, or
// a [type, payload, ...] literal tuple.
func (l *lowerer) buildInput(b *json.Value, name string) (ast.Expr, error) {
	raw := inputRaw(b, name)
	return l.buildInputExpr(raw)
}

func (l *lowerer) buildInputExpr(raw *json.Value) (ast.Expr, error) {
	if raw.Type() == json.Null {
		return &ast.Lit{Value: types.Default}, nil
	}
	arr, err := raw.AsArray()
	if err != nil || len(arr) < 2 {
		return nil, fmt.Errorf("lowering: malformed input shape")
	}
	second := arr[1]
	switch second.Type() {
	case json.String:
		id, _ := second.AsString()
		return l.expandBlockRef(id)
	case json.Null:
		return &ast.Lit{Value: types.Default}, nil
	case json.Array:
		return buildLiteralTuple(second)
	default:
		return nil, fmt.Errorf("lowering: malformed input shape")
	}
}

// expandBlockRef resolves a block-id reference to a reporter block and
// lowers it as an expression.
func (l *lowerer) expandBlockRef(id string) (ast.Expr, error) {
	b, err := l.blocks.block(id)
	if err != nil {
		return nil, err
	}
	return l.buildExpr(b)
}

func buildLiteralTuple(tuple *json.Value) (ast.Expr, error) {
	arr, err := tuple.AsArray()
	if err != nil || len(arr) < 2 {
		return nil, fmt.Errorf("lowering: malformed literal tuple")
	}
	kind, err := asInt(arr[0])
	if err != nil {
		return nil, fmt.Errorf("lowering: malformed literal tuple kind: %w", err)
	}
	switch kind {
	case 4, 5, 6:
		text, err := arr[1].AsString()
		if err != nil {
			return nil, fmt.Errorf("lowering: malformed numeric literal: %w", err)
		}
		n, _ := types.ParseNumber(text)
		return &ast.Lit{Value: n}, nil
	case 10:
		text, err := arr[1].AsString()
		if err != nil {
			return nil, fmt.Errorf("lowering: malformed string literal: %w", err)
		}
		return &ast.Lit{Value: types.Str(text)}, nil
	case 12:
		if len(arr) < 3 {
			return nil, fmt.Errorf("lowering: malformed variable reference tuple")
		}
		varID, err := arr[2].AsString()
		if err != nil {
			return nil, fmt.Errorf("lowering: malformed variable reference id: %w", err)
		}
		return &ast.GetVar{VarID: varID}, nil
	default:
		return nil, fmt.Errorf("lowering: unknown input shape type %d", kind)
	}
}

// buildProcCall lowers a procedures_call block: its proccode names the
// callee, and its Args are ordered by the callee's own argumentids order
// (re-parsed from the call's mutation, the same shape the definition uses),
// not by JSON object iteration order.
func (l *lowerer) buildProcCall(b *json.Value) (ast.Stmt, error) {
	proccode, err := mutationProccode(b)
	if err != nil {
		return nil, err
	}
	ids, err := mutationStringList(b, "argumentids")
	if err != nil {
		return nil, err
	}

	args := make([]ast.KV, 0, len(ids))
	for _, id := range ids {
		raw := inputRaw(b, id)
		expr, err := l.buildInputExpr(raw)
		if err != nil {
			return nil, fmt.Errorf("lowering: proccode %q arg %q: %w", proccode, id, err)
		}
		args = append(args, ast.KV{Key: id, Value: expr})
	}
	return &ast.ProcCall{Proccode: proccode, Args: args}, nil
}

// buildBuiltinInputs lowers every input of a fallback opcode in sorted key
// order. Order is semantically irrelevant here: the evaluator's builtin
// table reads these by name, never positionally.
func (l *lowerer) buildBuiltinInputs(b *json.Value) ([]ast.KV, error) {
	keys := inputKeys(b)
	kvs := make([]ast.KV, 0, len(keys))
	for _, k := range keys {
		expr, err := l.buildInput(b, k)
		if err != nil {
			return nil, fmt.Errorf("lowering: input %q: %w", k, err)
		}
		kvs = append(kvs, ast.KV{Key: k, Value: expr})
	}
	return kvs, nil
}
