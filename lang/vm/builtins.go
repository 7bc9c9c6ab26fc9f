package vm

import (
	"fmt"
	"strings"

	"github.com/mna/scratchvm/lang/ast"
	"github.com/mna/scratchvm/lang/project"
	"github.com/mna/scratchvm/lang/types"
)

// runBuiltinStmt dispatches the fallback command opcodes: motion, the
// accepted pen/looks no-ops, looks_say, event dispatch and sensing/control
// blocking forms. Anything else is an unknown-opcode error.
func (th *Thread) runBuiltinStmt(sprite *project.Sprite, b *ast.Builtin) error {
	switch b.Opcode {
	case "motion_gotoxy":
		x, y, err := th.eval2(sprite, b, "X", "Y")
		if err != nil {
			return err
		}
		sprite.X, sprite.Y = float64(x), float64(y)
		return nil

	case "motion_setx":
		x, err := th.evalInput(sprite, b, "X")
		if err != nil {
			return err
		}
		sprite.X = float64(types.ToNum(x))
		return nil

	case "motion_sety":
		y, err := th.evalInput(sprite, b, "Y")
		if err != nil {
			return err
		}
		sprite.Y = float64(types.ToNum(y))
		return nil

	case "motion_changexby":
		dx, err := th.evalInput(sprite, b, "DX")
		if err != nil {
			return err
		}
		sprite.X += float64(types.ToNum(dx))
		return nil

	case "motion_changeyby":
		dy, err := th.evalInput(sprite, b, "DY")
		if err != nil {
			return err
		}
		sprite.Y += float64(types.ToNum(dy))
		return nil

	case "pen_clear", "pen_stamp", "pen_penDown", "pen_penUp",
		"pen_setPenSizeTo", "looks_show", "looks_hide",
		"looks_setsizeto", "looks_switchcostumeto":
		return nil

	case "looks_say":
		msg, err := th.evalInput(sprite, b, "MESSAGE")
		if err != nil {
			return err
		}
		fmt.Fprintln(th.stdout, msg.String())
		return nil

	case "event_broadcastandwait":
		nameV, err := th.evalInput(sprite, b, "BROADCAST_INPUT")
		if err != nil {
			return err
		}
		name := nameV.String()
		for _, s := range th.project.Sprites() {
			for _, receiver := range s.Procs.Broadcasts[name] {
				if err := th.runHat(s, receiver); err != nil {
					return err
				}
			}
		}
		return nil

	case "sensing_askandwait":
		q, err := th.evalInput(sprite, b, "QUESTION")
		if err != nil {
			return err
		}
		fmt.Fprint(th.stdout, q.String())
		flush(th.stdout)
		line, err := th.stdin.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("vm: sensing_askandwait: read stdin: %w", err)
		}
		th.answer = strings.TrimSpace(line)
		return nil

	case "control_wait":
		d, err := th.evalInput(sprite, b, "DURATION")
		if err != nil {
			return err
		}
		th.Sleep(toDuration(float64(types.ToNum(d))))
		return nil

	default:
		return fmt.Errorf("vm: unknown opcode %q", b.Opcode)
	}
}

// evalBuiltinExpr dispatches the fallback reporter opcodes: comparisons,
// boolean logic, arithmetic, string ops, motion position reporters and
// sensing reporters.
func (th *Thread) evalBuiltinExpr(sprite *project.Sprite, b *ast.Builtin) (types.Value, error) {
	switch b.Opcode {
	case "operator_equals", "operator_lt", "operator_gt":
		a, c, err := th.eval2Values(sprite, b, "OPERAND1", "OPERAND2")
		if err != nil {
			return nil, err
		}
		cmp := types.Compare(a, c)
		switch b.Opcode {
		case "operator_equals":
			return types.Bool(cmp == 0), nil
		case "operator_lt":
			return types.Bool(cmp < 0), nil
		default:
			return types.Bool(cmp > 0), nil
		}

	case "operator_not":
		v, err := th.evalInput(sprite, b, "OPERAND")
		if err != nil {
			return nil, err
		}
		return types.Bool(!v.Truth()), nil

	case "operator_or", "operator_and":
		// short-circuit: OPERAND2 is only evaluated when OPERAND1 doesn't
		// decide the result. An empty operand slot evaluates to the default
		// value, i.e. falsy.
		a, err := th.evalInput(sprite, b, "OPERAND1")
		if err != nil {
			return nil, err
		}
		if b.Opcode == "operator_or" && a.Truth() {
			return types.True, nil
		}
		if b.Opcode == "operator_and" && !a.Truth() {
			return types.False, nil
		}
		c, err := th.evalInput(sprite, b, "OPERAND2")
		if err != nil {
			return nil, err
		}
		return types.Bool(c.Truth()), nil

	case "operator_add", "operator_subtract", "operator_multiply", "operator_divide":
		a, c, err := th.eval2Values(sprite, b, "NUM1", "NUM2")
		if err != nil {
			return nil, err
		}
		an, cn := float64(types.ToNum(a)), float64(types.ToNum(c))
		switch b.Opcode {
		case "operator_add":
			return types.Num(an + cn), nil
		case "operator_subtract":
			return types.Num(an - cn), nil
		case "operator_multiply":
			return types.Num(an * cn), nil
		default:
			return types.Num(an / cn), nil
		}

	case "operator_length":
		v, err := th.evalInput(sprite, b, "STRING")
		if err != nil {
			return nil, err
		}
		return types.Num(len([]rune(types.ToDisplayString(v)))), nil

	case "operator_join":
		a, c, err := th.eval2Values(sprite, b, "STRING1", "STRING2")
		if err != nil {
			return nil, err
		}
		return types.Str(types.ToDisplayString(a) + types.ToDisplayString(c)), nil

	case "operator_letter_of":
		letterV, strV, err := th.eval2Values(sprite, b, "LETTER", "STRING")
		if err != nil {
			return nil, err
		}
		runes := []rune(types.ToDisplayString(strV))
		i, kind := types.ToIndex(letterV)
		if kind != types.IndexNth || i < 0 || i >= len(runes) {
			return types.Str(""), nil
		}
		return types.Str(string(runes[i])), nil

	case "motion_xposition":
		return types.Num(sprite.X), nil

	case "motion_yposition":
		return types.Num(sprite.Y), nil

	case "sensing_answer":
		return types.Str(th.answer), nil

	case "sensing_timer":
		return types.Num(th.Now().Sub(th.timerOrigin).Seconds()), nil

	default:
		return nil, fmt.Errorf("vm: unknown opcode %q", b.Opcode)
	}
}

func (th *Thread) evalInput(sprite *project.Sprite, b *ast.Builtin, name string) (types.Value, error) {
	expr, ok := ast.Lookup(b.Inputs, name)
	if !ok {
		return types.Default, nil
	}
	return th.evalExpr(sprite, expr)
}

func (th *Thread) eval2(sprite *project.Sprite, b *ast.Builtin, n1, n2 string) (types.Num, types.Num, error) {
	a, c, err := th.eval2Values(sprite, b, n1, n2)
	if err != nil {
		return 0, 0, err
	}
	return types.ToNum(a), types.ToNum(c), nil
}

func (th *Thread) eval2Values(sprite *project.Sprite, b *ast.Builtin, n1, n2 string) (types.Value, types.Value, error) {
	a, err := th.evalInput(sprite, b, n1)
	if err != nil {
		return nil, nil, err
	}
	c, err := th.evalInput(sprite, b, n2)
	if err != nil {
		return nil, nil, err
	}
	return a, c, nil
}
