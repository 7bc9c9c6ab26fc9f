package vm

import (
	"fmt"
	"math"

	"github.com/mna/scratchvm/lang/ast"
	"github.com/mna/scratchvm/lang/project"
	"github.com/mna/scratchvm/lang/types"
)

// evalExpr evaluates one expression to a Value.
func (th *Thread) evalExpr(sprite *project.Sprite, e ast.Expr) (types.Value, error) {
	switch ex := e.(type) {
	case *ast.Lit:
		return ex.Value, nil

	case *ast.GetVar:
		if v, ok := th.vars.Get(ex.VarID); ok {
			return v, nil
		}
		return types.Default, nil

	case *ast.ProcArg:
		stack := th.procArgs[ex.Name]
		if len(stack) == 0 {
			return types.Default, nil
		}
		return stack[len(stack)-1], nil

	case *ast.ItemOfList:
		lst, ok := th.lists.Get(ex.ListID)
		if !ok {
			return types.Default, nil
		}
		idxV, err := th.evalExpr(sprite, ex.Index)
		if err != nil {
			return nil, err
		}
		i, ok := resolveListIndex(idxV, len(lst))
		if !ok {
			return types.Default, nil
		}
		return lst[i], nil

	case *ast.LengthOfList:
		lst, _ := th.lists.Get(ex.ListID)
		return types.Num(len(lst)), nil

	case *ast.UnaryMath:
		v, err := th.evalExpr(sprite, ex.Operand)
		if err != nil {
			return nil, err
		}
		return evalUnaryMath(ex.Op, float64(types.ToNum(v))), nil

	case *ast.Builtin:
		return th.evalBuiltinExpr(sprite, ex)

	default:
		return nil, fmt.Errorf("vm: unknown expression type %T", e)
	}
}

// evalUnaryMath implements operator_mathop: angle functions take/return
// degrees, log is base-10, ln is natural.
func evalUnaryMath(op ast.MathOp, n float64) types.Num {
	switch op {
	case ast.MathAbs:
		return types.Num(math.Abs(n))
	case ast.MathFloor:
		return types.Num(math.Floor(n))
	case ast.MathCeiling:
		return types.Num(math.Ceil(n))
	case ast.MathSqrt:
		return types.Num(math.Sqrt(n))
	case ast.MathSin:
		return types.Num(math.Sin(toRadians(n)))
	case ast.MathCos:
		return types.Num(math.Cos(toRadians(n)))
	case ast.MathTan:
		return types.Num(math.Tan(toRadians(n)))
	case ast.MathAsin:
		return types.Num(toDegrees(math.Asin(n)))
	case ast.MathAcos:
		return types.Num(toDegrees(math.Acos(n)))
	case ast.MathAtan:
		return types.Num(toDegrees(math.Atan(n)))
	case ast.MathLn:
		return types.Num(math.Log(n))
	case ast.MathLog:
		return types.Num(math.Log10(n))
	case ast.MathEToX:
		return types.Num(math.Exp(n))
	case ast.MathTenToX:
		return types.Num(math.Pow(10, n))
	default:
		return 0
	}
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// resolveListIndex resolves a ToIndex result against a concrete list length
// for the list-mutation/read opcodes (ItemOfList, DeleteOfList,
// ReplaceItemOfList), where "last" means the final element and any resolved
// position must be in range. operator_letter_of does not use this helper;
// it treats IndexLast as out-of-range instead.
func resolveListIndex(idxV types.Value, length int) (int, bool) {
	i, kind := types.ToIndex(idxV)
	switch kind {
	case types.IndexLast:
		if length == 0 {
			return 0, false
		}
		return length - 1, true
	case types.IndexNth:
		if i < 0 || i >= length {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
