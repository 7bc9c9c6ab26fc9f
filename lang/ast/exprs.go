package ast

import "github.com/mna/scratchvm/lang/types"

type (
	// Lit is a literal value embedded directly in the tree by the lowerer.
	Lit struct {
		Value types.Value
	}

	// GetVar reads a project variable by id.
	GetVar struct {
		VarID string
	}

	// ProcArg reads the current value of a custom-procedure parameter,
	// resolved by its display name against the proc-arg stack.
	ProcArg struct {
		Name string
	}

	// ItemOfList reads one element of a list, 1-based per Scratch's
	// to_index rule.
	ItemOfList struct {
		ListID string
		Index  Expr
	}

	// LengthOfList reports the number of elements in a list.
	LengthOfList struct {
		ListID string
	}

	// MathOp is the unary math operator family (operator_mathop).
	MathOp string

	// UnaryMath applies one of the fourteen operator_mathop functions to its
	// operand.
	UnaryMath struct {
		Op      MathOp
		Operand Expr
	}

	// Builtin is the fallback for every reporter opcode with no dedicated
	// AST node: the opcode string plus its lowered inputs, dispatched by the
	// evaluator's builtin table.
	Builtin struct {
		Opcode string
		Inputs []KV
	}
)

const (
	MathAbs     MathOp = "abs"
	MathFloor   MathOp = "floor"
	MathCeiling MathOp = "ceiling"
	MathSqrt    MathOp = "sqrt"
	MathSin     MathOp = "sin"
	MathCos     MathOp = "cos"
	MathTan     MathOp = "tan"
	MathAsin    MathOp = "asin"
	MathAcos    MathOp = "acos"
	MathAtan    MathOp = "atan"
	MathLn      MathOp = "ln"
	MathLog     MathOp = "log"
	MathEToX    MathOp = "e ^"
	MathTenToX  MathOp = "10 ^"
)

func (*Lit) expr()          {}
func (*GetVar) expr()       {}
func (*ProcArg) expr()      {}
func (*ItemOfList) expr()   {}
func (*LengthOfList) expr() {}
func (*UnaryMath) expr()    {}
func (*Builtin) expr()      {}

// also satisfies Stmt: Builtin is the fallback node for both reporter and
// command opcodes.
func (*Builtin) stmt() {}
