// Package types implements the dynamically-typed scalar value that flows
// through the evaluator: a Scratch value is always one of a number, a
// string or a boolean, and every operator coerces its operands to whichever
// of those three shapes it needs (see the coercion rules in coerce.go).
package types

// Value is the interface implemented by the three scalar kinds the
// evaluator ever produces or consumes: Num, Str and Bool.
type Value interface {
	// String returns the value's Scratch display form, i.e. to_string(v).
	String() string

	// Type returns a short name for the value's dynamic type, used only for
	// diagnostics.
	Type() string

	// Truth implements to_bool for this value's variant.
	Truth() bool
}

// Default is the value substituted wherever Scratch falls back to "no
// value": an unset variable, a list read past its bounds, an uninitialized
// procedure argument.
var Default Value = Str("")
