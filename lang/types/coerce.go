package types

import (
	"math"
	"strconv"
	"strings"
)

// ToBool implements to_bool for any value, named for symmetry with ToNum
// and ToDisplayString.
func ToBool(v Value) bool { return v.Truth() }

// TryToNum attempts to coerce v to a number without falling back to 0: it
// reports ok=false when v is a string that ParseNumber rejects or a NaN Num.
// Bool and every other Num succeed.
func TryToNum(v Value) (Num, bool) {
	switch t := v.(type) {
	case Num:
		if math.IsNaN(float64(t)) {
			return 0, false
		}
		return t, true
	case Bool:
		if t {
			return 1, true
		}
		return 0, true
	case Str:
		return ParseNumber(string(t))
	default:
		return 0, false
	}
}

// ToNum implements to_num: it coerces v to a number, substituting 0 for any
// string ParseNumber can't parse.
func ToNum(v Value) Num {
	if n, ok := TryToNum(v); ok {
		return n
	}
	return 0
}

// ParseNumber implements str_to_num: the exact literal-matching rules
// Scratch uses to turn a trimmed string into a number. "Infinity" and
// "+Infinity" parse to +Inf, "-Infinity" to -Inf; the bare "inf" spellings
// ("inf", "+inf", "-inf") are NOT infinities, they're rejected like any
// other non-numeric string. Anything else falls through to
// strconv.ParseFloat; a parse failure, or a "nan" spelling that ParseFloat
// would otherwise accept, reports ok=false. Scratch numbers reject NaN.
func ParseNumber(s string) (Num, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "Infinity", "+Infinity":
		return Num(math.Inf(1)), true
	case "-Infinity":
		return Num(math.Inf(-1)), true
	case "inf", "+inf", "-inf":
		return 0, false
	case "":
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return Num(f), true
}

// ToDisplayString implements to_string: the textual form used for display,
// concatenation and list rendering. It's identical to Value.String() for
// every variant; this wrapper exists so call sites can name the operation
// they mean instead of the interface method.
func ToDisplayString(v Value) string { return v.String() }

// IndexKind distinguishes the three outcomes to_index can return: a
// resolved ordinal position, the "last" sentinel, or no index at all.
type IndexKind int

const (
	// IndexNone means the input didn't resolve to any index: not a number,
	// not "last", not "random"/"all"/"any" (those have no defined index
	// behavior here), or a non-integer/non-positive number.
	IndexNone IndexKind = iota
	// IndexNth means the returned position is a valid 0-based index (the
	// 1-based input minus one).
	IndexNth
	// IndexLast is the "last" sentinel. What it resolves to depends on the
	// caller: list mutations/reads treat it as the final element, but
	// operator_letter_of treats it as out-of-range, so ToIndex deliberately
	// doesn't collapse it against any particular length itself.
	IndexLast
)

// ToIndex implements to_index: it resolves a Scratch list-index value (a
// number, "last", or a numeric string) to either the IndexLast sentinel or
// a 0-based position. It does not bounds-check against a list length:
// callers that need an in-range element do that themselves, since "last"
// and numeric out-of-range indices are handled differently by different
// callers (see IndexLast).
func ToIndex(v Value) (int, IndexKind) {
	if s, ok := v.(Str); ok && strings.EqualFold(string(s), "last") {
		return 0, IndexLast
	}
	n, ok := TryToNum(v)
	if !ok {
		return 0, IndexNone
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, IndexNone
	}
	if f < 1 || f > math.MaxInt32 {
		return 0, IndexNone
	}
	return int(f) - 1, IndexNth
}

// Compare implements Scratch's relational operators (<, =, >). Numeric
// comparison is attempted first (matching Scratch's "compare as numbers when
// both sides look numeric" behavior); when either side isn't a valid number,
// it falls back to a case-insensitive string comparison.
func Compare(a, b Value) int {
	an, aok := numericOperand(a)
	bn, bok := numericOperand(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
}

// numericOperand reports whether v participates in a numeric comparison:
// Num and Bool always do (a NaN-valued Num does not, matching TryToNum);
// Str only if it parses cleanly as a number.
func numericOperand(v Value) (float64, bool) {
	n, ok := TryToNum(v)
	return float64(n), ok
}
