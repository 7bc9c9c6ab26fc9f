package types

import "strings"

// Str is the type of a Scratch string. Scratch strings are plain text; length
// and indexing are defined over Unicode scalar values (Go runes), not bytes
// or UTF-16 code units.
type Str string

var _ Value = Str("")

func (s Str) Type() string { return "string" }

// Truth implements to_bool for strings: empty, "0" and "false" (case
// insensitive) are falsy, everything else is truthy.
func (s Str) Truth() bool {
	switch strings.ToLower(string(s)) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}

func (s Str) String() string { return string(s) }
