package lower

import (
	"fmt"

	json "github.com/mcvoid/json"
)

// blockMap is the raw parsed form of one target's "blocks" object: block id
// to its block JSON value.
type blockMap map[string]*json.Value

func (bm blockMap) block(id string) (*json.Value, error) {
	b, ok := bm[id]
	if !ok {
		return nil, fmt.Errorf("lowering: unknown block id %q", id)
	}
	return b, nil
}

// opcodeOf returns a block's opcode string.
func opcodeOf(b *json.Value) (string, error) {
	s, err := b.Key("opcode").AsString()
	if err != nil {
		return "", fmt.Errorf("lowering: block missing opcode: %w", err)
	}
	return s, nil
}

// nextOf returns a block's "next" block id, and whether it has one.
func nextOf(b *json.Value) (string, bool) {
	s, err := b.Key("next").AsString()
	if err != nil {
		return "", false
	}
	return s, true
}

// inputRaw returns the raw [shadow, ref-or-literal, ...] input envelope for
// name, or a Null value if the block has no such input.
func inputRaw(b *json.Value, name string) *json.Value {
	return b.Key("inputs").Key(name)
}

// fieldRaw returns the raw [value, maybe-id] field tuple for name, or a Null
// value if the block has no such field.
func fieldRaw(b *json.Value, name string) *json.Value {
	return b.Key("fields").Key(name)
}

// fieldValue returns the string value of a field (element 0 of its tuple).
func fieldValue(b *json.Value, name string) (string, error) {
	v, err := fieldRaw(b, name).Index(0).AsString()
	if err != nil {
		return "", fmt.Errorf("lowering: missing or malformed field %q: %w", name, err)
	}
	return v, nil
}

// fieldsNonEmpty reports whether a block carries any fields at all, used to
// detect unsupported field-bearing opcodes falling through to Builtin.
func fieldsNonEmpty(b *json.Value) bool {
	fields := b.Key("fields")
	m, err := fields.AsObject()
	return err == nil && len(m) > 0
}

// mutationProccode returns mutation.proccode.
func mutationProccode(b *json.Value) (string, error) {
	s, err := b.Key("mutation").Key("proccode").AsString()
	if err != nil {
		return "", fmt.Errorf("lowering: missing mutation.proccode: %w", err)
	}
	return s, nil
}

// mutationStringList parses a mutation field that holds a JSON-encoded
// array of strings (argumentids, argumentnames), re-parsing the embedded
// JSON text with the same library used for the outer document.
func mutationStringList(b *json.Value, name string) ([]string, error) {
	raw, err := b.Key("mutation").Key(name).AsString()
	if err != nil {
		return nil, fmt.Errorf("lowering: missing mutation.%s: %w", name, err)
	}
	parsed, err := json.ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("lowering: malformed mutation.%s: %w", name, err)
	}
	arr, err := parsed.AsArray()
	if err != nil {
		return nil, fmt.Errorf("lowering: mutation.%s is not an array: %w", name, err)
	}
	out := make([]string, len(arr))
	for i, v := range arr {
		s, err := v.AsString()
		if err != nil {
			return nil, fmt.Errorf("lowering: mutation.%s[%d] is not a string: %w", name, i, err)
		}
		out[i] = s
	}
	return out, nil
}

// inputKeys returns the sorted names of a block's inputs object, used only
// for the order-irrelevant Builtin.Inputs fallback (Builtin inputs are read
// by key at runtime, so any deterministic order suffices).
func inputKeys(b *json.Value) []string {
	return sortedObjectKeys(b.Key("inputs"))
}
