package lower

import (
	"fmt"
	"sort"

	json "github.com/mcvoid/json"
)

// fieldID returns the id half of a VARIABLE/LIST/BROADCAST_OPTION field
// tuple (element 1), the form the lowerer uses whenever it needs the
// internal id rather than the display name.
func fieldID(b *json.Value, name string) (string, error) {
	id, err := fieldRaw(b, name).Index(1).AsString()
	if err != nil {
		return "", fmt.Errorf("lowering: missing or malformed field id %q: %w", name, err)
	}
	return id, nil
}

// unwrapBlockRef unwraps a plain reporter-reference input (e.g.
// procedures_definition's "custom_block") to the referenced block id.
func unwrapBlockRef(raw *json.Value) (string, error) {
	id, ok, err := unwrapInput(raw)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("lowering: expected a block reference, found none")
	}
	return id, nil
}

// unwrapInput unwraps the [shadow, ref, ...] envelope shared by every input
// and substack: it expects element [1] to be a bare block-id string (or
// null, reported as ok=false) and rejects anything else.
func unwrapInput(raw *json.Value) (id string, ok bool, err error) {
	if raw.Type() == json.Null {
		return "", false, nil
	}
	arr, aerr := raw.AsArray()
	if aerr != nil || len(arr) < 2 {
		return "", false, fmt.Errorf("malformed input envelope")
	}
	second := arr[1]
	if second.Type() == json.Null {
		return "", false, nil
	}
	s, serr := second.AsString()
	if serr != nil {
		return "", false, fmt.Errorf("expected a block id string, found %s", second.Type())
	}
	return s, true, nil
}

// asInt extracts an integer from a JSON value that may have been parsed as
// either Integer or Number (mcvoid/json distinguishes them by literal
// shape, and block-shape tags are always written as bare integers, but we
// don't assume which branch the parser took).
func asInt(v *json.Value) (int64, error) {
	if i, err := v.AsInteger(); err == nil {
		return i, nil
	}
	f, err := v.AsNumber()
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// sortedObjectKeys returns an object's keys in sorted order. Used only
// where key order is semantically irrelevant (Builtin.Inputs) but a
// deterministic iteration order is still wanted for reproducible lowering
// output.
func sortedObjectKeys(v *json.Value) []string {
	m, err := v.AsObject()
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
