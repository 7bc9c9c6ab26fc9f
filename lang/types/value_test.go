package types_test

import (
	"math"
	"testing"

	"github.com/mna/scratchvm/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumTruth(t *testing.T) {
	cases := []struct {
		n    types.Num
		want bool
	}{
		{0, false},
		{1, true},
		{-1, true},
		{0.0001, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.n.Truth())
	}
}

func TestNumString(t *testing.T) {
	cases := []struct {
		n    types.Num
		want string
	}{
		{0, "0"},
		{1, "1"},
		{1.5, "1.5"},
		{-1.5, "-1.5"},
		{120, "120"},
		{1000000, "1000000"},
		{types.Num(math.Inf(1)), "Infinity"},
		{types.Num(math.Inf(-1)), "-Infinity"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.n.String())
	}
}

func TestBoolValue(t *testing.T) {
	require.Equal(t, "true", types.True.String())
	require.Equal(t, "false", types.False.String())
	require.True(t, types.True.Truth())
	require.False(t, types.False.Truth())
	require.Equal(t, "boolean", types.True.Type())
}

func TestStrTruth(t *testing.T) {
	cases := []struct {
		s    types.Str
		want bool
	}{
		{"", false},
		{"0", false},
		{"false", false},
		{"False", false},
		{"FALSE", false},
		{"1", true},
		{"0.0", true},
		{"anything", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.s.Truth(), "Truth(%q)", c.s)
	}
}

func TestDefaultValue(t *testing.T) {
	require.Equal(t, "", types.Default.String())
	require.False(t, types.Default.Truth())
	require.False(t, types.ToBool(types.Default))
}
