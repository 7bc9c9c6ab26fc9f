package project_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/scratchvm/lang/project"
)

func TestLoadTwoSprites(t *testing.T) {
	src := `{
		"targets": [
			{
				"name": "Stage",
				"x": 0, "y": 0,
				"blocks": {}
			},
			{
				"name": "Cat",
				"x": 12, "y": -34,
				"blocks": {
					"hat": {"opcode": "event_whenflagclicked", "next": "stop"},
					"stop": {"opcode": "control_stop", "next": null, "fields": {"STOP_OPTION": ["all", null]}}
				}
			}
		]
	}`

	proj, err := project.Load([]byte(src))
	require.NoError(t, err)
	require.Equal(t, []string{"Stage", "Cat"}, proj.Order)

	cat, ok := proj.Sprite("Cat")
	require.True(t, ok)
	require.Equal(t, 12.0, cat.X)
	require.Equal(t, -34.0, cat.Y)
	require.Len(t, cat.Procs.WhenFlagClicked, 1)

	stage, ok := proj.Sprite("Stage")
	require.True(t, ok)
	require.Empty(t, stage.Procs.WhenFlagClicked)
}

func TestLoadMissingTargets(t *testing.T) {
	_, err := project.Load([]byte(`{}`))
	require.Error(t, err)
}
