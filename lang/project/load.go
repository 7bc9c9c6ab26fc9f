package project

import (
	"fmt"

	json "github.com/mcvoid/json"

	"github.com/mna/scratchvm/lang/lower"
)

// Load parses a project.json document (already extracted from the .sb3 zip
// by internal/archive) and lowers every target's block map into a Sprite,
// in the order the targets array lists them.
func Load(projectJSON []byte) (*Project, error) {
	root, err := json.ParseBytes(projectJSON)
	if err != nil {
		return nil, fmt.Errorf("project: parse project.json: %w", err)
	}

	targets, err := root.Key("targets").AsArray()
	if err != nil {
		return nil, fmt.Errorf("project: missing or malformed targets array: %w", err)
	}

	proj := New(len(targets))
	for i, target := range targets {
		name, err := target.Key("name").AsString()
		if err != nil {
			return nil, fmt.Errorf("project: target %d: missing name: %w", i, err)
		}

		blocksObj, err := target.Key("blocks").AsObject()
		if err != nil {
			return nil, fmt.Errorf("project: target %q: missing or malformed blocks: %w", name, err)
		}

		procs, err := lower.Lower(blocksObj)
		if err != nil {
			return nil, fmt.Errorf("project: target %q: %w", name, err)
		}

		x, _ := target.Key("x").AsNumber()
		y, _ := target.Key("y").AsNumber()

		proj.Add(&Sprite{Name: name, Procs: procs, X: x, Y: y})
	}
	return proj, nil
}
