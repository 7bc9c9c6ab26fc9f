package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/scratchvm/internal/archive"
	"github.com/mna/scratchvm/lang/project"
	"github.com/mna/scratchvm/lang/vm"
)

const defaultProjectPath = "project.sb3"

// Run loads a .sb3 file and executes its when-flag-clicked scripts. It is
// the sole command discovered by buildCmds.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := defaultProjectPath
	if len(args) > 0 {
		path = args[0]
	}

	projectJSON, err := archive.ExtractProjectJSON(path)
	if err != nil {
		return printError(stdio, fmt.Errorf("run: %w", err))
	}

	proj, err := project.Load(projectJSON)
	if err != nil {
		return printError(stdio, fmt.Errorf("run: %w", err))
	}

	th := vm.New(proj)
	th.Stdout = stdio.Stdout
	th.Stderr = stdio.Stderr
	th.Stdin = stdio.Stdin

	if err := th.Run(ctx); err != nil {
		return printError(stdio, fmt.Errorf("run: %w", err))
	}
	return nil
}
