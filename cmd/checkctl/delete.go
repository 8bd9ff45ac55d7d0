package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/cli"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
)

type deleteCmd struct {
	base
	help string
}

func newDelete(ui cli.Ui, open storeOpener) *deleteCmd {
	c := &deleteCmd{base: newBase(ui, open)}
	c.help = flagUsage(deleteHelp, c.flags)
	return c
}

func (c *deleteCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	if c.flags.NArg() != 1 {
		c.UI.Error("delete expects exactly one check id")
		return 1
	}
	id := c.flags.Arg(0)

	ctx := context.Background()
	_, store, closeFn, err := c.connect(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error opening store: %s", err))
		return 1
	}
	defer func() { _ = closeFn() }()

	if err := store.Delete(ctx, domain.ChecksCollection, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.UI.Error(fmt.Sprintf("No check with id %s", id))
		} else {
			c.UI.Error(fmt.Sprintf("Error deleting check: %s", err))
		}
		return 1
	}
	c.UI.Output(fmt.Sprintf("Deleted %s", id))
	return 0
}

func (c *deleteCmd) Synopsis() string { return "Delete a check" }
func (c *deleteCmd) Help() string     { return c.help }

const deleteHelp = `
Usage: checkctl delete [options] ID

  Removes a check. The engine stops probing it from its next cycle.
`
