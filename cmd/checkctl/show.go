package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/cli"
	"go.uber.org/multierr"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
	"github.com/hamed0406/uptimeengine/internal/validate"
)

type showCmd struct {
	base
	help string
}

func newShow(ui cli.Ui, open storeOpener) *showCmd {
	c := &showCmd{base: newBase(ui, open)}
	c.help = flagUsage(showHelp, c.flags)
	return c
}

func (c *showCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	if c.flags.NArg() != 1 {
		c.UI.Error("show expects exactly one check id")
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

	rec, err := store.Read(ctx, domain.ChecksCollection, id)
	if errors.Is(err, repo.ErrNotFound) {
		c.UI.Error(fmt.Sprintf("No check with id %s", id))
		return 1
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error reading check: %s", err))
		return 1
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	c.UI.Output(string(b))
	if _, err := validate.Check(rec); err != nil {
		for _, e := range multierr.Errors(err) {
			c.UI.Warn("invalid: " + e.Error())
		}
	}
	return 0
}

func (c *showCmd) Synopsis() string { return "Show a stored check" }
func (c *showCmd) Help() string     { return c.help }

const showHelp = `
Usage: checkctl show [options] ID

  Prints the stored check document and any validation problems that would
  make the engine skip it.
`
