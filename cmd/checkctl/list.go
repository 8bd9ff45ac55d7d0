package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/ryanuber/columnize"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/validate"
)

type listCmd struct {
	base
	owner string
	help  string
}

func newList(ui cli.Ui, open storeOpener) *listCmd {
	c := &listCmd{base: newBase(ui, open)}
	c.flags.StringVar(&c.owner, "owner", "", "Only list checks of this owner.")
	c.help = flagUsage(listHelp, c.flags)
	return c
}

func (c *listCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	ctx := context.Background()
	_, store, closeFn, err := c.connect(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error opening store: %s", err))
		return 1
	}
	defer func() { _ = closeFn() }()

	ids, err := store.List(ctx, domain.ChecksCollection)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error listing checks: %s", err))
		return 1
	}

	rows := []string{"ID\x1fOwner\x1fState\x1fTarget"}
	for _, id := range ids {
		rec, err := store.Read(ctx, domain.ChecksCollection, id)
		if err != nil {
			c.UI.Warn(fmt.Sprintf("skipping %s: %s", id, err))
			continue
		}
		owner := ownerOf(rec)
		if c.owner != "" && owner != c.owner {
			continue
		}
		state, target := "invalid", "-"
		if chk, err := validate.Check(rec); err == nil {
			state = string(chk.State)
			if state == "" {
				state = "pending"
			}
			target = chk.HTTPMethod() + " " + chk.Target()
		}
		rows = append(rows, strings.Join([]string{id, owner, state, target}, "\x1f"))
	}
	if len(rows) == 1 {
		c.UI.Output("No checks")
		return 0
	}
	c.UI.Output(columnize.Format(rows, &columnize.Config{Delim: "\x1f"}))
	return 0
}

func (c *listCmd) Synopsis() string { return "List checks" }
func (c *listCmd) Help() string     { return c.help }

const listHelp = `
Usage: checkctl list [options]

  Lists stored checks with their owner, last state and probe target.
`
