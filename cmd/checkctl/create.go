package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/cli"
	"go.uber.org/multierr"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
	"github.com/hamed0406/uptimeengine/internal/validate"
)

type createCmd struct {
	base
	owner    string
	protocol string
	url      string
	method   string
	codes    string
	timeout  int
	help     string
	newID    func() (string, error)
}

func newCreate(ui cli.Ui, open storeOpener) *createCmd {
	c := &createCmd{base: newBase(ui, open), newID: newID}
	c.flags.StringVar(&c.owner, "owner", "", "Owner account id (10-digit phone number).")
	c.flags.StringVar(&c.protocol, "protocol", "https", "http or https.")
	c.flags.StringVar(&c.url, "url", "", "Host and path to probe, without the scheme.")
	c.flags.StringVar(&c.method, "method", "get", "get, post, put or delete.")
	c.flags.StringVar(&c.codes, "codes", "200", "Comma separated list of successful status codes.")
	c.flags.IntVar(&c.timeout, "timeout", 3, "Probe timeout in seconds (1-5).")
	c.help = flagUsage(createHelp, c.flags)
	return c
}

func (c *createCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	codes, err := parseCodes(c.codes)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx := context.Background()
	cfg, store, closeFn, err := c.connect(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error opening store: %s", err))
		return 1
	}
	defer func() { _ = closeFn() }()

	owned, err := countOwned(ctx, store, strings.TrimSpace(c.owner))
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error listing checks: %s", err))
		return 1
	}
	if owned >= cfg.MaxChecks {
		c.UI.Error(fmt.Sprintf("Owner %s already has the maximum number of checks (%d)", c.owner, cfg.MaxChecks))
		return 1
	}

	for attempt := 0; attempt < 3; attempt++ {
		id, err := c.newID()
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		rec := domain.Record{
			"id":             id,
			"ownerId":        c.owner,
			"protocol":       c.protocol,
			"url":            c.url,
			"method":         c.method,
			"successCodes":   codes,
			"timeoutSeconds": c.timeout,
		}
		chk, err := validate.Check(rec)
		if err != nil {
			for _, e := range multierr.Errors(err) {
				c.UI.Error(e.Error())
			}
			return 1
		}

		err = store.Create(ctx, domain.ChecksCollection, id, chk.Record())
		if errors.Is(err, repo.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			c.UI.Error(fmt.Sprintf("Error creating check: %s", err))
			return 1
		}
		c.UI.Output(id)
		return 0
	}
	c.UI.Error("Error creating check: could not allocate a unique id")
	return 1
}

func parseCodes(s string) ([]any, error) {
	var out []any
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func countOwned(ctx context.Context, store repo.RecordStore, owner string) (int, error) {
	ids, err := store.List(ctx, domain.ChecksCollection)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		rec, err := store.Read(ctx, domain.ChecksCollection, id)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if ownerOf(rec) == owner {
			n++
		}
	}
	return n, nil
}

func (c *createCmd) Synopsis() string { return "Create a check" }
func (c *createCmd) Help() string     { return c.help }

const createHelp = `
Usage: checkctl create -owner=OWNER -url=HOST/PATH [options]

  Validates and stores a new check with a random id, then prints the id.
  An owner may hold at most max_checks checks.
`
