// cmd/preflight/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/hamed0406/uptimeengine/internal/config"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("ENGINE_CONFIG"), "path to a YAML config file")
	flag.Parse()
	os.Exit(preflight(*cfgPath, os.Stdout, os.Stderr))
}

func preflight(path string, stdout, stderr io.Writer) int {
	fail := func(msg string) { fmt.Fprintln(stderr, "✖", msg) }
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	cfg, err := config.Load(path)
	if err != nil {
		fail(err.Error())
		return 1
	}

	ok("env=" + cfg.Env)
	ok("store.driver=" + cfg.Store.Driver)
	ok("engine.interval=" + cfg.Engine.Interval.String())
	ok("ops.addr=" + cfg.Ops.Addr)

	for _, w := range cfg.Warnings() {
		warn(w)
	}

	if errs := multierr.Errors(cfg.Validate()); len(errs) > 0 {
		for _, e := range errs {
			fail(e.Error())
		}
		return 1
	}

	ok("preflight passed")
	return 0
}
