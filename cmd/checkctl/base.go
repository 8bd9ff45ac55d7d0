package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/cli"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/app"
	"github.com/hamed0406/uptimeengine/internal/config"
	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
)

type storeOpener func(ctx context.Context, cfg *config.Config) (repo.RecordStore, func() error, error)

func openStore(ctx context.Context, cfg *config.Config) (repo.RecordStore, func() error, error) {
	return app.OpenStore(ctx, cfg.Store, zap.NewNop())
}

// base carries what every subcommand shares: the UI, the -config flag and
// the store it resolves to.
type base struct {
	UI         cli.Ui
	flags      *flag.FlagSet
	configPath string
	open       storeOpener
}

func newBase(ui cli.Ui, open storeOpener) base {
	b := base{UI: ui, open: open, flags: flag.NewFlagSet("", flag.ContinueOnError)}
	b.flags.StringVar(&b.configPath, "config", "", "Path to the engine YAML config. Environment overrides apply.")
	b.flags.SetOutput(&uiWriter{ui})
	return b
}

func (b *base) connect(ctx context.Context) (*config.Config, repo.RecordStore, func() error, error) {
	cfg, err := config.Load(b.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	store, closeFn, err := b.open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, store, closeFn, nil
}

// ownerOf reads the owner from either the current or the legacy field.
func ownerOf(rec domain.Record) string {
	for _, k := range []string{"ownerId", "userPhone"} {
		if s, ok := rec[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func flagUsage(help string, fs *flag.FlagSet) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(help))
	sb.WriteString("\n\nOptions:\n")
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(&sb, "\n  -%s=%s\n      %s\n", f.Name, f.DefValue, f.Usage)
	})
	return sb.String()
}

type uiWriter struct{ ui cli.Ui }

func (w *uiWriter) Write(p []byte) (int, error) {
	w.ui.Error(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
