// Package app builds the engine's collaborators from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/config"
	"github.com/hamed0406/uptimeengine/internal/notify"
	"github.com/hamed0406/uptimeengine/internal/probe"
	"github.com/hamed0406/uptimeengine/internal/repo"
	"github.com/hamed0406/uptimeengine/internal/repo/file"
	"github.com/hamed0406/uptimeengine/internal/repo/memory"
	"github.com/hamed0406/uptimeengine/internal/repo/postgres"
	"github.com/hamed0406/uptimeengine/internal/repo/redis"
)

// OpenStore connects the configured record store. The returned close func
// is never nil.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (repo.RecordStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case "memory":
		return memory.New(), noop, nil
	case "file":
		s, err := file.New(cfg.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case "postgres":
		s, err := postgres.New(ctx, postgres.Config{
			URL:          cfg.DatabaseURL,
			MaxConns:     cfg.MaxConns,
			QueryTimeout: cfg.QueryTimeout,
		}, log)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres store: %w", err)
		}
		return s, func() error { s.Close(); return nil }, nil
	case "redis":
		s, err := redis.New(ctx, redis.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPass,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisPrefix,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("redis store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Transport fans alerts out to every configured transport, falling back
// to a log-only transport when none is configured.
func Transport(cfg config.NotifyConfig, log *zap.Logger) (notify.Transport, func() error) {
	var (
		multi   notify.Multi
		closers []func() error
	)
	if cfg.Twilio.Enabled() {
		multi = append(multi, notify.NewTwilio(notify.TwilioConfig{
			AccountSID:  cfg.Twilio.AccountSID,
			AuthToken:   cfg.Twilio.AuthToken,
			FromPhone:   cfg.Twilio.FromPhone,
			CountryCode: cfg.Twilio.CountryCode,
		}))
	}
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		multi = append(multi, s)
	}
	if k := notify.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log); k != nil {
		multi = append(multi, k)
		closers = append(closers, k.Close)
	}

	closeAll := func() error {
		var err error
		for _, c := range closers {
			err = multierr.Append(err, c())
		}
		return err
	}
	switch len(multi) {
	case 0:
		log.Warn("notify_log_only")
		return notify.Log{Logger: log}, closeAll
	case 1:
		return multi[0], closeAll
	default:
		return multi, closeAll
	}
}

// Prober returns the HTTP prober, wrapped with DNS diagnostics when enabled.
func Prober(cfg config.EngineConfig) probe.Prober {
	var p probe.Prober = probe.NewHTTPProber(cfg.UserAgent)
	if cfg.DNSDiagnostics {
		p = probe.NewDNSDiagnostics(p)
	}
	return p
}
