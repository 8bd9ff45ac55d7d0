package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/uptimeengine/internal/app"
	"github.com/hamed0406/uptimeengine/internal/config"
	"github.com/hamed0406/uptimeengine/internal/httpapi"
	apimw "github.com/hamed0406/uptimeengine/internal/httpapi/middleware"
	"github.com/hamed0406/uptimeengine/internal/logging"
	"github.com/hamed0406/uptimeengine/internal/obs"
	"github.com/hamed0406/uptimeengine/internal/scheduler"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("ENGINE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Dir:     cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Stdout:  cfg.Log.Stdout,
		Service: cfg.OTel.ServiceName,
		Env:     cfg.Env,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("engine_exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ot, err := obs.SetupOTel(ctx, obs.OTelConfig{
		Enable:      cfg.OTel.Enable,
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.OTel.ServiceName,
		Env:         cfg.Env,
		SampleRatio: cfg.OTel.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ot.Shutdown(sctx)
	}()

	store, closeStore, err := app.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	transport, closeTransport := app.Transport(cfg.Notify, logger)
	defer func() { _ = closeTransport() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := scheduler.NewMetrics(reg)

	proc := scheduler.NewProcessor(store, scheduler.NewDispatcher(transport, logger, metrics), logger, metrics)
	engine := scheduler.NewEngine(logger, store, app.Prober(cfg.Engine), proc, metrics, cfg.Engine.Interval, cfg.Engine.Concurrency)

	ops := httpapi.NewServer(logger, store, engine, reg)
	keys := apimw.Keys{Public: cfg.Ops.PublicKeys, Admin: cfg.Ops.AdminKeys}
	srv := httpapi.HTTPServer(cfg.Ops.Addr, ops.Router(keys, cfg.Ops.CORSOrigins,
		cfg.Ops.PublicRPM, cfg.Ops.PublicBurst, cfg.Ops.AdminRPM, cfg.Ops.AdminBurst))

	logger.Info("engine_boot",
		zap.String("store", cfg.Store.Driver),
		zap.String("ops_addr", cfg.Ops.Addr),
		zap.Duration("interval", cfg.Engine.Interval),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := engine.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("ops_listen", zap.String("addr", cfg.Ops.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = g.Wait()
	logger.Info("engine_shutdown")
	return err
}
