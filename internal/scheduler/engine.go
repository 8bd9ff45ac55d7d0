package scheduler

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/obs"
	"github.com/hamed0406/uptimeengine/internal/probe"
	"github.com/hamed0406/uptimeengine/internal/repo"
	"github.com/hamed0406/uptimeengine/internal/validate"
)

const DefaultInterval = 60 * time.Second

// CycleReport summarises one pass over the stored checks.
type CycleReport struct {
	Listed        int
	ReadErrors    int
	Invalid       int
	Probed        int
	Up            int
	Down          int
	PersistErrors int
	Alerts        int
	AlertErrors   int
	Duration      time.Duration
}

type Engine struct {
	Logger    *zap.Logger
	Store     repo.RecordStore
	Prober    probe.Prober
	Processor *Processor
	Metrics   *Metrics
	Tracer    trace.Tracer
	Interval  time.Duration
	// Concurrency caps in-flight checks per cycle; 0 means one goroutine
	// per check with no cap.
	Concurrency int

	cycleMu sync.Mutex // cycles never overlap, including forced ones
}

func NewEngine(
	logger *zap.Logger,
	store repo.RecordStore,
	prober probe.Prober,
	processor *Processor,
	metrics *Metrics,
	interval time.Duration,
	concurrency int,
) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if concurrency < 0 {
		concurrency = 0
	}
	return &Engine{
		Logger:      logger,
		Store:       store,
		Prober:      prober,
		Processor:   processor,
		Metrics:     metrics,
		Tracer:      otel.Tracer("github.com/hamed0406/uptimeengine/internal/scheduler"),
		Interval:    interval,
		Concurrency: concurrency,
	}
}

// Run does an immediate cycle, then one per tick, until ctx is cancelled.
// A cycle in progress when ctx ends is allowed to finish before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	t := time.NewTicker(e.Interval)
	defer t.Stop()

	e.Logger.Info("engine_started",
		zap.Duration("interval", e.Interval),
		zap.Int("concurrency", e.Concurrency),
	)

	e.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.Logger.Info("engine_stopped")
			return ctx.Err()
		case <-t.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle lists every check and runs the read, validate, probe and process
// pipeline for each one concurrently, returning once all have finished.
func (e *Engine) RunCycle(ctx context.Context) CycleReport {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	start := time.Now()
	ctx, span := e.Tracer.Start(ctx, "engine.cycle")
	defer span.End()

	var rep CycleReport
	ids, err := e.Store.List(ctx, domain.ChecksCollection)
	if err != nil {
		e.Metrics.failed("list")
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		e.Logger.Warn("cycle_list_error", zap.Error(err))
		return rep
	}
	rep.Listed = len(ids)
	span.SetAttributes(attribute.Int("checks.listed", len(ids)))
	if len(ids) == 0 {
		e.Logger.Debug("cycle_empty")
		e.Metrics.cycleDone(0, time.Since(start).Seconds())
		return rep
	}
	e.Logger.Debug("cycle_started", zap.Int("checks", len(ids)))

	// in-flight pipelines must not be cut short by shutdown
	pctx := context.WithoutCancel(ctx)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem chan struct{}
	)
	if e.Concurrency > 0 {
		sem = make(chan struct{}, e.Concurrency)
	}

	for _, id := range ids {
		if sem != nil {
			sem <- struct{}{}
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			r := e.checkOne(pctx, id)
			mu.Lock()
			rep.add(r)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	rep.Duration = time.Since(start)
	e.Metrics.cycleDone(rep.Listed, rep.Duration.Seconds())
	e.Logger.Info("cycle_finished",
		zap.Int("listed", rep.Listed),
		zap.Int("probed", rep.Probed),
		zap.Int("up", rep.Up),
		zap.Int("down", rep.Down),
		zap.Int("invalid", rep.Invalid),
		zap.Int("alerts", rep.Alerts),
		zap.Duration("took", rep.Duration),
	)
	return rep
}

func (e *Engine) checkOne(ctx context.Context, id string) CycleReport {
	var r CycleReport
	ctx, span := e.Tracer.Start(ctx, "engine.check", trace.WithAttributes(attribute.String("check.id", id)))
	defer span.End()
	log := obs.WithTrace(ctx, e.Logger)

	rec, err := e.Store.Read(ctx, domain.ChecksCollection, id)
	if err != nil {
		r.ReadErrors++
		e.Metrics.failed("read")
		span.RecordError(err)
		log.Warn("check_read_error", zap.String("check_id", id), zap.Error(err))
		return r
	}

	c, err := validate.Check(rec)
	if err != nil {
		r.Invalid++
		e.Metrics.failed("validate")
		span.SetStatus(codes.Error, "invalid check")
		log.Warn("check_invalid", zap.String("check_id", id), zap.Error(err))
		return r
	}
	if c.ID != id {
		r.Invalid++
		e.Metrics.failed("validate")
		span.SetStatus(codes.Error, "id mismatch")
		log.Warn("check_id_mismatch", zap.String("check_id", id), zap.String("document_id", c.ID))
		return r
	}

	out := e.Prober.Probe(ctx, c)
	r.Probed++
	newState := out.StateFor(c)
	e.Metrics.probed(string(newState), out.Latency.Seconds())
	span.SetAttributes(
		attribute.String("check.target", c.Target()),
		attribute.String("check.state", string(newState)),
		attribute.Int("http.status_code", out.ResponseCode),
	)
	log.Debug("check_probed",
		zap.String("check_id", id),
		zap.String("target", c.Target()),
		zap.Bool("error", out.Error),
		zap.String("reason", out.Reason),
		zap.Int("status", out.ResponseCode),
		zap.Duration("latency", out.Latency),
	)

	res, err := e.Processor.Process(ctx, id, rec, c, out)
	if err != nil {
		r.PersistErrors++
		span.RecordError(err)
		return r
	}
	if res.Check.State == domain.StateUp {
		r.Up++
	} else {
		r.Down++
	}
	if res.Alerted {
		r.Alerts++
		if res.AlertErr != nil {
			r.AlertErrors++
		}
	}
	return r
}

func (r *CycleReport) add(o CycleReport) {
	r.ReadErrors += o.ReadErrors
	r.Invalid += o.Invalid
	r.Probed += o.Probed
	r.Up += o.Up
	r.Down += o.Down
	r.PersistErrors += o.PersistErrors
	r.Alerts += o.Alerts
	r.AlertErrors += o.AlertErrors
}
