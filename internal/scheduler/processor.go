package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/repo"
)

// Processed describes what the processor did with one outcome.
type Processed struct {
	Check    domain.Check // with the new state and lastChecked applied
	Alerted  bool
	AlertErr error
}

// Processor turns an outcome into a persisted state and, on a state change
// after the first cycle, an alert.
type Processor struct {
	store      repo.RecordStore
	dispatcher *Dispatcher
	log        *zap.Logger
	metrics    *Metrics
	now        func() time.Time
}

func NewProcessor(store repo.RecordStore, d *Dispatcher, log *zap.Logger, m *Metrics) *Processor {
	return &Processor{store: store, dispatcher: d, log: log, metrics: m, now: time.Now}
}

// Process writes the new state back onto rec, the document stored under
// key, and dispatches an alert when warranted. The returned error is only
// set when the update failed, in which case no alert is sent.
func (p *Processor) Process(ctx context.Context, key string, rec domain.Record, c domain.Check, out domain.Outcome) (Processed, error) {
	newState := out.StateFor(c)
	alert := c.HasPriorCycle() && c.State.OrDown() != newState

	updated := c
	updated.State = newState
	updated.LastChecked = domain.NowMillis(p.now())

	doc := rec.Clone()
	if rec == nil {
		doc = c.Record()
	}
	doc["state"] = string(updated.State)
	doc["lastChecked"] = updated.LastChecked

	if err := p.store.Update(ctx, domain.ChecksCollection, key, doc); err != nil {
		p.metrics.failed("persist")
		p.log.Warn("check_persist_error",
			zap.String("check_id", key),
			zap.Error(err),
		)
		return Processed{Check: updated}, fmt.Errorf("update check %s: %w", key, err)
	}

	res := Processed{Check: updated}
	if alert {
		res.Alerted = true
		res.AlertErr = p.dispatcher.Dispatch(ctx, updated)
	}
	return res, nil
}
