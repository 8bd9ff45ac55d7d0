package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/domain"
	"github.com/hamed0406/uptimeengine/internal/notify"
)

// AlertMessage is the text sent to an owner when a check changes state.
func AlertMessage(c domain.Check) string {
	return fmt.Sprintf("Alert: Your check for %s %s is currently %s",
		c.HTTPMethod(), c.Target(), c.State.OrDown())
}

// Dispatcher formats alerts and hands them to a transport. Delivery is best
// effort: failures are logged and counted, never retried.
type Dispatcher struct {
	transport notify.Transport
	log       *zap.Logger
	metrics   *Metrics
}

func NewDispatcher(t notify.Transport, log *zap.Logger, m *Metrics) *Dispatcher {
	return &Dispatcher{transport: t, log: log, metrics: m}
}

func (d *Dispatcher) Dispatch(ctx context.Context, c domain.Check) error {
	msg := AlertMessage(c)
	if err := d.transport.Send(ctx, c.OwnerID, msg); err != nil {
		d.metrics.alert("failed")
		d.log.Warn("alert_send_error",
			zap.String("check_id", c.ID),
			zap.String("owner_id", c.OwnerID),
			zap.Error(err),
		)
		return fmt.Errorf("send alert for %s: %w", c.ID, err)
	}
	d.metrics.alert("sent")
	d.log.Info("alert_sent",
		zap.String("check_id", c.ID),
		zap.String("owner_id", c.OwnerID),
		zap.String("state", string(c.State)),
	)
	return nil
}
