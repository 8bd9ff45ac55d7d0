package notify

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrDisabled is returned by a transport that has no configuration.
var ErrDisabled = errors.New("transport disabled")

// Transport delivers a text message to a recipient address. For SMS the
// address is the owner's phone number.
type Transport interface {
	Send(ctx context.Context, recipient, message string) error
}

// Multi sends through every transport and reports all failures.
type Multi []Transport

func (m Multi) Send(ctx context.Context, recipient, message string) error {
	var errs error
	for _, t := range m {
		if t == nil {
			continue
		}
		errs = multierr.Append(errs, t.Send(ctx, recipient, message))
	}
	return errs
}

// Log is the dry-run transport used when nothing else is configured.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(ctx context.Context, recipient, message string) error {
	l.Logger.Info("notify_dry_run",
		zap.String("recipient", recipient),
		zap.String("message", message),
	)
	return nil
}
