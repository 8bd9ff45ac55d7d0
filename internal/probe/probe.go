package probe

import (
	"context"

	"github.com/hamed0406/uptimeengine/internal/domain"
)

// Prober performs exactly one outbound request for a check and reports
// exactly one outcome. Probers never retry.
type Prober interface {
	Probe(ctx context.Context, c domain.Check) domain.Outcome
}

type ProberFunc func(ctx context.Context, c domain.Check) domain.Outcome

func (f ProberFunc) Probe(ctx context.Context, c domain.Check) domain.Outcome { return f(ctx, c) }
