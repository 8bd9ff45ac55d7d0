package probe

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/hamed0406/uptimeengine/internal/domain"
)

// DNSDiagnostics annotates transport failures with the resolver's view of
// the target host, e.g. "connection refused dns=NXDOMAIN". Successful
// outcomes and timeouts pass through untouched. The probe and the lookup
// share the check's timeout; a lookup that no longer fits is skipped.
type DNSDiagnostics struct {
	Inner    Prober
	Resolver *net.Resolver
	Timeout  time.Duration
}

func NewDNSDiagnostics(inner Prober) *DNSDiagnostics {
	return &DNSDiagnostics{Inner: inner, Timeout: defaultDNSTimeout}
}

func (d *DNSDiagnostics) Probe(ctx context.Context, c domain.Check) domain.Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout())
	defer cancel()

	out := d.Inner.Probe(ctx, c)
	if !out.Error || out.Reason == domain.ReasonTimeout {
		return out
	}
	budget := d.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < budget || budget <= 0 {
			budget = left
		}
	}
	if budget <= 0 {
		return out
	}
	st := CheckDNS(ctx, d.Resolver, extractHost(c.Target()), budget)
	if ctx.Err() != nil {
		// the lookup was cut short by the check deadline, not by DNS
		return out
	}
	if st.Class != DNSResolves {
		out.Reason = out.Reason + " dns=" + string(st.Class)
	}
	return out
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
