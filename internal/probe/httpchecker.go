package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hamed0406/uptimeengine/internal/domain"
)

// drained before close so the connection can be reused
const maxDrain = 4 << 10

type HTTPProber struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPProber returns a prober that reports redirects as-is instead of
// following them. The per-check timeout is applied per request, so the
// client carries none.
func NewHTTPProber(userAgent string) *HTTPProber {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
	return &HTTPProber{
		Client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		UserAgent: userAgent,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, c domain.Check) domain.Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout())
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, c.HTTPMethod(), c.Target(), nil)
	if err != nil {
		return domain.Outcome{Error: true, Reason: err.Error()}
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := p.Client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return domain.Outcome{Error: true, Reason: failureReason(ctx, err), Latency: latency}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	resp.Body.Close()

	return domain.Outcome{ResponseCode: resp.StatusCode, Latency: latency}
}

func failureReason(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.ReasonTimeout
	}
	// strip the "Get \"https://...\": " prefix; the target is logged separately
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}
