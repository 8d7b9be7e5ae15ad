package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/chmouel/lazyplaylist/internal/models"
)

// Prober checks whether a channel's stream answers.
type Prober struct {
	httpClient *http.Client
	userAgent  string
	minBytes   int
}

// NewProber returns a Prober whose requests time out after timeout. A stream is
// alive when it answers 200 and at least minBytes of body can be read.
func NewProber(timeout time.Duration, userAgent string, minBytes int) *Prober {
	return &Prober{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		minBytes:   minBytes,
	}
}

// Probe issues one GET for ch.URL.
func (p *Prober) Probe(ctx context.Context, ch models.Channel) models.ProbeResult {
	start := time.Now()
	res := p.probe(ctx, ch)
	res.Elapsed = time.Since(start)
	return res
}

func (p *Prober) probe(ctx context.Context, ch models.Channel) models.ProbeResult {
	res := models.ProbeResult{Channel: ch}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ch.URL, nil)
	if err != nil {
		res.Reason = models.ReasonError
		return res
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		res.Reason = failureReason(ctx, err)
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	res.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		res.Reason = fmt.Sprintf("http_%d", resp.StatusCode)
		return res
	}

	if p.minBytes > 0 {
		n, err := io.CopyN(io.Discard, resp.Body, int64(p.minBytes))
		if n < int64(p.minBytes) {
			res.Reason = models.ReasonNoData
			if err != nil && !errors.Is(err, io.EOF) {
				res.Reason = failureReason(ctx, err)
			}
			return res
		}
	}

	res.Alive = true
	res.Reason = models.ReasonOK
	return res
}

func failureReason(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.Canceled) {
		return models.ReasonCancelled
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return models.ReasonTimeout
	}
	return models.ReasonError
}
