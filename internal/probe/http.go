package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/avelis/probed/internal/domain"
)

// HTTPProber issues a single GET per probe. A non-2xx/3xx status is still
// a successful measurement; classifying it as healthy is the consumer's
// concern. Redirects are not followed so latency reflects one request.
type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, target string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failure(domain.ErrProtocol, err.Error())
	}

	start := time.Now()
	resp, err := p.Client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return failure(classifyHTTPError(ctx, err), err.Error())
	}
	defer resp.Body.Close()

	return success(latency, resp.StatusCode)
}

func classifyHTTPError(ctx context.Context, err error) domain.ErrorKind {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.ErrConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.ErrConnection
	}
	// reached the server but the exchange itself broke
	return domain.ErrProtocol
}
