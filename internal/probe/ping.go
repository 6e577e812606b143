package probe

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/avelis/probed/internal/domain"
)

// PingProber sends one ICMP echo per probe. It defaults to unprivileged
// UDP sockets so the agent can run without CAP_NET_RAW; set Privileged for
// raw sockets.
type PingProber struct {
	Privileged bool
}

func NewPingProber() *PingProber {
	return &PingProber{Privileged: os.Getuid() == 0}
}

func (p *PingProber) Probe(ctx context.Context, target string) Result {
	pinger, err := probing.NewPinger(target)
	if err != nil {
		return failure(domain.ErrUnreachable, err.Error())
	}
	pinger.SetPrivileged(p.Privileged)
	pinger.Count = 1

	if err := pinger.RunWithContext(ctx); err != nil {
		return failure(classifyPingError(ctx, err), err.Error())
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		// run finished without a reply: the deadline expired first
		return failure(domain.ErrTimeout, "no echo reply before deadline")
	}
	return success(stats.AvgRtt, -1)
}

func classifyPingError(ctx context.Context, err error) domain.ErrorKind {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	if errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) {
		return domain.ErrPermission
	}
	if errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return domain.ErrUnreachable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.ErrUnreachable
	}
	return domain.ErrUnreachable
}
