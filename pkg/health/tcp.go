package health

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPChecker reports healthy when a TCP connection can be opened, used for
// services without an HTTP endpoint such as the chain node's RPC port
type TCPChecker struct {
	Address string
	Timeout time.Duration
}

// NewTCPChecker creates a checker for host:port
func NewTCPChecker(host, port string) *TCPChecker {
	return &TCPChecker{Address: net.JoinHostPort(host, port), Timeout: 5 * time.Second}
}

func (t *TCPChecker) Check(ctx context.Context) Result {
	start := time.Now()

	dialer := &net.Dialer{Timeout: t.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return Result{Message: fmt.Sprintf("connection failed: %v", err), CheckedAt: start, Duration: time.Since(start)}
	}
	conn.Close()

	return Result{Healthy: true, Message: "connected to " + t.Address, CheckedAt: start, Duration: time.Since(start)}
}

func (t *TCPChecker) Type() CheckType {
	return CheckTypeTCP
}
