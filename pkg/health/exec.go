package health

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Execer runs a command in a container and returns its output
type Execer interface {
	Exec(ctx context.Context, id string, cmd []string) (string, error)
}

// ExecChecker reports healthy when a command inside a container exits
// zero and, if Contains is set, its output contains that text
type ExecChecker struct {
	ContainerID string
	Command     []string
	Contains    string
	Timeout     time.Duration
	Runtime     Execer
}

// NewExecChecker creates a checker running command in a container
func NewExecChecker(rt Execer, containerID string, command ...string) *ExecChecker {
	return &ExecChecker{
		ContainerID: containerID,
		Command:     command,
		Timeout:     10 * time.Second,
		Runtime:     rt,
	}
}

func (e *ExecChecker) Check(ctx context.Context) Result {
	start := time.Now()
	result := Result{CheckedAt: start}

	if len(e.Command) == 0 {
		result.Message = "no command specified"
		result.Duration = time.Since(start)
		return result
	}

	execCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	out, err := e.Runtime.Exec(execCtx, e.ContainerID, e.Command)
	result.Duration = time.Since(start)

	switch {
	case err != nil:
		result.Message = fmt.Sprintf("command failed: %v", err)
	case e.Contains != "" && !strings.Contains(out, e.Contains):
		result.Message = fmt.Sprintf("output does not contain %q", e.Contains)
	default:
		result.Healthy = true
		result.Message = "command succeeded"
	}
	return result
}

func (e *ExecChecker) Type() CheckType {
	return CheckTypeExec
}
