package runtime

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/cuemby/swarm/pkg/log"
)

// DefaultLogTail is the number of lines Logs returns when tail is not positive
const DefaultLogTail = 100

// Logs returns the last tail lines of a container's combined stdout and
// stderr. Any failure, an unknown container included, yields an empty
// slice: missing logs are not an administrative error.
func (r *DockerRuntime) Logs(ctx context.Context, name string, tail int) []string {
	if tail <= 0 {
		tail = DefaultLogTail
	}

	rc, err := r.cli.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		logger := log.WithNode(name)
		logger.Debug().Err(err).Msg("Log fetch failed")
		return []string{}
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		logger := log.WithNode(name)
		logger.Debug().Err(err).Msg("Log demux failed")
		return []string{}
	}

	return splitLines(buf.String())
}

// Follow streams new log lines of a container until the log stream ends or
// ctx is cancelled. The channel is closed in both cases.
func (r *DockerRuntime) Follow(ctx context.Context, name string) (<-chan string, error) {
	rc, err := r.cli.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       "0",
	})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return nil, fmt.Errorf("failed to follow logs of %s: %w", name, err)
	}

	pr, pw := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(pw, pw, rc)
		rc.Close()
		pw.CloseWithError(err)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		defer pr.Close()

		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			logger := log.WithNode(name)
			logger.Debug().Err(err).Msg("Log stream ended")
		}
	}()

	return lines, nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
