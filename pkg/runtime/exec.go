package runtime

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
)

// execPollInterval is how often exec inspect is polled for completion
var execPollInterval = 100 * time.Millisecond

// Exec runs cmd inside a running container and returns its combined
// output. It waits until the exec process has exited and fails on a non
// zero exit code.
func (r *DockerRuntime) Exec(ctx context.Context, id string, cmd []string) (string, error) {
	exec, err := r.cli.ContainerExecCreate(ctx, id, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create exec: %w", err)
	}

	resp, err := r.cli.ContainerExecAttach(ctx, exec.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to attach exec: %w", err)
	}

	var out bytes.Buffer
	_, err = stdcopy.StdCopy(&out, &out, resp.Reader)
	resp.Close()
	if err != nil {
		return "", fmt.Errorf("failed to read exec output: %w", err)
	}

	// the output stream can close before the process is reaped
	for {
		inspect, err := r.cli.ContainerExecInspect(ctx, exec.ID)
		if err != nil {
			return "", fmt.Errorf("failed to inspect exec: %w", err)
		}
		if !inspect.Running {
			if inspect.ExitCode != 0 {
				return out.String(), fmt.Errorf("exec %v: exit code %d", cmd, inspect.ExitCode)
			}
			return out.String(), nil
		}

		select {
		case <-ctx.Done():
			return out.String(), ctx.Err()
		case <-time.After(execPollInterval):
		}
	}
}

// ReadFile copies one file out of a container. ErrContainerNotFound means
// the container does not exist; ErrFileNotReady means it exists but has not
// written the file yet.
func (r *DockerRuntime) ReadFile(ctx context.Context, name, path string) ([]byte, error) {
	id, found, err := r.ContainerID(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, name)
	}

	rc, _, err := r.cli.CopyFromContainer(ctx, id, path)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s:%s", ErrFileNotReady, name, path)
		}
		return nil, fmt.Errorf("failed to copy %s from %s: %w", path, name, err)
	}
	defer rc.Close()

	tr := tar.NewReader(rc)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s:%s", ErrFileNotReady, name, path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive of %s: %w", path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: %s:%s is empty", ErrFileNotReady, name, path)
		}
		return data, nil
	}
}
