package runtime

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"

	"github.com/cuemby/swarm/pkg/log"
	swarmnet "github.com/cuemby/swarm/pkg/network"
)

// DockerRuntime drives containers through the Docker engine API
type DockerRuntime struct {
	cli client.APIClient
}

// NewDockerRuntime wraps an engine client. Tests pass a fake.
func NewDockerRuntime(cli client.APIClient) *DockerRuntime {
	return &DockerRuntime{cli: cli}
}

// NewSharedDockerRuntime uses the process-wide client
func NewSharedDockerRuntime() (*DockerRuntime, error) {
	cli, err := SharedClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return NewDockerRuntime(cli), nil
}

// Ping checks the engine is reachable
func (r *DockerRuntime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach docker daemon: %w", err)
	}
	return nil
}

// ContainerID looks up a container by exact name, in any state
func (r *DockerRuntime) ContainerID(ctx context.Context, name string) (string, bool, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to list containers: %w", err)
	}

	// the name filter matches substrings
	want := "/" + name
	for _, c := range containers {
		for _, n := range c.Names {
			if n == want {
				return c.ID, true, nil
			}
		}
	}
	return "", false, nil
}

// EnsureRunning returns the id of the container named after the spec's
// hostname, creating and starting it when absent. An existing container is
// returned as is.
func (r *DockerRuntime) EnsureRunning(ctx context.Context, spec *ContainerSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	logger := log.WithNode(spec.Hostname)

	id, found, err := r.ContainerID(ctx, spec.Hostname)
	if err != nil {
		return "", err
	}
	if found {
		logger.Info().Str("container_id", shortID(id)).Msg("Container already exists")
		return id, nil
	}

	if err := r.pullIfRemote(ctx, spec.Image); err != nil {
		return "", err
	}

	for _, v := range spec.Volumes {
		if err := r.CreateVolume(ctx, v); err != nil {
			return "", err
		}
	}

	ports, err := swarmnet.Publish(spec.Ports...)
	if err != nil {
		return "", err
	}

	labels := make(map[string]string, len(spec.Labels)+1)
	for k, v := range spec.Labels {
		labels[k] = v
	}
	if spec.Project != "" {
		labels[LabelProject] = spec.Project
	}

	config := &container.Config{
		Image:        spec.Image,
		Hostname:     spec.Hostname,
		Env:          spec.Env,
		Cmd:          spec.Cmd,
		ExposedPorts: ports.Exposed,
		Labels:       labels,
	}
	hostConfig := &container.HostConfig{
		Binds:        spec.Binds,
		PortBindings: ports.Bindings,
		ExtraHosts:   []string{ExtraHost},
	}

	var netConfig *network.NetworkingConfig
	if spec.Network != "" {
		netConfig = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {Aliases: []string{spec.Hostname}},
			},
		}
	}

	resp, err := r.cli.ContainerCreate(ctx, config, hostConfig, netConfig, nil, spec.Hostname)
	if err != nil {
		return "", fmt.Errorf("failed to create container %s: %w", spec.Hostname, err)
	}

	if err := r.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container %s: %w", spec.Hostname, err)
	}

	logger.Info().
		Str("container_id", shortID(resp.ID)).
		Str("image", spec.Image).
		Msg("Container started")
	return resp.ID, nil
}

func (r *DockerRuntime) pullIfRemote(ctx context.Context, ref string) error {
	pullRef, remote, err := PullRef(ref)
	if err != nil {
		return err
	}
	if !remote {
		return nil
	}

	log.Logger.Info().Str("image", pullRef).Msg("Pulling image")
	rc, err := r.cli.ImagePull(ctx, pullRef, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", pullRef, err)
	}
	defer rc.Close()

	// the pull completes when the progress stream ends
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", pullRef, err)
	}
	return nil
}

// StopAndRemove stops a container with a grace period, then force removes it
func (r *DockerRuntime) StopAndRemove(ctx context.Context, id string) error {
	timeout := StopTimeoutSeconds
	if err := r.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to stop container %s: %w", shortID(id), err)
	}
	if err := r.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", shortID(id), err)
	}
	return nil
}

// CreateVolume creates a named local volume. Docker treats an existing
// volume of the same name as success.
func (r *DockerRuntime) CreateVolume(ctx context.Context, name string) error {
	if _, err := r.cli.VolumeCreate(ctx, volume.CreateOptions{Name: name, Driver: "local"}); err != nil {
		return fmt.Errorf("failed to create volume %s: %w", name, err)
	}
	return nil
}

// EnsureNetwork creates an attachable bridge network unless one with the
// same name exists
func (r *DockerRuntime) EnsureNetwork(ctx context.Context, name string) error {
	nets, err := r.cli.NetworkList(ctx, network.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	for _, n := range nets {
		if n.Name == name {
			return nil
		}
	}

	_, err = r.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver:     "bridge",
		Attachable: true,
	})
	if err != nil && !errdefs.IsConflict(err) {
		return fmt.Errorf("failed to create network %s: %w", name, err)
	}
	log.Logger.Info().Str("network", name).Msg("Network created")
	return nil
}

// ProjectContainers lists the containers labelled with a project
func (r *DockerRuntime) ProjectContainers(ctx context.Context, project string) (map[string]string, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelProject+"="+project)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	out := make(map[string]string, len(containers))
	for _, c := range containers {
		if len(c.Names) == 0 {
			continue
		}
		out[strings.TrimPrefix(c.Names[0], "/")] = c.ID
	}
	return out, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
