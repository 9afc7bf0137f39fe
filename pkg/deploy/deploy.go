package deploy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cuemby/swarm/pkg/health"
	"github.com/cuemby/swarm/pkg/images"
	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/metrics"
	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/storage"
	"github.com/cuemby/swarm/pkg/types"
	"github.com/cuemby/swarm/pkg/volume"
	"golang.org/x/sync/errgroup"
)

// Runtime is the container engine surface deploy needs
type Runtime interface {
	EnsureNetwork(ctx context.Context, name string) error
	EnsureRunning(ctx context.Context, spec *runtime.ContainerSpec) (string, error)
	ContainerID(ctx context.Context, name string) (string, bool, error)
	StopAndRemove(ctx context.Context, id string) error
	ReadFile(ctx context.Context, name, path string) ([]byte, error)
	ProjectContainers(ctx context.Context, project string) (map[string]string, error)
}

// Connector registers API clients for a node once its container runs
type Connector interface {
	Connect(ctx context.Context, img types.Image, stack *types.Stack) error
	Disconnect(name string)
}

// Config holds what a Deployer needs
type Config struct {
	Project   string
	Network   string
	Runtime   Runtime
	Volumes   *volume.LocalDriver
	Ledger    storage.InstanceStore
	Secrets   security.Secrets
	Connector Connector

	// ArtifactRetry bounds the wait for files written by dependencies
	ArtifactRetry health.RetryConfig

	// StopParallelism bounds concurrent removals during Down
	StopParallelism int
}

// Deployer materializes a stack as containers and tears it down
type Deployer struct {
	cfg Config
}

// NewDeployer creates a deployer
func NewDeployer(cfg Config) (*Deployer, error) {
	if cfg.Runtime == nil {
		return nil, errors.New("runtime is required")
	}
	if cfg.Volumes == nil {
		return nil, errors.New("volume driver is required")
	}
	if cfg.Network == "" {
		cfg.Network = cfg.Project
	}
	if cfg.ArtifactRetry.Attempts == 0 {
		cfg.ArtifactRetry = health.ArtifactRetry
	}
	if cfg.StopParallelism <= 0 {
		cfg.StopParallelism = 4
	}
	return &Deployer{cfg: cfg}, nil
}

// Up starts every internal node in dependency order, connecting clients
// as nodes come up. Nodes already running are left untouched.
func (d *Deployer) Up(ctx context.Context, stack *types.Stack) error {
	logger := log.WithProject(d.cfg.Project)

	ordered, err := Order(stack.Nodes)
	if err != nil {
		return err
	}
	if err := d.cfg.Runtime.EnsureNetwork(ctx, d.cfg.Network); err != nil {
		return err
	}

	for _, img := range ordered {
		name := img.Meta().Name
		if _, err := d.Start(ctx, img, stack); err != nil {
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		if d.cfg.Connector != nil {
			if err := d.cfg.Connector.Connect(ctx, img, stack); err != nil {
				return fmt.Errorf("failed to connect to %s: %w", name, err)
			}
		}
	}

	logger.Info().Int("nodes", len(ordered)).Msg("Stack is up")
	return nil
}

// Start materializes one node. Artifacts its builder needs are fetched
// from running dependencies first, retrying while they are not written.
func (d *Deployer) Start(ctx context.Context, img types.Image, stack *types.Stack) (string, error) {
	name := img.Meta().Name
	logger := log.WithNode(name)

	refs, err := images.Requirements(img, stack.Nodes)
	if err != nil {
		return "", err
	}
	artifacts := make(images.Artifacts, len(refs))
	for _, ref := range refs {
		data, err := d.Fetch(ctx, ref)
		if err != nil {
			return "", err
		}
		artifacts[ref] = data
	}

	spec, err := images.Build(img, &images.BuildContext{
		Project:   d.cfg.Project,
		Volumes:   d.cfg.Volumes,
		Nodes:     stack.Nodes,
		Secrets:   d.cfg.Secrets,
		Artifacts: artifacts,
		Network:   d.cfg.Network,
	})
	if err != nil {
		return "", err
	}

	if err := d.cfg.Volumes.Create(d.cfg.Project, name); err != nil {
		return "", err
	}

	_, existed, err := d.cfg.Runtime.ContainerID(ctx, spec.Hostname)
	if err != nil {
		return "", err
	}
	id, err := d.cfg.Runtime.EnsureRunning(ctx, spec)
	if err != nil {
		return "", err
	}
	if !existed {
		metrics.ContainersCreated.Inc()
	}

	if d.cfg.Ledger != nil {
		err := d.cfg.Ledger.PutInstance(&storage.Instance{
			Name:        name,
			ContainerID: id,
			Image:       spec.Image,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to record instance")
		}
	}
	return id, nil
}

// Fetch reads a file from a running container, waiting while the
// container has not written it yet
func (d *Deployer) Fetch(ctx context.Context, ref images.ArtifactRef) ([]byte, error) {
	logger := log.WithComponent("deploy")
	var data []byte
	err := health.Retry(ctx, d.cfg.ArtifactRetry,
		func(err error) bool { return errors.Is(err, runtime.ErrFileNotReady) },
		func() error {
			var err error
			data, err = d.cfg.Runtime.ReadFile(ctx, ref.Container, ref.Path)
			if err != nil {
				logger.Debug().Str("artifact", ref.String()).Err(err).Msg("waiting for artifact")
			}
			return err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	return data, nil
}

// Down stops and removes every container of the project, whether recorded
// in the ledger or only carrying the project label
func (d *Deployer) Down(ctx context.Context) error {
	logger := log.WithProject(d.cfg.Project)

	targets := make(map[string]string) // container or node name -> id
	if d.cfg.Ledger != nil {
		insts, err := d.cfg.Ledger.ListInstances()
		if err != nil {
			return fmt.Errorf("failed to list instances: %w", err)
		}
		for _, inst := range insts {
			targets[images.Domain(inst.Name)] = inst.ContainerID
		}
	}
	labelled, err := d.cfg.Runtime.ProjectContainers(ctx, d.cfg.Project)
	if err != nil {
		return err
	}
	for name, id := range labelled {
		targets[name] = id
	}

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.StopParallelism)
	for _, name := range names {
		name := name
		id := targets[name]
		g.Go(func() error {
			if err := d.cfg.Runtime.StopAndRemove(gctx, id); err != nil && !errors.Is(err, runtime.ErrContainerNotFound) {
				return fmt.Errorf("failed to remove %s: %w", name, err)
			}
			metrics.ContainersRemoved.Inc()
			logger.Info().Str("container", name).Msg("Container removed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, name := range names {
		node := nodeName(name)
		if d.cfg.Connector != nil {
			d.cfg.Connector.Disconnect(node)
		}
		if d.cfg.Ledger != nil {
			if err := d.cfg.Ledger.DeleteInstance(node); err != nil && !errors.Is(err, storage.ErrNotFound) {
				logger.Warn().Err(err).Str("node", node).Msg("failed to delete instance record")
			}
		}
	}
	return nil
}

func nodeName(container string) string {
	return strings.TrimSuffix(container, images.DomainSuffix)
}
