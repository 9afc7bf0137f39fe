package main

import (
	"context"
	"fmt"

	"github.com/cuemby/swarm/pkg/auth"
	"github.com/cuemby/swarm/pkg/config"
	"github.com/cuemby/swarm/pkg/deploy"
	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/storage"
	"github.com/cuemby/swarm/pkg/types"
	"github.com/cuemby/swarm/pkg/volume"
)

// project is the persisted state of one project and the handles needed
// to act on it
type project struct {
	cfg     *config.Config
	store   *storage.FileStore
	ledger  *storage.BoltInstanceStore
	secrets security.Secrets
	stack   *types.Stack
	volumes *volume.LocalDriver
	rt      *runtime.DockerRuntime
}

// openProject loads or creates the secrets bundle and the stack, filling
// any missing secret, and connects to docker
func openProject(ctx context.Context, cfg *config.Config) (*project, error) {
	logger := log.WithProject(cfg.Project)

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	secrets, err := store.LoadSecrets(cfg.Project)
	if err != nil {
		return nil, err
	}
	if _, added, err := secrets.FillDefaults(); err != nil {
		return nil, err
	} else if added {
		if err := store.SaveSecrets(cfg.Project, secrets); err != nil {
			return nil, err
		}
	}

	stack, err := store.LoadStack(cfg.Project, func() (*types.Stack, error) {
		hash, err := auth.HashPassword(secrets[security.KeyAdminPassword])
		if err != nil {
			return nil, err
		}
		logger.Info().Str("user", types.DefaultAdminUsername).Msg("Admin password is in the project secrets file")
		return types.DefaultStack(cfg.Network, cfg.Host, secrets, hash)
	})
	if err != nil {
		return nil, err
	}
	if err := fillSecrets(store, cfg.Project, stack, secrets); err != nil {
		return nil, err
	}

	volumes, err := volume.NewLocalDriver(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	rt, err := runtime.NewSharedDockerRuntime()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to docker: %w", err)
	}
	if err := rt.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docker is not reachable: %w", err)
	}

	ledger, err := storage.NewBoltInstanceStore(store.ProjectDir(cfg.Project))
	if err != nil {
		return nil, err
	}

	return &project{
		cfg:     cfg,
		store:   store,
		ledger:  ledger,
		secrets: secrets,
		stack:   stack,
		volumes: volumes,
		rt:      rt,
	}, nil
}

// fillSecrets completes the stack's secret fields and persists whatever
// changed
func fillSecrets(store *storage.FileStore, name string, stack *types.Stack, secrets security.Secrets) error {
	stackChanged, secretsChanged, err := types.FillSecrets(stack, secrets)
	if err != nil {
		return err
	}
	if secretsChanged {
		if err := store.SaveSecrets(name, secrets); err != nil {
			return err
		}
	}
	if stackChanged {
		if err := store.SaveStack(name, stack); err != nil {
			return err
		}
	}
	return nil
}

func (p *project) Close() error {
	return p.ledger.Close()
}

// deployer returns a deployer for the project. connector may be nil.
func (p *project) deployer(connector *deploy.ClientConnector) (*deploy.Deployer, error) {
	dcfg := deploy.Config{
		Project: p.cfg.Project,
		Network: p.cfg.DockerNetwork(),
		Runtime: p.rt,
		Volumes: p.volumes,
		Ledger:  p.ledger,
		Secrets: p.secrets,
	}
	if connector != nil {
		dcfg.Connector = connector
	}
	d, err := deploy.NewDeployer(dcfg)
	if err != nil {
		return nil, err
	}
	if connector != nil && connector.Fetcher == nil {
		connector.Fetcher = d
	}
	return d, nil
}
