package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/swarm/pkg/api"
	"github.com/cuemby/swarm/pkg/auth"
	"github.com/cuemby/swarm/pkg/broadcast"
	"github.com/cuemby/swarm/pkg/clients"
	"github.com/cuemby/swarm/pkg/config"
	"github.com/cuemby/swarm/pkg/deploy"
	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/manager"
	"github.com/cuemby/swarm/pkg/metrics"
	"github.com/cuemby/swarm/pkg/security"
)

func newStackCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stack",
		Short: "Bring the stack up and serve the control API",
		Long: `Bring the project's stack up and serve the control API until interrupted.

On first run a default stack and a secrets bundle are written under
<data-dir>/<project>. Containers already running are left untouched.
Stopping swarm leaves the containers running; use "swarm down" to remove
them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runStack(ctx, cfg)
		},
	}
}

func runStack(ctx context.Context, cfg *config.Config) error {
	logger := log.WithProject(cfg.Project)

	p, err := openProject(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()
	metrics.RegisterComponent("docker", true, "")
	metrics.RegisterComponent("stack", true, "")

	authn, err := auth.New(p.secrets[security.KeyJWTKey], cfg.TokenTTL)
	if err != nil {
		return err
	}

	registry := clients.NewRegistry()
	defer registry.Close()

	mgr, err := manager.NewManager(manager.Config{
		Project:    cfg.Project,
		Stack:      p.stack,
		Secrets:    p.secrets,
		Store:      p.store,
		Auth:       authn,
		Clients:    registry,
		Logs:       p.rt,
		Containers: p.rt,
		LogTail:    cfg.LogTail,
	})
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	connector := deploy.NewClientConnector(registry, p.secrets, nil, cfg.DockerRun)
	connector.Execer = p.rt
	d, err := p.deployer(connector)
	if err != nil {
		return err
	}

	snapshot, err := mgr.Snapshot()
	if err != nil {
		return err
	}
	logger.Info().Int("nodes", len(snapshot.Nodes)).Str("network", snapshot.Network).Msg("Starting stack")
	if err := d.Up(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to bring stack up: %w", err)
	}

	collector := metrics.NewCollector(mgr)
	collector.Start()
	defer collector.Stop()

	hub := broadcast.NewHub(p.rt, broadcast.DefaultCapacity)
	srv := api.NewServer(mgr, hub, Version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Listen)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("API shutdown incomplete")
	}
	logger.Info().Msg("Shutdown complete")
	return nil
}
