package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/swarm/pkg/config"
)

func newDownCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Stop and remove every container of the project",
		Long: `Stop and remove every container of the project, including containers
labelled with the project that swarm no longer tracks. Volumes, the stack
file and the secrets bundle are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			d, err := p.deployer(nil)
			if err != nil {
				return err
			}
			if err := d.Down(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Project %s is down\n", cfg.Project)
			return nil
		},
	}
}
