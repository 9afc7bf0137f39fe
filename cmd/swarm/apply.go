package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cuemby/swarm/pkg/config"
	"github.com/cuemby/swarm/pkg/types"
)

func newApplyCmd(cfg *config.Config) *cobra.Command {
	var (
		file string
		up   bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Replace the project's stack from a YAML or JSON file",
		Long: `Replace the project's stack definition from a file.

The file has the same shape as the persisted config.json. Users are kept
from the current stack when the file lists none, and missing secrets are
generated.

Examples:
  # Replace the stack
  swarm apply -f stack.yaml

  # Replace the stack and bring it up
  swarm apply -f stack.yaml --up`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			stack, err := readStackFile(file)
			if err != nil {
				return err
			}
			if len(stack.Users) == 0 {
				stack.Users = p.stack.Users
			}
			if err := fillSecrets(p.store, cfg.Project, stack, p.secrets); err != nil {
				return err
			}
			if err := stack.Validate(); err != nil {
				return err
			}
			if err := p.store.SaveStack(cfg.Project, stack); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Stack applied: %d nodes\n", len(stack.Nodes))

			if !up {
				return nil
			}
			d, err := p.deployer(nil)
			if err != nil {
				return err
			}
			return d.Up(cmd.Context(), stack)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Stack file to apply (required)")
	cmd.Flags().BoolVar(&up, "up", false, "Start the containers after applying")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readStackFile parses a stack from YAML or JSON. YAML is converted to
// JSON first so the node and image decoding is shared with config.json.
func readStackFile(path string) (*types.Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%s is empty", path)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}
	var stack types.Stack
	if err := json.Unmarshal(raw, &stack); err != nil {
		return nil, fmt.Errorf("invalid stack in %s: %w", path, err)
	}
	return &stack, nil
}
