package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cuemby/swarm/pkg/config"
	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/metrics"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// envAliases are environment names kept from earlier deployments
var envAliases = map[string]string{
	"docker-run": "DOCKER_RUN",
	"log-tail":   "LOG_TAIL_LENGTH",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "swarm",
		Short: "swarm - run a Lightning node stack on one docker host",
		Long: `swarm deploys bitcoind, lnd, the sphinx relay and their companions as
docker containers, keeps their credentials, and exposes a control API to
administer the running stack.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, configFile); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log.Init(cfg.Log())
			metrics.SetVersion(Version)
			return nil
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf(
		"swarm version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	cfg.BindFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("SWARM_CONFIG"), "Optional config file (yaml, json or toml)")

	cmd.AddCommand(
		newStackCmd(cfg),
		newDownCmd(cfg),
		newApplyCmd(cfg),
		newConfigCmd(cfg),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "swarm version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
		},
	}
}

// loadConfig fills every flag the user did not set from SWARM_<FLAG>
// environment variables, the legacy aliases, or the config file
func loadConfig(cmd *cobra.Command, configFile string) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("SWARM")
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, "SWARM_"+strings.ToUpper(strings.ReplaceAll(key, "-", "_")), env); err != nil {
			return err
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config %s: %w", configFile, err)
			}
		}
	}

	var setErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) || setErr != nil {
			return
		}
		if val := fmt.Sprintf("%v", v.Get(f.Name)); val != "" {
			if err := f.Value.Set(val); err != nil {
				setErr = fmt.Errorf("invalid value for %s: %w", f.Name, err)
			}
		}
	})
	return setErr
}
