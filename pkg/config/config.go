package config

import (
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/spf13/pflag"

	"github.com/cuemby/swarm/pkg/auth"
	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/runtime"
)

// Defaults
const (
	DefaultDataDir         = "vol"
	DefaultProject         = "stack"
	DefaultNetwork         = "regtest"
	DefaultListen          = ":8000"
	DefaultShutdownTimeout = 10 * time.Second
)

var projectName = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// bitcoin networks the builders know
var networks = map[string]bool{
	"bitcoin": true,
	"mainnet": true,
	"testnet": true,
	"regtest": true,
	"simnet":  true,
}

// Config is the process configuration
type Config struct {
	DataDir         string        `yaml:"data_dir"`
	Project         string        `yaml:"project"`
	Network         string        `yaml:"network"`
	Host            string        `yaml:"host,omitempty"`
	Listen          string        `yaml:"listen"`
	LogLevel        string        `yaml:"log_level"`
	LogJSON         bool          `yaml:"log_json"`
	DockerRun       bool          `yaml:"docker_run"`
	LogTail         int           `yaml:"log_tail"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// New returns a Config with defaults applied
func New() *Config {
	return &Config{
		DataDir:         DefaultDataDir,
		Project:         DefaultProject,
		Network:         DefaultNetwork,
		Listen:          DefaultListen,
		LogLevel:        string(log.InfoLevel),
		LogTail:         runtime.DefaultLogTail,
		TokenTTL:        auth.DefaultTokenTTL,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// BindFlags attaches the configuration flags to fs and returns their names
func (c *Config) BindFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "Directory holding project state and volumes")
	names = append(names, "data-dir")
	fs.StringVarP(&c.Project, "project", "p", c.Project, "Project name; one stack per project")
	names = append(names, "project")
	fs.StringVar(&c.Network, "network", c.Network, "Bitcoin network of a new stack: bitcoin, testnet, regtest or simnet")
	names = append(names, "network")
	fs.StringVar(&c.Host, "host", c.Host, "Public domain of a new stack; enables the reverse proxy")
	names = append(names, "host")
	fs.StringVar(&c.Listen, "listen", c.Listen, "Address of the control API")
	names = append(names, "listen")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error")
	names = append(names, "log-level")
	fs.BoolVar(&c.LogJSON, "log-json", c.LogJSON, "Emit JSON logs")
	names = append(names, "log-json")
	fs.BoolVar(&c.DockerRun, "docker-run", c.DockerRun, "Address services by docker hostname, for running inside the stack network")
	names = append(names, "docker-run")
	fs.IntVar(&c.LogTail, "log-tail", c.LogTail, "Number of log lines returned by /logs")
	names = append(names, "log-tail")
	fs.DurationVar(&c.TokenTTL, "token-ttl", c.TokenTTL, "Lifetime of issued tokens")
	names = append(names, "token-ttl")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	names = append(names, "shutdown-timeout")
	return names
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if !projectName.MatchString(c.Project) {
		return fmt.Errorf("invalid project name %q", c.Project)
	}
	if !networks[c.Network] {
		return fmt.Errorf("unknown network %q", c.Network)
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	switch log.Level(c.LogLevel) {
	case log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel:
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.LogTail <= 0 {
		return fmt.Errorf("log tail must be positive, got %d", c.LogTail)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative")
	}
	return nil
}

// DockerNetwork is the name of the project's docker network
func (c *Config) DockerNetwork() string {
	return "sphinx-" + c.Project
}

// Log returns the logger configuration
func (c *Config) Log() log.Config {
	return log.Config{Level: log.ParseLevel(c.LogLevel), JSONOutput: c.LogJSON}
}
