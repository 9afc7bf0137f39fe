package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/swarm/pkg/log"
)

func TestNewDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, "vol", c.DataDir)
	assert.Equal(t, "stack", c.Project)
	assert.Equal(t, "regtest", c.Network)
	assert.Equal(t, 100, c.LogTail)
	assert.Equal(t, 7*24*time.Hour, c.TokenTTL)
	assert.Equal(t, "sphinx-stack", c.DockerNetwork())
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data dir"},
		{name: "project with slash", mutate: func(c *Config) { c.Project = "../etc" }, wantErr: "invalid project"},
		{name: "uppercase project", mutate: func(c *Config) { c.Project = "Stack" }, wantErr: "invalid project"},
		{name: "unknown network", mutate: func(c *Config) { c.Network = "litecoin" }, wantErr: "unknown network"},
		{name: "mainnet alias", mutate: func(c *Config) { c.Network = "bitcoin" }},
		{name: "listen without port", mutate: func(c *Config) { c.Listen = "localhost" }, wantErr: "invalid listen"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "unknown log level"},
		{name: "zero tail", mutate: func(c *Config) { c.LogTail = 0 }, wantErr: "log tail"},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, wantErr: "token ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBindFlags(t *testing.T) {
	c := New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	names := c.BindFlags(fs)

	for _, n := range names {
		assert.NotNil(t, fs.Lookup(n), n)
	}

	require.NoError(t, fs.Parse([]string{"-p", "alpha", "--log-tail", "5", "--docker-run", "--token-ttl", "1h"}))
	assert.Equal(t, "alpha", c.Project)
	assert.Equal(t, 5, c.LogTail)
	assert.True(t, c.DockerRun)
	assert.Equal(t, time.Hour, c.TokenTTL)
	assert.Equal(t, "vol", c.DataDir)
}

func TestLogConfig(t *testing.T) {
	c := New()
	c.LogLevel = "debug"
	c.LogJSON = true
	assert.Equal(t, log.Config{Level: log.DebugLevel, JSONOutput: true}, c.Log())
}
