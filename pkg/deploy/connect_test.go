package deploy

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/swarm/pkg/clients"
	"github.com/cuemby/swarm/pkg/health"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
)

func newTestConnector() *ClientConnector {
	c := NewClientConnector(clients.NewRegistry(), security.Secrets{security.RelayTokenKey("relay"): "tok"}, nil, false)
	c.Retry = health.RetryConfig{Attempts: 2, Interval: time.Millisecond}
	return c
}

func port(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Port()
}

func TestConnectSkipsImagesWithoutAPI(t *testing.T) {
	c := newTestConnector()
	cache, err := types.NewCache("cache", "0.1.14", "9000", true)
	require.NoError(t, err)
	for _, img := range []types.Image{
		types.NewNeo4j("neo4j", "4.4.9", "7474", "7687"),
		types.NewTraefik("traefik", "v2.9", "", true),
		cache,
	} {
		require.NoError(t, c.Connect(context.Background(), img, &types.Stack{}))
	}
	assert.Empty(t, c.Registry.Names())
}

type fakeExecer struct {
	calls  int
	okFrom int
	id     string
	cmd    []string
}

func (f *fakeExecer) Exec(ctx context.Context, id string, cmd []string) (string, error) {
	f.calls++
	f.id, f.cmd = id, cmd
	if f.calls < f.okFrom {
		return "", errors.New("connection refused")
	}
	return "1\n", nil
}

func TestConnectNeo4jReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		okFrom  int
		wantErr bool
	}{
		{name: "ready at once", okFrom: 1},
		{name: "ready on retry", okFrom: 2},
		{name: "never ready", okFrom: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConnector()
			ex := &fakeExecer{okFrom: tt.okFrom}
			c.Execer = ex

			err := c.Connect(context.Background(), types.NewNeo4j("neo4j", "4.4.9", "7474", "7687"), &types.Stack{})
			if tt.wantErr {
				assert.ErrorIs(t, err, health.ErrNotReady)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "neo4j.sphinx", ex.id)
			assert.Equal(t, "cypher-shell", ex.cmd[0])
			assert.Contains(t, ex.cmd, "bolt://localhost:7687")
		})
	}
}

func TestConnectJarvisWaitsForHTTP(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestConnector()
	require.NoError(t, c.Connect(context.Background(), types.NewJarvis("jarvis", "latest", port(t, srv.URL)), &types.Stack{}))
	assert.Empty(t, c.Registry.Names())

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	err := c.Connect(context.Background(), types.NewJarvis("jarvis", "latest", port(t, failing.URL)), &types.Stack{})
	assert.ErrorIs(t, err, health.ErrNotReady)
}

func TestConnectBoltwall(t *testing.T) {
	c := newTestConnector()
	bw := types.NewBoltwall("boltwall", "latest", "8444", "")

	require.NoError(t, c.Connect(context.Background(), bw, &types.Stack{}))
	_, ok := c.Registry.Boltwall("boltwall")
	assert.True(t, ok)
}

func TestConnectRelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"response":true}`))
	}))
	defer srv.Close()

	c := newTestConnector()
	relay := types.NewRelay("relay", "latest", "development", port(t, srv.URL))

	require.NoError(t, c.Connect(context.Background(), relay, &types.Stack{}))
	_, ok := c.Registry.Relay("relay")
	assert.True(t, ok)

	c.Disconnect("relay")
	_, ok = c.Registry.Relay("relay")
	assert.False(t, ok)
}

func TestConnectProxyWaitsForAdminPort(t *testing.T) {
	c := newTestConnector()

	// closed port: never registered
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closed := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	down := types.NewProxy("proxy", "latest", "regtest", "11111", strconv.Itoa(closed))
	err = c.Connect(context.Background(), down, &types.Stack{})
	assert.ErrorIs(t, err, health.ErrNotReady)
	_, ok := c.Registry.Proxy("proxy")
	assert.False(t, ok)

	ln, err = net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	up := types.NewProxy("proxy", "latest", "regtest", "11111", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))
	require.NoError(t, c.Connect(context.Background(), up, &types.Stack{}))
	_, ok = c.Registry.Proxy("proxy")
	assert.True(t, ok)
}
