package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/swarm/pkg/auth"
	"github.com/cuemby/swarm/pkg/broadcast"
	"github.com/cuemby/swarm/pkg/manager"
	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
)

type memStore struct{}

func (memStore) LoadStack(project string, def func() (*types.Stack, error)) (*types.Stack, error) {
	return def()
}

func (memStore) SaveStack(project string, stack *types.Stack) error { return nil }

type fakeLogs map[string][]string

func (f fakeLogs) Logs(ctx context.Context, name string, tail int) []string {
	if lines, ok := f[name]; ok {
		return lines
	}
	return []string{}
}

type fakeContainers map[string]string

func (f fakeContainers) ProjectContainers(ctx context.Context, project string) (map[string]string, error) {
	return f, nil
}

// fakeFollower hands out one pre-made stream per container
type fakeFollower struct {
	mu      sync.Mutex
	streams map[string]chan string
}

func (f *fakeFollower) Follow(ctx context.Context, name string) (<-chan string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	src, ok := f.streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", runtime.ErrContainerNotFound, name)
	}
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case line, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- line:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

type fixture struct {
	t      *testing.T
	srv    *Server
	auth   *auth.Authenticator
	stream chan string
	admin  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	secrets, err := security.GenerateSecrets()
	require.NoError(t, err)
	hash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)
	stack, err := types.DefaultStack("regtest", "", secrets, hash)
	require.NoError(t, err)

	a, err := auth.New(secrets[security.KeyJWTKey], 0)
	require.NoError(t, err)

	mgr, err := manager.NewManager(manager.Config{
		Project:    "test",
		Stack:      stack,
		Secrets:    secrets,
		Store:      memStore{},
		Auth:       a,
		Logs:       fakeLogs{"lnd.sphinx": {"one", "two"}},
		Containers: fakeContainers{"lnd.sphinx": "1", "bitcoind.sphinx": "2"},
	})
	require.NoError(t, err)

	stream := make(chan string, 16)
	hub := broadcast.NewHub(&fakeFollower{streams: map[string]chan string{"lnd.sphinx": stream}}, 8)
	t.Cleanup(hub.Close)

	token, err := a.Issue(1)
	require.NoError(t, err)

	return &fixture{t: t, srv: NewServer(mgr, hub, "test"), auth: a, stream: stream, admin: token}
}

func (f *fixture) do(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)
	return w
}

func cmdPath(tag, typ, cmd string) string {
	txt := fmt.Sprintf(`{"type":%q,"data":{"cmd":%q}}`, typ, cmd)
	return "/cmd?" + url.Values{"tag": {tag}, "txt": {txt}}.Encode()
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "valid", body: `{"username":"admin","password":"admin-pass"}`, status: http.StatusOK},
		{name: "wrong password", body: `{"username":"admin","password":"nope"}`, status: http.StatusUnauthorized},
		{name: "unknown user", body: `{"username":"mallory","password":"admin-pass"}`, status: http.StatusUnauthorized},
		{name: "malformed", body: `{`, status: http.StatusBadRequest},
	}

	var failures []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/login", "", strings.NewReader(tt.body))
			require.Equal(t, tt.status, w.Code)

			switch tt.status {
			case http.StatusOK:
				var resp TokenResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				id, err := f.auth.Parse(resp.Token)
				require.NoError(t, err)
				assert.Equal(t, uint32(1), id)
			case http.StatusUnauthorized:
				failures = append(failures, w.Body.String())
			}
		})
	}
	require.Len(t, failures, 2)
	assert.Equal(t, failures[0], failures[1])
}

func TestLoginRejectsGet(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCmd(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{name: "no token", path: cmdPath("", "Swarm", "GetConfig"), status: http.StatusUnauthorized},
		{name: "bad token", path: cmdPath("", "Swarm", "GetConfig"), token: "garbage", status: http.StatusUnauthorized},
		{name: "get config", path: cmdPath("", "Swarm", "GetConfig"), token: f.admin, status: http.StatusOK},
		{name: "missing txt", path: "/cmd?tag=lnd", token: f.admin, status: http.StatusBadRequest},
		{name: "malformed command", path: "/cmd?txt=%7B", token: f.admin, status: http.StatusBadRequest},
		{name: "unknown command", path: cmdPath("", "Swarm", "Explode"), token: f.admin, status: http.StatusBadRequest},
		{name: "no client", path: cmdPath("ln9", "Lnd", "GetInfo"), token: f.admin, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestCmdGetConfigHidesSecrets(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, cmdPath("", "Swarm", "GetConfig"), f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stack types.Stack
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stack))
	assert.Empty(t, stack.Users)
	assert.NotEmpty(t, stack.Nodes)
}

func TestLogs(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/logs?tag=lnd", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["one","two"]`, w.Body.String())

	w = f.do(http.MethodGet, "/logs?tag=ghost", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = f.do(http.MethodGet, "/logs?tag=lnd", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshJWT(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/refresh_jwt", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	id, err := f.auth.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
}

func TestLogstream(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// token in the query, as browsers' EventSource sends it
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/logstream?tag=lnd&token="+f.admin, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	f.stream <- `level=info msg="ready"`
	f.stream <- "second"

	r := bufio.NewReader(resp.Body)
	readEvent := func() string {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		blank, err := r.ReadString('\n')
		require.NoError(t, err)
		require.Equal(t, "\n", blank)
		return strings.TrimSuffix(line, "\n")
	}
	assert.Equal(t, `data: "level=info msg=\"ready\""`, readEvent())
	assert.Equal(t, `data: "second"`, readEvent())
}

func TestLogstreamErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{name: "no token", path: "/logstream?tag=lnd", status: http.StatusUnauthorized},
		{name: "bad query token", path: "/logstream?tag=lnd&token=garbage", status: http.StatusUnauthorized},
		{name: "missing tag", path: "/logstream", token: f.admin, status: http.StatusBadRequest},
		{name: "unknown container", path: "/logstream?tag=ghost", token: f.admin, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestQueryTokenOnlyForLogstream(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/logs?tag=lnd&token="+f.admin, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWriteEvent(t *testing.T) {
	tests := []struct {
		name string
		msg  broadcast.Message
		want string
	}{
		{name: "line", msg: broadcast.Message{Line: "hello"}, want: "data: \"hello\"\n\n"},
		{name: "quotes escaped", msg: broadcast.Message{Line: `a "b"`}, want: "data: \"a \\\"b\\\"\"\n\n"},
		{name: "lagged", msg: broadcast.Message{Lagged: 7}, want: "event: lagged\ndata: 7\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeEvent(&buf, tt.msg))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: auth.ErrUnauthorized, want: http.StatusUnauthorized},
		{err: fmt.Errorf("wrapped: %w", auth.ErrForbidden), want: http.StatusForbidden},
		{err: fmt.Errorf("%w: bad json", manager.ErrBadCommand), want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: no lnd client for x", manager.ErrNoClient), want: http.StatusNotFound},
		{err: types.ErrNodeNotFound, want: http.StatusNotFound},
		{err: runtime.ErrContainerNotFound, want: http.StatusNotFound},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestStopEndsLogstreams(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewUnstartedServer(f.srv)
	ts.Config = f.srv.http
	ts.Start()
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/logstream?tag=lnd", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+f.admin)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.srv.Stop(ctx))

	_, err = io.ReadAll(resp.Body)
	assert.NoError(t, err)
}
