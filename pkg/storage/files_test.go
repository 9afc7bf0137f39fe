package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
)

func smallStack() *types.Stack {
	return &types.Stack{
		Network: "regtest",
		Nodes: []types.Node{
			types.NewInternal(types.NewNeo4j("neo4j", "4.4.9", "7474", "7687")),
			types.NewInternal(types.WithLinks(types.NewJarvis("jarvis", "latest", "6000"), "neo4j")),
		},
		Users: []types.User{{ID: 1, Username: "admin", PassHash: "hash", Admin: true}},
	}
}

func TestLoadStackCreatesDefault(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	calls := 0
	def := func() (*types.Stack, error) {
		calls++
		return smallStack(), nil
	}

	first, err := store.LoadStack("stack", def)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.FileExists(t, filepath.Join(store.ProjectDir("stack"), "config.json"))

	second, err := store.LoadStack("stack", def)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "default used only once")
	assert.Equal(t, first, second)
}

func TestLoadStackDefaultError(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadStack("stack", func() (*types.Stack, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(store.ProjectDir("stack"), "config.json"))
}

func TestSaveStackRewrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := smallStack()
	require.NoError(t, store.SaveStack("stack", s))

	s.Users[0].PassHash = "new"
	s.Nodes = s.Nodes[:1]
	require.NoError(t, store.SaveStack("stack", s))

	got, err := store.LoadStack("stack", nil)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Users[0].PassHash)
	assert.Len(t, got.Nodes, 1)

	entries, err := os.ReadDir(store.ProjectDir("stack"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLoadStackInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"duplicate names", `{"network":"regtest","nodes":[
			{"Internal":{"Jarvis":{"name":"a","version":"1","links":[],"port":"1"}}},
			{"Internal":{"Jarvis":{"name":"a","version":"1","links":[],"port":"2"}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewFileStore(t.TempDir())
			require.NoError(t, err)
			require.NoError(t, os.MkdirAll(store.ProjectDir("p"), 0755))
			require.NoError(t, os.WriteFile(filepath.Join(store.ProjectDir("p"), "config.json"), []byte(tt.content), 0600))

			_, err = store.LoadStack("p", smallStackFn)
			assert.Error(t, err)
		})
	}
}

func smallStackFn() (*types.Stack, error) { return smallStack(), nil }

func TestLoadSecretsGeneratedOnce(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.LoadSecrets("stack")
	require.NoError(t, err)
	assert.NotEmpty(t, first[security.KeyLndMnemonic])

	second, err := store.LoadSecrets("stack")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(filepath.Join(store.ProjectDir("stack"), "secrets.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadSecretsVerbatim(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	// a bundle missing keys is returned as is
	partial := security.Secrets{security.KeyLndPassword: "mine"}
	require.NoError(t, store.SaveSecrets("stack", partial))

	got, err := store.LoadSecrets("stack")
	require.NoError(t, err)
	assert.Equal(t, partial, got)
}

func TestLoadSecretsCorrupt(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(store.ProjectDir("stack"), 0755))
	path := filepath.Join(store.ProjectDir("stack"), "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err = store.LoadSecrets("stack")
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not json", string(data), "corrupt bundle left untouched")
}

func TestStackFileIsTagged(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.SaveStack("stack", smallStack()))

	data, err := os.ReadFile(filepath.Join(store.ProjectDir("stack"), "config.json"))
	require.NoError(t, err)

	var raw struct {
		Nodes []map[string]map[string]json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw.Nodes[0]["Internal"], "Neo4j")
}
