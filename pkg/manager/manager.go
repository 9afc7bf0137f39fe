package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cuemby/swarm/pkg/auth"
	"github.com/cuemby/swarm/pkg/clients"
	"github.com/cuemby/swarm/pkg/images"
	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/storage"
	"github.com/cuemby/swarm/pkg/types"
)

var (
	// ErrBadCommand is returned for malformed or unknown commands
	ErrBadCommand = errors.New("bad command")

	// ErrNoClient is returned when no client is registered for the tag
	ErrNoClient = errors.New("no client")

	// ErrNoResult is returned when a command produced nothing
	ErrNoResult = errors.New("internal error: command produced no result")
)

// LogSource fetches a bounded tail of a container's logs
type LogSource interface {
	Logs(ctx context.Context, name string, tail int) []string
}

// ContainerLister lists the containers of a project
type ContainerLister interface {
	ProjectContainers(ctx context.Context, project string) (map[string]string, error)
}

// Config holds what a Manager needs
type Config struct {
	Project    string
	Stack      *types.Stack
	Secrets    security.Secrets
	Store      storage.StackStore
	Auth       *auth.Authenticator
	Clients    *clients.Registry
	Logs       LogSource
	Containers ContainerLister
	Tags       TagLister

	// LogTail is the number of lines GetContainerLogs returns
	LogTail int
}

// Manager is the process-wide handle on the running stack. One mutex
// guards the stack and the client registry for the whole of a command.
type Manager struct {
	mu sync.Mutex

	project string
	stack   *types.Stack
	secrets security.Secrets

	store      storage.StackStore
	auth       *auth.Authenticator
	clients    *clients.Registry
	logs       LogSource
	containers ContainerLister
	tags       TagLister
	logTail    int
}

// NewManager creates a Manager for a loaded stack
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Stack == nil {
		return nil, fmt.Errorf("stack is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("stack store is required")
	}
	if cfg.Auth == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	if cfg.Clients == nil {
		cfg.Clients = clients.NewRegistry()
	}
	if cfg.Tags == nil {
		cfg.Tags = RegistryTags{}
	}
	if cfg.LogTail <= 0 {
		cfg.LogTail = runtime.DefaultLogTail
	}

	return &Manager{
		project:    cfg.Project,
		stack:      cfg.Stack,
		secrets:    cfg.Secrets,
		store:      cfg.Store,
		auth:       cfg.Auth,
		clients:    cfg.Clients,
		logs:       cfg.Logs,
		containers: cfg.Containers,
		tags:       cfg.Tags,
		logTail:    cfg.LogTail,
	}, nil
}

// Project returns the project name
func (m *Manager) Project() string {
	return m.project
}

// Auth returns the authenticator
func (m *Manager) Auth() *auth.Authenticator {
	return m.auth
}

// Clients returns the client registry
func (m *Manager) Clients() *clients.Registry {
	return m.clients
}

// Snapshot returns a deep copy of the stack, secrets included
func (m *Manager) Snapshot() (*types.Stack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stack.Clone()
}

// ContainerCount returns the number of containers of the project
func (m *Manager) ContainerCount(ctx context.Context) (int, error) {
	if m.containers == nil {
		return 0, nil
	}
	ids, err := m.containers.ProjectContainers(ctx, m.project)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Logs returns the last lines of a node's container, empty when the node
// or container is unknown
func (m *Manager) Logs(ctx context.Context, node string) []string {
	if m.logs == nil {
		return []string{}
	}
	return m.logs.Logs(ctx, containerName(node), m.logTail)
}

// Login verifies credentials against the stack's users and returns a token
func (m *Manager) Login(username, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auth.Login(m.stack, username, password)
}

// Update runs fn on the stack under the lock and persists the result.
// fn reports whether it changed anything.
func (m *Manager) Update(fn func(*types.Stack) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed, err := fn(m.stack)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return m.save()
}

// save must be called with mu held
func (m *Manager) save() error {
	if err := m.store.SaveStack(m.project, m.stack); err != nil {
		return fmt.Errorf("failed to save stack: %w", err)
	}
	return nil
}

// containerName maps a node name to its container name
func containerName(node string) string {
	return images.Domain(node)
}
