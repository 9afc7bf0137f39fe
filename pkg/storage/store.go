package storage

import (
	"errors"
	"time"

	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// StackStore persists the stack document of a project
type StackStore interface {
	// LoadStack reads the stack, or creates it with def and persists it
	// when the project has none yet
	LoadStack(project string, def func() (*types.Stack, error)) (*types.Stack, error)

	// SaveStack rewrites the whole document
	SaveStack(project string, stack *types.Stack) error
}

// SecretsStore persists the secrets bundle of a project
type SecretsStore interface {
	// LoadSecrets reads the bundle, generating and persisting a fresh one
	// on first run. Existing bundles are returned verbatim.
	LoadSecrets(project string) (security.Secrets, error)

	SaveSecrets(project string, secrets security.Secrets) error
}

// Instance records a container swarm created, for teardown
type Instance struct {
	Name        string    `json:"name"`
	ContainerID string    `json:"container_id"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// InstanceStore is the ledger of materialized containers
type InstanceStore interface {
	PutInstance(inst *Instance) error
	GetInstance(name string) (*Instance, error)
	ListInstances() ([]*Instance, error)
	DeleteInstance(name string) error
	Close() error
}
