package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cuemby/swarm/pkg/log"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
)

const (
	stackFile   = "config.json"
	secretsFile = "secrets.json"
)

// FileStore keeps project documents as JSON files under
// <dataDir>/<project>/
type FileStore struct {
	dataDir string
}

// NewFileStore creates a file store rooted at dataDir
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

// ProjectDir returns the directory holding a project's files
func (s *FileStore) ProjectDir(project string) string {
	return filepath.Join(s.dataDir, project)
}

func (s *FileStore) LoadStack(project string, def func() (*types.Stack, error)) (*types.Stack, error) {
	path := filepath.Join(s.ProjectDir(project), stackFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		stack, err := def()
		if err != nil {
			return nil, fmt.Errorf("failed to create default stack: %w", err)
		}
		if err := s.SaveStack(project, stack); err != nil {
			return nil, err
		}
		logger := log.WithProject(project)
		logger.Info().Str("path", path).Msg("Created default stack")
		return stack, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stack: %w", err)
	}

	var stack types.Stack
	if err := json.Unmarshal(data, &stack); err != nil {
		return nil, fmt.Errorf("failed to decode stack %s: %w", path, err)
	}
	if err := stack.Validate(); err != nil {
		return nil, err
	}
	return &stack, nil
}

func (s *FileStore) SaveStack(project string, stack *types.Stack) error {
	data, err := json.MarshalIndent(stack, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stack: %w", err)
	}
	return s.writeFile(project, stackFile, data)
}

func (s *FileStore) LoadSecrets(project string) (security.Secrets, error) {
	path := filepath.Join(s.ProjectDir(project), secretsFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		secrets, err := security.GenerateSecrets()
		if err != nil {
			return nil, err
		}
		if err := s.SaveSecrets(project, secrets); err != nil {
			return nil, err
		}
		logger := log.WithProject(project)
		logger.Info().Str("path", path).Msg("Generated project secrets")
		return secrets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets: %w", err)
	}

	secrets := security.Secrets{}
	if err := json.Unmarshal(data, &secrets); err != nil {
		// never replace a bundle we cannot read
		return nil, fmt.Errorf("failed to decode secrets %s: %w", path, err)
	}
	return secrets, nil
}

func (s *FileStore) SaveSecrets(project string, secrets security.Secrets) error {
	data, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode secrets: %w", err)
	}
	return s.writeFile(project, secretsFile, data)
}

// writeFile replaces a project file through a temp file and rename so a
// crash never leaves a truncated document
func (s *FileStore) writeFile(project, name string, data []byte) error {
	dir := s.ProjectDir(project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
