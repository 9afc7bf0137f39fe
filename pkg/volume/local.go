package volume

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultVolumesPath is the base directory for service volumes,
	// relative to the working directory
	DefaultVolumesPath = "vol"
)

// LocalDriver maps each service of a project to its own host directory:
//
//	<base>/<project>/<service>
type LocalDriver struct {
	basePath string
}

// NewLocalDriver creates a driver rooted at basePath. A relative path is
// resolved against the working directory since Docker binds need absolute
// paths.
func NewLocalDriver(basePath string) (*LocalDriver, error) {
	if basePath == "" {
		basePath = DefaultVolumesPath
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve volumes directory: %w", err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create volumes directory: %w", err)
	}

	return &LocalDriver{basePath: abs}, nil
}

// BasePath returns the absolute root of all volumes
func (d *LocalDriver) BasePath() string {
	return d.basePath
}

// Path returns the host directory of a service
func (d *LocalDriver) Path(project, service string) string {
	return filepath.Join(d.basePath, project, service)
}

// Bind returns the bind mount of a service's directory at dir inside the
// container. It does not touch the filesystem.
func (d *LocalDriver) Bind(project, service, dir string) string {
	return d.Path(project, service) + ":" + dir
}

// Create makes sure the service directory exists
func (d *LocalDriver) Create(project, service string) error {
	if err := os.MkdirAll(d.Path(project, service), 0755); err != nil {
		return fmt.Errorf("failed to create volume directory: %w", err)
	}
	return nil
}

// Delete removes a service directory and its contents
func (d *LocalDriver) Delete(project, service string) error {
	path := d.Path(project, service)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Already deleted
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete volume directory: %w", err)
	}
	return nil
}
