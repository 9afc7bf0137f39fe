package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

var (
	// ErrContainerNotFound is returned when no container has the given name
	ErrContainerNotFound = errors.New("container not found")

	// ErrFileNotReady is returned by ReadFile when the container exists but
	// the file has not been written yet. Callers may retry.
	ErrFileNotReady = errors.New("file not ready")
)

const (
	// LabelProject marks every container created by swarm with its project
	LabelProject = "io.sphinx.swarm.project"

	// ExtraHost lets containers reach services published on the host
	ExtraHost = "host.docker.internal:host-gateway"

	// StopTimeoutSeconds is the grace period before a container is killed
	StopTimeoutSeconds = 9
)

// ContainerSpec is everything needed to create one service container. The
// hostname doubles as the container name.
type ContainerSpec struct {
	Image    string
	Hostname string
	Ports    []string
	Binds    []string
	Env      []string
	Cmd      []string
	Labels   map[string]string
	Network  string
	Project  string

	// Volumes are named volumes created before the container
	Volumes []string
}

// Validate checks the fields Docker cannot default
func (s *ContainerSpec) Validate() error {
	if s.Hostname == "" {
		return fmt.Errorf("container spec has no hostname")
	}
	if s.Image == "" {
		return fmt.Errorf("container spec %s has no image", s.Hostname)
	}
	return nil
}

// PullRef decides whether an image must be pulled before create. Only
// references that name a repository path ("org/repo:tag") are pulled;
// bare names are expected to be built locally. The returned reference is
// normalized with an explicit tag.
func PullRef(image string) (string, bool, error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", false, fmt.Errorf("invalid image reference %q: %w", image, err)
	}

	name := image
	if i := strings.LastIndex(name, "@"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, ":"); i > strings.LastIndex(name, "/") {
		name = name[:i]
	}
	if !strings.Contains(name, "/") {
		return "", false, nil
	}

	return reference.TagNameOnly(named).String(), true, nil
}
