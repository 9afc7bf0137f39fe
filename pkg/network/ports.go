package network

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/docker/go-connections/nat"
)

// HostIP is the interface every published port is bound on
const HostIP = "0.0.0.0"

// PublishedPorts is the rendered form of a port list: the container side
// declarations and the matching host bindings.
type PublishedPorts struct {
	Exposed  nat.PortSet
	Bindings nat.PortMap
}

// Publish renders each port as "<p>/tcp" and binds it to the same port on
// HostIP. Empty entries are skipped.
func Publish(ports ...string) (*PublishedPorts, error) {
	out := &PublishedPorts{
		Exposed:  nat.PortSet{},
		Bindings: nat.PortMap{},
	}

	for _, p := range ports {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseUint(p, 10, 16); err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", p, err)
		}

		port, err := nat.NewPort("tcp", p)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", p, err)
		}
		out.Exposed[port] = struct{}{}
		out.Bindings[port] = []nat.PortBinding{{HostIP: HostIP, HostPort: p}}
	}

	return out, nil
}

// Ports returns the container ports in ascending order
func (p *PublishedPorts) Ports() []string {
	ports := make([]nat.Port, 0, len(p.Exposed))
	for port := range p.Exposed {
		ports = append(ports, port)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Int() < ports[j].Int() })

	out := make([]string, 0, len(ports))
	for _, port := range ports {
		out = append(out, port.Port())
	}
	return out
}
