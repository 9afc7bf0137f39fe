package images

import (
	"fmt"

	"github.com/cuemby/swarm/pkg/ingress"
	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
	"github.com/cuemby/swarm/pkg/volume"
)

// DomainSuffix is appended to a node name to form its hostname, which is
// also its container name and its alias on the project network
const DomainSuffix = ".sphinx"

// Domain returns the hostname of a node
func Domain(name string) string {
	return name + DomainSuffix
}

// BuildContext carries everything a builder may read besides the image
// itself. Artifacts must hold every ref returned by Requirements.
type BuildContext struct {
	Project   string
	Volumes   *volume.LocalDriver
	Nodes     []types.Node
	Secrets   security.Secrets
	Artifacts Artifacts
	Network   string // docker network of the project
}

// Build renders the container spec of one image. It performs no I/O: live
// artifacts are read from bc.Artifacts. A link that does not resolve fails
// with *MissingDependencyError.
func Build(img types.Image, bc *BuildContext) (*runtime.ContainerSpec, error) {
	var (
		spec *runtime.ContainerSpec
		err  error
	)

	switch i := img.(type) {
	case *types.Btc:
		spec, err = buildBtc(i, bc)
	case *types.Lnd:
		spec, err = buildLnd(i, bc)
	case *types.Proxy:
		spec, err = buildProxy(i, bc)
	case *types.Relay:
		spec, err = buildRelay(i, bc)
	case *types.Cache:
		spec, err = buildCache(i, bc)
	case *types.Traefik:
		spec, err = buildTraefik(i, bc)
	case *types.Boltwall:
		spec, err = buildBoltwall(i, bc)
	case *types.Neo4j:
		spec, err = buildNeo4j(i, bc)
	case *types.Jarvis:
		spec, err = buildJarvis(i, bc)
	default:
		return nil, fmt.Errorf("%w: %T", types.ErrUnknownImage, img)
	}
	if err != nil {
		return nil, err
	}

	spec.Network = bc.Network
	spec.Project = bc.Project
	return spec, nil
}

// newSpec fills the fields every kind shares: image reference, hostname
// and the node's own volume mounted at dir.
func newSpec(img types.Image, bc *BuildContext, dir string, ports ...string) *runtime.ContainerSpec {
	b := img.Meta()
	spec := &runtime.ContainerSpec{
		Image:    img.Repo().Ref(b.Version),
		Hostname: Domain(b.Name),
		Ports:    ports,
	}
	if dir != "" {
		spec.Binds = []string{bc.Volumes.Bind(bc.Project, b.Name, dir)}
	}
	return spec
}

func withLabels(spec *runtime.ContainerSpec, name, host, port string) {
	spec.Labels = ingress.Labels(ingress.Route{Service: name, Host: host, Port: port})
}

// network names used in chain specific paths and flags
var lndNetworks = map[string]string{
	"bitcoin": "mainnet",
	"mainnet": "mainnet",
	"testnet": "testnet",
	"regtest": "regtest",
	"simnet":  "simnet",
}

// LndNetwork maps a declared network to the name lnd uses in its data
// paths. Unknown values map to regtest.
func LndNetwork(network string) string {
	if n, ok := lndNetworks[network]; ok {
		return n
	}
	return "regtest"
}
