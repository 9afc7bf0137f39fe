package images

import (
	"fmt"
	"path"

	"github.com/cuemby/swarm/pkg/types"
)

const (
	// LndDir is lnd's home inside its container
	LndDir = "/home/.lnd"

	// ZMQ ports of the chain node
	ZMQBlockPort = "28332"
	ZMQTxPort    = "28333"
)

// ArtifactRef names a file inside a running dependency container
type ArtifactRef struct {
	Container string // container name
	Path      string // absolute path inside the container
}

func (r ArtifactRef) String() string {
	return r.Container + ":" + r.Path
}

// Artifacts holds fetched file contents
type Artifacts map[ArtifactRef][]byte

// Get returns an artifact or an error naming the missing ref
func (a Artifacts) Get(ref ArtifactRef) ([]byte, error) {
	data, ok := a[ref]
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("artifact %s not fetched", ref)
	}
	return data, nil
}

// LndMacaroonPath is the admin macaroon path relative to the lnd directory
func LndMacaroonPath(network string) string {
	return path.Join("data/chain/bitcoin", LndNetwork(network), "admin.macaroon")
}

// LndTLSCert returns the ref of an lnd node's TLS certificate
func LndTLSCert(lnd *types.Lnd) ArtifactRef {
	return ArtifactRef{Container: Domain(lnd.Name), Path: path.Join(LndDir, "tls.cert")}
}

// LndAdminMacaroon returns the ref of an lnd node's admin macaroon
func LndAdminMacaroon(lnd *types.Lnd) ArtifactRef {
	return ArtifactRef{Container: Domain(lnd.Name), Path: path.Join(LndDir, LndMacaroonPath(lnd.Network))}
}

// Requirements lists the files Build will need from running dependency
// containers. Links are resolved here too, so a missing dependency is
// reported before anything is fetched.
func Requirements(img types.Image, nodes []types.Node) ([]ArtifactRef, error) {
	switch i := img.(type) {
	case *types.Boltwall:
		lnd, err := Linked[*types.Lnd](i, nodes, types.KindLnd)
		if err != nil {
			return nil, err
		}
		return []ArtifactRef{LndTLSCert(lnd), LndAdminMacaroon(lnd)}, nil
	case *types.Btc, *types.Lnd, *types.Proxy, *types.Relay, *types.Cache,
		*types.Traefik, *types.Neo4j, *types.Jarvis:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %T", types.ErrUnknownImage, img)
	}
}

// Dependencies returns the names of the internal nodes img must wait for,
// in link order. Links to external nodes and unknown names are skipped;
// Build reports those.
func Dependencies(img types.Image, nodes []types.Node) []string {
	var deps []string
	for _, link := range img.Meta().Links {
		if n, ok := lookup(nodes, link); ok && n.Internal != nil {
			deps = append(deps, link)
		}
	}
	return deps
}
