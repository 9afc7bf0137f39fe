package images

import (
	"fmt"

	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/types"
)

// ProxyRPCPort is the fixed gRPC port the proxy also listens on
const ProxyRPCPort = "11111"

func buildProxy(px *types.Proxy, bc *BuildContext) (*runtime.ContainerSpec, error) {
	lnd, err := Linked[*types.Lnd](px, bc.Nodes, types.KindLnd)
	if err != nil {
		return nil, err
	}

	netwk := LndNetwork(px.Network)
	spec := newSpec(px, bc, "/app/proxy", px.Port, px.AdminPort)
	spec.Binds = append(spec.Binds, bc.Volumes.Bind(bc.Project, lnd.Name, "/lnd"))

	spec.Cmd = []string{
		"/app/sphinx-proxy",
		"--macaroon-location=/lnd/" + LndMacaroonPath(px.Network),
		"--rpclisten=0.0.0.0:" + ProxyRPCPort,
		"--store-dir=/app/proxy/badger",
		"--bitcoin.active",
		"--bitcoin.basefee=0",
		"--use-hd-keys",
		"--bitcoin." + netwk,
		"--rpclisten=0.0.0.0:" + px.Port,
		"--admin-port=" + px.AdminPort,
		fmt.Sprintf("--lnd-ip=%s", Domain(lnd.Name)),
		fmt.Sprintf("--lnd-port=%s", lnd.RPCPort),
		"--tlsextradomain=" + Domain(px.Name),
		"--tlscertpath=/app/proxy/tls.cert",
		"--tlskeypath=/app/proxy/tls.key",
		"--tls-location=/lnd/tls.cert",
		"--unlock-pwd=" + lnd.UnlockPassword,
		"--server-macaroons-dir=/app/proxy/macaroons",
		"--channels-start=1",
		"--initial-msat=0",
	}
	if px.AdminToken != nil {
		spec.Cmd = append(spec.Cmd, "--admin-token="+*px.AdminToken)
	}
	if px.StoreKey != nil {
		spec.Cmd = append(spec.Cmd, "--store-key="+*px.StoreKey)
	}
	return spec, nil
}
