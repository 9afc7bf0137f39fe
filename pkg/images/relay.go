package images

import (
	"path"

	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
)

const relayLndDir = "/relay/.lnd"

func buildRelay(relay *types.Relay, bc *BuildContext) (*runtime.ContainerSpec, error) {
	lnd, err := Linked[*types.Lnd](relay, bc.Nodes, types.KindLnd)
	if err != nil {
		return nil, err
	}

	token, err := bc.Secrets.Get(security.RelayTokenKey(relay.Name))
	if err != nil {
		return nil, err
	}

	netwk := LndNetwork(lnd.Network)
	spec := newSpec(relay, bc, "/relay/data", relay.Port)
	spec.Binds = append(spec.Binds, bc.Volumes.Bind(bc.Project, lnd.Name, relayLndDir))

	spec.Env = []string{
		"NODE_ENV=" + relay.NodeEnv,
		"PORT=" + relay.Port,
		"NODE_IP=" + Domain(relay.Name),
		"LND_IP=" + Domain(lnd.Name),
		"LND_PORT=" + lnd.RPCPort,
		"TLS_LOCATION=" + path.Join(relayLndDir, "tls.cert"),
		"MACAROON_LOCATION=" + path.Join(relayLndDir, LndMacaroonPath(lnd.Network)),
		"LND_LOG_LOCATION=" + path.Join(relayLndDir, "logs/bitcoin", netwk, "lnd.log"),
		"DB_STORAGE=/relay/data/sphinx.db",
		"ADMIN_TOKEN=" + token,
	}

	if px, ok := LinkedOptional[*types.Proxy](relay, bc.Nodes); ok {
		spec.Env = append(spec.Env,
			"PROXY_LND_IP="+Domain(px.Name),
			"PROXY_LND_PORT="+px.Port,
			"PROXY_ADMIN_URL=http://"+Domain(px.Name)+":"+px.AdminPort,
			"PROXY_TLS_LOCATION=/relay/proxy/tls.cert",
			"PROXY_MACAROONS_DIR=/relay/proxy/macaroons",
		)
		if px.AdminToken != nil {
			spec.Env = append(spec.Env, "PROXY_ADMIN_TOKEN="+*px.AdminToken)
		}
		if px.NewNodes != nil {
			spec.Env = append(spec.Env, "PROXY_NEW_NODES="+*px.NewNodes)
		}
		spec.Binds = append(spec.Binds, bc.Volumes.Bind(bc.Project, px.Name, "/relay/proxy"))
	}

	if relay.Host != "" {
		spec.Env = append(spec.Env, "PUBLIC_URL="+relay.Host)
		withLabels(spec, relay.Name, relay.Host, relay.Port)
	}
	return spec, nil
}
