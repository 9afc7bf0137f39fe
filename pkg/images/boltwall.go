package images

import (
	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/security"
	"github.com/cuemby/swarm/pkg/types"
)

const (
	boltwallMinAmount = "2"
	liquidServer      = "https://liquid.sphinx.chat/"
)

func buildBoltwall(bw *types.Boltwall, bc *BuildContext) (*runtime.ContainerSpec, error) {
	lnd, err := Linked[*types.Lnd](bw, bc.Nodes, types.KindLnd)
	if err != nil {
		return nil, err
	}
	jarvis, err := Linked[*types.Jarvis](bw, bc.Nodes, types.KindJarvis)
	if err != nil {
		return nil, err
	}

	certPEM, err := bc.Artifacts.Get(LndTLSCert(lnd))
	if err != nil {
		return nil, err
	}
	cert, err := security.CertToBase64(certPEM)
	if err != nil {
		return nil, err
	}
	macRaw, err := bc.Artifacts.Get(LndAdminMacaroon(lnd))
	if err != nil {
		return nil, err
	}
	mac, err := security.MacaroonToBase64(macRaw)
	if err != nil {
		return nil, err
	}

	spec := newSpec(bw, bc, "/boltwall", bw.Port)
	spec.Env = []string{
		"PORT=" + bw.Port,
		"LND_TLS_CERT=" + cert,
		"LND_MACAROON=" + mac,
		"LND_SOCKET=" + Domain(lnd.Name) + ":" + lnd.RPCPort,
		"BOLTWALL_MIN_AMOUNT=" + boltwallMinAmount,
		"LIQUID_SERVER=" + liquidServer,
		"JARVIS_BACKEND_URL=http://" + Domain(jarvis.Name) + ":" + jarvis.Port,
		"SESSION_SECRET=" + bw.SessionSecret,
		"ADMIN_TOKEN=" + bw.AdminToken,
	}
	if bw.Host != "" {
		spec.Env = append(spec.Env, "HOST_NAME="+bw.Host)
		withLabels(spec, bw.Name, bw.Host, bw.Port)
	}
	return spec, nil
}
