package images

import (
	"path"

	"github.com/cuemby/swarm/pkg/ingress"
	"github.com/cuemby/swarm/pkg/runtime"
	"github.com/cuemby/swarm/pkg/types"
)

const dockerSocketBind = "/var/run/docker.sock:/var/run/docker.sock:ro"

// ACMEVolume names the docker volume holding a project's issued
// certificates, kept apart from the bind mounts so down leaves it alone
func ACMEVolume(project string) string {
	return project + "-letsencrypt"
}

func buildTraefik(t *types.Traefik, bc *BuildContext) (*runtime.ContainerSpec, error) {
	ports := append([]string(nil), ingress.TraefikPorts...)
	if !t.Insecure {
		ports = ports[:2] // dashboard stays closed
	}

	certs := ACMEVolume(bc.Project)
	spec := newSpec(t, bc, "", ports...)
	spec.Volumes = []string{certs}
	spec.Binds = []string{certs + ":" + path.Dir(ingress.ACMEStorage), dockerSocketBind}
	spec.Cmd = ingress.TraefikArgs(ingress.TraefikConfig{
		Email:    t.Email,
		Insecure: t.Insecure,
		Network:  bc.Network,
	})
	return spec, nil
}
