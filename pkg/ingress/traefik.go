package ingress

// TraefikConfig is the static configuration of the reverse proxy container
type TraefikConfig struct {
	Email    string // ACME account email
	Insecure bool   // expose the dashboard without auth
	Network  string // docker network traefik discovers services on
}

// TraefikPorts are the host ports the reverse proxy listens on
var TraefikPorts = []string{"80", "443", "8080"}

// ACMEStorage is where traefik keeps issued certificates inside its volume
const ACMEStorage = "/letsencrypt/acme.json"

// TraefikArgs returns the command line of the traefik container
func TraefikArgs(cfg TraefikConfig) []string {
	args := []string{
		"--providers.docker=true",
		"--providers.docker.exposedbydefault=false",
		"--entrypoints.web.address=:80",
		"--entrypoints.web.http.redirections.entrypoint.to=" + EntryPointSecure,
		"--entrypoints.web.http.redirections.entrypoint.scheme=https",
		"--entrypoints." + EntryPointSecure + ".address=:443",
		"--certificatesresolvers." + CertResolver + ".acme.tlschallenge=true",
		"--certificatesresolvers." + CertResolver + ".acme.storage=" + ACMEStorage,
	}
	if cfg.Email != "" {
		args = append(args, "--certificatesresolvers."+CertResolver+".acme.email="+cfg.Email)
	}
	if cfg.Network != "" {
		args = append(args, "--providers.docker.network="+cfg.Network)
	}
	if cfg.Insecure {
		args = append(args, "--api.insecure=true")
	}
	return args
}
