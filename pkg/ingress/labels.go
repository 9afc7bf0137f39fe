package ingress

import (
	"fmt"
	"strings"
)

const (
	// CertResolver is the name of the ACME resolver configured on traefik
	CertResolver = "letsencrypt"

	// EntryPointSecure is the TLS entrypoint routers are attached to
	EntryPointSecure = "websecure"
)

// Route describes how a public host reaches one service
type Route struct {
	Service string // router and service name, the node name
	Host    string // public hostname
	Port    string // container port traffic is forwarded to
}

// Labels returns the traefik discovery labels for a route. A route
// without a host is internal only and gets no labels.
func Labels(r Route) map[string]string {
	if r.Host == "" {
		return nil
	}

	router := "traefik.http.routers." + r.Service
	service := "traefik.http.services." + r.Service
	return map[string]string{
		"traefik.enable":             "true",
		router + ".rule":             fmt.Sprintf("Host(`%s`)", r.Host),
		router + ".entrypoints":      EntryPointSecure,
		router + ".tls":              "true",
		router + ".tls.certresolver": CertResolver,
		service + ".loadbalancer.server.port": r.Port,
	}
}

// HostFor derives the public hostname of a service from the stack host.
// An explicit host always wins.
func HostFor(service, explicit, stackHost string) string {
	if explicit != "" {
		return explicit
	}
	if stackHost == "" {
		return ""
	}
	return service + "." + strings.TrimPrefix(stackHost, ".")
}
