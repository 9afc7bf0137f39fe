/*
Package ingress exposes swarm services on a public host through traefik.

Swarm does not proxy traffic itself. When a stack has a host, a traefik
container joins the project network and discovers services from Docker
labels. Services with a public host get a router with a Let's Encrypt
certificate:

	internet ──▶ traefik :443 ──Host(`boltwall.example.com`)──▶ boltwall.sphinx:8444

Labels renders the labels for one service and returns nil for internal
services, so containers without a host carry no routing labels at all.
TraefikArgs renders the reverse proxy's own command line.
*/
package ingress
