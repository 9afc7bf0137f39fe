/*
Package network renders the port list of a service into Docker's exposed
port set and host port bindings.

Every port of a swarm service is published on the host with the same
number, bound on all interfaces:

	ports: ["9735", "10009"]

	Exposed:   9735/tcp, 10009/tcp
	Bindings:  9735/tcp  → 0.0.0.0:9735
	           10009/tcp → 0.0.0.0:10009

Services reach each other over the project's Docker network by hostname
(<name>.sphinx), so published ports are only for access from the host.
*/
package network
