/*
Package images turns a node of the stack into a container spec.

Each image kind has a builder that reads the node's own fields and the
nodes it links to. Links are resolved by name, in declaration order; the
first linked node of the required kind wins:

	kind      links to                 external
	────────  ───────────────────────  ─────────────
	Btc       -                        -
	Lnd       Btc                      -
	Proxy     Lnd                      -
	Relay     Lnd, Proxy (optional)    -
	Cache     -                        Meme, Tribes
	Neo4j     -                        -
	Jarvis    Neo4j                    -
	Boltwall  Lnd, Jarvis              -
	Traefik   -                        -

A link that does not resolve fails the build with *MissingDependencyError.
The error aborts only the node being built.

# Live artifacts

Boltwall reads lnd's TLS certificate and admin macaroon from the running lnd
container. Build itself does no I/O, so the caller runs two phases:

	refs, _ := images.Requirements(img, nodes)   // which files
	...fetch each ref from its container, retrying while not ready...
	spec, _ := images.Build(img, &BuildContext{Artifacts: fetched, ...})

# Conventions

The hostname of a node is "<name>.sphinx"; it is also the container name
and the alias on the project network. Each node's data lives in its own
volume subtree. Chain specific paths use LndNetwork, which maps bitcoin
and mainnet to mainnet and any unknown value to regtest.
*/
package images
