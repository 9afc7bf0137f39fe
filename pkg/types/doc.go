/*
Package types defines the topology of a swarm project.

A Stack is the aggregate persisted as config.json: the chain network, an
ordered list of nodes, an optional public host and the control plane users.

	Stack
	 ├── Network   "regtest"
	 ├── Host      "example.com" (optional)
	 ├── Nodes
	 │    ├── Internal(Btc)      bitcoind
	 │    ├── Internal(Lnd)      lnd       → bitcoind
	 │    ├── Internal(Proxy)    proxy     → lnd
	 │    ├── Internal(Relay)    relay     → lnd, proxy
	 │    ├── Internal(Cache)    cache     → tribes, memes
	 │    ├── Internal(Neo4j)    neo4j
	 │    ├── Internal(Jarvis)   jarvis    → neo4j
	 │    ├── Internal(Boltwall) boltwall  → lnd, jarvis
	 │    ├── External(Tribes)   tribes
	 │    └── External(Meme)     memes
	 └── Users

# Nodes

A Node is either Internal, a container run by swarm, or External, an
endpoint consumed by URL. Internal nodes hold an Image. The set of Image
implementations is closed; code that acts on an image switches over the
concrete type and returns ErrUnknownImage from the default branch.

Nodes are encoded externally tagged, so a stack document reads:

	{"Internal":{"Lnd":{"name":"lnd","version":"v0.16.2-beta","links":["bitcoind"],...}}}
	{"External":{"kind":"Meme","name":"memes","url":"meme.sphinx.chat"}}

# Secrets

Image constructors generate their own secrets (admin tokens, store keys,
node keys). Passwords shared with other parts of the system come from the
project secrets bundle. FillSecrets completes a stack that arrived without
secrets, for example one applied from a sanitized export.

Sanitize must be applied before a stack leaves the process.
*/
package types
