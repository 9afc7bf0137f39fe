/*
Package deploy brings a stack up as containers and takes it down again.

A stack is a list of nodes. Internal nodes become containers on one
Docker network; external nodes (the public tribes and meme servers) are
only referenced by the images that link to them. Deployer turns the
internal nodes into running containers in dependency order and hands
each one to a Connector that waits for its API and registers a client.

# Architecture

	                       ┌──────────────┐
	   swarm stack ───────▶│   Deployer   │◀─────── swarm down
	   swarm apply --up    └──────┬───────┘
	                              │
	         ┌────────────────────┼─────────────────────┬──────────────────┐
	         ▼                    ▼                     ▼                  ▼
	   ┌───────────┐       ┌─────────────┐      ┌──────────────┐   ┌──────────────┐
	   │   Order   │       │ images.Build│      │   Runtime    │   │  Connector   │
	   │ topo sort │       │ spec render │      │ docker calls │   │ API clients  │
	   └───────────┘       └─────────────┘      └──────┬───────┘   └──────┬───────┘
	                                                   │                  │
	                                            ┌──────▼───────┐   ┌──────▼───────┐
	                                            │ InstanceStore│   │   Registry   │
	                                            │ (bbolt)      │   │ (clients)    │
	                                            └──────────────┘   └──────────────┘

Deployer depends on the Runtime and Connector interfaces only. The swarm
binary wires runtime.DockerRuntime and ClientConnector; tests wire fakes.

# Startup Order

Order is a stable topological sort over each image's links. Nodes without
links keep their declared order, and a link cycle is an error. For the
default stack:

	bitcoind ──▶ lnd ──▶ proxy ──▶ relay
	               │                 ▲
	               └─────────────────┘
	neo4j ──▶ jarvis ──▶ boltwall ◀── lnd
	cache (links only to external nodes)

# Bringing a Stack Up

For every node in order, Up:

 1. resolves links and lists the files the builder needs (images.Requirements)
 2. fetches those files from running dependencies, retrying while they
    have not been written yet
 3. renders the container spec (images.Build)
 4. creates the node's volume directory and starts the container, or
    leaves it alone when it already runs
 5. records the container in the instance ledger
 6. hands the node to the Connector, which waits for its API and
    registers a client; neo4j is checked with cypher-shell inside the
    container and jarvis over HTTP before dependents start

A failure stops the walk: nodes started so far keep running and a second Up
continues from where the first one stopped.

# Artifacts

Some builders need files that only exist once a dependency has started.
Boltwall embeds lnd's TLS certificate and admin macaroon in its
environment, so both are read out of the lnd container before boltwall
is rendered:

	┌────────────┐   tls.cert, admin.macaroon    ┌────────────┐
	│    lnd     │ ─────────────────────────────▶│  boltwall  │
	└────────────┘                               └────────────┘

Fetch reads them with Runtime.ReadFile and retries on
runtime.ErrFileNotReady under Config.ArtifactRetry (health.ArtifactRetry
by default: ten attempts, three seconds apart). Any other error, a missing
container included, fails at once.

# Connecting

ClientConnector knows how to reach each image:

	bitcoind   RPC getinfo, then load or create the wallet
	lnd        unlock (init from the stored seed on first start), then gRPC
	           with the admin macaroon
	proxy      TCP dial of the admin port
	relay      HTTP, with the relay token from the secrets bundle
	boltwall   admin client, no wait
	neo4j      cypher-shell "RETURN 1" inside the container (needs Execer)
	jarvis     HTTP answer below 500
	cache      nothing to wait for
	traefik    nothing to wait for

Waits use health.ServiceRetry unless Retry is changed. With DockerRun set
the connector addresses containers by their network alias; otherwise it
uses localhost and the published ports.

# Taking a Stack Down

Down removes every container of the project:

	ledger entries ──┐
	                 ├──▶ union by name ──▶ errgroup (StopParallelism) ──▶ StopAndRemove
	project label  ──┘

Containers recorded in the ledger and containers only carrying the project
label are both removed, a few at a time. A container that is already gone
is not an error. Client connections and ledger entries of removed nodes
are dropped afterwards.

Volume directories and named volumes are never deleted, so wallets and
databases survive a down and up.

# Usage

	d, err := deploy.NewDeployer(deploy.Config{
		Project:         "stack",
		Network:         "sphinx-stack",
		Runtime:         rt,
		Volumes:         vols,
		Ledger:          store,
		Secrets:         secrets,
		Connector:       deploy.NewClientConnector(registry, secrets, nil, false),
		ArtifactRetry:   health.ArtifactRetry,
		StopParallelism: 4,
	})
	if err != nil {
		return err
	}
	if err := d.Up(ctx, stack); err != nil {
		return err
	}

# Monitoring

  - swarm_containers_created_total counts containers Up had to create
  - swarm_containers_removed_total counts containers Down removed

# Troubleshooting

"failed to fetch lnd.sphinx:...: file not ready": lnd did not write its
credentials within the retry window. Check "docker logs lnd.sphinx" for
wallet or chain backend errors.

"failed to connect to neo4j": the database did not answer cypher-shell in
time. The first start of neo4j can take a minute; run Up again.

# See Also

  - pkg/images for the per-image container specs
  - pkg/runtime for the engine calls
  - pkg/clients for the API clients the connector registers
*/
package deploy
