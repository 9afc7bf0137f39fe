/*
Package runtime drives service containers through the Docker engine.

The runtime package is the only place swarm talks to the container engine.
DockerRuntime is a thin adapter over client.APIClient: it creates, starts,
stops and removes containers, reads their logs and copies files out of
them. Every call carries the caller's context and nothing else; the
engine's own responsiveness is the only timeout.

# Architecture

	┌──────────────────────── swarm process ─────────────────────────┐
	│                                                                  │
	│   deploy.Deployer      manager.Manager      broadcast.Hub        │
	│   (Up / Down)          (Logs)               (Follow)             │
	│        │                    │                    │               │
	│        └────────────┬───────┴────────────┬───────┘               │
	│                     ▼                    ▼                       │
	│            ┌─────────────────────────────────────┐               │
	│            │            DockerRuntime            │               │
	│            │  - EnsureRunning / StopAndRemove    │               │
	│            │  - EnsureNetwork / CreateVolume     │               │
	│            │  - Logs / Follow                    │               │
	│            │  - ReadFile / Exec                  │               │
	│            └──────────────────┬──────────────────┘               │
	│                               │ client.APIClient                 │
	└───────────────────────────────┼──────────────────────────────────┘
	                                ▼
	                  /var/run/docker.sock (or DOCKER_HOST)
	                                │
	        ┌──────────────┬────────┴─────┬──────────────┐
	        ▼              ▼              ▼              ▼
	  bitcoind.sphinx  lnd.sphinx   relay.sphinx    neo4j.sphinx ...

Callers depend on small interfaces (deploy.Runtime, health.Execer,
broadcast.Follower) rather than on DockerRuntime itself, so tests swap in
fakes without a daemon.

# Naming

A container is named after its hostname, which is the node name plus
".sphinx". The same name is its alias on the project network, so
"lnd.sphinx:10009" resolves from every other container of the project.
Lookups by name are exact: the engine's name filter matches substrings, so
"/proxy.sphinx-old" is never mistaken for "/proxy.sphinx".

Every container created here carries the LabelProject label. Down uses it
to find containers the instance ledger lost track of.

# Container Lifecycle

	EnsureRunning(spec)
	   │
	   ├── container "/<hostname>" exists (any state)? ──yes──▶ return its id
	   │
	   ├── image names a repository path? ──yes──▶ pull
	   │
	   ├── create named volumes listed in spec.Volumes
	   │
	   ├── create: ports, binds, env or cmd, labels,
	   │           host.docker.internal, project network alias
	   │
	   └── start ──▶ return new id

	StopAndRemove(id): stop with a 9 second grace period, then force remove

EnsureRunning is idempotent by name, so bringing a stack up twice is safe.
An existing container is returned as is, stopped or not: a changed spec
takes effect only after the container is removed.

# Image Pulls

PullRef decides whether an image is pulled before create:

	lightninglabs/lnd:v0.16.2-beta  ──▶ docker.io/lightninglabs/lnd:v0.16.2-beta  pull
	bitnami/neo4j                   ──▶ docker.io/bitnami/neo4j:latest           pull
	ghcr.io/org/repo:1.0            ──▶ ghcr.io/org/repo:1.0                     pull
	sphinx-relay:latest             ──▶ used as is                               no pull
	org/UPPER                       ──▶ error

References are parsed with github.com/distribution/reference. A bare name
with no repository path is treated as a locally built image and never
pulled. The first path component is read as a registry when it looks like
one, which is how the reference grammar works: "UPPER/case" parses as
repository "case" on registry "UPPER".

# Logs

Logs fetches a bounded tail (DefaultLogTail lines unless told otherwise)
and never fails: an unknown container yields an empty slice, since missing
logs are not an administrative error.

Follow streams new lines until the container's log stream ends or the
context is cancelled. The engine multiplexes stdout and stderr into one
framed stream; Follow demultiplexes it with stdcopy through an io.Pipe and
scans lines of up to 1 MiB:

	ContainerLogs(follow) ──▶ stdcopy.StdCopy ──▶ io.Pipe ──▶ bufio.Scanner ──▶ chan string

The returned channel is closed in both cases, so a range loop over it ends
cleanly.

# Files and Exec

ReadFile copies a single file out of a container. The engine answers with
a tar stream; the first regular file in it is returned. Failures are split
so callers know whether waiting helps:

	container absent                    ──▶ ErrContainerNotFound
	path absent inside the container    ──▶ ErrFileNotReady
	archive holds no regular file       ──▶ ErrFileNotReady
	file is empty                       ──▶ ErrFileNotReady
	anything else                       ──▶ wrapped engine error

ErrFileNotReady is retried while a dependency finishes starting, for
example while lnd has not yet written its admin macaroon.

Exec runs a command inside a running container and returns its combined
output. The output stream can close before the process is reaped, so Exec
polls exec inspect until the process has exited:

	ExecCreate ──▶ ExecAttach ──▶ read output ──▶ ExecInspect ─┬─ running ──▶ wait, inspect again
	                                                           ├─ exit 0  ──▶ output
	                                                           └─ exit N  ──▶ output, error

Cancelling the context stops the polling. Exec backs the neo4j readiness
check, which runs cypher-shell inside the database container.

# Usage

	rt, err := runtime.NewSharedDockerRuntime()
	if err != nil {
		return err
	}
	if err := rt.Ping(ctx); err != nil {
		return err
	}

	id, err := rt.EnsureRunning(ctx, &runtime.ContainerSpec{
		Image:    "lightninglabs/lnd:v0.16.2-beta",
		Hostname: "lnd.sphinx",
		Ports:    []string{"9735", "10009"},
		Binds:    []string{"/vol/stack/lnd:/home/.lnd"},
		Network:  "sphinx-stack",
		Project:  "stack",
	})

	mac, err := rt.ReadFile(ctx, "lnd.sphinx", "/home/.lnd/data/chain/bitcoin/regtest/admin.macaroon")
	if errors.Is(err, runtime.ErrFileNotReady) {
		// lnd is still starting
	}

# Client

SharedClient returns one process-wide engine client. It honours
DOCKER_HOST and otherwise tries the usual socket paths of Docker Engine,
Docker Desktop and colima. API version negotiation is on, so older daemons
work. Callers must not close the shared client.

# Troubleshooting

"failed to reach docker daemon": the socket was not found or is not
readable by the current user. Set DOCKER_HOST or add the user to the
docker group.

A container keeps an old configuration: EnsureRunning never recreates an
existing container. Run "swarm down" and bring the stack up again.

# See Also

  - pkg/deploy for the order in which containers are started
  - pkg/health for the retry loops around ReadFile and Exec
  - pkg/broadcast for sharing one Follow stream among many readers
*/
package runtime
