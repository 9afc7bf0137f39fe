/*
Package volume manages the host directories bound into service containers.

Each service of a project gets an isolated subtree under the volumes root:

	vol/
	└── stack/              project
	    ├── bitcoind/       → /home/bitcoin/.bitcoin
	    ├── lnd/            → /home/.lnd
	    ├── proxy/          → /app/proxy
	    └── relay/          → /relay/.lnd

Some services also mount a peer's directory. The payment proxy mounts the
lnd directory at /lnd to read its TLS certificate and macaroon:

	d.Bind("stack", "lnd", "/lnd")   // <root>/stack/lnd:/lnd

Bind only renders the mount string. Create makes the directory and is
called before the container is created so Docker does not create it as
root.
*/
package volume
