/*
Package storage persists the state of a swarm project.

Everything lives under <data-dir>/<project>/:

	vol/stack/
	├── config.json     stack document (FileStore)
	├── secrets.json    secrets bundle (FileStore)
	└── instances.db    container ledger (BoltInstanceStore)

# Stack and secrets

FileStore writes JSON documents in full on every save, through a temp file
and a rename. LoadStack creates the default topology on first run;
LoadSecrets generates the secrets bundle on first run and afterwards
returns the stored bundle untouched. A bundle that cannot be decoded is an
error and is never overwritten.

# Instance ledger

BoltInstanceStore records the containers swarm created, keyed by node name,
in a single "instances" bucket. Teardown reads it to find containers even
when the stack document has changed since they were created.
*/
package storage
