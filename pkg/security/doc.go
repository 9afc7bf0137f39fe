/*
Package security holds the random material a swarm project depends on.

A project's secrets are generated once, on the first run, and written next to
the stack document. Every later start loads them verbatim. Nothing in this
package regenerates a value that already exists: the lnd wallet is created
from the seed words and unlocked with the stored password, so a new value
would lock the operator out of the wallet.

# Secrets bundle

	┌──────────────────────┬──────────────────────────────────────┐
	│ key                  │ value                                │
	├──────────────────────┼──────────────────────────────────────┤
	│ bitcoind_pass        │ 20 alphanumeric characters           │
	│ lnd_password         │ 20 alphanumeric characters           │
	│ lnd_mnemonic         │ 24 aezeed words, space separated     │
	│ admin_password       │ 16 alphanumeric characters           │
	│ jwt_key              │ 32 random bytes, hex                 │
	│ relay_token_<name>   │ admin token of one relay node        │
	└──────────────────────┴──────────────────────────────────────┘

Use Secrets.Ensure for keys that depend on the topology (relay tokens) and
FillDefaults for the fixed set.

# Encoding helpers

Some services read credentials of their peers from the environment. The
helpers in certs.go strip the PEM armour of a TLS certificate and encode
macaroons as base64 or hex after checking they decode.

	b64, err := security.CertToBase64(tlsCertPEM)
	mac, err := security.MacaroonToBase64(adminMacaroon)
*/
package security
