/*
Package clients holds the per-kind API clients the dispatcher uses to
administer running nodes, and the Registry that maps node names to them.

	Kind       Transport                         Auth
	lnd        gRPC (lnrpc) over TLS             admin macaroon, hex in metadata
	bitcoind   JSON-RPC over HTTP POST (btcd)    rpc user and password
	relay      HTTP JSON                         x-admin-token header
	proxy      HTTP JSON on the admin port       x-admin-token header
	boltwall   HTTP                              x-admin-token header

HTTP calls time out after 20 seconds. Clients address nodes by localhost
and their published ports, or by docker hostname when the control process
runs inside the stack network (see Host).

A client is registered only after its node answered: ConnectRelay polls the
relay's setup check, and lnd's Unlocker creates or unlocks the wallet
before the macaroon-authenticated LndClient is built.
*/
package clients
