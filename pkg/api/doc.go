/*
Package api exposes the control plane of a stack over HTTP.

Routes:

	POST /login          {username,password} -> {token}          open
	GET  /refresh_jwt    -> {token}                               bearer
	GET  /cmd?tag&txt    run one command, body is its JSON result bearer
	GET  /logs?tag       last lines of a node's container         bearer
	GET  /logstream?tag  server-sent events of new log lines      bearer or ?token=
	GET  /health         component health, 503 when one is down   open
	GET  /ready          stack readable and docker reachable      open
	GET  /metrics        prometheus                               open

Tokens are sent as "Authorization: Bearer <jwt>". Browsers cannot set
headers on an EventSource, so /logstream also accepts the token query
parameter.

Commands run under a context detached from the request: a client that
disconnects does not abort a command half way. Log streams end when the
client goes away or the server stops.

Each log line is sent as a JSON string in the data field. A subscriber
that falls behind the ring buffer receives

	event: lagged
	data: <number of skipped lines>

and then continues with the oldest line still held.

Errors are JSON {"error": "..."} with the status chosen by error kind:
401 bad credentials, 403 not allowed, 400 malformed command, 404 unknown
node or client, 500 anything else.
*/
package api
