/*
Package metrics exposes the Prometheus metrics and the health endpoints of
the swarm control process.

Metrics, all prefixed swarm_:

	nodes_total{placement}              stack nodes, internal or external
	containers_total                    containers labelled with the project
	containers_created_total            containers created by deploy
	containers_removed_total            containers stopped and removed
	commands_total{type,result}         dispatched commands
	command_duration_seconds{type}      dispatch latency, lock wait included
	log_subscribers                     open log stream subscriptions
	log_lagged_total                    lag notices sent to slow subscribers
	api_requests_total{route,status}    control API requests
	api_request_duration_seconds{route}

The Collector refreshes the stack gauges every 15 seconds from a
StackSource and records the stack and docker components with
UpdateComponent. GetHealth aggregates the registered components for the
API's /health endpoint; one unhealthy component makes the process
unhealthy.

Timing an operation:

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CommandDuration, "Lnd")
*/
package metrics
