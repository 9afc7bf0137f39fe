/*
Package log provides structured logging for swarm using zerolog.

A single package-level Logger is configured once by Init from the CLI and
shared by every package. Components derive child loggers so that every line
carries enough context to be filtered later:

	log.WithComponent("deploy")  // component=deploy
	log.WithNode("lnd")          // node=lnd
	log.WithProject("stack")     // project=stack

# Output

Console output is the default and is meant for operators watching the
bootstrap of a stack:

	10:30AM INF container started component=deploy node=lnd id=3f2a...

JSON output (--log-json) is meant for log shippers:

	{"level":"info","component":"deploy","node":"lnd","time":"...","message":"container started"}

# Levels

Debug, info, warn and error are accepted. ParseLevel falls back to info for
anything it does not recognise so a typo in an environment variable never
prevents the process from starting.

Container output is not routed through this package. Lines read from the
Docker engine are fanned out to subscribers by pkg/broadcast and are never
re-logged, which keeps the process log readable when a chatty node is
being tailed.
*/
package log
