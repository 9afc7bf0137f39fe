// Package config holds the process configuration of the swarm binary:
// where state lives, which project to run, how to log and where to serve
// the control API. Flags are bound with BindFlags; the command layer maps
// SWARM_* environment variables and an optional config file onto them.
package config
