/*
Package health decides when a freshly started service can be used.

A container that is running is not necessarily serving: lnd must create or
unlock its wallet, the relay must finish its setup, the chain node must
open its RPC port. Checkers test one of these conditions:

	HTTPChecker   GET a URL, check status and optionally the body
	TCPChecker    open a TCP connection
	ExecChecker   run a command inside the container
	CheckFunc     any function returning an error

Wait polls a checker with a constant interval for a bounded number of
attempts. Retry does the same for an arbitrary operation and stops early
when the error is not retryable:

	err := health.Retry(ctx, health.ArtifactRetry,
		func(err error) bool { return errors.Is(err, runtime.ErrFileNotReady) },
		func() error { data, err = rt.ReadFile(ctx, name, path); return err })

Both are built on github.com/cenkalti/backoff/v4 and honour context
cancellation.
*/
package health
