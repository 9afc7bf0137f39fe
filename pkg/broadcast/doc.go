/*
Package broadcast fans a container's log stream out to many readers.

The admin UI opens one log stream per browser tab. Following the same
container once per tab would multiply engine connections, so the stream
of each container is read once and shared through a ring buffer.

# Architecture

	                     ┌──────────────────────── Hub ────────────────────────┐
	                     │                                                      │
	  Docker engine      │   pump goroutine           Channel (ring, 256)       │
	  ┌────────────┐     │   ┌──────────────┐        ┌───┬───┬───┬───┬───┐     │
	  │ lnd.sphinx │─────┼──▶│ Follow lines │──────▶ │ 7 │ 8 │ 9 │ 5 │ 6 │     │
	  │   logs     │     │   └──────────────┘Publish└───┴───┴───┴───┴───┘     │
	  └────────────┘     │                              ▲       ▲       ▲     │
	                     │                              │       │       │     │
	                     └──────────────────────────────┼───────┼───────┼─────┘
	                                                    │       │       │
	                                                 sub A   sub B   sub C
	                                                 pos 9   pos 6   pos 3
	                                                  │       │       │
	                                                  ▼       ▼       ▼
	                                                 SSE     SSE     SSE

One Hub serves the whole process. It keeps one Channel per container name
and one pump goroutine feeding it from the engine's follow stream.

# Channel

A Channel keeps a fixed ring of recent lines and a sequence number for the
next one. Publishing overwrites the oldest slot and wakes every waiting
reader by closing and replacing a wake channel, so Publish never blocks on
a reader.

Each Subscription holds its own read position. Recv answers one of:

	pos < oldest retained       ──▶ Message{Lagged: oldest - pos}, pos = oldest
	pos < next                  ──▶ Message{Line: buf[pos]}, pos++
	channel closed              ──▶ ErrClosed
	otherwise                   ──▶ wait for Publish, Close or ctx

A slow reader never blocks the publisher or other readers. When it falls
more than the ring's capacity behind, it is told how many lines it lost
and continues from the oldest line still held. A new subscription starts
at the next published line; history is served by the bounded log tail of
the runtime package instead.

Close marks the channel closed. Readers still drain every retained line
before they see ErrClosed.

# Hub Lifecycle

	Subscribe("lnd.sphinx")
	   │
	   ├── open channel for the name? ──yes──▶ subscribe to it
	   │
	   ├── Follower.Follow(name) ──error──▶ return it (unknown container)
	   │
	   └── new Channel, start pump, subscribe

	pump: Publish every line ──▶ stream ends ──▶ Close channel, drop it

When the container's stream ends, because the container stopped or was
removed, the Channel is closed and removed. The next Subscribe starts a
fresh follower. Hub.Close cancels every follower and waits for the pumps
to exit.

# Usage

	sub, err := hub.Subscribe("lnd.sphinx")
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		msg, err := sub.Recv(ctx)
		if err != nil {
			break // ErrClosed or ctx.Err()
		}
		if msg.Lagged > 0 {
			// tell the client lines were skipped
			continue
		}
		send(msg.Line)
	}

Cancelling the context passed to Recv ends that subscription only.

# Monitoring

  - swarm_log_subscribers is the number of open subscriptions
  - swarm_log_lagged_total counts lag notices sent to slow readers

# Thread Safety

Channel, Subscription and Hub are safe for concurrent use. A single
Subscription is meant to be read by one goroutine.
*/
package broadcast
