package broadcast

import (
	"context"
	"errors"
	"sync"

	"github.com/cuemby/swarm/pkg/metrics"
	"github.com/google/uuid"
)

// DefaultCapacity is the number of lines a channel retains
const DefaultCapacity = 256

// ErrClosed is returned by Recv once the channel is closed and the
// subscriber has read every retained line
var ErrClosed = errors.New("broadcast channel closed")

// Message is one delivery to a subscriber: either a line, or a notice that
// Lagged lines were overwritten before the subscriber read them
type Message struct {
	Line   string
	Lagged uint64
}

// Channel fans out lines to any number of subscribers. It keeps the last
// capacity lines; a subscriber that falls further behind is told how many
// it missed and resumes from the oldest retained line.
type Channel struct {
	mu     sync.Mutex
	buf    []string
	next   uint64 // sequence number of the next published line
	closed bool
	wake   chan struct{}
	subs   int
}

// NewChannel creates a channel retaining capacity lines
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{
		buf:  make([]string, capacity),
		wake: make(chan struct{}),
	}
}

// Publish appends a line and wakes waiting subscribers. Publishing to a
// closed channel is a no-op.
func (c *Channel) Publish(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.buf[c.next%uint64(len(c.buf))] = line
	c.next++
	c.notify()
}

// Close marks the end of the stream. Subscribers drain what is retained
// and then receive ErrClosed.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.notify()
}

// Closed reports whether Close was called
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// SubscriberCount returns the number of open subscriptions
func (c *Channel) SubscriberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs
}

// notify must be called with mu held
func (c *Channel) notify() {
	close(c.wake)
	c.wake = make(chan struct{})
}

// oldest must be called with mu held
func (c *Channel) oldest() uint64 {
	if c.next > uint64(len(c.buf)) {
		return c.next - uint64(len(c.buf))
	}
	return 0
}

// Subscribe returns a subscription that starts at the next published line
func (c *Channel) Subscribe() *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs++
	metrics.LogSubscribers.Inc()
	return &Subscription{ID: uuid.NewString(), ch: c, pos: c.next}
}

// Subscription is one reader of a Channel
type Subscription struct {
	ID string

	ch   *Channel
	pos  uint64
	once sync.Once
}

// Recv blocks until a message is available, the channel is closed, or ctx
// is done. Cancelling ctx affects only this subscription.
func (s *Subscription) Recv(ctx context.Context) (Message, error) {
	c := s.ch
	for {
		c.mu.Lock()
		if oldest := c.oldest(); s.pos < oldest {
			lagged := oldest - s.pos
			s.pos = oldest
			c.mu.Unlock()
			metrics.LogLagged.Inc()
			return Message{Lagged: lagged}, nil
		}
		if s.pos < c.next {
			line := c.buf[s.pos%uint64(len(c.buf))]
			s.pos++
			c.mu.Unlock()
			return Message{Line: line}, nil
		}
		if c.closed {
			c.mu.Unlock()
			return Message{}, ErrClosed
		}
		wake := c.wake
		c.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
}

// Close releases the subscription
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.ch.mu.Lock()
		s.ch.subs--
		s.ch.mu.Unlock()
		metrics.LogSubscribers.Dec()
	})
}
