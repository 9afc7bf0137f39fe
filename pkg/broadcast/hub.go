package broadcast

import (
	"context"
	"sync"

	"github.com/cuemby/swarm/pkg/log"
)

// Follower opens a live line stream for a container
type Follower interface {
	Follow(ctx context.Context, name string) (<-chan string, error)
}

// Hub keeps one Channel per container, fed by a single follower
// goroutine. Channels are created on first subscription and dropped when
// the container's stream ends.
type Hub struct {
	follower Follower
	capacity int

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	channels map[string]*Channel
	wg       sync.WaitGroup
}

// NewHub creates a hub whose channels retain capacity lines
func NewHub(follower Follower, capacity int) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		follower: follower,
		capacity: capacity,
		ctx:      ctx,
		cancel:   cancel,
		channels: make(map[string]*Channel),
	}
}

// Subscribe attaches to the log stream of the named container, starting
// the follower if none is running
func (h *Hub) Subscribe(name string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.channels[name]; ok && !ch.Closed() {
		return ch.Subscribe(), nil
	}

	lines, err := h.follower.Follow(h.ctx, name)
	if err != nil {
		return nil, err
	}

	ch := NewChannel(h.capacity)
	h.channels[name] = ch
	sub := ch.Subscribe()

	h.wg.Add(1)
	go h.pump(name, ch, lines)

	return sub, nil
}

func (h *Hub) pump(name string, ch *Channel, lines <-chan string) {
	defer h.wg.Done()
	logger := log.WithComponent("broadcast")
	logger.Debug().Str("container", name).Msg("log follower started")

	for line := range lines {
		ch.Publish(line)
	}
	ch.Close()

	h.mu.Lock()
	if h.channels[name] == ch {
		delete(h.channels, name)
	}
	h.mu.Unlock()

	logger.Debug().Str("container", name).Msg("log follower stopped")
}

// Active returns the number of containers being followed
func (h *Hub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels)
}

// Close stops every follower and waits for them to exit
func (h *Hub) Close() {
	h.cancel()
	h.wg.Wait()
}
