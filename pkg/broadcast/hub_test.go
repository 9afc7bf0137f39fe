package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFollower struct {
	mu      sync.Mutex
	streams map[string]chan string
	calls   map[string]int
}

func newFakeFollower(names ...string) *fakeFollower {
	f := &fakeFollower{streams: make(map[string]chan string), calls: make(map[string]int)}
	for _, n := range names {
		f.streams[n] = make(chan string, 16)
	}
	return f
}

func (f *fakeFollower) Follow(ctx context.Context, name string) (<-chan string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	src, ok := f.streams[name]
	if !ok {
		return nil, errors.New("no such container")
	}
	f.calls[name]++

	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case line, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- line:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (f *fakeFollower) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func TestHubSharesOneFollowerPerContainer(t *testing.T) {
	f := newFakeFollower("lnd.sphinx")
	hub := NewHub(f, 16)
	defer hub.Close()

	a, err := hub.Subscribe("lnd.sphinx")
	require.NoError(t, err)
	b, err := hub.Subscribe("lnd.sphinx")
	require.NoError(t, err)

	assert.Equal(t, 1, f.callCount("lnd.sphinx"))
	assert.Equal(t, 1, hub.Active())

	f.streams["lnd.sphinx"] <- "started"
	assert.Equal(t, "started", recvLine(t, a))
	assert.Equal(t, "started", recvLine(t, b))
}

func TestHubDropsChannelWhenStreamEnds(t *testing.T) {
	f := newFakeFollower("relay.sphinx")
	hub := NewHub(f, 16)
	defer hub.Close()

	sub, err := hub.Subscribe("relay.sphinx")
	require.NoError(t, err)

	close(f.streams["relay.sphinx"])
	_, err = sub.Recv(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	assert.Eventually(t, func() bool { return hub.Active() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubFollowError(t *testing.T) {
	hub := NewHub(newFakeFollower(), 16)
	defer hub.Close()

	_, err := hub.Subscribe("missing")
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Active())
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	f := newFakeFollower("bitcoind.sphinx")
	hub := NewHub(f, 16)

	sub, err := hub.Subscribe("bitcoind.sphinx")
	require.NoError(t, err)

	hub.Close()
	_, err = sub.Recv(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
