package broadcast

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvLine(t *testing.T, sub *Subscription) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := sub.Recv(ctx)
	require.NoError(t, err)
	require.Zero(t, msg.Lagged, "unexpected lag notice")
	return msg.Line
}

func TestTwoSubscribersReceiveEveryLine(t *testing.T) {
	ch := NewChannel(16)
	a := ch.Subscribe()
	b := ch.Subscribe()
	defer a.Close()
	defer b.Close()

	for i := 0; i < 5; i++ {
		ch.Publish(fmt.Sprintf("line %d", i))
	}

	for i := 0; i < 5; i++ {
		want := fmt.Sprintf("line %d", i)
		assert.Equal(t, want, recvLine(t, a))
		assert.Equal(t, want, recvLine(t, b))
	}
	assert.Equal(t, 2, ch.SubscriberCount())
}

func TestLaggedSubscriberContinues(t *testing.T) {
	ch := NewChannel(4)
	fast := ch.Subscribe()
	slow := ch.Subscribe()

	for i := 0; i < 10; i++ {
		ch.Publish(fmt.Sprintf("line %d", i))
		if i < 4 {
			assert.Equal(t, fmt.Sprintf("line %d", i), recvLine(t, fast))
		}
	}

	msg, err := slow.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(6), msg.Lagged)

	for i := 6; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("line %d", i), recvLine(t, slow))
	}

	// fast read lines 0-3 and then also fell behind by two
	msg, err = fast.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), msg.Lagged)
	assert.Equal(t, "line 6", recvLine(t, fast))
}

func TestSubscribeStartsAtNextLine(t *testing.T) {
	ch := NewChannel(8)
	ch.Publish("before")
	sub := ch.Subscribe()
	ch.Publish("after")

	assert.Equal(t, "after", recvLine(t, sub))
}

func TestCloseDrainsThenErrClosed(t *testing.T) {
	ch := NewChannel(8)
	sub := ch.Subscribe()
	ch.Publish("last")
	ch.Close()
	ch.Publish("ignored")

	assert.Equal(t, "last", recvLine(t, sub))
	_, err := sub.Recv(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, ch.Closed())
}

func TestRecvBlocksUntilPublish(t *testing.T) {
	ch := NewChannel(8)
	sub := ch.Subscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	go func() {
		defer wg.Done()
		msg, err := sub.Recv(context.Background())
		if err == nil {
			got = msg.Line
		}
	}()

	time.Sleep(10 * time.Millisecond)
	ch.Publish("wake")
	wg.Wait()
	assert.Equal(t, "wake", got)
}

func TestCancelEndsOnlyThatSubscription(t *testing.T) {
	ch := NewChannel(8)
	cancelled := ch.Subscribe()
	other := ch.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cancelled.Recv(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	cancelled.Close()
	cancelled.Close()

	ch.Publish("still flowing")
	assert.Equal(t, "still flowing", recvLine(t, other))
	assert.Equal(t, 1, ch.SubscriberCount())
}
