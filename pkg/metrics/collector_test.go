package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/swarm/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	stack *types.Stack
	count int
	err   error
}

func (f *fakeSource) Snapshot() (*types.Stack, error) { return f.stack, nil }

func (f *fakeSource) ContainerCount(ctx context.Context) (int, error) { return f.count, f.err }

func TestCollector(t *testing.T) {
	resetHealth(t)

	src := &fakeSource{
		stack: &types.Stack{
			Network: "regtest",
			Nodes: []types.Node{
				types.NewInternal(types.NewBtc("bitcoind", "v23.0", "regtest", "sphinx", "pass")),
				types.NewExternal(types.ExternalMeme, "memes", "meme.sphinx.chat"),
				types.NewExternal(types.ExternalTribes, "tribes", "tribes.sphinx.chat"),
			},
		},
		count: 4,
	}

	NewCollector(src).collect()

	assert.Equal(t, float64(1), testutil.ToFloat64(NodesTotal.WithLabelValues("internal")))
	assert.Equal(t, float64(2), testutil.ToFloat64(NodesTotal.WithLabelValues("external")))
	assert.Equal(t, float64(4), testutil.ToFloat64(ContainersRunning))
	docker, _ := Component("docker")
	assert.True(t, docker.Healthy)

	src.err = errors.New("socket closed")
	NewCollector(src).collect()
	docker, _ = Component("docker")
	assert.False(t, docker.Healthy)
	assert.Equal(t, "socket closed", docker.Message)
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(&fakeSource{})
	c.interval = time.Millisecond
	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Stop()
}
