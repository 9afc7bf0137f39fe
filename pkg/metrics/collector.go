package metrics

import (
	"context"
	"time"

	"github.com/cuemby/swarm/pkg/types"
)

// StackSource exposes the current stack and its live containers
type StackSource interface {
	// Snapshot returns a copy of the stack
	Snapshot() (*types.Stack, error)

	// ContainerCount returns the number of containers of the project
	ContainerCount(ctx context.Context) (int, error)
}

// Collector periodically refreshes the stack gauges
type Collector struct {
	source   StackSource
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a collector polling every 15 seconds
func NewCollector(source StackSource) *Collector {
	return &Collector{
		source:   source,
		interval: 15 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectNodeMetrics()
	c.collectContainerMetrics()
}

func (c *Collector) collectNodeMetrics() {
	stack, err := c.source.Snapshot()
	if err != nil {
		UpdateComponent("stack", false, err.Error())
		return
	}
	UpdateComponent("stack", true, "")
	if stack == nil {
		return
	}

	internal, external := 0, 0
	for _, n := range stack.Nodes {
		if n.Internal != nil {
			internal++
		} else {
			external++
		}
	}
	NodesTotal.WithLabelValues("internal").Set(float64(internal))
	NodesTotal.WithLabelValues("external").Set(float64(external))
}

func (c *Collector) collectContainerMetrics() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := c.source.ContainerCount(ctx)
	if err != nil {
		UpdateComponent("docker", false, err.Error())
		return
	}
	UpdateComponent("docker", true, "")
	ContainersRunning.Set(float64(n))
}
