package mongoex

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/event"
)

// PoolMetrics keeps connection pool statistics for one named connection, from the driver's
// pool events. It is a system.MetricProducer.
type PoolMetrics struct {
	name string

	mu                 sync.RWMutex
	connClosed         int64
	poolCreated        int64
	connCreated        int64
	getFailed          int64
	getSucceeded       int64
	connReturned       int64
	poolCleared        int64
	poolClosed         int64
	maxPoolSize        uint64
	minPoolSize        uint64
	waitQueueTimeoutMS uint64
}

func NewPoolMetrics(name string) *PoolMetrics {
	return &PoolMetrics{
		name: name,
	}
}

func (c *PoolMetrics) MetricName() string {
	return c.name
}

func (c *PoolMetrics) Gauges(_ context.Context) map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]float64{
		"connection_closed":     float64(c.connClosed),
		"connection_created":    float64(c.connCreated),
		"connection_in_use":     float64(c.getSucceeded - c.connReturned),
		"pool_created":          float64(c.poolCreated),
		"get_failed":            float64(c.getFailed),
		"get_succeeded":         float64(c.getSucceeded),
		"connection_returned":   float64(c.connReturned),
		"pool_cleared":          float64(c.poolCleared),
		"pool_closed":           float64(c.poolClosed),
		"max_pool_size":         float64(c.maxPoolSize),
		"min_pool_size":         float64(c.minPoolSize),
		"wait_queue_timeout_ms": float64(c.waitQueueTimeoutMS),
	}
}

// PoolMonitor returns a monitor to give to the driver. Events are passed on to parent, if there is one.
func (c *PoolMetrics) PoolMonitor(parent *event.PoolMonitor) *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(e *event.PoolEvent) {
			if parent != nil && parent.Event != nil {
				parent.Event(e)
			}
			c.updateStats(e)
		},
	}
}

func (c *PoolMetrics) updateStats(e *event.PoolEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Type {
	case event.ConnectionClosed:
		c.connClosed++
	case event.PoolCreated:
		c.poolCreated++
	case event.ConnectionCreated:
		c.connCreated++
	case event.GetFailed:
		c.getFailed++
	case event.GetSucceeded:
		c.getSucceeded++
	case event.ConnectionReturned:
		c.connReturned++
	case event.PoolCleared:
		c.poolCleared++
	case event.PoolClosedEvent:
		c.poolClosed++
	}

	if e.PoolOptions != nil {
		c.maxPoolSize = e.PoolOptions.MaxPoolSize
		c.minPoolSize = e.PoolOptions.MinPoolSize
		c.waitQueueTimeoutMS = e.PoolOptions.WaitQueueTimeoutMS
	}
}
