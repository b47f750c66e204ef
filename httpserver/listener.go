package httpserver

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
)

// trackedListener counts the connections it has accepted, and how many are still open.
type trackedListener struct {
	net.Listener
	name string

	active   int64
	accepted int64
}

func (l *trackedListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&l.active, 1)
	atomic.AddInt64(&l.accepted, 1)
	return &trackedConn{Conn: conn, listener: l}, nil
}

func (l *trackedListener) MetricName() string {
	return l.name
}

func (l *trackedListener) Gauges(context.Context) map[string]float64 {
	return map[string]float64{
		"active_connections":   float64(atomic.LoadInt64(&l.active)),
		"accepted_connections": float64(atomic.LoadInt64(&l.accepted)),
	}
}

type trackedConn struct {
	net.Conn
	listener *trackedListener
	once     sync.Once
}

func (c *trackedConn) Close() error {
	c.once.Do(func() {
		atomic.AddInt64(&c.listener.active, -1)
	})
	return c.Conn.Close()
}
