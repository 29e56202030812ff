package docstore

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Connectivity is the online/offline flag consulted before every read.
type Connectivity struct {
	online atomic.Bool
}

// NewConnectivity returns a flag in the given initial state.
func NewConnectivity(online bool) *Connectivity {
	c := &Connectivity{}
	c.online.Store(online)
	return c
}

// SetOnline signals that the network is back.
func (c *Connectivity) SetOnline() { c.online.Store(true) }

// SetOffline signals that the network is gone; reads go to the cache.
func (c *Connectivity) SetOffline() { c.online.Store(false) }

// Online reports the current state.
func (c *Connectivity) Online() bool { return c.online.Load() }

// MonitorConnectivity pings the backend right away and then every interval,
// raising the network signals on each transition. It blocks until ctx ends.
// A non-positive interval disables monitoring.
func (c *Client) MonitorConnectivity(ctx context.Context, interval, timeout time.Duration) {
	if interval <= 0 {
		return
	}
	c.probe(ctx, timeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.probe(ctx, timeout)
		}
	}
}

func (c *Client) probe(ctx context.Context, timeout time.Duration) {
	pingCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	err := c.backend.Ping(pingCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	switch {
	case err == nil && !c.conn.Online():
		c.conn.SetOnline()
		c.logger.Info("document store reachable, back online")
	case err != nil && c.conn.Online():
		c.conn.SetOffline()
		c.logger.Warn("document store unreachable, serving from cache", zap.Error(err))
	}
}
