package docstore

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// Snapshot is one delivery to a subscriber. Err is set instead of Documents
// when the re-list failed.
type Snapshot struct {
	Documents []Document
	FromCache bool
	Err       error
}

// Subscription streams snapshots of one collection until closed.
type Subscription struct {
	events chan Snapshot
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Events is closed after Close returns or the parent context ends. Only the
// latest undelivered snapshot is kept for a slow consumer.
func (s *Subscription) Events() <-chan Snapshot {
	return s.events
}

// Close stops the subscription and waits for its goroutine. Safe to call
// more than once and from any goroutine.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// Subscribe delivers the current snapshot immediately and again after every
// change to the collection.
func (c *Client) Subscribe(ctx context.Context, collection string, opts ListOptions) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, errorutil.NewUnavailable(err)
	}
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		events: make(chan Snapshot, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	local, unsubscribe := c.hub.subscribe(collection)
	var remote <-chan struct{}
	if w, ok := c.backend.(Watcher); ok {
		ch, err := w.Watch(subCtx, collection)
		if err != nil {
			c.logger.Warn("backend watch unavailable, using local change feed",
				zap.String("collection", collection), zap.Error(err))
		} else {
			remote = ch
		}
	}

	fetch := func() (Snapshot, bool) {
		res, err := c.List(subCtx, collection, opts)
		if subCtx.Err() != nil {
			return Snapshot{}, false
		}
		if err != nil {
			return Snapshot{Err: err}, true
		}
		return Snapshot{Documents: res.Documents, FromCache: res.FromCache}, true
	}

	go func() {
		defer close(sub.done)
		defer close(sub.events)
		defer unsubscribe()

		if snap, ok := fetch(); ok {
			sub.deliver(snap)
		}
		for {
			select {
			case <-subCtx.Done():
				return
			case <-local:
			case _, open := <-remote:
				if !open {
					remote = nil
					continue
				}
			}
			if snap, ok := fetch(); ok {
				sub.deliver(snap)
			}
		}
	}()
	return sub, nil
}

// deliver replaces any unread snapshot. Only the subscription goroutine
// sends, so after draining there is room.
func (s *Subscription) deliver(snap Snapshot) {
	select {
	case s.events <- snap:
		return
	default:
	}
	select {
	case <-s.events:
	default:
	}
	s.events <- snap
}

// hub fans out change signals for writes made through this client.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[int]chan struct{}
	next int
}

func newHub() *hub {
	return &hub{subs: map[string]map[int]chan struct{}{}}
}

func (h *hub) subscribe(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	if h.subs[collection] == nil {
		h.subs[collection] = map[int]chan struct{}{}
	}
	key := h.next
	h.next++
	h.subs[collection][key] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs[collection], key)
		h.mu.Unlock()
	}
}

func (h *hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
