// Package service holds the storefront's domain rules on top of the typed
// repositories.
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/events"
)

// isoMillis matches the browser's toISOString output and sorts lexically.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

type base struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

func newBase(dispatcher events.Dispatcher, logger *zap.Logger, now Clock) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return base{dispatcher: dispatcher, logger: logger, now: now}
}

func (b base) publish(ctx context.Context, event events.Event) {
	if b.dispatcher == nil {
		return
	}
	if err := b.dispatcher.Publish(ctx, event); err != nil {
		b.logger.Warn("event publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
