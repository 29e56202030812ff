package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/config"
	"github.com/spec-kit/storefront/internal/events"
)

// NotificationService turns domain events into log entries for email and
// webhook sinks.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOrderSubmitted, n.handleOrderSubmitted)
	n.dispatcher.Subscribe(events.EventOrderStatusChanged, n.handleStaffFacing)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketReplyAdded, n.handleTicketReplyAdded)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStaffFacing)
	n.dispatcher.Subscribe(events.EventUserRoleChanged, n.handleStaffFacing)
	n.dispatcher.Subscribe(events.EventBackupCreated, n.handleStaffFacing)
	n.dispatcher.Subscribe(events.EventBackupRestored, n.handleStaffFacing)
}

func (n *NotificationService) handleOrderSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderSubmitted", zap.String("order_id", event.RecordID), zap.Any("payload", event.Payload))
	n.logEmailNotification(ctx, event)
	n.logWebhookNotification(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.RecordID), zap.Any("payload", event.Payload))
	n.logEmailNotification(ctx, event)
	n.logWebhookNotification(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketReplyAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketReplyAdded", zap.String("ticket_id", event.RecordID), zap.Any("payload", event.Payload))
	n.logEmailNotification(ctx, event)
	return nil
}

func (n *NotificationService) handleStaffFacing(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("record_id", event.RecordID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	n.logWebhookNotification(ctx, event)
	return nil
}

// logEmailNotification records the mail that would go out. There is no mail
// transport; the entry is the delivery.
func (n *NotificationService) logEmailNotification(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("record_id", event.RecordID),
		zap.String("event_type", string(event.Type)))
}

// logWebhookNotification records the webhook call that would be made.
func (n *NotificationService) logWebhookNotification(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("record_id", event.RecordID),
		zap.String("event_type", string(event.Type)))
}
