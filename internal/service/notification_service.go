package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-schedule/internal/config"
	"github.com/spec-kit/staff-schedule/internal/events"
)

// NotificationService handles emitting notifications for schedule events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
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
	n.dispatcher.Subscribe(events.EventScheduleSaved, n.handleScheduleSaved)
	n.dispatcher.Subscribe(events.EventScheduleApprovalChanged, n.handleApprovalChanged)
}

func (n *NotificationService) handleScheduleSaved(ctx context.Context, event events.Event) error {
	n.logger.Info("ScheduleSaved",
		zap.String("month", event.Month),
		zap.String("actor", event.Actor.Username),
		zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.ScheduleSavedPayload); ok && p.WholeMonth {
		n.sendEmailNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleApprovalChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ScheduleApprovalChanged",
		zap.String("month", event.Month),
		zap.String("actor", event.Actor.Username),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("month", event.Month),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("month", event.Month),
		zap.String("event_type", string(event.Type)))
}
