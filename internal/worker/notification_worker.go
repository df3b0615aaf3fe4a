package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/staff-schedule/internal/events"
	"github.com/spec-kit/staff-schedule/internal/service"
)

// StartNotificationWorker subscribes the notification service to schedule
// events. Delivery runs on the publishing request, after its commit.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
	if logger != nil {
		logger.Info("schedule notifications subscribed",
			zap.Strings("events", []string{
				string(events.EventScheduleSaved),
				string(events.EventScheduleApprovalChanged),
			}))
	}
}
