package worker

import (
	"github.com/spec-kit/storefront/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// dispatcher. Delivery is synchronous with Publish.
func StartNotificationWorker(notifications *service.NotificationService) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
}
