package worker

import (
	"github.com/spec-kit/maintenance-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to lifecycle
// events. Delivery happens inline on publish; the worker only does wiring.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
