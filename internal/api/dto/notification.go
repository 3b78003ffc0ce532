package dto

import (
	"github.com/naasdev/naas/internal/domain/notification"
	"github.com/naasdev/naas/internal/types"
)

type NotificationResponse struct {
	*notification.Notification
}

type ListNotificationsResponse = types.ListResponse[*NotificationResponse]

// DispatchNotificationsResponse summarises one pass over pending notifications
type DispatchNotificationsResponse struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}
