// Package models содержит модель записи журнала действий поддержки.
package models

import (
	"encoding/json"
	"time"
)

// Действия поддержки, фиксируемые в журнале.
const (
	AuditActionUpdateSubscription = "update_subscription"
	AuditActionSetSupportAccess   = "set_support_access"
	AuditActionSetLock            = "set_lock"
	AuditActionSetEndDate         = "set_subscription_end_date"
	AuditActionSetRenewalDate     = "set_renewal_date"
	AuditActionExpireSubscription = "expire_subscription"
)

// AuditLog представляет запись журнала: кто из поддержки, над кем,
// какое действие и состояние до и после в формате JSON.
type AuditLog struct {
	ID             int             `json:"id"`
	SupportUserUID string          `json:"support_user_uid"`
	TargetUserUID  string          `json:"target_user_uid"`
	Action         string          `json:"action"`
	PreviousState  json.RawMessage `json:"previous_state"`
	NewState       json.RawMessage `json:"new_state"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SubscriptionExpiredEvent публикуется в очередь событий после успешного
// завершения подписки сотрудником поддержки.
type SubscriptionExpiredEvent struct {
	UserUID   string         `json:"user_uid"`
	Email     string         `json:"email"`
	Username  string         `json:"username"`
	ExpiredAt time.Time      `json:"expired_at"`
	Actions   []ExpiryAction `json:"actions"`
}
