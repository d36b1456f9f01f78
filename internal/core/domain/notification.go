package domain

// NotificationType classifies the user-facing message carried back to the
// invoice page after a return from the gateway.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is the outcome message shown to the payer after
// reconciliation. Reconciliation always produces one, even on failure.
type Notification struct {
	Type    NotificationType
	Message string
}
