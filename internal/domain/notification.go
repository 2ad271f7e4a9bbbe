package domain

import "time"

// NotificationChannel enumerates delivery transports.
type NotificationChannel string

const (
	ChannelEmail   NotificationChannel = "EMAIL"
	ChannelWebhook NotificationChannel = "WEBHOOK"
)

// DeliveryStatus tracks the outcome of one delivery attempt.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

// NotificationRecord is one (recipient, channel) delivery attempt. Attempts
// are never retried automatically.
type NotificationRecord struct {
	ID        string
	TicketID  string
	EventKind string
	Channel   NotificationChannel
	Recipient string
	Subject   string
	Body      string
	Status    DeliveryStatus
	Error     string
	SentAt    *time.Time
	CreatedAt time.Time
}
