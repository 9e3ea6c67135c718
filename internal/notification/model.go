package notification

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Notification is one recorded firing of an alert.
type Notification struct {
	ID              string          `json:"id" db:"id"`
	AlertID         string          `json:"alert_id" db:"alert_id"`
	CompoundRate    decimal.Decimal `json:"compoundRate" db:"compound_rate"`
	ComparisonRates json.RawMessage `json:"comparisonRates,omitempty" db:"comparison_rates"`
	SentAt          time.Time       `json:"sentAt" db:"sent_at"`
}

// SentNotification is one delivery of a Notification over a single channel.
type SentNotification struct {
	ID             string    `json:"id" db:"id"`
	NotificationID string    `json:"notification_id" db:"notification_id"`
	ChannelType    string    `json:"channelType" db:"channel_type"`
	Target         string    `json:"target" db:"target"`
	SentAt         time.Time `json:"sentAt" db:"sent_at"`
}
