package alert

import (
	"time"

	"github.com/shopspring/decimal"

	"defiguard/internal/notification"
	"defiguard/internal/registry"
)

type Category string

const (
	CategoryGeneral      Category = "GENERAL"
	CategoryPersonalized Category = "PERSONALIZED"
)

func (c Category) Valid() bool {
	return c == CategoryGeneral || c == CategoryPersonalized
}

type ActionType string

const (
	ActionSupply ActionType = "SUPPLY"
	ActionBorrow ActionType = "BORROW"
)

func (a ActionType) Valid() bool {
	return a == ActionSupply || a == ActionBorrow
}

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusPaused Status = "PAUSED"
)

type NotificationFrequency string

const (
	FrequencyOncePerAlert   NotificationFrequency = "ONCE_PER_ALERT"
	FrequencyOncePer3Hours  NotificationFrequency = "AT_MOST_ONCE_PER_3_HOURS"
	FrequencyOncePer6Hours  NotificationFrequency = "AT_MOST_ONCE_PER_6_HOURS"
	FrequencyOncePer12Hours NotificationFrequency = "AT_MOST_ONCE_PER_12_HOURS"
	FrequencyOncePerDay     NotificationFrequency = "AT_MOST_ONCE_PER_DAY"
)

func (f NotificationFrequency) Valid() bool {
	switch f {
	case FrequencyOncePerAlert, FrequencyOncePer3Hours, FrequencyOncePer6Hours,
		FrequencyOncePer12Hours, FrequencyOncePerDay:
		return true
	}
	return false
}

type ConditionType string

const (
	ConditionAPRRiseAbove    ConditionType = "APR_RISE_ABOVE"
	ConditionAPRFallsBelow   ConditionType = "APR_FALLS_BELOW"
	ConditionAPROutsideRange ConditionType = "APR_OUTSIDE_RANGE"
	ConditionRateDiffAbove   ConditionType = "RATE_DIFF_ABOVE"
	ConditionRateDiffBelow   ConditionType = "RATE_DIFF_BELOW"
)

func (t ConditionType) Valid() bool {
	switch t {
	case ConditionAPRRiseAbove, ConditionAPRFallsBelow, ConditionAPROutsideRange,
		ConditionRateDiffAbove, ConditionRateDiffBelow:
		return true
	}
	return false
}

// IsRange reports whether the condition kind carries a min/max pair
// instead of a single threshold.
func (t ConditionType) IsRange() bool {
	return t == ConditionAPROutsideRange
}

type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityNone, SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

type ChannelType string

const (
	ChannelEmail   ChannelType = "EMAIL"
	ChannelWebhook ChannelType = "WEBHOOK"
)

func (t ChannelType) Valid() bool {
	return t == ChannelEmail || t == ChannelWebhook
}

type Alert struct {
	ID                    string                      `json:"id" db:"id"`
	UserID                int64                       `json:"user_id" db:"user_id"`
	WalletAddress         string                      `json:"walletAddress" db:"wallet_address"`
	Category              Category                    `json:"category" db:"category"`
	ActionType            ActionType                  `json:"actionType" db:"action_type"`
	IsComparison          bool                        `json:"isComparison" db:"is_comparison"`
	NotificationFrequency NotificationFrequency       `json:"notificationFrequency" db:"notification_frequency"`
	CompareProtocols      []string                    `json:"compareProtocols" db:"compare_protocols"`
	Status                Status                      `json:"status" db:"status"`
	Conditions            []Condition                 `json:"conditions"`
	DeliveryChannels      []DeliveryChannel           `json:"deliveryChannels"`
	Chains                []registry.Chain            `json:"chains"`
	Assets                []registry.Asset            `json:"assets"`
	Notifications         []notification.Notification `json:"notifications,omitempty"`
	CreatedAt             time.Time                   `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time                   `json:"updated_at" db:"updated_at"`
}

type Condition struct {
	ID        string           `json:"id" db:"id"`
	AlertID   string           `json:"-" db:"alert_id"`
	Type      ConditionType    `json:"type" db:"condition_type"`
	Threshold *decimal.Decimal `json:"thresholdValue,omitempty" db:"threshold_value"`
	Min       *decimal.Decimal `json:"minValue,omitempty" db:"min_value"`
	Max       *decimal.Decimal `json:"maxValue,omitempty" db:"max_value"`
	Severity  Severity         `json:"severity" db:"severity"`
}

type DeliveryChannel struct {
	ID         string      `json:"id" db:"id"`
	AlertID    string      `json:"-" db:"alert_id"`
	Type       ChannelType `json:"type" db:"channel_type"`
	Email      string      `json:"email,omitempty" db:"email"`
	WebhookURL string      `json:"webhookUrl,omitempty" db:"webhook_url"`
}

// Params is the wire payload for both create endpoints and the
// replace-wholesale update. All numeric thresholds travel as decimal strings.
type Params struct {
	WalletAddress         string                     `json:"walletAddress"`
	Category              string                     `json:"category"`
	ActionType            string                     `json:"actionType"`
	IsComparison          bool                       `json:"isComparison"`
	SelectedChains        []string                   `json:"selectedChains"`
	SelectedMarkets       []registry.MarketSelection `json:"selectedMarkets"`
	CompareProtocols      []string                   `json:"compareProtocols"`
	NotificationFrequency string                     `json:"notificationFrequency"`
	Conditions            []ConditionPayload         `json:"conditions"`
	DeliveryChannels      []ChannelPayload           `json:"deliveryChannels"`
}

type ConditionPayload struct {
	Type     string `json:"type"`
	Value    string `json:"value,omitempty"`
	Min      string `json:"min,omitempty"`
	Max      string `json:"max,omitempty"`
	Severity string `json:"severity"`
}

type ChannelPayload struct {
	Type       string `json:"type"`
	Email      string `json:"email,omitempty"`
	WebhookURL string `json:"webhookUrl,omitempty"`
}
