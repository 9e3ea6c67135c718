package alert

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defiguard/internal/registry"
)

func validParams() *Params {
	return &Params{
		WalletAddress:         "0x7f5c764cbc14f9669b88837ca1490cca17c31607",
		Category:              "PERSONALIZED",
		ActionType:            "SUPPLY",
		NotificationFrequency: "AT_MOST_ONCE_PER_DAY",
		SelectedChains:        []string{"Ethereum"},
		SelectedMarkets: []registry.MarketSelection{
			{ChainID: 1, Address: "0xc3d688B66703497DAA19211EEdff47f25384cdc3"},
		},
		Conditions: []ConditionPayload{
			{Type: "APR_RISE_ABOVE", Value: "5.0", Severity: "WARNING"},
		},
		DeliveryChannels: []ChannelPayload{
			{Type: "EMAIL", Email: "a@b.com"},
		},
	}
}

func TestValidateParams_Success(t *testing.T) {
	conditions, channels, err := ValidateParams(validParams())
	require.NoError(t, err)
	require.Len(t, conditions, 1)
	require.Len(t, channels, 1)
	assert.True(t, conditions[0].Threshold.Equal(decimal.RequireFromString("5.0")))
	assert.Equal(t, ChannelEmail, channels[0].Type)
	assert.Equal(t, "a@b.com", channels[0].Email)
}

func TestValidateParams_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"wallet address", func(p *Params) { p.WalletAddress = "" }, "walletAddress"},
		{"category", func(p *Params) { p.Category = "" }, "category"},
		{"action type", func(p *Params) { p.ActionType = "" }, "actionType"},
		{"frequency", func(p *Params) { p.NotificationFrequency = "" }, "notificationFrequency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(p)
			_, _, err := ValidateParams(p)
			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.field, missing.Field)
		})
	}
}

func TestValidateParams_InvalidScalars(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"malformed wallet", func(p *Params) { p.WalletAddress = "0x123" }, "walletAddress"},
		{"unknown category", func(p *Params) { p.Category = "WEIRD" }, "category"},
		{"unknown action", func(p *Params) { p.ActionType = "LEND" }, "actionType"},
		{"unknown frequency", func(p *Params) { p.NotificationFrequency = "HOURLY" }, "notificationFrequency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(p)
			_, _, err := ValidateParams(p)
			var invalid *InvalidFieldError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestValidateParams_EmptyCollections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"no chains", func(p *Params) { p.SelectedChains = nil }, "selectedChains"},
		{"no markets", func(p *Params) { p.SelectedMarkets = nil }, "selectedMarkets"},
		{"no conditions", func(p *Params) { p.Conditions = nil }, "conditions"},
		{"no channels", func(p *Params) { p.DeliveryChannels = nil }, "deliveryChannels"},
		{"comparison without protocols", func(p *Params) { p.IsComparison = true }, "compareProtocols"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(p)
			_, _, err := ValidateParams(p)
			var empty *EmptyCollectionError
			require.ErrorAs(t, err, &empty)
			assert.Equal(t, tt.field, empty.Field)
		})
	}
}

func TestValidateConditions_Directional(t *testing.T) {
	tests := []struct {
		name    string
		payload ConditionPayload
		wantErr bool
	}{
		{"value present", ConditionPayload{Type: "APR_RISE_ABOVE", Value: "5.5", Severity: "WARNING"}, false},
		{"zero is a valid threshold", ConditionPayload{Type: "APR_FALLS_BELOW", Value: "0", Severity: "INFO"}, false},
		{"negative rate diff", ConditionPayload{Type: "RATE_DIFF_BELOW", Value: "-1.25", Severity: "NONE"}, false},
		{"missing value", ConditionPayload{Type: "APR_RISE_ABOVE", Severity: "WARNING"}, true},
		{"non-numeric value", ConditionPayload{Type: "APR_RISE_ABOVE", Value: "five", Severity: "WARNING"}, true},
		{"value plus min is ambiguous", ConditionPayload{Type: "APR_RISE_ABOVE", Value: "5", Min: "1", Severity: "WARNING"}, true},
		{"value plus max is ambiguous", ConditionPayload{Type: "RATE_DIFF_ABOVE", Value: "5", Max: "9", Severity: "WARNING"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conditions, err := ValidateConditions([]ConditionPayload{tt.payload})
			if tt.wantErr {
				var invalid *InvalidConditionError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, 0, invalid.Index)
				return
			}
			require.NoError(t, err)
			require.Len(t, conditions, 1)
			require.NotNil(t, conditions[0].Threshold)
			assert.Nil(t, conditions[0].Min)
			assert.Nil(t, conditions[0].Max)
		})
	}
}

func TestValidateConditions_Range(t *testing.T) {
	tests := []struct {
		name    string
		payload ConditionPayload
		wantErr bool
	}{
		{"min and max present", ConditionPayload{Type: "APR_OUTSIDE_RANGE", Min: "2", Max: "4", Severity: "CRITICAL"}, false},
		{"missing max", ConditionPayload{Type: "APR_OUTSIDE_RANGE", Min: "2", Severity: "CRITICAL"}, true},
		{"missing min", ConditionPayload{Type: "APR_OUTSIDE_RANGE", Max: "4", Severity: "CRITICAL"}, true},
		{"min greater than max", ConditionPayload{Type: "APR_OUTSIDE_RANGE", Min: "2", Max: "1", Severity: "CRITICAL"}, true},
		{"min equals max", ConditionPayload{Type: "APR_OUTSIDE_RANGE", Min: "2", Max: "2", Severity: "CRITICAL"}, true},
		{"range plus value is ambiguous", ConditionPayload{Type: "APR_OUTSIDE_RANGE", Value: "3", Min: "2", Max: "4", Severity: "CRITICAL"}, true},
		{"non-numeric min", ConditionPayload{Type: "APR_OUTSIDE_RANGE", Min: "low", Max: "4", Severity: "CRITICAL"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conditions, err := ValidateConditions([]ConditionPayload{tt.payload})
			if tt.wantErr {
				var invalid *InvalidConditionError
				require.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			require.Len(t, conditions, 1)
			assert.Nil(t, conditions[0].Threshold)
			require.NotNil(t, conditions[0].Min)
			require.NotNil(t, conditions[0].Max)
			assert.True(t, conditions[0].Min.LessThan(*conditions[0].Max))
		})
	}
}

func TestValidateConditions_UnknownTypeAndSeverity(t *testing.T) {
	_, err := ValidateConditions([]ConditionPayload{{Type: "PRICE_ABOVE", Value: "5", Severity: "WARNING"}})
	var invalid *InvalidConditionError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "unknown type")

	_, err = ValidateConditions([]ConditionPayload{{Type: "APR_RISE_ABOVE", Value: "5", Severity: "FATAL"}})
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "unknown severity")
}

func TestValidateConditions_FailsFastWithIndex(t *testing.T) {
	_, err := ValidateConditions([]ConditionPayload{
		{Type: "APR_RISE_ABOVE", Value: "5", Severity: "WARNING"},
		{Type: "APR_OUTSIDE_RANGE", Min: "9", Max: "1", Severity: "WARNING"},
	})
	var invalid *InvalidConditionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Index)
}

func TestValidateChannels(t *testing.T) {
	tests := []struct {
		name    string
		payload ChannelPayload
		wantErr bool
	}{
		{"valid email", ChannelPayload{Type: "EMAIL", Email: "user@example.com"}, false},
		{"valid webhook", ChannelPayload{Type: "WEBHOOK", WebhookURL: "https://hooks.example.com/defi"}, false},
		{"email missing address", ChannelPayload{Type: "EMAIL"}, true},
		{"email with bad address", ChannelPayload{Type: "EMAIL", Email: "not-an-email"}, true},
		{"email with stray webhook", ChannelPayload{Type: "EMAIL", Email: "a@b.com", WebhookURL: "https://x.com"}, true},
		{"webhook missing url", ChannelPayload{Type: "WEBHOOK"}, true},
		{"webhook with relative url", ChannelPayload{Type: "WEBHOOK", WebhookURL: "/hooks/defi"}, true},
		{"webhook with stray email", ChannelPayload{Type: "WEBHOOK", WebhookURL: "https://x.com", Email: "a@b.com"}, true},
		{"unknown type", ChannelPayload{Type: "SMS"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channels, err := ValidateChannels([]ChannelPayload{tt.payload})
			if tt.wantErr {
				var invalid *InvalidChannelError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, 0, invalid.Index)
				return
			}
			require.NoError(t, err)
			require.Len(t, channels, 1)
		})
	}
}
