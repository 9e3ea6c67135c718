package alert

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

var walletAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidateParams runs the full validation chain on a create/update payload:
// required scalar fields, required collections, per-condition value shape and
// per-channel destination shape. It fails fast with the first violation and
// returns the parsed conditions and channels on success.
func ValidateParams(p *Params) ([]Condition, []DeliveryChannel, error) {
	if err := validateRequiredFields(p); err != nil {
		return nil, nil, err
	}
	if err := validateRequiredArrays(p); err != nil {
		return nil, nil, err
	}
	conditions, err := ValidateConditions(p.Conditions)
	if err != nil {
		return nil, nil, err
	}
	channels, err := ValidateChannels(p.DeliveryChannels)
	if err != nil {
		return nil, nil, err
	}
	return conditions, channels, nil
}

func validateRequiredFields(p *Params) error {
	required := []struct {
		name  string
		value string
	}{
		{"walletAddress", p.WalletAddress},
		{"category", p.Category},
		{"actionType", p.ActionType},
		{"notificationFrequency", p.NotificationFrequency},
	}
	for _, f := range required {
		if f.value == "" {
			return &MissingFieldError{Field: f.name}
		}
	}

	if !walletAddressRe.MatchString(p.WalletAddress) {
		return &InvalidFieldError{Field: "walletAddress", Reason: "must be a 0x-prefixed 20-byte hex address"}
	}
	if !Category(p.Category).Valid() {
		return &InvalidFieldError{Field: "category", Reason: fmt.Sprintf("unknown category %q", p.Category)}
	}
	if !ActionType(p.ActionType).Valid() {
		return &InvalidFieldError{Field: "actionType", Reason: fmt.Sprintf("unknown action type %q", p.ActionType)}
	}
	if !NotificationFrequency(p.NotificationFrequency).Valid() {
		return &InvalidFieldError{Field: "notificationFrequency", Reason: fmt.Sprintf("unknown frequency %q", p.NotificationFrequency)}
	}
	return nil
}

func validateRequiredArrays(p *Params) error {
	if len(p.SelectedChains) == 0 {
		return &EmptyCollectionError{Field: "selectedChains"}
	}
	if len(p.SelectedMarkets) == 0 {
		return &EmptyCollectionError{Field: "selectedMarkets"}
	}
	if len(p.Conditions) == 0 {
		return &EmptyCollectionError{Field: "conditions"}
	}
	if len(p.DeliveryChannels) == 0 {
		return &EmptyCollectionError{Field: "deliveryChannels"}
	}
	if p.IsComparison && len(p.CompareProtocols) == 0 {
		return &EmptyCollectionError{Field: "compareProtocols"}
	}
	return nil
}

// ValidateConditions checks each condition payload against its kind and
// parses the decimal-string thresholds. Directional and rate-diff kinds carry
// exactly a single value; the range kind carries exactly a min/max pair with
// min < max. A threshold of zero is a valid value.
func ValidateConditions(payloads []ConditionPayload) ([]Condition, error) {
	conditions := make([]Condition, 0, len(payloads))
	for i, p := range payloads {
		ct := ConditionType(p.Type)
		if p.Type == "" {
			return nil, &InvalidConditionError{Index: i, Reason: "missing type"}
		}
		if !ct.Valid() {
			return nil, &InvalidConditionError{Index: i, Reason: fmt.Sprintf("unknown type %q", p.Type)}
		}
		if !Severity(p.Severity).Valid() {
			return nil, &InvalidConditionError{Index: i, Reason: fmt.Sprintf("unknown severity %q", p.Severity)}
		}

		c := Condition{Type: ct, Severity: Severity(p.Severity)}
		if ct.IsRange() {
			if p.Value != "" {
				return nil, &InvalidConditionError{Index: i, Reason: "range condition must not carry a single value"}
			}
			if p.Min == "" || p.Max == "" {
				return nil, &InvalidConditionError{Index: i, Reason: "range condition requires both min and max"}
			}
			min, err := decimal.NewFromString(p.Min)
			if err != nil {
				return nil, &InvalidConditionError{Index: i, Reason: fmt.Sprintf("min %q is not numeric", p.Min)}
			}
			max, err := decimal.NewFromString(p.Max)
			if err != nil {
				return nil, &InvalidConditionError{Index: i, Reason: fmt.Sprintf("max %q is not numeric", p.Max)}
			}
			if min.GreaterThanOrEqual(max) {
				return nil, &InvalidConditionError{Index: i, Reason: "min must be less than max"}
			}
			c.Min = &min
			c.Max = &max
		} else {
			if p.Min != "" || p.Max != "" {
				return nil, &InvalidConditionError{Index: i, Reason: "threshold condition must not carry min/max"}
			}
			if p.Value == "" {
				return nil, &InvalidConditionError{Index: i, Reason: "threshold condition requires a value"}
			}
			value, err := decimal.NewFromString(p.Value)
			if err != nil {
				return nil, &InvalidConditionError{Index: i, Reason: fmt.Sprintf("value %q is not numeric", p.Value)}
			}
			c.Threshold = &value
		}
		conditions = append(conditions, c)
	}
	return conditions, nil
}

// ValidateChannels checks each delivery channel payload: exactly the
// destination field matching the channel kind must be present and
// syntactically valid.
func ValidateChannels(payloads []ChannelPayload) ([]DeliveryChannel, error) {
	channels := make([]DeliveryChannel, 0, len(payloads))
	for i, p := range payloads {
		ct := ChannelType(p.Type)
		if p.Type == "" {
			return nil, &InvalidChannelError{Index: i, Reason: "missing type"}
		}
		if !ct.Valid() {
			return nil, &InvalidChannelError{Index: i, Reason: fmt.Sprintf("unknown type %q", p.Type)}
		}

		ch := DeliveryChannel{Type: ct}
		switch ct {
		case ChannelEmail:
			if p.WebhookURL != "" {
				return nil, &InvalidChannelError{Index: i, Reason: "email channel must not carry a webhook URL"}
			}
			if p.Email == "" {
				return nil, &InvalidChannelError{Index: i, Reason: "email channel requires an email address"}
			}
			if err := validate.Var(p.Email, "email"); err != nil {
				return nil, &InvalidChannelError{Index: i, Reason: fmt.Sprintf("%q is not a valid email address", p.Email)}
			}
			ch.Email = p.Email
		case ChannelWebhook:
			if p.Email != "" {
				return nil, &InvalidChannelError{Index: i, Reason: "webhook channel must not carry an email address"}
			}
			if p.WebhookURL == "" {
				return nil, &InvalidChannelError{Index: i, Reason: "webhook channel requires a URL"}
			}
			if err := validate.Var(p.WebhookURL, "http_url"); err != nil {
				return nil, &InvalidChannelError{Index: i, Reason: fmt.Sprintf("%q is not a valid absolute URL", p.WebhookURL)}
			}
			ch.WebhookURL = p.WebhookURL
		}
		channels = append(channels, ch)
	}
	return channels, nil
}
