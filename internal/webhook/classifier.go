package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/VladKvetkin/paywebhook/internal/models"
	"github.com/VladKvetkin/paywebhook/internal/services/signature"
)

type Kind int

const (
	HealthCheck Kind = iota
	Malformed
	PaymentEvent
)

func (k Kind) String() string {
	switch k {
	case HealthCheck:
		return "health_check"
	case Malformed:
		return "malformed"
	case PaymentEvent:
		return "payment_event"
	}

	return "unknown"
}

const undefinedValue = "undefined"

// SuccessCode is the payment data code the gateway sends for a paid order.
const SuccessCode = "00"

var (
	errUnexpectedMethod = errors.New("unexpected method")
	errMissingOrderCode = errors.New("payment data without order code")
)

type Callback struct {
	Method string
	Body   []byte
}

type Event struct {
	Code      string
	Desc      string
	Signature string
	Data      models.PaymentData
	RawData   json.RawMessage
	// SignedFields holds the canonical values of signature.Fields.
	SignedFields map[string]string
}

func (e Event) Paid() bool {
	return e.Data.Code == SuccessCode
}

type Classification struct {
	Kind Kind
	// Probe is set for the GET connectivity check.
	Probe bool
	Err   error
	Event Event
}

func Classify(callback Callback) Classification {
	if callback.Method == http.MethodGet {
		return Classification{Kind: HealthCheck, Probe: true}
	}

	if callback.Method != http.MethodPost {
		return Classification{Kind: Malformed, Err: errUnexpectedMethod}
	}

	if len(bytes.TrimSpace(callback.Body)) == 0 {
		return Classification{Kind: HealthCheck}
	}

	var request models.WebhookRequest
	if err := json.Unmarshal(callback.Body, &request); err != nil {
		return Classification{Kind: Malformed, Err: err}
	}

	if isAbsent(request.Data) || isFalsy(request.Data) {
		return Classification{Kind: HealthCheck}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(request.Data, &fields); err != nil {
		return Classification{Kind: Malformed, Err: err}
	}

	var data models.PaymentData
	if err := json.Unmarshal(request.Data, &data); err != nil {
		return Classification{Kind: Malformed, Err: err}
	}

	if data.OrderCode == "" {
		return Classification{Kind: Malformed, Err: errMissingOrderCode}
	}

	signedFields := make(map[string]string, len(signature.Fields))
	for _, name := range signature.Fields {
		signedFields[name] = canonicalValue(fields[name])
	}

	return Classification{
		Kind: PaymentEvent,
		Event: Event{
			Code:         request.Code,
			Desc:         request.Desc,
			Signature:    request.Signature,
			Data:         data,
			RawData:      request.Data,
			SignedFields: signedFields,
		},
	}
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// isFalsy reports the scalar values the gateway uses for an empty test payload.
func isFalsy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)

	switch {
	case bytes.Equal(raw, []byte(`""`)), bytes.Equal(raw, []byte("false")):
		return true
	}

	if len(raw) == 0 || raw[0] == '"' {
		return false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return false
	}

	f, err := n.Float64()
	return err == nil && f == 0
}

// canonicalValue renders strings unquoted, numbers in their shortest decimal
// form and any other JSON value as its literal. Absent fields render as
// "undefined", which is what the gateway's reference signer emits.
func canonicalValue(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return undefinedValue
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}

	return string(bytes.TrimSpace(raw))
}
