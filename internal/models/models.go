package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type WebhookRequest struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type PaymentData struct {
	OrderCode           OrderCode   `json:"orderCode"`
	Amount              json.Number `json:"amount"`
	Code                string      `json:"code"`
	Desc                string      `json:"desc"`
	Description         string      `json:"description,omitempty"`
	AccountNumber       string      `json:"accountNumber,omitempty"`
	Reference           string      `json:"reference,omitempty"`
	TransactionDateTime string      `json:"transactionDateTime,omitempty"`
	Currency            string      `json:"currency,omitempty"`
	PaymentLinkID       string      `json:"paymentLinkId,omitempty"`
}

// OrderCode accepts both JSON numbers and strings.
type OrderCode string

func (c *OrderCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*c = OrderCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("order code must be a number or string: %w", err)
	}

	*c = OrderCode(n.String())
	return nil
}

type WebhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type PremiumResponse struct {
	IsPremium bool   `json:"is_premium"`
	Plan      string `json:"plan,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Active    bool   `json:"active"`
}

type OrderResponse struct {
	OrderCode string `json:"order_code"`
	Status    string `json:"status"`
	PlanType  string `json:"plan_type"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type ConfirmWebhookRequest struct {
	WebhookURL string `json:"webhookUrl"`
}

type GatewayResponse struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data,omitempty"`
}
