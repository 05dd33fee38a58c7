package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/VladKvetkin/paywebhook/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	confirmWebhookPath = "/confirm-webhook"

	headerClientID = "x-client-id"
	headerAPIKey   = "x-api-key"

	successCode = "00"
)

var ErrNotConfigured = errors.New("gateway credentials are not configured")

type Client struct {
	apiAddress string
	clientID   string
	apiKey     string
	client     *resty.Client
}

func NewClient(apiAddress string, clientID string, apiKey string) *Client {
	return &Client{
		apiAddress: apiAddress,
		clientID:   clientID,
		apiKey:     apiKey,
		client:     initClient(),
	}
}

func (c *Client) Configured() bool {
	return c.apiAddress != "" && c.clientID != "" && c.apiKey != ""
}

// ConfirmWebhook registers webhookURL as the callback target for payment
// status changes. The gateway probes the URL before accepting it.
func (c *Client) ConfirmWebhook(ctx context.Context, webhookURL string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	endpoint, err := url.JoinPath(c.apiAddress, confirmWebhookPath)
	if err != nil {
		return err
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader(headerClientID, c.clientID).
		SetHeader(headerAPIKey, c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ConfirmWebhookRequest{WebhookURL: webhookURL}).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("error confirm webhook request: %w", err)
	}

	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error confirm webhook, invalid status: %v", response.Status())
	}

	var gatewayResponse models.GatewayResponse
	if err := json.Unmarshal(response.Body(), &gatewayResponse); err != nil {
		return fmt.Errorf("cannot decode confirm webhook response: %w", err)
	}

	if gatewayResponse.Code != successCode {
		return fmt.Errorf("error confirm webhook, code %s: %s", gatewayResponse.Code, gatewayResponse.Desc)
	}

	zap.L().Info("webhook confirmed", zap.String("webhook_url", webhookURL))

	return nil
}

func initClient() *resty.Client {
	client := resty.New()

	client.
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(response *resty.Response, err error) bool {
			return err != nil || (response != nil && response.StatusCode() >= http.StatusInternalServerError)
		})

	return client
}
