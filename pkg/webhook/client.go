// Package webhook posts operational alerts to an external webhook.
package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

// Alert is the JSON body sent when workers keep failing.
type Alert struct {
	Alert               string    `json:"alert"`
	Channel             string    `json:"channel,omitempty"`
	JobID               string    `json:"jobId,omitempty"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastResponse        string    `json:"lastResponse,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
	Message             string    `json:"message"`
}

type Client struct {
	httpClient *resty.Client
	webhookURL string
}

func NewWebhookClient(cfg environments.AlertConfig) *Client {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		webhookURL: cfg.WebhookURL,
	}
}

func (c *Client) SendAlert(ctx context.Context, alert Alert) error {
	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(c.webhookURL)

	duration := time.Since(startTime)

	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}

	logger.Infof("Alert webhook request to %s completed in %v (status: %d)", c.webhookURL, duration, resp.StatusCode())

	if !resp.IsSuccess() {
		return fmt.Errorf("unexpected alert webhook status code: %d, body: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

func (c *Client) GetURL() string {
	return c.webhookURL
}
