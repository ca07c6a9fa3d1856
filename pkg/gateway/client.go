// Package gateway performs the outbound provider call for a dispatch job.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/internal/domain"
	"github.com/onurcolak/dispatch-service/internal/errs"
	"github.com/onurcolak/dispatch-service/pkg/logger"
)

const NoResponse = "HTTP Error: No Response"

type mailSender interface {
	Send(ctx context.Context, server *url.URL, to, subject, body string) error
}

type Client struct {
	httpClient *resty.Client
	mailer     mailSender
}

// NewClient builds the executor. Retries are off unless cfg.RetryCount > 0, in
// which case transport errors and 5xx responses are retried that many times.
func NewClient(cfg environments.GatewayConfig, mailer mailSender) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	if cfg.RetryCount > 0 {
		client.AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
		})
	}

	return &Client{
		httpClient: client,
		mailer:     mailer,
	}
}

// Execute sends the job to its provider. Failures are reported in the result,
// never as an error.
func (c *Client) Execute(ctx context.Context, job domain.DispatchJob) domain.ExecutionResult {
	startTime := time.Now()
	result := c.execute(ctx, job)
	result.Duration = time.Since(startTime)
	return result
}

func (c *Client) execute(ctx context.Context, job domain.DispatchJob) domain.ExecutionResult {
	params := BuildParams(job)
	result := domain.ExecutionResult{
		URL:    BuildURL(job.Provider.BaseURL, params),
		Params: params,
	}

	method := strings.ToUpper(job.Provider.Method)
	if method == domain.MethodSMTP {
		c.sendMail(ctx, job, &result)
		return result
	}

	if _, err := url.ParseRequestURI(result.URL); err != nil {
		result.Response = err.Error()
		result.Err = fmt.Errorf("%w: %v", errs.ErrTransport, err)
		return result
	}

	req := c.httpClient.R().SetContext(ctx)

	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case domain.MethodGet, "":
		resp, err = req.Get(result.URL)
	case domain.MethodPost:
		resp, err = req.
			SetHeader("Content-Type", "application/json").
			SetBody("{}").
			Post(result.URL)
	default:
		result.Response = fmt.Sprintf("unsupported method %q", job.Provider.Method)
		result.Err = fmt.Errorf("%w: %s", errs.ErrTransport, result.Response)
		return result
	}

	if err != nil {
		logger.Warnf("Provider %d request for job %s failed: %v", job.Provider.ID, job.ID, err)
		result.Response = NoResponse
		result.Err = fmt.Errorf("%w: %v", errs.ErrTransport, err)
		return result
	}

	result.StatusCode = resp.StatusCode()
	logger.Infof("Provider %d request for job %s completed in %v (status: %d)",
		job.Provider.ID, job.ID, resp.Time(), resp.StatusCode())

	if resp.IsSuccess() {
		result.Success = true
		result.Response = resp.String()
		return result
	}

	result.Response = describeFailure(resp)
	result.Err = fmt.Errorf("%w: status %d", errs.ErrHTTP, resp.StatusCode())
	return result
}

// describeFailure keeps readable provider bodies and falls back to the status.
func describeFailure(resp *resty.Response) string {
	contentType := strings.ToLower(resp.Header().Get("Content-Type"))
	body := resp.String()

	textual := strings.Contains(contentType, "json") ||
		strings.Contains(contentType, "xml") ||
		strings.HasPrefix(contentType, "text/")

	if textual && body != "" {
		return body
	}
	return fmt.Sprintf("HTTP Error: %d", resp.StatusCode())
}

func (c *Client) sendMail(ctx context.Context, job domain.DispatchJob, result *domain.ExecutionResult) {
	if c.mailer == nil {
		result.Response = "SMTP mailer not configured"
		result.Err = fmt.Errorf("%w: %s", errs.ErrTransport, result.Response)
		return
	}

	server, err := url.Parse(job.Provider.BaseURL)
	if err != nil || server.Host == "" {
		result.Response = fmt.Sprintf("invalid SMTP server %q", job.Provider.BaseURL)
		result.Err = fmt.Errorf("%w: %s", errs.ErrTransport, result.Response)
		return
	}

	if err := c.mailer.Send(ctx, server, job.Recipient, job.Subject, job.Message); err != nil {
		logger.Warnf("SMTP delivery for job %s failed: %v", job.ID, err)
		result.Response = err.Error()
		result.Err = fmt.Errorf("%w: %v", errs.ErrTransport, err)
		return
	}

	result.Success = true
	result.Response = "250 OK"
}
