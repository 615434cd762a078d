package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"sjsage522/rafflemonitor/config"
	"sjsage522/rafflemonitor/logger"
	"sjsage522/rafflemonitor/pkg/errors"
)

// Notifier delivers one message
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// New returns a webhook notifier, or a log notifier when no webhook is configured.
func New(cfg *config.Config) Notifier {
	if cfg.WebhookURL == "" {
		logger.ForNotifier().Warn().Msg("SLACK_WEBHOOK_URL is not set, notifications will only be logged")
		return NewLogNotifier()
	}
	return NewWebhookNotifier(cfg.WebhookURL, cfg.NotifyPerSecond, cfg.FetchTimeout)
}

// WebhookNotifier posts messages to a Slack incoming webhook
type WebhookNotifier struct {
	webhookURL  string
	client      *resty.Client
	rateLimiter *rate.Limiter
	log         *logger.Logger
}

// NewWebhookNotifier creates a notifier that sends at most perSecond messages per second
func NewWebhookNotifier(webhookURL string, perSecond float64, timeout time.Duration) *WebhookNotifier {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{
		webhookURL:  webhookURL,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		log:         logger.ForNotifier(),
	}
}

// Notify posts msg once. Any non-2xx answer is an ErrorTypeNotify error.
func (n *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	if err := n.rateLimiter.Wait(ctx); err != nil {
		return errors.NewNotify("webhook", "rate limiter wait aborted", err)
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(n.webhookURL)
	if err != nil {
		return errors.NewNotify("webhook", "request failed", err)
	}

	if !resp.IsSuccess() {
		body := strings.TrimSpace(resp.String())
		e := errors.NewNotify("webhook", fmt.Sprintf("unexpected status %d: %s", resp.StatusCode(), body), nil)
		e.StatusCode = resp.StatusCode()
		return e
	}

	n.log.Debug().
		Int("status_code", resp.StatusCode()).
		Dur("duration", resp.Time()).
		Msg("Webhook delivered")
	return nil
}

// LogNotifier writes messages to the log instead of sending them
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a new log notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.ForNotifier()}
}

// Notify logs the JSON payload of msg
func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.NewNotify("log", "failed to encode message", err)
	}
	n.log.Info().RawJSON("payload", payload).Msg("Notification")
	return nil
}
