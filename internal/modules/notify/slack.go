// Package notify delivers operator notifications over Slack incoming
// webhooks. Two channels: a low-priority log channel for routine batch
// summaries and an alert channel for status changes that need eyes.
// When neither webhook is configured the notifier is a no-op; nothing
// else in the system depends on delivery succeeding.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Priority selects the destination channel
type Priority int

const (
	PriorityLog Priority = iota
	PriorityAlert
)

// Notifier posts messages to Slack incoming webhooks
type Notifier struct {
	logWebhook   string
	alertWebhook string
	client       *http.Client
	log          zerolog.Logger
}

// NewNotifier creates a notifier. Empty webhook URLs disable the
// corresponding channel.
func NewNotifier(logWebhook, alertWebhook string, log zerolog.Logger) *Notifier {
	return &Notifier{
		logWebhook:   logWebhook,
		alertWebhook: alertWebhook,
		client:       &http.Client{Timeout: 10 * time.Second},
		log:          log.With().Str("service", "notify").Logger(),
	}
}

// Enabled reports whether any channel is configured
func (n *Notifier) Enabled() bool {
	return n.logWebhook != "" || n.alertWebhook != ""
}

// Send posts a message to the channel for the given priority. Delivery
// failures are logged and swallowed; notifications never fail the
// operation that produced them.
func (n *Notifier) Send(ctx context.Context, priority Priority, text string) {
	webhook := n.logWebhook
	if priority == PriorityAlert && n.alertWebhook != "" {
		webhook = n.alertWebhook
	}
	if webhook == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		n.log.Error().Err(err).Msg("Failed to marshal Slack payload")
		return
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("slack returned %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("slack rejected message: %d", resp.StatusCode))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, 3), ctx)); err != nil {
		n.log.Error().Err(err).Msg("Failed to deliver Slack notification")
	}
}
