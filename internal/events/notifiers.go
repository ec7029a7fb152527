package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cardkraft/backend-cards/internal/obs"
	"github.com/cardkraft/backend-cards/internal/resilience"
)

// LogNotifier writes every emitted event to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Info().
		Str("event_id", event.ID).
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", event.Payload).
		Msg("domain_event")
	return nil
}

// WebhookNotifier POSTs emitted events to an external endpoint, e.g. the
// print fulfilment partner. Deliveries are best effort; the caller decides
// whether a failed delivery matters.
type WebhookNotifier struct {
	URL    string
	Client resilience.HTTPClient
}

// NewWebhookNotifier builds a notifier with an instrumented, circuit-broken
// HTTP client. A flapping partner endpoint trips the breaker instead of
// stalling checkout request handling.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL: url,
		Client: resilience.HTTPClient{
			Client: &http.Client{
				Timeout:   10 * time.Second,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			Breaker:     resilience.NewBreaker(5, 0.5, 30*time.Second).WithTarget("order-webhook"),
			MaxAttempts: 3,
			BaseBackoff: 200 * time.Millisecond,
			Jitter:      0.2,
		},
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	if n == nil || strings.TrimSpace(n.URL) == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Topic", event.Topic)

	client := n.Client
	if client.Client == nil {
		client.Client = http.DefaultClient
	}
	resp, err := client.Do(ctx, req)
	if err != nil {
		obs.IncOrderWebhook("error")
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		obs.IncOrderWebhook("rejected")
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	obs.IncOrderWebhook("delivered")
	return nil
}
