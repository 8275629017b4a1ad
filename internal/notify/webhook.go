package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

type Poster interface {
	Post(ctx context.Context, url string, headers http.Header, body []byte) (statusCode int, respBody []byte, err error)
}

// WebhookNotifier POSTs each notice as JSON, retrying transport errors and 5xx/429 answers.
type WebhookNotifier struct {
	client   Poster
	url      string
	interval time.Duration
}

func NewWebhookNotifier(client Poster, url string) *WebhookNotifier {
	return &WebhookNotifier{client: client, url: url, interval: retryInterval}
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		statusCode, _, err := n.client.Post(ctx, n.url, nil, body)
		switch {
		case err != nil:
			lastErr = err
		case statusCode >= 200 && statusCode < 300:
			return nil
		case statusCode == http.StatusTooManyRequests || statusCode >= 500:
			lastErr = fmt.Errorf("webhook answered %d", statusCode)
		default:
			zap.L().Error("webhook rejected notification", zap.Int("status", statusCode), zap.String("kind", string(msg.Kind)))
			return fmt.Errorf("webhook rejected notification with status %d", statusCode)
		}

		if attempt == maxRetries {
			break
		}
		zap.L().Warn("notification delivery failed, retrying", zap.Int("attempt", attempt), zap.Error(lastErr))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.interval * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("deliver %s notification after %d retries: %w", msg.Kind, maxRetries, lastErr)
}
