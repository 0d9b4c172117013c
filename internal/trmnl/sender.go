package trmnl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"headsign.transitboard.org/internal/logging"
)

// ErrNotConfigured marks a missing or malformed webhook URL. The publisher
// treats it as fatal for the cycle rather than retryable.
var ErrNotConfigured = errors.New("webhook URL not configured")

// SendResult reports one delivery attempt's HTTP outcome.
type SendResult struct {
	StatusCode int
	RetryAfter string
	Body       string
}

// Sender delivers a rendered payload to the display sink. Decoupling the
// publisher from the concrete transport keeps the retry machine testable
// with fakes.
type Sender interface {
	Send(ctx context.Context, payload Payload) (*SendResult, error)
}

// HTTPSender posts JSON payloads to the TRMNL webhook.
type HTTPSender struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSender creates a webhook sender. The URL is validated per send so a
// misconfiguration skips the cycle instead of killing the process.
func NewHTTPSender(webhookURL string, timeout time.Duration, logger *slog.Logger) *HTTPSender {
	return &HTTPSender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (s *HTTPSender) Send(ctx context.Context, payload Payload) (*SendResult, error) {
	if s.webhookURL == "" || !strings.Contains(s.webhookURL, "://") {
		return nil, fmt.Errorf("%w: %q", ErrNotConfigured, s.webhookURL)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(resp.Body, s.logger, "trmnl_response_body")

	respBody, _ := io.ReadAll(resp.Body)
	return &SendResult{
		StatusCode: resp.StatusCode,
		RetryAfter: resp.Header.Get("Retry-After"),
		Body:       string(respBody),
	}, nil
}
