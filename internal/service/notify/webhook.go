package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/work-alarm/internal/version"
)

// defaultWebhookTimeout bounds one webhook request.
const defaultWebhookTimeout = 10 * time.Second

// errUnexpectedStatus is returned for a non-2xx webhook response.
var errUnexpectedStatus = errors.New("unexpected webhook status")

// WebhookPresenter posts notifications as JSON to a URL.
type WebhookPresenter struct {
	// url receives the POST requests.
	url string
	// client sends the requests.
	client *http.Client
}

// NewWebhookPresenter creates a webhook presenter. A nil client gets a
// default client with a timeout.
func NewWebhookPresenter(url string, client *http.Client) *WebhookPresenter {
	if client == nil {
		client = &http.Client{Timeout: defaultWebhookTimeout}
	}

	return &WebhookPresenter{
		url:    url,
		client: client,
	}
}

// Name implements Presenter.
func (*WebhookPresenter) Name() string { return "webhook" }

// Background implements Presenter.
func (*WebhookPresenter) Background() bool { return true }

// Permission implements Presenter.
func (*WebhookPresenter) Permission(context.Context) Permission { return PermissionGranted }

// Present implements Presenter.
func (p *WebhookPresenter) Present(ctx context.Context, n *Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s", errUnexpectedStatus, resp.Status)
	}

	return nil
}
