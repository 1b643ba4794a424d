package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"release-service/models"

	"github.com/apex/log"
)

// WebhookSink posts the flattened report to the release store's web
// app endpoint. The transport there swallows response bodies, so a
// completed call counts as success regardless of status.
type WebhookSink struct {
	url    string
	client *http.Client
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *WebhookSink) Save(ctx context.Context, rec models.SubmissionRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	if s.url == "" {
		log.WithField("payload", string(body)).Warn("submit.webhook.unconfigured")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver submission: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	log.WithFields(log.Fields{
		"status": resp.StatusCode,
		"team":   rec.Team,
	}).Info("submit.webhook.delivered")
	return nil
}
