// Package webhook delivers threshold-subscription notifications and drives
// their retry lifecycle.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// Payload is the notification body posted to a rule's endpoint.
type Payload struct {
	RuleID       string               `json:"rule_id"`
	AlertID      string               `json:"alert_id"`
	Hazard       domain.Hazard        `json:"hazard"`
	TriggerValue float64              `json:"trigger_value"`
	Alert        domain.EnrichedAlert `json:"alert"`
}

// NewDeliveryPayload serializes the notification body for a delivery,
// captured once at evaluation time (see domain.WebhookDelivery.Payload).
func NewDeliveryPayload(d domain.WebhookDelivery, alert domain.EnrichedAlert) (json.RawMessage, error) {
	data, err := json.Marshal(Payload{
		RuleID:       d.RuleID,
		AlertID:      d.AlertID,
		Hazard:       d.Hazard,
		TriggerValue: d.TriggerValue,
		Alert:        alert,
	})
	if err != nil {
		return nil, fmt.Errorf("serialize delivery payload: %w", err)
	}
	return data, nil
}

// Sender posts delivery payloads to webhook endpoints with a bounded
// per-attempt timeout.
type Sender struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSender creates a sender whose attempts time out after the given bound.
func NewSender(timeout time.Duration, logger *slog.Logger) *Sender {
	return &Sender{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send posts one delivery's payload to its endpoint. A 2xx acknowledgement
// within the timeout is success; transport failures map to
// domain.ErrDeliveryTimeout and non-2xx acknowledgements to
// domain.ErrDeliveryRejected, both of which the dispatcher retries.
func (s *Sender) Send(ctx context.Context, d domain.WebhookDelivery) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, bytes.NewReader(d.Payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrDeliveryRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-ID", d.ID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrDeliveryTimeout, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused across attempts.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: endpoint answered %d", domain.ErrDeliveryRejected, resp.StatusCode)
	}
	return nil
}
