package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// WebhookRule is a standing subscription that fires a notification when an
// alert's measurement crosses a threshold. Rules are created and deleted by
// an external management interface; this engine only reads them.
//
// Threshold units depend on the hazard: inches for hail, mph for wind, and a
// probability in [0,1] for damage rules. LocationFilter is optional; when
// set, it matches any affected-region code equal to it or prefixed by it.
type WebhookRule struct {
	ID             string  `json:"id"`
	Endpoint       string  `json:"endpoint"`
	Hazard         Hazard  `json:"hazard"`
	Threshold      float64 `json:"threshold"`
	LocationFilter string  `json:"location_filter,omitempty"`
	Owner          string  `json:"owner,omitempty"`
}

// DeliveryState is the lifecycle state of a webhook delivery.
// Pending → Delivered is the happy path; Pending → Failed → Pending repeats
// under retry until Delivered or the attempt cap moves it to Exhausted.
type DeliveryState string

const (
	DeliveryPending   DeliveryState = "pending"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryFailed    DeliveryState = "failed"
	DeliveryExhausted DeliveryState = "exhausted"
)

// Terminal reports whether no further attempts will be made.
func (s DeliveryState) Terminal() bool {
	return s == DeliveryDelivered || s == DeliveryExhausted
}

// WebhookDelivery tracks one notification owed to one rule for one alert.
// Exactly one instance exists per (rule, alert, trigger value) triple;
// re-evaluating the same alert against the same rule reuses it.
type WebhookDelivery struct {
	ID           string        `json:"id"`
	RuleID       string        `json:"rule_id"`
	AlertID      string        `json:"alert_id"`
	Endpoint     string        `json:"endpoint"`
	Hazard       Hazard        `json:"hazard"`
	TriggerValue float64       `json:"trigger_value"`
	State        DeliveryState `json:"state"`
	Attempts     int           `json:"attempts"`
	LastAttempt  time.Time     `json:"last_attempt,omitzero"`
	NextRetry    time.Time     `json:"next_retry,omitzero"`

	// Payload is the notification body captured at evaluation time, so
	// retries after a restart still carry the full enriched alert.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IdempotencyKey is the unique key for a (rule, alert, trigger) pairing.
// The trigger value participates so that an alert update changing the
// measurement schedules a fresh delivery while plain re-processing does not.
func (d WebhookDelivery) IdempotencyKey() string {
	return fmt.Sprintf("%s|%s|%g", d.RuleID, d.AlertID, d.TriggerValue)
}
