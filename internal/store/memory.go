package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// MemoryDeliveryStore is an in-process DeliveryStore for tests and
// single-instance deployments without Redis.
type MemoryDeliveryStore struct {
	mu      sync.Mutex
	byKey   map[string]domain.WebhookDelivery
	created int
}

// NewMemoryDeliveryStore creates an empty in-memory delivery store.
func NewMemoryDeliveryStore() *MemoryDeliveryStore {
	return &MemoryDeliveryStore{byKey: make(map[string]domain.WebhookDelivery)}
}

func (s *MemoryDeliveryStore) Create(_ context.Context, d domain.WebhookDelivery) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := d.IdempotencyKey()
	if _, exists := s.byKey[key]; exists {
		return false, nil
	}
	s.byKey[key] = d
	s.created++
	return true, nil
}

func (s *MemoryDeliveryStore) Update(_ context.Context, d domain.WebhookDelivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[d.IdempotencyKey()] = d
	return nil
}

func (s *MemoryDeliveryStore) Due(_ context.Context, now time.Time, limit int) ([]domain.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.WebhookDelivery
	for _, d := range s.byKey {
		if d.State.Terminal() {
			continue
		}
		if !d.NextRetry.After(now) {
			due = append(due, d)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRetry.Before(due[j].NextRetry) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryDeliveryStore) List(_ context.Context, state domain.DeliveryState) ([]domain.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.WebhookDelivery
	for _, d := range s.byKey {
		if d.State == state {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreatedCount returns how many records Create actually inserted, for
// idempotence assertions in tests.
func (s *MemoryDeliveryStore) CreatedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// MemoryWatermarkStore is an in-process WatermarkStore.
type MemoryWatermarkStore struct {
	mu   sync.Mutex
	sent map[string]time.Time
}

// NewMemoryWatermarkStore creates an empty in-memory watermark store.
func NewMemoryWatermarkStore() *MemoryWatermarkStore {
	return &MemoryWatermarkStore{sent: make(map[string]time.Time)}
}

func (s *MemoryWatermarkStore) IsStale(_ context.Context, alertID string, sent time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.sent[alertID]
	return ok && !sent.After(prev), nil
}

func (s *MemoryWatermarkStore) Advance(_ context.Context, alertID string, sent time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.sent[alertID]; ok && !sent.After(prev) {
		return false, nil
	}
	s.sent[alertID] = sent
	return true, nil
}
