package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
	"github.com/couchcryptid/alert-enrichment/internal/rules"
)

// rulesHashKey holds the external rule set: field = rule ID, value = JSON
// rule. The management interface that creates and deletes rules owns it;
// this engine only reads.
const rulesHashKey = "webhook:rules"

// RedisRuleSource reads the webhook rule set from Redis. Each Snapshot call
// reads the whole hash in one round trip, so an evaluation always sees a
// consistent rule set even while rules are being created or deleted.
type RedisRuleSource struct {
	rdb *redis.Client
}

// NewRedisRuleSource wraps an existing Redis client.
func NewRedisRuleSource(rdb *redis.Client) *RedisRuleSource {
	return &RedisRuleSource{rdb: rdb}
}

func (s *RedisRuleSource) Snapshot(ctx context.Context) (rules.Snapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, rulesHashKey).Result()
	if err != nil {
		return rules.Snapshot{}, fmt.Errorf("read rule set: %w", err)
	}

	all := make([]domain.WebhookRule, 0, len(fields))
	for id, raw := range fields {
		var r domain.WebhookRule
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			// Undecodable entries are treated like invalid rules: skipped,
			// the rest of the set still applies.
			all = append(all, domain.WebhookRule{ID: id})
			continue
		}
		all = append(all, r)
	}
	return rules.NewSnapshot(all), nil
}

// MemoryRuleSource serves a rule set held in memory, swapped atomically so
// in-flight evaluations keep the snapshot they started with.
type MemoryRuleSource struct {
	current atomic.Pointer[rules.Snapshot]
}

// NewMemoryRuleSource builds a source over an initial rule set.
func NewMemoryRuleSource(all []domain.WebhookRule) *MemoryRuleSource {
	s := &MemoryRuleSource{}
	s.Replace(all)
	return s
}

// Replace swaps in a new rule set.
func (s *MemoryRuleSource) Replace(all []domain.WebhookRule) {
	snap := rules.NewSnapshot(all)
	s.current.Store(&snap)
}

func (s *MemoryRuleSource) Snapshot(context.Context) (rules.Snapshot, error) {
	return *s.current.Load(), nil
}
