package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// Key layout:
//
//	delivery:data:<rule|alert|trigger>  JSON record
//	delivery:due                        sorted set, score = next attempt unix
//	delivery:state:<state>              set of data keys per state
//	alert:sent:<alert id>               RFC3339Nano watermark
const (
	deliveryDataPrefix  = "delivery:data:"
	deliveryDueKey      = "delivery:due"
	deliveryStatePrefix = "delivery:state:"
	watermarkPrefix     = "alert:sent:"
)

var allStates = []domain.DeliveryState{
	domain.DeliveryPending,
	domain.DeliveryDelivered,
	domain.DeliveryFailed,
	domain.DeliveryExhausted,
}

// RedisDeliveryStore keeps delivery records and their due-time index in
// Redis, so attempt counts and retry schedules survive a process restart.
// A single dispatcher is assumed: Due does not claim records, it relies on
// the dispatcher updating each record before its next poll.
type RedisDeliveryStore struct {
	rdb *redis.Client
}

// NewRedisDeliveryStore wraps an existing Redis client.
func NewRedisDeliveryStore(rdb *redis.Client) *RedisDeliveryStore {
	return &RedisDeliveryStore{rdb: rdb}
}

func (s *RedisDeliveryStore) Create(ctx context.Context, d domain.WebhookDelivery) (bool, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("marshal delivery: %w", err)
	}

	key := deliveryDataPrefix + d.IdempotencyKey()
	created, err := s.rdb.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("create delivery: %w", err)
	}
	if !created {
		return false, nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, deliveryStatePrefix+string(d.State), key)
	pipe.ZAdd(ctx, deliveryDueKey, redis.Z{Score: dueScore(d.NextRetry), Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("index delivery: %w", err)
	}
	return true, nil
}

func (s *RedisDeliveryStore) Update(ctx context.Context, d domain.WebhookDelivery) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal delivery: %w", err)
	}
	key := deliveryDataPrefix + d.IdempotencyKey()

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	for _, st := range allStates {
		if st == d.State {
			pipe.SAdd(ctx, deliveryStatePrefix+string(st), key)
		} else {
			pipe.SRem(ctx, deliveryStatePrefix+string(st), key)
		}
	}
	if d.State.Terminal() {
		pipe.ZRem(ctx, deliveryDueKey, key)
	} else {
		pipe.ZAdd(ctx, deliveryDueKey, redis.Z{Score: dueScore(d.NextRetry), Member: key})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}
	return nil
}

func (s *RedisDeliveryStore) Due(ctx context.Context, now time.Time, limit int) ([]domain.WebhookDelivery, error) {
	keys, err := s.rdb.ZRangeByScore(ctx, deliveryDueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range due deliveries: %w", err)
	}
	return s.fetch(ctx, keys)
}

func (s *RedisDeliveryStore) List(ctx context.Context, state domain.DeliveryState) ([]domain.WebhookDelivery, error) {
	keys, err := s.rdb.SMembers(ctx, deliveryStatePrefix+string(state)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s deliveries: %w", state, err)
	}
	return s.fetch(ctx, keys)
}

func (s *RedisDeliveryStore) fetch(ctx context.Context, keys []string) ([]domain.WebhookDelivery, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}

	out := make([]domain.WebhookDelivery, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // index entry outlived its record
		}
		var d domain.WebhookDelivery
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decode delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}

// dueScore maps a next-retry time to a sorted-set score. The zero time means
// "due immediately" and sorts before everything real.
func dueScore(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.Unix())
}

// RedisWatermarkStore keeps per-alert sent watermarks in Redis. The
// get-compare-set sequence is not atomic across processes; the orchestrator
// serializes updates per alert identifier, which is what makes it safe.
type RedisWatermarkStore struct {
	rdb *redis.Client
}

// NewRedisWatermarkStore wraps an existing Redis client.
func NewRedisWatermarkStore(rdb *redis.Client) *RedisWatermarkStore {
	return &RedisWatermarkStore{rdb: rdb}
}

func (s *RedisWatermarkStore) IsStale(ctx context.Context, alertID string, sent time.Time) (bool, error) {
	stored, found, err := s.read(ctx, alertID)
	if err != nil {
		return false, err
	}
	return found && !sent.After(stored), nil
}

func (s *RedisWatermarkStore) Advance(ctx context.Context, alertID string, sent time.Time) (bool, error) {
	stored, found, err := s.read(ctx, alertID)
	if err != nil {
		return false, err
	}
	if found && !sent.After(stored) {
		return false, nil
	}

	key := watermarkPrefix + alertID
	if err := s.rdb.Set(ctx, key, sent.UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		return false, fmt.Errorf("advance watermark: %w", err)
	}
	return true, nil
}

func (s *RedisWatermarkStore) read(ctx context.Context, alertID string) (time.Time, bool, error) {
	prev, err := s.rdb.Get(ctx, watermarkPrefix+alertID).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read watermark: %w", err)
	}
	stored, err := time.Parse(time.RFC3339Nano, prev)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt watermark for %s: %w", alertID, err)
	}
	return stored, true, nil
}
