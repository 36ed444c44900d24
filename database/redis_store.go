package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/utils"
)

const defaultRedisRetries = 10

// RedisStore is the offline mirror. Restaurants and archive parts are stored
// as JSON strings; updates use WATCH/MULTI and retry on conflict.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	MaxRetries int
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "queueapp"
	}
	return &RedisStore{client: client, prefix: prefix, MaxRetries: defaultRedisRetries}
}

func (s *RedisStore) restaurantKey(id string) string {
	return fmt.Sprintf("%s:restaurant:%s", s.prefix, id)
}

func (s *RedisStore) restaurantsKey() string {
	return s.prefix + ":restaurants"
}

func (s *RedisStore) partKey(partID string) string {
	return fmt.Sprintf("%s:archive:%s", s.prefix, partID)
}

func (s *RedisStore) partsIndexKey(restaurantID string) string {
	return fmt.Sprintf("%s:archives:%s", s.prefix, restaurantID)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (s *RedisStore) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode restaurant: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.restaurantKey(r.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", s.restaurantKey(r.ID), err)
	}
	if !created {
		return fmt.Errorf("restaurant %s already exists", r.ID)
	}
	if err := s.client.SAdd(ctx, s.restaurantsKey(), r.ID).Err(); err != nil {
		return fmt.Errorf("failed to index restaurant: %w", err)
	}
	return nil
}

func (s *RedisStore) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	data, err := s.client.Get(ctx, s.restaurantKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", s.restaurantKey(id), err)
	}
	return decodeRestaurant(data)
}

func (s *RedisStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	ids, err := s.client.SMembers(ctx, s.restaurantsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	if len(ids) == 0 {
		return []models.Restaurant{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.restaurantKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get multiple keys: %w", err)
	}

	restaurants := make([]models.Restaurant, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			utils.ErrorLogger.WithField("restaurant_id", ids[i]).Warnf("redis GET failed in pipeline: %v", err)
			continue
		}
		r, err := decodeRestaurant(data)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *r)
	}
	return restaurants, nil
}

func (s *RedisStore) ArchiveParts(ctx context.Context, restaurantID string) ([]models.ArchivePart, error) {
	ids, err := s.client.SMembers(ctx, s.partsIndexKey(restaurantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive parts: %w", err)
	}
	if len(ids) == 0 {
		return []models.ArchivePart{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.partKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive parts: %w", err)
	}

	parts := make([]models.ArchivePart, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var p models.ArchivePart
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("failed to decode archive part %s: %w", ids[i], err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// UpdateRestaurant runs fn under WATCH on the restaurant key. A concurrent
// writer aborts the MULTI and fn is re-run on the fresh state.
func (s *RedisStore) UpdateRestaurant(ctx context.Context, id string, fn models.UpdateFunc) (*models.Restaurant, error) {
	key := s.restaurantKey(id)
	var updated *models.Restaurant

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key %s: %w", key, err)
		}
		r, err := decodeRestaurant(data)
		if err != nil {
			return err
		}

		parts, err := fn(r)
		if err != nil {
			return err
		}
		r.UpdatedAt = time.Now()

		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode restaurant: %w", err)
		}
		staged, err := encodeParts(parts)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			s.queueParts(ctx, pipe, r.ID, staged)
			return nil
		})
		if err != nil {
			return err
		}
		updated = r
		return nil
	}

	retries := s.MaxRetries
	if retries < 1 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			utils.InfoLogger.WithField("restaurant_id", id).Debugf("redis transaction conflict, retry %d", i+1)
			continue
		}
		return nil, err
	}
	return nil, models.ErrTxConflict
}

// PutSnapshot overwrites the mirror copy with a state committed elsewhere.
func (s *RedisStore) PutSnapshot(ctx context.Context, r *models.Restaurant, parts []models.ArchivePart) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode restaurant: %w", err)
	}
	staged, err := encodeParts(parts)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.restaurantKey(r.ID), payload, 0)
		pipe.SAdd(ctx, s.restaurantsKey(), r.ID)
		s.queueParts(ctx, pipe, r.ID, staged)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to execute transaction: %w", err)
	}
	return nil
}

type encodedPart struct {
	id      string
	payload []byte
}

func encodeParts(parts []models.ArchivePart) ([]encodedPart, error) {
	out := make([]encodedPart, 0, len(parts))
	for _, p := range parts {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		payload, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode archive part %s: %w", p.ID, err)
		}
		out = append(out, encodedPart{id: p.ID, payload: payload})
	}
	return out, nil
}

func (s *RedisStore) queueParts(ctx context.Context, pipe redis.Pipeliner, restaurantID string, parts []encodedPart) {
	for _, p := range parts {
		pipe.Set(ctx, s.partKey(p.id), p.payload, 0)
		pipe.SAdd(ctx, s.partsIndexKey(restaurantID), p.id)
	}
}

func decodeRestaurant(data []byte) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode restaurant: %w", err)
	}
	return &r, nil
}
