package waypoint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/rueidis"
)

// RedisConfig holds connection parameters for the shared waypoint store.
type RedisConfig struct {
	Addrs    []string
	Password string
	Key      string
}

// RedisStore keeps every record as a JSON value in one hash, field = name,
// so several navigators on the same survey share their waypoints.
type RedisStore struct {
	client rueidis.Client
	key    string
}

// NewRedisStore connects to Redis.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return newRedisStore(client, cfg.Key), nil
}

func newRedisStore(client rueidis.Client, key string) *RedisStore {
	if key == "" {
		key = "survey:waypoints"
	}
	return &RedisStore{client: client, key: key}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, r Record) error {
	if r.Name == "" {
		return ErrInvalidName
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode waypoint: %w", err)
	}
	cmd := s.client.B().Hset().Key(s.key).FieldValue().FieldValue(r.Name, string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("hset %s: %w", r.Name, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	m, err := s.client.Do(ctx, s.client.B().Hgetall().Key(s.key).Build()).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}
	out := make([]Record, 0, len(m))
	for name, raw := range m {
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode waypoint %s: %w", name, err)
		}
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, name string) (Record, error) {
	raw, err := s.client.Do(ctx, s.client.B().Hget().Key(s.key).Field(name).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Record{}, fmt.Errorf("hget %s: %w", name, err)
	}
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{}, fmt.Errorf("decode waypoint %s: %w", name, err)
	}
	return r, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	n, err := s.client.Do(ctx, s.client.B().Hdel().Key(s.key).Field(name).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("hdel %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *RedisStore) SetVisible(ctx context.Context, name string, visible bool) error {
	r, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	r.IsVisible = visible
	return s.Save(ctx, r)
}

func (s *RedisStore) Close() error {
	s.client.Close()
	return nil
}
