package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Hash fields used by RedisStore.
const (
	fieldAutoExpand   = "autoExpand"
	fieldTheme        = "themeOverride"
	fieldCSVDelimiter = "csvDelimiter"
)

// DefaultRedisKey is the hash preferences live in when no key is configured.
const DefaultRedisKey = "jsontable:prefs"

// RedisClient is the subset of *redis.Client the store uses.
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisConfig configures NewRedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisStore keeps the record in a Redis hash.
type RedisStore struct {
	client RedisClient
	key    string
}

// NewRedisStore connects a go-redis client for cfg. The connection is
// established lazily by the client.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.Key)
}

// NewRedisStoreWithClient uses an existing client. An empty key means
// DefaultRedisKey.
func NewRedisStoreWithClient(client RedisClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Key returns the hash key; session scoped stores derive theirs from it.
func (s *RedisStore) Key() string { return s.key }

// WithKey returns a store on the same client using another hash.
func (s *RedisStore) WithKey(key string) *RedisStore {
	return NewRedisStoreWithClient(s.client, key)
}

func (s *RedisStore) Get(ctx context.Context) (Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Record{}, unavailable(fmt.Errorf("redis HGETALL %s: %w", s.key, err))
	}
	var rec Record
	if v, ok := fields[fieldAutoExpand]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Record{}, unavailable(fmt.Errorf("redis field %s: %w", fieldAutoExpand, err))
		}
		rec.AutoExpand = &b
	}
	if v, ok := fields[fieldTheme]; ok {
		t := Theme(v)
		rec.Theme = &t
	}
	if v, ok := fields[fieldCSVDelimiter]; ok {
		rec.CSVDelimiter = &v
	}
	return rec, nil
}

func (s *RedisStore) Put(ctx context.Context, r Record) error {
	var values []interface{}
	if r.AutoExpand != nil {
		values = append(values, fieldAutoExpand, strconv.FormatBool(*r.AutoExpand))
	}
	if r.Theme != nil {
		values = append(values, fieldTheme, string(*r.Theme))
	}
	if r.CSVDelimiter != nil {
		values = append(values, fieldCSVDelimiter, *r.CSVDelimiter)
	}
	if len(values) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, s.key, values...).Err(); err != nil {
		return unavailable(fmt.Errorf("redis HSET %s: %w", s.key, err))
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
