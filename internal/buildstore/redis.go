package buildstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "lastchanges"

// RedisStore keeps one string key per build plus a sorted set of build
// numbers used for ordering.
type RedisStore struct {
	client *redis.Client
	prefix string
	codec  codec
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, compressThreshold int) (*RedisStore, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, prefix: prefix, codec: newCodec(compressThreshold)}, nil
}

func (s *RedisStore) recordKey(number int) string {
	return s.prefix + ":build:" + strconv.Itoa(number)
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":builds"
}

// Save writes the record and indexes its number atomically.
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	data, err := s.codec.encode(rec)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(rec.Number), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(rec.Number), Member: strconv.Itoa(rec.Number)})
		return nil
	})
	return err
}

// Get returns the record of build number.
func (s *RedisStore) Get(ctx context.Context, number int) (Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(number)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrBuildNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return s.codec.decode(data)
}

// LastSuccessful scans build numbers from the highest down.
func (s *RedisStore) LastSuccessful(ctx context.Context) (Record, error) {
	numbers, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return Record{}, err
	}
	for _, n := range numbers {
		number, err := strconv.Atoi(n)
		if err != nil {
			return Record{}, fmt.Errorf("corrupt build index entry %q: %w", n, err)
		}
		rec, err := s.Get(ctx, number)
		if errors.Is(err, ErrBuildNotFound) {
			continue
		}
		if err != nil {
			return Record{}, err
		}
		if rec.Result == Success {
			return rec, nil
		}
	}
	return Record{}, ErrBuildNotFound
}

// List returns all records in build number order.
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	numbers, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, nil
	}

	keys := make([]string, len(numbers))
	for i, n := range numbers {
		number, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("corrupt build index entry %q: %w", n, err)
		}
		keys[i] = s.recordKey(number)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		rec, err := s.codec.decode([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
