package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/ferretex/storefront-client/pkg/config"
)

const tokenKeySuffix = "token"

// RedisBackend keeps the snapshot in Redis, for kiosk-style deployments where
// several terminals share one persisted session.
type RedisBackend struct {
	client    *redis.Client
	namespace string
}

// NewRedisBackend connects to Redis and verifies connectivity.
func NewRedisBackend(ctx context.Context, cfg config.RedisConfig, namespace string) (*RedisBackend, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if namespace == "" {
		namespace = "ferretex:v1"
	}
	return &RedisBackend{client: client, namespace: namespace}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (r *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	blob, err := r.client.Get(ctx, r.snapshotKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return blob, nil
}

func (r *RedisBackend) Save(ctx context.Context, blob []byte, token string) error {
	if err := r.client.Set(ctx, r.snapshotKey(), blob, 0).Err(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if token == "" {
		if err := r.client.Del(ctx, r.tokenKey()).Err(); err != nil {
			return fmt.Errorf("removing token mirror: %w", err)
		}
		return nil
	}
	if err := r.client.Set(ctx, r.tokenKey(), token, 0).Err(); err != nil {
		return fmt.Errorf("writing token mirror: %w", err)
	}
	return nil
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	var errs error
	for _, key := range []string{r.snapshotKey(), r.tokenKey()} {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (r *RedisBackend) Token(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.tokenKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token mirror: %w", err)
	}
	return token, nil
}

// Close shuts down the underlying connection.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func (r *RedisBackend) snapshotKey() string {
	return r.namespace
}

func (r *RedisBackend) tokenKey() string {
	return strings.Join([]string{r.namespace, tokenKeySuffix}, ":")
}
