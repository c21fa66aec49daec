package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const legacyBalancePrefix = "ecoroot.mockApi.credits"

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// RedisMirror stores the spendable balance under the single-number key
// older clients read.
type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror(ctx context.Context, cfg RedisConfig) (*RedisMirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisMirror{client: client}, nil
}

func NewRedisMirrorFromClient(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client}
}

func legacyBalanceKey(userID string) string {
	return legacyBalancePrefix + ":" + userID
}

func (m *RedisMirror) MirrorBalance(ctx context.Context, userID string, balance int) error {
	if err := m.client.Set(ctx, legacyBalanceKey(userID), strconv.Itoa(balance), 0).Err(); err != nil {
		return fmt.Errorf("failed to mirror balance: %w", err)
	}
	return nil
}

func (m *RedisMirror) LegacyBalance(ctx context.Context, userID string) (int, bool, error) {
	val, err := m.client.Get(ctx, legacyBalanceKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read legacy balance: %w", err)
	}

	balance, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt legacy balance %q: %w", val, err)
	}
	return balance, true, nil
}

func (m *RedisMirror) Close() error {
	return m.client.Close()
}

// NoopMirror is used when no legacy store is configured.
type NoopMirror struct{}

func (NoopMirror) MirrorBalance(ctx context.Context, userID string, balance int) error {
	return nil
}

func (NoopMirror) LegacyBalance(ctx context.Context, userID string) (int, bool, error) {
	return 0, false, nil
}
