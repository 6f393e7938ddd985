package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rotaops/rota/core/events"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/infra/logger"
	"github.com/rotaops/rota/internal/eventbus"
)

// RedisPresence implements the PresenceStore port on the Redis instance
// backing chat presence lookups. Every push rewrites the full window in one
// transaction; keys for slots that left the window are reaped by TTL.
type RedisPresence struct {
	cli    redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger logger.Logger
	bus    eventbus.EventBus
}

// NewRedisPresence connects to the configured Redis instance.
// The bus may be nil when no push metrics are collected.
func NewRedisPresence(cfg RedisConfig, bus eventbus.EventBus) *RedisPresence {
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisPresenceWithClient(cli, cfg, bus)
}

// NewRedisPresenceWithClient wraps an existing client.
func NewRedisPresenceWithClient(cli redis.UniversalClient, cfg RedisConfig, bus eventbus.EventBus) *RedisPresence {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "rota:oncall"
	}
	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisPresence{
		cli:    cli,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.New("chat_presence"),
		bus:    bus,
	}
}

// presenceKey builds the lookup key the chat system reads for one slot.
func presenceKey(prefix string, a model.Assignment) string {
	return fmt.Sprintf("%s:%s:%s", prefix, a.Date.Format(model.DateFormat), a.Rotation)
}

// SetOnCall replaces the published window with the given assignments.
func (p *RedisPresence) SetOnCall(ctx context.Context, window []model.Assignment) error {
	if len(window) == 0 {
		return nil
	}
	dates := make(map[string]struct{})
	_, err := p.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, a := range window {
			pipe.Set(ctx, presenceKey(p.prefix, a), a.EngineerKey(), p.ttl)
			dates[a.Date.Format(model.DateFormat)] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("presence push: %w", err)
	}
	if p.bus != nil {
		p.bus.Publish(events.PresencePushed{Dates: len(dates), Keys: len(window)})
	}
	p.logger.Debugf("pushed %d presence keys over %d dates", len(window), len(dates))
	return nil
}

// Close releases the underlying client.
func (p *RedisPresence) Close() error { return p.cli.Close() }
