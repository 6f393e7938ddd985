//go:build !no_containers

package test

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/infra/chat"
	"github.com/rotaops/rota/test/util"
)

func TestRedisPresencePublishesWindow(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}

	ctx := context.Background()
	addr, cleanup, err := util.StartRedis(ctx)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer cleanup()

	presence := chat.NewRedisPresence(chat.RedisConfig{
		Addr:      addr,
		KeyPrefix: "test:oncall",
		TTLHours:  1,
	}, nil)
	defer func() {
		if err := presence.Close(); err != nil {
			t.Errorf("close presence: %v", err)
		}
	}()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	window := []model.Assignment{
		{Date: day, Rotation: model.RotationAM, Engineer: "Alice@Example.com"},
		{Date: day, Rotation: model.RotationCore, Engineer: "bob@example.com"},
		{Date: day, Rotation: model.RotationPM, Engineer: "carol@example.com"},
	}
	if err := presence.SetOnCall(ctx, window); err != nil {
		t.Fatalf("set on call: %v", err)
	}

	cli := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = cli.Close() }()

	cases := map[string]string{
		"test:oncall:2026-03-02:am":   "alice@example.com",
		"test:oncall:2026-03-02:core": "bob@example.com",
		"test:oncall:2026-03-02:pm":   "carol@example.com",
	}
	for key, want := range cases {
		got, err := cli.Get(ctx, key).Result()
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if got != want {
			t.Errorf("key %s = %s, want %s", key, got, want)
		}
		ttl, err := cli.TTL(ctx, key).Result()
		if err != nil {
			t.Fatalf("ttl %s: %v", key, err)
		}
		if ttl <= 0 || ttl > time.Hour {
			t.Errorf("key %s ttl = %v, want within (0, 1h]", key, ttl)
		}
	}

	// A re-push after an override replaces the slot in place.
	window[2].Engineer = "dave@example.com"
	if err := presence.SetOnCall(ctx, window); err != nil {
		t.Fatalf("second push: %v", err)
	}
	got, err := cli.Get(ctx, "test:oncall:2026-03-02:pm").Result()
	if err != nil {
		t.Fatalf("get after re-push: %v", err)
	}
	if got != "dave@example.com" {
		t.Errorf("pm slot after re-push = %s, want dave@example.com", got)
	}
}

func TestRedisPresenceEmptyWindowIsNoop(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}

	ctx := context.Background()
	addr, cleanup, err := util.StartRedis(ctx)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer cleanup()

	presence := chat.NewRedisPresence(chat.RedisConfig{Addr: addr}, nil)
	defer func() { _ = presence.Close() }()

	if err := presence.SetOnCall(ctx, nil); err != nil {
		t.Fatalf("empty window: %v", err)
	}

	cli := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = cli.Close() }()
	n, err := cli.DBSize(ctx).Result()
	if err != nil {
		t.Fatalf("dbsize: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no keys, got %d", n)
	}
}
