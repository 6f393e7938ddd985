package chat

import (
	"testing"
	"time"

	"github.com/rotaops/rota/core/model"
)

func TestPresenceKey(t *testing.T) {
	a := model.Assignment{
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Rotation: model.RotationCore,
		Engineer: "alice@example.com",
	}
	if got := presenceKey("rota:oncall", a); got != "rota:oncall:2026-03-02:core" {
		t.Fatalf("unexpected key %s", got)
	}
}

func TestRedisPresenceDefaults(t *testing.T) {
	p := NewRedisPresenceWithClient(nil, RedisConfig{}, nil)
	if p.prefix != "rota:oncall" {
		t.Errorf("default prefix = %s", p.prefix)
	}
	if p.ttl != 48*time.Hour {
		t.Errorf("default ttl = %v", p.ttl)
	}

	p = NewRedisPresenceWithClient(nil, RedisConfig{KeyPrefix: "custom", TTLHours: 2}, nil)
	if p.prefix != "custom" || p.ttl != 2*time.Hour {
		t.Errorf("config not applied: prefix=%s ttl=%v", p.prefix, p.ttl)
	}
}
