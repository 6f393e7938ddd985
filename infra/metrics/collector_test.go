package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotaops/rota/core/events"
	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/internal/eventbus"
)

type recordingSink struct {
	coremetrics.NopSink
	mu       sync.Mutex
	messages []coremetrics.DirectMessageEvent
	pushes   []coremetrics.PresenceEvent
}

func (s *recordingSink) RecordDirectMessage(ev coremetrics.DirectMessageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, ev)
	return nil
}

func (s *recordingSink) RecordPresencePush(ev coremetrics.PresenceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, ev)
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)

	bus.Publish(events.DirectMessageSent{
		Recipient:    "alice@example.com",
		Attempts:     2,
		Acknowledged: true,
		Latency:      80 * time.Millisecond,
	})
	bus.Publish(events.PresencePushed{Dates: 5, Keys: 15})

	deadline := time.Now().Add(2 * time.Second)
	for {
		sink.mu.Lock()
		msgs, pushes := len(sink.messages), len(sink.pushes)
		sink.mu.Unlock()
		if msgs == 1 && pushes == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("events not collected: messages=%d pushes=%d", msgs, pushes)
		}
		time.Sleep(10 * time.Millisecond)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	msg := sink.messages[0]
	if msg.Recipient != "alice@example.com" || msg.Attempts != 2 || !msg.Acknowledged {
		t.Errorf("unexpected message event: %+v", msg)
	}
	if msg.Error != "" {
		t.Errorf("expected empty error string, got %q", msg.Error)
	}
	push := sink.pushes[0]
	if push.Dates != 5 || push.Keys != 15 {
		t.Errorf("unexpected presence event: %+v", push)
	}
}

func TestStartEventCollector_NilArgs(t *testing.T) {
	// must not panic
	StartEventCollector(context.Background(), nil, nil)
}
