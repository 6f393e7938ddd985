package metrics

import (
	"context"
	"time"

	"github.com/rotaops/rota/core/events"
	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics
// for events emitted by components that do not hold the sink themselves,
// such as the chat bridge and the presence loop. It stops when the
// context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.DirectMessageSent:
					if r, ok := sink.(coremetrics.DirectMessageRecorder); ok {
						errStr := ""
						if e.Err != nil {
							errStr = e.Err.Error()
						}
						_ = r.RecordDirectMessage(coremetrics.DirectMessageEvent{
							Recipient:    e.Recipient,
							Attempts:     e.Attempts,
							Acknowledged: e.Acknowledged,
							Latency:      e.Latency,
							Error:        errStr,
							Time:         time.Now(),
						})
					}
				case events.PresencePushed:
					if r, ok := sink.(coremetrics.PresenceRecorder); ok {
						_ = r.RecordPresencePush(coremetrics.PresenceEvent{
							Dates: e.Dates,
							Keys:  e.Keys,
							Time:  time.Now(),
						})
					}
				}
			}
		}
	}()
}
