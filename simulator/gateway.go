package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Gateway impersonates the chat gateway: it consumes direct messages
// from the DM topic tree and acknowledges them on the ack topic.
type Gateway struct {
	cli      paho.Client
	prefix   string
	ackTopic string
	strategy AckStrategy
}

func NewGateway(cfg Config, strategy AckStrategy) (*Gateway, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(fmt.Sprintf("chat-sim-%d", rng.Int63()))
	opts.AutoReconnect = true
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Gateway{
		cli:      cli,
		prefix:   cfg.DMTopicPrefix,
		ackTopic: cfg.AckTopic,
		strategy: strategy,
	}, nil
}

// Run subscribes to the DM tree and blocks until the context ends.
func (g *Gateway) Run(ctx context.Context) error {
	topic := g.prefix + "/+"
	token := g.cli.Subscribe(topic, 0, func(_ paho.Client, msg paho.Message) {
		g.handle(ctx, msg)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	log.Printf("gateway listening on %s, acking to %s", topic, g.ackTopic)
	<-ctx.Done()
	g.cli.Disconnect(250)
	return nil
}

func (g *Gateway) handle(ctx context.Context, msg paho.Message) {
	var dm struct {
		MessageID string `json:"message_id"`
		Recipient string `json:"recipient"`
		Text      string `json:"text"`
	}
	if err := json.Unmarshal(msg.Payload(), &dm); err != nil {
		log.Printf("decode dm on %s: %v", msg.Topic(), err)
		return
	}
	if dm.MessageID == "" {
		log.Printf("dm on %s has no message id, ignoring", msg.Topic())
		return
	}
	log.Printf("dm %s for %s: %q", dm.MessageID, dm.Recipient, dm.Text)
	go g.strategy.Ack(ctx, g.cli, g.ackTopic, dm.MessageID)
}
