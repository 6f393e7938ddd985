package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// publisher is the subset of the Paho client the strategies need.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// AckStrategy defines how the gateway acknowledges delivered messages.
type AckStrategy interface {
	Ack(ctx context.Context, cli publisher, ackTopic, messageID string)
}

// AutoAck acknowledges every message after an optional fixed delay.
type AutoAck struct {
	Delay time.Duration
}

// Ack implements AckStrategy.
func (a AutoAck) Ack(ctx context.Context, cli publisher, ackTopic, messageID string) {
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return
		}
	}
	publishAck(cli, ackTopic, messageID)
}

// RandomAck drops acknowledgments with the configured probability and
// waits for the specified delay before sending.
type RandomAck struct {
	Delay    time.Duration
	DropRate float64
}

// Ack implements AckStrategy.
func (r RandomAck) Ack(ctx context.Context, cli publisher, ackTopic, messageID string) {
	if r.DropRate > 0 && rng.Float64() < r.DropRate {
		return
	}
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return
		}
	}
	publishAck(cli, ackTopic, messageID)
}

func publishAck(cli publisher, ackTopic, messageID string) {
	payload, err := json.Marshal(struct {
		MessageID string `json:"message_id"`
	}{MessageID: messageID})
	if err != nil {
		log.Printf("marshal ack: %v", err)
		return
	}
	token := cli.Publish(ackTopic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("ack publish timeout for %s", messageID)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("publish ack error for %s: %v", messageID, err)
	}
}
