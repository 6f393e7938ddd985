package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	corechat "github.com/rotaops/rota/core/chat"
	"github.com/rotaops/rota/core/events"
	"github.com/rotaops/rota/core/monitoring"
	"github.com/rotaops/rota/infra/logger"
	"github.com/rotaops/rota/internal/eventbus"
)

// pahoClient is the subset of the Paho client used by the bridge.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Bridge implements the Messenger port over the chat gateway's MQTT ingress.
// Each message carries a unique identifier; the gateway echoes it on the ack
// topic once the recipient's chat client accepted the message.
type Bridge struct {
	cli      pahoClient
	prefix   string
	ackTopic string
	qos      map[string]byte

	mu         sync.Mutex
	ackChans   map[string]chan struct{}
	logger     logger.Logger
	bus        eventbus.EventBus
	maxRetries int
	backoff    time.Duration
	ackTimeout time.Duration
}

// NewBridge connects to the MQTT broker and subscribes to the ACK topic.
// The bus may be nil when no delivery metrics are collected.
func NewBridge(cfg Config, bus eventbus.EventBus) (*Bridge, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("chat_bridge")
	prefix := cfg.DMTopicPrefix
	if prefix == "" {
		prefix = "chat/dm"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := time.Duration(cfg.BackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	ackTimeout := time.Duration(cfg.AckTimeoutMS) * time.Millisecond
	if ackTimeout <= 0 {
		ackTimeout = 5 * time.Second
	}
	b := &Bridge{
		prefix:     prefix,
		ackTopic:   cfg.AckTopic,
		qos:        cfg.QoS,
		ackChans:   make(map[string]chan struct{}),
		logger:     log,
		bus:        bus,
		maxRetries: maxRetries,
		backoff:    backoff,
		ackTimeout: ackTimeout,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if b.ackTopic == "" {
			return
		}
		qos := byte(0)
		if q, ok := b.qos["ack"]; ok {
			qos = q
		}
		if token := c.Subscribe(b.ackTopic, qos, b.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	b.cli = c
	return b, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

func (b *Bridge) onAck(_ paho.Client, msg paho.Message) {
	var m struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		b.logger.Errorf("failed to decode ack: %v", err)
		return
	}
	b.mu.Lock()
	ch, ok := b.ackChans[m.MessageID]
	if ok {
		select {
		case ch <- struct{}{}:
		default:
		}
		b.logger.Infof("received ack %s", m.MessageID)
	}
	b.mu.Unlock()
}

// DirectMessage publishes the text to the recipient's DM topic and waits for
// the gateway acknowledgment. Delivery failures are reported to the caller
// and on the event bus; the caller decides whether they matter.
func (b *Bridge) DirectMessage(ctx context.Context, email, text string) error {
	recipient := strings.ToLower(email)
	start := time.Now()
	attempts, acked, err := b.deliver(ctx, recipient, text)
	if b.bus != nil {
		b.bus.Publish(events.DirectMessageSent{
			Recipient:    recipient,
			Attempts:     attempts,
			Acknowledged: acked,
			Latency:      time.Since(start),
			Err:          err,
		})
	}
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"recipient": recipient, "module": "chat"})
	}
	return err
}

func (b *Bridge) deliver(ctx context.Context, recipient, text string) (int, bool, error) {
	msgID := uuid.NewString()
	dm := struct {
		MessageID string `json:"message_id"`
		Recipient string `json:"recipient"`
		Text      string `json:"text"`
		Timestamp int64  `json:"timestamp"`
	}{
		MessageID: msgID,
		Recipient: recipient,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(dm)
	if err != nil {
		return 0, false, err
	}

	topic := fmt.Sprintf("%s/%s", b.prefix, recipient)
	qos := byte(0)
	if q, ok := b.qos["dm"]; ok {
		qos = q
	}

	// Register before publishing so an ack racing the publish is not lost.
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.ackChans[msgID] = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.ackChans, msgID)
		b.mu.Unlock()
	}()

	attempts := 0
	var publishErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		attempts++
		token := b.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			b.logger.Infof("sent dm %s to %s", msgID, topic)
			break
		}
		b.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		select {
		case <-ctx.Done():
			return attempts, false, ctx.Err()
		case <-time.After(b.backoff * time.Duration(1<<attempt)):
		}
	}
	if publishErr != nil {
		return attempts, false, publishErr
	}
	if b.ackTopic == "" {
		return attempts, false, nil
	}

	timer := time.NewTimer(b.ackTimeout)
	defer timer.Stop()
	select {
	case <-ch:
		return attempts, true, nil
	case <-ctx.Done():
		return attempts, false, ctx.Err()
	case <-timer.C:
		return attempts, false, fmt.Errorf("dm to %s: %w", recipient, corechat.ErrAckTimeout)
	}
}

// Close gracefully closes the MQTT connection.
func (b *Bridge) Close() {
	if b.cli != nil && b.cli.IsConnected() {
		b.cli.Disconnect(250)
	}
}
