package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type envelope struct {
	Origin    string  `json:"origin"`
	CompanyID string  `json:"companyId"`
	Message   Message `json:"message"`
}

// inbound mirrors envelope with a raw payload so relayed messages are
// forwarded byte for byte.
type inbound struct {
	Origin    string `json:"origin"`
	CompanyID string `json:"companyId"`
	Message   struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	} `json:"message"`
}

// RedisRelay shares broadcasts between API instances over a Redis pub/sub
// channel. Local connections are served straight from the Hub; only other
// instances' messages are taken from Redis.
type RedisRelay struct {
	hub     *Hub
	client  *redis.Client
	channel string
	origin  string
	log     *zap.Logger
}

func NewRedisRelay(redisURL, channel string, hub *Hub, log *zap.Logger) (*RedisRelay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisRelay{
		hub:     hub,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log,
	}, nil
}

func (r *RedisRelay) Broadcast(ctx context.Context, companyID string, msg Message) {
	r.hub.Broadcast(ctx, companyID, msg)

	data, err := json.Marshal(envelope{Origin: r.origin, CompanyID: companyID, Message: msg})
	if err != nil {
		r.log.Warn("relay marshal failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.log.Warn("relay publish failed", zap.String("type", msg.Type), zap.Error(err))
	}
}

// Run consumes the channel until ctx is done. ready, when non-nil, is closed
// once the subscription is confirmed.
func (r *RedisRelay) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(ctx, m.Payload)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, payload string) {
	var in inbound
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		r.log.Warn("relay dropped malformed message", zap.Error(err))
		return
	}
	if in.Origin == r.origin || in.CompanyID == "" {
		return
	}
	msg := Message{Type: in.Message.Type}
	if len(in.Message.Payload) > 0 {
		msg.Payload = in.Message.Payload
	}
	r.hub.Broadcast(ctx, in.CompanyID, msg)
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}
