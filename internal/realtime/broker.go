package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces the per-user Redis channels.
const ChannelPrefix = "chat:user:"

// Deliver hands a frame to every local connection of a user.
type Deliver func(userID string, frame []byte)

// Broker routes frames to the instance(s) holding a user's connections.
type Broker interface {
	Publish(ctx context.Context, userID string, frame []byte) error
	// Subscribe returns once the subscription is live. Frames are passed to
	// deliver until ctx is done.
	Subscribe(ctx context.Context, deliver Deliver) error
}

// LocalBroker delivers in process. It is enough when a single API instance runs.
type LocalBroker struct {
	mu      sync.RWMutex
	deliver Deliver
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

func (b *LocalBroker) Publish(ctx context.Context, userID string, frame []byte) error {
	b.mu.RLock()
	deliver := b.deliver
	b.mu.RUnlock()
	if deliver != nil {
		deliver(userID, frame)
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, deliver Deliver) error {
	b.mu.Lock()
	b.deliver = deliver
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.deliver = nil
		b.mu.Unlock()
	}()
	return nil
}

// RedisBroker fans frames out through Redis Pub/Sub so every API instance sees them.
type RedisBroker struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisBroker(client *redis.Client, logger *slog.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, userID string, frame []byte) error {
	if err := b.client.Publish(ctx, ChannelPrefix+userID, frame).Err(); err != nil {
		return fmt.Errorf("error publishing to %s: %v", userID, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, deliver Deliver) error {
	sub := b.client.PSubscribe(ctx, ChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("error subscribing to chat channels: %v", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					b.logger.Warn("chat subscription closed")
					return
				}
				deliver(strings.TrimPrefix(msg.Channel, ChannelPrefix), []byte(msg.Payload))
			}
		}
	}()
	return nil
}
