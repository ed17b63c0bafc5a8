package messaging

import (
	"context"
	"log/slog"
	"sync"
)

type busMessage struct {
	Key     string
	Payload []byte
}

// Bus is the in-process publish/subscribe fallback used for local runs and
// tests, mirroring the Publisher contract of the Kafka adapter.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan busMessage
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]chan busMessage),
		logger:      logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	b.mu.RLock()
	subs := append([]chan busMessage(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- busMessage{Key: key, Payload: payload}:
		default:
			if b.logger != nil {
				b.logger.Warn("dropping event for slow subscriber",
					"event", "bus_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"key", key,
				)
			}
		}
	}

	if b.logger != nil {
		b.logger.Info("event published",
			"event", "bus_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"key", key,
		)
	}
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, string, []byte) error,
) error {
	ch := make(chan busMessage, 128)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case message := <-ch:
				if err := handler(ctx, message.Key, message.Payload); err != nil && b.logger != nil {
					b.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"key", message.Key,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bus) removeSubscriber(topic string, target chan busMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan busMessage, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
