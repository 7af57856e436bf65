package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

// eventBuffer is the per-subscription queue. Invalidation events are
// idempotent, so dropping under pressure only delays a cache refresh.
const eventBuffer = 64

// RedisPubSub broadcasts content change events over Redis channels. Every
// instance subscribed to a channel receives every event.
type RedisPubSub struct {
	client *redis.Client

	mu   sync.Mutex
	subs map[string]*redis.PubSub
}

// NewRedisPubSub connects to Redis and verifies the connection.
func NewRedisPubSub(cfg RedisConfig) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPubSub{
		client: client,
		subs:   make(map[string]*redis.PubSub),
	}, nil
}

// Publish sends event on channel. A zero timestamp is stamped with now.
func (r *RedisPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := r.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}

// Subscribe listens on one channel. It returns once Redis has confirmed the
// subscription, so events published afterwards are not missed.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return r.listen(ctx, channel, r.client.Subscribe(ctx, channel))
}

// SubscribePattern listens on every channel matching a glob pattern such as
// PatternContentChanged.
func (r *RedisPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	return r.listen(ctx, pattern, r.client.PSubscribe(ctx, pattern))
}

func (r *RedisPubSub) listen(ctx context.Context, key string, sub *redis.PubSub) (<-chan *Event, error) {
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", key, err)
	}

	r.mu.Lock()
	if prev, ok := r.subs[key]; ok {
		_ = prev.Close()
	}
	r.subs[key] = sub
	r.mu.Unlock()

	eventCh := make(chan *Event, eventBuffer)
	go r.forward(ctx, sub, eventCh)
	return eventCh, nil
}

// Unsubscribe ends the subscription made with channel or pattern. Its event
// channel is closed.
func (r *RedisPubSub) Unsubscribe(ctx context.Context, channel string) error {
	r.mu.Lock()
	sub, ok := r.subs[channel]
	delete(r.subs, channel)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return sub.Close()
}

// Close ends every subscription and closes the client.
func (r *RedisPubSub) Close() error {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*redis.PubSub)
	r.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		errs = append(errs, sub.Close())
	}
	errs = append(errs, r.client.Close())
	return errors.Join(errs...)
}

// forward decodes messages into eventCh until ctx is done or the
// subscription closes.
func (r *RedisPubSub) forward(ctx context.Context, sub *redis.PubSub, eventCh chan<- *Event) {
	defer close(eventCh)

	l := log.Ctx(ctx)
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			event, err := decodeEvent(msg.Channel, msg.Payload)
			if err != nil {
				l.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed event")
				continue
			}

			select {
			case eventCh <- event:
			case <-ctx.Done():
				return
			default:
				l.Warn().Str("channel", msg.Channel).Str("kind", event.Kind).Msg("event queue full, dropping event")
			}
		}
	}
}

// decodeEvent parses payload. An event without a kind takes it from a
// content channel name.
func decodeEvent(channel, payload string) (*Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		return nil, errors.New("event has no type")
	}
	if event.Kind == "" {
		kind, err := KindFromChannel(channel)
		if err != nil {
			return nil, err
		}
		event.Kind = kind
	}
	return &event, nil
}
