package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/api"
)

// RedisConfig holds settings for the Redis-backed registry.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379/0").
	URL string

	// TTL is how long a stream buffer survives after its last append.
	// Expired buffers make resume attempts fall back to synthesis
	// (default: 24 hours).
	TTL time.Duration
}

func (c *RedisConfig) defaults() {
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
}

// RedisRegistry stores stream buffers in Redis lists and fans live events
// out over pub/sub. Buffers expire after the configured TTL so abandoned
// streams do not accumulate.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Registry = (*RedisRegistry)(nil)

// NewRedis connects to Redis and returns a registry.
func NewRedis(ctx context.Context, cfg RedisConfig) (*RedisRegistry, error) {
	cfg.defaults()

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisRegistry{client: client, ttl: cfg.TTL}, nil
}

func eventsKey(streamID string) string { return "stream:" + streamID + ":events" }
func openKey(streamID string) string   { return "stream:" + streamID + ":open" }
func channelKey(streamID string) string { return "stream:" + streamID }

// Register marks the stream as open and returns its sink.
func (r *RedisRegistry) Register(ctx context.Context, streamID string) (Sink, error) {
	if err := r.client.Set(ctx, openKey(streamID), "1", r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("registering stream: %w", err)
	}
	return &redisSink{registry: r, streamID: streamID}, nil
}

// Attach replays the buffered events of the stream and follows live
// output over pub/sub until a terminal event arrives.
func (r *RedisRegistry) Attach(ctx context.Context, streamID string) (<-chan api.PipelineEvent, error) {
	// Subscribe before reading the buffer so no event published between
	// the replay read and the subscription start is lost. Duplicates
	// across the boundary are dropped by sequence number.
	sub := r.client.Subscribe(ctx, channelKey(streamID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribing to stream: %w", err)
	}

	exists, err := r.client.Exists(ctx, eventsKey(streamID), openKey(streamID)).Result()
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("checking stream: %w", err)
	}
	if exists == 0 {
		sub.Close()
		return nil, ErrNoSuchStream
	}

	raw, err := r.client.LRange(ctx, eventsKey(streamID), 0, -1).Result()
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("reading stream buffer: %w", err)
	}

	out := make(chan api.PipelineEvent, 64)
	go r.follow(ctx, sub, raw, out)
	return out, nil
}

// follow replays buffered events and then relays live ones, dropping
// anything at or below the highest replayed sequence number.
func (r *RedisRegistry) follow(ctx context.Context, sub *redis.PubSub, replay []string, out chan<- api.PipelineEvent) {
	defer close(out)
	defer sub.Close()

	lastSeq := 0
	for _, payload := range replay {
		event, ok := decodeEvent(payload)
		if !ok {
			continue
		}
		lastSeq = event.Seq

		select {
		case out <- event:
		case <-ctx.Done():
			return
		}
		if event.IsTerminal() {
			return
		}
	}

	live := sub.Channel()
	for {
		select {
		case msg, ok := <-live:
			if !ok {
				return
			}
			event, decoded := decodeEvent(msg.Payload)
			if !decoded || event.Seq <= lastSeq {
				continue
			}
			lastSeq = event.Seq

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
			if event.IsTerminal() {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close releases the Redis client.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

func decodeEvent(payload string) (api.PipelineEvent, bool) {
	var event api.PipelineEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		slog.Warn("dropping undecodable stream event", "error", err)
		return api.PipelineEvent{}, false
	}
	return event, true
}

// redisSink appends events to the stream's list and publishes them to
// live subscribers.
type redisSink struct {
	registry *RedisRegistry
	streamID string
}

func (s *redisSink) Append(ctx context.Context, event api.PipelineEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding stream event: %w", err)
	}

	client := s.registry.client
	pipe := client.Pipeline()
	pipe.RPush(ctx, eventsKey(s.streamID), payload)
	pipe.Expire(ctx, eventsKey(s.streamID), s.registry.ttl)
	pipe.Publish(ctx, channelKey(s.streamID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending stream event: %w", err)
	}
	return nil
}

func (s *redisSink) Close(ctx context.Context) error {
	return s.registry.client.Del(ctx, openKey(s.streamID)).Err()
}
