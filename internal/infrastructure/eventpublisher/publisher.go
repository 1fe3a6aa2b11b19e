package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/domain"
)

// Publisher delivers a security event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event domain.AuditEvent) error
}

// Config for EventPublisher.
type Config struct {
	Publisher  Publisher
	Logger     zerolog.Logger
	BufferSize int // Queue capacity before events are dropped
}

// EventPublisher fans security events out to a Publisher from a bounded
// queue. Enqueue never blocks a request path; when the queue is full the
// event is dropped and counted in the log stream.
type EventPublisher struct {
	publisher Publisher
	logger    zerolog.Logger
	queue     chan domain.AuditEvent
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 256
	}

	return &EventPublisher{
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		queue:     make(chan domain.AuditEvent, cfg.BufferSize),
	}
}

// Enqueue queues an event for delivery without blocking.
func (ep *EventPublisher) Enqueue(event domain.AuditEvent) {
	select {
	case ep.queue <- event:
	default:
		ep.logger.Warn().
			Str("action", string(event.Action)).
			Msg("security event dropped, queue full")
	}
}

// Start runs the delivery worker until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().Int("buffer_size", cap(ep.queue)).Msg("event publisher started")

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case event := <-ep.queue:
			if err := ep.publisher.Publish(ctx, event); err != nil {
				ep.logger.Error().
					Err(err).
					Str("action", string(event.Action)).
					Msg("failed to publish security event")
				// Keep draining even when one event fails
				continue
			}
			ep.logger.Debug().
				Str("action", string(event.Action)).
				Str("user_id", event.UserID).
				Msg("security event published")
		}
	}
}

// drain publishes everything currently queued. Used by tests to force
// delivery without a running worker.
func (ep *EventPublisher) drain(ctx context.Context) {
	for {
		select {
		case event := <-ep.queue:
			if err := ep.publisher.Publish(ctx, event); err != nil {
				ep.logger.Error().Err(err).Msg("failed to publish security event")
			}
		default:
			return
		}
	}
}

// RedisPublisher publishes security events on a Redis channel so sibling
// services can react to logins, logouts and revocations.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// DefaultChannel is the Redis channel security events are published on.
const DefaultChannel = "authcore.security_events"

// NewRedisPublisher creates a new RedisPublisher. An empty channel selects
// DefaultChannel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

type wireEvent struct {
	Action        string    `json:"action"`
	UserID        string    `json:"user_id,omitempty"`
	TenantID      string    `json:"tenant_id,omitempty"`
	IPAddress     string    `json:"ip_address,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publish sends the event as JSON on the configured channel.
func (p *RedisPublisher) Publish(ctx context.Context, event domain.AuditEvent) error {
	payload, err := json.Marshal(wireEvent{
		Action:        string(event.Action),
		UserID:        event.UserID,
		TenantID:      event.TenantID,
		IPAddress:     event.IPAddress,
		CorrelationID: event.CorrelationID,
		Detail:        event.Detail,
		OccurredAt:    event.OccurredAt,
	})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// LogPublisher is a publisher that writes events to the log stream. It is
// the fallback when no Redis instance is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event domain.AuditEvent) error {
	p.logger.Info().
		Str("action", string(event.Action)).
		Str("user_id", event.UserID).
		Str("tenant_id", event.TenantID).
		Str("ip_address", event.IPAddress).
		Str("correlation_id", event.CorrelationID).
		Time("occurred_at", event.OccurredAt).
		Msg("security event")
	return nil
}
