package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bitacora-blog/apiserver/internal/mq"
)

// Blog event types published after a successful write.
const (
	EventBlogCreated = "blog.created"
	EventBlogUpdated = "blog.updated"
	EventBlogDeleted = "blog.deleted"
)

// BlogEvent notifies downstream consumers that a blog changed.
type BlogEvent struct {
	Type       string    `json:"type"`
	BlogID     string    `json:"blog_id"`
	ActorID    string    `json:"actor_id"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends raw messages to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// EventEmitter publishes blog events on a single channel. A nil emitter or
// one without a publisher drops events.
type EventEmitter struct {
	publisher Publisher
	channel   string
	logger    *slog.Logger
}

func NewEventEmitter(publisher Publisher, channel string, logger *slog.Logger) *EventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventEmitter{publisher: publisher, channel: channel, logger: logger}
}

// Emit publishes event. Failures are logged and swallowed: the write that
// produced the event has already been committed.
func (e *EventEmitter) Emit(ctx context.Context, event BlogEvent) {
	if e == nil || e.publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		e.logger.ErrorContext(ctx, "encode blog event", slog.String("type", event.Type), slog.Any("error", err))
		return
	}

	// Events for one blog share an ordering key so consumers see them in order.
	id, err := e.publisher.Publish(ctx, e.channel, data, map[string]string{
		mq.AttrType:        event.Type,
		mq.AttrOrderingKey: event.BlogID,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "publish blog event",
			slog.String("type", event.Type),
			slog.String("blog_id", event.BlogID),
			slog.Any("error", err),
		)
		return
	}
	e.logger.DebugContext(ctx, "blog event published",
		slog.String("type", event.Type),
		slog.String("blog_id", event.BlogID),
		slog.String("message_id", id),
	)
}

// DecodeBlogEvent parses a message produced by Emit.
func DecodeBlogEvent(data []byte) (BlogEvent, error) {
	var event BlogEvent
	err := json.Unmarshal(data, &event)
	return event, err
}
