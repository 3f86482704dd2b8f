package mq

import (
	"context"
	"encoding/json"
	"time"

	"recipebox/logging"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel recipe events are published on.
const Channel = "recipe-events"

const (
	RecipeCreated = "recipe-created"
	RecipeUpdated = "recipe-updated"
	RecipeLiked   = "recipe-liked"
	ImageUploaded = "recipe-image-uploaded"
)

// Event is a change notification for downstream consumers (search indexing,
// feeds). Delivery is best effort.
type Event struct {
	Type     string    `json:"type"`
	RecipeID string    `json:"recipeId,omitempty"`
	UserID   string    `json:"userId"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// RedisEmitter publishes events to Redis.
type RedisEmitter struct {
	conn *redis.Client
}

func NewRedisEmitter(conn *redis.Client) *RedisEmitter {
	return &RedisEmitter{conn: conn}
}

func (e *RedisEmitter) Emit(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logging.Warn("marshal event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	if err := e.conn.Publish(ctx, Channel, data).Err(); err != nil {
		logging.Warn("publish event", zap.String("type", ev.Type), zap.Error(err))
	}
}

// Nop drops events. Used when Redis is not configured.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}
