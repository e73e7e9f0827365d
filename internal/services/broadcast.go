package services

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"messenger/internal/models"
)

// Events published to chat channels.
const (
	EventReceiveMessage       = "ReceiveMessage"
	EventMessageStatusUpdated = "MessageStatusUpdated"
	EventMessageDeleted       = "MessageDeleted"
)

// Envelope is the wire format published to a chat channel.
type Envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// StatusUpdatePayload is the MessageStatusUpdated event body.
type StatusUpdatePayload struct {
	MessageID int                  `json:"messageId"`
	Status    models.MessageStatus `json:"status"`
}

// MessageDeletedPayload is the MessageDeleted event body.
type MessageDeletedPayload struct {
	MessageID int `json:"messageId"`
}

// Broadcaster fans an event out to every live subscriber of a chat.
type Broadcaster interface {
	Publish(ctx context.Context, chatID int, event string, payload interface{}) error
}

// RedisBroadcaster publishes chat events on redis pub/sub channels named by
// chat id, the channels clients subscribe to on connect.
type RedisBroadcaster struct {
	rdb *redis.Client
}

// NewRedisBroadcaster returns a Broadcaster over the given redis client.
func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, chatID int, event string, payload interface{}) error {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, strconv.Itoa(chatID), data).Err()
}

// publish logs and swallows transport errors. The message and receipt state is
// already durably committed when a broadcast happens, so a subscriber being
// unreachable must never surface to the caller.
func publish(ctx context.Context, b Broadcaster, chatID int, event string, payload interface{}) {
	if b == nil {
		return
	}
	if err := b.Publish(ctx, chatID, event, payload); err != nil {
		log.Printf("broadcast %s to chat %d failed: %s", event, chatID, err)
	}
}
