// Package notifications provides real-time notification delivery over Redis
// pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes duel lifecycle events and per-user notifications into
// Redis channels. A nil Redis client disables delivery without erroring.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// DuelEvent publishes a lifecycle event to the post's duel channel.
// Delivery is best-effort: failures are logged, never propagated, because
// lifecycle transitions must not fail on a flaky pub/sub. Safe on a nil
// receiver: a *Notifier may travel through interface fields before the
// redis-less case is detected.
func (n *Notifier) DuelEvent(ctx context.Context, postID, event string, fields map[string]interface{}) {
	if n == nil || n.rdb == nil {
		return
	}

	payload := map[string]interface{}{
		"event":   event,
		"post_id": postID,
	}
	for k, v := range fields {
		payload[k] = v
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("duel event marshal failed for post %s: %v", postID, err)
		return
	}
	if err := n.rdb.Publish(ctx, DuelChannel(postID), raw).Err(); err != nil {
		log.Printf("duel event publish failed for post %s: %v", postID, err)
	}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, username, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(username), payload).Err()
}

// StartDuelSubscriber subscribes to all duel and user notification channels
// and calls onMessage for each incoming message.
func (n *Notifier) StartDuelSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "duel:post:*", "notifications:user:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in DuelSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// DuelChannel derives the Redis channel name for a post's duel events.
func DuelChannel(postID string) string {
	return "duel:post:" + postID
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(username string) string {
	return "notifications:user:" + username
}
