// Package notifications delivers follow events to connected websocket clients through Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"socialcore/internal/middleware"
	"socialcore/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	profileChannelPrefix = "notifications:profile:"
	profileChannelGlob   = profileChannelPrefix + "*"
)

// ProfileChannel derives the Redis channel name for a profile.
func ProfileChannel(name string) string {
	return profileChannelPrefix + name
}

// ProfileFromChannel extracts the profile name from a channel produced by ProfileChannel.
func ProfileFromChannel(channel string) (string, bool) {
	name, ok := strings.CutPrefix(channel, profileChannelPrefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Notifier publishes follow events into Redis channels. Without Redis it
// hands events to a local delivery function, if one is set.
type Notifier struct {
	rdb   *redis.Client
	local func(name, payload string)
}

// NewNotifier creates a new Notifier instance using the provided Redis client, which may be nil.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishFollowEvent sends ev to the target profile's channel.
func (n *Notifier) PublishFollowEvent(ctx context.Context, ev models.FollowEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal follow event: %w", err)
	}
	return n.PublishProfile(ctx, ev.Target, string(payload))
}

// PublishProfile sends a raw payload to a profile's channel.
func (n *Notifier) PublishProfile(ctx context.Context, name, payload string) error {
	if n.rdb == nil {
		if n.local != nil {
			n.local(name, payload)
		}
		return nil
	}
	return n.rdb.Publish(ctx, ProfileChannel(name), payload).Err()
}

// StartPatternSubscriber subscribes to every profile channel and calls onMessage
// for each incoming message until ctx is done.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, profileChannelGlob)
	// wait for the subscription to be confirmed so no early publish is lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", profileChannelGlob, err)
	}
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
							middleware.Logger.Error("panic in notification subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
