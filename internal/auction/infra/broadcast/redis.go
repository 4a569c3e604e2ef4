package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cristianortiz/sneakerbid/internal/auction/application"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChannelPrefix is followed by the auction id: auction_events:<id>
const ChannelPrefix = "auction_events:"

// Room is the local fan-out the relay feeds, the websocket hub in production
type Room interface {
	Broadcast(roomID string, data []byte) bool
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisRelay publishes every event to Redis and replays what any instance published
// into the local rooms. With the relay in place the hub is fed only from Redis, so
// all instances see the same order.
type RedisRelay struct {
	client redisPublisher
	rdb    *redis.Client
	queue  *queue
}

// NewRedisRelay connects and pings Redis
func NewRedisRelay(ctx context.Context, addr, password string, db int) (*RedisRelay, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	r := newRedisRelay(rdb)
	r.rdb = rdb
	return r, nil
}

func newRedisRelay(client redisPublisher) *RedisRelay {
	r := &RedisRelay{client: client}
	r.queue = newQueue("redis", r.send)
	return r
}

// Start runs the publishing worker
func (r *RedisRelay) Start(ctx context.Context) {
	r.queue.start(ctx)
}

// Publish implements application.EventPublisher
func (r *RedisRelay) Publish(_ context.Context, event application.AuctionEvent) {
	r.queue.enqueue(event)
}

func (r *RedisRelay) send(ctx context.Context, event application.AuctionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.client.Publish(ctx, ChannelFor(event.AuctionID.String()), data).Err()
}

// Subscribe pattern-subscribes to every auction channel and forwards payloads to
// room until ctx is done. Run it in a goroutine.
func (r *RedisRelay) Subscribe(ctx context.Context, room Room) error {
	if r.rdb == nil {
		return fmt.Errorf("redis relay: not connected")
	}
	pubsub := r.rdb.PSubscribe(ctx, ChannelPrefix+"*")
	defer pubsub.Close()
	// wait for the subscription to be confirmed before reporting ready
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis relay: subscribe: %w", err)
	}
	log.Info("Subscribed to auction events", zap.String("pattern", ChannelPrefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			forward(room, msg)
		}
	}
}

func forward(room Room, msg *redis.Message) {
	roomID, ok := RoomFromChannel(msg.Channel)
	if !ok {
		log.Warn("Ignoring message on unexpected channel", zap.String("channel", msg.Channel))
		return
	}
	room.Broadcast(roomID, []byte(msg.Payload))
}

// Close flushes pending events and closes the connection
func (r *RedisRelay) Close() error {
	r.queue.stop()
	if r.rdb != nil {
		return r.rdb.Close()
	}
	return nil
}

func ChannelFor(auctionID string) string {
	return ChannelPrefix + auctionID
}

// RoomFromChannel extracts the auction id, "auction_events:abc" -> "abc"
func RoomFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, ChannelPrefix)
	return id, ok && id != ""
}
