package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cristianortiz/sneakerbid/internal/auction/application"
	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	mu       sync.Mutex
	channels []string
	payloads []string
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, string(message.([]byte)))
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

type fakeStream struct {
	mu       sync.Mutex
	subjects []string
	acks     uint64
}

func (f *fakeStream) Publish(_ context.Context, subject string, _ []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	f.acks++
	return &jetstream.PubAck{Stream: StreamName, Sequence: f.acks}, nil
}

type recordingRoom struct {
	rooms []string
	data  []string
}

func (r *recordingRoom) Broadcast(roomID string, data []byte) bool {
	r.rooms = append(r.rooms, roomID)
	r.data = append(r.data, string(data))
	return true
}

func event(id uuid.UUID, version int64, t domain.EventType) application.AuctionEvent {
	return application.AuctionEvent{
		Type:      t,
		AuctionID: id,
		Auction:   &application.AuctionDTO{ID: id, Version: version},
	}
}

func TestRoomFromChannel(t *testing.T) {
	id := uuid.NewString()
	room, ok := RoomFromChannel(ChannelFor(id))
	check.True(t, ok)
	check.Equal(t, id, room)

	_, ok = RoomFromChannel("bid_events:x")
	check.False(t, ok)
	_, ok = RoomFromChannel(ChannelPrefix)
	check.False(t, ok)
}

func TestRedisRelay_PublishesInOrder(t *testing.T) {
	fake := &fakeRedis{}
	relay := newRedisRelay(fake)
	relay.Start(context.Background())

	id := uuid.New()
	relay.Publish(context.Background(), event(id, 2, domain.EventBidAccepted))
	relay.Publish(context.Background(), event(id, 3, domain.EventAuctionClosed))
	relay.Publish(context.Background(), event(id, 3, domain.EventWinnerAssigned))
	assert.NoError(t, relay.Close())

	check.Equal(t, 3, len(fake.payloads))
	for _, ch := range fake.channels {
		check.Equal(t, "auction_events:"+id.String(), ch)
	}
	var types []string
	for _, p := range fake.payloads {
		var msg map[string]any
		assert.NoError(t, json.Unmarshal([]byte(p), &msg))
		types = append(types, msg["type"].(string))
	}
	check.Equal(t, []string{"bid_accepted", "auction_closed", "winner_assigned"}, types)
}

func TestForward_FeedsRoom(t *testing.T) {
	room := &recordingRoom{}
	id := uuid.NewString()
	forward(room, &redis.Message{Channel: ChannelFor(id), Payload: `{"type":"bid_accepted"}`})
	forward(room, &redis.Message{Channel: "other", Payload: `{}`})

	check.Equal(t, []string{id}, room.rooms)
	check.Equal(t, []string{`{"type":"bid_accepted"}`}, room.data)
}

func TestStreamPublisher(t *testing.T) {
	fake := &fakeStream{}
	p := newStreamPublisher(fake)
	p.Start(context.Background())

	id := uuid.New()
	p.Publish(context.Background(), event(id, 4, domain.EventWinnerPaid))
	p.Close()

	check.Equal(t, []string{"auction.events." + id.String()}, fake.subjects)
	check.Equal(t, id.String()+"-4-winner_paid", MsgID(event(id, 4, domain.EventWinnerPaid)))
}
