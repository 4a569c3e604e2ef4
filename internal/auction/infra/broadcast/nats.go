package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/application"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const (
	StreamName    = "AUCTION_EVENTS"
	SubjectPrefix = "auction.events."

	publishTimeout = 5 * time.Second
)

type streamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// StreamPublisher appends every auction event to a JetStream stream so archival
// and analytics consumers can replay them. Delivery to websocket clients does not
// depend on it.
type StreamPublisher struct {
	conn  *nats.Conn
	js    streamPublisher
	queue *queue
}

// NewStreamPublisher connects to NATS and makes sure the stream exists
func NewStreamPublisher(ctx context.Context, url string) (*StreamPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("sneakerbid"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Auction lifecycle events",
		Subjects:    []string{SubjectPrefix + "*"},
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Duplicates:  2 * time.Minute,
		Replicas:    1,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update stream: %w", err)
	}
	log.Info("JetStream stream ready", zap.String("stream", StreamName))

	p := newStreamPublisher(js)
	p.conn = conn
	return p, nil
}

func newStreamPublisher(js streamPublisher) *StreamPublisher {
	p := &StreamPublisher{js: js}
	p.queue = newQueue("jetstream", p.send)
	return p
}

func (p *StreamPublisher) Start(ctx context.Context) {
	p.queue.start(ctx)
}

// Publish implements application.EventPublisher
func (p *StreamPublisher) Publish(_ context.Context, event application.AuctionEvent) {
	p.queue.enqueue(event)
}

func (p *StreamPublisher) send(ctx context.Context, event application.AuctionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	// JetStream waits for the ack, the msg id lets the server drop redeliveries
	ack, err := p.js.Publish(ctx, SubjectFor(event.AuctionID.String()), data, jetstream.WithMsgID(MsgID(event)))
	if err != nil {
		return fmt.Errorf("failed to publish to JetStream: %w", err)
	}
	log.Debug("Published auction event",
		zap.String("auctionID", event.AuctionID.String()),
		zap.String("type", string(event.Type)),
		zap.Uint64("seq", ack.Sequence),
	)
	return nil
}

func (p *StreamPublisher) Close() {
	p.queue.stop()
	if p.conn != nil {
		p.conn.Close()
	}
}

func SubjectFor(auctionID string) string {
	return SubjectPrefix + auctionID
}

// MsgID is unique per transition: one commit produces each event type at most once
func MsgID(event application.AuctionEvent) string {
	version := int64(0)
	if event.Auction != nil {
		version = event.Auction.Version
	}
	return fmt.Sprintf("%s-%d-%s", event.AuctionID, version, event.Type)
}
