package application

import (
	"context"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionEvent is what subscribers of an auction room receive, it always carries
// the full snapshot so a client that missed events can just take the latest one
type AuctionEvent struct {
	Type       domain.EventType `json:"type"`
	AuctionID  uuid.UUID        `json:"auction_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Auction    *AuctionDTO      `json:"auction"`
}

// EventPublisher fans events out, implementations must not block the caller
type EventPublisher interface {
	Publish(ctx context.Context, event AuctionEvent)
}

// MultiPublisher publishes to every wrapped publisher in order
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event AuctionEvent) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AuctionEvent) {}
