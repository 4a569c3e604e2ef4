package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid represents individual accepted bid in an auction,
// is also an entity inside Auction agreggate, immutable once recorded
type Bid struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	Seq       int // 1-based acceptance order inside the auction
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	PlacedAt  time.Time
}

// NewBid creates a new Bid instance
func NewBid(id, auctionID uuid.UUID, seq int, bidderID uuid.UUID, amount decimal.Decimal, placedAt time.Time) *Bid {
	return &Bid{
		ID:        id,
		AuctionID: auctionID,
		Seq:       seq,
		BidderID:  bidderID,
		Amount:    amount,
		PlacedAt:  placedAt,
	}
}
