package domain

import (
	"context"

	"github.com/google/uuid"
)

// AuctionRepository is the auction ledger. Writers always go through Commit,
// which must fail with ErrVersionConflict when the stored version is not expectedVersion.
type AuctionRepository interface {
	Create(ctx context.Context, auction *Auction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	Commit(ctx context.Context, auction *Auction, expectedVersion int64) error
	// ListUnsettled returns auctions that are still active or waiting for a payment.
	ListUnsettled(ctx context.Context) ([]*Auction, error)
	Delete(ctx context.Context, id uuid.UUID, expectedVersion int64) error
}
