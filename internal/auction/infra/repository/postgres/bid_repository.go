package postgres

import (
	"context"
	"fmt"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BidRepository reads and appends rows of the auction_bids table, always inside
// a transaction owned by AuctionRepository
type BidRepository struct{}

// NewBidRepository creates new instance of BidRepository.
func NewBidRepository() *BidRepository {
	return &BidRepository{}
}

// SaveAll only inserts new bids, bids are immutable so there is no update path
func (r *BidRepository) SaveAll(ctx context.Context, tx pgx.Tx, bids []*domain.Bid) error {
	if len(bids) == 0 {
		return nil
	}
	query := `
        INSERT INTO auction_bids (id, auction_id, seq, bidder_id, amount, placed_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	batch := &pgx.Batch{}
	for _, bid := range bids {
		batch.Queue(query, bid.ID, bid.AuctionID, bid.Seq, bid.BidderID, bid.Amount, bid.PlacedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("bid repository: insert bids: %w", err)
	}
	return nil
}

// GetByAuctionID returns the bid history ordered by acceptance
func (r *BidRepository) GetByAuctionID(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, seq, bidder_id, amount, placed_at
        FROM auction_bids
        WHERE auction_id = $1
        ORDER BY seq ASC
    `
	rows, err := tx.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("bid repository: query bids: %w", err)
	}
	defer rows.Close()

	bids := []*domain.Bid{}
	for rows.Next() {
		bid := &domain.Bid{}
		if err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.Seq, &bid.BidderID, &bid.Amount, &bid.PlacedAt); err != nil {
			return nil, fmt.Errorf("bid repository: scan bid: %w", err)
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bid repository: read bids: %w", err)
	}
	return bids, nil
}
