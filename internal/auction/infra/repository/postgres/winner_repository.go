package postgres

import (
	"context"
	"fmt"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WinnerRepository persists the settlement history (auction_winners)
type WinnerRepository struct{}

func NewWinnerRepository() *WinnerRepository {
	return &WinnerRepository{}
}

// SaveAll upserts every winner record, only status and resolved_at ever change
func (r *WinnerRepository) SaveAll(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, winners []*domain.Winner) error {
	if len(winners) == 0 {
		return nil
	}
	query := `
        INSERT INTO auction_winners (auction_id, seq, bidder_id, amount, status, assigned_at, pay_by, resolved_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (auction_id, seq) DO UPDATE
        SET
            status = EXCLUDED.status,
            resolved_at = EXCLUDED.resolved_at
    `
	batch := &pgx.Batch{}
	for _, w := range winners {
		batch.Queue(query, auctionID, w.Seq, w.BidderID, w.Amount, w.Status, w.AssignedAt, w.PayBy, w.ResolvedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("winner repository: upsert winners: %w", err)
	}
	return nil
}

func (r *WinnerRepository) GetByAuctionID(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) ([]*domain.Winner, error) {
	query := `
        SELECT seq, bidder_id, amount, status, assigned_at, pay_by, resolved_at
        FROM auction_winners
        WHERE auction_id = $1
        ORDER BY seq ASC
    `
	rows, err := tx.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("winner repository: query winners: %w", err)
	}
	defer rows.Close()

	winners := []*domain.Winner{}
	for rows.Next() {
		w := &domain.Winner{}
		if err := rows.Scan(&w.Seq, &w.BidderID, &w.Amount, &w.Status, &w.AssignedAt, &w.PayBy, &w.ResolvedAt); err != nil {
			return nil, fmt.Errorf("winner repository: scan winner: %w", err)
		}
		winners = append(winners, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("winner repository: read winners: %w", err)
	}
	return winners, nil
}
