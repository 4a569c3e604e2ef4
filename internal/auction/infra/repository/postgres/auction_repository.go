package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auctionColumns = `id, item_id, created_by, starting_price, current_highest_bid, instant_buy_price,
        min_increment, deadline, active, status, close_reason, closed_at, version, created_at, updated_at`

// AuctionRepository implements domain.AuctionRepository interface
type AuctionRepository struct {
	pool    *pgxpool.Pool
	bids    *BidRepository
	winners *WinnerRepository
}

// NewAuctionRepository creates a new instance of AuctionRepository
func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{
		pool:    pool,
		bids:    NewBidRepository(),
		winners: NewWinnerRepository(),
	}
}

// Create inserts a brand new auction row, bids and winners are always empty at this point
func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	query := `
        INSERT INTO auctions (` + auctionColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.ItemID,
		a.CreatedBy,
		a.StartingPrice,
		a.CurrentHighestBid,
		a.InstantBuyPrice,
		a.MinIncrement,
		a.Deadline,
		a.Active,
		a.Status,
		a.CloseReason,
		a.ClosedAt,
		a.Version,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("auction repository: create %s: %w", a.ID, err)
	}
	a.MarkCommitted()
	return nil
}

// GetByID loads the auction with its bid history and winner records from one snapshot
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("auction repository: begin read: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := scanAuction(tx.QueryRow(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction repository: get %s: %w", id, err)
	}

	if a.Bids, err = r.bids.GetByAuctionID(ctx, tx, id); err != nil {
		return nil, err
	}
	if a.Winners, err = r.winners.GetByAuctionID(ctx, tx, id); err != nil {
		return nil, err
	}
	return a, nil
}

// Commit writes the mutable auction fields guarded by the version column, appends the
// new bids and upserts winner records, all in one transaction.
func (r *AuctionRepository) Commit(ctx context.Context, a *domain.Auction, expectedVersion int64) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("auction repository: begin commit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
        UPDATE auctions
        SET
            current_highest_bid = $3,
            active = $4,
            status = $5,
            close_reason = $6,
            closed_at = $7,
            version = version + 1,
            updated_at = $8
        WHERE id = $1 AND version = $2
    `
	tag, err := tx.Exec(ctx, query,
		a.ID,
		expectedVersion,
		a.CurrentHighestBid,
		a.Active,
		a.Status,
		a.CloseReason,
		a.ClosedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("auction repository: update %s: %w", a.ID, err)
	}
	// either somebody committed first or the row is gone, a re-read tells which
	if tag.RowsAffected() == 0 {
		err = domain.ErrVersionConflict
		return err
	}

	if err = r.bids.SaveAll(ctx, tx, a.UncommittedBids()); err != nil {
		return err
	}
	if err = r.winners.SaveAll(ctx, tx, a.ID, a.Winners); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("auction repository: commit %s: %w", a.ID, err)
	}
	a.Version = expectedVersion + 1
	a.MarkCommitted()
	return nil
}

// ListUnsettled returns every auction still active or waiting for a payment, used on start-up recovery
func (r *AuctionRepository) ListUnsettled(ctx context.Context) ([]*domain.Auction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM auctions WHERE status = $1 OR status = $2`,
		domain.StatusActive, domain.StatusAwaitingPayment)
	if err != nil {
		return nil, fmt.Errorf("auction repository: list unsettled: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("auction repository: list unsettled: %w", err)
	}

	auctions := make([]*domain.Auction, 0, len(ids))
	for _, id := range ids {
		a, err := r.GetByID(ctx, id)
		if errors.Is(err, domain.ErrAuctionNotFound) {
			continue // deleted in between
		}
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	return auctions, nil
}

// Delete removes the auction (bids and winners cascade) if nobody changed it meanwhile
func (r *AuctionRepository) Delete(ctx context.Context, id uuid.UUID, expectedVersion int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auctions WHERE id = $1 AND version = $2`, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("auction repository: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	err := row.Scan(
		&a.ID,
		&a.ItemID,
		&a.CreatedBy,
		&a.StartingPrice,
		&a.CurrentHighestBid,
		&a.InstantBuyPrice,
		&a.MinIncrement,
		&a.Deadline,
		&a.Active,
		&a.Status,
		&a.CloseReason,
		&a.ClosedAt, // pointer to handle NULL
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}
