// Package memory is an in-process auction ledger: one versioned record per auction,
// each guarded independently. Used by tests and by STORE=memory.
package memory

import (
	"context"
	"sync"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
)

type record struct {
	mu      sync.RWMutex
	auction *domain.Auction
}

// AuctionRepository implements domain.AuctionRepository in memory
type AuctionRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*record
}

// NewAuctionRepository creates an empty ledger
func NewAuctionRepository() *AuctionRepository {
	return &AuctionRepository{records: make(map[uuid.UUID]*record)}
}

func (r *AuctionRepository) lookup(id uuid.UUID) (*record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	return rec, ok
}

func (r *AuctionRepository) Create(_ context.Context, auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[auction.ID]; exists {
		return domain.ErrVersionConflict
	}
	auction.MarkCommitted()
	r.records[auction.ID] = &record{auction: auction.Clone()}
	return nil
}

func (r *AuctionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Auction, error) {
	rec, ok := r.lookup(id)
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	rec.mu.RLock()
	defer rec.mu.RUnlock()
	if rec.auction == nil {
		return nil, domain.ErrAuctionNotFound
	}
	return rec.auction.Clone(), nil
}

// Commit stores the auction only if the stored version still equals expectedVersion
func (r *AuctionRepository) Commit(_ context.Context, auction *domain.Auction, expectedVersion int64) error {
	rec, ok := r.lookup(auction.ID)
	if !ok {
		return domain.ErrAuctionNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.auction == nil {
		return domain.ErrAuctionNotFound
	}
	if rec.auction.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	auction.Version = expectedVersion + 1
	auction.MarkCommitted()
	rec.auction = auction.Clone()
	return nil
}

func (r *AuctionRepository) ListUnsettled(_ context.Context) ([]*domain.Auction, error) {
	r.mu.RLock()
	recs := make([]*record, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	var out []*domain.Auction
	for _, rec := range recs {
		rec.mu.RLock()
		a := rec.auction
		if a != nil && (a.Status == domain.StatusActive || a.Status == domain.StatusAwaitingPayment) {
			out = append(out, a.Clone())
		}
		rec.mu.RUnlock()
	}
	return out, nil
}

func (r *AuctionRepository) Delete(_ context.Context, id uuid.UUID, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.auction.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	rec.auction = nil
	delete(r.records, id)
	return nil
}
