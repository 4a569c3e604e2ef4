package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

var now = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newAuction(t *testing.T) *domain.Auction {
	t.Helper()
	a, err := domain.NewAuction(uuid.New(), domain.NewAuctionParams{
		ItemID:        uuid.New(),
		StartingPrice: decimal.NewFromInt(1000),
		MinIncrement:  decimal.NewFromInt(100),
		Deadline:      now.Add(time.Hour),
	}, now)
	assert.NoError(t, err)
	return a
}

func TestRepository_CreateAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewAuctionRepository()
	a := newAuction(t)
	assert.NoError(t, repo.Create(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	assert.NoError(t, err)
	check.Equal(t, a.Deadline, got.Deadline)
	check.Equal(t, "1000", got.StartingPrice.String())
	check.Equal(t, 0, len(got.Bids))
	check.Equal(t, int64(1), got.Version)

	_, err = repo.GetByID(ctx, uuid.New())
	check.True(t, errors.Is(err, domain.ErrAuctionNotFound))
}

func TestRepository_CommitChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewAuctionRepository()
	a := newAuction(t)
	assert.NoError(t, repo.Create(ctx, a))

	first, _ := repo.GetByID(ctx, a.ID)
	second, _ := repo.GetByID(ctx, a.ID)

	_, _, err := first.PlaceBid(uuid.New(), decimal.NewFromInt(1100), now, time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, repo.Commit(ctx, first, 1))
	check.Equal(t, int64(2), first.Version)

	_, _, err = second.PlaceBid(uuid.New(), decimal.NewFromInt(1100), now, time.Minute)
	assert.NoError(t, err)
	err = repo.Commit(ctx, second, 1)
	check.True(t, errors.Is(err, domain.ErrVersionConflict))

	stored, _ := repo.GetByID(ctx, a.ID)
	check.Equal(t, 1, len(stored.Bids))
	check.Equal(t, first.Bids[0].BidderID, stored.Bids[0].BidderID)
}

func TestRepository_ConcurrentCommitsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo := NewAuctionRepository()
	a := newAuction(t)
	assert.NoError(t, repo.Create(ctx, a))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		snap, _ := repo.GetByID(ctx, a.ID)
		wg.Add(1)
		go func(snap *domain.Auction) {
			defer wg.Done()
			snap.Active = false
			if repo.Commit(ctx, snap, 1) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(snap)
	}
	wg.Wait()
	check.Equal(t, 1, wins)
}

func TestRepository_ListUnsettledAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewAuctionRepository()
	open := newAuction(t)
	closed := newAuction(t)
	assert.NoError(t, repo.Create(ctx, open))
	assert.NoError(t, repo.Create(ctx, closed))

	closed.CloseIfDue(closed.Deadline, time.Minute) // no bids, so unsold
	assert.NoError(t, repo.Commit(ctx, closed, 1))

	list, err := repo.ListUnsettled(ctx)
	assert.NoError(t, err)
	check.Equal(t, 1, len(list))
	check.Equal(t, open.ID, list[0].ID)

	check.True(t, errors.Is(repo.Delete(ctx, open.ID, 7), domain.ErrVersionConflict))
	assert.NoError(t, repo.Delete(ctx, open.ID, 1))
	_, err = repo.GetByID(ctx, open.ID)
	check.True(t, errors.Is(err, domain.ErrAuctionNotFound))
}
