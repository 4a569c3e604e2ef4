package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/cristianortiz/sneakerbid/internal/auction/infra/repository/memory"
	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []AuctionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e AuctionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) count(t domain.EventType) int {
	n := 0
	for _, et := range p.types() {
		if et == t {
			n++
		}
	}
	return n
}

type stubCatalog struct {
	price decimal.Decimal
	err   error
}

func (c stubCatalog) CheckEligible(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return c.price, c.err
}

type fixture struct {
	repo  *memory.AuctionRepository
	clock *fakeClock
	pub   *recordingPublisher
	svc   *auctionService
}

const testWindow = 10 * time.Minute

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:  memory.NewAuctionRepository(),
		clock: &fakeClock{now: t0},
		pub:   &recordingPublisher{},
	}
	f.svc = newAuctionService(f.repo, stubCatalog{price: dec(6000)}, f.pub, Options{
		PaymentWindow: testWindow,
		Now:           f.clock.Now,
	})
	return f
}

// createAuction opens an auction starting at 5000 that ends one hour after t0
func (f *fixture) createAuction(t *testing.T, instantBuy int64) *AuctionDTO {
	t.Helper()
	cmd := CreateAuctionDTO{
		ItemID:        uuid.New(),
		CreatedBy:     uuid.New(),
		StartingPrice: decimal.NewNullDecimal(dec(5000)),
		Deadline:      t0.Add(time.Hour),
	}
	if instantBuy > 0 {
		cmd.InstantBuyPrice = decimal.NewNullDecimal(dec(instantBuy))
	}
	a, err := f.svc.CreateAuction(context.Background(), cmd)
	assert.NoError(t, err)
	return a
}

func (f *fixture) bid(t *testing.T, auctionID, bidder uuid.UUID, amount int64) {
	t.Helper()
	_, err := f.svc.PlaceBid(context.Background(), PlaceBidDTO{AuctionID: auctionID, BidderID: bidder, Amount: dec(amount)})
	assert.NoError(t, err)
}

// eventually polls cond until it holds or the timeout elapses
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
