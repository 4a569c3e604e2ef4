package application

import (
	"context"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionService defines application interface layer of auction module
// exposes uses cases to external layer, aka infra
type AuctionService interface {
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*AuctionDTO, error)
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error)
	// PlaceBid admits a bid and returns the state right after it was committed
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*AuctionDTO, error)
	CloseAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error)
	ConfirmPayment(ctx context.Context, cmd PaymentDTO) (*AuctionDTO, error)
	DeclineWin(ctx context.Context, auctionID, bidderID uuid.UUID) (*AuctionDTO, error)
	DeleteAuction(ctx context.Context, auctionID uuid.UUID) error
	// Start rebuilds the deadline and payment timers from the ledger
	Start(ctx context.Context) error
	Stop()
}

// Options tunes the use cases, zero values fall back to the defaults below
type Options struct {
	PaymentWindow       time.Duration
	MaxAttempts         int
	DefaultMinIncrement decimal.Decimal
	RetryBackoff        time.Duration
	Now                 func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PaymentWindow <= 0 {
		o.PaymentWindow = 24 * time.Hour
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if !o.DefaultMinIncrement.IsPositive() {
		o.DefaultMinIncrement = decimal.NewFromInt(100)
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// concret implementation of AuctionService (struct)
type auctionService struct {
	repo      domain.AuctionRepository
	scheduler *Scheduler

	createUC *CreateAuctionUseCase
	getUC    *GetAuctionUseCase
	bidUC    *PlaceBidUseCase
	closeUC  *CloseAuctionUseCase
	settleUC *SettleUseCase
	deleteUC *DeleteAuctionUseCase
}

func NewAuctionService(repo domain.AuctionRepository, catalog ItemCatalog, publisher EventPublisher, opts Options) AuctionService {
	return newAuctionService(repo, catalog, publisher, opts)
}

func newAuctionService(repo domain.AuctionRepository, catalog ItemCatalog, publisher EventPublisher, opts Options) *auctionService {
	opts = opts.withDefaults()
	if publisher == nil {
		publisher = NopPublisher{}
	}
	c := &committer{
		repo:        repo,
		publisher:   publisher,
		lanes:       newLanes(),
		now:         opts.Now,
		maxAttempts: opts.MaxAttempts,
	}
	s := &auctionService{
		repo:     repo,
		getUC:    &GetAuctionUseCase{repo: repo},
		bidUC:    &PlaceBidUseCase{committer: c, paymentWindow: opts.PaymentWindow},
		closeUC:  &CloseAuctionUseCase{committer: c, paymentWindow: opts.PaymentWindow},
		settleUC: &SettleUseCase{committer: c, paymentWindow: opts.PaymentWindow},
	}
	s.scheduler = newScheduler(s, opts.Now, opts.RetryBackoff)
	c.afterCommit = s.scheduler.Sync
	s.createUC = &CreateAuctionUseCase{
		repo:                repo,
		catalog:             catalog,
		now:                 opts.Now,
		defaultMinIncrement: opts.DefaultMinIncrement,
		created:             s.scheduler.Sync,
	}
	s.deleteUC = &DeleteAuctionUseCase{committer: c, deleted: s.scheduler.Forget}
	return s
}

func (as *auctionService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*AuctionDTO, error) {
	return as.createUC.Execute(ctx, cmd)
}

func (as *auctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error) {
	return as.getUC.Execute(ctx, auctionID)
}

// PlaceBid implements AuctionService.
func (as *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*AuctionDTO, error) {
	return as.bidUC.Execute(ctx, cmd)
}

func (as *auctionService) CloseAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error) {
	return as.closeUC.Execute(ctx, auctionID)
}

func (as *auctionService) ConfirmPayment(ctx context.Context, cmd PaymentDTO) (*AuctionDTO, error) {
	return as.settleUC.ConfirmPayment(ctx, cmd)
}

func (as *auctionService) DeclineWin(ctx context.Context, auctionID, bidderID uuid.UUID) (*AuctionDTO, error) {
	return as.settleUC.DeclineWin(ctx, auctionID, bidderID)
}

func (as *auctionService) DeleteAuction(ctx context.Context, auctionID uuid.UUID) error {
	return as.deleteUC.Execute(ctx, auctionID)
}

func (as *auctionService) Start(ctx context.Context) error {
	return as.scheduler.Recover(ctx, as.repo)
}

func (as *auctionService) Stop() {
	as.scheduler.Stop()
}

// CloseDue and ExpirePayment are the scheduler callbacks
func (as *auctionService) CloseDue(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, error) {
	return as.closeUC.CloseDue(ctx, auctionID)
}

func (as *auctionService) ExpirePayment(ctx context.Context, auctionID uuid.UUID, seq int) (*domain.Auction, error) {
	return as.settleUC.ExpirePayment(ctx, auctionID, seq)
}
