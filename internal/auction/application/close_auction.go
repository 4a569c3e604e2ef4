package application

import (
	"context"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CloseAuctionUseCase ends the bidding phase, either on an admin request or when the
// deadline timer fires
type CloseAuctionUseCase struct {
	committer     *committer
	paymentWindow time.Duration
}

// Execute is the administrative close, it works before the deadline
func (uc *CloseAuctionUseCase) Execute(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error) {
	log.Info("Executing CloseAuctionUseCase", zap.String("auctionID", auctionID.String()))
	a, _, err := uc.committer.apply(ctx, auctionID, "close auction use case",
		func(a *domain.Auction, now time.Time) ([]domain.EventType, error) {
			return a.CloseEarly(now, uc.paymentWindow)
		})
	if err != nil {
		return nil, err
	}
	return NewAuctionDTO(a), nil
}

// CloseDue closes the auction if its deadline has passed. Repeated or early calls are
// no-ops, so a duplicated timer fire never closes twice.
func (uc *CloseAuctionUseCase) CloseDue(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, error) {
	a, _, err := uc.committer.apply(ctx, auctionID, "close due auction",
		func(a *domain.Auction, now time.Time) ([]domain.EventType, error) {
			return a.CloseIfDue(now, uc.paymentWindow), nil
		})
	return a, err
}
