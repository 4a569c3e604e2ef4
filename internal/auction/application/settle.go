package application

import (
	"context"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentDTO is the input of the payment confirmation, PayerID is the bidder the
// external payment flow charged
type PaymentDTO struct {
	AuctionID uuid.UUID
	PayerID   uuid.UUID
}

// SettleUseCase drives the winner records after close: payment, decline and expiry
type SettleUseCase struct {
	committer     *committer
	paymentWindow time.Duration
}

func (uc *SettleUseCase) ConfirmPayment(ctx context.Context, cmd PaymentDTO) (*AuctionDTO, error) {
	log.Info("Executing ConfirmPayment",
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("payerID", cmd.PayerID.String()),
	)
	a, _, err := uc.committer.apply(ctx, cmd.AuctionID, "confirm payment",
		func(a *domain.Auction, now time.Time) ([]domain.EventType, error) {
			return a.ConfirmPayment(cmd.PayerID, now)
		})
	if err != nil {
		return nil, err
	}
	return NewAuctionDTO(a), nil
}

// DeclineWin lets the pending winner give up, the next eligible bidder gets the offer
func (uc *SettleUseCase) DeclineWin(ctx context.Context, auctionID, bidderID uuid.UUID) (*AuctionDTO, error) {
	log.Info("Executing DeclineWin",
		zap.String("auctionID", auctionID.String()),
		zap.String("bidderID", bidderID.String()),
	)
	a, _, err := uc.committer.apply(ctx, auctionID, "decline win",
		func(a *domain.Auction, now time.Time) ([]domain.EventType, error) {
			return a.DeclineWin(bidderID, now, uc.paymentWindow)
		})
	if err != nil {
		return nil, err
	}
	return NewAuctionDTO(a), nil
}

// ExpirePayment is called by the payment timer of winner seq. It does nothing if the
// window has not elapsed or the offer is no longer pending.
func (uc *SettleUseCase) ExpirePayment(ctx context.Context, auctionID uuid.UUID, seq int) (*domain.Auction, error) {
	a, _, err := uc.committer.apply(ctx, auctionID, "expire payment",
		func(a *domain.Auction, now time.Time) ([]domain.EventType, error) {
			return a.ExpireWinner(seq, now, uc.paymentWindow), nil
		})
	return a, err
}
