package application

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlaceBidDTO is DTO input for PlaceBid useCase
type PlaceBidDTO struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
}

// PlaceBidUseCase admits a bid against the latest committed snapshot. Concurrent
// bids on one auction are resolved by the version check, the loser re-decides on
// the winner's result and usually ends with ErrBidTooLow.
type PlaceBidUseCase struct {
	committer     *committer
	paymentWindow time.Duration
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*AuctionDTO, error) {
	log.Info("Executing PlaceBidUseCase",
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.String("amount", cmd.Amount.String()),
	)
	// input checks that need no snapshot
	if !cmd.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.CheckMoney(cmd.Amount); err != nil {
		return nil, err
	}
	if cmd.BidderID == uuid.Nil {
		return nil, domain.ErrMissingBidder
	}

	var accepted *domain.Bid
	a, _, err := uc.committer.apply(ctx, cmd.AuctionID, "place bid use case",
		func(a *domain.Auction, now time.Time) ([]domain.EventType, error) {
			bid, events, err := a.PlaceBid(cmd.BidderID, cmd.Amount, now, uc.paymentWindow)
			accepted = bid
			return events, err
		})
	if err != nil {
		fields := []zap.Field{
			zap.String("auctionID", cmd.AuctionID.String()),
			zap.String("bidderID", cmd.BidderID.String()),
			zap.Error(err),
		}
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrState) ||
			errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			log.Warn("PlaceBidUseCase: bid rejected", fields...)
		} else {
			log.Error("PlaceBidUseCase: bid failed", fields...)
		}
		return nil, err
	}

	log.Info("Bid accepted",
		zap.String("auctionID", a.ID.String()),
		zap.String("bidID", accepted.ID.String()),
		zap.Int("seq", accepted.Seq),
		zap.String("amount", accepted.Amount.String()),
	)
	return NewAuctionDTO(a), nil
}
