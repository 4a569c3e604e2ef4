package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeleteAuctionUseCase removes an auction that is not waiting for a payment
type DeleteAuctionUseCase struct {
	committer *committer
	deleted   func(id uuid.UUID)
}

func (uc *DeleteAuctionUseCase) Execute(ctx context.Context, auctionID uuid.UUID) error {
	log.Info("Executing DeleteAuctionUseCase", zap.String("auctionID", auctionID.String()))
	c := uc.committer

	unlock := c.lanes.lock(auctionID)
	defer unlock()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		a, err := c.repo.GetByID(ctx, auctionID)
		if err != nil {
			return err
		}
		if err := a.CheckDeletable(); err != nil {
			return err
		}
		err = c.repo.Delete(ctx, auctionID, a.Version)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("delete auction use case: %w", err)
		}

		if uc.deleted != nil {
			uc.deleted(auctionID)
		}
		a.Version++
		c.publisher.Publish(ctx, AuctionEvent{
			Type:       domain.EventAuctionDeleted,
			AuctionID:  auctionID,
			OccurredAt: c.now(),
			Auction:    NewAuctionDTO(a),
		})
		log.Info("Auction deleted", zap.String("auctionID", auctionID.String()))
		return nil
	}
	return domain.ErrConcurrencyConflict
}
