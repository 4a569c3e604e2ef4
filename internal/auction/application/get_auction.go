package application

import (
	"context"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
)

// GetAuctionUseCase returns the committed state of one auction
type GetAuctionUseCase struct {
	repo domain.AuctionRepository
}

func (uc *GetAuctionUseCase) Execute(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error) {
	a, err := uc.repo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return NewAuctionDTO(a), nil
}
