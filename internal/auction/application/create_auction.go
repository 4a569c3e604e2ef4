package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ItemCatalog answers whether a catalog item may be auctioned. Implementations return
// domain.ErrItemNotFound or domain.ErrItemNotEligible, and the item's listed price.
type ItemCatalog interface {
	CheckEligible(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
}

// CreateAuctionDTO is the input of CreateAuction, unset optional prices fall back to defaults
type CreateAuctionDTO struct {
	ItemID          uuid.UUID
	CreatedBy       uuid.UUID
	StartingPrice   decimal.NullDecimal
	MinIncrement    decimal.NullDecimal
	InstantBuyPrice decimal.NullDecimal
	Deadline        time.Time
}

type CreateAuctionUseCase struct {
	repo                domain.AuctionRepository
	catalog             ItemCatalog
	now                 func() time.Time
	defaultMinIncrement decimal.Decimal
	created             func(a *domain.Auction)
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionDTO) (*AuctionDTO, error) {
	log.Info("Executing CreateAuctionUseCase",
		zap.String("itemID", cmd.ItemID.String()),
		zap.String("createdBy", cmd.CreatedBy.String()),
	)
	if cmd.ItemID == uuid.Nil {
		return nil, domain.ErrMissingItem
	}

	listedPrice, err := uc.catalog.CheckEligible(ctx, cmd.ItemID)
	if err != nil {
		return nil, fmt.Errorf("create auction use case: item %s: %w", cmd.ItemID, err)
	}

	params := domain.NewAuctionParams{
		ItemID:          cmd.ItemID,
		CreatedBy:       cmd.CreatedBy,
		StartingPrice:   listedPrice,
		MinIncrement:    uc.defaultMinIncrement,
		InstantBuyPrice: cmd.InstantBuyPrice,
		Deadline:        cmd.Deadline,
	}
	if cmd.StartingPrice.Valid {
		params.StartingPrice = cmd.StartingPrice.Decimal
	}
	if cmd.MinIncrement.Valid {
		params.MinIncrement = cmd.MinIncrement.Decimal
	}

	a, err := domain.NewAuction(uuid.New(), params, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, a); err != nil {
		log.Error("CreateAuctionUseCase: Failed to store auction",
			zap.String("auctionID", a.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create auction use case: %w", err)
	}
	if uc.created != nil {
		uc.created(a)
	}

	log.Info("Auction created",
		zap.String("auctionID", a.ID.String()),
		zap.String("startingPrice", a.StartingPrice.String()),
		zap.Time("deadline", a.Deadline),
	)
	return NewAuctionDTO(a), nil
}
