package application

import (
	"context"

	"github.com/cristianortiz/sneakerbid/internal/catalog/domain"
	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// EligibilityService looks an item up and applies the auction policy to it
type EligibilityService struct {
	items  domain.ItemRepository
	policy domain.EligibilityPolicy
}

func NewEligibilityService(items domain.ItemRepository, policy domain.EligibilityPolicy) *EligibilityService {
	return &EligibilityService{items: items, policy: policy}
}

// Check returns the item when it may be auctioned
func (s *EligibilityService) Check(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(item); err != nil {
		log.Info("Item rejected for auction", zap.String("itemID", itemID.String()), zap.Error(err))
		return nil, err
	}
	return item, nil
}
