// Package catalog adapts the catalog context to the auction ItemCatalog port
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	catalogdomain "github.com/cristianortiz/sneakerbid/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EligibilityChecker is satisfied by the catalog EligibilityService
type EligibilityChecker interface {
	Check(ctx context.Context, itemID uuid.UUID) (*catalogdomain.Item, error)
}

type ItemCatalog struct {
	checker EligibilityChecker
}

func NewItemCatalog(checker EligibilityChecker) *ItemCatalog {
	return &ItemCatalog{checker: checker}
}

// CheckEligible translates catalog errors into auction errors and returns the listed price
func (c *ItemCatalog) CheckEligible(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	item, err := c.checker.Check(ctx, itemID)
	switch {
	case err == nil:
		return item.Price, nil
	case errors.Is(err, catalogdomain.ErrItemNotFound):
		return decimal.Zero, domain.ErrItemNotFound
	case errors.Is(err, catalogdomain.ErrItemNotEligible):
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrItemNotEligible, err)
	default:
		return decimal.Zero, fmt.Errorf("item catalog: %w", err)
	}
}
