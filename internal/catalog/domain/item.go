package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("sneaker not found")
	ErrItemNotEligible = errors.New("sneaker is not eligible for auction")
)

// Item is the sneaker as the catalog knows it, auctions only keep its id
type Item struct {
	ID         uuid.UUID
	Title      string
	Price      decimal.Decimal
	Condition  string
	IsApproved bool
}

// ItemRepository reads catalog items
type ItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
}

// EligibilityPolicy decides which items may go to auction
type EligibilityPolicy struct {
	MinPrice  decimal.Decimal
	Condition string
}

// Check returns nil for an approved item in the required condition priced at least MinPrice
func (p EligibilityPolicy) Check(item *Item) error {
	if !item.IsApproved {
		return fmt.Errorf("%w: not approved", ErrItemNotEligible)
	}
	if p.Condition != "" && !strings.EqualFold(item.Condition, p.Condition) {
		return fmt.Errorf("%w: condition %q, need %q", ErrItemNotEligible, item.Condition, p.Condition)
	}
	if item.Price.LessThan(p.MinPrice) {
		return fmt.Errorf("%w: price %s below %s", ErrItemNotEligible, item.Price.String(), p.MinPrice.String())
	}
	return nil
}
