package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func TestEligibilityPolicy(t *testing.T) {
	policy := EligibilityPolicy{MinPrice: decimal.NewFromInt(6000), Condition: "best"}
	base := Item{ID: uuid.New(), Price: decimal.NewFromInt(6000), Condition: "best", IsApproved: true}

	tests := []struct {
		name     string
		mutate   func(i *Item)
		eligible bool
	}{
		{"at the threshold", func(i *Item) {}, true},
		{"condition is case insensitive", func(i *Item) { i.Condition = "Best" }, true},
		{"below the price", func(i *Item) { i.Price = decimal.RequireFromString("5999.99") }, false},
		{"worn", func(i *Item) { i.Condition = "used" }, false},
		{"not approved", func(i *Item) { i.IsApproved = false }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := base
			tt.mutate(&item)
			err := policy.Check(&item)
			if tt.eligible {
				check.NoError(t, err)
				return
			}
			check.True(t, errors.Is(err, ErrItemNotEligible))
		})
	}
}
