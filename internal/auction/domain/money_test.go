package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func TestCheckMoney(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"6000", nil},
		{"6000.5", nil},
		{"6000.50", nil},
		{"6000.500", nil},
		{"9999999999.99", nil},
		{"0.004", ErrAmountPrecision},
		{"6100.005", ErrAmountPrecision},
		{"10000000000", ErrAmountOutOfRange},
		{"-10000000000", ErrAmountOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := CheckMoney(decimal.RequireFromString(tt.in))
			if tt.want == nil {
				check.NoError(t, err)
				return
			}
			check.True(t, errors.Is(err, tt.want))
			check.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestNewAuction_RejectsUnstorableMoney(t *testing.T) {
	base := NewAuctionParams{
		ItemID:        uuid.New(),
		StartingPrice: dec(6000),
		MinIncrement:  dec(100),
		Deadline:      t0.Add(time.Minute),
	}
	tests := []struct {
		name   string
		mutate func(p *NewAuctionParams)
		want   error
	}{
		{"sub-cent increment", func(p *NewAuctionParams) {
			p.MinIncrement = decimal.RequireFromString("0.004")
		}, ErrAmountPrecision},
		{"sub-cent starting price", func(p *NewAuctionParams) {
			p.StartingPrice = decimal.RequireFromString("6000.001")
		}, ErrAmountPrecision},
		{"starting price too large", func(p *NewAuctionParams) {
			p.StartingPrice = decimal.New(1, 10)
		}, ErrAmountOutOfRange},
		{"instant buy too large", func(p *NewAuctionParams) {
			p.InstantBuyPrice = decimal.NewNullDecimal(decimal.New(2, 10))
		}, ErrAmountOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			a, err := NewAuction(uuid.New(), p, t0)
			check.Nil(t, a)
			check.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestPlaceBid_RejectsUnstorableMoney(t *testing.T) {
	a := newTestAuction(t, 6000, 0)

	_, _, err := a.PlaceBid(uuid.New(), decimal.RequireFromString("6100.005"), t0, window)
	check.True(t, errors.Is(err, ErrAmountPrecision))

	_, _, err = a.PlaceBid(uuid.New(), decimal.New(1, 10), t0, window)
	check.True(t, errors.Is(err, ErrAmountOutOfRange))
	check.Equal(t, 0, len(a.Bids))

	_, _, err = a.PlaceBid(uuid.New(), decimal.RequireFromString("6100.25"), t0, window)
	assert.NoError(t, err)
	check.Equal(t, "6100.25", a.CurrentHighestBid.String())
}

// a floor that equals the highest bid would let an equal bid through
func TestPlaceBid_FloorStaysAboveHighestBid(t *testing.T) {
	p := NewAuctionParams{
		ItemID:        uuid.New(),
		StartingPrice: dec(6000),
		MinIncrement:  decimal.RequireFromString("0.01"),
		Deadline:      t0.Add(time.Hour),
	}
	a, err := NewAuction(uuid.New(), p, t0)
	assert.NoError(t, err)

	_, _, err = a.PlaceBid(uuid.New(), dec(6000), t0, window)
	check.True(t, errors.Is(err, ErrBidTooLow))
	_, _, err = a.PlaceBid(uuid.New(), decimal.RequireFromString("6000.01"), t0, window)
	check.NoError(t, err)
}
