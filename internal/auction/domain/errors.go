package domain

import (
	"errors"
	"fmt"
)

// error categories, every concrete error below wraps exactly one of them
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrState      = errors.New("invalid state")
	ErrConflict   = errors.New("concurrency conflict")
)

var (
	ErrAuctionNotFound = fmt.Errorf("%w: auction not found", ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("%w: item not found", ErrNotFound)

	ErrInvalidAmount        = fmt.Errorf("%w: bid amount cannot be zero or less than zero", ErrValidation)
	ErrBidTooLow            = fmt.Errorf("%w: bid amount is too low", ErrValidation)
	ErrAmountPrecision      = fmt.Errorf("%w: amounts allow at most two decimal places", ErrValidation)
	ErrAmountOutOfRange     = fmt.Errorf("%w: amount must be below 10000000000", ErrValidation)
	ErrMissingBidder        = fmt.Errorf("%w: bidder is required", ErrValidation)
	ErrMissingItem          = fmt.Errorf("%w: item reference is required", ErrValidation)
	ErrInvalidStartingPrice = fmt.Errorf("%w: starting price must be greater than zero", ErrValidation)
	ErrInvalidIncrement     = fmt.Errorf("%w: minimum bid increment must be greater than zero", ErrValidation)
	ErrInvalidInstantBuy    = fmt.Errorf("%w: instant buy price must be above the starting price", ErrValidation)
	ErrDeadlineInPast       = fmt.Errorf("%w: bidding deadline must be in the future", ErrValidation)
	ErrWrongPayer           = fmt.Errorf("%w: payer is not the pending winner", ErrValidation)
	ErrNotPendingWinner     = fmt.Errorf("%w: bidder is not the pending winner", ErrValidation)
	ErrItemNotEligible      = fmt.Errorf("%w: item is not eligible for auction", ErrValidation)

	ErrAuctionNotActive     = fmt.Errorf("%w: auction is not active", ErrState)
	ErrAuctionExpired       = fmt.Errorf("%w: bidding deadline has passed", ErrState)
	ErrAlreadyHighestBidder = fmt.Errorf("%w: bidder already holds the highest bid", ErrState)
	ErrNoPendingWinner      = fmt.Errorf("%w: auction has no pending winner", ErrState)
	ErrPaymentWindowClosed  = fmt.Errorf("%w: payment window has closed", ErrState)
	ErrSettlementPending    = fmt.Errorf("%w: auction has a pending settlement", ErrState)

	ErrVersionConflict     = fmt.Errorf("%w: auction version changed", ErrConflict)
	ErrConcurrencyConflict = fmt.Errorf("%w: too many concurrent updates, retry later", ErrConflict)
)
