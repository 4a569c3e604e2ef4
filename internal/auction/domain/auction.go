package domain

import (
	"fmt"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionStatus represents the settlement state of an auction
type AuctionStatus string

const (
	StatusActive          AuctionStatus = "active"
	StatusAwaitingPayment AuctionStatus = "awaiting_payment"
	StatusSold            AuctionStatus = "sold"
	StatusUnsold          AuctionStatus = "unsold"
)

// CloseReason tells what ended the bidding phase
type CloseReason string

const (
	CloseReasonDeadline   CloseReason = "deadline"
	CloseReasonInstantBuy CloseReason = "instant_buy"
	CloseReasonAdmin      CloseReason = "admin"
)

// Auction is the aggregate root of the bidding context, it exclusively owns
// its bid history and winner records. ItemID is a weak reference to the catalog.
type Auction struct {
	ID                uuid.UUID
	ItemID            uuid.UUID
	CreatedBy         uuid.UUID
	StartingPrice     decimal.Decimal
	CurrentHighestBid decimal.Decimal
	InstantBuyPrice   decimal.NullDecimal
	MinIncrement      decimal.Decimal
	Deadline          time.Time
	Active            bool
	Status            AuctionStatus
	CloseReason       CloseReason
	ClosedAt          *time.Time
	Version           int64
	Bids              []*Bid
	Winners           []*Winner
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// trailing bids appended since the aggregate was loaded
	uncommitted int
}

// NewAuctionParams carries the creation input, already checked against the catalog
type NewAuctionParams struct {
	ItemID          uuid.UUID
	CreatedBy       uuid.UUID
	StartingPrice   decimal.Decimal
	MinIncrement    decimal.Decimal
	InstantBuyPrice decimal.NullDecimal
	Deadline        time.Time
}

// NewAuction validates params and returns an active auction at version 1
func NewAuction(id uuid.UUID, p NewAuctionParams, now time.Time) (*Auction, error) {
	if p.ItemID == uuid.Nil {
		return nil, ErrMissingItem
	}
	if !p.StartingPrice.IsPositive() {
		return nil, ErrInvalidStartingPrice
	}
	if !p.MinIncrement.IsPositive() {
		return nil, ErrInvalidIncrement
	}
	if err := CheckMoney(p.StartingPrice); err != nil {
		return nil, err
	}
	if err := CheckMoney(p.MinIncrement); err != nil {
		return nil, err
	}
	if p.InstantBuyPrice.Valid {
		if err := CheckMoney(p.InstantBuyPrice.Decimal); err != nil {
			return nil, err
		}
	}
	if !p.Deadline.After(now) {
		return nil, ErrDeadlineInPast
	}
	if p.InstantBuyPrice.Valid && !p.InstantBuyPrice.Decimal.GreaterThan(p.StartingPrice) {
		return nil, ErrInvalidInstantBuy
	}

	return &Auction{
		ID:                id,
		ItemID:            p.ItemID,
		CreatedBy:         p.CreatedBy,
		StartingPrice:     p.StartingPrice,
		CurrentHighestBid: p.StartingPrice, // floor starts at the starting price
		InstantBuyPrice:   p.InstantBuyPrice,
		MinIncrement:      p.MinIncrement,
		Deadline:          p.Deadline,
		Active:            true,
		Status:            StatusActive,
		Version:           1,
		Bids:              []*Bid{},
		Winners:           []*Winner{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// MinimumNextBid is the lowest amount the next bid may carry
func (a *Auction) MinimumNextBid() decimal.Decimal {
	return a.CurrentHighestBid.Add(a.MinIncrement)
}

// HighestBid returns the last accepted bid, bids are strictly increasing so it is also the highest
func (a *Auction) HighestBid() *Bid {
	if len(a.Bids) == 0 {
		return nil
	}
	return a.Bids[len(a.Bids)-1]
}

// UniqueBidders counts distinct bidders in the history
func (a *Auction) UniqueBidders() int {
	seen := make(map[uuid.UUID]struct{}, len(a.Bids))
	for _, b := range a.Bids {
		seen[b.BidderID] = struct{}{}
	}
	return len(seen)
}

// IsTerminal reports whether nothing can change the auction anymore
func (a *Auction) IsTerminal() bool {
	return a.Status == StatusSold || a.Status == StatusUnsold
}

// PlaceBid applies the admission rules against this snapshot. On success the bid is
// appended and the returned events describe every transition it caused (an instant
// buy also closes the auction and offers it to the bidder).
func (a *Auction) PlaceBid(bidderID uuid.UUID, amount decimal.Decimal, now time.Time, paymentWindow time.Duration) (*Bid, []EventType, error) {
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if err := CheckMoney(amount); err != nil {
		return nil, nil, err
	}
	if bidderID == uuid.Nil {
		return nil, nil, ErrMissingBidder
	}
	if !a.Active {
		return nil, nil, ErrAuctionNotActive
	}
	// the deadline is authoritative even before the scheduler has closed the record
	if !now.Before(a.Deadline) {
		return nil, nil, ErrAuctionExpired
	}
	if hb := a.HighestBid(); hb != nil && hb.BidderID == bidderID {
		return nil, nil, ErrAlreadyHighestBidder
	}
	if minimum := a.MinimumNextBid(); amount.LessThan(minimum) {
		return nil, nil, fmt.Errorf("%w: minimum next bid is %s", ErrBidTooLow, minimum.String())
	}

	bid := NewBid(uuid.New(), a.ID, len(a.Bids)+1, bidderID, amount, now)
	a.Bids = append(a.Bids, bid)
	a.uncommitted++
	a.CurrentHighestBid = amount
	a.UpdatedAt = now

	events := []EventType{EventBidAccepted}
	if a.InstantBuyPrice.Valid && amount.GreaterThanOrEqual(a.InstantBuyPrice.Decimal) {
		log.Info("Instant buy triggered",
			zap.String("auctionID", a.ID.String()),
			zap.String("bidderID", bidderID.String()),
			zap.String("amount", amount.String()),
		)
		events = append(events, a.close(now, CloseReasonInstantBuy, paymentWindow)...)
	}
	return bid, events, nil
}

// CloseIfDue closes the auction when its deadline has been reached. It is a no-op
// (nil events) if the auction is already closed or the deadline is still ahead.
func (a *Auction) CloseIfDue(now time.Time, paymentWindow time.Duration) []EventType {
	if !a.Active || now.Before(a.Deadline) {
		return nil
	}
	return a.close(now, CloseReasonDeadline, paymentWindow)
}

// CloseEarly is the administrative close, it bypasses the deadline
func (a *Auction) CloseEarly(now time.Time, paymentWindow time.Duration) ([]EventType, error) {
	if !a.Active {
		return nil, ErrAuctionNotActive
	}
	return a.close(now, CloseReasonAdmin, paymentWindow), nil
}

// CheckDeletable refuses deletion while a winner still has an open payment window
func (a *Auction) CheckDeletable() error {
	if a.Status == StatusAwaitingPayment {
		return ErrSettlementPending
	}
	return nil
}

// UncommittedBids returns bids appended since the aggregate was loaded
func (a *Auction) UncommittedBids() []*Bid {
	return a.Bids[len(a.Bids)-a.uncommitted:]
}

// MarkCommitted is called by the ledger once the new bids are durable
func (a *Auction) MarkCommitted() {
	a.uncommitted = 0
}

func (a *Auction) close(now time.Time, reason CloseReason, paymentWindow time.Duration) []EventType {
	a.Active = false
	a.CloseReason = reason
	closedAt := now
	a.ClosedAt = &closedAt
	a.UpdatedAt = now

	log.Info("Auction closed",
		zap.String("auctionID", a.ID.String()),
		zap.String("reason", string(reason)),
		zap.String("highestBid", a.CurrentHighestBid.String()),
		zap.Int("bids", len(a.Bids)),
	)

	events := []EventType{EventAuctionClosed}
	return append(events, a.offerNext(now, paymentWindow)...)
}

// Clone returns a deep copy, ledgers hand out clones so callers never share records
func (a *Auction) Clone() *Auction {
	c := *a
	c.Bids = make([]*Bid, len(a.Bids))
	for i, b := range a.Bids {
		bid := *b
		c.Bids[i] = &bid
	}
	c.Winners = make([]*Winner, len(a.Winners))
	for i, w := range a.Winners {
		winner := *w
		if w.ResolvedAt != nil {
			winner.ResolvedAt = timePtr(*w.ResolvedAt)
		}
		c.Winners[i] = &winner
	}
	if a.ClosedAt != nil {
		c.ClosedAt = timePtr(*a.ClosedAt)
	}
	return &c
}
