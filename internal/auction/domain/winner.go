package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WinnerStatus is the state of one offer made to a bidder after close
type WinnerStatus string

const (
	WinnerPending  WinnerStatus = "pending"
	WinnerPaid     WinnerStatus = "paid"
	WinnerExpired  WinnerStatus = "expired"
	WinnerDeclined WinnerStatus = "declined"
)

// Winner is one offer in the settlement history of an auction. Only the last
// record may be pending or paid, earlier ones are expired or declined.
type Winner struct {
	Seq        int
	BidderID   uuid.UUID
	Amount     decimal.Decimal
	Status     WinnerStatus
	AssignedAt time.Time
	PayBy      time.Time
	ResolvedAt *time.Time
}

// CurrentWinner returns the latest winner record, nil before close or when no bid existed
func (a *Auction) CurrentWinner() *Winner {
	if len(a.Winners) == 0 {
		return nil
	}
	return a.Winners[len(a.Winners)-1]
}

// PendingWinner returns the current winner only while its payment window is open
func (a *Auction) PendingWinner() *Winner {
	if w := a.CurrentWinner(); w != nil && w.Status == WinnerPending {
		return w
	}
	return nil
}

// ConfirmPayment settles the auction for the pending winner
func (a *Auction) ConfirmPayment(payerID uuid.UUID, now time.Time) ([]EventType, error) {
	w := a.PendingWinner()
	if w == nil {
		return nil, ErrNoPendingWinner
	}
	if w.BidderID != payerID {
		return nil, ErrWrongPayer
	}
	if !now.Before(w.PayBy) {
		return nil, ErrPaymentWindowClosed
	}

	w.Status = WinnerPaid
	w.ResolvedAt = timePtr(now)
	a.Status = StatusSold
	a.UpdatedAt = now

	log.Info("Auction settled",
		zap.String("auctionID", a.ID.String()),
		zap.String("bidderID", w.BidderID.String()),
		zap.String("amount", w.Amount.String()),
	)
	return []EventType{EventWinnerPaid}, nil
}

// ExpireWinner marks the pending offer identified by seq as expired once its window
// has elapsed and cascades to the next bidder. A stale or early call is a no-op.
func (a *Auction) ExpireWinner(seq int, now time.Time, paymentWindow time.Duration) []EventType {
	w := a.PendingWinner()
	if w == nil || w.Seq != seq || now.Before(w.PayBy) {
		return nil
	}
	w.Status = WinnerExpired
	w.ResolvedAt = timePtr(now)
	a.UpdatedAt = now

	log.Info("Winner payment window expired",
		zap.String("auctionID", a.ID.String()),
		zap.String("bidderID", w.BidderID.String()),
		zap.Int("winnerSeq", w.Seq),
	)

	events := []EventType{EventWinnerExpired}
	return append(events, a.offerNext(now, paymentWindow)...)
}

// DeclineWin lets the pending winner give up the offer, which cascades like an expiry
func (a *Auction) DeclineWin(bidderID uuid.UUID, now time.Time, paymentWindow time.Duration) ([]EventType, error) {
	w := a.PendingWinner()
	if w == nil {
		return nil, ErrNoPendingWinner
	}
	if w.BidderID != bidderID {
		return nil, ErrNotPendingWinner
	}
	w.Status = WinnerDeclined
	w.ResolvedAt = timePtr(now)
	a.UpdatedAt = now

	events := []EventType{EventWinnerDeclined}
	return append(events, a.offerNext(now, paymentWindow)...), nil
}

// offerNext creates a pending winner record for the next viable bid, or settles
// the auction as unsold when none is left.
func (a *Auction) offerNext(now time.Time, paymentWindow time.Duration) []EventType {
	next := a.nextCandidate()
	if next == nil {
		a.Status = StatusUnsold
		log.Info("Auction unsold, no viable bidder",
			zap.String("auctionID", a.ID.String()),
			zap.Int("offers", len(a.Winners)),
		)
		return []EventType{EventAuctionUnsold}
	}

	first := len(a.Winners) == 0
	a.Winners = append(a.Winners, &Winner{
		Seq:        len(a.Winners) + 1,
		BidderID:   next.BidderID,
		Amount:     next.Amount,
		Status:     WinnerPending,
		AssignedAt: now,
		PayBy:      now.Add(paymentWindow),
	})
	a.Status = StatusAwaitingPayment

	log.Info("Winner assigned",
		zap.String("auctionID", a.ID.String()),
		zap.String("bidderID", next.BidderID.String()),
		zap.String("amount", next.Amount.String()),
		zap.Time("payBy", now.Add(paymentWindow)),
	)

	if first {
		return []EventType{EventWinnerAssigned}
	}
	return []EventType{EventWinnerChanged}
}

// nextCandidate picks the highest bid strictly below the last offered amount whose
// bidder never let an offer lapse. Equal amounts go to the earliest acceptance.
func (a *Auction) nextCandidate() *Bid {
	excluded := make(map[uuid.UUID]struct{}, len(a.Winners))
	var ceiling *decimal.Decimal
	for _, w := range a.Winners {
		if w.Status == WinnerExpired || w.Status == WinnerDeclined {
			excluded[w.BidderID] = struct{}{}
		}
		amount := w.Amount
		ceiling = &amount
	}

	var best *Bid
	for _, b := range a.Bids {
		if _, skip := excluded[b.BidderID]; skip {
			continue
		}
		if ceiling != nil && !b.Amount.LessThan(*ceiling) {
			continue
		}
		if best == nil || outranks(b, best) {
			best = b
		}
	}
	return best
}

func outranks(b, other *Bid) bool {
	if !b.Amount.Equal(other.Amount) {
		return b.Amount.GreaterThan(other.Amount)
	}
	if !b.PlacedAt.Equal(other.PlacedAt) {
		return b.PlacedAt.Before(other.PlacedAt)
	}
	return b.Seq < other.Seq
}

func timePtr(t time.Time) *time.Time {
	return &t
}
