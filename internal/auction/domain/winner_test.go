package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

// cascadeAuction returns an auction closed at its deadline with bids A@5000, B@5500, C@6200
func cascadeAuction(t *testing.T) (a *Auction, bidderA, bidderB, bidderC uuid.UUID) {
	t.Helper()
	a = newTestAuction(t, 4000, 0)
	bidderA, bidderB, bidderC = uuid.New(), uuid.New(), uuid.New()
	for i, bid := range []struct {
		who    uuid.UUID
		amount int64
	}{{bidderA, 5000}, {bidderB, 5500}, {bidderC, 6200}} {
		_, _, err := a.PlaceBid(bid.who, dec(bid.amount), t0.Add(time.Duration(i)*time.Minute), window)
		assert.NoError(t, err)
	}
	events := a.CloseIfDue(a.Deadline, window)
	assert.Equal(t, []EventType{EventAuctionClosed, EventWinnerAssigned}, events)
	return a, bidderA, bidderB, bidderC
}

func TestSettlement_CascadeToUnsold(t *testing.T) {
	a, bidderA, bidderB, bidderC := cascadeAuction(t)
	now := a.Deadline

	w := a.PendingWinner()
	assert.NotNil(t, w)
	check.Equal(t, bidderC, w.BidderID)
	check.Equal(t, "6200", w.Amount.String())

	now = w.PayBy
	events := a.ExpireWinner(w.Seq, now, window)
	check.Equal(t, []EventType{EventWinnerExpired, EventWinnerChanged}, events)
	w = a.PendingWinner()
	assert.NotNil(t, w)
	check.Equal(t, bidderB, w.BidderID)
	check.Equal(t, "5500", w.Amount.String())

	now = w.PayBy
	a.ExpireWinner(w.Seq, now, window)
	w = a.PendingWinner()
	assert.NotNil(t, w)
	check.Equal(t, bidderA, w.BidderID)
	check.Equal(t, "5000", w.Amount.String())

	now = w.PayBy
	events = a.ExpireWinner(w.Seq, now, window)
	check.Equal(t, []EventType{EventWinnerExpired, EventAuctionUnsold}, events)
	check.Nil(t, a.PendingWinner())
	check.Equal(t, StatusUnsold, a.Status)

	// the whole history is kept and never more than one offer was live
	check.Equal(t, 3, len(a.Winners))
	for _, rec := range a.Winners {
		check.Equal(t, WinnerExpired, rec.Status)
	}
}

func TestSettlement_ExpireIsNoopWhenStaleOrEarly(t *testing.T) {
	a, _, _, _ := cascadeAuction(t)
	w := a.PendingWinner()

	check.Equal(t, 0, len(a.ExpireWinner(w.Seq, w.PayBy.Add(-time.Second), window)))
	check.Equal(t, 0, len(a.ExpireWinner(w.Seq+1, w.PayBy, window)))
	check.Equal(t, WinnerPending, w.Status)
}

func TestSettlement_CascadeSkipsLapsedBidder(t *testing.T) {
	a := newTestAuction(t, 4000, 0)
	bidderA, bidderB := uuid.New(), uuid.New()
	// A bids twice, around B
	for i, bid := range []struct {
		who    uuid.UUID
		amount int64
	}{{bidderA, 5000}, {bidderB, 5500}, {bidderA, 6000}} {
		_, _, err := a.PlaceBid(bid.who, dec(bid.amount), t0.Add(time.Duration(i)*time.Second), window)
		assert.NoError(t, err)
	}
	a.CloseIfDue(a.Deadline, window)
	check.Equal(t, bidderA, a.PendingWinner().BidderID)

	w := a.PendingWinner()
	a.ExpireWinner(w.Seq, w.PayBy, window)
	check.Equal(t, bidderB, a.PendingWinner().BidderID)

	w = a.PendingWinner()
	a.ExpireWinner(w.Seq, w.PayBy, window)
	// A's earlier 5000 bid is not offered again
	check.Nil(t, a.PendingWinner())
	check.Equal(t, StatusUnsold, a.Status)
}

func TestSettlement_TieGoesToEarliestBid(t *testing.T) {
	a := newTestAuction(t, 4000, 0)
	early, late := uuid.New(), uuid.New()
	// equal amounts only happen through an administrative override
	a.Bids = append(a.Bids,
		NewBid(uuid.New(), a.ID, 1, late, dec(7000), t0.Add(2*time.Second)),
		NewBid(uuid.New(), a.ID, 2, early, dec(7000), t0.Add(time.Second)),
	)
	a.CloseIfDue(a.Deadline, window)
	check.Equal(t, early, a.PendingWinner().BidderID)
}

func TestConfirmPayment(t *testing.T) {
	a, _, _, bidderC := cascadeAuction(t)
	w := a.PendingWinner()

	_, err := a.ConfirmPayment(uuid.New(), a.Deadline)
	check.True(t, errors.Is(err, ErrWrongPayer))

	_, err = a.ConfirmPayment(bidderC, w.PayBy)
	check.True(t, errors.Is(err, ErrPaymentWindowClosed))

	events, err := a.ConfirmPayment(bidderC, a.Deadline)
	assert.NoError(t, err)
	check.Equal(t, []EventType{EventWinnerPaid}, events)
	check.Equal(t, WinnerPaid, w.Status)
	check.Equal(t, StatusSold, a.Status)
	check.True(t, a.IsTerminal())

	_, err = a.ConfirmPayment(bidderC, a.Deadline)
	check.True(t, errors.Is(err, ErrNoPendingWinner))

	// a paid winner can no longer lapse
	check.Equal(t, 0, len(a.ExpireWinner(w.Seq, w.PayBy, window)))
}

func TestDeclineWin(t *testing.T) {
	a, _, bidderB, bidderC := cascadeAuction(t)

	_, err := a.DeclineWin(bidderB, a.Deadline, window)
	check.True(t, errors.Is(err, ErrNotPendingWinner))

	events, err := a.DeclineWin(bidderC, a.Deadline, window)
	assert.NoError(t, err)
	check.Equal(t, []EventType{EventWinnerDeclined, EventWinnerChanged}, events)
	check.Equal(t, WinnerDeclined, a.Winners[0].Status)
	check.Equal(t, bidderB, a.PendingWinner().BidderID)
}

func TestCheckDeletable(t *testing.T) {
	a, _, _, _ := cascadeAuction(t)
	check.True(t, errors.Is(a.CheckDeletable(), ErrSettlementPending))

	b := newTestAuction(t, 1000, 0)
	check.NoError(t, b.CheckDeletable())
}
