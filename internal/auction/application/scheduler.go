package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const fireTimeout = 10 * time.Second

// timerHandler is what the scheduler calls when a timer fires. Both go through the
// committer, whose hook re-arms the timers from the snapshot read under the lane.
type timerHandler interface {
	CloseDue(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, error)
	ExpirePayment(ctx context.Context, auctionID uuid.UUID, seq int) (*domain.Auction, error)
}

type paymentTimer struct {
	seq   int
	timer *time.Timer
}

// Scheduler keeps at most one deadline timer and one payment timer per auction in
// memory. Timers are derived from committed state only (deadline and pay_by), so a
// restart rebuilds them with Recover. Fires go through the normal commit path and
// are idempotent, a stale or duplicated fire changes nothing.
type Scheduler struct {
	mu        sync.Mutex
	running   bool
	ctx       context.Context
	deadlines map[uuid.UUID]*time.Timer
	payments  map[uuid.UUID]paymentTimer

	handler      timerHandler
	now          func() time.Time
	retryBackoff time.Duration
}

func newScheduler(handler timerHandler, now func() time.Time, retryBackoff time.Duration) *Scheduler {
	return &Scheduler{
		deadlines:    make(map[uuid.UUID]*time.Timer),
		payments:     make(map[uuid.UUID]paymentTimer),
		handler:      handler,
		now:          now,
		retryBackoff: retryBackoff,
	}
}

// Recover arms timers for every unsettled auction found in the ledger. Deadlines
// and payment windows that elapsed while the process was down fire right away.
func (s *Scheduler) Recover(ctx context.Context, repo domain.AuctionRepository) error {
	s.mu.Lock()
	s.running = true
	s.ctx = context.WithoutCancel(ctx)
	s.mu.Unlock()

	auctions, err := repo.ListUnsettled(ctx)
	if err != nil {
		return err
	}
	for _, a := range auctions {
		s.Sync(a)
	}
	log.Info("Scheduler recovered", zap.Int("auctions", len(auctions)))
	return nil
}

// Sync aligns the timers of one auction with its committed snapshot
func (s *Scheduler) Sync(a *domain.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	id := a.ID

	if a.Active {
		if _, ok := s.deadlines[id]; !ok {
			s.deadlines[id] = s.afterFunc(a.Deadline, func() { s.fireDeadline(id) })
		}
	} else if t, ok := s.deadlines[id]; ok {
		t.Stop()
		delete(s.deadlines, id)
	}

	w := a.PendingWinner()
	pt, ok := s.payments[id]
	switch {
	case w == nil && ok:
		pt.timer.Stop()
		delete(s.payments, id)
	case w != nil && (!ok || pt.seq != w.Seq):
		if ok {
			pt.timer.Stop()
		}
		seq := w.Seq
		s.payments[id] = paymentTimer{seq: seq, timer: s.afterFunc(w.PayBy, func() { s.firePayment(id, seq) })}
	}
}

// Forget drops the timers of a deleted auction
func (s *Scheduler) Forget(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.deadlines[id]; ok {
		t.Stop()
		delete(s.deadlines, id)
	}
	if pt, ok := s.payments[id]; ok {
		pt.timer.Stop()
		delete(s.payments, id)
	}
}

// Stop cancels every timer, fires already running finish on their own
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	for id, t := range s.deadlines {
		t.Stop()
		delete(s.deadlines, id)
	}
	for id, pt := range s.payments {
		pt.timer.Stop()
		delete(s.payments, id)
	}
}

func (s *Scheduler) pending() (deadlines, payments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deadlines), len(s.payments)
}

func (s *Scheduler) afterFunc(at time.Time, fn func()) *time.Timer {
	d := at.Sub(s.now())
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, fn)
}

func (s *Scheduler) fireDeadline(id uuid.UUID) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	delete(s.deadlines, id)
	base := s.ctx
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, fireTimeout)
	defer cancel()
	if _, err := s.handler.CloseDue(ctx, id); err != nil {
		s.retryDeadline(id, err)
	}
}

func (s *Scheduler) firePayment(id uuid.UUID, seq int) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	if pt, ok := s.payments[id]; ok && pt.seq == seq {
		delete(s.payments, id)
	}
	base := s.ctx
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, fireTimeout)
	defer cancel()
	if _, err := s.handler.ExpirePayment(ctx, id, seq); err != nil {
		s.retryPayment(id, seq, err)
	}
}

// shouldRetry logs the failure and tells whether the fire is worth re-arming,
// a deleted auction is simply forgotten
func (s *Scheduler) shouldRetry(id uuid.UUID, kind string, err error) bool {
	if errors.Is(err, domain.ErrNotFound) {
		s.Forget(id)
		return false
	}
	log.Warn("Scheduled transition failed, retrying",
		zap.String("auctionID", id.String()),
		zap.String("timer", kind),
		zap.Duration("backoff", s.retryBackoff),
		zap.Error(err),
	)
	return true
}

func (s *Scheduler) retryDeadline(id uuid.UUID, err error) {
	if !s.shouldRetry(id, "deadline", err) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if old, ok := s.deadlines[id]; ok {
		old.Stop()
	}
	s.deadlines[id] = time.AfterFunc(s.retryBackoff, func() { s.fireDeadline(id) })
}

func (s *Scheduler) retryPayment(id uuid.UUID, seq int, err error) {
	if !s.shouldRetry(id, "payment", err) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if old, ok := s.payments[id]; ok {
		old.timer.Stop()
	}
	s.payments[id] = paymentTimer{seq: seq, timer: time.AfterFunc(s.retryBackoff, func() { s.firePayment(id, seq) })}
}
