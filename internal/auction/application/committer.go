package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// mutation decides on a fresh snapshot. Returning no events means nothing changed
// and no commit is attempted.
type mutation func(a *domain.Auction, now time.Time) ([]domain.EventType, error)

// committer is the single write path of every use case: read, decide, commit with the
// version read, retry on conflict. Publishing and timer sync happen before the lane is
// released so subscribers see events in commit order.
type committer struct {
	repo        domain.AuctionRepository
	publisher   EventPublisher
	lanes       *lanes
	now         func() time.Time
	maxAttempts int
	// afterCommit receives every snapshot decided under the lane, the scheduler hooks in here
	afterCommit func(a *domain.Auction)
}

func (c *committer) apply(ctx context.Context, id uuid.UUID, op string, fn mutation) (*domain.Auction, []domain.EventType, error) {
	unlock := c.lanes.lock(id)
	defer unlock()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		a, err := c.repo.GetByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		expected := a.Version
		now := c.now()

		events, err := fn(a, now)
		if err != nil {
			return nil, nil, err
		}
		if len(events) == 0 {
			// timers still follow the fresh snapshot, an early or stale fire re-arms here
			if c.afterCommit != nil {
				c.afterCommit(a)
			}
			return a, nil, nil
		}

		err = c.repo.Commit(ctx, a, expected)
		if errors.Is(err, domain.ErrVersionConflict) {
			// another instance won the race, decide again on its result
			log.Debug("Version conflict, retrying",
				zap.String("op", op),
				zap.String("auctionID", id.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			log.Error("Failed to commit auction",
				zap.String("op", op),
				zap.String("auctionID", id.String()),
				zap.Error(err),
			)
			return nil, nil, fmt.Errorf("%s: commit auction %s: %w", op, id, err)
		}

		c.committed(ctx, a, events, now)
		return a, events, nil
	}

	log.Warn("Giving up after repeated version conflicts",
		zap.String("op", op),
		zap.String("auctionID", id.String()),
		zap.Int("attempts", c.maxAttempts),
	)
	return nil, nil, domain.ErrConcurrencyConflict
}

// committed publishes one event per transition, all with the post-commit snapshot
func (c *committer) committed(ctx context.Context, a *domain.Auction, events []domain.EventType, now time.Time) {
	snapshot := NewAuctionDTO(a)
	for _, t := range events {
		c.publisher.Publish(ctx, AuctionEvent{
			Type:       t,
			AuctionID:  a.ID,
			OccurredAt: now,
			Auction:    snapshot,
		})
	}
	if c.afterCommit != nil {
		c.afterCommit(a)
	}
}
