// Package broadcast carries auction events beyond this process: a Redis Pub/Sub
// relay that feeds the websocket rooms of every instance, and a JetStream stream
// that keeps them for downstream consumers.
package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/cristianortiz/sneakerbid/internal/auction/application"
	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	queueSize = 1024
	// how long a publisher may wait for room before the event is dropped
	enqueueWait = 250 * time.Millisecond
)

// queue hands events to a single worker so the caller never waits on the network
// and events leave in the order they were published
type queue struct {
	name   string
	events chan application.AuctionEvent
	send   func(ctx context.Context, event application.AuctionEvent) error
	wait   time.Duration
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func newQueue(name string, send func(ctx context.Context, event application.AuctionEvent) error) *queue {
	return &queue{
		name:   name,
		events: make(chan application.AuctionEvent, queueSize),
		send:   send,
		wait:   enqueueWait,
	}
}

// start runs the worker until stop, ctx values reach send but its cancellation does
// not, so events queued at shutdown are still delivered
func (q *queue) start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for event := range q.events {
			if err := q.send(ctx, event); err != nil {
				log.Error("Failed to forward auction event",
					zap.String("sink", q.name),
					zap.String("auctionID", event.AuctionID.String()),
					zap.String("type", string(event.Type)),
					zap.Error(err),
				)
			}
		}
	}()
}

// enqueue waits up to q.wait for room, a sink that stays behind longer loses the
// event and clients reconcile on the next snapshot version
func (q *queue) enqueue(event application.AuctionEvent) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.events <- event:
		return true
	default:
	}

	timer := time.NewTimer(q.wait)
	defer timer.Stop()
	select {
	case q.events <- event:
		return true
	case <-timer.C:
		log.Error("Event queue is full, event dropped",
			zap.String("sink", q.name),
			zap.String("auctionID", event.AuctionID.String()),
			zap.String("type", string(event.Type)),
		)
		return false
	}
}

// stop drains what is queued and waits for the worker
func (q *queue) stop() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
