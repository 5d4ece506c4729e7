package store

import (
	"context"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

// Subscription is a standing watch on one path.
type Subscription struct {
	path    string
	updates chan Snapshot
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// Updates delivers snapshots. Only the latest undelivered snapshot is kept,
// so a slow reader skips intermediate states rather than blocking writers.
// The channel is closed when the subscription ends.
func (s *Subscription) Updates() <-chan Snapshot { return s.updates }

// Err returns the read error that ended the subscription, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the subscription and waits for its goroutine to exit.
// It is safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) run(ctx context.Context, c *Client, changes <-chan string) {
	defer close(s.done)
	defer close(s.updates)

	var last Snapshot
	first := true
	for {
		snap, err := c.Get(ctx, s.path)
		if err != nil {
			if ctx.Err() == nil {
				logrus.WithFields(logrus.Fields{
					"path":  s.path,
					"error": err,
				}).Warn("Subscription read failed")
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}
		if first || !reflect.DeepEqual(snap.value, last.value) {
			s.deliver(snap)
			last, first = snap, false
		}

		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
		}
		// Fold any signals that arrived meanwhile into the next read.
		for drained := false; !drained; {
			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
			default:
				drained = true
			}
		}
	}
}

// deliver replaces any snapshot the reader has not taken yet.
func (s *Subscription) deliver(snap Snapshot) {
	select {
	case s.updates <- snap:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- snap
}
