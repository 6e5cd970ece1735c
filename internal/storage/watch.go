package storage

import (
	"context"
)

// WatchTopScores returns a live view of the ranking.
// The current top N is sent first, then the full list again after every
// committed insert. The channel is closed once ctx is done or the store closes;
// nothing is sent after that.
func (s *Store) WatchTopScores(ctx context.Context, limit int) <-chan []ScoreRecord {
	out := make(chan []ScoreRecord)

	// Register before the first read so an insert racing with it still
	// triggers a re-read.
	changed := make(chan struct{}, 1)
	s.watchMu.Lock()
	s.watchers[changed] = struct{}{}
	s.watchMu.Unlock()

	go func() {
		defer close(out)
		defer func() {
			s.watchMu.Lock()
			delete(s.watchers, changed)
			s.watchMu.Unlock()
		}()

		for {
			if ctx.Err() != nil || s.isClosed() {
				return
			}

			entries, err := s.TopScores(ctx, limit)
			if err != nil {
				if ctx.Err() == nil && !s.isClosed() {
					s.logger.Error("cannot refresh ranking", "error", err)
				}
			} else {
				select {
				case out <- entries:
				case <-ctx.Done():
					return
				case <-s.closed:
					return
				}
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			case <-s.closed:
				return
			}
		}
	}()

	return out
}

// notifyWatchers wakes every live watcher. Pending wake-ups are not stacked:
// a watcher that is behind re-reads the table once and sees all inserts.
func (s *Store) notifyWatchers() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
