package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce collapses the burst of events produced by one save.
var WatchDebounce = 100 * time.Millisecond

// Event reports that the identity in the store changed.
type Event struct {
	SignedIn bool
	Email    string
	Err      error
}

type pathStore interface {
	Path() string
}

// Watch observes the session file and reports sign-ins and sign-outs made by
// other processes. The session is refreshed before each event is sent. The
// channel is closed when ctx is done.
func (s *Session) Watch(ctx context.Context) (<-chan Event, error) {
	ps, ok := s.store.(pathStore)
	if !ok {
		return nil, fmt.Errorf("session store %T cannot be watched", s.store)
	}
	path := filepath.Clean(ps.Path())
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// The directory is watched because saves replace the file by rename.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	events := make(chan Event, 1)
	go s.watch(ctx, watcher, path, events)
	return events, nil
}

func (s *Session) watch(ctx context.Context, watcher *fsnotify.Watcher, path string, events chan<- Event) {
	defer close(events)
	defer watcher.Close()

	last := s.GetAuthHeader()
	timer := time.NewTimer(WatchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			timer.Reset(WatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if !send(Event{Err: err}) {
				return
			}

		case <-timer.C:
			if err := s.Refresh(); err != nil {
				if !send(Event{Err: err}) {
					return
				}
				continue
			}
			current := s.GetAuthHeader()
			if current == last {
				continue
			}
			last = current
			ev := Event{SignedIn: s.SignedIn()}
			if id, err := s.Identity(); err == nil {
				ev.Email = id.Email
			}
			if !send(ev) {
				return
			}
		}
	}
}
