package wizard

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"
)

// MinSearchLength is the shortest term that reaches the API.
const MinSearchLength = 2

// SearchFunc queries a lookup endpoint.
type SearchFunc[T any] func(ctx context.Context, term string) ([]T, error)

// Search holds the dropdown state of one search-as-you-type field.
//
// Every keystroke takes a new sequence number from Begin. A response is
// applied only when its sequence number is still the latest one issued, so a
// slow reply for an older term can never overwrite newer results.
type Search[T any] struct {
	mu       sync.Mutex
	minChars int
	seq      uint64
	term     string
	results  []T
	err      error
	loading  bool
}

func NewSearch[T any]() *Search[T] {
	return &Search[T]{minChars: MinSearchLength}
}

// Begin records term as the current input. It returns the sequence number the
// query must carry and whether a query should be issued at all. Terms shorter
// than MinSearchLength clear the results without a round trip.
func (s *Search[T]) Begin(term string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.term = term
	if utf8.RuneCountInString(strings.TrimSpace(term)) < s.minChars {
		s.results = nil
		s.err = nil
		s.loading = false
		return s.seq, false
	}
	s.loading = true
	return s.seq, true
}

// IsLatest reports whether seq is the most recent sequence number. Debounce
// timers use it to drop keystrokes that have been superseded.
func (s *Search[T]) IsLatest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}

// Apply stores a response. Stale responses are discarded and Apply returns false.
func (s *Search[T]) Apply(seq uint64, results []T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return false
	}
	s.loading = false
	if err != nil {
		s.results = nil
		s.err = err
		return true
	}
	s.results = results
	s.err = nil
	return true
}

// Run issues one query for term through fn and applies the response.
func (s *Search[T]) Run(ctx context.Context, term string, fn SearchFunc[T]) (bool, error) {
	seq, ok := s.Begin(term)
	if !ok {
		return true, nil
	}
	results, err := fn(ctx, term)
	return s.Apply(seq, results, err), err
}

// Clear closes the dropdown and invalidates any query still in flight.
func (s *Search[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.results = nil
	s.err = nil
	s.loading = false
}

// Reset clears the dropdown and the typed term.
func (s *Search[T]) Reset() {
	s.Clear()
	s.mu.Lock()
	s.term = ""
	s.mu.Unlock()
}

func (s *Search[T]) Results() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return nil
	}
	out := make([]T, len(s.results))
	copy(out, s.results)
	return out
}

func (s *Search[T]) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

func (s *Search[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Search[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Open reports whether the dropdown has anything to show.
func (s *Search[T]) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results) > 0
}
