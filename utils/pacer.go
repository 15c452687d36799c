package utils

import (
	"sync"
	"time"
)

// Pacer enforces a minimum interval between page visits. Scraping is
// sequential, so this is just a paced sleep between requests to one dealer
// site.
type Pacer struct {
	minInterval time.Duration
	lastRequest time.Time
}

// NewPacer creates a Pacer with the given minimum interval between requests.
func NewPacer(minInterval time.Duration) *Pacer {
	return &Pacer{minInterval: minInterval}
}

// Wait sleeps until at least the configured interval has passed since the
// previous call, then records the current time.
func (p *Pacer) Wait() {
	elapsed := time.Since(p.lastRequest)
	if !p.lastRequest.IsZero() && elapsed < p.minInterval {
		time.Sleep(p.minInterval - elapsed)
	}
	p.lastRequest = time.Now()
}

// URLSet is a thread-safe set for tracking visited URLs.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains returns true if the URL has already been visited.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
