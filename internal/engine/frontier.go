package engine

import (
	"sort"
	"sync"

	"github.com/IshaanNene/SEOCrawl/internal/urlnorm"
)

// Frontier holds the crawl's visited and pending URL sets. A URL is in at
// most one of them; Offer and Next are atomic with respect to each other.
type Frontier struct {
	mu       sync.Mutex
	visited  map[string]struct{}
	pending  map[string]struct{}
	order    []string
	inflight int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		visited: make(map[string]struct{}),
		pending: make(map[string]struct{}),
	}
}

// Offer adds rawURL to the pending set unless it was already seen. It
// reports whether the URL was added. URLs are normalized first.
func (f *Frontier) Offer(rawURL string) bool {
	u, err := urlnorm.Normalize(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.visited[u]; ok {
		return false
	}
	if _, ok := f.pending[u]; ok {
		return false
	}
	f.pending[u] = struct{}{}
	f.order = append(f.order, u)
	return true
}

// Next moves one pending URL to the visited set and returns it. The caller
// must call Done once it has finished with the URL.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.order) > 0 {
		u := f.order[0]
		f.order[0] = ""
		f.order = f.order[1:]
		if _, ok := f.pending[u]; !ok {
			continue
		}
		delete(f.pending, u)
		f.visited[u] = struct{}{}
		f.inflight++
		return u, true
	}
	return "", false
}

// Done marks a URL handed out by Next as finished.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inflight > 0 {
		f.inflight--
	}
}

// Requeue returns a URL handed out by Next to the pending set. It is used
// when a crawl stops before the URL was fetched.
func (f *Frontier) Requeue(u string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.visited[u]; !ok {
		return
	}
	delete(f.visited, u)
	f.pending[u] = struct{}{}
	f.order = append(f.order, u)
}

// MarkVisited records URLs as visited without crawling them.
func (f *Frontier) MarkVisited(urls ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, raw := range urls {
		u, err := urlnorm.Normalize(raw)
		if err != nil {
			continue
		}
		delete(f.pending, u)
		f.visited[u] = struct{}{}
	}
}

// Idle reports whether nothing is pending and no URL is being processed, so
// no new URL can appear.
func (f *Frontier) Idle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending) == 0 && f.inflight == 0
}

// Len returns the number of pending URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Visited reports whether u has been taken by Next or marked visited.
func (f *Frontier) Visited(u string) bool {
	if n, err := urlnorm.Normalize(u); err == nil {
		u = n
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.visited[u]
	return ok
}

// Pending reports whether u is waiting to be crawled.
func (f *Frontier) Pending(u string) bool {
	if n, err := urlnorm.Normalize(u); err == nil {
		u = n
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[u]
	return ok
}

// Snapshot returns sorted copies of both sets for checkpointing.
func (f *Frontier) Snapshot() (visited, pending []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	visited = make([]string, 0, len(f.visited))
	for u := range f.visited {
		visited = append(visited, u)
	}
	pending = make([]string, 0, len(f.pending))
	for u := range f.pending {
		pending = append(pending, u)
	}
	sort.Strings(visited)
	sort.Strings(pending)
	return visited, pending
}

// Restore loads a checkpointed state. Pending URLs that are also visited
// stay visited.
func (f *Frontier) Restore(visited, pending []string) {
	f.MarkVisited(visited...)
	for _, u := range pending {
		f.Offer(u)
	}
}
