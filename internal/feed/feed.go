// Package feed is the client side of the board: the in-memory job list a
// connected session keeps, fed by the initial fetch plus broadcast events.
package feed

import (
	"sync"

	"jobboard-engine/internal/domain"
)

// Feed holds jobs newest first. Inserts dedupe by internal id, so a
// re-broadcast or a race with a full refresh cannot double an entry.
type Feed struct {
	mu    sync.RWMutex
	jobs  []domain.Job
	known map[string]struct{}
}

func New() *Feed {
	return &Feed{known: make(map[string]struct{})}
}

// Replace swaps in a full refresh, e.g. the initial list fetch.
func (f *Feed) Replace(jobs []domain.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.jobs = make([]domain.Job, 0, len(jobs))
	f.known = make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		if _, dup := f.known[j.ID]; dup {
			continue
		}
		f.known[j.ID] = struct{}{}
		f.jobs = append(f.jobs, j)
	}
}

// Prepend adds a freshly broadcast job to the front. Returns false if the
// job was already known.
func (f *Feed) Prepend(j domain.Job) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.known[j.ID]; dup {
		return false
	}
	f.known[j.ID] = struct{}{}
	f.jobs = append([]domain.Job{j}, f.jobs...)
	return true
}

// Jobs returns a copy of the current list, newest first.
func (f *Feed) Jobs() []domain.Job {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]domain.Job, len(f.jobs))
	copy(out, f.jobs)
	return out
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.jobs)
}
