package watch

import (
	"sync"
	"time"
)

// CategoryState is the outcome of the last reload of one category.
type CategoryState struct {
	LastRunTime    time.Time `json:"last_run_time"`
	LastRunSuccess bool      `json:"last_run_success"`
	Loaded         int       `json:"loaded"`
	Failed         int       `json:"failed"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// Tracker records reload outcomes per category. Built-ins are re-read on
// every start, so the record lives only as long as the process.
type Tracker struct {
	mu     sync.RWMutex
	states map[string]CategoryState
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]CategoryState)}
}

// Get returns the state for a category.
func (t *Tracker) Get(categoryID string) (CategoryState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.states[categoryID]
	return state, ok
}

// Update replaces the state for a category.
func (t *Tracker) Update(categoryID string, state CategoryState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[categoryID] = state
}

// ShouldRun reports whether interval has passed since the category last ran.
// A category that never ran is due immediately.
func (t *Tracker) ShouldRun(categoryID string, interval time.Duration, now time.Time) bool {
	state, ok := t.Get(categoryID)
	if !ok {
		return true
	}
	return now.Sub(state.LastRunTime) >= interval
}

// NextRunTime returns when the category is next due.
func (t *Tracker) NextRunTime(categoryID string, interval time.Duration, now time.Time) time.Time {
	state, ok := t.Get(categoryID)
	if !ok {
		return now
	}
	return state.LastRunTime.Add(interval)
}

// All returns a copy of every recorded state.
func (t *Tracker) All() map[string]CategoryState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make(map[string]CategoryState, len(t.states))
	for k, v := range t.states {
		result[k] = v
	}
	return result
}
