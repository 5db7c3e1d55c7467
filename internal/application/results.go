package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
	"github.com/google/uuid"
)

// SubmitFunc performs the backend call for one submission.
type SubmitFunc func(ctx context.Context) (domain.Payload, error)

// HistoryFetchFunc loads prior completed results for one tool.
type HistoryFetchFunc func(ctx context.Context) ([]domain.HistoryRecord, error)

// ResultSnapshot is an immutable view of the collection handed to renderers.
type ResultSnapshot struct {
	Entries  []domain.Entry
	Selected int
}

func (s ResultSnapshot) Empty() bool { return len(s.Entries) == 0 }

func (s ResultSnapshot) Active() (domain.Entry, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Entries) {
		return domain.Entry{}, false
	}
	return s.Entries[s.Selected], true
}

// ResultStore owns the ordered entry collection for a single tool surface.
// Entries are newest-first; the selection is an explicit index into the
// current order. Every mutation replaces the backing slice rather than
// editing it in place, so snapshots taken by renderers are never invalidated
// by concurrent resolutions.
type ResultStore struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	entries  []domain.Entry
	selected int
	clock    ports.Clock
	newID    func() domain.EntryID
	onChange func(ResultSnapshot)

	lifetime context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

func NewResultStore(clock ports.Clock) *ResultStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	lifetime, cancel := context.WithCancel(context.Background())

	return &ResultStore{
		clock:    clock,
		newID:    func() domain.EntryID { return domain.EntryID(uuid.NewString()) },
		lifetime: lifetime,
		cancel:   cancel,
	}
}

// SetOnChange registers a single observer notified after every mutation with
// a fresh snapshot. Snapshots arrive in mutation order. The observer runs on
// the mutating goroutine and must not call back into the store synchronously.
func (s *ResultStore) SetOnChange(fn func(ResultSnapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Submit allocates a processing entry, prepends it, moves the selection to it
// and runs the backend call in the background. The call's resolution patches
// the entry by id, so concurrent submissions may complete in any order
// without corrupting each other. A later-completing older submission does not
// move the selection back.
func (s *ResultStore) Submit(name string, call SubmitFunc) domain.EntryID {
	entry := domain.Entry{
		ID:        s.newID(),
		Name:      name,
		Status:    domain.StatusProcessing,
		CreatedAt: s.clock.Now(),
	}

	s.mu.Lock()
	next := make([]domain.Entry, 0, len(s.entries)+1)
	next = append(next, entry)
	next = append(next, s.entries...)
	s.entries = next
	s.selected = 0
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		payload, err := call(s.lifetime)
		s.resolve(entry.ID, payload, err)
	}()

	return entry.ID
}

// resolve patches the entry in place exactly once. Results arriving after
// Close, or for an entry the user already deleted, are dropped.
func (s *ResultStore) resolve(id domain.EntryID, payload domain.Payload, callErr error) {
	s.mu.Lock()
	if s.lifetime.Err() != nil {
		s.mu.Unlock()
		return
	}

	idx := -1
	for i := range s.entries {
		if s.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	next := make([]domain.Entry, len(s.entries))
	copy(next, s.entries)
	if callErr != nil {
		next[idx].Status = domain.StatusError
		next[idx].Err = callErr.Error()
	} else {
		next[idx].Status = domain.StatusSuccess
		next[idx].Payload = payload
	}
	s.entries = next
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()
}

// Select moves the active entry. Out-of-range indexes leave the selection
// unchanged.
func (s *ResultStore) Select(index int) {
	s.mu.Lock()
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return
	}
	s.selected = index
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()
}

// Delete removes the entry. The selection is clamped so it stays within the
// shrunk collection and never goes negative.
func (s *ResultStore) Delete(id domain.EntryID) error {
	s.mu.Lock()
	idx := -1
	for i := range s.entries {
		if s.entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrEntryNotFound
	}

	next := make([]domain.Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	s.entries = next

	if s.selected >= len(s.entries) {
		s.selected = len(s.entries) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	return nil
}

// LoadHistory replaces the collection with prior completed results, all in
// success state. When focus names a loaded entry the selection jumps to it,
// otherwise it defaults to the most recent. A fetch failure leaves the
// collection empty; the caller logs and moves on.
func (s *ResultStore) LoadHistory(ctx context.Context, fetch HistoryFetchFunc, focus domain.EntryID) error {
	records, err := fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.entries = nil
		s.selected = 0
		notify := s.changedLocked()
		s.mu.Unlock()
		notify()
		return fmt.Errorf("fetch history: %w", err)
	}

	entries := make([]domain.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, record.Entry())
	}

	selected := 0
	for i := range entries {
		if focus != "" && entries[i].ID == focus {
			selected = i
			break
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.selected = selected
	notify := s.changedLocked()
	s.mu.Unlock()
	notify()

	return nil
}

func (s *ResultStore) Snapshot() ResultSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Wait blocks until every in-flight submission has resolved.
func (s *ResultStore) Wait() {
	s.inflight.Wait()
}

// Close ends the store's lifetime. In-flight calls are cancelled and any
// late-arriving results are ignored rather than applied.
func (s *ResultStore) Close() {
	s.cancel()
}

func (s *ResultStore) snapshotLocked() ResultSnapshot {
	entries := make([]domain.Entry, len(s.entries))
	copy(entries, s.entries)
	return ResultSnapshot{Entries: entries, Selected: s.selected}
}

// changedLocked hands off a notification for the current state. notifyMu is
// acquired while the state lock is still held, so observers receive snapshots
// in mutation order even when the resolutions that produced them race on the
// unlock.
func (s *ResultStore) changedLocked() func() {
	if s.onChange == nil {
		return func() {}
	}
	fn := s.onChange
	snapshot := s.snapshotLocked()
	s.notifyMu.Lock()
	return func() {
		defer s.notifyMu.Unlock()
		fn(snapshot)
	}
}
