package drafts

import (
	"context"
	"errors"
	"sync"
	"time"

	"checkout-flow/models"
)

// Slot is the name of the persisted draft slot
const Slot = "currentOrder"

// ErrNotFound is returned when a session has no draft in flight
var ErrNotFound = errors.New("draft not found")

// Store keeps at most one in-flight draft per session. Save overwrites
// any stale entry.
type Store interface {
	Save(ctx context.Context, sessionID string, draft models.OrderDraft) error
	Load(ctx context.Context, sessionID string) (*models.OrderDraft, error)
	Clear(ctx context.Context, sessionID string) error
}

type entry struct {
	draft   models.OrderDraft
	savedAt time.Time
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, draft models.OrderDraft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = entry{draft: draft, savedAt: s.now()}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*models.OrderDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	d := e.draft
	return &d, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Sweep drops drafts saved before the cutoff and returns how many went.
func (s *MemoryStore) Sweep(olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if e.savedAt.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval, olderThan time.Duration, onSweep func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
		if n := s.Sweep(olderThan); n > 0 && onSweep != nil {
			onSweep(n)
		}
	}
}
