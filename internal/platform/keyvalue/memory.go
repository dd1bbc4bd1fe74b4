package keyvalue

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryTxKey struct{}

// memoryJournal records the value each key held before a transaction first wrote it, and the
// value the transaction left behind. Rollback restores a key only while it still holds the
// transaction's value, so writes made outside the transaction survive.
type memoryJournal struct {
	entries map[string]*journalEntry
}

type journalEntry struct {
	before    []byte
	hadBefore bool
	after     []byte
	hasAfter  bool
}

// MemoryStore keeps values in process memory. Transactions are serialised and roll back on error.
type MemoryStore struct {
	txMu sync.Mutex

	mu     sync.RWMutex
	values map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(value), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(ctx, key, bytes.Clone(value), true)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(ctx, key, nil, false)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(bytes.Clone(s.values[key]))
	if err != nil {
		return err
	}
	if next == nil {
		s.setLocked(ctx, key, nil, false)
		return nil
	}
	s.setLocked(ctx, key, bytes.Clone(next), true)
	return nil
}

// setLocked writes or removes key and journals the change when ctx carries a transaction.
// Callers hold mu.
func (s *MemoryStore) setLocked(ctx context.Context, key string, value []byte, present bool) {
	if journal, ok := ctx.Value(memoryTxKey{}).(*memoryJournal); ok {
		entry, seen := journal.entries[key]
		if !seen {
			before, had := s.values[key]
			entry = &journalEntry{before: before, hadBefore: had}
			journal.entries[key] = entry
		}
		entry.after, entry.hasAfter = value, present
	}
	if !present {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memoryTxKey{}).(*memoryJournal); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	journal := &memoryJournal{entries: make(map[string]*journalEntry)}
	if err := fn(context.WithValue(ctx, memoryTxKey{}, journal)); err != nil {
		s.rollback(journal)
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) rollback(journal *memoryJournal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range journal.entries {
		current, present := s.values[key]
		if present != entry.hasAfter || !bytes.Equal(current, entry.after) {
			// Overwritten outside the transaction.
			continue
		}
		if !entry.hadBefore {
			delete(s.values, key)
			continue
		}
		s.values[key] = entry.before
	}
}
