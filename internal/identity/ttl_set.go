package identity

import (
	"sync"
	"time"
)

// ttlSet ключи с временем жизни. Просроченные записи вычищаются при каждой записи,
// поэтому фоновая горутина не нужна.
type ttlSet struct {
	mu      sync.RWMutex
	entries map[string]ttlEntry
	now     func() time.Time
}

type ttlEntry struct {
	value     string
	expiresAt time.Time
}

func newTTLSet() *ttlSet {
	return &ttlSet{entries: make(map[string]ttlEntry), now: time.Now}
}

func (s *ttlSet) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (s *ttlSet) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *ttlSet) Add(key, value string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = ttlEntry{value: value, expiresAt: expiresAt}
}

func (s *ttlSet) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *ttlSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
