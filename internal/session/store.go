// Package session keeps per-conversation state: rolling message history and
// cached analytics snapshots. Sessions live only for the process lifetime;
// the store bounds both the number of sessions (LRU eviction) and each
// session's history length.
package session

import (
	"container/list"
	"sync"
	"time"

	"github.com/ecerdem/stokbot/internal/stock"
	"github.com/ecerdem/stokbot/internal/storage"
)

const (
	// maxHistory bounds a session's turn history; oldest turns are evicted
	// first.
	maxHistory = 20

	// DefaultStaleAfter is how long a cached analytics snapshot is trusted
	// before callers should refetch.
	DefaultStaleAfter = 5 * time.Minute
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CategorySnapshot caches the most recent category fetch for a session.
type CategorySnapshot struct {
	Category string
	Items    []storage.Item
}

// Session is the mutable state of one conversation. All methods are safe for
// concurrent use; two simultaneous turns for the same conversation serialize
// on the session's own lock.
type Session struct {
	id string

	mu          sync.Mutex
	turns       []Turn
	critical    []stock.CriticalItem
	hasCritical bool
	category    *CategorySnapshot
	lastFetch   time.Time
}

// ID returns the conversation identifier.
func (s *Session) ID() string {
	return s.id
}

// AppendTurn records one message, evicting the oldest turn once the history
// exceeds its bound.
func (s *Session) AppendTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, Turn{Role: role, Content: content})
	if len(s.turns) > maxHistory {
		s.turns = append(s.turns[:0], s.turns[len(s.turns)-maxHistory:]...)
	}
}

// History returns a copy of up to the last n turns.
func (s *Session) History(n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if len(s.turns) > n {
		start = len(s.turns) - n
	}
	out := make([]Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// SetCriticalSnapshot caches the latest critical-stock fetch and stamps the
// fetch time.
func (s *Session) SetCriticalSnapshot(items []stock.CriticalItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.critical = items
	s.hasCritical = true
	s.lastFetch = time.Now()
}

// CriticalSnapshot returns the cached critical-stock records and whether a
// snapshot exists. An empty fetch still counts as an existing snapshot.
func (s *Session) CriticalSnapshot() ([]stock.CriticalItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.critical, s.hasCritical
}

// SetCategorySnapshot caches the latest category fetch and stamps the fetch
// time.
func (s *Session) SetCategorySnapshot(category string, items []storage.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = &CategorySnapshot{Category: category, Items: items}
	s.lastFetch = time.Now()
}

// CategorySnapshot returns the cached category fetch, if any.
func (s *Session) CategorySnapshot() (CategorySnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.category == nil {
		return CategorySnapshot{}, false
	}
	return *s.category, true
}

// Stamp records a data fetch that does not cache items (overall stats).
func (s *Session) Stamp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFetch = time.Now()
}

// IsStale reports whether the cached snapshots are older than window, or no
// fetch has happened yet.
func (s *Session) IsStale(window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFetch.IsZero() {
		return true
	}
	return time.Since(s.lastFetch) > window
}

type entry struct {
	sess     *Session
	lastSeen time.Time
	elem     *list.Element
}

// Store is a capacity-bounded, TTL-swept container of sessions keyed by
// conversation id. Least-recently-used sessions are evicted beyond the
// capacity; sessions idle past the TTL are dropped on access.
type Store struct {
	mu          sync.Mutex
	maxSessions int
	ttl         time.Duration
	sessions    map[string]*entry
	order       *list.List // front = most recently used
	now         func() time.Time
}

// New creates a session store holding at most maxSessions sessions, dropping
// sessions idle longer than ttl. Non-positive arguments fall back to
// defaults.
func New(maxSessions int, ttl time.Duration) *Store {
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		maxSessions: maxSessions,
		ttl:         ttl,
		sessions:    make(map[string]*entry),
		order:       list.New(),
		now:         time.Now,
	}
}

// GetOrCreate returns the session for id, creating and registering an empty
// one on first sight.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sweepLocked()

	if e, ok := st.sessions[id]; ok {
		e.lastSeen = st.now()
		st.order.MoveToFront(e.elem)
		return e.sess
	}

	e := &entry{
		sess:     &Session{id: id},
		lastSeen: st.now(),
	}
	e.elem = st.order.PushFront(id)
	st.sessions[id] = e

	for len(st.sessions) > st.maxSessions {
		st.evictOldestLocked()
	}

	return e.sess
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) sweepLocked() {
	cutoff := st.now().Add(-st.ttl)
	for {
		back := st.order.Back()
		if back == nil {
			return
		}
		id := back.Value.(string)
		e := st.sessions[id]
		if e.lastSeen.After(cutoff) {
			return
		}
		st.order.Remove(back)
		delete(st.sessions, id)
	}
}

func (st *Store) evictOldestLocked() {
	back := st.order.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	st.order.Remove(back)
	delete(st.sessions, id)
}
