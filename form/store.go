package form

import (
	"sync"
	"time"

	"release-service/models"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// Store is the in-memory session registry. Drafts are never persisted;
// an idle session is swept and its draft discarded.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create opens a new session bound to the given directory snapshot.
func (st *Store) Create(dir *models.Directory, city string, lookupMin int) *Session {
	sess := NewSession(uuid.NewString(), dir, city, lookupMin)

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	log.WithField("session", sess.ID).Info("session.create")
	return sess
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

// Sweep drops sessions idle for longer than the store TTL and returns
// how many were removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if sess.idleSince(now, st.ttl) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.WithField("count", removed).Info("session.sweep")
	}
	return removed
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
