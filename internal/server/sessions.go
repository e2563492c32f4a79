package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oakwood-commons/jsontable/internal/viewer"
)

// DefaultSessionTTL expires sessions idle for longer.
const DefaultSessionTTL = 30 * time.Minute

// session is one browser's table. The viewer is not safe for concurrent use,
// so every request holds mu while it touches v.
type session struct {
	mu   sync.Mutex
	id   string
	v    *viewer.Viewer
	seen time.Time
}

type sessions struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]*session
}

func newSessions(ttl time.Duration, now func() time.Time) *sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &sessions{ttl: ttl, now: now, m: make(map[string]*session)}
}

func (s *sessions) add(v *viewer.Viewer) *session {
	sess := &session{id: uuid.New().String(), v: v, seen: s.now()}
	s.mu.Lock()
	s.m[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// get returns a live session and marks it used. Expired sessions are
// dropped.
func (s *sessions) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.seen) > s.ttl {
		delete(s.m, id)
		return nil, false
	}
	sess.seen = now
	return sess, true
}

// sweep drops every expired session and returns how many went.
func (s *sessions) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.m {
		if now.Sub(sess.seen) > s.ttl {
			delete(s.m, id)
			n++
		}
	}
	return n
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
