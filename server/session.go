package server

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salesvision/salesvision/ingest"
)

// ============================================================================
// SESSIONS — Per-Browser Dataset State
// ============================================================================
// The clean record collection lives in process memory for the duration of a
// session and is superseded by the next upload. Entries expire after the
// configured TTL: expired sessions read as absent, and every put sweeps
// them out so the registry cannot grow past the set of live sessions. One
// handler processes one upload at a time for a given session, so the only
// locking needed is around the registry map itself.
// ============================================================================

const (
	sessionCookie     = "sv_session"
	defaultSessionTTL = 24 * time.Hour
)

type session struct {
	UploadID string
	UserID   string
	Records  []ingest.Record
}

type sessionEntry struct {
	sess    *session
	touched time.Time
}

type sessionRegistry struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*sessionEntry
}

func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &sessionRegistry{ttl: ttl, entries: make(map[string]*sessionEntry)}
}

func (r *sessionRegistry) get(id string) *session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok || time.Since(e.touched) > r.ttl {
		return nil
	}
	return e.sess
}

func (r *sessionRegistry) put(id string, s *session) {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.entries {
		if now.Sub(e.touched) > r.ttl {
			delete(r.entries, key)
		}
	}
	r.entries[id] = &sessionEntry{sess: s, touched: now}
}

func (r *sessionRegistry) drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// cookieMaxAge is the session TTL in whole seconds.
func (s *Server) cookieMaxAge() int {
	if s.cfg.Session.TTLSeconds > 0 {
		return s.cfg.Session.TTLSeconds
	}
	return int(defaultSessionTTL / time.Second)
}

// sessionID returns the request's session id, issuing a cookie when absent.
func (s *Server) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(sessionCookie, id, s.cookieMaxAge(), "/", "", false, true)
	return id
}

// currentSession returns the session state, creating it on first touch.
func (s *Server) currentSession(c *gin.Context) (string, *session) {
	id := s.sessionID(c)
	sess := s.sessions.get(id)
	if sess == nil {
		sess = &session{}
		s.sessions.put(id, sess)
	}
	return id, sess
}
