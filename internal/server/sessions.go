package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsvensson/pptxpalette/internal/pipeline"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "pptxpalette_session"

const defaultSessionTTL = 2 * time.Hour

// session pairs one browser with its controller and websocket connections.
type session struct {
	id         string
	controller *pipeline.Controller
	conns      *connManager

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// stateMessage is pushed to the page on every controller transition.
type stateMessage struct {
	Type     string `json:"type"`
	State    string `json:"state"`
	Name     string `json:"name,omitempty"`
	CanBuild bool   `json:"canBuild"`
	Error    string `json:"error,omitempty"`
}

func newStateMessage(ev pipeline.Event) stateMessage {
	msg := stateMessage{
		Type:     "state",
		State:    ev.State.String(),
		Name:     ev.Name,
		CanBuild: ev.State == pipeline.Ready,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return msg
}

// sessionStore holds the sessions of the server. Sessions idle for longer
// than ttl are dropped when a new one is created.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// get returns the session with id, if any.
func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.touch(st.now())
	}
	return s, ok
}

// create starts a new session wired to broadcast its state changes.
func (st *sessionStore) create() *session {
	s := &session{
		id:         uuid.NewString(),
		controller: pipeline.NewController(),
		conns:      newConnManager(),
		lastSeen:   st.now(),
	}
	s.controller.Subscribe(func(ev pipeline.Event) {
		s.conns.broadcast(newStateMessage(ev))
	})

	st.mu.Lock()
	st.evictLocked()
	st.sessions[s.id] = s
	MetricSessionsActive.Set(float64(len(st.sessions)))
	st.mu.Unlock()

	log.Debugf("new session %s", s.id)
	return s
}

// evictLocked must be called with st.mu held.
func (st *sessionStore) evictLocked() {
	now := st.now()
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl && s.conns.len() == 0 {
			s.controller.Clear()
			delete(st.sessions, id)
			log.Debugf("expired session %s", id)
		}
	}
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// fromRequest returns the session named by the request cookie, creating one
// and setting the cookie when there is none.
func (st *sessionStore) fromRequest(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if s, ok := st.get(c.Value); ok {
			return s
		}
	}
	s := st.create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}
