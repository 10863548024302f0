// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/wfunc/neonwhisper/network"
)

// Session is one connected client. Its ID doubles as the participant id in
// rooms, so identity lasts exactly as long as the connection.
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	lastActive time.Time
	roomCode   string
	limiter    *rate.Limiter
	mutex      sync.RWMutex
}

// NewSession wraps conn with a fresh uuid and an inbound rate limit of limit
// events per second with the given burst. A zero limit disables limiting.
func NewSession(conn network.Connection, limit float64, burst int) *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
	if limit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
	return s
}

// Allow records inbound activity and reports whether the event fits the rate limit.
func (s *Session) Allow() bool {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
	return s.limiter == nil || s.limiter.Allow()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

// RoomCode is the room this session currently sits in, or "".
func (s *Session) RoomCode() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomCode
}

func (s *Session) SetRoomCode(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomCode = code
}

// ClearRoomCode forgets the room only if it is still code.
func (s *Session) ClearRoomCode(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.roomCode == code {
		s.roomCode = ""
	}
}

func (s *Session) Send(event string, payload any) error {
	return s.Conn.Send(event, payload)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager indexes live sessions by id.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// CloseAll closes every connection, used on shutdown.
func (m *Manager) CloseAll() {
	m.mutex.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mutex.RUnlock()

	for _, s := range sessions {
		_ = s.Close()
	}
}
