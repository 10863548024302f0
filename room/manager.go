package room

import (
	"context"
	crand "crypto/rand"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/neonwhisper/game"
	"github.com/wfunc/neonwhisper/logger"
	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/timer"
)

// CodeAlphabet leaves out 0/O and 1/I so codes survive being read aloud.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const maxCodeAttempts = 100

var ErrCodeSpaceExhausted = errors.New("could not generate a unique room code")

type Options struct {
	CodeLength int
	Limits     game.Limits
	Words      game.WordPicker
	// Rand builds the random source of a new room. Defaults to a PCG seeded
	// from the runtime's random source.
	Rand    func() game.Rand
	Mailbox int
	// OnCountChange is told the number of active rooms after every change.
	OnCountChange func(n int)
}

// Manager is the registry from room code to room actor.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
	opts  Options
}

func NewRoomManager(opts Options) *Manager {
	if opts.CodeLength <= 0 {
		opts.CodeLength = 6
	}
	if opts.Limits == (game.Limits{}) {
		opts.Limits = game.DefaultLimits
	}
	if opts.Rand == nil {
		opts.Rand = func() game.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	if opts.Mailbox <= 0 {
		opts.Mailbox = 32
	}
	return &Manager{
		rooms: make(map[string]*Room),
		opts:  opts,
	}
}

// NormalizeCode upper-cases and trims user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GenerateCode draws a code of length characters from CodeAlphabet.
func GenerateCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := crand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		// len(CodeAlphabet) divides 256, so the modulo is unbiased.
		buf[i] = CodeAlphabet[int(b)%len(CodeAlphabet)]
	}
	return string(buf), nil
}

// CreateRoom registers a new room hosted by host under a fresh unique code.
func (m *Manager) CreateRoom(host models.Participant, settings game.Settings) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var code string
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return nil, ErrCodeSpaceExhausted
		}
		c, err := GenerateCode(m.opts.CodeLength)
		if err != nil {
			return nil, err
		}
		if _, taken := m.rooms[c]; !taken {
			code = c
			break
		}
	}

	state := game.NewRoom(code, host, settings, m.opts.Limits, m.opts.Words, m.opts.Rand())
	r := newRoom(state, m.opts.Mailbox)
	m.rooms[code] = r
	m.notifyLocked()

	logger.Log.Infow("room created", "room", code, "host", host.ID)
	return r, nil
}

func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, exists := m.rooms[NormalizeCode(code)]
	return r, exists
}

// RemoveRoom unregisters and stops a room.
func (m *Manager) RemoveRoom(code string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.removeLocked(NormalizeCode(code))
}

func (m *Manager) removeLocked(code string) {
	if r, exists := m.rooms[code]; exists {
		r.Close()
		delete(m.rooms, code)
		m.notifyLocked()
	}
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

func (m *Manager) notifyLocked() {
	if m.opts.OnCountChange != nil {
		m.opts.OnCountChange(len(m.rooms))
	}
}

func (m *Manager) snapshot() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// RemoveIfEmpty retires and unregisters r when nobody is left in it.
func (m *Manager) RemoveIfEmpty(ctx context.Context, r *Room) bool {
	retired, err := r.retireIfEmpty(ctx)
	if err != nil || !retired {
		return false
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.rooms[r.Code] != r {
		return false
	}
	m.removeLocked(r.Code)
	return true
}

// Reap removes every room without participants and returns how many went.
func (m *Manager) Reap(ctx context.Context) int {
	reaped := 0
	for _, r := range m.snapshot() {
		if m.RemoveIfEmpty(ctx, r) {
			reaped++
		}
	}
	if reaped > 0 {
		logger.Log.Infow("reaped empty rooms", "count", reaped, "active", m.Count())
	}
	return reaped
}

// StartReaper schedules Reap every interval on s and returns the task id.
func (m *Manager) StartReaper(s *timer.Scheduler, interval time.Duration) int64 {
	return s.Every(interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		m.Reap(ctx)
	})
}

// CloseAll stops every room, used on shutdown.
func (m *Manager) CloseAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for code := range m.rooms {
		m.removeLocked(code)
	}
}
