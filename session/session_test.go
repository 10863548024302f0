package session

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/neonwhisper/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	closed int
}

func (m *MockConnection) Send(event string, payload any) error        { return nil }
func (m *MockConnection) ReadEnvelope() (*network.Envelope, error)    { return nil, nil }
func (m *MockConnection) Close() error                                { m.closed++; return nil }
func (m *MockConnection) RemoteAddr() net.Addr                        { return &net.TCPAddr{} }

func TestNewSession(t *testing.T) {
	a := NewSession(&MockConnection{}, 0, 0)
	b := NewSession(&MockConnection{}, 0, 0)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, a.RoomCode())
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sess := NewSession(&MockConnection{}, 0, 0)

	manager.Add(sess)
	assert.Equal(t, 1, manager.Count())

	got, exists := manager.Get(sess.ID)
	require.True(t, exists)
	assert.Same(t, sess, got)

	manager.Remove(sess.ID)
	assert.Zero(t, manager.Count())

	_, exists = manager.Get(sess.ID)
	assert.False(t, exists)
}

func TestManager_CloseAll(t *testing.T) {
	manager := NewManager()
	conns := []*MockConnection{{}, {}}
	for _, c := range conns {
		manager.Add(NewSession(c, 0, 0))
	}

	manager.CloseAll()
	for _, c := range conns {
		assert.Equal(t, 1, c.closed)
	}
}

func TestSession_RoomCode(t *testing.T) {
	sess := NewSession(&MockConnection{}, 0, 0)

	sess.SetRoomCode("ABCDEF")
	assert.Equal(t, "ABCDEF", sess.RoomCode())

	sess.ClearRoomCode("ZZZZZZ")
	assert.Equal(t, "ABCDEF", sess.RoomCode(), "clearing another room keeps the current one")

	sess.ClearRoomCode("ABCDEF")
	assert.Empty(t, sess.RoomCode())
}

func TestSession_Allow(t *testing.T) {
	limited := NewSession(&MockConnection{}, 1, 3)
	allowed := 0
	for i := 0; i < 10; i++ {
		if limited.Allow() {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed, "burst then throttled")

	unlimited := NewSession(&MockConnection{}, 0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.Allow())
	}
	assert.False(t, unlimited.LastActive().IsZero())
}
