package broadcast

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/neonwhisper/game"
	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/network"
	"github.com/wfunc/neonwhisper/session"
)

type sent struct {
	event string
	data  json.RawMessage
}

// recordingConn captures outbound events as JSON.
type recordingConn struct {
	mu   sync.Mutex
	out  []sent
	fail error
}

func (c *recordingConn) Send(event string, payload any) error {
	if c.fail != nil {
		return c.fail
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, sent{event: event, data: raw})
	return nil
}

func (c *recordingConn) ReadEnvelope() (*network.Envelope, error) { return nil, errors.New("closed") }
func (c *recordingConn) Close() error                             { return nil }
func (c *recordingConn) RemoteAddr() net.Addr                     { return &net.TCPAddr{} }

func (c *recordingConn) events() []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sent(nil), c.out...)
}

type stubWords struct{}

func (stubWords) Pick(d models.Difficulty) (models.WordEntry, error) {
	return models.WordEntry{Word: "metronome", Category: "Objects", Difficulty: d}, nil
}

// fixture builds a started three-player room whose participants are live sessions.
func fixture(t *testing.T, hint bool) (*RoomBroadcaster, *game.Room, map[string]*recordingConn) {
	t.Helper()
	sessions := session.NewManager()
	conns := map[string]*recordingConn{}
	var ids []string
	for i := 0; i < 3; i++ {
		c := &recordingConn{}
		s := session.NewSession(c, 0, 0)
		sessions.Add(s)
		conns[s.ID] = c
		ids = append(ids, s.ID)
	}

	g := game.NewRoom("QWERTY", models.Participant{ID: ids[0], Name: "a"},
		game.Settings{Difficulty: models.DifficultyHard, ImpostorHintEnabled: hint},
		game.DefaultLimits, stubWords{}, rand.New(rand.NewPCG(5, 6)))
	for _, id := range ids[1:] {
		require.NoError(t, g.Join(models.Participant{ID: id, Name: id}))
		g.ToggleReady(id)
	}
	require.NoError(t, g.Start(ids[0]))
	return NewRoomBroadcaster(sessions), g, conns
}

func TestBroadcastGameStarted_OnlyOwnRole(t *testing.T) {
	for _, hint := range []bool{true, false} {
		b, g, conns := fixture(t, hint)
		b.BroadcastGameStarted(g)

		for id, c := range conns {
			evs := c.events()
			require.Len(t, evs, 1)
			assert.Equal(t, network.EventGameStarted, evs[0].event)

			var msg models.GameStarted
			require.NoError(t, json.Unmarshal(evs[0].data, &msg))
			require.Len(t, msg.PlayerRoles, 1)
			card := msg.PlayerRoles[0]
			assert.Equal(t, id, card.ID)
			assert.Equal(t, models.PhaseRoleReveal, msg.GameState.Phase)

			if card.Role == models.RoleImpostor {
				assert.NotContains(t, string(evs[0].data), "metronome")
				if hint {
					assert.Equal(t, "Objects", card.Category)
				} else {
					assert.NotContains(t, string(evs[0].data), "Objects")
				}
			} else {
				assert.Equal(t, "metronome", card.SecretWord)
				assert.Empty(t, card.Category)
			}
		}
	}
}

func TestBroadcastState_PerRecipient(t *testing.T) {
	b, g, conns := fixture(t, true)
	b.BroadcastState(g)

	for id, c := range conns {
		evs := c.events()
		require.Len(t, evs, 1)
		assert.Equal(t, network.EventGameStateUpdated, evs[0].event)
		assert.NotContains(t, string(evs[0].data), "metronome")

		var msg models.GameStateUpdated
		require.NoError(t, json.Unmarshal(evs[0].data, &msg))
		for _, p := range msg.GameState.Players {
			if p.ID == id {
				assert.NotEmpty(t, p.Role)
			} else {
				assert.Empty(t, p.Role)
			}
		}
	}
}

func TestBroadcastPlayersAndEnded(t *testing.T) {
	b, g, conns := fixture(t, true)
	b.BroadcastPlayers(g)
	b.BroadcastGameEnded(g, "Not enough players", "insufficient-players")

	for _, c := range conns {
		evs := c.events()
		require.Len(t, evs, 2)
		assert.Equal(t, network.EventRoomUpdated, evs[0].event)
		assert.Equal(t, network.EventGameEnded, evs[1].event)

		var players models.RoomUpdated
		require.NoError(t, json.Unmarshal(evs[0].data, &players))
		assert.Len(t, players.Players, 3)
		assert.JSONEq(t, `{"message":"Not enough players","reason":"insufficient-players"}`, string(evs[1].data))
	}
}

func TestSendTo_Failures(t *testing.T) {
	sessions := session.NewManager()
	b := NewRoomBroadcaster(sessions)

	assert.ErrorIs(t, b.SendTo("nobody", network.EventError, nil), ErrSessionNotFound)

	dead := &recordingConn{fail: network.ErrSendBufferFull}
	s := session.NewSession(dead, 0, 0)
	sessions.Add(s)

	var dropped []string
	b.OnDrop = func(event string) { dropped = append(dropped, event) }
	assert.ErrorIs(t, b.SendTo(s.ID, network.EventRoomUpdated, nil), network.ErrSendBufferFull)
	assert.Equal(t, []string{network.EventRoomUpdated}, dropped)
}

func TestBroadcastState_NoGame(t *testing.T) {
	sessions := session.NewManager()
	c := &recordingConn{}
	s := session.NewSession(c, 0, 0)
	sessions.Add(s)
	g := game.NewRoom("LOBBY1", models.Participant{ID: s.ID}, game.Settings{}, game.DefaultLimits, stubWords{}, rand.New(rand.NewPCG(1, 1)))

	b := NewRoomBroadcaster(sessions)
	b.BroadcastState(g)
	b.BroadcastGameStarted(g)
	assert.Empty(t, c.events())
}
