// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/neonwhisper/game"
	"github.com/wfunc/neonwhisper/logger"
	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/network"
	"github.com/wfunc/neonwhisper/session"
)

var ErrSessionNotFound = errors.New("session not found")

// Broadcaster fans room events out to the connections of its participants.
// Every method is called from inside the room actor, so the order of sends
// matches the order of the transitions that caused them.
type Broadcaster interface {
	SendTo(sessionID, event string, payload any) error
	BroadcastPlayers(g *game.Room)
	BroadcastState(g *game.Room)
	BroadcastGameStarted(g *game.Room)
	BroadcastGameEnded(g *game.Room, message, reason string)
}

// RoomBroadcaster resolves participant ids through the session manager.
type RoomBroadcaster struct {
	sessionManager *session.Manager
	// OnDrop is called for every message a slow or closed connection missed.
	OnDrop func(event string)
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{sessionManager: sessionManager}
}

func (b *RoomBroadcaster) SendTo(sessionID, event string, payload any) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	if err := s.Send(event, payload); err != nil {
		logger.Log.Warnw("dropped outbound message", "session", sessionID, "event", event, "error", err)
		if b.OnDrop != nil {
			b.OnDrop(event)
		}
		return err
	}
	return nil
}

func (b *RoomBroadcaster) each(g *game.Room, build func(recipient string) (any, bool), event string) {
	for _, id := range g.ParticipantIDs() {
		payload, ok := build(id)
		if !ok {
			continue
		}
		// Errors are logged in SendTo; one dead connection must not starve the rest.
		_ = b.SendTo(id, event, payload)
	}
}

// BroadcastPlayers sends room-updated with the lobby list.
func (b *RoomBroadcaster) BroadcastPlayers(g *game.Room) {
	payload := models.RoomUpdated{Players: g.Participants()}
	b.each(g, func(string) (any, bool) { return payload, true }, network.EventRoomUpdated)
}

// BroadcastState sends each participant their own filtered view of the game.
func (b *RoomBroadcaster) BroadcastState(g *game.Room) {
	if !g.InGame() {
		return
	}
	b.each(g, func(id string) (any, bool) {
		return models.GameStateUpdated{GameState: g.View(id)}, true
	}, network.EventGameStateUpdated)
}

// BroadcastGameStarted hands every participant the shared view plus their own
// role card and nobody else's.
func (b *RoomBroadcaster) BroadcastGameStarted(g *game.Room) {
	if !g.InGame() {
		return
	}
	b.each(g, func(id string) (any, bool) {
		card, ok := g.RoleCard(id)
		if !ok {
			return nil, false
		}
		return models.GameStarted{
			GameState:   g.View(id),
			PlayerRoles: []models.PlayerRole{card},
		}, true
	}, network.EventGameStarted)
}

func (b *RoomBroadcaster) BroadcastGameEnded(g *game.Room, message, reason string) {
	payload := models.GameEnded{Message: message, Reason: reason}
	b.each(g, func(string) (any, bool) { return payload, true }, network.EventGameEnded)
}
