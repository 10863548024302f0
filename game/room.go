package game

import (
	"slices"

	"github.com/wfunc/neonwhisper/models"
)

// Room is one game session. It is not safe for concurrent use; the room actor
// owns it and runs every method on a single goroutine.
type Room struct {
	Code     string
	HostID   string
	Players  []models.Participant
	Game     *GameState
	Settings Settings

	limits     Limits
	words      WordPicker
	rng        Rand
	dismissals map[string]struct{}
}

// NewRoom creates a lobby with host as its only, already ready, participant.
func NewRoom(code string, host models.Participant, settings Settings, limits Limits, words WordPicker, rng Rand) *Room {
	host.IsHost = true
	host.IsReady = true
	return &Room{
		Code:     code,
		HostID:   host.ID,
		Players:  []models.Participant{host},
		Settings: settings,
		limits:   limits,
		words:    words,
		rng:      rng,
	}
}

// Phase reports setup while no game is running.
func (r *Room) Phase() models.Phase {
	if r.Game == nil {
		return models.PhaseSetup
	}
	return r.Game.Phase
}

func (r *Room) InGame() bool {
	return r.Game != nil
}

func (r *Room) Len() int {
	return len(r.Players)
}

func (r *Room) Empty() bool {
	return len(r.Players) == 0
}

func (r *Room) indexOf(id string) int {
	return slices.IndexFunc(r.Players, func(p models.Participant) bool { return p.ID == id })
}

func (r *Room) HasParticipant(id string) bool {
	return r.indexOf(id) >= 0
}

// Participants returns a copy of the lobby list in join order.
func (r *Room) Participants() []models.Participant {
	return slices.Clone(r.Players)
}

// ParticipantIDs lists the ids of everybody currently in the room.
func (r *Room) ParticipantIDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

// Join appends p as a regular, not ready participant.
func (r *Room) Join(p models.Participant) error {
	if r.Game != nil {
		return ErrGameInProgress
	}
	if len(r.Players) >= r.limits.MaxPlayers {
		return ErrRoomFull
	}
	if r.HasParticipant(p.ID) {
		return ErrIgnored
	}
	p.IsHost = false
	p.IsReady = false
	r.Players = append(r.Players, p)
	return nil
}

// ToggleReady flips the ready flag and reports whether anything changed.
func (r *Room) ToggleReady(id string) bool {
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.Players[i].IsReady = !r.Players[i].IsReady
	return true
}

type LeaveResult struct {
	Removed     bool
	HostChanged bool
	Empty       bool
	// Aborted is set when the departure left too few players to continue.
	Aborted bool
	// GameChanged is set when the departure moved the running game forward,
	// for example by completing the role reveal or skipping the leaver's turn.
	GameChanged bool
}

// Leave removes id from the room and repairs host, turn and phase state.
func (r *Room) Leave(id string) LeaveResult {
	var res LeaveResult
	i := r.indexOf(id)
	if i < 0 {
		return res
	}

	wasHost := r.Players[i].IsHost || r.HostID == id
	r.Players = slices.Delete(r.Players, i, i+1)
	res.Removed = true

	switch {
	case len(r.Players) == 0:
		r.HostID = ""
		res.Empty = true
	case wasHost:
		r.Players[0].IsHost = true
		r.HostID = r.Players[0].ID
		res.HostChanged = true
	}

	if r.Game == nil {
		return res
	}

	if len(r.Players) < r.limits.MinPlayers {
		if err := r.fire(EventAbort, &command{room: r, actor: id}); err == nil {
			res.Aborted = true
		}
		return res
	}

	phase, index := r.Game.Phase, r.Game.CurrentTurnIndex
	if err := r.fire(EventLeave, &command{room: r, actor: id}); err == nil && r.Game != nil {
		res.GameChanged = phase != r.Game.Phase || index != r.Game.CurrentTurnIndex
	}
	return res
}

// resetToLobby drops the game and asks everybody but the host to ready up again.
func (r *Room) resetToLobby() {
	r.Game = nil
	r.dismissals = nil
	for i := range r.Players {
		r.Players[i].IsReady = r.Players[i].IsHost
	}
}
