package game

import (
	"maps"
	"slices"

	"github.com/wfunc/neonwhisper/models"
)

// FilterState builds the view of gs that recipient is allowed to see. Roles of
// other players, the impostor and the category stay hidden until the result
// phase; the secret word is never part of the view.
func FilterState(gs *GameState, recipient string) *models.ClientGameState {
	if gs == nil {
		return nil
	}
	reveal := gs.Phase == models.PhaseResult

	view := &models.ClientGameState{
		Phase:            gs.Phase,
		CurrentRound:     gs.CurrentRound,
		CurrentTurnIndex: gs.CurrentTurnIndex,
		TurnOrder:        slices.Clone(gs.TurnOrder),
		Players:          make([]models.ClientPlayer, len(gs.Players)),
		Winner:           gs.Winner,
		VoteCounts:       maps.Clone(gs.VoteCounts),
		ShowRoleReveal:   gs.ShowRoleReveal,
	}
	if view.VoteCounts == nil {
		view.VoteCounts = map[string]int{}
	}
	if reveal {
		view.Category = gs.Category
		view.ImpostorID = gs.ImpostorID
		view.EliminatedID = gs.EliminatedID
	}

	for i, p := range gs.Players {
		cp := models.ClientPlayer{
			ID:     p.ID,
			Name:   p.Name,
			Avatar: Avatar,
			IsBot:  p.IsBot,
			Clues:  append([]string{}, p.Clues...),
		}
		if p.VotedFor != "" {
			votedFor := p.VotedFor
			cp.VotedFor = &votedFor
		}
		if reveal || p.ID == recipient {
			cp.Role = p.Role
		}
		view.Players[i] = cp
	}
	return view
}

// RoleFor is the private role card for recipient: civilians learn the word,
// the impostor learns the category only when the hint is enabled.
func RoleFor(gs *GameState, settings Settings, recipient string) (models.PlayerRole, bool) {
	if gs == nil {
		return models.PlayerRole{}, false
	}
	p := gs.player(recipient)
	if p == nil {
		return models.PlayerRole{}, false
	}
	card := models.PlayerRole{ID: p.ID, Role: p.Role}
	switch p.Role {
	case models.RoleCivilian:
		card.SecretWord = gs.SecretWord
	case models.RoleImpostor:
		if settings.ImpostorHintEnabled {
			card.Category = gs.Category
		}
	}
	return card, true
}

// View is FilterState for this room's running game.
func (r *Room) View(recipient string) *models.ClientGameState {
	return FilterState(r.Game, recipient)
}

// RoleCard is RoleFor for this room's running game.
func (r *Room) RoleCard(recipient string) (models.PlayerRole, bool) {
	return RoleFor(r.Game, r.Settings, recipient)
}
