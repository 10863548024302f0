package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/neonwhisper/models"
)

func TestFilterState_Nil(t *testing.T) {
	assert.Nil(t, FilterState(nil, "p1"))
}

func TestFilterState_HidesSecretsDuringPlay(t *testing.T) {
	r := startedRoom(t, 4, 6)

	for _, recipient := range r.ParticipantIDs() {
		view := r.View(recipient)
		assert.Empty(t, view.ImpostorID)
		assert.Empty(t, view.Category)
		assert.Empty(t, view.EliminatedID)

		for _, p := range view.Players {
			if p.ID == recipient {
				assert.Equal(t, r.Game.player(recipient).Role, p.Role, "own role is visible")
			} else {
				assert.Empty(t, p.Role, "%s must not see the role of %s", recipient, p.ID)
			}
			assert.Equal(t, Avatar, p.Avatar)
		}

		raw, err := json.Marshal(view)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "lighthouse")
		assert.NotContains(t, string(raw), "secretWord")
	}
}

func TestFilterState_RevealsOnResult(t *testing.T) {
	r := votingRoom(t, 3, 2)
	for _, id := range r.ParticipantIDs() {
		require.NoError(t, r.SubmitVote(id, r.Game.ImpostorID))
	}

	view := r.View(pid(1))
	assert.Equal(t, models.PhaseResult, view.Phase)
	assert.Equal(t, r.Game.ImpostorID, view.ImpostorID)
	assert.Equal(t, r.Game.ImpostorID, view.EliminatedID)
	assert.Equal(t, "Places", view.Category)
	assert.Equal(t, models.WinnerCivilians, view.Winner)
	assert.Equal(t, 3, view.VoteCounts[r.Game.ImpostorID])
	for _, p := range view.Players {
		assert.NotEmpty(t, p.Role)
		require.NotNil(t, p.VotedFor)
	}

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "lighthouse")
}

func TestFilterState_DoesNotAlias(t *testing.T) {
	r := startedRoom(t, 3, 1)
	view := r.View(pid(1))

	view.TurnOrder[0] = "mutated"
	view.VoteCounts["x"] = 9
	assert.NotEqual(t, "mutated", r.Game.TurnOrder[0])
	assert.NotContains(t, r.Game.VoteCounts, "x")
}

func TestRoleFor(t *testing.T) {
	r, _ := newLobby(t, 4, 9)
	require.NoError(t, r.Start(pid(1)))

	var words []string
	for _, id := range r.ParticipantIDs() {
		card, ok := r.RoleCard(id)
		require.True(t, ok)
		assert.Equal(t, id, card.ID)

		if id == r.Game.ImpostorID {
			assert.Equal(t, models.RoleImpostor, card.Role)
			assert.Empty(t, card.SecretWord)
			assert.Equal(t, "Places", card.Category)
		} else {
			assert.Equal(t, models.RoleCivilian, card.Role)
			assert.Empty(t, card.Category)
			words = append(words, card.SecretWord)
		}
	}
	require.Len(t, words, 3)
	for _, w := range words {
		assert.Equal(t, "lighthouse", w)
	}

	_, ok := r.RoleCard("stranger")
	assert.False(t, ok)
}

func TestRoleFor_HintDisabled(t *testing.T) {
	r, _ := newLobby(t, 3, 9)
	r.Settings.ImpostorHintEnabled = false
	require.NoError(t, r.Start(pid(1)))

	card, ok := r.RoleCard(r.Game.ImpostorID)
	require.True(t, ok)
	assert.Empty(t, card.Category)
	assert.Empty(t, card.SecretWord)
}
