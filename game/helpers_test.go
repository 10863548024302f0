package game

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/neonwhisper/models"
)

type fixedWords struct {
	entry models.WordEntry
	err   error
	calls int
}

func (f *fixedWords) Pick(d models.Difficulty) (models.WordEntry, error) {
	f.calls++
	if f.err != nil {
		return models.WordEntry{}, f.err
	}
	e := f.entry
	e.Difficulty = d
	return e, nil
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*31+7))
}

func pid(i int) string {
	return fmt.Sprintf("p%d", i)
}

// newLobby returns a room with n participants p1..pn, all ready, p1 hosting.
func newLobby(t *testing.T, n int, seed uint64) (*Room, *fixedWords) {
	t.Helper()
	words := &fixedWords{entry: models.WordEntry{Word: "lighthouse", Category: "Places"}}
	r := NewRoom("ABCDEF", models.Participant{ID: pid(1), Name: "Host"},
		Settings{Difficulty: models.DifficultyMedium, ImpostorHintEnabled: true},
		DefaultLimits, words, seeded(seed))
	for i := 2; i <= n; i++ {
		require.NoError(t, r.Join(models.Participant{ID: pid(i), Name: fmt.Sprintf("Player %d", i)}))
		require.True(t, r.ToggleReady(pid(i)))
	}
	return r, words
}

// startedRoom returns a room whose game has just reached round one.
func startedRoom(t *testing.T, n int, seed uint64) *Room {
	t.Helper()
	r, _ := newLobby(t, n, seed)
	require.NoError(t, r.Start(pid(1)))
	for _, id := range r.ParticipantIDs() {
		_, err := r.DismissRoleReveal(id)
		require.NoError(t, err)
	}
	require.Equal(t, models.PhaseRound1, r.Phase())
	return r
}

// playRound submits one clue for every turn slot of the current round.
func playRound(t *testing.T, r *Room) {
	t.Helper()
	round := r.Game.CurrentRound
	for r.Game != nil && r.Game.CurrentRound == round && r.Phase() != models.PhaseVoting {
		actor := r.Game.TurnOrder[r.Game.CurrentTurnIndex]
		require.NoError(t, r.SubmitClue(actor, "clue-"+actor))
	}
}

func civilians(r *Room) []string {
	var ids []string
	for _, p := range r.Game.Players {
		if p.Role == models.RoleCivilian {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
