package game

import (
	"fmt"

	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/state"
)

type Event string

const (
	EventStart     Event = "start-game"
	EventDismiss   Event = "dismiss-role-reveal"
	EventClue      Event = "submit-clue"
	EventVote      Event = "submit-vote"
	EventPlayAgain Event = "play-again"
	EventLeave     Event = "leave"
	EventAbort     Event = "abort"
)

// command carries one request through the transition table.
type command struct {
	room   *Room
	actor  string
	clue   string
	target string
	entry  models.WordEntry
}

type rule = state.Rule[models.Phase, *command]

var inGame = []models.Phase{
	models.PhaseRoleReveal,
	models.PhaseRound1,
	models.PhaseRound2,
	models.PhaseVoting,
	models.PhaseResult,
}

var machine = state.NewTable[models.Phase, Event, *command]().
	On(EventStart, rule{Guard: guardStart, Action: startGame}, models.PhaseSetup).
	On(EventDismiss, rule{Guard: guardDismiss, Action: dismissRoleReveal}, models.PhaseRoleReveal).
	On(EventClue, rule{Guard: guardClue, Action: submitClue}, models.PhaseRound1, models.PhaseRound2).
	On(EventVote, rule{Guard: guardVote, Action: submitVote}, models.PhaseVoting).
	On(EventPlayAgain, rule{Guard: guardHost, Action: backToLobby}, models.PhaseResult).
	On(EventLeave, rule{Action: afterLeave}, models.PhaseRoleReveal, models.PhaseRound1, models.PhaseRound2, models.PhaseVoting).
	On(EventAbort, rule{Action: backToLobby}, inGame...).
	Reject(EventStart, ErrGameInProgress).
	Reject(EventDismiss, ErrIgnored).
	Reject(EventClue, ErrNotYourTurn).
	Reject(EventVote, ErrNotVotingPhase).
	Reject(EventPlayAgain, ErrIgnored).
	Reject(EventLeave, ErrIgnored).
	Reject(EventAbort, ErrIgnored)

// fire runs event against the room's current phase and stores the next phase.
func (r *Room) fire(event Event, cmd *command) error {
	next, err := machine.Fire(r.Phase(), event, cmd)
	if err != nil {
		return err
	}
	if r.Game == nil {
		return nil
	}
	r.Game.Phase = next
	if next != models.PhaseRoleReveal {
		r.dismissals = nil
	}
	return nil
}

// Start begins a game. Only the host may start, and only with enough ready players.
func (r *Room) Start(actor string) error {
	return r.fire(EventStart, &command{room: r, actor: actor})
}

// DismissRoleReveal records that actor has seen their role and reports whether
// that completed the reveal and moved the game to round one.
func (r *Room) DismissRoleReveal(actor string) (bool, error) {
	if err := r.fire(EventDismiss, &command{room: r, actor: actor}); err != nil {
		return false, err
	}
	return r.Phase() == models.PhaseRound1, nil
}

func (r *Room) SubmitClue(actor, clue string) error {
	return r.fire(EventClue, &command{room: r, actor: actor, clue: clue})
}

func (r *Room) SubmitVote(actor, target string) error {
	return r.fire(EventVote, &command{room: r, actor: actor, target: target})
}

// PlayAgain returns a finished game to the lobby.
func (r *Room) PlayAgain(actor string) error {
	if r.Game == nil {
		return ErrIgnored
	}
	return r.fire(EventPlayAgain, &command{room: r, actor: actor})
}

func guardHost(c *command) error {
	if c.actor != c.room.HostID {
		return ErrNotHost
	}
	return nil
}

func guardStart(c *command) error {
	r := c.room
	if err := guardHost(c); err != nil {
		return err
	}
	if len(r.Players) < r.limits.MinPlayers {
		return ErrInsufficientPlayers
	}
	for _, p := range r.Players {
		if !p.IsReady {
			return ErrNotAllReady
		}
	}
	entry, err := r.words.Pick(r.Settings.Difficulty)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWordUnavailable, err)
	}
	c.entry = entry
	return nil
}

func startGame(c *command) models.Phase {
	r := c.room
	players := make([]*GamePlayer, len(r.Players))
	for i, p := range r.Players {
		players[i] = &GamePlayer{ID: p.ID, Name: p.Name, Clues: []string{}}
	}
	// guardStart guarantees at least MinPlayers entries.
	impostorID, _ := AssignRoles(players, r.rng)

	r.Game = &GameState{
		CurrentRound:   1,
		TurnOrder:      GenerateTurnOrder(players, r.rng),
		Players:        players,
		SecretWord:     c.entry.Word,
		Category:       c.entry.Category,
		ImpostorID:     impostorID,
		VoteCounts:     map[string]int{},
		ShowRoleReveal: true,
	}
	r.dismissals = make(map[string]struct{}, len(players))
	return models.PhaseRoleReveal
}

func guardDismiss(c *command) error {
	if !c.room.HasParticipant(c.actor) {
		return ErrIgnored
	}
	return nil
}

func dismissRoleReveal(c *command) models.Phase {
	c.room.dismissals[c.actor] = struct{}{}
	return c.room.settleRoleReveal()
}

// settleRoleReveal finishes the reveal once everybody still present has dismissed it.
func (r *Room) settleRoleReveal() models.Phase {
	for _, p := range r.Players {
		if _, ok := r.dismissals[p.ID]; !ok {
			return models.PhaseRoleReveal
		}
	}
	r.Game.ShowRoleReveal = false
	return models.PhaseRound1
}

func guardClue(c *command) error {
	gs := c.room.Game
	if gs.TurnOrder[gs.CurrentTurnIndex] != c.actor {
		return ErrNotYourTurn
	}
	if gs.player(c.actor) == nil {
		return ErrIgnored
	}
	return nil
}

func submitClue(c *command) models.Phase {
	gs := c.room.Game
	p := gs.player(c.actor)
	p.Clues = append(p.Clues, NormalizeClue(c.clue))
	gs.CurrentTurnIndex++
	return c.room.settleTurn(gs.Phase)
}

// settleTurn skips turn slots of players who left and rolls over into the next
// round or into voting once the order is exhausted.
func (r *Room) settleTurn(phase models.Phase) models.Phase {
	gs := r.Game
	for {
		if gs.CurrentTurnIndex >= len(gs.TurnOrder) {
			gs.CurrentTurnIndex = 0
			if phase != models.PhaseRound1 {
				return models.PhaseVoting
			}
			phase = models.PhaseRound2
			gs.CurrentRound = 2
		}
		if r.HasParticipant(gs.TurnOrder[gs.CurrentTurnIndex]) {
			return phase
		}
		gs.CurrentTurnIndex++
	}
}

func guardVote(c *command) error {
	gs := c.room.Game
	if gs.player(c.actor) == nil || !c.room.HasParticipant(c.actor) {
		return ErrIgnored
	}
	if gs.player(c.target) == nil {
		return ErrInvalidVoteTarget
	}
	return nil
}

func submitVote(c *command) models.Phase {
	c.room.Game.player(c.actor).VotedFor = c.target
	return c.room.settleVote()
}

// settleVote resolves the vote once every present player has voted.
// Votes of players who already left are not counted.
func (r *Room) settleVote() models.Phase {
	gs := r.Game
	var votes []string
	for _, p := range gs.Players {
		if !r.HasParticipant(p.ID) {
			continue
		}
		if p.VotedFor == "" {
			return models.PhaseVoting
		}
		votes = append(votes, p.VotedFor)
	}

	counts, leaders := CountVotes(votes)
	gs.VoteCounts = counts
	gs.EliminatedID = Eliminate(leaders, r.rng)
	if gs.EliminatedID == gs.ImpostorID {
		gs.Winner = models.WinnerCivilians
	} else {
		gs.Winner = models.WinnerImpostor
	}
	return models.PhaseResult
}

func afterLeave(c *command) models.Phase {
	r := c.room
	switch r.Game.Phase {
	case models.PhaseRoleReveal:
		delete(r.dismissals, c.actor)
		return r.settleRoleReveal()
	case models.PhaseRound1, models.PhaseRound2:
		return r.settleTurn(r.Game.Phase)
	case models.PhaseVoting:
		return r.settleVote()
	}
	return r.Game.Phase
}

func backToLobby(c *command) models.Phase {
	c.room.resetToLobby()
	return models.PhaseSetup
}
