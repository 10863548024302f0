// models/models.go
package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Role string

const (
	RoleCivilian Role = "civilian"
	RoleImpostor Role = "impostor"
)

type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseRoleReveal Phase = "roleReveal"
	PhaseRound1     Phase = "round1"
	PhaseRound2     Phase = "round2"
	PhaseVoting     Phase = "voting"
	PhaseResult     Phase = "result"
)

type Winner string

const (
	WinnerCivilians Winner = "civilians"
	WinnerImpostor  Winner = "impostor"
)

// Participant is a lobby member as sent in room-updated.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsHost  bool   `json:"isHost"`
	IsReady bool   `json:"isReady"`
}

// ClientPlayer is the redacted view of a game player. Role is only filled for
// the recipient themselves, or for everyone once the game is over.
type ClientPlayer struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Avatar   string   `json:"avatar"`
	IsBot    bool     `json:"isBot"`
	Role     Role     `json:"role,omitempty"`
	Clues    []string `json:"clues"`
	VotedFor *string  `json:"votedFor"`
}

// ClientGameState is everything a client may know about a running game.
// It deliberately has no field for the secret word.
type ClientGameState struct {
	Phase            Phase          `json:"phase"`
	CurrentRound     int            `json:"currentRound"`
	CurrentTurnIndex int            `json:"currentTurnIndex"`
	TurnOrder        []string       `json:"turnOrder"`
	Players          []ClientPlayer `json:"players"`
	Category         string         `json:"category,omitempty"`
	ImpostorID       string         `json:"impostorId,omitempty"`
	EliminatedID     string         `json:"eliminatedId,omitempty"`
	Winner           Winner         `json:"winner,omitempty"`
	VoteCounts       map[string]int `json:"voteCounts"`
	ShowRoleReveal   bool           `json:"showRoleReveal"`
}

// PlayerRole is the private role card handed to one player at game start.
type PlayerRole struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	SecretWord string `json:"secretWord,omitempty"`
	Category   string `json:"category,omitempty"`
}

// WordEntry is one secret word of the corpus.
type WordEntry struct {
	Word       string     `json:"word" yaml:"word"`
	Category   string     `json:"category" yaml:"category"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
}

// Inbound payloads.

type CreateRoomRequest struct {
	PlayerName          string     `json:"playerName"`
	Difficulty          Difficulty `json:"difficulty"`
	ImpostorHintEnabled *bool      `json:"impostorHintEnabled"`
}

type JoinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type RoomRequest struct {
	RoomCode string `json:"roomCode"`
}

type SubmitClueRequest struct {
	RoomCode string `json:"roomCode"`
	Clue     string `json:"clue"`
}

type SubmitVoteRequest struct {
	RoomCode string `json:"roomCode"`
	TargetID string `json:"targetId"`
}

// Outbound payloads.

type RoomJoined struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type RoomUpdated struct {
	Players []Participant `json:"players"`
}

type GameStarted struct {
	GameState   *ClientGameState `json:"gameState"`
	PlayerRoles []PlayerRole     `json:"playerRoles"`
}

type GameStateUpdated struct {
	GameState *ClientGameState `json:"gameState"`
}

type GameEnded struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type Health struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
