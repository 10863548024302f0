package game

import (
	"strings"
	"unicode/utf8"

	"github.com/wfunc/neonwhisper/models"
)

const (
	DefaultPlayerName = "Player"
	MaxNameLength     = 20
	Avatar            = "👤"
)

// Rand is the randomness used for roles, turn order and tie-breaks.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// WordPicker hands out one secret word per game.
type WordPicker interface {
	Pick(difficulty models.Difficulty) (models.WordEntry, error)
}

type Settings struct {
	Difficulty          models.Difficulty
	ImpostorHintEnabled bool
}

type Limits struct {
	MinPlayers int
	MaxPlayers int
}

var DefaultLimits = Limits{MinPlayers: 3, MaxPlayers: 8}

type GamePlayer struct {
	ID       string
	Name     string
	IsBot    bool
	Role     models.Role
	Clues    []string
	VotedFor string
}

// GameState is the authoritative game. SecretWord never leaves the server
// except inside a civilian's own PlayerRole.
type GameState struct {
	Phase            models.Phase
	CurrentRound     int
	CurrentTurnIndex int
	TurnOrder        []string
	Players          []*GamePlayer
	SecretWord       string
	Category         string
	ImpostorID       string
	Winner           models.Winner
	VoteCounts       map[string]int
	ShowRoleReveal   bool
	EliminatedID     string
}

func (gs *GameState) player(id string) *GamePlayer {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ParseDifficulty defaults an empty value to medium.
func ParseDifficulty(s string) (models.Difficulty, error) {
	switch d := models.Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return models.DifficultyMedium, nil
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return d, nil
	default:
		return "", ErrInvalidDifficulty
	}
}

// NormalizeName trims a display name, caps its length and falls back to a default.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
	}
	if name == "" {
		return DefaultPlayerName
	}
	return name
}

// NormalizeClue case-folds and trims a clue.
func NormalizeClue(clue string) string {
	return strings.TrimSpace(strings.ToLower(clue))
}
