package game

import "errors"

// Client-facing errors. The text is sent verbatim in error{message}.
var (
	ErrRoomNotFound        = errors.New("Room not found")
	ErrGameInProgress      = errors.New("Game already in progress")
	ErrRoomFull            = errors.New("Room is full")
	ErrNotHost             = errors.New("Only host can start the game")
	ErrInsufficientPlayers = errors.New("Need at least 3 players")
	ErrNotAllReady         = errors.New("All players must be ready")
	ErrNotYourTurn         = errors.New("Not your turn")
	ErrNotVotingPhase      = errors.New("Not voting phase")
	ErrInvalidVoteTarget   = errors.New("Invalid vote target")
	ErrWordUnavailable     = errors.New("No words available")
	ErrInvalidDifficulty   = errors.New("Invalid difficulty")
)

// ErrIgnored marks a request that was dropped without effect and without reply.
var ErrIgnored = errors.New("ignored")

var clientErrors = []error{
	ErrRoomNotFound,
	ErrGameInProgress,
	ErrRoomFull,
	ErrNotHost,
	ErrInsufficientPlayers,
	ErrNotAllReady,
	ErrNotYourTurn,
	ErrNotVotingPhase,
	ErrInvalidVoteTarget,
	ErrWordUnavailable,
	ErrInvalidDifficulty,
}

// ClientError returns the client-facing error wrapped in err, if any.
func ClientError(err error) (error, bool) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce) {
			return ce, true
		}
	}
	return nil, false
}
