package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/network"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		event   string
		payload any
	}{
		{"create Ada hard", network.EventCreateRoom, models.CreateRoomRequest{PlayerName: "Ada", Difficulty: models.DifficultyHard}},
		{"join abcdef Bob Smith", network.EventJoinRoom, models.JoinRoomRequest{RoomCode: "abcdef", PlayerName: "Bob Smith"}},
		{"ready", network.EventToggleReady, models.RoomRequest{RoomCode: "QWERTY"}},
		{"clue  salty breeze ", network.EventSubmitClue, models.SubmitClueRequest{RoomCode: "QWERTY", Clue: "salty breeze"}},
		{"vote p2", network.EventSubmitVote, models.SubmitVoteRequest{RoomCode: "QWERTY", TargetID: "p2"}},
		{"again", network.EventPlayAgain, models.RoomRequest{RoomCode: "QWERTY"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			event, payload, err := parseCommand(tt.line, "QWERTY")
			require.NoError(t, err)
			assert.Equal(t, tt.event, event)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestParseCommand_Invalid(t *testing.T) {
	for _, line := range []string{"", "dance", "join", "vote"} {
		_, _, err := parseCommand(line, "")
		assert.ErrorIs(t, err, errUsage, line)
	}
}
