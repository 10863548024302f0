// services/game_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wfunc/neonwhisper/broadcast"
	"github.com/wfunc/neonwhisper/game"
	"github.com/wfunc/neonwhisper/logger"
	"github.com/wfunc/neonwhisper/models"
	"github.com/wfunc/neonwhisper/monitor"
	"github.com/wfunc/neonwhisper/network"
	"github.com/wfunc/neonwhisper/room"
	"github.com/wfunc/neonwhisper/session"
)

// Gateway errors, sent to the client like game errors.
var (
	ErrBadRequest  = errors.New("Malformed message")
	ErrRateLimited = errors.New("Too many messages")
)

const (
	MessageNotEnoughPlayers = "Not enough players"
	MessageReturnToLobby    = "Returning to lobby"

	ReasonInsufficientPlayers = "insufficient-players"
	ReasonPlayAgain           = "play-again"
)

type Metrics interface {
	IncMessagesReceived(event string)
	ObserveMessageLatency(event string, d time.Duration)
	IncGames(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) IncMessagesReceived(string)                   {}
func (nopMetrics) ObserveMessageLatency(string, time.Duration) {}
func (nopMetrics) IncGames(string)                              {}

// GameService turns inbound events into room operations. Every operation runs
// inside the target room's actor and broadcasts from there.
type GameService struct {
	rooms   *room.Manager
	out     broadcast.Broadcaster
	metrics Metrics
}

func NewGameService(rooms *room.Manager, out broadcast.Broadcaster, metrics Metrics) *GameService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &GameService{rooms: rooms, out: out, metrics: metrics}
}

// Handle dispatches one envelope from sess and reports failures back to sess only.
func (s *GameService) Handle(ctx context.Context, sess *session.Session, env *network.Envelope) {
	start := time.Now()
	s.metrics.IncMessagesReceived(env.Event)
	defer func() { s.metrics.ObserveMessageLatency(env.Event, time.Since(start)) }()

	var err error
	switch env.Event {
	case network.EventCreateRoom:
		err = s.createRoom(ctx, sess, env.Data)
	case network.EventJoinRoom:
		err = s.joinRoom(ctx, sess, env.Data)
	case network.EventToggleReady:
		err = s.toggleReady(ctx, sess, env.Data)
	case network.EventStartGame:
		err = s.startGame(ctx, sess, env.Data)
	case network.EventDismissRoleReveal:
		err = s.dismissRoleReveal(ctx, sess, env.Data)
	case network.EventSubmitClue:
		err = s.submitClue(ctx, sess, env.Data)
	case network.EventSubmitVote:
		err = s.submitVote(ctx, sess, env.Data)
	case network.EventGetRoomState:
		err = s.getRoomState(ctx, sess, env.Data)
	case network.EventLeaveRoom:
		err = s.leaveRoom(ctx, sess, env.Data)
	case network.EventPlayAgain:
		err = s.playAgain(ctx, sess, env.Data)
	default:
		logger.Log.Debugw("unknown event", "session", sess.ID, "event", env.Event)
		return
	}
	s.Reply(sess, env.Event, err)
}

// Reply sends err to sess if it is meant for clients and logs it otherwise.
func (s *GameService) Reply(sess *session.Session, event string, err error) {
	if err == nil {
		return
	}
	msg := ""
	if ce, ok := game.ClientError(err); ok {
		msg = ce.Error()
	} else if errors.Is(err, ErrBadRequest) {
		msg = ErrBadRequest.Error()
	} else if errors.Is(err, ErrRateLimited) {
		msg = ErrRateLimited.Error()
	}
	if msg == "" {
		if !errors.Is(err, game.ErrIgnored) {
			logger.Log.Warnw("event failed", "session", sess.ID, "event", event, "error", err)
		}
		return
	}
	if sendErr := sess.Send(network.EventError, models.ErrorMessage{Message: msg}); sendErr != nil {
		logger.Log.Debugw("could not deliver error", "session", sess.ID, "error", sendErr)
	}
}

// Disconnect removes the session from its room, if any.
func (s *GameService) Disconnect(ctx context.Context, sess *session.Session) {
	code := sess.RoomCode()
	if code == "" {
		return
	}
	if err := s.leave(ctx, sess.ID, code); err != nil && !errors.Is(err, game.ErrRoomNotFound) {
		logger.Log.Warnw("leave on disconnect failed", "session", sess.ID, "room", code, "error", err)
	}
	sess.ClearRoomCode(code)
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 || string(data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return v, nil
}

// withRoom runs fn on the actor of the room named code.
func (s *GameService) withRoom(ctx context.Context, code string, fn func(g *game.Room) error) error {
	r, exists := s.rooms.GetRoom(code)
	if !exists {
		return game.ErrRoomNotFound
	}
	var opErr error
	if err := r.Do(ctx, func(g *game.Room) { opErr = fn(g) }); err != nil {
		if errors.Is(err, room.ErrRoomClosed) {
			return game.ErrRoomNotFound
		}
		return err
	}
	return opErr
}

// quietMissing turns an unknown room into a silent no-op.
func quietMissing(err error) error {
	if errors.Is(err, game.ErrRoomNotFound) {
		return game.ErrIgnored
	}
	return err
}

// switchRoom records code as the session's room and leaves the previous one.
func (s *GameService) switchRoom(ctx context.Context, sess *session.Session, code string) {
	prev := sess.RoomCode()
	sess.SetRoomCode(code)
	if prev != "" && prev != code {
		if err := s.leave(ctx, sess.ID, prev); err != nil && !errors.Is(err, game.ErrRoomNotFound) {
			logger.Log.Warnw("leaving previous room failed", "session", sess.ID, "room", prev, "error", err)
		}
	}
}

func (s *GameService) createRoom(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.CreateRoomRequest](data)
	if err != nil {
		return err
	}
	difficulty, err := game.ParseDifficulty(string(req.Difficulty))
	if err != nil {
		return err
	}
	settings := game.Settings{Difficulty: difficulty, ImpostorHintEnabled: true}
	if req.ImpostorHintEnabled != nil {
		settings.ImpostorHintEnabled = *req.ImpostorHintEnabled
	}

	host := models.Participant{ID: sess.ID, Name: game.NormalizeName(req.PlayerName)}
	r, err := s.rooms.CreateRoom(host, settings)
	if err != nil {
		return err
	}
	s.switchRoom(ctx, sess, r.Code)

	return r.Do(ctx, func(g *game.Room) {
		_ = s.out.SendTo(sess.ID, network.EventRoomCreated, models.RoomJoined{RoomCode: g.Code, PlayerID: sess.ID})
		s.out.BroadcastPlayers(g)
	})
}

func (s *GameService) joinRoom(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.JoinRoomRequest](data)
	if err != nil {
		return err
	}
	code := room.NormalizeCode(req.RoomCode)
	p := models.Participant{ID: sess.ID, Name: game.NormalizeName(req.PlayerName)}

	err = s.withRoom(ctx, code, func(g *game.Room) error {
		if err := g.Join(p); err != nil {
			return err
		}
		_ = s.out.SendTo(sess.ID, network.EventRoomJoined, models.RoomJoined{RoomCode: g.Code, PlayerID: sess.ID})
		s.out.BroadcastPlayers(g)
		return nil
	})
	if err != nil {
		return err
	}
	s.switchRoom(ctx, sess, code)
	logger.Log.Infow("player joined", "room", code, "session", sess.ID)
	return nil
}

func (s *GameService) toggleReady(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.RoomRequest](data)
	if err != nil {
		return err
	}
	return quietMissing(s.withRoom(ctx, req.RoomCode, func(g *game.Room) error {
		if g.ToggleReady(sess.ID) {
			s.out.BroadcastPlayers(g)
		}
		return nil
	}))
}

func (s *GameService) startGame(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.RoomRequest](data)
	if err != nil {
		return err
	}
	return s.withRoom(ctx, req.RoomCode, func(g *game.Room) error {
		if err := g.Start(sess.ID); err != nil {
			return err
		}
		s.metrics.IncGames(monitor.GameStarted)
		logger.Log.Infow("game started", "room", g.Code, "players", g.Len(), "difficulty", g.Settings.Difficulty)
		s.out.BroadcastGameStarted(g)
		return nil
	})
}

func (s *GameService) dismissRoleReveal(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.RoomRequest](data)
	if err != nil {
		return err
	}
	return quietMissing(s.withRoom(ctx, req.RoomCode, func(g *game.Room) error {
		advanced, err := g.DismissRoleReveal(sess.ID)
		if err != nil {
			return err
		}
		if advanced {
			s.out.BroadcastState(g)
		}
		return nil
	}))
}

func (s *GameService) submitClue(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.SubmitClueRequest](data)
	if err != nil {
		return err
	}
	return quietMissing(s.withRoom(ctx, req.RoomCode, func(g *game.Room) error {
		if err := g.SubmitClue(sess.ID, req.Clue); err != nil {
			return err
		}
		s.out.BroadcastState(g)
		return nil
	}))
}

func (s *GameService) submitVote(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.SubmitVoteRequest](data)
	if err != nil {
		return err
	}
	return quietMissing(s.withRoom(ctx, req.RoomCode, func(g *game.Room) error {
		if err := g.SubmitVote(sess.ID, req.TargetID); err != nil {
			return err
		}
		s.recordResult(g)
		s.out.BroadcastState(g)
		return nil
	}))
}

func (s *GameService) recordResult(g *game.Room) {
	if g.Phase() != models.PhaseResult {
		return
	}
	outcome := monitor.GameImpostorWon
	if g.Game.Winner == models.WinnerCivilians {
		outcome = monitor.GameCiviliansWon
	}
	s.metrics.IncGames(outcome)
	logger.Log.Infow("game finished", "room", g.Code, "winner", g.Game.Winner)
}

func (s *GameService) getRoomState(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.RoomRequest](data)
	if err != nil {
		return err
	}
	return s.withRoom(ctx, req.RoomCode, func(g *game.Room) error {
		_ = s.out.SendTo(sess.ID, network.EventRoomUpdated, models.RoomUpdated{Players: g.Participants()})
		if g.InGame() {
			_ = s.out.SendTo(sess.ID, network.EventGameStateUpdated, models.GameStateUpdated{GameState: g.View(sess.ID)})
		}
		return nil
	})
}

func (s *GameService) leaveRoom(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.RoomRequest](data)
	if err != nil {
		return err
	}
	code := room.NormalizeCode(req.RoomCode)
	if code == "" {
		code = sess.RoomCode()
	}
	if code == "" {
		return game.ErrIgnored
	}
	err = s.leave(ctx, sess.ID, code)
	sess.ClearRoomCode(code)
	return quietMissing(err)
}

// leave removes id from room code and tells the others what changed. An
// emptied room is unregistered right away.
func (s *GameService) leave(ctx context.Context, id, code string) error {
	var empty bool
	err := s.withRoom(ctx, code, func(g *game.Room) error {
		res := g.Leave(id)
		if !res.Removed {
			return game.ErrIgnored
		}
		logger.Log.Infow("player left", "room", g.Code, "session", id, "remaining", g.Len(), "aborted", res.Aborted)
		if res.Empty {
			empty = true
			return nil
		}
		s.out.BroadcastPlayers(g)
		switch {
		case res.Aborted:
			s.metrics.IncGames(monitor.GameAborted)
			s.out.BroadcastGameEnded(g, MessageNotEnoughPlayers, ReasonInsufficientPlayers)
		case res.GameChanged:
			s.recordResult(g)
			s.out.BroadcastState(g)
		}
		return nil
	})
	if empty {
		if r, ok := s.rooms.GetRoom(code); ok {
			s.rooms.RemoveIfEmpty(ctx, r)
		}
	}
	return err
}

func (s *GameService) playAgain(ctx context.Context, sess *session.Session, data json.RawMessage) error {
	req, err := decode[models.RoomRequest](data)
	if err != nil {
		return err
	}
	return s.withRoom(ctx, req.RoomCode, func(g *game.Room) error {
		if err := g.PlayAgain(sess.ID); err != nil {
			return err
		}
		s.out.BroadcastGameEnded(g, MessageReturnToLobby, ReasonPlayAgain)
		s.out.BroadcastPlayers(g)
		return nil
	})
}
