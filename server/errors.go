// server/errors.go
package server

import (
	"errors"

	"github.com/wfunc/mafiaserver/game"
	"github.com/wfunc/mafiaserver/lobby"
	"github.com/wfunc/mafiaserver/logger"
	"github.com/wfunc/mafiaserver/network"
	"github.com/wfunc/mafiaserver/services"
	"github.com/wfunc/mafiaserver/session"
)

// ErrorResponse 发给客户端的错误
type ErrorResponse struct {
	Request uint16 `json:"request"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorCodes = []struct {
	err  error
	code string
}{
	{errNotLoggedIn, "not_logged_in"},
	{errNotInLobby, "not_in_lobby"},
	{errBadRequest, "bad_request"},
	{lobby.ErrNotFound, "not_found"},
	{lobby.ErrForbidden, "forbidden"},
	{lobby.ErrInvalidConfiguration, "invalid_configuration"},
	{lobby.ErrLobbyFull, "lobby_full"},
	{lobby.ErrBotCap, "bot_cap"},
	{lobby.ErrWrongStatus, "wrong_status"},
	{lobby.ErrNotEnoughPlayers, "not_enough_players"},
	{lobby.ErrNotInProgress, "not_in_progress"},
	{lobby.ErrAlreadyVoted, "already_voted"},
	{lobby.ErrJoinClosed, "join_closed"},
	{lobby.ErrJoinCodeExhausted, "unavailable"},
	{game.ErrInvalidConfiguration, "invalid_configuration"},
	{game.ErrInvalidTarget, "invalid_target"},
	{game.ErrInvalidVote, "invalid_vote"},
	{game.ErrNoNightAction, "no_night_action"},
	{services.ErrNotSeated, "not_seated"},
	{services.ErrWrongPhase, "wrong_phase"},
}

// errorCode maps a domain error to a stable client-facing code.
func errorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

func (s *GameServer) sendError(sess *session.Session, request uint16, err error) {
	code := errorCode(err)
	msg := err.Error()
	if code == "internal" {
		logger.Log.Errorw("request failed", "msg", request, "session", sess.GetID(), "error", err)
		msg = "internal error"
	}
	if sendErr := s.reply(sess, network.MsgTypeError, ErrorResponse{Request: request, Code: code, Message: msg}); sendErr != nil {
		logger.Log.Warnw("failed to send error", "session", sess.GetID(), "error", sendErr)
	}
}
