// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"
	"time"

	"github.com/wfunc/mafiaserver/game"
	"github.com/wfunc/mafiaserver/lobby"
	"github.com/wfunc/mafiaserver/logger"
	"github.com/wfunc/mafiaserver/network"
	"github.com/wfunc/mafiaserver/room"
	"github.com/wfunc/mafiaserver/session"
)

// LobbyView 推送给单个玩家的房间状态
type LobbyView struct {
	Lobby       lobby.LobbyState `json:"lobby"`
	RemainingMs int64            `json:"remainingMs"`
}

// NewLobbyView redacts the snapshot for playerID and computes the time left in the phase.
func NewLobbyView(snapshot lobby.LobbyState, playerID string, now time.Time) LobbyView {
	view := LobbyView{Lobby: snapshot.ViewFor(playerID)}
	if end := snapshot.PhaseEndTime; end != nil {
		view.RemainingMs = max(0, end.Sub(now).Milliseconds())
	}
	return view
}

// LobbyBroadcaster 基于房间订阅的广播器，实现 lobby.Notifier
type LobbyBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
	clock          func() time.Time
}

func NewLobbyBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *LobbyBroadcaster {
	return &LobbyBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
		clock:          time.Now,
	}
}

// LobbyUpdated 给每个订阅者推送各自可见的状态。在房间锁内调用，只做入队
func (b *LobbyBroadcaster) LobbyUpdated(snapshot lobby.LobbyState) {
	r, exists := b.roomManager.GetRoom(snapshot.ID)
	if !exists {
		return
	}

	now := b.clock()
	for _, s := range r.GetSessions() {
		data, err := json.Marshal(NewLobbyView(snapshot, s.PlayerID(), now))
		if err != nil {
			logger.Log.Errorw("failed to encode lobby view", "lobby", snapshot.ID, "error", err)
			return
		}
		if err := s.Send(network.MsgTypeLobbyState, data); err != nil {
			logger.Log.Warnw("dropping lobby push", "lobby", snapshot.ID, "session", s.ID, "error", err)
		}
	}
}

// GameOverView 对局结束时推送，公开全部身份
type GameOverView struct {
	LobbyID string        `json:"lobbyId"`
	Winner  game.Winner   `json:"winner"`
	Rounds  int           `json:"rounds"`
	Players []game.Player `json:"players"`
}

// GameOver 推送结算给房间里的每个真人玩家，不要求仍订阅着房间
func (b *LobbyBroadcaster) GameOver(snapshot lobby.LobbyState) {
	gs := snapshot.GameState
	if gs == nil {
		return
	}
	view := GameOverView{
		LobbyID: snapshot.ID,
		Winner:  gs.Winner,
		Rounds:  gs.Round,
		Players: gs.Players,
	}
	data, err := json.Marshal(view)
	if err != nil {
		logger.Log.Errorw("failed to encode game over", "lobby", snapshot.ID, "error", err)
		return
	}

	humans := make([]string, 0, len(snapshot.Players))
	for _, p := range snapshot.Players {
		if !p.IsBot {
			humans = append(humans, p.ID)
		}
	}
	if sent := b.BroadcastToPlayers(humans, network.MsgTypeGameOver, data); sent < len(humans) {
		logger.Log.Debugw("game over not delivered to every player", "lobby", snapshot.ID, "sent", sent, "players", len(humans))
	}
}

// BroadcastToPlayers 按玩家ID推送到其所有会话，返回至少收到一份的玩家数
func (b *LobbyBroadcaster) BroadcastToPlayers(playerIDs []string, msgID uint16, data []byte) int {
	reached := 0
	for _, playerID := range playerIDs {
		delivered := false
		for _, s := range b.sessionManager.GetByPlayerID(playerID) {
			// 慢连接丢消息，不影响其他人
			if err := s.Send(msgID, data); err == nil {
				delivered = true
			}
		}
		if delivered {
			reached++
		}
	}
	return reached
}
