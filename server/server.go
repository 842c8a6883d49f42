package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/mafiaserver/broadcast"
	"github.com/wfunc/mafiaserver/config"
	"github.com/wfunc/mafiaserver/game"
	"github.com/wfunc/mafiaserver/lobby"
	"github.com/wfunc/mafiaserver/logger"
	"github.com/wfunc/mafiaserver/network"
	"github.com/wfunc/mafiaserver/room"
	"github.com/wfunc/mafiaserver/services"
	"github.com/wfunc/mafiaserver/session"
)

var (
	errNotLoggedIn = errors.New("login required")
	errNotInLobby  = errors.New("session is not in a lobby")
	errBadRequest  = errors.New("malformed request")
)

// Metrics 连接层指标，monitor.Monitor 实现了它
type Metrics interface {
	IncOnlinePlayers()
	DecOnlinePlayers()
	IncMessagesReceived()
	ObserveMessageLatency(time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) IncOnlinePlayers()                   {}
func (noopMetrics) DecOnlinePlayers()                   {}
func (noopMetrics) IncMessagesReceived()                {}
func (noopMetrics) ObserveMessageLatency(time.Duration) {}

// Deps 服务器依赖的组件，由 main 组装
type Deps struct {
	Lobbies  *lobby.Manager
	Matches  *services.MatchService
	Sessions *session.Manager
	Rooms    *room.Manager
	Metrics  Metrics
}

type GameServer struct {
	addr           string
	heartbeat      time.Duration
	lobbyDefaults  lobby.Config
	upgrader       websocket.Upgrader
	validate       *validator.Validate
	lobbies        *lobby.Manager
	matches        *services.MatchService
	roomManager    *room.Manager
	sessionManager *session.Manager
	metrics        Metrics
	clock          func() time.Time

	mutex        sync.Mutex
	shutdownChan chan struct{}
	shutdown     bool
}

func NewGameServer(cfg config.ServerConfig, defaults config.LobbyConfig, deps Deps) *GameServer {
	s := &GameServer{
		addr:      cfg.HTTPAddress,
		heartbeat: cfg.HeartbeatInterval,
		lobbyDefaults: lobby.Config{
			MinPlayers:         defaults.MinPlayers,
			MaxPlayers:         defaults.MaxPlayers,
			JoinTimeoutSeconds: defaults.JoinTimeoutSeconds,
		},
		validate:       validator.New(),
		lobbies:        deps.Lobbies,
		matches:        deps.Matches,
		roomManager:    deps.Rooms,
		sessionManager: deps.Sessions,
		metrics:        deps.Metrics,
		clock:          time.Now,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	return s
}

// Handler 返回 /ws 和 /healthz 路由
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Serve 阻塞直到 ctx 取消或监听失败
func (s *GameServer) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		s.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Log.Infow("game server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *GameServer) Shutdown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.shutdown {
		s.shutdown = true
		close(s.shutdownChan)
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infow("failed to upgrade connection", "error", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	if s.heartbeat > 0 {
		conn.SetHeartbeat(s.heartbeat)
	}
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	s.metrics.IncOnlinePlayers()

	logger.Log.Infow("new connection", "remote", conn.RemoteAddr(), "session", sess.GetID())

	defer func() {
		logger.Log.Infow("connection closed", "remote", conn.RemoteAddr(), "session", sess.GetID(), "player", sess.PlayerID())
		// 断线只取消订阅，玩家仍在房间里，重连后用房间码重新加入即可
		s.roomManager.Unsubscribe(sess)
		s.sessionManager.Remove(sess.GetID())
		s.metrics.DecOnlinePlayers()
		sess.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := s.clock()
	s.metrics.IncMessagesReceived()
	sess.Touch()

	var err error
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		err = sess.Send(network.MsgTypeHeartbeat, nil)
	case network.MsgTypeLogin:
		err = s.handleLogin(sess, packet)
	default:
		if sess.PlayerID() == "" {
			err = errNotLoggedIn
			break
		}
		err = s.dispatch(sess, packet)
	}

	if err != nil {
		s.sendError(sess, packet.MsgID, err)
	}
	s.metrics.ObserveMessageLatency(s.clock().Sub(start))
}

func (s *GameServer) dispatch(sess *session.Session, packet *network.Packet) error {
	switch packet.MsgID {
	case network.MsgTypeCreateLobby:
		return s.handleCreateLobby(sess, packet)
	case network.MsgTypeJoinLobby:
		return s.handleJoinLobby(sess, packet)
	case network.MsgTypeLeaveLobby:
		return s.handleLeaveLobby(sess)
	case network.MsgTypeAddBots:
		return s.handleAddBots(sess, packet)
	case network.MsgTypeRemoveBot:
		return s.handleRemoveBot(sess, packet)
	case network.MsgTypeStartGame:
		return s.handleStartGame(sess, packet)
	case network.MsgTypeNightAction:
		return s.handleNightAction(sess, packet)
	case network.MsgTypeCastVote:
		return s.handleCastVote(sess, packet)
	case network.MsgTypeGetLobby:
		return s.handleGetLobby(sess, packet)
	default:
		logger.Log.Infow("unknown message type", "msg", packet.MsgID, "session", sess.GetID())
		return nil
	}
}

// decode 解析并校验请求体，空请求体视为 {}
func (s *GameServer) decode(packet *network.Packet, v interface{}) error {
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, v); err != nil {
			return errBadRequest
		}
	}
	if err := s.validate.Struct(v); err != nil {
		return errBadRequest
	}
	return nil
}

func (s *GameServer) reply(sess *session.Session, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sess.Send(msgID, data)
}

func (s *GameServer) replyView(sess *session.Session, msgID uint16, lobbyID string) error {
	snapshot, err := s.lobbies.GetLobby(lobbyID)
	if err != nil {
		return err
	}
	return s.reply(sess, msgID, broadcast.NewLobbyView(snapshot, sess.PlayerID(), s.clock()))
}

func currentLobby(sess *session.Session) (string, error) {
	lobbyID := sess.LobbyID()
	if lobbyID == "" {
		return "", errNotInLobby
	}
	return lobbyID, nil
}

type loginRequest struct {
	PlayerID string `json:"playerId" validate:"omitempty,max=64"`
	Name     string `json:"name" validate:"required,max=32"`
}

type loginResponse struct {
	PlayerID  string `json:"playerId"`
	SessionID string `json:"sessionId"`
}

func (s *GameServer) handleLogin(sess *session.Session, packet *network.Packet) error {
	var req loginRequest
	if err := s.decode(packet, &req); err != nil {
		return err
	}
	if req.PlayerID == "" {
		req.PlayerID = uuid.New().String()
	}
	sess.Login(req.PlayerID, req.Name)
	logger.Log.Infow("player logged in", "player", req.PlayerID, "session", sess.GetID())
	return s.reply(sess, network.MsgTypeLogin, loginResponse{PlayerID: req.PlayerID, SessionID: sess.GetID()})
}

type createLobbyRequest struct {
	Config lobby.Config `json:"config"`
}

func (s *GameServer) handleCreateLobby(sess *session.Session, packet *network.Packet) error {
	req := createLobbyRequest{Config: s.lobbyDefaults}
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			return errBadRequest
		}
	}

	snapshot, err := s.lobbies.CreateLobby(req.Config, sess.PlayerID(), sess.PlayerName())
	if err != nil {
		return err
	}
	s.roomManager.Subscribe(snapshot.ID, sess)
	return s.reply(sess, network.MsgTypeCreateLobby, broadcast.NewLobbyView(snapshot, sess.PlayerID(), s.clock()))
}

type joinLobbyRequest struct {
	JoinCode string `json:"joinCode" validate:"required,len=6,numeric"`
}

func (s *GameServer) handleJoinLobby(sess *session.Session, packet *network.Packet) error {
	var req joinLobbyRequest
	if err := s.decode(packet, &req); err != nil {
		return err
	}

	snapshot, err := s.lobbies.JoinLobby(req.JoinCode, sess.PlayerID(), sess.PlayerName())
	if err != nil {
		return err
	}
	s.roomManager.Subscribe(snapshot.ID, sess)
	return s.reply(sess, network.MsgTypeJoinLobby, broadcast.NewLobbyView(snapshot, sess.PlayerID(), s.clock()))
}

func (s *GameServer) handleLeaveLobby(sess *session.Session) error {
	lobbyID, err := currentLobby(sess)
	if err != nil {
		return err
	}
	if err := s.lobbies.LeaveLobby(lobbyID, sess.PlayerID()); err != nil {
		return err
	}
	s.roomManager.Unsubscribe(sess)
	return s.reply(sess, network.MsgTypeLeaveLobby, map[string]string{"lobbyId": lobbyID})
}

type addBotsRequest struct {
	Count int `json:"count" validate:"min=0"`
}

func (s *GameServer) handleAddBots(sess *session.Session, packet *network.Packet) error {
	lobbyID, err := currentLobby(sess)
	if err != nil {
		return err
	}
	var req addBotsRequest
	if err := s.decode(packet, &req); err != nil {
		return err
	}
	return s.matches.AddBots(lobbyID, sess.PlayerID(), req.Count)
}

type removeBotRequest struct {
	BotID string `json:"botId" validate:"required"`
}

func (s *GameServer) handleRemoveBot(sess *session.Session, packet *network.Packet) error {
	lobbyID, err := currentLobby(sess)
	if err != nil {
		return err
	}
	var req removeBotRequest
	if err := s.decode(packet, &req); err != nil {
		return err
	}
	return s.matches.RemoveBot(lobbyID, sess.PlayerID(), req.BotID)
}

type startGameRequest struct {
	UserRole string `json:"userRole" validate:"omitempty,oneof=Mafia Detective Healer Commoner"`
}

func (s *GameServer) handleStartGame(sess *session.Session, packet *network.Packet) error {
	lobbyID, err := currentLobby(sess)
	if err != nil {
		return err
	}
	var req startGameRequest
	if err := s.decode(packet, &req); err != nil {
		return err
	}
	role, ok := game.ParseRole(req.UserRole)
	if !ok {
		return errBadRequest
	}
	return s.matches.Start(lobbyID, sess.PlayerID(), role)
}

type targetRequest struct {
	TargetID string `json:"targetId" validate:"required"`
}

func (s *GameServer) handleNightAction(sess *session.Session, packet *network.Packet) error {
	lobbyID, err := currentLobby(sess)
	if err != nil {
		return err
	}
	var req targetRequest
	if err := s.decode(packet, &req); err != nil {
		return err
	}
	return s.matches.NightAction(lobbyID, sess.PlayerID(), req.TargetID)
}

func (s *GameServer) handleCastVote(sess *session.Session, packet *network.Packet) error {
	lobbyID, err := currentLobby(sess)
	if err != nil {
		return err
	}
	var req targetRequest
	if err := s.decode(packet, &req); err != nil {
		return err
	}
	return s.matches.Vote(lobbyID, sess.PlayerID(), req.TargetID)
}

type getLobbyRequest struct {
	LobbyID string `json:"lobbyId"`
}

func (s *GameServer) handleGetLobby(sess *session.Session, packet *network.Packet) error {
	var req getLobbyRequest
	if err := s.decode(packet, &req); err != nil {
		return err
	}
	if req.LobbyID == "" {
		lobbyID, err := currentLobby(sess)
		if err != nil {
			return err
		}
		req.LobbyID = lobbyID
	}
	return s.replyView(sess, network.MsgTypeGetLobby, req.LobbyID)
}
