package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/mafiaserver/lobby"
	"github.com/wfunc/mafiaserver/logger"
	"github.com/wfunc/mafiaserver/models"
	"github.com/wfunc/mafiaserver/services"
)

const callTimeout = 5 * time.Second

// ErrStatsDisabled is returned when no match history store is configured.
var ErrStatsDisabled = errors.New("player statistics are disabled")

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer listens on addr and registers the admin GameService.
func NewServer(addr string, svc *GameService) (*Server, error) {
	rs := rpc.NewServer()
	if err := rs.RegisterName("GameService", svc); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      rs,
	}, nil
}

// Addr is the bound address, useful when listening on ":0".
func (s *Server) Addr() string {
	return s.address
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infow("RPC server listening", "addr", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorw("RPC server accept error", "error", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Serve runs Start until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	s.Start()
	return nil
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService 管理端只读接口
type GameService struct {
	lobbies       *lobby.Manager
	playerService *services.PlayerService
}

// NewGameService creates a new GameService. ps may be nil when persistence is off.
func NewGameService(lobbies *lobby.Manager, ps *services.PlayerService) *GameService {
	return &GameService{lobbies: lobbies, playerService: ps}
}

type GetLobbyArgs struct {
	LobbyID string
}

// GetLobbyReply carries the unredacted snapshot.
type GetLobbyReply struct {
	Lobby       lobby.LobbyState
	RemainingMs int64
}

func (gs *GameService) GetLobby(args *GetLobbyArgs, reply *GetLobbyReply) error {
	snapshot, err := gs.lobbies.GetLobby(args.LobbyID)
	if err != nil {
		return err
	}
	reply.Lobby = snapshot
	reply.RemainingMs = gs.lobbies.RemainingTime(args.LobbyID).Milliseconds()
	return nil
}

type ListLobbiesArgs struct{}

type ListLobbiesReply struct {
	Lobbies []lobby.LobbyState
}

func (gs *GameService) ListLobbies(_ *ListLobbiesArgs, reply *ListLobbiesReply) error {
	reply.Lobbies = gs.lobbies.ListLobbies()
	return nil
}

type GetHistoryArgs struct {
	LobbyID string
}

type GetHistoryReply struct {
	Records []models.GameRecord
}

// GetHistory 房间里已结束的对局，按结束时间排序
func (gs *GameService) GetHistory(args *GetHistoryArgs, reply *GetHistoryReply) error {
	if gs.playerService == nil {
		return ErrStatsDisabled
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	records, err := gs.playerService.History(ctx, args.LobbyID)
	if err != nil {
		return err
	}
	reply.Records = records
	return nil
}

type GetPlayerStatsArgs struct {
	PlayerID string
}

type GetPlayerStatsReply struct {
	Stats models.PlayerStats
}

func (gs *GameService) GetPlayerStats(args *GetPlayerStatsArgs, reply *GetPlayerStatsReply) error {
	if gs.playerService == nil {
		return ErrStatsDisabled
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	stats, err := gs.playerService.GetPlayerStats(ctx, args.PlayerID)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}
