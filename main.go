package main

import (
	"context"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/wfunc/mafiaserver/broadcast"
	"github.com/wfunc/mafiaserver/config"
	"github.com/wfunc/mafiaserver/lobby"
	"github.com/wfunc/mafiaserver/logger"
	"github.com/wfunc/mafiaserver/monitor"
	"github.com/wfunc/mafiaserver/persistence"
	"github.com/wfunc/mafiaserver/room"
	"github.com/wfunc/mafiaserver/rpc"
	"github.com/wfunc/mafiaserver/server"
	"github.com/wfunc/mafiaserver/services"
	"github.com/wfunc/mafiaserver/session"
	"github.com/wfunc/mafiaserver/timer"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.Init(cfg.Log.Development)
	defer logger.Sync()

	// Initialize Database，driver 为空时不保存对局
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	var playerService *services.PlayerService
	if db != nil {
		defer db.Close()
		playerService = services.NewPlayerService(db)
		logger.Log.Infow("match history enabled", "driver", cfg.Database.Driver)
	}

	mon := monitor.NewMonitor("mafia")
	rooms := room.NewRoomManager()
	sessions := session.NewManager()

	timers := timer.NewTimerManagerWithResolution(cfg.Game.TimerResolution)
	defer timers.Stop()

	opts := []lobby.Option{
		lobby.WithTimers(timers),
		lobby.WithNotifier(broadcast.NewLobbyBroadcaster(rooms, sessions)),
		lobby.WithMetrics(mon),
	}
	if playerService != nil {
		opts = append(opts, lobby.WithRecorder(playerService))
	}
	lobbies := lobby.NewManager(lobby.Settings{
		PhaseDuration:   cfg.Game.PhaseDuration,
		ResolveOnExpiry: cfg.Game.ResolveOnExpiry,
	}, opts...)
	defer lobbies.Close()

	matches := services.NewMatchService(lobbies, services.NewRandomBotPolicy(0))

	gameServer := server.NewGameServer(cfg.Server, cfg.Lobby, server.Deps{
		Lobbies:  lobbies,
		Matches:  matches,
		Sessions: sessions,
		Rooms:    rooms,
		Metrics:  mon,
	})

	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress, rpc.NewGameService(lobbies, playerService))
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gameServer.Serve(ctx) })
	g.Go(func() error { return rpcServer.Serve(ctx) })
	g.Go(func() error { return mon.Serve(ctx, cfg.Server.MetricsAddress) })

	logger.Log.Infof("Starting mafia server on %s", cfg.Server.HTTPAddress)
	if err := g.Wait(); err != nil {
		logger.Log.Errorw("server stopped", "error", err)
	}
	logger.Log.Info("shutdown complete")
}
