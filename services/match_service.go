// services/match_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/wfunc/mafiaserver/game"
	"github.com/wfunc/mafiaserver/lobby"
	"github.com/wfunc/mafiaserver/logger"
)

var (
	ErrNotSeated  = errors.New("player has no living seat in this game")
	ErrWrongPhase = errors.New("action not allowed in the current phase")
)

// MatchService 把房间里的玩家映射到游戏座位，并替机器人行动
type MatchService struct {
	lobbies *lobby.Manager
	bots    BotPolicy
	gameOpt []game.Option
}

func NewMatchService(lobbies *lobby.Manager, bots BotPolicy, opts ...game.Option) *MatchService {
	if bots == nil {
		bots = NewRandomBotPolicy(0)
	}
	return &MatchService{lobbies: lobbies, bots: bots, gameOpt: opts}
}

// Start 开始游戏：发身份、绑定到房间并让机器人完成第一夜的行动。
// userRole 非空时房主拿到该身份
func (s *MatchService) Start(lobbyID, hostID string, userRole game.Role) error {
	if err := s.lobbies.StartGame(lobbyID, hostID); err != nil {
		return err
	}

	snapshot, err := s.lobbies.GetLobby(lobbyID)
	if err != nil {
		return err
	}
	names := make([]string, len(snapshot.Players))
	for i, p := range snapshot.Players {
		names[i] = p.Name
	}

	opts := append([]game.Option{game.WithNames(names...)}, s.gameOpt...)
	g, err := game.New(len(snapshot.Players), userRole, opts...)
	if err != nil {
		if abortErr := s.lobbies.AbortStart(lobbyID); abortErr != nil {
			logger.Log.Warnw("failed to abort start", "lobby", lobbyID, "error", abortErr)
		}
		return err
	}
	if err := s.lobbies.AttachGame(lobbyID, g); err != nil {
		return err
	}

	logger.Log.Infow("game started", "lobby", lobbyID, "players", len(names))
	return s.lobbies.WithGame(lobbyID, func(snapshot lobby.LobbyState, g *game.Game) error {
		s.settleNight(snapshot, g)
		return nil
	})
}

// seat resolves a lobby player to a living in-game player.
func seat(snapshot lobby.LobbyState, g *game.Game, playerID string) (game.Player, error) {
	id, ok := snapshot.SeatOf(playerID)
	if !ok {
		return game.Player{}, fmt.Errorf("%w: %s", ErrNotSeated, playerID)
	}
	p, ok := g.Player(id)
	if !ok || !p.IsAlive {
		return game.Player{}, fmt.Errorf("%w: %s", ErrNotSeated, playerID)
	}
	return p, nil
}

// NightAction submits the target of the player's role class. Commoners have no
// action; their call only lets bots catch up and resolve the night.
func (s *MatchService) NightAction(lobbyID, playerID, targetID string) error {
	return s.lobbies.WithGame(lobbyID, func(snapshot lobby.LobbyState, g *game.Game) error {
		p, err := seat(snapshot, g, playerID)
		if err != nil {
			return err
		}
		if g.Phase() != game.PhaseNight {
			return fmt.Errorf("%w: %s", ErrWrongPhase, g.Phase())
		}
		if p.Role != game.RoleCommoner {
			if err := g.SetNightTarget(p.Role, targetID); err != nil {
				return err
			}
		}
		s.settleNight(snapshot, g)
		return nil
	})
}

// settleNight lets bots act for role classes without a living human, then
// resolves the night once every class has submitted.
func (s *MatchService) settleNight(snapshot lobby.LobbyState, g *game.Game) {
	if g.Phase() != game.PhaseNight || g.Ended() {
		return
	}
	for _, role := range g.PendingRoles() {
		if hasLivingHuman(snapshot, g, role) {
			continue
		}
		target := s.bots.NightTarget(role, nightCandidates(g, role))
		if target == "" {
			continue
		}
		if err := g.SetNightTarget(role, target); err != nil {
			logger.Log.Warnw("bot night action rejected", "lobby", snapshot.ID, "role", role, "error", err)
		}
	}
	if len(g.PendingRoles()) == 0 {
		g.ProcessNightActions()
	}
}

func nightCandidates(g *game.Game, role game.Role) []string {
	if role == game.RoleHealer {
		return g.AvailableTargets("")
	}
	return g.AvailableTargets(role)
}

func hasLivingHuman(snapshot lobby.LobbyState, g *game.Game, role game.Role) bool {
	for _, p := range g.AlivePlayers() {
		if p.Role != role {
			continue
		}
		if occupant, ok := snapshot.Occupant(p.ID); ok && !occupant.IsBot {
			return true
		}
	}
	return false
}

// Vote 投票；所有存活的真人都投完后，机器人随机投票并立即计票
func (s *MatchService) Vote(lobbyID, playerID, targetID string) error {
	snapshot, err := s.lobbies.GetLobby(lobbyID)
	if err != nil {
		return err
	}
	voterID, ok := snapshot.SeatOf(playerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSeated, playerID)
	}
	if snapshot.GameState.CurrentPhase() != game.PhaseDay {
		return fmt.Errorf("%w: %s", ErrWrongPhase, snapshot.GameState.CurrentPhase())
	}
	if err := s.lobbies.CastVote(lobbyID, voterID, targetID); err != nil {
		return err
	}

	return s.lobbies.WithGame(lobbyID, func(snapshot lobby.LobbyState, g *game.Game) error {
		if g.Phase() != game.PhaseDay {
			return nil
		}
		alive := g.AlivePlayers()
		for _, p := range alive {
			occupant, ok := snapshot.Occupant(p.ID)
			if ok && !occupant.IsBot && !snapshot.HasVoted(p.ID) {
				return nil
			}
		}

		candidates := g.AvailableTargets("")
		for _, p := range alive {
			if occupant, ok := snapshot.Occupant(p.ID); ok && !occupant.IsBot {
				continue
			}
			if target := s.bots.VoteTarget(p.ID, candidates); target != "" {
				if err := g.CastVote(p.ID, target); err != nil {
					logger.Log.Warnw("bot vote rejected", "lobby", snapshot.ID, "bot", p.ID, "error", err)
				}
			}
		}
		g.ProcessVoting()
		s.settleNight(snapshot, g)
		return nil
	})
}

// AddBots 只有房主可以添加机器人
func (s *MatchService) AddBots(lobbyID, hostID string, count int) error {
	snapshot, err := s.lobbies.GetLobby(lobbyID)
	if err != nil {
		return err
	}
	if snapshot.HostID != hostID {
		return fmt.Errorf("%w: only the host can add bots", lobby.ErrForbidden)
	}
	return s.lobbies.AddBots(lobbyID, count)
}

// RemoveBot 只有房主可以移除机器人
func (s *MatchService) RemoveBot(lobbyID, hostID, botID string) error {
	snapshot, err := s.lobbies.GetLobby(lobbyID)
	if err != nil {
		return err
	}
	if snapshot.HostID != hostID {
		return fmt.Errorf("%w: only the host can remove bots", lobby.ErrForbidden)
	}
	return s.lobbies.RemoveBot(lobbyID, botID)
}
