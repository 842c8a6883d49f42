// lobby/manager.go
package lobby

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wfunc/mafiaserver/game"
	"github.com/wfunc/mafiaserver/logger"
	"github.com/wfunc/mafiaserver/models"
	"github.com/wfunc/mafiaserver/state"
	"github.com/wfunc/mafiaserver/timer"
)

const (
	// DefaultPhaseDuration 每个阶段的默认时长
	DefaultPhaseDuration = 60 * time.Second

	joinCodeAttempts = 100
	recordTimeout    = 5 * time.Second
)

// Settings 调度器配置
type Settings struct {
	PhaseDuration time.Duration
	// ResolveOnExpiry makes the phase timer resolve submitted actions before
	// flipping, instead of discarding them.
	ResolveOnExpiry bool
}

// Option 配置 Manager 的可选参数
type Option func(*Manager)

// WithTimers shares an existing timer manager; the Manager will not stop it on Close.
func WithTimers(t *timer.TimerManager) Option {
	return func(m *Manager) {
		m.timers = t
		m.ownsTimers = false
	}
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

func WithMetrics(metrics Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithClock 替换时间源（测试用）
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithJoinCodes replaces the 6-digit join code generator.
func WithJoinCodes(gen func() string) Option {
	return func(m *Manager) { m.newCode = gen }
}

// Manager 管理所有房间以及每个房间的阶段计时器。
// 房间表由 mutex 保护，每个房间有自己的锁，不同房间之间互不阻塞。
// 需要同时持有时先拿房间锁，再拿 mutex
type Manager struct {
	lobbies map[string]*Lobby
	codes   map[string]string // joinCode -> lobbyID
	mutex   sync.RWMutex

	settings   Settings
	timers     *timer.TimerManager
	ownsTimers bool
	notifier   Notifier
	recorder   Recorder
	metrics    Metrics
	clock      func() time.Time
	newCode    func() string
	validate   *validator.Validate
}

// NewManager 创建房间管理器
func NewManager(settings Settings, opts ...Option) *Manager {
	if settings.PhaseDuration <= 0 {
		settings.PhaseDuration = DefaultPhaseDuration
	}
	m := &Manager{
		lobbies:    make(map[string]*Lobby),
		codes:      make(map[string]string),
		settings:   settings,
		ownsTimers: true,
		notifier:   noopNotifier{},
		metrics:    noopMetrics{},
		clock:      time.Now,
		newCode:    randomJoinCode,
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.timers == nil {
		m.timers = timer.NewTimerManager()
		m.ownsTimers = true
	}
	return m
}

// Close stops the phase timers owned by the manager.
func (m *Manager) Close() {
	if m.ownsTimers {
		m.timers.Stop()
	}
}

func (m *Manager) now() time.Time {
	return m.clock()
}

func randomJoinCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		// crypto/rand 不可用时退化为时间戳
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1_000_000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// --- 房间表 ---

func (m *Manager) lookup(lobbyID string) (*Lobby, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	l, exists := m.lobbies[lobbyID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, lobbyID)
	}
	return l, nil
}

// lock returns the lobby with its mutex held.
func (m *Manager) lock(lobbyID string) (*Lobby, error) {
	l, err := m.lookup(lobbyID)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	if l.deleted {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, lobbyID)
	}
	return l, nil
}

// CreateLobby 创建房间，房主是唯一的初始玩家
func (m *Manager) CreateLobby(cfg Config, hostID, hostName string) (LobbyState, error) {
	if err := m.validate.Struct(cfg); err != nil {
		return LobbyState{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if hostID == "" {
		return LobbyState{}, fmt.Errorf("%w: host id is required", ErrInvalidConfiguration)
	}

	now := m.now()
	l := &Lobby{
		id:     uuid.New().String(),
		config: cfg,
		players: []Player{{
			ID:       hostID,
			Name:     hostName,
			IsHost:   true,
			JoinedAt: now,
		}},
		hostID:    hostID,
		createdAt: now,
		voters:    make(map[string]bool),
	}
	l.lifecycle = m.newLifecycle(l)

	m.mutex.Lock()
	code, err := m.allocateCode()
	if err != nil {
		m.mutex.Unlock()
		return LobbyState{}, err
	}
	l.joinCode = code
	m.lobbies[l.id] = l
	m.codes[code] = l.id
	m.mutex.Unlock()

	m.metrics.LobbyCreated()
	logger.Log.Infow("lobby created", "lobby", l.id, "code", code, "host", hostID)

	l.mu.Lock()
	defer l.mu.Unlock()
	return m.publish(l), nil
}

// allocateCode must be called with m.mutex held. Codes of finished lobbies may be reused.
func (m *Manager) allocateCode() (string, error) {
	for range joinCodeAttempts {
		code := m.newCode()
		id, taken := m.codes[code]
		if !taken {
			return code, nil
		}
		if holder, ok := m.lobbies[id]; !ok || holder.lifecycle.Current() == StatusFinished {
			return code, nil
		}
	}
	return "", ErrJoinCodeExhausted
}

func (m *Manager) newLifecycle(l *Lobby) *state.Machine[Status] {
	sm := state.NewMachine(StatusWaiting)
	sm.AddTransition(StatusWaiting, StatusStarting, func() bool {
		return l.humanCount() >= l.config.MinPlayers
	})
	sm.AddTransition(StatusStarting, StatusWaiting, nil)
	sm.AddTransition(StatusStarting, StatusInProgress, func() bool {
		return l.game != nil
	})
	sm.AddTransition(StatusInProgress, StatusFinished, func() bool {
		return l.game != nil && l.game.Ended()
	})

	sm.OnEnter(StatusInProgress, func(Status) {
		l.startedAt = m.now()
		m.metrics.GameStarted()
		m.armPhaseTimer(l)
	})
	sm.OnEnter(StatusFinished, func(Status) {
		m.cancelPhaseTimer(l)
		winner := string(l.game.Winner())
		m.metrics.GameFinished(winner)
		logger.Log.Infow("game finished", "lobby", l.id, "winner", winner, "round", l.game.Round())
		m.record(l)
		m.notifier.GameOver(l.snapshot())
	})
	return sm
}

// JoinLobby 通过加入码加入房间。重复加入返回原房间
func (m *Manager) JoinLobby(joinCode, playerID, playerName string) (LobbyState, error) {
	m.mutex.RLock()
	lobbyID, exists := m.codes[joinCode]
	m.mutex.RUnlock()
	if !exists {
		return LobbyState{}, fmt.Errorf("%w: join code %s", ErrNotFound, joinCode)
	}

	l, err := m.lock(lobbyID)
	if err != nil {
		return LobbyState{}, err
	}
	defer l.mu.Unlock()

	if l.hasPlayer(playerID) {
		return l.snapshot(), nil
	}
	if l.status() != StatusWaiting {
		return LobbyState{}, fmt.Errorf("%w: lobby is %s", ErrWrongStatus, l.status())
	}
	if l.config.JoinTimeoutSeconds > 0 &&
		m.now().After(l.createdAt.Add(time.Duration(l.config.JoinTimeoutSeconds)*time.Second)) {
		return LobbyState{}, ErrJoinClosed
	}
	if l.humanCount() >= l.config.MaxPlayers {
		return LobbyState{}, fmt.Errorf("%w: %d/%d", ErrLobbyFull, l.humanCount(), l.config.MaxPlayers)
	}

	l.players = append(l.players, Player{
		ID:       playerID,
		Name:     playerName,
		JoinedAt: m.now(),
	})
	logger.Log.Infow("player joined", "lobby", l.id, "player", playerID)
	return m.publish(l), nil
}

// LeaveLobby 离开等待中的房间。房主离开时由最早加入的真人接任，
// 没有真人时房间被删除；多出的机器人一并移除
func (m *Manager) LeaveLobby(lobbyID, playerID string) error {
	l, err := m.lock(lobbyID)
	if err != nil {
		return err
	}
	defer l.mu.Unlock()

	idx := l.indexOf(playerID)
	if idx < 0 || l.players[idx].IsBot {
		return fmt.Errorf("%w: %s is not a member", ErrNotFound, playerID)
	}
	if l.status() != StatusWaiting {
		return fmt.Errorf("%w: lobby is %s", ErrWrongStatus, l.status())
	}

	l.players = append(l.players[:idx], l.players[idx+1:]...)
	if l.humanCount() == 0 {
		m.remove(l)
		return nil
	}

	if l.hostID == playerID {
		for i := range l.players {
			if !l.players[i].IsBot {
				l.players[i].IsHost = true
				l.hostID = l.players[i].ID
				break
			}
		}
	}
	for l.botCount() > l.humanCount()-1 {
		for i := len(l.players) - 1; i >= 0; i-- {
			if l.players[i].IsBot {
				l.players = append(l.players[:i], l.players[i+1:]...)
				break
			}
		}
	}

	logger.Log.Infow("player left", "lobby", l.id, "player", playerID, "host", l.hostID)
	m.publish(l)
	return nil
}

// AddBots 添加机器人，机器人数量最多比真人少一个
func (m *Manager) AddBots(lobbyID string, count int) error {
	l, err := m.lock(lobbyID)
	if err != nil {
		return err
	}
	defer l.mu.Unlock()

	if l.status() != StatusWaiting {
		return fmt.Errorf("%w: lobby is %s", ErrWrongStatus, l.status())
	}
	if count < 0 {
		return fmt.Errorf("%w: bot count must not be negative, got %d", ErrBotCap, count)
	}
	if count == 0 {
		return nil
	}
	current := l.botCount()
	limit := max(0, l.humanCount()-1)
	if current+count > limit {
		return fmt.Errorf("%w: %d + %d > %d", ErrBotCap, current, count, limit)
	}

	now := m.now()
	for i := range count {
		n := current + i + 1
		id := fmt.Sprintf("bot_%d_%d", now.UnixMilli(), n)
		for suffix := 2; l.hasPlayer(id); suffix++ {
			id = fmt.Sprintf("bot_%d_%d_%d", now.UnixMilli(), n, suffix)
		}
		l.players = append(l.players, Player{
			ID:       id,
			Name:     fmt.Sprintf("Bot %d", n),
			IsBot:    true,
			JoinedAt: now,
		})
	}
	m.publish(l)
	return nil
}

// RemoveBot 移除一个机器人
func (m *Manager) RemoveBot(lobbyID, botID string) error {
	l, err := m.lock(lobbyID)
	if err != nil {
		return err
	}
	defer l.mu.Unlock()

	if l.status() != StatusWaiting {
		return fmt.Errorf("%w: lobby is %s", ErrWrongStatus, l.status())
	}
	idx := l.indexOf(botID)
	if idx < 0 || !l.players[idx].IsBot {
		return fmt.Errorf("%w: bot %s", ErrNotFound, botID)
	}
	l.players = append(l.players[:idx], l.players[idx+1:]...)
	m.publish(l)
	return nil
}

// StartGame 房主开始游戏：waiting -> starting
func (m *Manager) StartGame(lobbyID, hostID string) error {
	l, err := m.lock(lobbyID)
	if err != nil {
		return err
	}
	defer l.mu.Unlock()

	if l.hostID != hostID {
		return fmt.Errorf("%w: only the host can start the game", ErrForbidden)
	}
	if l.status() != StatusWaiting {
		return fmt.Errorf("%w: lobby is %s", ErrWrongStatus, l.status())
	}
	if err := l.lifecycle.ChangeState(StatusStarting); err != nil {
		if errors.Is(err, state.ErrTransitionNotAllowed) {
			return fmt.Errorf("%w: %d/%d humans", ErrNotEnoughPlayers, l.humanCount(), l.config.MinPlayers)
		}
		return err
	}
	m.publish(l)
	return nil
}

// AbortStart returns a starting lobby to waiting, e.g. when no game could be dealt.
func (m *Manager) AbortStart(lobbyID string) error {
	l, err := m.lock(lobbyID)
	if err != nil {
		return err
	}
	defer l.mu.Unlock()

	if l.status() != StatusStarting {
		return fmt.Errorf("%w: lobby is %s", ErrWrongStatus, l.status())
	}
	if err := l.lifecycle.ChangeState(StatusWaiting); err != nil {
		return err
	}
	m.publish(l)
	return nil
}

// AttachGame 绑定游戏状态，只能在 starting 状态调用；进入 in-progress 并启动阶段计时器
func (m *Manager) AttachGame(lobbyID string, g *game.Game) error {
	if g == nil {
		return fmt.Errorf("%w: nil game", ErrInvalidConfiguration)
	}
	l, err := m.lock(lobbyID)
	if err != nil {
		return err
	}
	defer l.mu.Unlock()

	if l.status() != StatusStarting {
		return fmt.Errorf("%w: lobby is %s", ErrWrongStatus, l.status())
	}
	l.game = g
	if err := l.lifecycle.ChangeState(StatusInProgress); err != nil {
		l.game = nil
		return err
	}
	m.publish(l)
	return nil
}

// --- 游戏操作，全部在房间锁内转发给裁决器 ---

// mutate runs fn against the attached game under the lobby lock, then settles
// phase changes, timers and game end even when fn reports an error.
func (m *Manager) mutate(lobbyID string, fn func(l *Lobby, g *game.Game) error) error {
	l, err := m.lock(lobbyID)
	if err != nil {
		return err
	}
	defer l.mu.Unlock()

	if l.game == nil || l.status() != StatusInProgress {
		return fmt.Errorf("%w: lobby is %s", ErrNotInProgress, l.status())
	}

	phase, round := l.game.Phase(), l.game.Round()
	fnErr := fn(l, l.game)
	m.settle(l, phase, round, ReasonAction)
	return fnErr
}

// settle must be called with l.mu held.
func (m *Manager) settle(l *Lobby, phase game.Phase, round int, reason string) {
	g := l.game
	switch {
	case g.Ended():
		if err := l.lifecycle.ChangeState(StatusFinished); err != nil {
			logger.Log.Errorw("failed to finish lobby", "lobby", l.id, "error", err)
		}
	case g.Phase() != phase || g.Round() != round:
		clear(l.voters)
		m.metrics.PhaseAdvanced(reason)
		m.armPhaseTimer(l)
	case g.BallotsCast() == 0:
		// 平票后重投
		clear(l.voters)
	}
	m.publish(l)
}

// SetNightTarget 提交某一身份阵营的夜间目标
func (m *Manager) SetNightTarget(lobbyID string, role game.Role, targetID string) error {
	return m.mutate(lobbyID, func(_ *Lobby, g *game.Game) error {
		return g.SetNightTarget(role, targetID)
	})
}

// ProcessNightActions 立即结算夜晚
func (m *Manager) ProcessNightActions(lobbyID string) error {
	return m.mutate(lobbyID, func(_ *Lobby, g *game.Game) error {
		g.ProcessNightActions()
		return nil
	})
}

// CastVote 投票。每个投票者每个白天只计一票
func (m *Manager) CastVote(lobbyID, voterID, targetID string) error {
	return m.mutate(lobbyID, func(l *Lobby, g *game.Game) error {
		if g.Phase() != game.PhaseDay {
			return nil
		}
		if l.voters[voterID] {
			return fmt.Errorf("%w: %s", ErrAlreadyVoted, voterID)
		}
		if err := g.CastVote(voterID, targetID); err != nil {
			return err
		}
		l.voters[voterID] = true
		return nil
	})
}

// ProcessVoting 立即统计投票
func (m *Manager) ProcessVoting(lobbyID string) error {
	return m.mutate(lobbyID, func(_ *Lobby, g *game.Game) error {
		g.ProcessVoting()
		return nil
	})
}

// WithGame runs a compound operation atomically against the lobby's game.
// snapshot is the lobby as it was when fn started.
func (m *Manager) WithGame(lobbyID string, fn func(snapshot LobbyState, g *game.Game) error) error {
	return m.mutate(lobbyID, func(l *Lobby, g *game.Game) error {
		return fn(l.snapshot(), g)
	})
}

// --- 阶段计时器 ---

// armPhaseTimer must be called with l.mu held.
func (m *Manager) armPhaseTimer(l *Lobby) {
	m.cancelPhaseTimer(l)

	l.generation++
	generation := l.generation
	now := m.now()
	l.phaseStart = now
	l.phaseEnd = now.Add(m.settings.PhaseDuration)

	lobbyID := l.id
	l.timerID = m.timers.AddTimer(m.settings.PhaseDuration, 0, func() {
		m.onPhaseExpired(lobbyID, generation)
	})
}

// cancelPhaseTimer must be called with l.mu held.
func (m *Manager) cancelPhaseTimer(l *Lobby) {
	if l.timerID != 0 {
		m.timers.RemoveTimer(l.timerID)
		l.timerID = 0
	}
	l.phaseStart, l.phaseEnd = time.Time{}, time.Time{}
	l.generation++
}

func (m *Manager) onPhaseExpired(lobbyID string, generation uint64) {
	l, err := m.lock(lobbyID)
	if err != nil {
		// 房间已被删除
		return
	}
	defer l.mu.Unlock()

	if generation != l.generation || l.status() != StatusInProgress || l.game == nil {
		return
	}
	l.timerID = 0

	g := l.game
	phase, round := g.Phase(), g.Round()
	if m.settings.ResolveOnExpiry {
		if phase == game.PhaseNight {
			g.ProcessNightActions()
		} else {
			g.ProcessVoting()
		}
	}
	if !g.Ended() && g.Phase() == phase && g.Round() == round {
		g.FlipPhase()
	}

	logger.Log.Debugw("phase expired", "lobby", l.id, "from", phase, "to", g.Phase(), "round", g.Round())
	m.settle(l, phase, round, ReasonTimer)
}

// RemainingTime 当前阶段剩余时间，没有计时器时为 0
func (m *Manager) RemainingTime(lobbyID string) time.Duration {
	l, err := m.lock(lobbyID)
	if err != nil {
		return 0
	}
	defer l.mu.Unlock()

	if l.phaseEnd.IsZero() || l.timerID == 0 {
		return 0
	}
	return max(0, l.phaseEnd.Sub(m.now()))
}

// --- 查询 ---

// GetLobby 返回房间快照（包含游戏状态）
func (m *Manager) GetLobby(lobbyID string) (LobbyState, error) {
	l, err := m.lock(lobbyID)
	if err != nil {
		return LobbyState{}, err
	}
	defer l.mu.Unlock()
	return l.snapshot(), nil
}

// GetLobbyByCode 通过加入码查找房间
func (m *Manager) GetLobbyByCode(joinCode string) (LobbyState, error) {
	m.mutex.RLock()
	lobbyID, exists := m.codes[joinCode]
	m.mutex.RUnlock()
	if !exists {
		return LobbyState{}, fmt.Errorf("%w: join code %s", ErrNotFound, joinCode)
	}
	return m.GetLobby(lobbyID)
}

// IsPlayerInLobby 检查玩家是否在房间中
func (m *Manager) IsPlayerInLobby(lobbyID, playerID string) bool {
	l, err := m.lock(lobbyID)
	if err != nil {
		return false
	}
	defer l.mu.Unlock()
	return l.hasPlayer(playerID)
}

// ListLobbies returns snapshots of every lobby, oldest first.
func (m *Manager) ListLobbies() []LobbyState {
	m.mutex.RLock()
	all := make([]*Lobby, 0, len(m.lobbies))
	for _, l := range m.lobbies {
		all = append(all, l)
	}
	m.mutex.RUnlock()

	out := make([]LobbyState, 0, len(all))
	for _, l := range all {
		l.mu.Lock()
		if !l.deleted {
			out = append(out, l.snapshot())
		}
		l.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// DeleteLobby 删除房间并取消计时器
func (m *Manager) DeleteLobby(lobbyID string) error {
	l, err := m.lock(lobbyID)
	if err != nil {
		return err
	}
	defer l.mu.Unlock()
	m.remove(l)
	return nil
}

// remove must be called with l.mu held.
func (m *Manager) remove(l *Lobby) {
	l.deleted = true
	m.cancelPhaseTimer(l)

	m.mutex.Lock()
	delete(m.lobbies, l.id)
	if m.codes[l.joinCode] == l.id {
		delete(m.codes, l.joinCode)
	}
	m.mutex.Unlock()

	m.metrics.LobbyRemoved()
	logger.Log.Infow("lobby deleted", "lobby", l.id)
}

// publish 通知订阅者，调用方必须持有 l.mu
func (m *Manager) publish(l *Lobby) LobbyState {
	s := l.snapshot()
	m.notifier.LobbyUpdated(s)
	return s
}

// record must be called with l.mu held; the write itself happens asynchronously.
func (m *Manager) record(l *Lobby) {
	if m.recorder == nil || l.game == nil {
		return
	}
	gs := l.game.Snapshot()
	rec := models.GameRecord{
		LobbyID:    l.id,
		Winner:     string(gs.Winner),
		Rounds:     gs.Round,
		StartedAt:  l.startedAt,
		FinishedAt: m.now(),
	}
	for i, gp := range gs.Players {
		outcome := models.PlayerOutcome{
			PlayerID: gp.ID,
			Name:     gp.Name,
			Role:     string(gp.Role),
			Survived: gp.IsAlive,
			Outcome:  models.OutcomeLose,
		}
		if i < len(l.players) {
			outcome.PlayerID = l.players[i].ID
			outcome.Name = l.players[i].Name
			outcome.IsBot = l.players[i].IsBot
		}
		if (gs.Winner == game.WinnerMafia) == (gp.Role == game.RoleMafia) {
			outcome.Outcome = models.OutcomeWin
		}
		rec.Players = append(rec.Players, outcome)
	}

	recorder := m.recorder
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := recorder.RecordGame(ctx, rec); err != nil {
			logger.Log.Errorw("failed to record game", "lobby", rec.LobbyID, "error", err)
		}
	}()
}
