// game/game.go
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// MinPlayers is the smallest table a game can be dealt for.
const MinPlayers = 6

const (
	// HealAmount is both the revive hp and the bonus for a living target.
	HealAmount = 500
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidTarget        = errors.New("invalid target")
	ErrInvalidVote          = errors.New("invalid vote")
	ErrNoNightAction        = errors.New("role has no night action")
)

// Option 配置 New 的可选参数
type Option func(*options)

type options struct {
	rng   *rand.Rand
	names []string
}

// WithRand 使用指定的随机源洗牌（测试中用于固定结果）
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithNames overrides the default display names by seat order.
func WithNames(names ...string) Option {
	return func(o *options) { o.names = names }
}

// Game 是一局游戏的裁决器，不是并发安全的，调用方负责串行化
type Game struct {
	state *GameState
}

// RoleCounts 按人数计算各身份数量
func RoleCounts(playerCount int) map[Role]int {
	mafia := max(1, playerCount*2/10)
	detective := max(1, playerCount*2/10)
	healer := max(1, playerCount/10)
	return map[Role]int{
		RoleMafia:     mafia,
		RoleDetective: detective,
		RoleHealer:    healer,
		RoleCommoner:  playerCount - mafia - detective - healer,
	}
}

// New 创建新游戏并分配身份。userRole 为空表示不指定
func New(playerCount int, userRole Role, opts ...Option) (*Game, error) {
	if playerCount < MinPlayers {
		return nil, fmt.Errorf("%w: minimum %d players required, got %d", ErrInvalidConfiguration, MinPlayers, playerCount)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	counts := RoleCounts(playerCount)
	roles := make([]Role, 0, playerCount)
	for _, role := range []Role{RoleMafia, RoleDetective, RoleHealer, RoleCommoner} {
		for range counts[role] {
			roles = append(roles, role)
		}
	}

	for i := len(roles) - 1; i > 0; i-- {
		j := o.rng.Intn(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}

	if userRole != "" {
		for i, role := range roles {
			if role == userRole {
				roles[0], roles[i] = roles[i], roles[0]
				break
			}
		}
	}

	g := newFromRoles(roles)
	for i, name := range o.names {
		if i < len(g.state.Players) && name != "" {
			g.state.Players[i].Name = name
		}
	}
	return g, nil
}

func newFromRoles(roles []Role) *Game {
	players := make([]Player, len(roles))
	for i, role := range roles {
		name := fmt.Sprintf("Player %d", i+1)
		if i == 0 {
			name = "You"
		}
		players[i] = Player{
			ID:      fmt.Sprintf("player_%d", i+1),
			Name:    name,
			Role:    role,
			HP:      InitialHP(role),
			IsAlive: true,
			IsUser:  i == 0,
		}
	}
	return &Game{state: &GameState{
		Players: players,
		Data:    newNightData(),
		Round:   1,
	}}
}

// Snapshot 返回当前状态的深拷贝
func (g *Game) Snapshot() *GameState {
	return g.state.Clone()
}

// Phase 当前阶段
func (g *Game) Phase() Phase { return g.state.CurrentPhase() }

// Round 当前轮次
func (g *Game) Round() int { return g.state.Round }

// Ended 游戏是否结束
func (g *Game) Ended() bool { return g.state.GameEnded }

// Winner 胜利方
func (g *Game) Winner() Winner { return g.state.Winner }

// Player returns a copy of the player with the given id.
func (g *Game) Player(id string) (Player, bool) {
	if p := g.find(id); p != nil {
		return *p, true
	}
	return Player{}, false
}

func (g *Game) find(id string) *Player {
	for i := range g.state.Players {
		if g.state.Players[i].ID == id {
			return &g.state.Players[i]
		}
	}
	return nil
}

func (g *Game) night() (*NightData, bool) {
	n, ok := g.state.Data.(*NightData)
	return n, ok
}

func (g *Game) day() (*DayData, bool) {
	d, ok := g.state.Data.(*DayData)
	return d, ok
}

// --- 夜晚行动 ---

// SetNightTarget dispatches to the submission of the given role class.
func (g *Game) SetNightTarget(role Role, targetID string) error {
	switch role {
	case RoleMafia:
		return g.SetMafiaTarget(targetID)
	case RoleDetective:
		return g.SetDetectiveTarget(targetID)
	case RoleHealer:
		return g.SetHealerTarget(targetID)
	}
	return fmt.Errorf("%w: %s", ErrNoNightAction, role)
}

// SetMafiaTarget 设置黑手党目标，非夜晚阶段忽略
func (g *Game) SetMafiaTarget(targetID string) error {
	n, ok := g.night()
	if !ok {
		return nil
	}
	if err := g.validateTarget(targetID, RoleMafia); err != nil {
		return err
	}
	n.Actions.MafiaTarget = targetID
	return nil
}

// SetDetectiveTarget 设置侦探调查目标，非夜晚阶段忽略
func (g *Game) SetDetectiveTarget(targetID string) error {
	n, ok := g.night()
	if !ok {
		return nil
	}
	if err := g.validateTarget(targetID, RoleDetective); err != nil {
		return err
	}
	n.Actions.DetectiveTarget = targetID
	return nil
}

// SetHealerTarget 设置治疗目标，可以是任何存活玩家（包括治疗者）
func (g *Game) SetHealerTarget(targetID string) error {
	n, ok := g.night()
	if !ok {
		return nil
	}
	if err := g.validateTarget(targetID, ""); err != nil {
		return err
	}
	n.Actions.HealerTarget = targetID
	return nil
}

// validateTarget rejects missing or dead targets, and living members of ownClass.
func (g *Game) validateTarget(targetID string, ownClass Role) error {
	target := g.find(targetID)
	if target == nil || !target.IsAlive {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, targetID)
	}
	if ownClass != "" && target.Role == ownClass {
		return fmt.Errorf("%w: %q is a %s", ErrInvalidTarget, targetID, ownClass)
	}
	return nil
}

// PendingRoles lists role classes with living members that have not submitted yet.
func (g *Game) PendingRoles() []Role {
	n, ok := g.night()
	if !ok {
		return nil
	}
	var pending []Role
	for _, role := range []Role{RoleMafia, RoleDetective, RoleHealer} {
		if n.Actions.Target(role) != "" {
			continue
		}
		for _, p := range g.state.Players {
			if p.IsAlive && p.Role == role {
				pending = append(pending, role)
				break
			}
		}
	}
	return pending
}

// ProcessNightActions 结算夜晚行动：侦探 -> 黑手党攻击 -> 治疗 -> 进入白天
func (g *Game) ProcessNightActions() {
	n, ok := g.night()
	if !ok {
		return
	}
	actions := n.Actions

	if actions.DetectiveTarget != "" {
		if target := g.find(actions.DetectiveTarget); target != nil {
			isMafia := target.Role == RoleMafia
			g.state.DetectiveResult = &DetectiveResult{TargetID: target.ID, IsMafia: isMafia}

			// 侦探查出黑手党：立即淘汰，本轮其余结算全部跳过
			if isMafia {
				target.HP = 0
				target.IsAlive = false
				n.Exposure = &VotingResults{Votes: make(map[string]int), EliminatedPlayer: target.ID}
				g.checkWinCondition()
				return
			}
		}
	}

	if actions.MafiaTarget != "" {
		g.mafiaAttack(actions.MafiaTarget)
	}
	if actions.HealerTarget != "" {
		g.heal(actions.HealerTarget)
	}

	g.state.Data = newDayData()
}

func (g *Game) mafiaAttack(targetID string) {
	target := g.find(targetID)
	if target == nil || !target.IsAlive {
		return
	}

	var attackers []*Player
	combinedHP := 0
	for i := range g.state.Players {
		p := &g.state.Players[i]
		if p.Role == RoleMafia && p.IsAlive && p.HP > 0 {
			attackers = append(attackers, p)
			combinedHP += p.HP
		}
	}
	if len(attackers) == 0 {
		return
	}

	initialHP := target.HP
	if combinedHP >= target.HP {
		target.HP = 0
		target.IsAlive = false
	} else {
		target.HP -= combinedHP
	}

	// 目标集体反击，伤害平摊到每个攻击者
	damage := initialHP / len(attackers)
	for _, m := range attackers {
		m.HP = max(0, m.HP-damage)
	}
}

// heal 需要至少一个存活的治疗者；目标在本夜被杀时可以复活
func (g *Game) heal(targetID string) {
	target := g.find(targetID)
	if target == nil || !g.hasLiving(RoleHealer) {
		return
	}
	if target.HP == 0 {
		target.HP = HealAmount
		target.IsAlive = true
		return
	}
	target.HP += HealAmount
}

func (g *Game) hasLiving(role Role) bool {
	for _, p := range g.state.Players {
		if p.Role == role && p.IsAlive && p.HP > 0 {
			return true
		}
	}
	return false
}

// --- 白天投票 ---

// CastVote 投票，非白天阶段忽略。同一投票者可以多次投票
func (g *Game) CastVote(voterID, targetID string) error {
	d, ok := g.day()
	if !ok {
		return nil
	}
	voter := g.find(voterID)
	target := g.find(targetID)
	if voter == nil || !voter.IsAlive || target == nil || !target.IsAlive {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidVote, voterID, targetID)
	}
	d.Voting.Votes[targetID]++
	return nil
}

// ProcessVoting 统计投票；平票时清空重投
func (g *Game) ProcessVoting() {
	d, ok := g.day()
	if !ok || len(d.Voting.Votes) == 0 {
		return
	}

	maxVotes := 0
	for _, n := range d.Voting.Votes {
		maxVotes = max(maxVotes, n)
	}
	var candidates []string
	for id, n := range d.Voting.Votes {
		if n == maxVotes {
			candidates = append(candidates, id)
		}
	}

	if len(candidates) != 1 {
		d.Voting = VotingResults{Votes: make(map[string]int)}
		return
	}

	eliminated := g.find(candidates[0])
	if eliminated == nil {
		return
	}
	eliminated.IsAlive = false
	d.Voting.EliminatedPlayer = eliminated.ID
	g.checkWinCondition()
	g.advanceToNextRound()
}

// BallotsCast 当前白天已计入的票数
func (g *Game) BallotsCast() int {
	d, ok := g.day()
	if !ok {
		return 0
	}
	n := 0
	for _, votes := range d.Voting.Votes {
		n += votes
	}
	return n
}

func (g *Game) advanceToNextRound() {
	if g.state.GameEnded {
		return
	}
	g.state.Round++
	g.state.Data = newNightData()
	g.state.DetectiveResult = nil
}

// FlipPhase toggles night and day without resolving anything, discarding
// whatever the outgoing phase had collected.
func (g *Game) FlipPhase() {
	if g.state.CurrentPhase() == PhaseNight {
		g.state.Data = newDayData()
		return
	}
	g.state.Data = newNightData()
	g.state.DetectiveResult = nil
}

func (g *Game) checkWinCondition() {
	aliveMafia, aliveOthers := 0, 0
	for _, p := range g.state.Players {
		if !p.IsAlive {
			continue
		}
		if p.Role == RoleMafia {
			aliveMafia++
		} else {
			aliveOthers++
		}
	}

	switch {
	case aliveMafia >= aliveOthers && aliveOthers > 0:
		g.state.GameEnded = true
		g.state.Winner = WinnerMafia
	case aliveMafia == 0:
		g.state.GameEnded = true
		g.state.Winner = WinnerVillagers
	}
}

// --- 查询 ---

// AvailableTargets 存活玩家ID，可排除某一身份
func (g *Game) AvailableTargets(excludeRole Role) []string {
	var ids []string
	for _, p := range g.state.Players {
		if p.IsAlive && (excludeRole == "" || p.Role != excludeRole) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// AlivePlayers 存活玩家
func (g *Game) AlivePlayers() []Player {
	var alive []Player
	for _, p := range g.state.Players {
		if p.IsAlive {
			alive = append(alive, p)
		}
	}
	return alive
}

// UserPlayer returns the human-perspective player.
func (g *Game) UserPlayer() (Player, bool) {
	for _, p := range g.state.Players {
		if p.IsUser {
			return p, true
		}
	}
	return Player{}, false
}

// IsUserTurn reports whether the user still has something to do this phase.
func (g *Game) IsUserTurn() bool {
	user, ok := g.UserPlayer()
	if !ok || !user.IsAlive {
		return false
	}
	switch d := g.state.Data.(type) {
	case *NightData:
		switch user.Role {
		case RoleMafia, RoleDetective, RoleHealer:
			return d.Actions.Target(user.Role) == ""
		}
		return false
	case *DayData:
		return d.Voting.EliminatedPlayer == ""
	}
	return false
}
