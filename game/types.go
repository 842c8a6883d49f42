// game/types.go
package game

import (
	"encoding/json"
	"maps"
)

// Role 玩家身份
type Role string

const (
	RoleMafia     Role = "Mafia"
	RoleDetective Role = "Detective"
	RoleHealer    Role = "Healer"
	RoleCommoner  Role = "Commoner"
)

// ParseRole accepts the canonical role names; the empty string means "no preference".
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleMafia, RoleDetective, RoleHealer, RoleCommoner:
		return Role(s), true
	case "":
		return "", true
	}
	return "", false
}

// InitialHP 返回身份对应的初始血量
func InitialHP(role Role) int {
	switch role {
	case RoleMafia:
		return 2500
	case RoleDetective, RoleHealer:
		return 800
	default:
		return 1000
	}
}

// Phase 游戏阶段
type Phase string

const (
	PhaseNight Phase = "night"
	PhaseDay   Phase = "day"
)

// Winner 胜利阵营
type Winner string

const (
	WinnerNone      Winner = ""
	WinnerMafia     Winner = "Mafia"
	WinnerVillagers Winner = "Villagers"
)

// Player 游戏中的玩家
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    Role   `json:"role,omitempty"`
	HP      int    `json:"hp"`
	IsAlive bool   `json:"isAlive"`
	IsUser  bool   `json:"isUser"`
}

// NightActions holds at most one pending target per role class.
type NightActions struct {
	MafiaTarget     string `json:"mafiaTarget,omitempty"`
	DetectiveTarget string `json:"detectiveTarget,omitempty"`
	HealerTarget    string `json:"healerTarget,omitempty"`
}

// Target returns the pending target of a role class.
func (a NightActions) Target(role Role) string {
	switch role {
	case RoleMafia:
		return a.MafiaTarget
	case RoleDetective:
		return a.DetectiveTarget
	case RoleHealer:
		return a.HealerTarget
	}
	return ""
}

// DetectiveResult 侦探的最近一次调查结果
type DetectiveResult struct {
	TargetID string `json:"targetId"`
	IsMafia  bool   `json:"isMafia"`
}

// VotingResults 投票结果
type VotingResults struct {
	Votes            map[string]int `json:"votes"`
	EliminatedPlayer string         `json:"eliminatedPlayer,omitempty"`
}

func (v *VotingResults) clone() *VotingResults {
	if v == nil {
		return nil
	}
	votes := make(map[string]int, len(v.Votes))
	maps.Copy(votes, v.Votes)
	return &VotingResults{Votes: votes, EliminatedPlayer: v.EliminatedPlayer}
}

// PhaseData is the phase-specific part of a GameState. Exactly one of
// *NightData or *DayData is held at a time.
type PhaseData interface {
	Phase() Phase
	clone() PhaseData
}

// NightData 夜晚阶段数据
type NightData struct {
	Actions NightActions
	// Exposure is set when the detective unmasked a Mafia this night.
	Exposure *VotingResults
}

func (n *NightData) Phase() Phase { return PhaseNight }

func (n *NightData) clone() PhaseData {
	return &NightData{Actions: n.Actions, Exposure: n.Exposure.clone()}
}

// DayData 白天阶段数据
type DayData struct {
	Voting VotingResults
}

func (d *DayData) Phase() Phase { return PhaseDay }

func (d *DayData) clone() PhaseData {
	return &DayData{Voting: *d.Voting.clone()}
}

func newNightData() *NightData { return &NightData{} }

func newDayData() *DayData {
	return &DayData{Voting: VotingResults{Votes: make(map[string]int)}}
}

// GameState 一局游戏的完整状态
type GameState struct {
	Players         []Player
	Data            PhaseData
	Round           int
	GameEnded       bool
	Winner          Winner
	DetectiveResult *DetectiveResult
}

// CurrentPhase 当前阶段
func (s *GameState) CurrentPhase() Phase {
	if s.Data == nil {
		return PhaseNight
	}
	return s.Data.Phase()
}

// NightActions returns the pending night actions; ok is false outside night.
func (s *GameState) NightActions() (NightActions, bool) {
	if n, ok := s.Data.(*NightData); ok {
		return n.Actions, true
	}
	return NightActions{}, false
}

// VotingResults returns the day tally, or the detective exposure during night.
func (s *GameState) VotingResults() *VotingResults {
	switch d := s.Data.(type) {
	case *DayData:
		return &d.Voting
	case *NightData:
		return d.Exposure
	}
	return nil
}

// Clone 深拷贝
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := &GameState{
		Players:   make([]Player, len(s.Players)),
		Round:     s.Round,
		GameEnded: s.GameEnded,
		Winner:    s.Winner,
	}
	copy(out.Players, s.Players)
	if s.Data != nil {
		out.Data = s.Data.clone()
	}
	if s.DetectiveResult != nil {
		dr := *s.DetectiveResult
		out.DetectiveResult = &dr
	}
	return out
}

// RedactFor returns a copy in which viewerID cannot see roles it should not know.
// Roles stay visible once the game is over, to dead viewers, and between Mafia.
func (s *GameState) RedactFor(viewerID string) *GameState {
	out := s.Clone()
	if out.GameEnded {
		return out
	}

	var viewer *Player
	for i := range out.Players {
		if out.Players[i].ID == viewerID {
			viewer = &out.Players[i]
			break
		}
	}
	if viewer != nil && !viewer.IsAlive {
		return out
	}

	for i := range out.Players {
		p := &out.Players[i]
		if viewer != nil && p.ID == viewer.ID {
			continue
		}
		if viewer != nil && viewer.Role == RoleMafia && p.Role == RoleMafia {
			continue
		}
		p.Role = ""
	}

	// Pending night targets and investigations are secret as well.
	if n, ok := out.Data.(*NightData); ok {
		n.Actions = NightActions{}
	}
	if viewer == nil || viewer.Role != RoleDetective {
		out.DetectiveResult = nil
	}
	return out
}

type gameStateJSON struct {
	Players         []Player         `json:"players"`
	CurrentPhase    Phase            `json:"currentPhase"`
	Round           int              `json:"round"`
	GameEnded       bool             `json:"gameEnded"`
	Winner          *Winner          `json:"winner"`
	NightActions    *NightActions    `json:"nightActions,omitempty"`
	DetectiveResult *DetectiveResult `json:"detectiveResult,omitempty"`
	VotingResults   *VotingResults   `json:"votingResults,omitempty"`
}

// MarshalJSON flattens the phase union into the wire shape clients expect.
func (s *GameState) MarshalJSON() ([]byte, error) {
	out := gameStateJSON{
		Players:         s.Players,
		CurrentPhase:    s.CurrentPhase(),
		Round:           s.Round,
		GameEnded:       s.GameEnded,
		DetectiveResult: s.DetectiveResult,
		VotingResults:   s.VotingResults(),
	}
	if s.Winner != WinnerNone {
		w := s.Winner
		out.Winner = &w
	}
	if actions, ok := s.NightActions(); ok {
		out.NightActions = &actions
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *GameState) UnmarshalJSON(data []byte) error {
	var in gameStateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*s = GameState{
		Players:         in.Players,
		Round:           in.Round,
		GameEnded:       in.GameEnded,
		DetectiveResult: in.DetectiveResult,
	}
	if in.Winner != nil {
		s.Winner = *in.Winner
	}

	switch in.CurrentPhase {
	case PhaseDay:
		day := newDayData()
		if in.VotingResults != nil {
			day.Voting = *in.VotingResults
			if day.Voting.Votes == nil {
				day.Voting.Votes = make(map[string]int)
			}
		}
		s.Data = day
	default:
		night := newNightData()
		if in.NightActions != nil {
			night.Actions = *in.NightActions
		}
		night.Exposure = in.VotingResults
		s.Data = night
	}
	return nil
}

// GobEncode lets snapshots travel over net/rpc; PhaseData is an interface gob cannot encode directly.
func (s *GameState) GobEncode() ([]byte, error) {
	return s.MarshalJSON()
}

func (s *GameState) GobDecode(data []byte) error {
	return s.UnmarshalJSON(data)
}
