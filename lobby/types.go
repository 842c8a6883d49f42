// lobby/types.go
package lobby

import (
	"errors"
	"time"

	"github.com/wfunc/mafiaserver/game"
)

// Status 房间生命周期状态
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusStarting   Status = "starting"
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished"
)

var (
	ErrNotFound             = errors.New("lobby not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidConfiguration = errors.New("invalid lobby configuration")
	ErrLobbyFull            = errors.New("lobby is full")
	ErrBotCap               = errors.New("bot limit exceeded")
	ErrWrongStatus          = errors.New("lobby is not in the required status")
	ErrNotEnoughPlayers     = errors.New("not enough players")
	ErrNotInProgress        = errors.New("no game in progress")
	ErrAlreadyVoted         = errors.New("player already voted today")
	ErrJoinClosed           = errors.New("join window has closed")
	ErrJoinCodeExhausted    = errors.New("could not allocate a unique join code")
)

// Config 房间配置
type Config struct {
	MinPlayers         int  `json:"minPlayers" mapstructure:"min_players" validate:"min=1"`
	MaxPlayers         int  `json:"maxPlayers" mapstructure:"max_players" validate:"min=1,gtefield=MinPlayers"`
	IsPrivate          bool `json:"isPrivate" mapstructure:"is_private"`
	JoinTimeoutSeconds int  `json:"joinTimeoutSeconds" mapstructure:"join_timeout_seconds" validate:"min=0"`
}

// Player is a lobby roster entry, independent of the in-game player.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"isHost"`
	IsBot    bool      `json:"isBot"`
	JoinedAt time.Time `json:"joinedAt"`
}

// LobbyState is a point-in-time copy of a lobby; mutating it has no effect on the manager.
type LobbyState struct {
	ID             string          `json:"id"`
	JoinCode       string          `json:"joinCode"`
	Config         Config          `json:"config"`
	Players        []Player        `json:"players"`
	HostID         string          `json:"hostId"`
	Status         Status          `json:"status"`
	GameState      *game.GameState `json:"gameState,omitempty"`
	PhaseStartTime *time.Time      `json:"phaseStartTime,omitempty"`
	PhaseEndTime   *time.Time      `json:"phaseEndTime,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`

	// Voted lists players (by game id) whose ballot counts today.
	Voted map[string]bool `json:"-"`
}

// HumanCount 真人玩家数量
func (s LobbyState) HumanCount() int {
	return countHumans(s.Players)
}

// HasPlayer reports whether playerID is on the roster.
func (s LobbyState) HasPlayer(playerID string) bool {
	for _, p := range s.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// HasVoted reports whether the game player already voted in the current day.
func (s LobbyState) HasVoted(gamePlayerID string) bool {
	return s.Voted[gamePlayerID]
}

// SeatOf maps a lobby player to its in-game player id by join order.
func (s LobbyState) SeatOf(playerID string) (string, bool) {
	if s.GameState == nil {
		return "", false
	}
	for i, p := range s.Players {
		if p.ID == playerID && i < len(s.GameState.Players) {
			return s.GameState.Players[i].ID, true
		}
	}
	return "", false
}

// Occupant is the reverse of SeatOf.
func (s LobbyState) Occupant(gamePlayerID string) (Player, bool) {
	if s.GameState == nil {
		return Player{}, false
	}
	for i, gp := range s.GameState.Players {
		if gp.ID == gamePlayerID && i < len(s.Players) {
			return s.Players[i], true
		}
	}
	return Player{}, false
}

// ViewFor returns the snapshot as playerID may see it: roles and secret night
// information of other seats are hidden while the game runs.
func (s LobbyState) ViewFor(playerID string) LobbyState {
	if s.GameState == nil {
		return s
	}
	seat, _ := s.SeatOf(playerID)
	s.GameState = s.GameState.RedactFor(seat)
	return s
}

func countHumans(players []Player) int {
	n := 0
	for _, p := range players {
		if !p.IsBot {
			n++
		}
	}
	return n
}
