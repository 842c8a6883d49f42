// lobby/lobby.go
package lobby

import (
	"sync"
	"time"

	"github.com/wfunc/mafiaserver/game"
	"github.com/wfunc/mafiaserver/state"
)

// Lobby 是房间的内部记录。所有字段都受 mu 保护
type Lobby struct {
	mu        sync.Mutex
	id        string
	joinCode  string
	config    Config
	players   []Player
	hostID    string
	lifecycle *state.Machine[Status]
	game      *game.Game
	createdAt time.Time
	startedAt time.Time

	phaseStart time.Time
	phaseEnd   time.Time
	timerID    int64
	// generation invalidates timer callbacks armed for an earlier phase.
	generation uint64

	voters  map[string]bool
	deleted bool
}

func (l *Lobby) status() Status {
	return l.lifecycle.Current()
}

func (l *Lobby) humanCount() int {
	return countHumans(l.players)
}

func (l *Lobby) botCount() int {
	return len(l.players) - l.humanCount()
}

func (l *Lobby) hasPlayer(playerID string) bool {
	return l.indexOf(playerID) >= 0
}

func (l *Lobby) indexOf(playerID string) int {
	for i, p := range l.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// snapshot 返回深拷贝，调用方必须持有 mu
func (l *Lobby) snapshot() LobbyState {
	s := LobbyState{
		ID:        l.id,
		JoinCode:  l.joinCode,
		Config:    l.config,
		Players:   make([]Player, len(l.players)),
		HostID:    l.hostID,
		Status:    l.status(),
		CreatedAt: l.createdAt,
		Voted:     make(map[string]bool, len(l.voters)),
	}
	copy(s.Players, l.players)
	for id := range l.voters {
		s.Voted[id] = true
	}
	if l.game != nil {
		s.GameState = l.game.Snapshot()
	}
	if !l.phaseEnd.IsZero() {
		start, end := l.phaseStart, l.phaseEnd
		s.PhaseStartTime = &start
		s.PhaseEndTime = &end
	}
	return s
}
