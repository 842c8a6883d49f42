// lobby/hooks.go
package lobby

import (
	"context"

	"github.com/wfunc/mafiaserver/models"
)

//go:generate go tool mockgen -source=hooks.go -destination=mocks/mock_hooks.go -package=mocks

// Notifier receives a snapshot after every change to a lobby. It is called while
// the lobby is locked and must not call back into the Manager.
type Notifier interface {
	LobbyUpdated(snapshot LobbyState)
	// GameOver fires once when the lobby enters finished, before the final LobbyUpdated.
	GameOver(snapshot LobbyState)
}

// Recorder stores the outcome of finished games. It runs on its own goroutine.
type Recorder interface {
	RecordGame(ctx context.Context, record models.GameRecord) error
}

// Metrics 房间相关的监控指标
type Metrics interface {
	LobbyCreated()
	LobbyRemoved()
	GameStarted()
	PhaseAdvanced(reason string)
	GameFinished(winner string)
}

// Phase advance reasons reported to Metrics.
const (
	ReasonTimer  = "timer"
	ReasonAction = "action"
)

type noopNotifier struct{}

func (noopNotifier) LobbyUpdated(LobbyState) {}
func (noopNotifier) GameOver(LobbyState)     {}

type noopMetrics struct{}

func (noopMetrics) LobbyCreated()        {}
func (noopMetrics) LobbyRemoved()        {}
func (noopMetrics) GameStarted()         {}
func (noopMetrics) PhaseAdvanced(string) {}
func (noopMetrics) GameFinished(string)  {}
