// persistence/interface.go
package persistence

import (
	"context"
	"fmt"

	"github.com/wfunc/mafiaserver/models"
)

//go:generate go tool mockgen -source=interface.go -destination=mocks/mock_database.go -package=mocks

// Database 对局历史存储接口
type Database interface {
	// SaveGameRecord stores a finished game and folds every human seat into their stats.
	SaveGameRecord(ctx context.Context, record models.GameRecord) error
	LoadGameRecords(ctx context.Context, lobbyID string) ([]models.GameRecord, error)
	GetPlayerStats(ctx context.Context, playerID string) (models.PlayerStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
