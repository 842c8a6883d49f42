// services/player_service.go
package services

import (
	"context"
	"errors"

	"github.com/wfunc/mafiaserver/models"
	"github.com/wfunc/mafiaserver/persistence"
)

// PlayerService 对局历史和玩家统计，实现 lobby.Recorder
type PlayerService struct {
	db persistence.Database
}

func NewPlayerService(db persistence.Database) *PlayerService {
	return &PlayerService{db: db}
}

// RecordGame 保存结束的对局，统计在同一事务中更新
func (s *PlayerService) RecordGame(ctx context.Context, record models.GameRecord) error {
	return s.db.SaveGameRecord(ctx, record)
}

// GetPlayerStats 获取玩家统计；没有记录的玩家返回零值
func (s *PlayerService) GetPlayerStats(ctx context.Context, playerID string) (models.PlayerStats, error) {
	stats, err := s.db.GetPlayerStats(ctx, playerID)
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return models.PlayerStats{PlayerID: playerID}, nil
	}
	return stats, err
}

// History 房间的历史对局
func (s *PlayerService) History(ctx context.Context, lobbyID string) ([]models.GameRecord, error) {
	return s.db.LoadGameRecords(ctx, lobbyID)
}
