// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	LobbyID         string          `gorm:"index;not null"`
	Winner          string          `gorm:"not null"`
	Rounds          int             `gorm:"default:0"`
	Players         []PlayerOutcome `gorm:"serializer:json;type:jsonb;not null"`
	StartedAt       time.Time
	FinishedAt      time.Time
	DurationSeconds int `gorm:"default:0"` // 游戏时长(秒)
}

func (GormGameRecord) TableName() string { return "game_records" }

// NewGormGameRecord 从领域记录构造数据库行
func NewGormGameRecord(r GameRecord) GormGameRecord {
	return GormGameRecord{
		LobbyID:         r.LobbyID,
		Winner:          r.Winner,
		Rounds:          r.Rounds,
		Players:         r.Players,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		DurationSeconds: int(r.Duration().Seconds()),
	}
}

func (g GormGameRecord) ToRecord() GameRecord {
	return GameRecord{
		LobbyID:    g.LobbyID,
		Winner:     g.Winner,
		Rounds:     g.Rounds,
		Players:    g.Players,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}
}

// GormPlayerStats 玩家统计模型，只统计真人玩家
type GormPlayerStats struct {
	gorm.Model
	PlayerID      string `gorm:"uniqueIndex;not null"`
	TotalGames    int    `gorm:"default:0"`
	Wins          int    `gorm:"default:0"`
	Losses        int    `gorm:"default:0"`
	MafiaGames    int    `gorm:"default:0"`
	GamesSurvived int    `gorm:"default:0"`
}

func (GormPlayerStats) TableName() string { return "player_stats" }

// ToStats converts the row into the API shape.
func (s GormPlayerStats) ToStats() PlayerStats {
	return PlayerStats{
		PlayerID:      s.PlayerID,
		TotalGames:    s.TotalGames,
		Wins:          s.Wins,
		Losses:        s.Losses,
		MafiaGames:    s.MafiaGames,
		GamesSurvived: s.GamesSurvived,
	}
}
