// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/mafiaserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,       // 慢SQL阈值
			LogLevel:      gormlogger.Silent, // 日志级别
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*GormPostgreSQL, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}
	return &GormPostgreSQL{db: db}, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormGameRecord{},
		&models.GormPlayerStats{},
	)
}

// SaveGameRecord 保存游戏记录并在同一事务中更新真人玩家统计
func (p *GormPostgreSQL) SaveGameRecord(ctx context.Context, record models.GameRecord) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.NewGormGameRecord(record)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		for _, outcome := range record.Players {
			if outcome.IsBot {
				continue
			}
			var stats models.GormPlayerStats
			if err := tx.Where("player_id = ?", outcome.PlayerID).
				FirstOrCreate(&stats, models.GormPlayerStats{PlayerID: outcome.PlayerID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&stats).Updates(statsDelta(outcome)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// statsDelta builds column increments for one seat.
func statsDelta(o models.PlayerOutcome) map[string]interface{} {
	var delta models.PlayerStats
	delta.Add(o)
	return map[string]interface{}{
		"total_games":    gorm.Expr("total_games + ?", delta.TotalGames),
		"wins":           gorm.Expr("wins + ?", delta.Wins),
		"losses":         gorm.Expr("losses + ?", delta.Losses),
		"mafia_games":    gorm.Expr("mafia_games + ?", delta.MafiaGames),
		"games_survived": gorm.Expr("games_survived + ?", delta.GamesSurvived),
	}
}

// LoadGameRecords 按房间加载历史对局，最早的在前
func (p *GormPostgreSQL) LoadGameRecords(ctx context.Context, lobbyID string) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	if err := p.db.WithContext(ctx).
		Where("lobby_id = ?", lobbyID).
		Order("finished_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToRecord())
	}
	return records, nil
}

// GetPlayerStats 查询玩家统计
func (p *GormPostgreSQL) GetPlayerStats(ctx context.Context, playerID string) (models.PlayerStats, error) {
	var stats models.GormPlayerStats
	if err := p.db.WithContext(ctx).Where("player_id = ?", playerID).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PlayerStats{}, ErrRecordNotFound
		}
		return models.PlayerStats{}, err
	}
	return stats.ToStats(), nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
