// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/wfunc/mafiaserver/models"
)

const queryTimeout = 5 * time.Second

// PostgreSQL 数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            lobby_id VARCHAR(64) NOT NULL,
            winner VARCHAR(32) NOT NULL,
            rounds INT NOT NULL DEFAULT 0,
            players JSONB NOT NULL,
            started_at TIMESTAMPTZ,
            finished_at TIMESTAMPTZ,
            duration_seconds INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS player_stats (
            id SERIAL PRIMARY KEY,
            player_id VARCHAR(255) UNIQUE NOT NULL,
            total_games INT NOT NULL DEFAULT 0,
            wins INT NOT NULL DEFAULT 0,
            losses INT NOT NULL DEFAULT 0,
            mafia_games INT NOT NULL DEFAULT 0,
            games_survived INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建索引以提高查询性能
	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_game_records_lobby_id ON game_records(lobby_id);
        CREATE INDEX IF NOT EXISTS idx_game_records_finished_at ON game_records(finished_at);
    `)
	return err
}

// SaveGameRecord 保存游戏记录
func (p *PostgreSQL) SaveGameRecord(ctx context.Context, record models.GameRecord) error {
	playersJSON, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO game_records (lobby_id, winner, rounds, players, started_at, finished_at, duration_seconds)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, record.LobbyID, record.Winner, record.Rounds, playersJSON,
		record.StartedAt, record.FinishedAt, int(record.Duration().Seconds()))
	if err != nil {
		return err
	}

	// UPSERT (PostgreSQL 9.5+)
	upsert := `
        INSERT INTO player_stats (player_id, total_games, wins, losses, mafia_games, games_survived)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (player_id)
        DO UPDATE SET
            total_games = player_stats.total_games + EXCLUDED.total_games,
            wins = player_stats.wins + EXCLUDED.wins,
            losses = player_stats.losses + EXCLUDED.losses,
            mafia_games = player_stats.mafia_games + EXCLUDED.mafia_games,
            games_survived = player_stats.games_survived + EXCLUDED.games_survived,
            updated_at = CURRENT_TIMESTAMP
    `
	for _, outcome := range record.Players {
		if outcome.IsBot {
			continue
		}
		var d models.PlayerStats
		d.Add(outcome)
		if _, err := tx.ExecContext(ctx, upsert, outcome.PlayerID,
			d.TotalGames, d.Wins, d.Losses, d.MafiaGames, d.GamesSurvived); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadGameRecords 按房间加载历史对局
func (p *PostgreSQL) LoadGameRecords(ctx context.Context, lobbyID string) ([]models.GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
        SELECT lobby_id, winner, rounds, players, started_at, finished_at
        FROM game_records WHERE lobby_id = $1 ORDER BY finished_at ASC
    `, lobbyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var (
			rec     models.GameRecord
			players []byte
		)
		if err := rows.Scan(&rec.LobbyID, &rec.Winner, &rec.Rounds, &players, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &rec.Players); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetPlayerStats 查询玩家统计
func (p *PostgreSQL) GetPlayerStats(ctx context.Context, playerID string) (models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stats := models.PlayerStats{PlayerID: playerID}
	err := p.db.QueryRowContext(ctx, `
        SELECT total_games, wins, losses, mafia_games, games_survived
        FROM player_stats WHERE player_id = $1
    `, playerID).Scan(&stats.TotalGames, &stats.Wins, &stats.Losses, &stats.MafiaGames, &stats.GamesSurvived)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.PlayerStats{}, ErrRecordNotFound
		}
		return models.PlayerStats{}, err
	}
	return stats, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
