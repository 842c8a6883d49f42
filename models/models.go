// models/models.go
package models

import (
	"time"
)

// Outcome of a single seat in a finished game.
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
)

// RoleMafia matches game.RoleMafia; models stays free of the game package.
const RoleMafia = "Mafia"

// GameRecord 一局结束的游戏记录
type GameRecord struct {
	LobbyID    string          `json:"lobby_id"`
	Winner     string          `json:"winner"`
	Rounds     int             `json:"rounds"`
	Players    []PlayerOutcome `json:"players"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// PlayerOutcome 玩家在一局游戏中的结果
type PlayerOutcome struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsBot    bool   `json:"is_bot"`
	Survived bool   `json:"survived"`
	Outcome  string `json:"outcome"` // win/lose
}

// Duration 游戏时长
func (r GameRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// PlayerStats 玩家统计信息
type PlayerStats struct {
	PlayerID      string `json:"player_id"`
	TotalGames    int    `json:"total_games"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	MafiaGames    int    `json:"mafia_games"`
	GamesSurvived int    `json:"games_survived"`
}

// Add 把一局的结果计入统计
func (s *PlayerStats) Add(o PlayerOutcome) {
	s.TotalGames++
	if o.Outcome == OutcomeWin {
		s.Wins++
	} else {
		s.Losses++
	}
	if o.Role == RoleMafia {
		s.MafiaGames++
	}
	if o.Survived {
		s.GamesSurvived++
	}
}
