package model

import (
	"time"

	"gorm.io/datatypes"
)

// Interactive matches

type Match struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	MatchUID    string `gorm:"size:36;uniqueIndex;not null"`
	Mode        string `gorm:"size:16"` // ffa/teams
	TargetScore int
	Opponent    string `gorm:"size:64"`
	HandsPlayed int
	Winner      int
	ScoresJSON  datatypes.JSON `gorm:"type:jsonb"` // per-seat final scores
	ConfigJSON  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
	EndedAt     *time.Time
}

type MatchHandLog struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	MatchID    int64 `gorm:"index"`
	HandNo     int
	Blocked    bool
	Winner     int
	MovesJSON  datatypes.JSON `gorm:"type:jsonb"`
	StartJSON  datatypes.JSON `gorm:"type:jsonb"` // starting hands
	PointsJSON datatypes.JSON `gorm:"type:jsonb"`
	LayoutJSON datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

// Arena runs

type ArenaRun struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	StrategyA     string `gorm:"size:64"`
	StrategyB     string `gorm:"size:64"`
	Seed          int64
	NumMatches    int
	TargetPoints  int
	TeamAWins     int
	TeamBWins     int
	TotalHands    int
	BlockedHands  int
	FaultsA       int
	FaultsB       int
	CappedMatches int
	ElapsedMs     int64
	SummaryJSON   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time
}

type ArenaMatch struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	RunID      int64 `gorm:"index"`
	MatchIndex int
	WinnerTeam int
	NumHands   int
	RecordJSON datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time
}
