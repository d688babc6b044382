package game

import (
	"context"
	"encoding/json"
	"time"

	"domino-service/internal/domino"
	"domino-service/internal/model"
	appErr "domino-service/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MatchListResult struct {
	Items []model.Match `json:"items"`
	Total int64         `json:"total"`
}

type MatchDetail struct {
	Match model.Match          `json:"match"`
	Hands []model.MatchHandLog `json:"hands"`
}

func (s *Service) recordStart(ctx context.Context, id, opponent string, m *domino.Match) error {
	if s.db == nil {
		return nil
	}
	cfg := m.Config()
	row := model.Match{
		MatchUID:    id,
		Mode:        string(cfg.Mode),
		TargetScore: cfg.TargetPoints,
		Opponent:    opponent,
		Winner:      -1,
		ScoresJSON:  mustJSON(m.Scores()),
		ConfigJSON:  mustJSON(cfg),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// recordFinish stores the final scores and one log row per hand.
func (s *Service) recordFinish(ctx context.Context, id string, m *domino.Match) error {
	if s.db == nil {
		return nil
	}
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.Match
		if err := tx.Where("match_uid = ?", id).First(&row).Error; err != nil {
			return err
		}
		if row.EndedAt != nil {
			return nil
		}

		logs := make([]model.MatchHandLog, 0, m.HandsPlayed())
		for i, rec := range m.History() {
			logs = append(logs, model.MatchHandLog{
				MatchID:    row.ID,
				HandNo:     i + 1,
				Blocked:    rec.Blocked,
				Winner:     rec.Winner,
				MovesJSON:  mustJSON(rec.Moves),
				StartJSON:  mustJSON(rec.StartingHands),
				PointsJSON: mustJSON(rec.PointsEarned),
				LayoutJSON: mustJSON(rec.FinalLayout),
			})
		}
		if len(logs) > 0 {
			if err := tx.Create(&logs).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Match{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"hands_played": m.HandsPlayed(),
				"winner":       m.Winner(),
				"scores_json":  mustJSON(m.Scores()),
				"ended_at":     now,
			}).Error
	})
}

func listMatches(ctx context.Context, db *gorm.DB, page, size int) (*MatchListResult, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	var total int64
	if err := db.WithContext(ctx).
		Model(&model.Match{}).
		Count(&total).Error; err != nil {
		return nil, err
	}

	matches := []model.Match{}
	if total > 0 {
		offset := (page - 1) * size
		if err := db.WithContext(ctx).
			Model(&model.Match{}).
			Order("id DESC").
			Limit(size).
			Offset(offset).
			Find(&matches).Error; err != nil {
			return nil, err
		}
	}
	return &MatchListResult{Items: matches, Total: total}, nil
}

// MatchHistory loads a persisted match with its hand logs.
func (s *Service) MatchHistory(ctx context.Context, id string) (*MatchDetail, error) {
	if s.db == nil {
		return nil, appErr.ErrMatchNotFound
	}
	var row model.Match
	if err := s.db.WithContext(ctx).Where("match_uid = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrMatchNotFound
		}
		return nil, err
	}
	hands := []model.MatchHandLog{}
	if err := s.db.WithContext(ctx).
		Where("match_id = ?", row.ID).
		Order("hand_no ASC").
		Find(&hands).Error; err != nil {
		return nil, err
	}
	return &MatchDetail{Match: row, Hands: hands}, nil
}

func mustJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("{}")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}
