package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	simulator "domino-service/internal/arena"
	"domino-service/internal/bot"
	"domino-service/internal/config"
	"domino-service/internal/model"
	appErr "domino-service/pkg/errors"
	"domino-service/pkg/logger"
	"domino-service/pkg/utils/random"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RunRequest struct {
	StrategyA    string `json:"strategyA"`
	StrategyB    string `json:"strategyB"`
	NumMatches   int    `json:"numMatches"`
	TargetPoints int    `json:"targetPoints"`
	Seed         int64  `json:"seed"`
}

type RunResult struct {
	RunID  int64             `json:"runId"`
	Result *simulator.Result `json:"result"`
}

type RunListResult struct {
	Items []model.ArenaRun `json:"items"`
	Total int64            `json:"total"`
}

type RunDetail struct {
	Run     model.ArenaRun     `json:"run"`
	Matches []model.ArenaMatch `json:"matches"`
}

// Service validates arena requests against the configured ceilings, runs the
// simulator and stores the outcome.
type Service struct {
	db       *gorm.DB
	registry *bot.Registry
	cfg      config.ArenaConfig
}

func NewService(db *gorm.DB, registry *bot.Registry, cfg config.ArenaConfig) *Service {
	return &Service{db: db, registry: registry, cfg: cfg}
}

func (s *Service) validate(req *RunRequest) error {
	if req.NumMatches == 0 {
		req.NumMatches = s.cfg.DefaultMatches
	}
	if req.TargetPoints == 0 {
		req.TargetPoints = 100
	}
	if req.NumMatches < 1 || (s.cfg.MaxMatches > 0 && req.NumMatches > s.cfg.MaxMatches) {
		return fmt.Errorf("%w: numMatches must be in [1,%d]", appErr.ErrArenaValidation, s.cfg.MaxMatches)
	}
	if req.TargetPoints < 1 || (s.cfg.MaxTargetPoints > 0 && req.TargetPoints > s.cfg.MaxTargetPoints) {
		return fmt.Errorf("%w: targetPoints must be in [1,%d]", appErr.ErrArenaValidation, s.cfg.MaxTargetPoints)
	}
	if req.StrategyA == "" || req.StrategyB == "" {
		return fmt.Errorf("%w: both strategies are required", appErr.ErrArenaValidation)
	}
	return nil
}

func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	a, err := s.registry.Factory(req.StrategyA)
	if err != nil {
		return nil, err
	}
	b, err := s.registry.Factory(req.StrategyB)
	if err != nil {
		return nil, err
	}
	if req.Seed == 0 {
		req.Seed = random.Seed()
	}

	sim, err := simulator.New(simulator.Config{
		Matches:       req.NumMatches,
		TargetPoints:  req.TargetPoints,
		Workers:       s.cfg.Workers,
		RetainRecords: s.cfg.RetainRecords,
		Seed:          req.Seed,
		MoveTimeout:   time.Duration(s.cfg.MoveTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	res, err := sim.Run(ctx, a, b)
	if err != nil {
		return nil, err
	}

	runID, err := s.save(ctx, res)
	if err != nil {
		logger.Log.Error("failed to persist arena run", zap.Error(err))
		return nil, err
	}
	return &RunResult{RunID: runID, Result: res}, nil
}

func (s *Service) save(ctx context.Context, res *simulator.Result) (int64, error) {
	if s.db == nil {
		return 0, nil
	}
	summary := *res
	summary.Matches = nil

	run := model.ArenaRun{
		StrategyA:     res.StrategyA,
		StrategyB:     res.StrategyB,
		Seed:          res.Seed,
		NumMatches:    res.NumMatches,
		TargetPoints:  res.TargetPoints,
		TeamAWins:     res.TeamAWins,
		TeamBWins:     res.TeamBWins,
		TotalHands:    res.TotalHands,
		BlockedHands:  res.BlockedHands,
		FaultsA:       res.FaultsA,
		FaultsB:       res.FaultsB,
		CappedMatches: res.CappedMatches,
		ElapsedMs:     int64(res.ElapsedSeconds * 1000),
		SummaryJSON:   mustJSON(summary),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(res.Matches) == 0 {
			return nil
		}
		rows := make([]model.ArenaMatch, 0, len(res.Matches))
		for _, rec := range res.Matches {
			rows = append(rows, model.ArenaMatch{
				RunID:      run.ID,
				MatchIndex: rec.MatchIndex,
				WinnerTeam: rec.WinnerTeam,
				NumHands:   rec.NumHands,
				RecordJSON: mustJSON(rec),
			})
		}
		return tx.CreateInBatches(&rows, 50).Error
	})
	if err != nil {
		return 0, err
	}
	return run.ID, nil
}

func (s *Service) ListRuns(ctx context.Context, page, size int) (*RunListResult, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	if s.db == nil {
		return &RunListResult{Items: []model.ArenaRun{}}, nil
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&model.ArenaRun{}).
		Count(&total).Error; err != nil {
		return nil, err
	}

	runs := []model.ArenaRun{}
	if total > 0 {
		offset := (page - 1) * size
		if err := s.db.WithContext(ctx).
			Model(&model.ArenaRun{}).
			Order("id DESC").
			Limit(size).
			Offset(offset).
			Find(&runs).Error; err != nil {
			return nil, err
		}
	}
	return &RunListResult{Items: runs, Total: total}, nil
}

// GetRun loads a persisted run. Without a database no run is ever found.
func (s *Service) GetRun(ctx context.Context, id int64) (*RunDetail, error) {
	if s.db == nil {
		return nil, appErr.ErrArenaRunNotFound
	}
	var run model.ArenaRun
	if err := s.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrArenaRunNotFound
		}
		return nil, err
	}
	matches := []model.ArenaMatch{}
	if err := s.db.WithContext(ctx).
		Where("run_id = ?", id).
		Order("match_index ASC").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return &RunDetail{Run: run, Matches: matches}, nil
}

// Strategies lists the names the registry can resolve.
func (s *Service) Strategies() []string {
	return s.registry.Names()
}

func mustJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}
