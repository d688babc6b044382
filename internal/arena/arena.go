package arena

import (
	"context"
	"fmt"
	mrand "math/rand"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"domino-service/internal/domino"
	appErr "domino-service/pkg/errors"
	"domino-service/pkg/logger"
)

const (
	TeamA = 0 // seats 0 and 2
	TeamB = 1 // seats 1 and 3
)

type Config struct {
	Matches       int
	TargetPoints  int
	CapicuBonus   int
	ChuchazoBonus int
	Workers       int
	// RetainRecords keeps replay records for the first N matches only.
	// Zero keeps every record.
	RetainRecords int
	Seed          int64
	MoveTimeout   time.Duration
}

// MatchRecord is the replay of one arena match.
type MatchRecord struct {
	MatchIndex  int                  `json:"matchIndex"`
	WinnerTeam  int                  `json:"winnerTeam"`
	FinalScores [domino.NumSeats]int `json:"finalScores"`
	TeamScores  [2]int               `json:"teamScores"`
	NumHands    int                  `json:"numHands"`
	Blocked     int                  `json:"blockedHands"`
	Capped      bool                 `json:"capped"`
	Faults      [2]int               `json:"faults"`
	Hands       []domino.HandRecord  `json:"hands"`
}

type Result struct {
	StrategyA        string        `json:"strategyA"`
	StrategyB        string        `json:"strategyB"`
	Seed             int64         `json:"seed"`
	NumMatches       int           `json:"numMatches"`
	TargetPoints     int           `json:"targetPoints"`
	ElapsedSeconds   float64       `json:"elapsedSeconds"`
	TeamAWins        int           `json:"teamAWins"`
	TeamBWins        int           `json:"teamBWins"`
	TeamAWinPct      float64       `json:"teamAWinPct"`
	TeamBWinPct      float64       `json:"teamBWinPct"`
	TotalHands       int           `json:"totalHands"`
	AvgHandsPerMatch float64       `json:"avgHandsPerMatch"`
	AvgPointsA       float64       `json:"avgPointsA"`
	AvgPointsB       float64       `json:"avgPointsB"`
	BlockedHands     int           `json:"blockedHands"`
	BlockedPct       float64       `json:"blockedPct"`
	FaultsA          int           `json:"faultsA"`
	FaultsB          int           `json:"faultsB"`
	CappedMatches    int           `json:"cappedMatches"`
	Matches          []MatchRecord `json:"matches"`
}

// Simulator plays batches of Teams matches: strategy A on seats 0 and 2,
// strategy B on seats 1 and 3.
type Simulator struct {
	cfg Config
}

func New(cfg Config) (*Simulator, error) {
	if cfg.Matches <= 0 {
		return nil, fmt.Errorf("%w: matches must be positive", appErr.ErrInvalidConfig)
	}
	if cfg.RetainRecords < 0 {
		return nil, fmt.Errorf("%w: retained records must not be negative", appErr.ErrInvalidConfig)
	}
	if err := cfg.matchConfig().Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Simulator{cfg: cfg}, nil
}

func (c Config) matchConfig() domino.Config {
	mc := domino.DefaultConfig(c.TargetPoints, domino.ModeTeams)
	if c.CapicuBonus > 0 {
		mc.CapicuBonus = c.CapicuBonus
	}
	if c.ChuchazoBonus > 0 {
		mc.ChuchazoBonus = c.ChuchazoBonus
	}
	return mc
}

func (s *Simulator) Config() Config {
	return s.cfg
}

// Run plays every match and folds the outcomes. Each match builds its own
// strategies from a and b, seeded from the match rng, so a run is fully
// determined by Seed whatever the worker count. Cancelling ctx stops matches
// that have not started yet; the run then fails with the context error.
func (s *Simulator) Run(ctx context.Context, a, b domino.StrategyFactory) (*Result, error) {
	start := time.Now()
	nameA := a(mrand.New(mrand.NewSource(s.cfg.Seed))).Name()
	nameB := b(mrand.New(mrand.NewSource(s.cfg.Seed))).Name()

	outcomes := make([]MatchRecord, s.cfg.Matches)
	p := pool.New().WithMaxGoroutines(s.cfg.Workers).WithContext(ctx)
	for i := 0; i < s.cfg.Matches; i++ {
		idx := i
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := s.playMatch(idx, a, b)
			if err != nil {
				return fmt.Errorf("match %d: %w", idx, err)
			}
			outcomes[idx] = rec
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	res := s.aggregate(outcomes)
	res.StrategyA, res.StrategyB = nameA, nameB
	res.ElapsedSeconds = time.Since(start).Seconds()

	logger.Log.Info("arena run finished",
		zap.String("strategyA", res.StrategyA),
		zap.String("strategyB", res.StrategyB),
		zap.Int("matches", res.NumMatches),
		zap.Int("teamAWins", res.TeamAWins),
		zap.Int("teamBWins", res.TeamBWins),
		zap.Int("faults", res.FaultsA+res.FaultsB),
		zap.Float64("elapsed", res.ElapsedSeconds))
	return res, nil
}

func (s *Simulator) guard(st domino.Strategy) domino.Strategy {
	if s.cfg.MoveTimeout <= 0 {
		return st
	}
	return WithTimeout(st, s.cfg.MoveTimeout)
}

func (s *Simulator) playMatch(idx int, newA, newB domino.StrategyFactory) (MatchRecord, error) {
	rng := mrand.New(mrand.NewSource(s.cfg.Seed + int64(idx)))
	a := s.guard(newA(mrand.New(mrand.NewSource(rng.Int63()))))
	b := s.guard(newB(mrand.New(mrand.NewSource(rng.Int63()))))
	m, err := domino.NewMatch(s.cfg.matchConfig(), [domino.NumSeats]domino.Strategy{a, b, a, b}, rng)
	if err != nil {
		return MatchRecord{}, err
	}

	rec := MatchRecord{MatchIndex: idx}
	m.SetFaultHandler(func(seat int, err error) {
		rec.Faults[domino.TeamOf(seat)]++
		logger.Log.Debug("strategy fault",
			zap.Int("match", idx),
			zap.Int("seat", seat),
			zap.Error(err))
	})
	if err := m.Run(); err != nil {
		return MatchRecord{}, err
	}

	sides := m.SideScores()
	rec.WinnerTeam = m.Winner()
	rec.FinalScores = m.Scores()
	rec.TeamScores = [2]int{sides[TeamA], sides[TeamB]}
	rec.NumHands = m.HandsPlayed()
	rec.Capped = sides[TeamA] < s.cfg.TargetPoints && sides[TeamB] < s.cfg.TargetPoints
	rec.Hands = m.History()
	for _, h := range rec.Hands {
		if h.Blocked {
			rec.Blocked++
		}
	}
	if !s.retains(idx) {
		rec.Hands = nil
	}
	return rec, nil
}

// aggregate folds the outcomes in match-index order.
func (s *Simulator) aggregate(outcomes []MatchRecord) *Result {
	res := &Result{
		Seed:         s.cfg.Seed,
		NumMatches:   len(outcomes),
		TargetPoints: s.cfg.TargetPoints,
	}
	res.Matches = make([]MatchRecord, 0, min(len(outcomes), s.retained()))

	var pointsA, pointsB int
	for i, rec := range outcomes {
		if rec.WinnerTeam == TeamA {
			res.TeamAWins++
		} else {
			res.TeamBWins++
		}
		res.TotalHands += rec.NumHands
		res.BlockedHands += rec.Blocked
		pointsA += rec.TeamScores[TeamA]
		pointsB += rec.TeamScores[TeamB]
		res.FaultsA += rec.Faults[TeamA]
		res.FaultsB += rec.Faults[TeamB]
		if rec.Capped {
			res.CappedMatches++
		}
		if s.retains(i) {
			res.Matches = append(res.Matches, rec)
		}
	}

	n := float64(res.NumMatches)
	res.TeamAWinPct = pct(res.TeamAWins, res.NumMatches)
	res.TeamBWinPct = pct(res.TeamBWins, res.NumMatches)
	res.AvgHandsPerMatch = float64(res.TotalHands) / n
	res.AvgPointsA = float64(pointsA) / n
	res.AvgPointsB = float64(pointsB) / n
	res.BlockedPct = pct(res.BlockedHands, res.TotalHands)
	return res
}

func (s *Simulator) retained() int {
	if s.cfg.RetainRecords == 0 {
		return s.cfg.Matches
	}
	return s.cfg.RetainRecords
}

func (s *Simulator) retains(idx int) bool {
	return idx < s.retained()
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
