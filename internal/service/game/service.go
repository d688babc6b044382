package game

import (
	"context"
	"fmt"

	"domino-service/internal/bot"
	"domino-service/internal/domino"
	"domino-service/internal/model"
	"domino-service/pkg/auth"
	appErr "domino-service/pkg/errors"
	"domino-service/pkg/logger"
	"domino-service/pkg/utils/random"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options are the defaults applied to new matches.
type Options struct {
	TargetPoints  int
	CapicuBonus   int
	ChuchazoBonus int
	MaxHands      int
	Opponent      string
}

type CreateMatchRequest struct {
	TargetPoints int
	Mode         string
	Opponent     string
}

type CreateMatchResult struct {
	Token string     `json:"token"`
	State *MatchView `json:"state"`
}

// Service runs interactive matches: the caller holds seat 0 and the other
// seats are played by a registered strategy.
type Service struct {
	db       *gorm.DB
	store    Store
	registry *bot.Registry
	hub      *Hub
	opts     Options
}

// NewService wires the match service. db may be nil, in which case finished
// matches are not persisted.
func NewService(db *gorm.DB, store Store, registry *bot.Registry, opts Options) *Service {
	if opts.Opponent == "" {
		opts.Opponent = bot.NameGreedy
	}
	return &Service{
		db:       db,
		store:    store,
		registry: registry,
		hub:      NewHub(),
		opts:     opts,
	}
}

func (s *Service) Hub() *Hub {
	return s.hub
}

func (s *Service) CreateMatch(ctx context.Context, req CreateMatchRequest) (*CreateMatchResult, error) {
	mode := domino.ModeTeams
	if req.Mode != "" {
		parsed, err := domino.ParseMode(req.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}
	target := req.TargetPoints
	if target == 0 {
		target = s.opts.TargetPoints
	}
	opponent := req.Opponent
	if opponent == "" {
		opponent = s.opts.Opponent
	}

	cfg := domino.DefaultConfig(target, mode)
	if s.opts.CapicuBonus > 0 {
		cfg.CapicuBonus = s.opts.CapicuBonus
	}
	if s.opts.ChuchazoBonus > 0 {
		cfg.ChuchazoBonus = s.opts.ChuchazoBonus
	}
	if s.opts.MaxHands > 0 {
		cfg.MaxHands = s.opts.MaxHands
	}

	var strategies [domino.NumSeats]domino.Strategy
	for seat := range strategies {
		if seat == HumanSeat {
			continue
		}
		st, err := s.registry.Lookup(opponent)
		if err != nil {
			return nil, err
		}
		strategies[seat] = st
	}

	m, err := domino.NewMatch(cfg, strategies, random.New())
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	m.SetFaultHandler(s.faultLogger(id))
	if err := m.StartHand(); err != nil {
		return nil, err
	}
	if err := s.advance(m); err != nil {
		return nil, err
	}

	if err := s.recordStart(ctx, id, opponent, m); err != nil {
		return nil, err
	}
	state := m.Snapshot()
	if err := s.store.Put(ctx, id, &state); err != nil {
		return nil, err
	}
	if m.IsOver() {
		s.finish(ctx, id, m)
	}

	token, err := auth.GenerateSeatToken(id, HumanSeat)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("match created",
		zap.String("matchID", id),
		zap.String("mode", string(mode)),
		zap.Int("target", target),
		zap.String("opponent", opponent),
	)
	return &CreateMatchResult{Token: token, State: buildView(id, &state)}, nil
}

func (s *Service) GetMatch(ctx context.Context, id string) (*MatchView, error) {
	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildView(id, state), nil
}

// Play places the human seat's tile at tileIndex on side.
func (s *Service) Play(ctx context.Context, id string, tileIndex int, side string) (*MatchView, error) {
	parsed, err := domino.ParseSide(side)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(m *domino.Match) error {
		tiles := m.Tiles(HumanSeat)
		if tileIndex < 0 || tileIndex >= len(tiles) {
			return fmt.Errorf("%w: tile index %d out of range", appErr.ErrIllegalMove, tileIndex)
		}
		return m.Play(HumanSeat, tiles[tileIndex], parsed)
	})
}

func (s *Service) Pass(ctx context.Context, id string) (*MatchView, error) {
	return s.mutate(ctx, id, func(m *domino.Match) error {
		return m.Pass(HumanSeat)
	})
}

// DeleteMatch drops a live match from the store. It waits for any update in
// flight so that update cannot write the match back.
func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) mutate(ctx context.Context, id string, fn func(m *domino.Match) error) (*MatchView, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Phase == domino.PhaseOver {
		return nil, appErr.ErrMatchAlreadyOver
	}
	m, err := domino.RestoreMatch(*state, s.registry.Lookup, random.New())
	if err != nil {
		return nil, err
	}
	m.SetFaultHandler(s.faultLogger(id))

	if err := fn(m); err != nil {
		return nil, err
	}
	if err := s.advance(m); err != nil {
		return nil, err
	}

	next := m.Snapshot()
	if err := s.store.Put(ctx, id, &next); err != nil {
		return nil, err
	}
	if m.IsOver() {
		s.finish(ctx, id, m)
	}

	view := buildView(id, &next)
	s.hub.Broadcast(id, "state", view)
	return view, nil
}

// advance lets the bots play until the human seat is on turn, dealing the
// next hand whenever one resolves and the match goes on.
func (s *Service) advance(m *domino.Match) error {
	for {
		if err := m.DriveSeats(); err != nil {
			return err
		}
		if m.Phase() != domino.PhaseDealing {
			return nil
		}
		if err := m.StartHand(); err != nil {
			return err
		}
	}
}

func (s *Service) faultLogger(id string) domino.FaultHandler {
	return func(seat int, err error) {
		logger.Log.Warn("bot fault, forcing pass",
			zap.String("matchID", id),
			zap.Int("seat", seat),
			zap.Error(err),
		)
	}
}

// finish persists a finished match. Failures are logged; the live snapshot
// is already stored.
func (s *Service) finish(ctx context.Context, id string, m *domino.Match) {
	if err := s.recordFinish(ctx, id, m); err != nil {
		logger.Log.Error("failed to persist finished match", zap.String("matchID", id), zap.Error(err))
		return
	}
	logger.Log.Info("match finished",
		zap.String("matchID", id),
		zap.Int("winner", m.Winner()),
		zap.Int("hands", m.HandsPlayed()),
	)
}

// ListMatches pages the persisted match table.
func (s *Service) ListMatches(ctx context.Context, page, size int) (*MatchListResult, error) {
	if s.db == nil {
		return &MatchListResult{Items: []model.Match{}}, nil
	}
	return listMatches(ctx, s.db, page, size)
}
