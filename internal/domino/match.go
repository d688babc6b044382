package domino

import (
	"errors"
	"fmt"
	mrand "math/rand"
	"time"

	appErr "domino-service/pkg/errors"
)

type Phase string

const (
	PhaseDealing   Phase = "dealing"
	PhaseInHand    Phase = "in_hand"
	PhaseResolving Phase = "resolving"
	PhaseOver      Phase = "over"
)

// Seat is one playing position. A nil Strategy marks a human seat.
type Seat struct {
	Index    int
	Score    int
	Strategy Strategy
}

func (s Seat) IsHuman() bool {
	return s.Strategy == nil
}

// FaultHandler is told about a strategy failure; the seat then passes.
type FaultHandler func(seat int, err error)

// Match sequences hands until the target score or the hand cap is reached.
// It owns the seats and the live hand; nothing outside mutates them.
type Match struct {
	cfg         Config
	seats       [NumSeats]Seat
	rng         *mrand.Rand
	phase       Phase
	hand        *Hand
	handsPlayed int
	history     []HandRecord
	lastScore   *HandScore
	winner      int
	onFault     FaultHandler
}

// NewMatch creates a match in the dealing phase. A zero MaxHands takes the
// default cap. rng may be nil.
func NewMatch(cfg Config, strategies [NumSeats]Strategy, rng *mrand.Rand) (*Match, error) {
	if cfg.MaxHands == 0 {
		cfg.MaxHands = MaxHandCount
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	m := &Match{
		cfg:     cfg,
		rng:     rng,
		phase:   PhaseDealing,
		history: []HandRecord{},
		winner:  -1,
	}
	for i := range m.seats {
		m.seats[i] = Seat{Index: i, Strategy: strategies[i]}
	}
	return m, nil
}

// SetFaultHandler switches DriveSeats from failing on a bad strategy answer
// to reporting it to fn and passing the seat.
func (m *Match) SetFaultHandler(fn FaultHandler) {
	m.onFault = fn
}

func (m *Match) Config() Config {
	return m.cfg
}

func (m *Match) Phase() Phase {
	return m.phase
}

func (m *Match) HandsPlayed() int {
	return m.handsPlayed
}

func (m *Match) IsOver() bool {
	return m.phase == PhaseOver
}

// Winner is the winning side (seat in FFA, team in Teams), or -1 while playing.
func (m *Match) Winner() int {
	return m.winner
}

func (m *Match) Scores() [NumSeats]int {
	var scores [NumSeats]int
	for i, s := range m.seats {
		scores[i] = s.Score
	}
	return scores
}

func (m *Match) Seat(i int) Seat {
	return m.seats[i]
}

// History returns the records of every resolved hand.
func (m *Match) History() []HandRecord {
	out := make([]HandRecord, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Match) LastScore() *HandScore {
	if m.lastScore == nil {
		return nil
	}
	s := *m.lastScore
	return &s
}

// Turn is the seat on turn in the live hand.
func (m *Match) Turn() (int, error) {
	if m.phase != PhaseInHand {
		return 0, appErr.ErrNoActiveHand
	}
	return m.hand.Turn(), nil
}

// Tiles returns the tiles seat holds in the current (or last) hand.
func (m *Match) Tiles(seat int) []Tile {
	if m.hand == nil {
		return []Tile{}
	}
	return m.hand.Tiles(seat)
}

func (m *Match) LegalMoves(seat int) ([]Move, error) {
	if m.phase != PhaseInHand {
		return nil, appErr.ErrNoActiveHand
	}
	return m.hand.LegalMoves(seat), nil
}

// StartHand deals a new hand with a random first seat.
func (m *Match) StartHand() error {
	switch m.phase {
	case PhaseOver:
		return appErr.ErrMatchAlreadyOver
	case PhaseInHand, PhaseResolving:
		return appErr.ErrHandInProgress
	}
	h, err := DealHand(m.rng, m.rng.Intn(NumSeats))
	if err != nil {
		return err
	}
	m.hand = h
	m.phase = PhaseInHand
	return nil
}

// Play places a tile for seat, advances the turn and resolves the hand if it ended.
func (m *Match) Play(seat int, tile Tile, side Side) error {
	if m.phase != PhaseInHand {
		return appErr.ErrNoActiveHand
	}
	if err := m.hand.Place(seat, tile, side); err != nil {
		return err
	}
	m.endTurn()
	return nil
}

// Pass passes for seat. It is rejected while seat has a legal move.
func (m *Match) Pass(seat int) error {
	if m.phase != PhaseInHand {
		return appErr.ErrNoActiveHand
	}
	if err := m.hand.Pass(seat); err != nil {
		return err
	}
	m.endTurn()
	return nil
}

// DriveSeats plays strategy seats until a human seat is on turn or the hand
// has been resolved.
func (m *Match) DriveSeats() error {
	for m.phase == PhaseInHand {
		seat := m.hand.Turn()
		strategy := m.seats[seat].Strategy
		if strategy == nil {
			return nil
		}
		if err := m.autoTurn(seat, strategy); err != nil {
			return err
		}
	}
	return nil
}

// Run plays the match to the end. Every seat must be bound to a strategy.
func (m *Match) Run() error {
	for m.phase != PhaseOver {
		if m.phase == PhaseDealing {
			if err := m.StartHand(); err != nil {
				return err
			}
		}
		if err := m.DriveSeats(); err != nil {
			return err
		}
		if m.phase == PhaseInHand {
			return fmt.Errorf("%w: seat %d", appErr.ErrInteractiveSeat, m.hand.Turn())
		}
	}
	return nil
}

func (m *Match) autoTurn(seat int, strategy Strategy) error {
	if len(m.hand.LegalMoves(seat)) == 0 {
		if err := m.hand.Pass(seat); err != nil {
			return err
		}
		m.endTurn()
		return nil
	}

	move, ok, err := askStrategy(strategy, m.hand.Tiles(seat), m.hand.Ends())
	if err == nil && !ok {
		err = fmt.Errorf("%w: %s declined to move", appErr.ErrVoluntaryPassRejected, strategy.Name())
	}
	if err == nil {
		err = m.hand.Place(seat, move.Tile, move.Side)
	}
	if err != nil {
		if m.onFault == nil {
			return fmt.Errorf("seat %d (%s): %w", seat, strategy.Name(), err)
		}
		if !errors.Is(err, appErr.ErrStrategyFault) {
			err = fmt.Errorf("%w: %w", appErr.ErrStrategyFault, err)
		}
		m.onFault(seat, err)
		if ferr := m.hand.Forfeit(seat); ferr != nil {
			return ferr
		}
	}
	m.endTurn()
	return nil
}

func (m *Match) endTurn() {
	m.hand.AdvanceTurn()
	if m.hand.IsOver() {
		m.resolve()
	}
}

func (m *Match) resolve() {
	m.phase = PhaseResolving

	score := ScoreHand(m.cfg, m.hand.Outcome())
	for i := range m.seats {
		m.seats[i].Score += score.Deltas[i]
	}
	rec := m.hand.Record()
	rec.applyScore(score)
	m.history = append(m.history, rec)
	m.lastScore = &score
	m.handsPlayed++

	if m.targetReached() || m.handsPlayed >= m.cfg.MaxHands {
		m.winner = m.leadingSide()
		m.phase = PhaseOver
		return
	}
	m.phase = PhaseDealing
}

// SideScores are the per-side totals the target is checked against: one per
// seat in FFA, one combined total per team in Teams.
func (m *Match) SideScores() []int {
	switch m.cfg.Mode {
	case ModeFFA:
		out := make([]int, NumSeats)
		for i, s := range m.seats {
			out[i] = s.Score
		}
		return out
	case ModeTeams:
		out := make([]int, 2)
		for i, s := range m.seats {
			out[TeamOf(i)] += s.Score
		}
		return out
	default:
		panic(fmt.Sprintf("domino: unhandled mode %q", m.cfg.Mode))
	}
}

func (m *Match) targetReached() bool {
	for _, score := range m.SideScores() {
		if score >= m.cfg.TargetPoints {
			return true
		}
	}
	return false
}

// leadingSide picks the highest side score; exact ties go to the lowest side.
func (m *Match) leadingSide() int {
	scores := m.SideScores()
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
