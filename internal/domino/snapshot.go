package domino

import (
	"fmt"
	mrand "math/rand"

	appErr "domino-service/pkg/errors"
)

// MatchState is the plain-data form of a Match.
type MatchState struct {
	Config      Config       `json:"config"`
	Phase       Phase        `json:"phase"`
	HandsPlayed int          `json:"handsPlayed"`
	Winner      int          `json:"winner"`
	Players     []SeatState  `json:"players"`
	Hand        *HandState   `json:"handState"`
	LastScore   *HandScore   `json:"lastScore,omitempty"`
	History     []HandRecord `json:"history"`
}

type SeatState struct {
	Index    int    `json:"index"`
	Score    int    `json:"score"`
	Strategy string `json:"strategy,omitempty"`
	Human    bool   `json:"human"`
	Tiles    []Tile `json:"hand"`
}

type HandState struct {
	Layout        []Tile           `json:"layout"`
	Ends          *Ends            `json:"ends"`
	EndsBefore    *Ends            `json:"endsBeforeLastMove"`
	LastTile      *Tile            `json:"lastTile"`
	CurrentPlayer int              `json:"currentPlayer"`
	FirstSeat     int              `json:"firstSeat"`
	PassesInARow  int              `json:"passesInARow"`
	Blocked       bool             `json:"blocked"`
	StartingHands [NumSeats][]Tile `json:"startingHands"`
	Moves         []Play           `json:"moves"`
}

// Snapshot copies the match into plain data.
func (m *Match) Snapshot() MatchState {
	state := MatchState{
		Config:      m.cfg,
		Phase:       m.phase,
		HandsPlayed: m.handsPlayed,
		Winner:      m.winner,
		Players:     make([]SeatState, NumSeats),
		LastScore:   m.LastScore(),
		History:     m.History(),
	}
	for i, s := range m.seats {
		seat := SeatState{Index: i, Score: s.Score, Human: s.IsHuman(), Tiles: m.Tiles(i)}
		if s.Strategy != nil {
			seat.Strategy = s.Strategy.Name()
		}
		state.Players[i] = seat
	}
	if h := m.hand; h != nil {
		hs := &HandState{
			Layout:        h.Layout(),
			Ends:          h.Ends(),
			EndsBefore:    h.endsBefore.clone(),
			CurrentPlayer: h.turn,
			FirstSeat:     h.firstSeat,
			PassesInARow:  h.passStreak,
			Blocked:       h.IsBlocked(),
			Moves:         h.Moves(),
		}
		if h.lastTile != nil {
			t := *h.lastTile
			hs.LastTile = &t
		}
		for s := 0; s < NumSeats; s++ {
			hs.StartingHands[s] = cloneTiles(h.starting[s])
		}
		state.Hand = hs
	}
	return state
}

// StrategyResolver maps a strategy name back to an implementation.
type StrategyResolver func(name string) (Strategy, error)

// RestoreMatch rebuilds a match from a snapshot. Seats marked human stay
// human; the others are resolved by name.
func RestoreMatch(state MatchState, resolve StrategyResolver, rng *mrand.Rand) (*Match, error) {
	if len(state.Players) != NumSeats {
		return nil, fmt.Errorf("%w: snapshot has %d players", appErr.ErrInvalidConfig, len(state.Players))
	}
	var strategies [NumSeats]Strategy
	for i, p := range state.Players {
		if p.Human {
			continue
		}
		s, err := resolve(p.Strategy)
		if err != nil {
			return nil, err
		}
		strategies[i] = s
	}

	m, err := NewMatch(state.Config, strategies, rng)
	if err != nil {
		return nil, err
	}
	m.phase = state.Phase
	m.handsPlayed = state.HandsPlayed
	m.winner = state.Winner
	m.lastScore = state.LastScore
	if state.History != nil {
		m.history = state.History
	}
	for i, p := range state.Players {
		m.seats[i].Score = p.Score
	}

	if hs := state.Hand; hs != nil {
		var held [NumSeats][]Tile
		for i, p := range state.Players {
			held[i] = p.Tiles
		}
		h, err := NewHand(held, hs.FirstSeat)
		if err != nil {
			return nil, err
		}
		h.layout = cloneTiles(hs.Layout)
		h.ends = hs.Ends.clone()
		h.endsBefore = hs.EndsBefore.clone()
		if hs.LastTile != nil {
			t := *hs.LastTile
			h.lastTile = &t
		}
		h.turn = hs.CurrentPlayer
		h.passStreak = hs.PassesInARow
		for s := 0; s < NumSeats; s++ {
			h.starting[s] = cloneTiles(hs.StartingHands[s])
		}
		if hs.Moves != nil {
			h.moves = hs.Moves
		}
		m.hand = h
	} else if m.phase == PhaseInHand {
		return nil, fmt.Errorf("%w: in-hand snapshot without hand state", appErr.ErrInvalidConfig)
	}
	return m, nil
}
