package domino

import (
	"fmt"
	mrand "math/rand"

	appErr "domino-service/pkg/errors"
)

// SidePass marks a pass in the move log. It is never a legal placement side.
const SidePass Side = "pass"

// Play is one entry of a hand's move log.
type Play struct {
	Seat  int   `json:"seat"`
	Tile  *Tile `json:"tile,omitempty"`
	Side  Side  `json:"side"`
	Fault bool  `json:"fault,omitempty"`
}

// Hand is the state of one deal. It owns the four seat collections and the
// layout; every tile of the deal is in exactly one of them.
type Hand struct {
	seats      [NumSeats][]Tile
	starting   [NumSeats][]Tile
	firstSeat  int
	layout     []Tile
	ends       *Ends
	endsBefore *Ends
	lastTile   *Tile
	passStreak int
	turn       int
	moves      []Play
}

// DealHand shuffles a fresh set and deals HandSize tiles to each seat.
func DealHand(rng *mrand.Rand, firstSeat int) (*Hand, error) {
	set := NewShuffledSet(rng)
	var seats [NumSeats][]Tile
	for i := 0; i < HandSize; i++ {
		for s := 0; s < NumSeats; s++ {
			last := len(set) - 1
			seats[s] = append(seats[s], set[last])
			set = set[:last]
		}
	}
	return NewHand(seats, firstSeat)
}

// NewHand starts a deal from explicit seat collections. Tiles must be valid
// and appear at most once across all seats.
func NewHand(seats [NumSeats][]Tile, firstSeat int) (*Hand, error) {
	if firstSeat < 0 || firstSeat >= NumSeats {
		return nil, fmt.Errorf("%w: first seat %d out of range", appErr.ErrInvalidConfig, firstSeat)
	}
	seen := make(map[Tile]int, SetSize)
	h := &Hand{firstSeat: firstSeat, turn: firstSeat, layout: []Tile{}, moves: []Play{}}
	for s := 0; s < NumSeats; s++ {
		for _, t := range seats[s] {
			if !t.Valid() {
				return nil, fmt.Errorf("%w: tile %s out of range", appErr.ErrInvalidConfig, t)
			}
			if prev, dup := seen[t.Canonical()]; dup {
				return nil, fmt.Errorf("%w: tile %s dealt to seats %d and %d", appErr.ErrInvalidConfig, t, prev, s)
			}
			seen[t.Canonical()] = s
		}
		h.seats[s] = cloneTiles(seats[s])
		h.starting[s] = cloneTiles(seats[s])
	}
	return h, nil
}

func (h *Hand) Turn() int {
	return h.turn
}

func (h *Hand) FirstSeat() int {
	return h.firstSeat
}

func (h *Hand) PassStreak() int {
	return h.passStreak
}

// Ends returns a copy of the exposed ends, or nil on an empty board.
func (h *Hand) Ends() *Ends {
	return h.ends.clone()
}

func (h *Hand) Layout() []Tile {
	return cloneTiles(h.layout)
}

// Tiles returns a copy of the tiles held by seat.
func (h *Hand) Tiles(seat int) []Tile {
	return cloneTiles(h.seats[seat])
}

func (h *Hand) Moves() []Play {
	out := make([]Play, len(h.moves))
	copy(out, h.moves)
	return out
}

func (h *Hand) LegalMoves(seat int) []Move {
	return LegalMoves(h.seats[seat], h.ends)
}

// Place lays tile from seat on side. The seat must be on turn, hold the tile,
// and the (tile, side) pair must be legal for the current ends.
func (h *Hand) Place(seat int, tile Tile, side Side) error {
	if err := h.checkTurn(seat); err != nil {
		return err
	}
	idx := indexOfTile(h.seats[seat], tile)
	if idx < 0 {
		return fmt.Errorf("%w: seat %d does not hold %s", appErr.ErrIllegalMove, seat, tile)
	}
	held := h.seats[seat][idx]
	if !IsLegal(h.seats[seat], h.ends, Move{Tile: held, Side: side}) {
		return fmt.Errorf("%w: %s cannot be played on %s of %s", appErr.ErrIllegalMove, held, side, h.ends)
	}

	before := h.ends.clone()
	laid, ends := orient(held, h.ends, side)
	if side == SideLeft {
		h.layout = append([]Tile{laid}, h.layout...)
	} else {
		h.layout = append(h.layout, laid)
	}
	h.ends = &ends
	h.endsBefore = before
	h.lastTile = &held
	h.passStreak = 0
	h.seats[seat] = append(h.seats[seat][:idx], h.seats[seat][idx+1:]...)

	played := held
	h.moves = append(h.moves, Play{Seat: seat, Tile: &played, Side: side})
	return nil
}

// Pass records a pass for seat. Passing is only allowed without legal moves.
func (h *Hand) Pass(seat int) error {
	if err := h.checkTurn(seat); err != nil {
		return err
	}
	if len(h.LegalMoves(seat)) > 0 {
		return fmt.Errorf("%w: seat %d", appErr.ErrVoluntaryPassRejected, seat)
	}
	h.passStreak++
	h.moves = append(h.moves, Play{Seat: seat, Side: SidePass})
	return nil
}

// Forfeit records a pass even when legal moves exist. It is used when a
// seat's strategy failed to produce a usable move.
func (h *Hand) Forfeit(seat int) error {
	if err := h.checkTurn(seat); err != nil {
		return err
	}
	h.passStreak++
	h.moves = append(h.moves, Play{Seat: seat, Side: SidePass, Fault: true})
	return nil
}

func (h *Hand) AdvanceTurn() {
	h.turn = (h.turn + 1) % NumSeats
}

func (h *Hand) IsBlocked() bool {
	return h.passStreak >= NumSeats
}

func (h *Hand) IsOver() bool {
	return h.EmptiedSeat() >= 0 || h.IsBlocked()
}

// EmptiedSeat returns the seat holding no tiles, or -1.
func (h *Hand) EmptiedSeat() int {
	for s := 0; s < NumSeats; s++ {
		if len(h.seats[s]) == 0 {
			return s
		}
	}
	return -1
}

// Outcome is the read-only view the scoring engine works from.
type Outcome struct {
	PipTotals  [NumSeats]int
	Blocked    bool
	Winner     int
	LastTile   *Tile
	EndsBefore *Ends
	EndsAfter  *Ends
}

func (h *Hand) Outcome() Outcome {
	out := Outcome{
		Blocked:    h.IsBlocked(),
		Winner:     -1,
		EndsBefore: h.endsBefore.clone(),
		EndsAfter:  h.ends.clone(),
	}
	if h.lastTile != nil {
		t := *h.lastTile
		out.LastTile = &t
	}
	for s := 0; s < NumSeats; s++ {
		out.PipTotals[s] = PipTotal(h.seats[s])
	}
	if !out.Blocked {
		out.Winner = h.EmptiedSeat()
	}
	return out
}

// Record returns the replay record of the deal so far. Scoring fields are
// left for the caller.
func (h *Hand) Record() HandRecord {
	rec := HandRecord{
		FirstSeat:   h.firstSeat,
		Moves:       h.Moves(),
		Winner:      -1,
		WinningTeam: -1,
		Blocked:     h.IsBlocked(),
		FinalLayout: h.Layout(),
		FinalEnds:   h.Ends(),
	}
	for s := 0; s < NumSeats; s++ {
		rec.StartingHands[s] = cloneTiles(h.starting[s])
	}
	return rec
}

func (h *Hand) checkTurn(seat int) error {
	if h.IsOver() {
		return fmt.Errorf("%w: hand is over", appErr.ErrNoActiveHand)
	}
	if seat < 0 || seat >= NumSeats {
		return fmt.Errorf("%w: seat %d out of range", appErr.ErrIllegalMove, seat)
	}
	if seat != h.turn {
		return fmt.Errorf("%w: seat %d, turn is %d", appErr.ErrNotSeatTurn, seat, h.turn)
	}
	return nil
}
