package domino

import (
	"fmt"

	appErr "domino-service/pkg/errors"
)

type Side string

const (
	SideStart Side = "start"
	SideLeft  Side = "left"
	SideRight Side = "right"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideStart, SideLeft, SideRight:
		return Side(s), nil
	default:
		return "", fmt.Errorf("%w: invalid side %q", appErr.ErrIllegalMove, s)
	}
}

// Ends are the two exposed pips of the layout. A nil *Ends means the board is empty.
type Ends struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

func (e *Ends) clone() *Ends {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

func (e *Ends) String() string {
	if e == nil {
		return "empty"
	}
	return fmt.Sprintf("(%d,%d)", e.Left, e.Right)
}

type Move struct {
	Tile Tile `json:"tile"`
	Side Side `json:"side"`
}

// LegalMoves lists every (tile, side) playable from tiles onto ends.
// A tile matching both ends yields one entry per side. Order is unspecified.
func LegalMoves(tiles []Tile, ends *Ends) []Move {
	if ends == nil {
		moves := make([]Move, 0, len(tiles))
		for _, t := range tiles {
			moves = append(moves, Move{Tile: t, Side: SideStart})
		}
		return moves
	}

	moves := make([]Move, 0, len(tiles))
	for _, t := range tiles {
		if t.Has(ends.Left) {
			moves = append(moves, Move{Tile: t, Side: SideLeft})
		}
		if t.Has(ends.Right) {
			moves = append(moves, Move{Tile: t, Side: SideRight})
		}
	}
	return moves
}

// IsLegal reports whether move is in LegalMoves(tiles, ends).
func IsLegal(tiles []Tile, ends *Ends, move Move) bool {
	if indexOfTile(tiles, move.Tile) < 0 {
		return false
	}
	switch move.Side {
	case SideStart:
		return ends == nil
	case SideLeft:
		return ends != nil && move.Tile.Has(ends.Left)
	case SideRight:
		return ends != nil && move.Tile.Has(ends.Right)
	default:
		return false
	}
}

// orient lays tile against ends on side and returns the oriented tile and the
// resulting ends. The matching pip always faces the existing end.
func orient(tile Tile, ends *Ends, side Side) (Tile, Ends) {
	switch side {
	case SideLeft:
		if tile.B != ends.Left {
			tile = tile.Flipped()
		}
		return tile, Ends{Left: tile.A, Right: ends.Right}
	case SideRight:
		if tile.A != ends.Right {
			tile = tile.Flipped()
		}
		return tile, Ends{Left: ends.Left, Right: tile.B}
	default:
		return tile, Ends{Left: tile.A, Right: tile.B}
	}
}
