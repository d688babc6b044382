package domino

import (
	"fmt"
	mrand "math/rand"
)

const (
	MaxPip       = 6
	NumSeats     = 4
	HandSize     = 7
	SetSize      = (MaxPip + 1) * (MaxPip + 2) / 2
	MaxHandCount = 100
)

// Tile is a pip pair. A and B carry the orientation the tile was laid in;
// identity ignores it, so compare tiles with Equal, not ==.
type Tile struct {
	A int `json:"a"`
	B int `json:"b"`
}

func NewTile(a, b int) Tile {
	return Tile{A: a, B: b}
}

func (t Tile) IsDouble() bool {
	return t.A == t.B
}

func (t Tile) IsDoubleBlank() bool {
	return t.A == 0 && t.B == 0
}

func (t Tile) Pips() int {
	return t.A + t.B
}

func (t Tile) Valid() bool {
	return t.A >= 0 && t.A <= MaxPip && t.B >= 0 && t.B <= MaxPip
}

// Flipped swaps the orientation.
func (t Tile) Flipped() Tile {
	return Tile{A: t.B, B: t.A}
}

// Canonical returns the low|high orientation, e.g. for image lookups.
func (t Tile) Canonical() Tile {
	if t.A > t.B {
		return t.Flipped()
	}
	return t
}

func (t Tile) Equal(other Tile) bool {
	return t.Canonical() == other.Canonical()
}

// Has reports whether either half shows pip.
func (t Tile) Has(pip int) bool {
	return t.A == pip || t.B == pip
}

func (t Tile) String() string {
	return fmt.Sprintf("%d|%d", t.A, t.B)
}

// NewDoubleSixSet returns the 28 tiles of a double-six set in canonical order.
func NewDoubleSixSet() []Tile {
	set := make([]Tile, 0, SetSize)
	for i := 0; i <= MaxPip; i++ {
		for j := i; j <= MaxPip; j++ {
			set = append(set, Tile{A: i, B: j})
		}
	}
	return set
}

// NewShuffledSet returns a fresh set shuffled with rng.
func NewShuffledSet(rng *mrand.Rand) []Tile {
	set := NewDoubleSixSet()
	rng.Shuffle(len(set), func(i, j int) {
		set[i], set[j] = set[j], set[i]
	})
	return set
}

func PipTotal(tiles []Tile) int {
	total := 0
	for _, t := range tiles {
		total += t.Pips()
	}
	return total
}

func indexOfTile(tiles []Tile, tile Tile) int {
	for i, t := range tiles {
		if t.Equal(tile) {
			return i
		}
	}
	return -1
}

func cloneTiles(tiles []Tile) []Tile {
	if tiles == nil {
		return []Tile{}
	}
	out := make([]Tile, len(tiles))
	copy(out, tiles)
	return out
}
