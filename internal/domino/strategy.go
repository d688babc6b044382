package domino

import (
	"fmt"
	mrand "math/rand"

	appErr "domino-service/pkg/errors"
)

// Strategy decides moves for an automated seat.
//
// ChooseMove receives a copy of the seat's tiles and the current ends (nil on
// an empty board). It returns ok=false to pass. Whatever it returns is checked
// against the legal moves before it is applied, so implementations may be
// wrong without corrupting the hand.
type Strategy interface {
	Name() string
	ChooseMove(hand []Tile, ends *Ends) (move Move, ok bool, err error)
}

// StrategyFactory builds a strategy that draws all of its randomness from
// rng, so a seeded match replays the same way.
type StrategyFactory func(rng *mrand.Rand) Strategy

// Shared returns a factory that always hands out st. Only for strategies
// without internal randomness.
func Shared(st Strategy) StrategyFactory {
	return func(*mrand.Rand) Strategy { return st }
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(hand []Tile, ends *Ends) (Move, bool, error)
}

func (f StrategyFunc) Name() string {
	return f.Label
}

func (f StrategyFunc) ChooseMove(hand []Tile, ends *Ends) (Move, bool, error) {
	return f.Fn(hand, ends)
}

// askStrategy calls s and turns a panic into an ErrStrategyFault.
func askStrategy(s Strategy, hand []Tile, ends *Ends) (move Move, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			move, ok = Move{}, false
			err = fmt.Errorf("%w: %s panicked: %v", appErr.ErrStrategyFault, s.Name(), r)
		}
	}()
	return s.ChooseMove(hand, ends)
}
