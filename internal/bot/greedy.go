package bot

import "domino-service/internal/domino"

// Greedy dumps the heaviest tile it can play, slightly preferring non-doubles.
type Greedy struct{}

func NewGreedy() *Greedy {
	return &Greedy{}
}

func (g *Greedy) Name() string {
	return NameGreedy
}

func (g *Greedy) ChooseMove(hand []domino.Tile, ends *domino.Ends) (domino.Move, bool, error) {
	legal := domino.LegalMoves(hand, ends)
	if len(legal) == 0 {
		return domino.Move{}, false, nil
	}

	best, bestScore := legal[0], greedyScore(legal[0].Tile)
	for _, m := range legal[1:] {
		if s := greedyScore(m.Tile); s > bestScore {
			best, bestScore = m, s
		}
	}
	return best, true, nil
}

// greedyScore is pips scaled by two so the double discount stays integral.
func greedyScore(t domino.Tile) int {
	s := t.Pips() * 2
	if t.IsDouble() {
		s--
	}
	return s
}
