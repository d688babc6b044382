package bot

import (
	mrand "math/rand"
	"sync"
	"time"

	"domino-service/internal/domino"
)

// Random plays a uniformly random legal move. Safe for concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: mrand.New(mrand.NewSource(seed))}
}

// NewRandomFrom draws moves from rng. The Random takes ownership of it.
func NewRandomFrom(rng *mrand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Name() string {
	return NameRandom
}

func (r *Random) ChooseMove(hand []domino.Tile, ends *domino.Ends) (domino.Move, bool, error) {
	legal := domino.LegalMoves(hand, ends)
	if len(legal) == 0 {
		return domino.Move{}, false, nil
	}
	r.mu.Lock()
	idx := r.rng.Intn(len(legal))
	r.mu.Unlock()
	return legal[idx], true, nil
}
