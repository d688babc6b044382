package arena

import (
	"fmt"
	"time"

	"domino-service/internal/domino"
	appErr "domino-service/pkg/errors"
)

type timedStrategy struct {
	inner   domino.Strategy
	timeout time.Duration
}

// WithTimeout bounds every ChooseMove call of st. A late answer is dropped and
// reported as a strategy fault.
func WithTimeout(st domino.Strategy, timeout time.Duration) domino.Strategy {
	return &timedStrategy{inner: st, timeout: timeout}
}

func (t *timedStrategy) Name() string {
	return t.inner.Name()
}

type answer struct {
	move domino.Move
	ok   bool
	err  error
}

func (t *timedStrategy) ChooseMove(hand []domino.Tile, ends *domino.Ends) (domino.Move, bool, error) {
	ch := make(chan answer, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- answer{err: fmt.Errorf("%w: %s panicked: %v", appErr.ErrStrategyFault, t.inner.Name(), r)}
			}
		}()
		mv, ok, err := t.inner.ChooseMove(hand, ends)
		ch <- answer{move: mv, ok: ok, err: err}
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()
	select {
	case a := <-ch:
		return a.move, a.ok, a.err
	case <-timer.C:
		return domino.Move{}, false, fmt.Errorf("%w: %s exceeded %s", appErr.ErrStrategyFault, t.inner.Name(), t.timeout)
	}
}
