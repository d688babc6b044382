package bot_test

import (
	"errors"
	mrand "math/rand"
	"testing"

	"domino-service/internal/bot"
	"domino-service/internal/domino"
	appErr "domino-service/pkg/errors"
)

func TestGreedyPrefersHeaviestNonDouble(t *testing.T) {
	hand := []domino.Tile{{A: 1, B: 2}, {A: 4, B: 4}, {A: 3, B: 5}, {A: 6, B: 6}}
	ends := &domino.Ends{Left: 4, Right: 5}

	move, ok, err := bot.NewGreedy().ChooseMove(hand, ends)
	if err != nil || !ok {
		t.Fatalf("expected a move, got ok=%v err=%v", ok, err)
	}
	// 4|4 and 3|5 both total 8; the double is discounted.
	if !move.Tile.Equal(domino.NewTile(3, 5)) || move.Side != domino.SideRight {
		t.Fatalf("unexpected move: %+v", move)
	}
}

func TestGreedyPassesWithoutLegalMoves(t *testing.T) {
	hand := []domino.Tile{{A: 1, B: 2}}
	_, ok, err := bot.NewGreedy().ChooseMove(hand, &domino.Ends{Left: 6, Right: 6})
	if err != nil || ok {
		t.Fatalf("expected pass, got ok=%v err=%v", ok, err)
	}
}

func TestRandomOnlyPlaysLegalMoves(t *testing.T) {
	r := bot.NewRandom(7)
	hand := []domino.Tile{{A: 0, B: 3}, {A: 2, B: 2}, {A: 3, B: 6}, {A: 1, B: 4}}
	ends := &domino.Ends{Left: 3, Right: 1}

	for i := 0; i < 200; i++ {
		move, ok, err := r.ChooseMove(hand, ends)
		if err != nil || !ok {
			t.Fatalf("expected a move, got ok=%v err=%v", ok, err)
		}
		if !domino.IsLegal(hand, ends, move) {
			t.Fatalf("random produced illegal move %+v", move)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := bot.NewDefaultRegistry()

	names := reg.Names()
	if len(names) != 2 || names[0] != bot.NameGreedy || names[1] != bot.NameRandom {
		t.Fatalf("unexpected names: %v", names)
	}

	s, err := reg.Lookup(bot.NameGreedy)
	if err != nil {
		t.Fatalf("lookup greedy: %v", err)
	}
	if s.Name() != bot.NameGreedy {
		t.Fatalf("expected greedy, got %s", s.Name())
	}

	if _, err := reg.Lookup("python-upload"); !errors.Is(err, appErr.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestRandomFactoryFollowsRng(t *testing.T) {
	f, err := bot.NewDefaultRegistry().Factory(bot.NameRandom)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	hand := []domino.Tile{{A: 0, B: 3}, {A: 2, B: 3}, {A: 3, B: 6}, {A: 1, B: 4}, {A: 1, B: 1}}
	ends := &domino.Ends{Left: 3, Right: 1}

	first := f(mrand.New(mrand.NewSource(11)))
	second := f(mrand.New(mrand.NewSource(11)))
	for i := 0; i < 50; i++ {
		a, _, _ := first.ChooseMove(hand, ends)
		b, _, _ := second.ChooseMove(hand, ends)
		if a != b {
			t.Fatalf("call %d: %+v vs %+v from the same seed", i, a, b)
		}
	}

	if _, err := bot.NewDefaultRegistry().Factory("oracle"); !errors.Is(err, appErr.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}
