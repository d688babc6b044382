package domino_test

import (
	"errors"
	mrand "math/rand"
	"testing"

	"domino-service/internal/domino"
	appErr "domino-service/pkg/errors"
)

func tiles(pairs ...[2]int) []domino.Tile {
	out := make([]domino.Tile, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domino.NewTile(p[0], p[1]))
	}
	return out
}

func mustHand(t *testing.T, seats [domino.NumSeats][]domino.Tile, first int) *domino.Hand {
	t.Helper()
	h, err := domino.NewHand(seats, first)
	if err != nil {
		t.Fatalf("new hand: %v", err)
	}
	return h
}

func assertPartition(t *testing.T, h *domino.Hand) {
	t.Helper()
	seen := make(map[domino.Tile]bool, domino.SetSize)
	add := func(tile domino.Tile) {
		if seen[tile.Canonical()] {
			t.Fatalf("tile %s appears twice", tile)
		}
		seen[tile.Canonical()] = true
	}
	for s := 0; s < domino.NumSeats; s++ {
		for _, tile := range h.Tiles(s) {
			add(tile)
		}
	}
	for _, tile := range h.Layout() {
		add(tile)
	}
	if len(seen) != domino.SetSize {
		t.Fatalf("tiles accounted = %d, want %d", len(seen), domino.SetSize)
	}
}

func TestDealRejectsBadFirstSeat(t *testing.T) {
	rng := mrand.New(mrand.NewSource(3))
	for _, seat := range []int{-1, domino.NumSeats} {
		if _, err := domino.DealHand(rng, seat); !errors.Is(err, appErr.ErrInvalidConfig) {
			t.Fatalf("first seat %d: expected ErrInvalidConfig, got %v", seat, err)
		}
	}
}

func TestDealPartitionsSetThroughoutHand(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := mrand.New(mrand.NewSource(seed))
		h, err := domino.DealHand(rng, int(seed)%domino.NumSeats)
		if err != nil {
			t.Fatalf("deal: %v", err)
		}
		for s := 0; s < domino.NumSeats; s++ {
			if n := len(h.Tiles(s)); n != domino.HandSize {
				t.Fatalf("seat %d dealt %d tiles", s, n)
			}
		}
		assertPartition(t, h)

		for !h.IsOver() {
			seat := h.Turn()
			legal := h.LegalMoves(seat)
			if len(legal) == 0 {
				if err := h.Pass(seat); err != nil {
					t.Fatalf("pass: %v", err)
				}
			} else {
				m := legal[rng.Intn(len(legal))]
				if err := h.Place(seat, m.Tile, m.Side); err != nil {
					t.Fatalf("place %+v: %v", m, err)
				}
			}
			h.AdvanceTurn()
			assertPartition(t, h)
		}
	}
}

func TestPlaceOrientsTilesAndTracksEnds(t *testing.T) {
	h := mustHand(t, [domino.NumSeats][]domino.Tile{
		tiles([2]int{3, 5}, [2]int{0, 0}),
		tiles([2]int{5, 6}, [2]int{1, 1}),
		tiles([2]int{3, 1}, [2]int{2, 2}),
		tiles([2]int{6, 6}, [2]int{4, 4}),
	}, 0)

	if h.Ends() != nil {
		t.Fatalf("expected empty board")
	}
	steps := []struct {
		seat   int
		tile   domino.Tile
		side   domino.Side
		ends   domino.Ends
		layout []domino.Tile
	}{
		{0, domino.NewTile(3, 5), domino.SideStart, domino.Ends{Left: 3, Right: 5}, tiles([2]int{3, 5})},
		{1, domino.NewTile(6, 5), domino.SideRight, domino.Ends{Left: 3, Right: 6}, tiles([2]int{3, 5}, [2]int{5, 6})},
		{2, domino.NewTile(3, 1), domino.SideLeft, domino.Ends{Left: 1, Right: 6}, tiles([2]int{1, 3}, [2]int{3, 5}, [2]int{5, 6})},
		{3, domino.NewTile(6, 6), domino.SideRight, domino.Ends{Left: 1, Right: 6}, tiles([2]int{1, 3}, [2]int{3, 5}, [2]int{5, 6}, [2]int{6, 6})},
	}
	for i, st := range steps {
		if err := h.Place(st.seat, st.tile, st.side); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		h.AdvanceTurn()
		if got := h.Ends(); got == nil || *got != st.ends {
			t.Fatalf("step %d: ends = %v, want %v", i, got, st.ends)
		}
		layout := h.Layout()
		if len(layout) != len(st.layout) {
			t.Fatalf("step %d: layout = %v", i, layout)
		}
		for j := range layout {
			if layout[j] != st.layout[j] {
				t.Fatalf("step %d: layout[%d] = %s, want %s", i, j, layout[j], st.layout[j])
			}
		}
	}

	out := h.Outcome()
	if out.LastTile == nil || !out.LastTile.Equal(domino.NewTile(6, 6)) {
		t.Fatalf("last tile = %v", out.LastTile)
	}
	if out.EndsBefore == nil || *out.EndsBefore != (domino.Ends{Left: 1, Right: 6}) {
		t.Fatalf("ends before = %v", out.EndsBefore)
	}
}

func TestPlaceRejectsIllegalMoves(t *testing.T) {
	h := mustHand(t, [domino.NumSeats][]domino.Tile{
		tiles([2]int{3, 5}, [2]int{6, 6}),
		tiles([2]int{5, 6}, [2]int{2, 4}),
		tiles([2]int{1, 1}),
		tiles([2]int{0, 0}),
	}, 0)

	if err := h.Place(0, domino.NewTile(3, 5), domino.SideLeft); !errors.Is(err, appErr.ErrIllegalMove) {
		t.Fatalf("left on empty board: expected ErrIllegalMove, got %v", err)
	}
	if err := h.Place(1, domino.NewTile(5, 6), domino.SideStart); !errors.Is(err, appErr.ErrNotSeatTurn) {
		t.Fatalf("out of turn: expected ErrNotSeatTurn, got %v", err)
	}
	if err := h.Place(0, domino.NewTile(5, 6), domino.SideStart); !errors.Is(err, appErr.ErrIllegalMove) {
		t.Fatalf("unheld tile: expected ErrIllegalMove, got %v", err)
	}
	if err := h.Place(0, domino.NewTile(5, 3), domino.SideStart); err != nil {
		t.Fatalf("flipped identity should be accepted: %v", err)
	}
	h.AdvanceTurn()

	if err := h.Place(1, domino.NewTile(2, 4), domino.SideLeft); !errors.Is(err, appErr.ErrIllegalMove) {
		t.Fatalf("non-matching tile: expected ErrIllegalMove, got %v", err)
	}
	if err := h.Place(1, domino.NewTile(5, 6), domino.SideStart); !errors.Is(err, appErr.ErrIllegalMove) {
		t.Fatalf("start on open board: expected ErrIllegalMove, got %v", err)
	}
	if err := h.Place(1, domino.NewTile(5, 6), domino.SideLeft); !errors.Is(err, appErr.ErrIllegalMove) {
		t.Fatalf("wrong side: expected ErrIllegalMove, got %v", err)
	}
	if err := h.Pass(1); !errors.Is(err, appErr.ErrVoluntaryPassRejected) {
		t.Fatalf("voluntary pass: expected ErrVoluntaryPassRejected, got %v", err)
	}
	if len(h.Tiles(1)) != 2 {
		t.Fatalf("rejected moves must not change the hand")
	}
}

func TestBlockedAfterFourConsecutivePasses(t *testing.T) {
	h := mustHand(t, [domino.NumSeats][]domino.Tile{
		tiles([2]int{0, 0}, [2]int{1, 1}),
		tiles([2]int{2, 2}, [2]int{0, 5}),
		tiles([2]int{3, 3}),
		tiles([2]int{4, 4}),
	}, 0)

	if err := h.Place(0, domino.NewTile(0, 0), domino.SideStart); err != nil {
		t.Fatal(err)
	}
	h.AdvanceTurn()
	if err := h.Place(1, domino.NewTile(0, 5), domino.SideRight); err != nil {
		t.Fatal(err)
	}
	h.AdvanceTurn()

	// Ends are now (0,5); nobody holds a 0 or a 5.
	for i := 0; i < 4; i++ {
		if h.IsBlocked() {
			t.Fatalf("blocked after only %d passes", i)
		}
		if h.PassStreak() != i {
			t.Fatalf("pass streak = %d, want %d", h.PassStreak(), i)
		}
		if err := h.Pass(h.Turn()); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		h.AdvanceTurn()
	}
	if !h.IsBlocked() || !h.IsOver() {
		t.Fatalf("expected blocked hand after four passes")
	}
	if err := h.Pass(h.Turn()); !errors.Is(err, appErr.ErrNoActiveHand) {
		t.Fatalf("expected ErrNoActiveHand after block, got %v", err)
	}

	rec := h.Record()
	if !rec.Blocked || len(rec.Moves) != 6 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestPlacementResetsPassStreak(t *testing.T) {
	h := mustHand(t, [domino.NumSeats][]domino.Tile{
		tiles([2]int{6, 6}, [2]int{6, 1}),
		tiles([2]int{0, 0}),
		tiles([2]int{2, 2}),
		tiles([2]int{3, 3}),
	}, 0)

	if err := h.Place(0, domino.NewTile(6, 6), domino.SideStart); err != nil {
		t.Fatal(err)
	}
	h.AdvanceTurn()
	for i := 0; i < 3; i++ {
		if err := h.Pass(h.Turn()); err != nil {
			t.Fatal(err)
		}
		h.AdvanceTurn()
	}
	if h.PassStreak() != 3 {
		t.Fatalf("pass streak = %d, want 3", h.PassStreak())
	}
	if err := h.Place(0, domino.NewTile(1, 6), domino.SideLeft); err != nil {
		t.Fatal(err)
	}
	if h.PassStreak() != 0 {
		t.Fatalf("placement must reset the pass streak")
	}
	if h.IsBlocked() {
		t.Fatalf("hand should not be blocked")
	}
	if !h.IsOver() || h.EmptiedSeat() != 0 {
		t.Fatalf("seat 0 emptied its hand, expected hand over")
	}
}

func TestForfeitCountsAsPass(t *testing.T) {
	h := mustHand(t, [domino.NumSeats][]domino.Tile{
		tiles([2]int{1, 2}),
		tiles([2]int{2, 3}),
		tiles([2]int{3, 4}),
		tiles([2]int{4, 5}),
	}, 2)

	if err := h.Forfeit(2); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if h.PassStreak() != 1 {
		t.Fatalf("forfeit should count toward the pass streak")
	}
	moves := h.Moves()
	if len(moves) != 1 || !moves[0].Fault || moves[0].Side != domino.SidePass {
		t.Fatalf("unexpected log: %+v", moves)
	}
}

func TestNewHandRejectsDuplicates(t *testing.T) {
	_, err := domino.NewHand([domino.NumSeats][]domino.Tile{
		tiles([2]int{1, 2}),
		tiles([2]int{2, 1}),
		nil,
		nil,
	}, 0)
	if !errors.Is(err, appErr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
