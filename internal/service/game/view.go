package game

import (
	"domino-service/internal/domino"
)

// HumanSeat is the seat an API caller plays.
const HumanSeat = 0

type PlayerView struct {
	Index     int    `json:"index"`
	Strategy  string `json:"strategy,omitempty"`
	Human     bool   `json:"human"`
	Score     int    `json:"score"`
	TileCount int    `json:"tileCount"`
}

type LegalMoveView struct {
	TileIndex int         `json:"tileIndex"`
	Tile      domino.Tile `json:"tile"`
	Side      domino.Side `json:"side"`
}

// MatchView is what the human seat is allowed to see of a match.
type MatchView struct {
	MatchID       string             `json:"matchId"`
	Mode          domino.Mode        `json:"mode"`
	TargetPoints  int                `json:"targetPoints"`
	Phase         domino.Phase       `json:"phase"`
	HandsPlayed   int                `json:"handsPlayed"`
	Winner        int                `json:"winner"`
	SideScores    []int              `json:"sideScores"`
	Players       []PlayerView       `json:"players"`
	Hand          []domino.Tile      `json:"hand"`
	Layout        []domino.Tile      `json:"layout"`
	Ends          *domino.Ends       `json:"ends"`
	CurrentPlayer int                `json:"currentPlayer"`
	PassesInARow  int                `json:"passesInARow"`
	LegalMoves    []LegalMoveView    `json:"legalMoves"`
	LastScore     *domino.HandScore  `json:"lastScore,omitempty"`
	LastHand      *domino.HandRecord `json:"lastHand,omitempty"`
}

func buildView(id string, state *domino.MatchState) *MatchView {
	v := &MatchView{
		MatchID:       id,
		Mode:          state.Config.Mode,
		TargetPoints:  state.Config.TargetPoints,
		Phase:         state.Phase,
		HandsPlayed:   state.HandsPlayed,
		Winner:        state.Winner,
		Players:       make([]PlayerView, len(state.Players)),
		Hand:          []domino.Tile{},
		Layout:        []domino.Tile{},
		CurrentPlayer: -1,
		LegalMoves:    []LegalMoveView{},
		LastScore:     state.LastScore,
	}

	var scores [domino.NumSeats]int
	for i, p := range state.Players {
		v.Players[i] = PlayerView{
			Index:     p.Index,
			Strategy:  p.Strategy,
			Human:     p.Human,
			Score:     p.Score,
			TileCount: len(p.Tiles),
		}
		scores[i] = p.Score
		if i == HumanSeat {
			v.Hand = append(v.Hand, p.Tiles...)
		}
	}
	v.SideScores = sideScores(state.Config.Mode, scores)

	if n := len(state.History); n > 0 {
		last := state.History[n-1]
		v.LastHand = &last
	}

	if h := state.Hand; h != nil {
		v.Layout = append(v.Layout, h.Layout...)
		v.Ends = h.Ends
		v.PassesInARow = h.PassesInARow
		if state.Phase == domino.PhaseInHand {
			v.CurrentPlayer = h.CurrentPlayer
		}
	}
	if state.Phase == domino.PhaseInHand && v.CurrentPlayer == HumanSeat {
		v.LegalMoves = legalMoveViews(v.Hand, v.Ends)
	}
	return v
}

func legalMoveViews(hand []domino.Tile, ends *domino.Ends) []LegalMoveView {
	out := []LegalMoveView{}
	for _, mv := range domino.LegalMoves(hand, ends) {
		for i, t := range hand {
			if t.Equal(mv.Tile) {
				out = append(out, LegalMoveView{TileIndex: i, Tile: t, Side: mv.Side})
				break
			}
		}
	}
	return out
}

func sideScores(mode domino.Mode, scores [domino.NumSeats]int) []int {
	if mode == domino.ModeTeams {
		return []int{scores[0] + scores[2], scores[1] + scores[3]}
	}
	return scores[:]
}
