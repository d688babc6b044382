package domino

import (
	"fmt"

	appErr "domino-service/pkg/errors"
)

type Mode string

const (
	ModeFFA   Mode = "ffa"
	ModeTeams Mode = "teams"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFFA, ModeTeams:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", appErr.ErrInvalidConfig, s)
	}
}

const (
	DefaultCapicuBonus   = 100
	DefaultChuchazoBonus = 100
)

type Config struct {
	TargetPoints  int  `json:"targetPoints"`
	Mode          Mode `json:"mode"`
	CapicuBonus   int  `json:"capicuBonus"`
	ChuchazoBonus int  `json:"chuchazoBonus"`
	MaxHands      int  `json:"maxHands"`
}

func DefaultConfig(targetPoints int, mode Mode) Config {
	return Config{
		TargetPoints:  targetPoints,
		Mode:          mode,
		CapicuBonus:   DefaultCapicuBonus,
		ChuchazoBonus: DefaultChuchazoBonus,
		MaxHands:      MaxHandCount,
	}
}

func (c Config) Validate() error {
	if c.TargetPoints <= 0 {
		return fmt.Errorf("%w: target points must be positive", appErr.ErrInvalidConfig)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.CapicuBonus < 0 || c.ChuchazoBonus < 0 {
		return fmt.Errorf("%w: bonuses must not be negative", appErr.ErrInvalidConfig)
	}
	if c.MaxHands <= 0 || c.MaxHands > MaxHandCount {
		return fmt.Errorf("%w: max hands must be in [1,%d]", appErr.ErrInvalidConfig, MaxHandCount)
	}
	return nil
}

// TeamOf maps a seat to its partnership: seats 0,2 are team 0 and 1,3 team 1.
func TeamOf(seat int) int {
	return seat % 2
}

// HandScore is the result of scoring one finished hand.
// Winner is the winning seat; for a blocked Teams hand it is the lower seat of
// the winning team.
type HandScore struct {
	Deltas      [NumSeats]int `json:"deltas"`
	Winner      int           `json:"winner"`
	WinningTeam int           `json:"winningTeam"`
	Blocked     bool          `json:"blocked"`
	Base        int           `json:"base"`
	Bonus       int           `json:"bonus"`
	Capicu      bool          `json:"capicu"`
	Chuchazo    bool          `json:"chuchazo"`
}

// IsCapicu reports whether last could have been played on either end, i.e.
// its pips are exactly the pre-move ends. An empty pre-move board never counts.
func IsCapicu(last *Tile, before *Ends) bool {
	if last == nil || before == nil {
		return false
	}
	return (last.A == before.Left && last.B == before.Right) ||
		(last.A == before.Right && last.B == before.Left)
}

// ScoreHand computes the per-seat deltas for a finished hand.
func ScoreHand(cfg Config, out Outcome) HandScore {
	switch cfg.Mode {
	case ModeFFA:
		return scoreFFA(cfg, out)
	case ModeTeams:
		return scoreTeams(cfg, out)
	default:
		panic(fmt.Sprintf("domino: unhandled mode %q", cfg.Mode))
	}
}

func scoreFFA(cfg Config, out Outcome) HandScore {
	total := sumPips(out.PipTotals)
	res := HandScore{WinningTeam: -1, Blocked: out.Blocked}

	if out.Blocked {
		winner := 0
		for s := 1; s < NumSeats; s++ {
			if out.PipTotals[s] < out.PipTotals[winner] {
				winner = s
			}
		}
		res.Winner = winner
		res.Base = total - out.PipTotals[winner]
		res.Deltas[winner] = res.Base
		return res
	}

	res.Winner = out.Winner
	res.Base = total - out.PipTotals[out.Winner]
	applyBonuses(cfg, out, &res)
	res.Deltas[out.Winner] = res.Base + res.Bonus
	return res
}

func scoreTeams(cfg Config, out Outcome) HandScore {
	total := sumPips(out.PipTotals)
	var teamPips [2]int
	for s := 0; s < NumSeats; s++ {
		teamPips[TeamOf(s)] += out.PipTotals[s]
	}
	res := HandScore{Blocked: out.Blocked}

	if out.Blocked {
		team := 0
		if teamPips[1] < teamPips[0] {
			team = 1
		}
		res.WinningTeam = team
		res.Winner = team
		res.Base = total - teamPips[team]
	} else {
		team := TeamOf(out.Winner)
		res.WinningTeam = team
		res.Winner = out.Winner
		res.Base = teamPips[1-team]
		applyBonuses(cfg, out, &res)
	}

	for s := 0; s < NumSeats; s++ {
		if TeamOf(s) == res.WinningTeam {
			res.Deltas[s] = res.Base + res.Bonus
		}
	}
	return res
}

func applyBonuses(cfg Config, out Outcome, res *HandScore) {
	if IsCapicu(out.LastTile, out.EndsBefore) {
		res.Capicu = true
		res.Bonus += cfg.CapicuBonus
	}
	if out.LastTile != nil && out.LastTile.IsDoubleBlank() {
		res.Chuchazo = true
		res.Bonus += cfg.ChuchazoBonus
	}
}

func sumPips(pips [NumSeats]int) int {
	total := 0
	for _, p := range pips {
		total += p
	}
	return total
}
