package domino

// HandRecord is the full replay of one deal plus its scoring.
type HandRecord struct {
	StartingHands [NumSeats][]Tile `json:"startingHands"`
	FirstSeat     int              `json:"firstSeat"`
	Moves         []Play           `json:"moves"`
	Winner        int              `json:"winner"`
	WinningTeam   int              `json:"winningTeam"`
	Blocked       bool             `json:"blocked"`
	Capicu        bool             `json:"capicu"`
	Chuchazo      bool             `json:"chuchazo"`
	PointsEarned  [NumSeats]int    `json:"pointsEarned"`
	FinalLayout   []Tile           `json:"finalLayout"`
	FinalEnds     *Ends            `json:"finalEnds"`
}

func (r *HandRecord) applyScore(score HandScore) {
	r.Winner = score.Winner
	r.WinningTeam = score.WinningTeam
	r.Blocked = score.Blocked
	r.Capicu = score.Capicu
	r.Chuchazo = score.Chuchazo
	r.PointsEarned = score.Deltas
}
