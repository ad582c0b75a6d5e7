package models

// PlayerProfileData is the read-only input of the profile dashboard. It is
// built once by the league service and never mutated by the renderers.
type PlayerProfileData struct {
	WinPerc          float64   `json:"win_perc"`           // match win rate, 0..100
	RoundWinPerc     float64   `json:"round_win_perc"`     // round win rate, 0..100
	EloHistory       []float64 `json:"elo_history"`        // match rating after each game
	PointsEloHistory []float64 `json:"points_elo_history"` // points rating after each game
}

// PlayerProfile is everything the player page shows.
type PlayerProfile struct {
	Player       Player            `json:"player"`
	Rating       int               `json:"rating"`
	PointsRating int               `json:"rounds_rating"`
	Stats        PlayerStats       `json:"stats"`
	Data         PlayerProfileData `json:"data"`
	Games        []GameRow         `json:"games"`
	Partners     []PairingStat     `json:"partners"`
	Opponents    []PairingStat     `json:"opponents"`
}

// PairingStat summarises the games played with or against another player.
type PairingStat struct {
	Name    string  `json:"name"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	WinPerc float64 `json:"win_perc"`
}
