// Package models defines the core data structures shared across pdlmetrix:
// players, recorded games, rating checkpoints and the profile data handed to
// the dashboard renderers.
package models

import "time"

// InitialRating is the rating every player starts with on both tracks.
const InitialRating = 1000

// Player is a registered league player.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerStats summarises a player's games and rounds.
type PlayerStats struct {
	WonGames     int     `json:"won_games"`
	LostGames    int     `json:"lost_games"`
	TotalGames   int     `json:"total_games"`
	WonRounds    int     `json:"won_rounds"`
	LostRounds   int     `json:"lost_rounds"`
	TotalRounds  int     `json:"total_rounds"`
	WinPerc      float64 `json:"win_perc"`
	RoundWinPerc float64 `json:"round_win_perc"`
}

// LeaderboardRow is one line of the players table.
type LeaderboardRow struct {
	Name         string `json:"name"`
	Rating       int    `json:"rating"`
	PointsRating int    `json:"rounds_rating"`
	WinPerc      int    `json:"win_perc"`
	RoundWinPerc int    `json:"round_win_perc"`
}
