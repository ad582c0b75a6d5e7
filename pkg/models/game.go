package models

import "time"

// Game is a recorded doubles match. Team1 and Team2 hold player IDs and
// Score holds the rounds won by team 1 and team 2.
type Game struct {
	ID       string    `json:"id"`
	Team1    [2]string `json:"team1"`
	Team2    [2]string `json:"team2"`
	Score    [2]int    `json:"score"`
	PlayedAt time.Time `json:"played_at"`
}

// Players returns the four player IDs, team 1 first.
func (g *Game) Players() []string {
	return []string{g.Team1[0], g.Team1[1], g.Team2[0], g.Team2[1]}
}

// InTeam1 reports whether the player was on team 1.
func (g *Game) InTeam1(playerID string) bool {
	return g.Team1[0] == playerID || g.Team1[1] == playerID
}

// Has reports whether the player took part in the game.
func (g *Game) Has(playerID string) bool {
	return g.InTeam1(playerID) || g.Team2[0] == playerID || g.Team2[1] == playerID
}

// Checkpoint is a player's ratings right after a game.
type Checkpoint struct {
	PlayerID         string    `json:"player_id"`
	GameID           string    `json:"game_id"`
	Rating           int       `json:"rating"`
	PointsRating     int       `json:"rating_by_rounds"`
	RatingDiff       int       `json:"rating_diff"`
	PointsRatingDiff int       `json:"rounds_rating_diff"`
	PlayedAt         time.Time `json:"played_at"`
}

// GameRow is one line of the games table.
type GameRow struct {
	ID         string          `json:"id"`
	Date       string          `json:"datetime"`
	Team1Score int             `json:"team1score"`
	Team2Score int             `json:"team2score"`
	Players    []GameRowPlayer `json:"players"`
}

// GameRowPlayer carries a participant's rating changes for a game row.
type GameRowPlayer struct {
	Name             string `json:"name"`
	RatingDiff       string `json:"rating_diff"`
	PointsRatingDiff string `json:"rounds_rating_diff"`
}
