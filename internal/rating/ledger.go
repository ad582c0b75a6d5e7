package rating

import (
	"sort"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// Ratings is a player's pair of ratings.
type Ratings struct {
	Rating       int `json:"rating"`
	PointsRating int `json:"rounds_rating"`
}

// Initial is the rating pair of a player without games.
var Initial = Ratings{Rating: models.InitialRating, PointsRating: models.InitialRating}

// Ledger holds current ratings and the checkpoint trail of a sequence of
// games. The zero value is not usable; use NewLedger or Replay.
type Ledger struct {
	current     map[string]Ratings
	byPlayer    map[string][]models.Checkpoint
	byGame      map[string][]models.Checkpoint
	gamesPlayed int
}

// NewLedger returns a ledger in which every player is at Initial.
func NewLedger() *Ledger {
	return &Ledger{
		current:  make(map[string]Ratings),
		byPlayer: make(map[string][]models.Checkpoint),
		byGame:   make(map[string][]models.Checkpoint),
	}
}

// Replay applies games in chronological order to a fresh ledger.
func Replay(games []models.Game) *Ledger {
	sorted := make([]models.Game, len(games))
	copy(sorted, games)
	SortGames(sorted)

	l := NewLedger()
	for i := range sorted {
		l.Apply(sorted[i])
	}
	return l
}

// SortGames orders games by time played, breaking ties by ID.
func SortGames(games []models.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if !a.PlayedAt.Equal(b.PlayedAt) {
			return a.PlayedAt.Before(b.PlayedAt)
		}
		return a.ID < b.ID
	})
}

// Ratings returns the current ratings of a player.
func (l *Ledger) Ratings(playerID string) Ratings {
	if r, ok := l.current[playerID]; ok {
		return r
	}
	return Initial
}

// Apply rates one game and returns the four checkpoints it produced, in
// team order. All updates use the ratings from before the game.
func (l *Ledger) Apply(g models.Game) []models.Checkpoint {
	team := func(ids [2]string) (match, points float64) {
		a, b := l.Ratings(ids[0]), l.Ratings(ids[1])
		return float64(a.Rating+b.Rating) / 2, float64(a.PointsRating+b.PointsRating) / 2
	}
	t1, t1Points := team(g.Team1)
	t2, t2Points := team(g.Team2)

	players := g.Players()
	before := make([]Ratings, len(players))
	for i, id := range players {
		before[i] = l.Ratings(id)
	}

	out := make([]models.Checkpoint, 0, len(players))
	for i, id := range players {
		own, opp := g.Score[0], g.Score[1]
		oppRating, oppPoints := t2, t2Points
		if i >= 2 {
			own, opp = opp, own
			oppRating, oppPoints = t1, t1Points
		}

		prev := before[i]
		next := Ratings{
			Rating:       ModifiedElo(float64(prev.Rating), oppRating, own, opp, true),
			PointsRating: ModifiedElo(float64(prev.PointsRating), oppPoints, own, opp, false),
		}
		l.current[id] = next

		cp := models.Checkpoint{
			PlayerID:         id,
			GameID:           g.ID,
			Rating:           next.Rating,
			PointsRating:     next.PointsRating,
			RatingDiff:       next.Rating - prev.Rating,
			PointsRatingDiff: next.PointsRating - prev.PointsRating,
			PlayedAt:         g.PlayedAt,
		}
		l.byPlayer[id] = append(l.byPlayer[id], cp)
		out = append(out, cp)
	}
	l.byGame[g.ID] = out
	l.gamesPlayed++
	return out
}

// Checkpoints returns a player's checkpoints in game order.
func (l *Ledger) Checkpoints(playerID string) []models.Checkpoint {
	return l.byPlayer[playerID]
}

// GameCheckpoints returns the checkpoints of one game, team 1 first.
func (l *Ledger) GameCheckpoints(gameID string) []models.Checkpoint {
	return l.byGame[gameID]
}

// Checkpoint returns a player's checkpoint for one game.
func (l *Ledger) Checkpoint(playerID, gameID string) (models.Checkpoint, bool) {
	for _, cp := range l.byGame[gameID] {
		if cp.PlayerID == playerID {
			return cp, true
		}
	}
	return models.Checkpoint{}, false
}

// History returns a player's rating after each game on both tracks, oldest
// first. Players without games get empty, non-nil slices.
func (l *Ledger) History(playerID string) (match, points []float64) {
	cps := l.byPlayer[playerID]
	match = make([]float64, len(cps))
	points = make([]float64, len(cps))
	for i, cp := range cps {
		match[i] = float64(cp.Rating)
		points[i] = float64(cp.PointsRating)
	}
	return match, points
}

// Games returns how many games have been applied.
func (l *Ledger) Games() int {
	return l.gamesPlayed
}
