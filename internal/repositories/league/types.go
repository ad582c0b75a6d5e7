package league

import (
	"sort"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// SavePlayerInput contains parameters for saving a player
type SavePlayerInput struct {
	Player *models.Player
}

// GetPlayerInput contains parameters for retrieving a player
type GetPlayerInput struct {
	PlayerID string
}

// GetPlayerByNameInput contains parameters for retrieving a player by name
type GetPlayerByNameInput struct {
	Name string
}

// ListPlayersOutput contains all players
type ListPlayersOutput struct {
	Players []*models.Player
}

// SaveGameInput contains parameters for saving a game
type SaveGameInput struct {
	Game *models.Game
}

// GetGameInput contains parameters for retrieving a game
type GetGameInput struct {
	GameID string
}

// DeleteGameInput contains parameters for deleting a game
type DeleteGameInput struct {
	GameID string
}

// ListGamesInput filters the games listing. An empty PlayerID lists every
// game.
type ListGamesInput struct {
	PlayerID string
}

// ListGamesOutput contains games, oldest first
type ListGamesOutput struct {
	Games []*models.Game
}

// sortGames orders games by time played, then by ID.
func sortGames(games []*models.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if !a.PlayedAt.Equal(b.PlayedAt) {
			return a.PlayedAt.Before(b.PlayedAt)
		}
		return a.ID < b.ID
	})
}

func sortPlayers(players []*models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func filterGames(games []*models.Game, playerID string) []*models.Game {
	if playerID == "" {
		return games
	}
	out := make([]*models.Game, 0, len(games))
	for _, g := range games {
		if g.Has(playerID) {
			out = append(out, g)
		}
	}
	return out
}
