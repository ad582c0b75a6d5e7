package league

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/pdlmetrix/pdlmetrix/internal/repositories/league Repository

import (
	"context"
	"errors"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

var (
	// ErrPlayerNotFound is returned when a player is not found
	ErrPlayerNotFound = errors.New("player not found")

	// ErrGameNotFound is returned when a game is not found
	ErrGameNotFound = errors.New("game not found")

	// ErrPlayerNameTaken is returned when another player already uses a name
	ErrPlayerNameTaken = errors.New("player name already taken")
)

// Repository defines the interface for league data persistence
type Repository interface {
	// SavePlayer persists a player, keeping names unique
	SavePlayer(ctx context.Context, input *SavePlayerInput) error

	// GetPlayer retrieves a player by ID
	GetPlayer(ctx context.Context, input *GetPlayerInput) (*models.Player, error)

	// GetPlayerByName retrieves a player by exact name
	GetPlayerByName(ctx context.Context, input *GetPlayerByNameInput) (*models.Player, error)

	// ListPlayers retrieves all players in registration order
	ListPlayers(ctx context.Context) (*ListPlayersOutput, error)

	// SaveGame persists a game
	SaveGame(ctx context.Context, input *SaveGameInput) error

	// GetGame retrieves a game by ID
	GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error)

	// DeleteGame removes a game
	DeleteGame(ctx context.Context, input *DeleteGameInput) error

	// ListGames retrieves games in chronological order
	ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error)

	// Clear removes all players and games
	Clear(ctx context.Context) error

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}
